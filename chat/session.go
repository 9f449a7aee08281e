package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
	"github.com/JoelJacobStephen/litxplore/log"
	"github.com/JoelJacobStephen/litxplore/pdftext"
)

const (
	defaultTopK     = 5
	fragmentSize    = 100
	fragmentDelay   = 20 * time.Millisecond
	maxChunksPerAsk = 64
)

// Fragment is one piece of a streamed answer. Sources are set on the first
// fragment only. A failed pipeline produces exactly one fragment carrying
// Error, then the stream closes.
type Fragment struct {
	Content string `json:"content,omitempty"`
	Sources []int  `json:"sources,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Service struct {
	Source    litxplore.PaperSource
	Embedder  litxplore.Embedder
	Generator litxplore.Generator
	Logger    log.Logger

	Splitter *Splitter
	TopK     int

	// delay paces streamed fragments. Tests set it to zero.
	delay   time.Duration
	extract func(data []byte) ([]pdftext.Page, error)
}

func NewService(source litxplore.PaperSource, embedder litxplore.Embedder, generator litxplore.Generator, logger log.Logger) *Service {
	return &Service{
		Source:    source,
		Embedder:  embedder,
		Generator: generator,
		Logger:    logger,
		Splitter:  NewSplitter(1000, 200),
		TopK:      defaultTopK,
		delay:     fragmentDelay,
		extract:   pdftext.ExtractPages,
	}
}

// Ask runs the full pipeline once and returns the answer together with the
// page numbers of the chunks it was grounded on.
func (s *Service) Ask(ctx context.Context, id litxplore.PaperID, question string) (string, []int, error) {
	if strings.TrimSpace(question) == "" {
		return "", nil, errors.New("question is required", errors.BadRequest())
	}

	_, data, err := s.Source.Fetch(ctx, id)
	if err != nil {
		return "", nil, err
	}

	pages, err := s.extract(data)
	if err != nil {
		return "", nil, err
	}

	chunks := s.chunkPages(pages)
	if len(chunks) == 0 {
		return "", nil, errors.New("paper has no extractable text", errors.BadRequest())
	}

	idx, err := s.buildIndex(ctx, chunks)
	if err != nil {
		return "", nil, err
	}

	queryVec, err := s.Embedder.Embed(ctx, []string{question})
	if err != nil {
		return "", nil, err
	}
	if len(queryVec) == 0 {
		return "", nil, errors.New("no embedding for question", errors.BadGateway())
	}

	topK := s.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	relevant := idx.search(queryVec[0], topK)

	answer, err := s.Generator.Generate(ctx, chatPrompt(question, relevant), litxplore.GenerateOptions{
		Temperature: 0.3,
	})
	if err != nil {
		return "", nil, err
	}

	return answer, sourcePages(relevant), nil
}

// Stream runs the same pipeline but delivers the answer as a sequence of
// fragments on the returned channel. The channel is always closed, also
// when the consumer's context is cancelled mid-stream.
func (s *Service) Stream(ctx context.Context, id litxplore.PaperID, question string) <-chan Fragment {
	out := make(chan Fragment)

	go func() {
		defer close(out)

		answer, sources, err := s.Ask(ctx, id, question)
		if err != nil {
			s.Logger.Errorf("chat pipeline failed for %s: %v", id, err)
			s.emit(ctx, out, Fragment{Error: err.Error()})
			return
		}

		first := true
		for _, piece := range splitAnswer(answer, fragmentSize) {
			fragment := Fragment{Content: piece}
			if first {
				fragment.Sources = sources
				first = false
			}
			if !s.emit(ctx, out, fragment) {
				return
			}

			if s.delay > 0 {
				select {
				case <-time.After(s.delay):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (s *Service) emit(ctx context.Context, out chan<- Fragment, f Fragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Service) chunkPages(pages []pdftext.Page) []Chunk {
	var chunks []Chunk
	for _, page := range pages {
		for _, text := range s.Splitter.Split(page.Text) {
			chunks = append(chunks, Chunk{Text: text, Page: page.Number})
		}
	}
	if len(chunks) > maxChunksPerAsk {
		chunks = chunks[:maxChunksPerAsk]
	}
	return chunks
}

func (s *Service) buildIndex(ctx context.Context, chunks []Chunk) (*index, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.Embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, errors.New("embedding count mismatch", errors.BadGateway())
	}

	return newIndex(chunks, vectors), nil
}

func chatPrompt(question string, chunks []Chunk) string {
	var b strings.Builder
	b.WriteString("You are answering questions about a research paper. ")
	b.WriteString("Use only the excerpts below. If the excerpts do not contain the answer, say so.\n\n")
	for _, chunk := range chunks {
		fmt.Fprintf(&b, "[page %d]\n%s\n\n", chunk.Page, chunk.Text)
	}
	fmt.Fprintf(&b, "Question: %s\nAnswer:", question)
	return b.String()
}

// sourcePages lists the distinct pages backing the answer, in retrieval order.
func sourcePages(chunks []Chunk) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, chunk := range chunks {
		if !seen[chunk.Page] {
			seen[chunk.Page] = true
			pages = append(pages, chunk.Page)
		}
	}
	return pages
}

// splitAnswer cuts the answer into pieces of at most size runes. Cutting
// on rune boundaries keeps multi-byte characters intact so every piece
// encodes to valid JSON on its own.
func splitAnswer(answer string, size int) []string {
	if answer == "" {
		return nil
	}

	runes := []rune(answer)
	var pieces []string
	for len(runes) > size {
		pieces = append(pieces, string(runes[:size]))
		runes = runes[size:]
	}
	return append(pieces, string(runes))
}
