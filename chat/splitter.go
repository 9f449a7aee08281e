// Package chat answers questions about a single paper by retrieving the
// most relevant chunks of its text and prompting a generative model with
// them. The index over the chunks lives only for the duration of a request.
package chat

import "strings"

// Splitter cuts a document into overlapping chunks. It tries to break on
// the largest separator that still yields pieces under Size, recursing on
// pieces that are too long.
type Splitter struct {
	Size    int
	Overlap int
}

var separators = []string{"\n\n", "\n", " ", ""}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 200
	}
	return &Splitter{Size: size, Overlap: overlap}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, 0)
}

func (s *Splitter) split(text string, sepIndex int) []string {
	if len(text) <= s.Size {
		return []string{text}
	}

	if sepIndex >= len(separators) {
		return s.hardSplit(text)
	}

	sep := separators[sepIndex]
	if sep == "" {
		return s.hardSplit(text)
	}

	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return s.split(text, sepIndex+1)
	}

	var chunks []string
	var current strings.Builder
	for _, part := range parts {
		if current.Len() > 0 && current.Len()+len(sep)+len(part) > s.Size {
			chunks = append(chunks, s.flush(&current, sepIndex)...)
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(part)
	}
	if current.Len() > 0 {
		chunks = append(chunks, s.flush(&current, sepIndex)...)
	}

	return s.overlapped(chunks)
}

func (s *Splitter) flush(b *strings.Builder, sepIndex int) []string {
	text := strings.TrimSpace(b.String())
	b.Reset()
	if text == "" {
		return nil
	}
	if len(text) > s.Size {
		return s.split(text, sepIndex+1)
	}
	return []string{text}
}

// hardSplit cuts on byte boundaries when no separator helps anymore.
func (s *Splitter) hardSplit(text string) []string {
	step := s.Size - s.Overlap
	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + s.Size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

// overlapped prefixes every chunk after the first with the tail of its
// predecessor so that retrieval does not lose context at chunk borders.
func (s *Splitter) overlapped(chunks []string) []string {
	if s.Overlap == 0 || len(chunks) < 2 {
		return chunks
	}

	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev
		if len(prev) > s.Overlap {
			tail = prev[len(prev)-s.Overlap:]
		}
		out[i] = tail + " " + chunks[i]
	}
	return out
}
