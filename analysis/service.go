package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/log"
	"github.com/JoelJacobStephen/litxplore/pdftext"
	"github.com/JoelJacobStephen/litxplore/redis"
)

const (
	maxFigures    = 5
	tailChars     = 3000
	inDepthChars  = 15000
	maxTextPrompt = 12000
)

var figurePattern = regexp.MustCompile(`(?i)\b(figure|fig\.|table)\s+(\d+)`)

type Service struct {
	Source    litxplore.PaperSource
	Generator litxplore.Generator
	Cache     litxplore.ArtifactCache
	Logger    log.Logger

	// Model tags cache keys so switching models invalidates old artifacts.
	Model string
	TTL   time.Duration

	extract func(data []byte) ([]pdftext.Page, error)
}

func NewService(source litxplore.PaperSource, generator litxplore.Generator, cache litxplore.ArtifactCache, model string, ttl time.Duration, logger log.Logger) *Service {
	return &Service{
		Source:    source,
		Generator: generator,
		Cache:     cache,
		Logger:    logger,
		Model:     model,
		TTL:       ttl,
		extract:   pdftext.ExtractPages,
	}
}

func (s *Service) cacheKey(id litxplore.PaperID) string {
	return redis.ArtifactKey(id.String(), schemaVersion, s.Model)
}

// Analyze returns the overview record for a paper, from cache when
// available. forceRefresh skips the cache read but still writes back.
func (s *Service) Analyze(ctx context.Context, id litxplore.PaperID, forceRefresh bool) (*Record, error) {
	key := s.cacheKey(id)

	if !forceRefresh {
		if record := s.readCache(ctx, key); record != nil {
			return record, nil
		}
	}

	paper, pages, err := s.fetchPages(ctx, id)
	if err != nil {
		return nil, err
	}
	text := clip(pdftext.JoinPages(pages), maxTextPrompt)

	record := &Record{Paper: paper, GeneratedAt: time.Now()}

	// From here on a model failure degrades to a labeled fallback, the
	// caller still gets the paper metadata.
	if err := s.generateJSON(ctx, atAGlancePrompt(paper, text), &record.AtAGlance); err != nil {
		s.Logger.Warnf("at-a-glance generation failed for %s: %v", id, err)
		record.AtAGlance = AtAGlance{
			Overview:    "Unable to extract an overview for this paper.",
			Methodology: "Unable to extract the methodology.",
		}
	}

	var questions struct {
		Questions []string `json:"questions"`
	}
	if err := s.generateJSON(ctx, questionsPrompt(paper, text), &questions); err != nil {
		s.Logger.Warnf("question generation failed for %s: %v", id, err)
	}
	record.SuggestedQuestions = questions.Questions

	s.writeCache(ctx, key, record)
	return record, nil
}

// KeyInsights attaches figure and limitation insights to the paper's
// record and rewrites it under the same key.
func (s *Service) KeyInsights(ctx context.Context, id litxplore.PaperID) (*Record, error) {
	record, err := s.Analyze(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if record.KeyInsights != nil {
		return record, nil
	}

	_, pages, err := s.fetchPages(ctx, id)
	if err != nil {
		return nil, err
	}

	insights := &KeyInsights{Figures: s.explainFigures(ctx, record.Paper, pages)}

	text := pdftext.JoinPages(pages)
	tail := text
	if len(tail) > tailChars {
		tail = tail[len(tail)-tailChars:]
	}

	var closing struct {
		Limitations []string `json:"limitations"`
		FutureWork  []string `json:"future_work"`
	}
	if err := s.generateJSON(ctx, closingPrompt(record.Paper, tail), &closing); err != nil {
		s.Logger.Warnf("limitations extraction failed for %s: %v", id, err)
		closing.Limitations = []string{"Unable to extract limitations from this paper."}
	}
	insights.Limitations = closing.Limitations
	insights.FutureWork = closing.FutureWork

	record.KeyInsights = insights
	s.writeCache(ctx, s.cacheKey(id), record)
	return record, nil
}

// InDepth attaches a section-by-section walkthrough to the record.
func (s *Service) InDepth(ctx context.Context, id litxplore.PaperID) (*Record, error) {
	record, err := s.Analyze(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if record.InDepth != nil {
		return record, nil
	}

	_, pages, err := s.fetchPages(ctx, id)
	if err != nil {
		return nil, err
	}
	text := clip(pdftext.JoinPages(pages), inDepthChars)

	var inDepth InDepth
	if err := s.generateJSON(ctx, inDepthPrompt(record.Paper, text), &inDepth); err != nil {
		s.Logger.Warnf("in-depth analysis failed for %s: %v", id, err)
		inDepth.Sections = []Section{{
			Title:    "Analysis unavailable",
			Analysis: "Unable to extract a section-by-section analysis for this paper.",
		}}
	}

	record.InDepth = &inDepth
	s.writeCache(ctx, s.cacheKey(id), record)
	return record, nil
}

func (s *Service) fetchPages(ctx context.Context, id litxplore.PaperID) (litxplore.Paper, []pdftext.Page, error) {
	paper, data, err := s.Source.Fetch(ctx, id)
	if err != nil {
		return litxplore.Paper{}, nil, err
	}

	pages, err := s.extract(data)
	if err != nil {
		return litxplore.Paper{}, nil, err
	}
	return paper, pages, nil
}

// explainFigures scans the page map for figure and table mentions and asks
// the model about the first few distinct ones.
func (s *Service) explainFigures(ctx context.Context, paper litxplore.Paper, pages []pdftext.Page) []FigureInsight {
	seen := make(map[string]bool)
	var insights []FigureInsight

	for _, page := range pages {
		for _, match := range figurePattern.FindAllStringSubmatch(page.Text, -1) {
			kind := "Figure"
			if strings.EqualFold(match[1], "table") {
				kind = "Table"
			}
			number, _ := strconv.Atoi(match[2])
			label := fmt.Sprintf("%s %d", kind, number)
			if seen[label] {
				continue
			}
			seen[label] = true

			var explanation struct {
				Explanation string `json:"explanation"`
			}
			if err := s.generateJSON(ctx, figurePrompt(paper, label, page.Text), &explanation); err != nil {
				s.Logger.Warnf("figure explanation failed for %s: %v", label, err)
				explanation.Explanation = fmt.Sprintf("Unable to extract an explanation for %s.", label)
			}

			insights = append(insights, FigureInsight{
				Label:       label,
				Page:        page.Number,
				Explanation: explanation.Explanation,
			})
			if len(insights) == maxFigures {
				return insights
			}
		}
	}
	return insights
}

func (s *Service) readCache(ctx context.Context, key string) *Record {
	data, ok := s.Cache.Get(ctx, key)
	if !ok {
		return nil
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		s.Logger.Warnf("discarding undecodable artifact %s: %v", key, err)
		return nil
	}
	return &record
}

func (s *Service) writeCache(ctx context.Context, key string, record *Record) {
	data, err := json.Marshal(record)
	if err != nil {
		s.Logger.Errorf("could not encode artifact %s: %v", key, err)
		return
	}
	s.Cache.Put(ctx, key, data, s.TTL)
}

func clip(text string, max int) string {
	if len(text) > max {
		return text[:max]
	}
	return text
}

func atAGlancePrompt(paper litxplore.Paper, text string) string {
	return fmt.Sprintf(`Read the following research paper and reply with a JSON object:
{"overview": "...", "contributions": ["..."], "methodology": "..."}
Title: %s

%s`, paper.Title, text)
}

func questionsPrompt(paper litxplore.Paper, text string) string {
	return fmt.Sprintf(`Suggest 5 insightful questions a reader could ask about this paper.
Reply with a JSON object: {"questions": ["..."]}
Title: %s

%s`, paper.Title, text)
}

func closingPrompt(paper litxplore.Paper, tail string) string {
	return fmt.Sprintf(`From the closing part of this paper, extract the stated limitations and
future work. Reply with a JSON object: {"limitations": ["..."], "future_work": ["..."]}
Title: %s

%s`, paper.Title, tail)
}

func figurePrompt(paper litxplore.Paper, label, pageText string) string {
	return fmt.Sprintf(`Explain what %s of the paper %q shows, based on the page it appears on.
Reply with a JSON object: {"explanation": "..."}

%s`, label, paper.Title, pageText)
}

func inDepthPrompt(paper litxplore.Paper, text string) string {
	return fmt.Sprintf(`Analyze this paper section by section. Reply with a JSON object:
{"sections": [{"title": "...", "analysis": "..."}]}
Title: %s

%s`, paper.Title, text)
}
