package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JoelJacobStephen/litxplore"
)

// Generated is the payload stored on a completed task.
type Generated struct {
	Review    string            `json:"review"`
	Citations []litxplore.Paper `json:"citations"`
	Topic     string            `json:"topic"`
}

// generateReview prompts the model with the paper summaries, citing them
// by number, and appends a references section.
func generateReview(ctx context.Context, generator litxplore.Generator, topic string, papers []litxplore.Paper) (string, error) {
	review, err := generator.Generate(ctx, reviewPrompt(topic, papers), litxplore.GenerateOptions{
		Temperature: 0.5,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(review) + "\n\n" + referencesSection(papers), nil
}

func reviewPrompt(topic string, papers []litxplore.Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a literature review on %q based on the papers below.\n", topic)
	b.WriteString("Cite papers with their bracketed number, for example [1]. ")
	b.WriteString("Structure the review with an introduction, thematic sections and a conclusion. ")
	b.WriteString("Do not invent papers beyond the ones given.\n\n")

	for i, paper := range papers {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, paper.Title)
		if len(paper.Authors) > 0 {
			fmt.Fprintf(&b, "Authors: %s\n", strings.Join(paper.Authors, ", "))
		}
		fmt.Fprintf(&b, "Summary: %s\n\n", paper.Summary)
	}

	return b.String()
}

func referencesSection(papers []litxplore.Paper) string {
	var b strings.Builder
	b.WriteString("## References\n\n")
	for i, paper := range papers {
		fmt.Fprintf(&b, "[%d] %s", i+1, paper.Title)
		if len(paper.Authors) > 0 {
			fmt.Fprintf(&b, ". %s", strings.Join(paper.Authors, ", "))
		}
		if paper.URL != "" {
			fmt.Fprintf(&b, ". %s", paper.URL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// decodeModelJSON tolerates a model wrapping its JSON reply in markdown
// fences or surrounding prose.
func decodeModelJSON(reply string, dst interface{}) error {
	reply = strings.TrimSpace(reply)
	if start := strings.Index(reply, "{"); start >= 0 {
		if end := strings.LastIndex(reply, "}"); end > start {
			reply = reply[start : end+1]
		}
	}
	return json.Unmarshal([]byte(reply), dst)
}
