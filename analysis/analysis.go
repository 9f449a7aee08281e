// Package analysis produces structured readings of a paper: a quick
// overview, figure-level insights and a section-by-section walkthrough.
// Results are cached as versioned artifacts so repeat requests are cheap.
package analysis

import (
	"time"

	"github.com/JoelJacobStephen/litxplore"
)

// schemaVersion is part of every cache key. Bump it when the record
// layout changes so stale artifacts are never decoded into new fields.
const schemaVersion = "analysis-v1"

type AtAGlance struct {
	Overview      string   `json:"overview"`
	Contributions []string `json:"contributions"`
	Methodology   string   `json:"methodology"`
}

type FigureInsight struct {
	Label       string `json:"label"`
	Page        int    `json:"page"`
	Explanation string `json:"explanation"`
}

type KeyInsights struct {
	Figures     []FigureInsight `json:"figures"`
	Limitations []string        `json:"limitations"`
	FutureWork  []string        `json:"future_work"`
}

type Section struct {
	Title    string `json:"title"`
	Analysis string `json:"analysis"`
}

type InDepth struct {
	Sections []Section `json:"sections"`
}

// Record is the cached analysis of one paper. Optional parts are attached
// incrementally and the whole record is rewritten under the same key.
type Record struct {
	Paper              litxplore.Paper `json:"paper"`
	AtAGlance          AtAGlance       `json:"at_a_glance"`
	SuggestedQuestions []string        `json:"suggested_questions"`
	KeyInsights        *KeyInsights    `json:"key_insights,omitempty"`
	InDepth            *InDepth        `json:"in_depth,omitempty"`
	GeneratedAt        time.Time       `json:"generated_at"`
}
