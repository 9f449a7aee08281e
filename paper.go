package litxplore

import (
	"context"
	"time"
)

type Paper struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Authors   []string  `json:"authors"`
	Summary   string    `json:"summary"`
	Published time.Time `json:"published"`
	URL       string    `json:"url,omitempty"`
}

// PaperSource resolves a paper identity to its metadata and raw PDF bytes.
// Implementations fetch from arXiv or from the local upload store depending
// on the identity kind.
type PaperSource interface {
	Fetch(ctx context.Context, id PaperID) (Paper, []byte, error)
}

// UploadMetadataStore persists the metadata extracted when a PDF is uploaded,
// keyed by content hash, so that later lookups do not have to re-derive it.
type UploadMetadataStore interface {
	Get(hash string) (*Paper, error)
	Put(hash string, paper *Paper) error
	Delete(hash string) error
}

// Embedder turns a batch of text chunks into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerateOptions tweak a single generation call.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// Generator is a generative-model provider issuing one single-shot
// completion per call.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ArtifactCache maps versioned cache keys to JSON blobs with a TTL. A broken
// backing store degrades to misses and no-op writes: callers never fail
// because the cache is down.
type ArtifactCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, data []byte, ttl time.Duration)
}
