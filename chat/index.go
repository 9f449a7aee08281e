package chat

import (
	"math"
	"sort"
)

// Chunk is one indexed piece of a paper, remembering the page it came from.
type Chunk struct {
	Text string
	Page int
}

type scored struct {
	chunk Chunk
	score float64
}

// index is an in-memory vector index over the chunks of a single paper.
// It is built per request and thrown away with it.
type index struct {
	chunks  []Chunk
	vectors [][]float32
}

func newIndex(chunks []Chunk, vectors [][]float32) *index {
	return &index{chunks: chunks, vectors: vectors}
}

// search returns the k chunks most similar to the query vector, best first.
func (idx *index) search(query []float32, k int) []Chunk {
	if k <= 0 || len(idx.chunks) == 0 {
		return nil
	}

	results := make([]scored, 0, len(idx.chunks))
	for i, vec := range idx.vectors {
		results = append(results, scored{
			chunk: idx.chunks[i],
			score: cosine(query, vec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}

	chunks := make([]Chunk, k)
	for i := 0; i < k; i++ {
		chunks[i] = results[i].chunk
	}
	return chunks
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
