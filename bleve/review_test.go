package bleve

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoelJacobStephen/litxplore"
)

func createIndex(t *testing.T) *ReviewIndex {
	t.Helper()

	index := &ReviewIndex{}
	require.NoError(t, index.Open(filepath.Join(t.TempDir(), "reviews.bleve")))
	t.Cleanup(func() {
		if err := index.Close(); err != nil {
			t.Log(err)
		}
	})
	return index
}

func TestReviewIndex_Search(t *testing.T) {
	index := createIndex(t)

	reviews := []*litxplore.Review{
		{ID: 1, UserID: 1, Title: "Transformers in NLP", Topic: "attention"},
		{ID: 2, UserID: 1, Title: "Protein folding", Topic: "structural biology"},
		{ID: 3, UserID: 2, Title: "Transformers for vision", Topic: "attention"},
	}
	for _, review := range reviews {
		require.NoError(t, index.Index(review))
	}

	tests := map[string]struct {
		userID   int
		q        string
		expected []int
	}{
		"by title word":       {1, "transformers", []int{1}},
		"by topic":            {1, "attention", []int{1}},
		"other user":          {2, "transformers", []int{3}},
		"no match":            {1, "astrophysics", []int{}},
		"empty query matches": {2, "", []int{3}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ids, err := index.Search(tt.userID, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestReviewIndex_Delete(t *testing.T) {
	index := createIndex(t)

	require.NoError(t, index.Index(&litxplore.Review{ID: 1, UserID: 1, Title: "Transformers in NLP"}))
	require.NoError(t, index.Delete(1))

	ids, err := index.Search(1, "transformers")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
