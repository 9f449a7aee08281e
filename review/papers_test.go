package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
	"github.com/JoelJacobStephen/litxplore/log"
	"github.com/JoelJacobStephen/litxplore/pdftext"
	"github.com/JoelJacobStephen/litxplore/uploads"
)

func createSource(t *testing.T, gen litxplore.Generator) (*Source, *uploads.Store) {
	t.Helper()

	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	source := NewSource(litxplore.NewArxivClient(), store, newMemoryMetadata(), gen, log.New("test"))
	source.extract = func(data []byte) ([]pdftext.Page, error) {
		return []pdftext.Page{{Number: 1, Text: "AlphaFold predicts protein structures. J. Jumper et al."}}, nil
	}
	return source, store
}

func TestSource_Ingest(t *testing.T) {
	gen := &stubGenerator{answer: `{"title": "AlphaFold", "authors": ["J. Jumper"], "summary": "Protein structure prediction."}`}
	source, _ := createSource(t, gen)

	paper, err := source.Ingest(context.Background(), "alphafold.pdf", []byte("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Equal(t, "AlphaFold", paper.Title)
	assert.Equal(t, []string{"J. Jumper"}, paper.Authors)

	// The metadata survives, a later fetch returns the extracted form.
	id := litxplore.ParsePaperID(paper.ID)
	require.Equal(t, litxplore.KindUpload, id.Kind)

	fetched, _, err := source.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "AlphaFold", fetched.Title)
}

func TestSource_Ingest_extractionFails(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model down", errors.BadGateway())}
	source, _ := createSource(t, gen)

	// Metadata extraction failing does not fail the upload.
	paper, err := source.Ingest(context.Background(), "alphafold.pdf", []byte("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Contains(t, paper.Title, "Uploaded paper")
	assert.Contains(t, paper.Summary, "AlphaFold")
}

func TestSource_Ingest_badFile(t *testing.T) {
	source, _ := createSource(t, &stubGenerator{})

	_, err := source.Ingest(context.Background(), "notes.txt", []byte("%PDF-1.4 body"))
	require.Error(t, err)
	assert.True(t, errors.IsBadRequest(err))
}

func TestSource_Fetch_missingUpload(t *testing.T) {
	source, _ := createSource(t, &stubGenerator{})

	_, _, err := source.Fetch(context.Background(), litxplore.ParsePaperID("upload_deadbeefdeadbeef"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
