// Package review turns a set of papers into a literature review, run as a
// background task, and resolves paper identities to their content on the way.
package review

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
	"github.com/JoelJacobStephen/litxplore/log"
	"github.com/JoelJacobStephen/litxplore/pdftext"
	"github.com/JoelJacobStephen/litxplore/uploads"
)

const metadataTextChars = 2000

// Source resolves both kinds of paper identity: arXiv ids through the
// export API, upload hashes through the local store.
type Source struct {
	Arxiv     *litxplore.ArxivClient
	Uploads   *uploads.Store
	Metadata  litxplore.UploadMetadataStore
	Generator litxplore.Generator
	Logger    log.Logger

	extract func(data []byte) ([]pdftext.Page, error)
}

func NewSource(arxiv *litxplore.ArxivClient, store *uploads.Store, metadata litxplore.UploadMetadataStore, generator litxplore.Generator, logger log.Logger) *Source {
	return &Source{
		Arxiv:     arxiv,
		Uploads:   store,
		Metadata:  metadata,
		Generator: generator,
		Logger:    logger,
		extract:   pdftext.ExtractPages,
	}
}

func (s *Source) Fetch(ctx context.Context, id litxplore.PaperID) (litxplore.Paper, []byte, error) {
	if id.Kind == litxplore.KindUpload {
		return s.fetchUpload(id)
	}
	return s.fetchArxiv(ctx, id)
}

func (s *Source) fetchArxiv(ctx context.Context, id litxplore.PaperID) (litxplore.Paper, []byte, error) {
	paper, err := s.Arxiv.Get(ctx, id.Value)
	if err != nil {
		return litxplore.Paper{}, nil, err
	}

	data, err := s.Arxiv.DownloadPDF(ctx, paper.URL)
	if err != nil {
		return litxplore.Paper{}, nil, err
	}
	return paper, data, nil
}

func (s *Source) fetchUpload(id litxplore.PaperID) (litxplore.Paper, []byte, error) {
	data, err := s.Uploads.Read(id.Value)
	if err != nil {
		return litxplore.Paper{}, nil, err
	}

	return s.uploadPaper(id, data), data, nil
}

// uploadPaper reads the persisted metadata for an upload and falls back to
// a placeholder built from the text itself when none was saved.
func (s *Source) uploadPaper(id litxplore.PaperID, data []byte) litxplore.Paper {
	saved, err := s.Metadata.Get(id.Value)
	if err != nil {
		s.Logger.Warnf("could not read metadata for %s: %v", id, err)
	}
	if saved != nil {
		return *saved
	}

	paper := litxplore.Paper{
		ID:    id.String(),
		Title: fmt.Sprintf("Uploaded paper %s", id.Value),
	}
	if pages, err := s.extract(data); err == nil {
		paper.Summary = clipText(pdftext.JoinPages(pages), metadataTextChars)
	}
	return paper
}

// Lookup resolves a paper's metadata without downloading its PDF when it
// can be avoided.
func (s *Source) Lookup(ctx context.Context, id litxplore.PaperID) (litxplore.Paper, error) {
	if id.Kind != litxplore.KindUpload {
		return s.Arxiv.Get(ctx, id.Value)
	}

	data, err := s.Uploads.Read(id.Value)
	if err != nil {
		return litxplore.Paper{}, err
	}
	return s.uploadPaper(id, data), nil
}

// FetchAll resolves a mixed id list. arXiv papers come back from a single
// batched query, uploads are read individually.
func (s *Source) FetchAll(ctx context.Context, ids []litxplore.PaperID) ([]litxplore.Paper, error) {
	var arxivIDs []string
	var uploadIDs []litxplore.PaperID
	for _, id := range ids {
		if id.Kind == litxplore.KindUpload {
			uploadIDs = append(uploadIDs, id)
		} else {
			arxivIDs = append(arxivIDs, id.Value)
		}
	}

	var papers []litxplore.Paper
	if len(arxivIDs) > 0 {
		found, err := s.Arxiv.Search(ctx, litxplore.ArxivSearch{IDs: arxivIDs, MaxResults: len(arxivIDs)})
		if err != nil {
			return nil, err
		}
		papers = append(papers, found...)
	}

	for _, id := range uploadIDs {
		data, err := s.Uploads.Read(id.Value)
		if err != nil {
			return nil, err
		}
		papers = append(papers, s.uploadPaper(id, data))
	}

	return papers, nil
}

// Ingest stores an uploaded PDF, extracts its metadata with one model call
// over the opening text and persists the result. Metadata extraction
// failing is not fatal, the upload keeps its placeholder form.
func (s *Source) Ingest(ctx context.Context, filename string, data []byte) (litxplore.Paper, error) {
	hash, err := s.Uploads.Save(filename, bytes.NewReader(data))
	if err != nil {
		return litxplore.Paper{}, err
	}

	id := litxplore.PaperID{Kind: litxplore.KindUpload, Value: hash}
	paper := litxplore.Paper{
		ID:    id.String(),
		Title: fmt.Sprintf("Uploaded paper %s", hash),
	}

	pages, err := s.extract(data)
	if err != nil {
		s.Logger.Warnf("could not extract text from upload %s: %v", hash, err)
		return paper, nil
	}
	opening := clipText(pdftext.JoinPages(pages), metadataTextChars)
	paper.Summary = opening

	if extracted, err := s.extractMetadata(ctx, opening); err != nil {
		s.Logger.Warnf("metadata extraction failed for upload %s: %v", hash, err)
	} else {
		paper.Title = extracted.Title
		paper.Authors = extracted.Authors
		if extracted.Summary != "" {
			paper.Summary = extracted.Summary
		}
	}

	if err := s.Metadata.Put(hash, &paper); err != nil {
		s.Logger.Warnf("could not persist metadata for upload %s: %v", hash, err)
	}
	return paper, nil
}

type extractedMetadata struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Summary string   `json:"summary"`
}

func (s *Source) extractMetadata(ctx context.Context, opening string) (extractedMetadata, error) {
	prompt := fmt.Sprintf(`Extract the title, authors and a one-paragraph summary from the
opening of this paper. Reply with a JSON object: {"title": "...", "authors": ["..."], "summary": "..."}

%s`, opening)

	reply, err := s.Generator.Generate(ctx, prompt, litxplore.GenerateOptions{Temperature: 0.1})
	if err != nil {
		return extractedMetadata{}, err
	}

	var meta extractedMetadata
	if err := decodeModelJSON(reply, &meta); err != nil {
		return extractedMetadata{}, err
	}
	if strings.TrimSpace(meta.Title) == "" {
		return extractedMetadata{}, errors.New("model returned no title")
	}
	return meta, nil
}

func clipText(text string, max int) string {
	if len(text) > max {
		return text[:max]
	}
	return text
}
