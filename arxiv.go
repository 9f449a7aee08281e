package litxplore

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JoelJacobStephen/litxplore/errors"
)

var arxivURL = "http://export.arxiv.org/api/query"

var whitespace = regexp.MustCompile(`\s+`)

type ArxivSearch struct {
	Q          string
	IDs        []string
	Start      int
	MaxResults int
}

// ArxivClient queries the arXiv export API and downloads PDFs.
type ArxivClient struct {
	Client *http.Client
}

func NewArxivClient() *ArxivClient {
	return &ArxivClient{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (c *ArxivClient) Search(ctx context.Context, search ArxivSearch) ([]Paper, error) {
	u, _ := url.Parse(arxivURL)

	query := u.Query()
	if search.Q != "" {
		query.Add("search_query", fmt.Sprintf("all:%s", search.Q))
		query.Add("sortBy", "relevance")
	}
	if len(search.IDs) > 0 {
		query.Add("id_list", strings.Join(search.IDs, ","))
	}
	if search.Start > 0 {
		query.Add("start", strconv.Itoa(search.Start))
	}
	if search.MaxResults > 0 {
		query.Add("max_results", strconv.Itoa(search.MaxResults))
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, errors.New("could not reach arxiv", errors.BadGateway(), errors.WithCause(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New("could not read arxiv response", errors.BadGateway(), errors.WithCause(err))
	}

	r := struct {
		Entries []struct {
			ID        string `xml:"id"`
			Title     string `xml:"title"`
			Summary   string `xml:"summary"`
			Published time.Time `xml:"published"`
			Authors   []struct {
				Name string `xml:"name"`
			} `xml:"author"`
			Links []struct {
				HRef  string `xml:"href,attr"`
				Title string `xml:"title,attr"`
				Type  string `xml:"type,attr"`
			} `xml:"link"`
		} `xml:"entry"`
	}{}
	if err := xml.Unmarshal(data, &r); err != nil {
		return nil, errors.New("could not decode arxiv response", errors.BadGateway(), errors.WithCause(err))
	}

	papers := make([]Paper, len(r.Entries))
	for i, entry := range r.Entries {
		pdfURL := ""
		for _, link := range entry.Links {
			if link.Title == "pdf" || link.Type == "application/pdf" {
				pdfURL = link.HRef
				break
			}
		}

		papers[i] = Paper{
			ID:        ParsePaperID(entryID(entry.ID)).String(),
			Title:     cleanText(entry.Title),
			Summary:   cleanText(entry.Summary),
			Published: entry.Published,
			URL:       pdfURL,
		}
		for _, a := range entry.Authors {
			papers[i].Authors = append(papers[i].Authors, a.Name)
		}
	}

	return papers, nil
}

// Get fetches exactly one paper by id.
func (c *ArxivClient) Get(ctx context.Context, id string) (Paper, error) {
	papers, err := c.Search(ctx, ArxivSearch{IDs: []string{id}, MaxResults: 1})
	if err != nil {
		return Paper{}, err
	}
	if len(papers) == 0 {
		return Paper{}, errors.New(fmt.Sprintf("paper %s not found on arxiv", id), errors.NotFound())
	}
	return papers[0], nil
}

// DownloadPDF fetches the PDF bytes behind a paper's url.
func (c *ArxivClient) DownloadPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, errors.New("could not download pdf", errors.BadGateway(), errors.WithCause(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(fmt.Sprintf("pdf download returned %d", resp.StatusCode), errors.BadGateway())
	}

	return io.ReadAll(resp.Body)
}

// entryID extracts the raw id from an entry URL such as
// http://arxiv.org/abs/1234.5678v5.
func entryID(entryURL string) string {
	parts := strings.Split(entryURL, "/")
	return parts[len(parts)-1]
}

func cleanText(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
