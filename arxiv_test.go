package litxplore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoelJacobStephen/litxplore/errors"
)

var arxivResponse = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title type="html">ArXiv Query: search_query=&amp;id_list=1706.03762&amp;start=0&amp;max_results=10</title>
  <entry>
    <id>http://arxiv.org/abs/1706.03762v5</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
 You Need</title>
    <summary>  The dominant sequence transduction models are based on complex
recurrent or convolutional neural networks.
</summary>
    <author>
      <name>Ashish Vaswani</name>
    </author>
    <author>
      <name>Noam Shazeer</name>
    </author>
    <link href="http://arxiv.org/abs/1706.03762v5" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v5" rel="related" type="application/pdf"/>
  </entry>
</feed>`

var arxivEmptyResponse = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title type="html">ArXiv Query: search_query=&amp;id_list=0000.00000&amp;start=0&amp;max_results=1</title>
</feed>`

func TestArxivClient_Search(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1706.03762", r.URL.Query().Get("id_list"))
		w.Write([]byte(arxivResponse))
	}))
	defer ts.Close()

	defer func(u string) { arxivURL = u }(arxivURL)
	arxivURL = ts.URL

	client := NewArxivClient()
	papers, err := client.Search(context.Background(), ArxivSearch{IDs: []string{"1706.03762"}})
	require.NoError(t, err)
	require.Len(t, papers, 1)

	paper := papers[0]
	assert.Equal(t, "1706.03762", paper.ID)
	assert.Equal(t, "Attention Is All You Need", paper.Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, paper.Authors)
	assert.Contains(t, paper.Summary, "sequence transduction")
	assert.Equal(t, "http://arxiv.org/pdf/1706.03762v5", paper.URL)
}

func TestArxivClient_Search_query(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all:attention", r.URL.Query().Get("search_query"))
		assert.Equal(t, "relevance", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "5", r.URL.Query().Get("max_results"))
		w.Write([]byte(arxivResponse))
	}))
	defer ts.Close()

	defer func(u string) { arxivURL = u }(arxivURL)
	arxivURL = ts.URL

	client := NewArxivClient()
	papers, err := client.Search(context.Background(), ArxivSearch{Q: "attention", MaxResults: 5})
	require.NoError(t, err)
	assert.Len(t, papers, 1)
}

func TestArxivClient_Get_notFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(arxivEmptyResponse))
	}))
	defer ts.Close()

	defer func(u string) { arxivURL = u }(arxivURL)
	arxivURL = ts.URL

	client := NewArxivClient()
	_, err := client.Get(context.Background(), "0000.00000")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestArxivClient_DownloadPDF(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer ts.Close()

	client := NewArxivClient()
	data, err := client.DownloadPDF(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)
}

func TestArxivClient_DownloadPDF_badStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewArxivClient()
	_, err := client.DownloadPDF(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, errors.CodeOf(err))
}
