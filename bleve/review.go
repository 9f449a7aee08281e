package bleve

import (
	"strconv"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"

	"github.com/JoelJacobStephen/litxplore"
)

// ReviewIndex is a full text index over saved reviews. Every document
// carries its owner so searches never leak across users.
type ReviewIndex struct {
	index bleve.Index
}

func (s *ReviewIndex) Open(path string) error {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, indexMapping())
	}
	if err != nil {
		return err
	}

	s.index = index
	return nil
}

func (s *ReviewIndex) Close() error {
	if s.index == nil {
		return nil
	}

	return s.index.Close()
}

func (s *ReviewIndex) Index(review *litxplore.Review) error {
	data := map[string]interface{}{
		"title":   review.Title,
		"topic":   review.Topic,
		"content": review.Content,
		"user_id": strconv.Itoa(review.UserID),
	}

	return s.index.Index(strconv.Itoa(review.ID), data)
}

func (s *ReviewIndex) Delete(id int) error {
	return s.index.Delete(strconv.Itoa(id))
}

func (s *ReviewIndex) Search(userID int, q string) ([]int, error) {
	owner := query.NewTermQuery(strconv.Itoa(userID))
	owner.SetField("user_id")

	searchQuery := andQ(owner, s.searchText(q))

	searchRequest := bleve.NewSearchRequest(searchQuery)
	searchRequest.SortBy([]string{"_id"})
	searchRequest.Size = 100

	searchResults, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, err
	}

	ids := make([]int, len(searchResults.Hits))
	for i, hit := range searchResults.Hits {
		ids[i], err = strconv.Atoi(hit.ID)
		if err != nil {
			return nil, err
		}
	}

	return ids, nil
}

func (s *ReviewIndex) searchText(queryString string) query.Query {
	words := strings.Fields(queryString)

	ands := make([]query.Query, 0, len(words))
	for _, word := range words {
		ands = append(ands, orQ(
			s.prefixQuery(word, "title"),
			s.prefixQuery(word, "topic"),
			s.prefixQuery(word, "content"),
		))
	}

	return andQ(ands...)
}

func (s *ReviewIndex) prefixQuery(word, field string) query.Query {
	analyzer := s.index.Mapping().AnalyzerNamed(en.AnalyzerName)
	tokens := analyzer.Analyze([]byte(word))
	if len(tokens) == 0 {
		return nil
	}

	conjuncs := make([]query.Query, len(tokens))
	for i, token := range tokens {
		conjuncs[i] = &query.PrefixQuery{
			Prefix:   string(token.Term),
			FieldVal: field,
		}
	}

	return query.NewConjunctionQuery(conjuncs)
}

func andQ(qs ...query.Query) query.Query {
	ands := make([]query.Query, 0, len(qs))
	for _, q := range qs {
		if q != nil {
			ands = append(ands, q)
		}
	}

	if len(ands) == 0 {
		return query.NewMatchAllQuery()
	}
	return query.NewConjunctionQuery(ands)
}

func orQ(qs ...query.Query) query.Query {
	ors := make([]query.Query, 0, len(qs))
	for _, q := range qs {
		if q != nil {
			ors = append(ors, q)
		}
	}

	if len(ors) == 0 {
		return nil
	}
	return query.NewDisjunctionQuery(ors)
}

func indexMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName

	ownerField := bleve.NewTextFieldMapping()
	ownerField.Analyzer = keyword.Name

	review := bleve.NewDocumentMapping()
	review.AddFieldMappingsAt("title", text)
	review.AddFieldMappingsAt("topic", text)
	review.AddFieldMappingsAt("content", text)
	review.AddFieldMappingsAt("user_id", ownerField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = review
	return m
}
