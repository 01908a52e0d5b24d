// internal/search/searcher.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

var (
	ErrIndexNotFound = errors.New("index not found")
	ErrSearchTimeout = errors.New("search timed out")
	ErrSearchFailed  = errors.New("search failed")
)

// Query filters indexed applications. Empty fields are ignored.
type Query struct {
	Keywords string
	Status   string
	Role     string
	UserID   string
	From     int
	Size     int
}

type Result struct {
	Applications []Document
	TotalHits    int64
	MaxScore     float64
	Took         int64
}

type Searcher struct {
	client *elasticsearch.Client
	index  string
}

func NewSearcher(client *elasticsearch.Client, index string) *Searcher {
	return &Searcher{client: client, index: index}
}

// NormalizeSize clamps a requested page size to [1, MaxSize].
func NormalizeSize(size int) int {
	switch {
	case size < 1:
		return DefaultSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// BuildQuery builds the bool query body for q.
func BuildQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if kw := strings.TrimSpace(q.Keywords); kw != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  kw,
				"fields": []string{"firstName^3", "lastName^3", "skills^2", "introduction", "institution"},
				"type":   "best_fields",
			},
		})
	}

	terms := []struct{ field, value string }{
		{"status", q.Status},
		{"role", q.Role},
		{"userId", q.UserID},
	}
	for _, t := range terms {
		if t.value != "" {
			filter = append(filter, map[string]interface{}{
				"term": map[string]interface{}{t.field: t.value},
			})
		}
	}

	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"createdAt": "desc"},
		},
	}
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *Searcher) Search(ctx context.Context, q Query) (*Result, error) {
	body, err := json.Marshal(BuildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("%w: encode query: %v", ErrSearchFailed, err)
	}

	from := q.From
	if from < 0 {
		from = 0
	}
	size := NormalizeSize(q.Size)

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, s.index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var decoded searchResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	out := &Result{
		Applications: make([]Document, 0, len(decoded.Hits.Hits)),
		TotalHits:    decoded.Hits.Total.Value,
		Took:         decoded.Took,
	}
	if decoded.Hits.MaxScore != nil {
		out.MaxScore = *decoded.Hits.MaxScore
	}
	for _, hit := range decoded.Hits.Hits {
		out.Applications = append(out.Applications, hit.Source)
	}
	return out, nil
}
