// internal/search/indexer.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"application-workers/internal/common/logger"
	"application-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Indexer writes application documents to Elasticsearch.
type Indexer struct {
	client  *elasticsearch.Client
	index   string
	refresh bool
	logger  logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, refresh bool, log logger.Logger) *Indexer {
	return &Indexer{
		client:  client,
		index:   index,
		refresh: refresh,
		logger:  log.WithFields(map[string]interface{}{"component": "search-indexer", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.index}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.index, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index %s: %s", i.index, res.Status())
	}

	res, err = i.client.Indices.Create(i.index,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.index, res.String())
	}

	i.logger.Info("search index created", nil)
	return nil
}

// Index upserts app's document under its id.
func (i *Indexer) Index(ctx context.Context, app *models.Application) error {
	body, err := json.Marshal(FromApplication(app))
	if err != nil {
		return fmt.Errorf("encode document %s: %w", app.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: app.ID,
		Body:       bytes.NewReader(body),
	}
	if i.refresh {
		req.Refresh = "true"
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index document %s: %w", app.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index document %s: %s", app.ID, res.String())
	}

	i.logger.Debug("application indexed", map[string]interface{}{
		"applicationId": app.ID,
		"status":        app.Status,
	})
	return nil
}
