// Package search keeps an Elasticsearch copy of the menu for free-text
// lookups. The SQL catalog stays the source of truth.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/pkg/config"
)

type MenuIndex struct {
	Client *elasticsearch.Client
	Index  string
}

func NewClient(cfg config.SearchConfig) (*elasticsearch.Client, error) {
	log.Printf("connecting to elasticsearch at %s", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return client, nil
}

func (m *MenuIndex) Put(ctx context.Context, item *models.MenuItem) error {
	body, err := json.Marshal(item)
	if err != nil {
		return err
	}
	res, err := m.Client.Index(m.Index, bytes.NewReader(body),
		m.Client.Index.WithContext(ctx),
		m.Client.Index.WithDocumentID(item.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index %s: %w", item.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index %s: %s", item.ID, res.Status())
	}
	return nil
}

func (m *MenuIndex) Delete(ctx context.Context, id string) error {
	res, err := m.Client.Delete(m.Index, id, m.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete %s: %s", id, res.Status())
	}
	return nil
}

func (m *MenuIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.MenuItem, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := m.Client.Search(
		m.Client.Search.WithContext(ctx),
		m.Client.Search.WithIndex(m.Index),
		m.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.MenuItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	items := make([]models.MenuItem, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}
