package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

func fakeES(t *testing.T, handler http.HandlerFunc) *MenuIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &MenuIndex{Client: client, Index: "menu"}
}

func TestSearchDecodesHits(t *testing.T) {
	id := uuid.New()
	var gotPath, gotQuery string
	idx := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{
				"total": map[string]any{"value": 1},
				"hits": []any{
					map[string]any{"_source": map[string]any{
						"id": id.String(), "name": "Latte", "price": 25000, "category": "Coffee", "stock": 5, "isAvailable": true,
					}},
				},
			},
		})
	})

	total, items, err := idx.Search(context.Background(), "latte", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "/menu/_search", gotPath)
	assert.Contains(t, gotQuery, `"multi_match"`)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, domain.CategoryCoffee, items[0].Category)
}

func TestPutUsesDocumentID(t *testing.T) {
	item := &models.MenuItem{ID: uuid.New(), Name: "Latte", Price: 25000}
	var method, path string
	idx := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})

	require.NoError(t, idx.Put(context.Background(), item))
	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasSuffix(path, "/menu/_doc/"+item.ID.String()), path)
}

func TestDeleteIgnoresMissing(t *testing.T) {
	idx := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	})
	assert.NoError(t, idx.Delete(context.Background(), uuid.NewString()))
}
