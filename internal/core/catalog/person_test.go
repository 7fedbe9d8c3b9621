package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"movie-recommender/internal/core/catalog"
)

func personServer(t *testing.T) *httptest.Server {
	t.Helper()
	people := map[string]int{
		"Denis Villeneuve": 137427,
		"Zendaya":          505710,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("query")
		id, ok := people[name]
		if !ok {
			writeJSON(w, map[string]interface{}{"results": []interface{}{}})
			return
		}
		writeJSON(w, map[string]interface{}{
			"results": []map[string]interface{}{{"id": id, "name": name}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResolveIDsJoinsWithSeparator(t *testing.T) {
	server := personServer(t)
	resolver := catalog.NewPersonResolver(taxonomyClient(server.URL))

	// cast 用 |（OR），crew 用 ,（AND）
	ids := resolver.ResolveIDs(context.Background(), []string{"Denis Villeneuve", "Zendaya"}, "|")
	assert.Equal(t, "137427|505710", ids)

	ids = resolver.ResolveIDs(context.Background(), []string{"Denis Villeneuve", "Zendaya"}, ",")
	assert.Equal(t, "137427,505710", ids)
}

func TestResolveIDsDropsUnknownNames(t *testing.T) {
	server := personServer(t)
	resolver := catalog.NewPersonResolver(taxonomyClient(server.URL))

	ids := resolver.ResolveIDs(context.Background(), []string{"Nobody At All", "Zendaya"}, "|")
	assert.Equal(t, "505710", ids)

	ids = resolver.ResolveIDs(context.Background(), []string{"Nobody At All"}, "|")
	assert.Empty(t, ids)

	ids = resolver.ResolveIDs(context.Background(), nil, "|")
	assert.Empty(t, ids)
}
