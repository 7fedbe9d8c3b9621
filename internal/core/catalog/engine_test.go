package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommender/internal/core/catalog"
	"movie-recommender/internal/infrastructure/config"
	"movie-recommender/internal/pkg/common"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fakeTMDB 假目錄供應商，記錄每條路徑收到的查詢參數
type fakeTMDB struct {
	mu      sync.Mutex
	queries map[string]url.Values
	server  *httptest.Server
}

func newFakeTMDB(t *testing.T) *fakeTMDB {
	t.Helper()
	f := &fakeTMDB{queries: make(map[string]url.Values)}

	mux := http.NewServeMux()
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, map[string]interface{}{
			"genres": []map[string]interface{}{
				{"id": 28, "name": "Action"},
				{"id": 878, "name": "Science Fiction"},
			},
		})
	})
	mux.HandleFunc("/genre/tv/list", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, map[string]interface{}{
			"genres": []map[string]interface{}{
				{"id": 10759, "name": "Action & Adventure"},
				{"id": 10765, "name": "Sci-Fi & Fantasy"},
			},
		})
	})
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, map[string]interface{}{
			"page":    1,
			"results": []map[string]interface{}{{"id": 1, "title": "Dune"}},
		})
	})
	mux.HandleFunc("/discover/tv", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, map[string]interface{}{
			"page":    1,
			"results": []map[string]interface{}{{"id": 2, "name": "Severance"}},
		})
	})
	mux.HandleFunc("/movie/1", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, map[string]interface{}{
			"title":        "Dune",
			"runtime":      155,
			"release_date": "2021-10-22",
			"vote_average": 7.8,
			"vote_count":   11000,
			"genres":       []map[string]interface{}{{"id": 878, "name": "Science Fiction"}},
			"release_dates": map[string]interface{}{
				"results": []map[string]interface{}{
					{
						"iso_3166_1": "US",
						"release_dates": []map[string]interface{}{
							{"certification": ""},
							{"certification": "PG-13"},
						},
					},
				},
			},
		})
	})
	mux.HandleFunc("/tv/2", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, map[string]interface{}{
			"name":              "Severance",
			"first_air_date":    "2022-02-18",
			"vote_average":      8.3,
			"vote_count":        2500,
			"number_of_seasons": 2,
			"episode_run_time":  []int{50, 56},
			"genres":            []map[string]interface{}{{"id": 10765, "name": "Sci-Fi & Fantasy"}},
			"content_ratings": map[string]interface{}{
				"results": []map[string]interface{}{
					{"iso_3166_1": "US", "rating": "TV-MA"},
				},
			},
		})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeTMDB) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries[r.URL.Path] = r.URL.Query()
}

func (f *fakeTMDB) query(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path]
}

func (f *fakeTMDB) engine() *catalog.QueryEngine {
	cfg := &config.TMDBConfig{
		APIKey:         "test-key",
		BaseURL:        f.server.URL,
		Timeout:        5 * time.Second,
		RetryCount:     2,
		DetailInterval: time.Millisecond,
		VoteCountFloor: 50,
		MaxCandidates:  20,
	}
	client := catalog.NewClient(cfg)
	return catalog.NewQueryEngine(cfg, client, catalog.NewTaxonomyCache(client), catalog.NewPersonResolver(client))
}

func TestRetrieveAnyMergesBothBranches(t *testing.T) {
	fake := newFakeTMDB(t)
	engine := fake.engine()

	items, err := engine.Retrieve(context.Background(), common.PreferenceQuery{
		TypePreference: common.ContentTypeAny,
		SortBy:         common.SortPopularity,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	byName := map[string]common.CatalogItem{}
	for _, item := range items {
		byName[item.Name] = item
	}

	movie := byName["Dune"]
	assert.Equal(t, common.ContentTypeMovie, movie.Type)
	assert.Equal(t, 155, movie.RuntimeMinutes)
	assert.Equal(t, 2021, movie.Year)
	assert.Equal(t, "PG-13", movie.AgeRating)

	show := byName["Severance"]
	assert.Equal(t, common.ContentTypeShow, show.Type)
	assert.Equal(t, 53, show.EpisodeRuntimeMinutes) // (50+56)/2 四捨五入
	assert.Equal(t, 2022, show.Year)
	assert.Equal(t, "TV-MA", show.AgeRating)
	assert.Equal(t, 2, show.Seasons)

	// 共通參數
	q := fake.query("/discover/movie")
	require.NotNil(t, q)
	assert.Equal(t, "false", q.Get("include_adult"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "50", q.Get("vote_count.gte"))
}

func TestRetrieveLanguageAndTopRatedSort(t *testing.T) {
	fake := newFakeTMDB(t)
	engine := fake.engine()

	_, err := engine.Retrieve(context.Background(), common.PreferenceQuery{
		TypePreference: common.ContentTypeMovie,
		Language:       "fr",
		SortBy:         common.SortTopRated,
	})
	require.NoError(t, err)

	q := fake.query("/discover/movie")
	require.NotNil(t, q)
	assert.Equal(t, "fr", q.Get("with_original_language"))
	assert.Equal(t, "vote_average.desc", q.Get("sort_by"))
}

func TestRetrieveNewestSortIsTypeSpecific(t *testing.T) {
	fake := newFakeTMDB(t)
	engine := fake.engine()

	_, err := engine.Retrieve(context.Background(), common.PreferenceQuery{
		TypePreference: common.ContentTypeAny,
		SortBy:         common.SortNewest,
	})
	require.NoError(t, err)

	assert.Equal(t, "primary_release_date.desc", fake.query("/discover/movie").Get("sort_by"))
	assert.Equal(t, "first_air_date.desc", fake.query("/discover/tv").Get("sort_by"))
}

func TestRetrieveGenreMapping(t *testing.T) {
	fake := newFakeTMDB(t)
	engine := fake.engine()

	_, err := engine.Retrieve(context.Background(), common.PreferenceQuery{
		TypePreference: common.ContentTypeMovie,
		GenresInclude:  []string{"Action", "Science Fiction"},
		SortBy:         common.SortPopularity,
	})
	require.NoError(t, err)

	assert.Equal(t, "28|878", fake.query("/discover/movie").Get("with_genres"))
}

func TestRetrieveUnknownGenreDropped(t *testing.T) {
	fake := newFakeTMDB(t)
	engine := fake.engine()

	_, err := engine.Retrieve(context.Background(), common.PreferenceQuery{
		TypePreference: common.ContentTypeMovie,
		GenresInclude:  []string{"Cooking"},
		SortBy:         common.SortPopularity,
	})
	require.NoError(t, err)

	// 全部未知時不帶 with_genres 參數
	assert.Empty(t, fake.query("/discover/movie").Get("with_genres"))
}

func TestRetrieveYearAndRangeFields(t *testing.T) {
	fake := newFakeTMDB(t)
	engine := fake.engine()

	year := 1999
	_, err := engine.Retrieve(context.Background(), common.PreferenceQuery{
		TypePreference: common.ContentTypeMovie,
		Year:           &year,
		SortBy:         common.SortPopularity,
	})
	require.NoError(t, err)
	assert.Equal(t, "1999", fake.query("/discover/movie").Get("primary_release_year"))

	minYear, maxYear := 1980, 1989
	_, err = engine.Retrieve(context.Background(), common.PreferenceQuery{
		TypePreference: common.ContentTypeShow,
		MinYear:        &minYear,
		MaxYear:        &maxYear,
		SortBy:         common.SortPopularity,
	})
	require.NoError(t, err)
	q := fake.query("/discover/tv")
	assert.Equal(t, "1980-01-01", q.Get("first_air_date.gte"))
	assert.Equal(t, "1989-12-31", q.Get("first_air_date.lte"))
}

func TestRetrieveRuntimeAndRatingFilters(t *testing.T) {
	fake := newFakeTMDB(t)
	engine := fake.engine()

	limit := 120
	minRating := 7.5
	_, err := engine.Retrieve(context.Background(), common.PreferenceQuery{
		TypePreference:   common.ContentTypeMovie,
		TimeLimitMinutes: &limit,
		MinRating:        &minRating,
		SortBy:           common.SortPopularity,
	})
	require.NoError(t, err)

	q := fake.query("/discover/movie")
	assert.Equal(t, "120", q.Get("with_runtime.lte"))
	assert.Equal(t, "7.5", q.Get("vote_average.gte"))
}
