package recommend_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommender/internal/api/handlers/recommend"
	"movie-recommender/internal/infrastructure/config"
	"movie-recommender/internal/pkg/common"
)

func newTestRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := recommend.NewHandler(cfg, nil)
	router.POST("/api/v1/recommend", handler.HandleRecommend)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleRecommendMissingMessage(t *testing.T) {
	router := newTestRouter(&config.Config{})

	w := postJSON(t, router, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, decodeError(t, w).Code)
}

func TestHandleRecommendBlankMessage(t *testing.T) {
	router := newTestRouter(&config.Config{})

	w := postJSON(t, router, `{"message": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, decodeError(t, w).Code)
}

func TestHandleRecommendMalformedBody(t *testing.T) {
	router := newTestRouter(&config.Config{})

	w := postJSON(t, router, `{"message": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRecommendMissingCredentials(t *testing.T) {
	// 憑證檢查發生在任何管線工作之前
	cases := []config.Config{
		{},
		{OpenRouter: config.OpenRouterConfig{APIKey: "set"}},
		{TMDB: config.TMDBConfig{APIKey: "set"}},
	}
	for _, cfg := range cases {
		cfg := cfg
		router := newTestRouter(&cfg)
		w := postJSON(t, router, `{"message": "recommend me something"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, common.ErrCodeUnauthorized, decodeError(t, w).Code)
	}
}
