package catalog

import (
	"context"
	"fmt"
	"net/http"

	"movie-recommender/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// Client TMDB API 客戶端
// 超時與重試次數都有上限；只在網路錯誤或 5xx 時重試，4xx 不重試
type Client struct {
	config *config.TMDBConfig
	client *resty.Client
}

// NewClient 創建 TMDB 客戶端
func NewClient(cfg *config.TMDBConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetQueryParam("api_key", cfg.APIKey)

	return &Client{
		config: cfg,
		client: client,
	}
}

// get 發送 GET 請求並把 JSON 響應解析到 out
func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		Get(path)

	if err != nil {
		return fmt.Errorf("TMDB request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("TMDB API error: status %d for %s", resp.StatusCode(), path)
	}

	return nil
}
