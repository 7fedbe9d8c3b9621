package ai

import (
	"context"
	"strings"
	"time"

	"movie-recommender/internal/core/ai/cache"
	"movie-recommender/internal/infrastructure/config"
	"movie-recommender/internal/pkg/common"
)

// Service AI 服務：在客戶端前面加一層回應快取
type Service struct {
	config *config.Config
	client *Client
	store  cache.Store
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, store cache.Store) *Service {
	return &Service{
		config: cfg,
		client: NewClient(&cfg.OpenRouter),
		store:  store,
	}
}

// Complete 統一對外方法；stage 只用於日誌
func (s *Service) Complete(ctx context.Context, prompt string) (*Result, error) {
	// 統一 prompt 格式：連續空白合併為一格，確保快取 key 一致
	prompt = strings.TrimSpace(prompt)
	prompt = strings.Join(strings.Fields(prompt), " ")

	// 檢查緩存
	if s.store != nil {
		if val, err := s.store.Get(ctx, prompt); err == nil && val != "" {
			var cached Result
			if perr := common.ParseJSON(val, &cached); perr == nil {
				cached.CacheHit = true
				return &cached, nil
			}
		}
	}

	start := time.Now()
	result, err := s.client.Complete(ctx, prompt)
	common.LogAICall("complete", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if data, merr := common.ToJSON(result); merr == nil {
			_ = s.store.Set(ctx, prompt, data)
		}
	}

	return result, nil
}
