package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"movie-recommender/internal/infrastructure/config"
)

// Store 推理回應快取的統一介面
// Manager（記憶體）與 RedisStore 都實作這個介面，後端由設定選擇
type Store interface {
	Get(ctx context.Context, prompt string) (string, error)
	Set(ctx context.Context, prompt string, value string) error
	Close() error
}

// NewStore 根據設定創建快取後端；快取停用時回傳 nil
func NewStore(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case "redis":
		return NewRedisStore(&cfg.Cache)
	default:
		return NewManager(&cfg.Cache), nil
	}
}

// hashPrompt 生成緩存鍵
func hashPrompt(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("ai:response:%s", hex.EncodeToString(hash[:]))
}
