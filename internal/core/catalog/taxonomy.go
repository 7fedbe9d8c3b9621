package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"movie-recommender/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TaxonomyCache 供應商分類法快取：genre 名稱 → id，依內容類型分開
// 每個內容類型在處理程序生命週期內只載入一次；首次載入用 singleflight
// 保護，併發呼叫者不會觸發重複抓取，也不會看到填了一半的快取
type TaxonomyCache struct {
	client *Client
	group  singleflight.Group
	mu     sync.RWMutex
	byType map[string]map[string]int // 內容類型 -> lower(name) -> id
}

// NewTaxonomyCache 創建分類法快取
func NewTaxonomyCache(client *Client) *TaxonomyCache {
	return &TaxonomyCache{
		client: client,
		byType: make(map[string]map[string]int),
	}
}

// GenreIDs 把 genre 名稱解析為供應商 id，未知名稱靜默丟棄
// 回傳 | 連接的 id 字串（OR 語意）；全部未知時回傳空字串
func (t *TaxonomyCache) GenreIDs(ctx context.Context, names []string, providerType string) (string, error) {
	if len(names) == 0 {
		return "", nil
	}

	genres, err := t.load(ctx, providerType)
	if err != nil {
		return "", err
	}

	var ids []string
	for _, name := range names {
		if id, ok := genres[strings.ToLower(name)]; ok {
			ids = append(ids, fmt.Sprintf("%d", id))
		} else {
			common.LogDebug("未知的 genre 名稱已丟棄",
				zap.String("name", name),
				zap.String("content_type", providerType),
			)
		}
	}

	return strings.Join(ids, "|"), nil
}

// load 取得某內容類型的分類法，必要時惰性載入一次
func (t *TaxonomyCache) load(ctx context.Context, providerType string) (map[string]int, error) {
	t.mu.RLock()
	cached, ok := t.byType[providerType]
	t.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := t.group.Do(providerType, func() (interface{}, error) {
		// 再檢查一次，singleflight 只去重併發呼叫
		t.mu.RLock()
		cached, ok := t.byType[providerType]
		t.mu.RUnlock()
		if ok {
			return cached, nil
		}

		var resp genreListResponse
		if err := t.client.get(ctx, fmt.Sprintf("/genre/%s/list", providerType), nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch genre taxonomy: %w", err)
		}

		genres := make(map[string]int, len(resp.Genres))
		for _, g := range resp.Genres {
			genres[strings.ToLower(g.Name)] = g.ID
		}

		t.mu.Lock()
		t.byType[providerType] = genres
		t.mu.Unlock()

		common.LogInfo("分類法已載入",
			zap.String("content_type", providerType),
			zap.Int("genres", len(genres)),
		)
		return genres, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(map[string]int), nil
}
