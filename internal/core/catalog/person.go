package catalog

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"movie-recommender/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// personLookupConcurrency 同時進行的人名查詢上限
const personLookupConcurrency = 4

// PersonResolver 把演員 / 導演名稱解析為供應商的 person id
// 只在單一請求生命週期內使用，不做跨請求快取
type PersonResolver struct {
	client *Client
}

// NewPersonResolver 創建人名解析器
func NewPersonResolver(client *Client) *PersonResolver {
	return &PersonResolver{client: client}
}

// resolveOne 查詢單一人名，取第一筆結果；查無結果回傳 0
func (r *PersonResolver) resolveOne(ctx context.Context, name string) (int, error) {
	var resp personSearchResponse
	params := map[string]string{
		"query": name,
		"page":  "1",
	}
	if err := r.client.get(ctx, "/search/person", params, &resp); err != nil {
		return 0, err
	}
	if len(resp.Results) == 0 {
		return 0, nil
	}
	return resp.Results[0].ID, nil
}

// ResolveIDs 併發解析多個人名，無法解析的名稱直接丟棄
// sep 決定結果的連接語意：cast 用 "|"（OR），crew 用 ","（AND）
func (r *PersonResolver) ResolveIDs(ctx context.Context, names []string, sep string) string {
	if len(names) == 0 {
		return ""
	}

	ids := make([]int, len(names))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(personLookupConcurrency)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			id, err := r.resolveOne(gCtx, name)
			if err != nil {
				// 單一人名解析失敗只丟棄該名稱，不中斷其餘查詢
				common.LogWarn("人名解析失敗",
					zap.String("name", name),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			ids[i] = id
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var parts []string
	for _, id := range ids {
		if id > 0 {
			parts = append(parts, strconv.Itoa(id))
		}
	}
	return strings.Join(parts, sep)
}
