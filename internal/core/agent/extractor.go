package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"movie-recommender/internal/core/ai"
	"movie-recommender/internal/pkg/common"
)

// Extractor 將自然語言請求解析為結構化偏好查詢
type Extractor struct {
	reasoner Reasoner
}

func NewExtractor(reasoner Reasoner) *Extractor {
	return &Extractor{reasoner: reasoner}
}

// Extract 解析偏好，保證至少回傳一筆查詢
// 解析失敗時回退為最寬鬆的查詢，讓管線能繼續檢索
func (e *Extractor) Extract(ctx context.Context, message string) ([]common.PreferenceQuery, *ai.Result) {
	result, err := e.reasoner.Complete(ctx, extractorPrompt(message))
	if err != nil {
		common.LogWarn("偏好解析呼叫失敗，使用寬鬆查詢", zap.Error(err))
		return []common.PreferenceQuery{permissiveQuery()}, nil
	}

	payload, ok := common.ExtractJSONObject(result.Content)
	if !ok {
		common.LogWarn("偏好解析回應不含 JSON", zap.String("content", result.Content))
		return []common.PreferenceQuery{permissiveQuery()}, result
	}

	var parsed struct {
		Queries []common.PreferenceQuery `json:"queries"`
	}
	if err := common.ParseJSON(payload, &parsed); err != nil {
		common.LogWarn("偏好解析回應解析失敗", zap.Error(err))
		return []common.PreferenceQuery{permissiveQuery()}, result
	}

	queries := make([]common.PreferenceQuery, 0, len(parsed.Queries))
	for _, q := range parsed.Queries {
		queries = append(queries, normalizeQuery(q))
	}
	if len(queries) == 0 {
		queries = append(queries, permissiveQuery())
	}
	return queries, result
}

func permissiveQuery() common.PreferenceQuery {
	return common.PreferenceQuery{
		TypePreference: common.ContentTypeAny,
		SortBy:         common.SortPopularity,
	}
}

// normalizeQuery 修正模型輸出的偏差，確保下游只看到合法值
func normalizeQuery(q common.PreferenceQuery) common.PreferenceQuery {
	switch q.TypePreference {
	case common.ContentTypeMovie, common.ContentTypeShow, common.ContentTypeAny:
	default:
		q.TypePreference = common.ContentTypeAny
	}

	genres := make([]string, 0, len(q.GenresInclude))
	for _, g := range q.GenresInclude {
		if name := canonicalGenre(g, q.TypePreference); name != "" {
			genres = append(genres, name)
		}
	}
	q.GenresInclude = genres

	if q.TimeLimitMinutes != nil && *q.TimeLimitMinutes <= 0 {
		q.TimeLimitMinutes = nil
	}
	if q.MinRating != nil {
		if *q.MinRating < 0 {
			*q.MinRating = 0
		}
		if *q.MinRating > 10 {
			*q.MinRating = 10
		}
	}
	if q.MinYear != nil && q.MaxYear != nil && *q.MinYear > *q.MaxYear {
		q.MinYear, q.MaxYear = q.MaxYear, q.MinYear
	}
	q.Language = strings.ToLower(strings.TrimSpace(q.Language))

	switch q.SortBy {
	case common.SortPopularity, common.SortNewest, common.SortTopRated:
	default:
		q.SortBy = common.SortPopularity
	}
	return q
}

// canonicalGenre 把使用者用語對齊到分類法字串
// 找不到對應時回傳原字串，由檢索端比對分類表時再行丟棄
func canonicalGenre(name string, contentType common.ContentType) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)

	lookup := func(valid []string, aliases map[string]string) (string, bool) {
		for _, v := range valid {
			if strings.ToLower(v) == lower {
				return v, true
			}
		}
		if v, ok := aliases[lower]; ok {
			return v, true
		}
		return "", false
	}

	switch contentType {
	case common.ContentTypeMovie:
		if v, ok := lookup(MovieGenres, movieGenreAliases); ok {
			return v
		}
	case common.ContentTypeShow:
		if v, ok := lookup(ShowGenres, showGenreAliases); ok {
			return v
		}
	default:
		// any 同時查兩張表，電影分類優先
		if v, ok := lookup(MovieGenres, movieGenreAliases); ok {
			return v
		}
		if v, ok := lookup(ShowGenres, showGenreAliases); ok {
			return v
		}
	}
	return trimmed
}
