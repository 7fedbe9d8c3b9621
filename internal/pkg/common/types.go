package common

import (
	"fmt"
	"strings"
)

// Intent 使用者輸入的頂層分類
type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentRecommendation Intent = "recommendation"
	IntentOutOfScope     Intent = "out_of_scope"
)

// ContentType 內容類型（電影 / 影集）
type ContentType string

const (
	ContentTypeMovie ContentType = "movie"
	ContentTypeShow  ContentType = "show"
	ContentTypeAny   ContentType = "any"
)

// 排序方式
const (
	SortPopularity = "popularity"
	SortNewest     = "newest"
	SortTopRated   = "top_rated"
)

// PreferenceQuery 由自然語言解析出的結構化偏好查詢
// 注意：GenresInclude 必須是目標分類法的完全一致字串（電影與影集的分類法不同）
type PreferenceQuery struct {
	TypePreference   ContentType `json:"typePreference"`
	GenresInclude    []string    `json:"genresInclude"`
	TimeLimitMinutes *int        `json:"timeLimitMinutes,omitempty"`
	Year             *int        `json:"year,omitempty"`
	MinYear          *int        `json:"minYear,omitempty"`
	MaxYear          *int        `json:"maxYear,omitempty"`
	MinRating        *float64    `json:"minRating,omitempty"`
	Language         string      `json:"language,omitempty"` // ISO-639-1
	Actors           []string    `json:"actors,omitempty"`
	Directors        []string    `json:"directors,omitempty"`
	SortBy           string      `json:"sortBy,omitempty"`
}

// CatalogItem 正規化後的目錄條目
// 電影帶 RuntimeMinutes，影集帶 EpisodeRuntimeMinutes 與 Seasons
type CatalogItem struct {
	Name                  string      `json:"name"`
	Type                  ContentType `json:"type"`
	RuntimeMinutes        int         `json:"runtimeMinutes,omitempty"`
	EpisodeRuntimeMinutes int         `json:"episodeRuntimeMinutes,omitempty"`
	Genres                []string    `json:"genres"`
	Year                  int         `json:"year"`
	Seasons               int         `json:"seasons,omitempty"`
	AgeRating             string      `json:"ageRating"`
	Rating                float64     `json:"rating"`
	VoteCount             int         `json:"voteCount"`
}

// Identity 去重複用的識別鍵 (name, type, year)
func (c CatalogItem) Identity() string {
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(c.Name), c.Type, c.Year)
}

// RankedRecommendation 排序後的推薦條目
type RankedRecommendation struct {
	Name                   string      `json:"name"`
	Type                   ContentType `json:"type"`
	DurationMinutes        int         `json:"durationMinutes,omitempty"`
	EpisodeDurationMinutes int         `json:"episodeDurationMinutes,omitempty"`
	Genres                 []string    `json:"genres,omitempty"`
	Year                   int         `json:"year,omitempty"`
	AgeRating              string      `json:"ageRating,omitempty"`
	Rating                 float64     `json:"rating,omitempty"`
	VoteCount              int         `json:"voteCount,omitempty"`
	Rank                   int         `json:"rank"`
	Explanation            string      `json:"explanation"`
}

// RankerOutput 排序階段的結構化輸出
type RankerOutput struct {
	Recommendations []RankedRecommendation `json:"recommendations"`
}

// RecommendRequest 對外操作的請求格式
type RecommendRequest struct {
	Message string `json:"message" binding:"required"`
}

// RecommendItem 回應中的推薦條目
type RecommendItem struct {
	Name                   string      `json:"name"`
	Type                   ContentType `json:"type"`
	DurationMinutes        int         `json:"durationMinutes,omitempty"`
	EpisodeDurationMinutes int         `json:"episodeDurationMinutes,omitempty"`
	Why                    string      `json:"why"`
	Rank                   int         `json:"rank,omitempty"`
}

// TokensUsed token 使用量
type TokensUsed struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// ResponseMetadata 推理能力的使用量遙測
type ResponseMetadata struct {
	Model      string     `json:"model"`
	TokensUsed TokensUsed `json:"tokensUsed"`
	ResponseID string     `json:"responseId"`
	TraceID    string     `json:"traceId"`
}

// RecommendResponse 對外操作的成功回應格式
type RecommendResponse struct {
	Message   string           `json:"message"`
	UserQuery string           `json:"userQuery"`
	Items     []RecommendItem  `json:"items,omitempty"`
	Metadata  ResponseMetadata `json:"metadata"`
}

// FormatCatalogItems 將目錄條目格式化為 prompt 用的清單
func FormatCatalogItems(items []CatalogItem) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s (%s, %d): genres=%s, rating=%.1f, votes=%d",
			item.Name, item.Type, item.Year, strings.Join(item.Genres, "/"), item.Rating, item.VoteCount))
		if item.Type == ContentTypeMovie && item.RuntimeMinutes > 0 {
			sb.WriteString(fmt.Sprintf(", runtime=%dm", item.RuntimeMinutes))
		}
		if item.Type == ContentTypeShow {
			if item.EpisodeRuntimeMinutes > 0 {
				sb.WriteString(fmt.Sprintf(", episode=%dm", item.EpisodeRuntimeMinutes))
			}
			if item.Seasons > 0 {
				sb.WriteString(fmt.Sprintf(", seasons=%d", item.Seasons))
			}
		}
		if item.AgeRating != "" {
			sb.WriteString(fmt.Sprintf(", rated=%s", item.AgeRating))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// StringSliceToString 將字串切片轉換為逗號分隔的字串
func StringSliceToString(slice []string) string {
	if len(slice) == 0 {
		return ""
	}
	return strings.Join(slice, ", ")
}
