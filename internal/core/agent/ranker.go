package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"movie-recommender/internal/core/ai"
	"movie-recommender/internal/pkg/common"
)

// 排序常數
const (
	maxRecommendations = 12
	nearTieMargin      = 0.2
	qualityRatingFloor = 7.0
	qualityVoteFloor   = 100
	maxPerFranchise    = 2
)

// Ranker 對候選清單排序並產生推薦說明
// 模型負責排序品味，數量與候選集合的約束一律由程式強制
type Ranker struct {
	reasoner Reasoner
}

func NewRanker(reasoner Reasoner) *Ranker {
	return &Ranker{reasoner: reasoner}
}

// Rank 排序候選並回傳推薦清單
// 空候選直接回傳空清單，不發出任何推理呼叫
func (r *Ranker) Rank(ctx context.Context, userQuery string, items []common.CatalogItem) (*common.RankerOutput, *ai.Result) {
	candidates := Dedupe(items)
	target := targetCount(len(candidates))
	if target == 0 {
		return &common.RankerOutput{Recommendations: []common.RankedRecommendation{}}, nil
	}

	result, err := r.reasoner.Complete(ctx, rankerPrompt(userQuery, candidates, target))
	if err != nil {
		common.LogWarn("排序呼叫失敗，改用決定性排序", zap.Error(err))
		return fallbackRank(candidates, target), nil
	}

	if out := r.enforce(result.Content, candidates, target); out != nil {
		return out, result
	}
	common.LogWarn("排序回應不符約束，改用決定性排序")
	return fallbackRank(candidates, target), result
}

// enforce 驗證並修正模型輸出：丟棄不在候選集合內的項目、
// 從候選回填欄位、重新編號
// 修正後數量不符目標時回傳 nil，交由決定性排序處理
func (r *Ranker) enforce(content string, candidates []common.CatalogItem, target int) *common.RankerOutput {
	payload, ok := common.ExtractJSONObject(content)
	if !ok {
		return nil
	}
	var parsed struct {
		Recommendations []common.RankedRecommendation `json:"recommendations"`
	}
	if err := common.ParseJSON(payload, &parsed); err != nil {
		return nil
	}

	byIdentity := make(map[string]common.CatalogItem, len(candidates))
	byName := make(map[string]common.CatalogItem, len(candidates))
	for _, c := range candidates {
		byIdentity[c.Identity()] = c
		byName[strings.ToLower(c.Name)+"|"+string(c.Type)] = c
	}

	sort.SliceStable(parsed.Recommendations, func(i, j int) bool {
		return parsed.Recommendations[i].Rank < parsed.Recommendations[j].Rank
	})

	seen := make(map[string]bool, target)
	kept := make([]common.RankedRecommendation, 0, target)
	for _, rec := range parsed.Recommendations {
		key := fmt.Sprintf("%s|%s|%d", strings.ToLower(rec.Name), rec.Type, rec.Year)
		source, ok := byIdentity[key]
		if !ok {
			// 年份對不上時退一步用名稱與類型比對
			source, ok = byName[strings.ToLower(rec.Name)+"|"+string(rec.Type)]
		}
		if !ok {
			common.LogWarn("排序輸出含候選集合外的項目，已丟棄",
				zap.String("name", rec.Name))
			continue
		}
		if seen[source.Identity()] {
			continue
		}
		seen[source.Identity()] = true
		kept = append(kept, fromCatalog(source, rec.Explanation))
		if len(kept) == target {
			break
		}
	}

	if len(kept) != target {
		return nil
	}
	for i := range kept {
		kept[i].Rank = i + 1
	}
	return &common.RankerOutput{Recommendations: kept}
}

// Dedupe 以 (名稱小寫, 類型, 年份) 去除重複候選，保留首見順序
func Dedupe(items []common.CatalogItem) []common.CatalogItem {
	seen := make(map[string]bool, len(items))
	out := make([]common.CatalogItem, 0, len(items))
	for _, item := range items {
		key := item.Identity()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// targetCount 截斷規則：12 部以上取 12，否則取不超過候選數的最大偶數
func targetCount(m int) int {
	if m >= maxRecommendations {
		return maxRecommendations
	}
	return m - m%2
}

// fallbackRank 決定性排序：品質分層、評分遞減、近似評分比年份、
// 同系列最多兩部
func fallbackRank(candidates []common.CatalogItem, target int) *common.RankerOutput {
	sorted := append([]common.CatalogItem(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := qualityTier(sorted[i]), qualityTier(sorted[j])
		if ti != tj {
			return ti > tj
		}
		if diff := sorted[i].Rating - sorted[j].Rating; diff > nearTieMargin || diff < -nearTieMargin {
			return sorted[i].Rating > sorted[j].Rating
		}
		return sorted[i].Year > sorted[j].Year
	})

	perFranchise := make(map[string]int)
	picked := make([]common.CatalogItem, 0, target)
	skipped := make([]common.CatalogItem, 0)
	for _, item := range sorted {
		if len(picked) == target {
			break
		}
		key := franchiseKey(item.Name)
		if perFranchise[key] >= maxPerFranchise {
			skipped = append(skipped, item)
			continue
		}
		perFranchise[key]++
		picked = append(picked, item)
	}
	// 多樣性限制導致不足時，用被略過的項目補滿
	for _, item := range skipped {
		if len(picked) == target {
			break
		}
		picked = append(picked, item)
	}

	recs := make([]common.RankedRecommendation, 0, len(picked))
	for i, item := range picked {
		rec := fromCatalog(item, templateExplanation(item))
		rec.Rank = i + 1
		recs = append(recs, rec)
	}
	return &common.RankerOutput{Recommendations: recs}
}

func qualityTier(item common.CatalogItem) int {
	if item.Rating > qualityRatingFloor && item.VoteCount >= qualityVoteFloor {
		return 1
	}
	return 0
}

// franchiseKey 取冒號前的主標題並去掉結尾的集數記號
func franchiseKey(name string) string {
	base := strings.ToLower(name)
	if idx := strings.Index(base, ":"); idx >= 0 {
		base = base[:idx]
	}
	fields := strings.Fields(base)
	for len(fields) > 1 && isSequelToken(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

func isSequelToken(token string) bool {
	switch token {
	case "ii", "iii", "iv", "v", "vi", "vii", "viii", "ix", "x":
		return true
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return token != ""
}

func fromCatalog(item common.CatalogItem, explanation string) common.RankedRecommendation {
	if strings.TrimSpace(explanation) == "" {
		explanation = templateExplanation(item)
	}
	return common.RankedRecommendation{
		Name:                   item.Name,
		Type:                   item.Type,
		Year:                   item.Year,
		Genres:                 item.Genres,
		DurationMinutes:        item.RuntimeMinutes,
		EpisodeDurationMinutes: item.EpisodeRuntimeMinutes,
		AgeRating:              item.AgeRating,
		Rating:                 item.Rating,
		VoteCount:              item.VoteCount,
		Explanation:            explanation,
	}
}

// templateExplanation 決定性說明，至少引用一項具體屬性
func templateExplanation(item common.CatalogItem) string {
	genre := "well-matched"
	if len(item.Genres) > 0 {
		genre = item.Genres[0]
	}
	kind := "movie"
	runtime := ""
	if item.Type == common.ContentTypeShow {
		kind = "show"
		if item.EpisodeRuntimeMinutes > 0 {
			runtime = fmt.Sprintf(" with %d-minute episodes", item.EpisodeRuntimeMinutes)
		}
	} else if item.RuntimeMinutes > 0 {
		runtime = fmt.Sprintf(" at %d minutes", item.RuntimeMinutes)
	}
	if item.Rating > 0 {
		return fmt.Sprintf("Rated %.1f/10, this %d %s %s%s is a strong pick for your request.",
			item.Rating, item.Year, genre, kind, runtime)
	}
	return fmt.Sprintf("A %d %s %s%s matching your criteria.", item.Year, genre, kind, runtime)
}
