package catalog

import (
	"context"
	"fmt"
	"strconv"

	"movie-recommender/internal/infrastructure/config"
	"movie-recommender/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// QueryEngine 目錄查詢引擎
// 把結構化偏好查詢轉成供應商查詢、抓取候選與詳情，回傳正規化目錄條目
type QueryEngine struct {
	config   *config.TMDBConfig
	client   *Client
	taxonomy *TaxonomyCache
	persons  *PersonResolver

	// 詳情請求共用的令牌桶，維持對外呼叫速率上限
	detailLimiter *rate.Limiter
}

// NewQueryEngine 創建目錄查詢引擎
func NewQueryEngine(cfg *config.TMDBConfig, client *Client, taxonomy *TaxonomyCache, persons *PersonResolver) *QueryEngine {
	return &QueryEngine{
		config:        cfg,
		client:        client,
		taxonomy:      taxonomy,
		persons:       persons,
		detailLimiter: rate.NewLimiter(rate.Every(cfg.DetailInterval), 1),
	}
}

// providerType 把內容類型映射到供應商的路徑片段
func providerType(t common.ContentType) string {
	if t == common.ContentTypeShow {
		return "tv"
	}
	return "movie"
}

// sortParam 把排序鍵映射到供應商排序欄位
// "newest" 依內容類型走不同的日期欄位
func sortParam(sortBy string, provider string) string {
	switch sortBy {
	case common.SortNewest:
		if provider == "tv" {
			return "first_air_date.desc"
		}
		return "primary_release_date.desc"
	case common.SortTopRated:
		return "vote_average.desc"
	default:
		return "popularity.desc"
	}
}

// Retrieve 依偏好查詢抓取候選目錄條目
// typePreference=any 時電影與影集兩個分支併發執行；單一分支失敗只降級
// 該分支，全部分支失敗才回傳錯誤
func (e *QueryEngine) Retrieve(ctx context.Context, q common.PreferenceQuery) ([]common.CatalogItem, error) {
	// 共通參數
	commonParams := map[string]string{
		"include_adult":  "false",
		"page":           "1",
		"vote_count.gte": strconv.Itoa(e.config.VoteCountFloor), // 排除低票數的雜訊條目
	}
	if q.TimeLimitMinutes != nil {
		commonParams["with_runtime.lte"] = strconv.Itoa(*q.TimeLimitMinutes)
	}
	if q.MinRating != nil {
		commonParams["vote_average.gte"] = strconv.FormatFloat(*q.MinRating, 'f', -1, 64)
	}
	if q.Language != "" {
		commonParams["with_original_language"] = q.Language
	}

	// 解析人名：cast 用 | 連接（OR），crew 用 , 連接（AND）
	if len(q.Actors) > 0 {
		if castIDs := e.persons.ResolveIDs(ctx, q.Actors, "|"); castIDs != "" {
			commonParams["with_cast"] = castIDs
		}
	}
	if len(q.Directors) > 0 {
		if crewIDs := e.persons.ResolveIDs(ctx, q.Directors, ","); crewIDs != "" {
			commonParams["with_crew"] = crewIDs
		}
	}

	wantMovie := q.TypePreference == common.ContentTypeMovie || q.TypePreference == common.ContentTypeAny
	wantShow := q.TypePreference == common.ContentTypeShow || q.TypePreference == common.ContentTypeAny

	var movies, shows []common.CatalogItem
	var movieErr, showErr error

	g, gCtx := errgroup.WithContext(ctx)
	if wantMovie {
		g.Go(func() error {
			movies, movieErr = e.searchMovies(gCtx, q, commonParams)
			return nil
		})
	}
	if wantShow {
		g.Go(func() error {
			shows, showErr = e.searchShows(gCtx, q, commonParams)
			return nil
		})
	}
	_ = g.Wait()

	// 全部分支失敗才整體失敗，否則降級
	if wantMovie && movieErr != nil {
		common.LogWarn("電影分支檢索失敗", zap.Error(movieErr))
	}
	if wantShow && showErr != nil {
		common.LogWarn("影集分支檢索失敗", zap.Error(showErr))
	}
	failedAll := (!wantMovie || movieErr != nil) && (!wantShow || showErr != nil)
	if failedAll {
		if movieErr != nil {
			return nil, fmt.Errorf("catalog retrieval failed: %w", movieErr)
		}
		return nil, fmt.Errorf("catalog retrieval failed: %w", showErr)
	}

	return append(movies, shows...), nil
}

// searchMovies 電影分支：探索 + 逐條詳情
func (e *QueryEngine) searchMovies(ctx context.Context, q common.PreferenceQuery, commonParams map[string]string) ([]common.CatalogItem, error) {
	params := make(map[string]string, len(commonParams)+4)
	for k, v := range commonParams {
		params[k] = v
	}
	params["sort_by"] = sortParam(q.SortBy, "movie")

	genreIDs, err := e.taxonomy.GenreIDs(ctx, q.GenresInclude, "movie")
	if err != nil {
		return nil, err
	}
	if genreIDs != "" {
		params["with_genres"] = genreIDs
	}

	// 電影的日期欄位
	if q.Year != nil {
		params["primary_release_year"] = strconv.Itoa(*q.Year)
	} else {
		if q.MinYear != nil {
			params["primary_release_date.gte"] = fmt.Sprintf("%d-01-01", *q.MinYear)
		}
		if q.MaxYear != nil {
			params["primary_release_date.lte"] = fmt.Sprintf("%d-12-31", *q.MaxYear)
		}
	}

	var resp discoverResponse
	if err := e.client.get(ctx, "/discover/movie", params, &resp); err != nil {
		return nil, err
	}

	common.LogDebug("電影探索完成", zap.Int("hits", len(resp.Results)))

	items := make([]common.CatalogItem, 0, e.config.MaxCandidates)
	for _, hit := range topN(resp.Results, e.config.MaxCandidates) {
		if err := e.detailLimiter.Wait(ctx); err != nil {
			return items, err
		}
		item, err := e.getMovieDetails(ctx, hit.ID)
		if err != nil {
			// 單一候選詳情失敗只跳過，不中斷整批
			common.LogWarn("電影詳情抓取失敗",
				zap.Int("id", hit.ID),
				zap.Error(err),
			)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// searchShows 影集分支：探索 + 逐條詳情
func (e *QueryEngine) searchShows(ctx context.Context, q common.PreferenceQuery, commonParams map[string]string) ([]common.CatalogItem, error) {
	params := make(map[string]string, len(commonParams)+4)
	for k, v := range commonParams {
		params[k] = v
	}
	params["sort_by"] = sortParam(q.SortBy, "tv")

	genreIDs, err := e.taxonomy.GenreIDs(ctx, q.GenresInclude, "tv")
	if err != nil {
		return nil, err
	}
	if genreIDs != "" {
		params["with_genres"] = genreIDs
	}

	// 影集的日期欄位（首播日期）
	if q.Year != nil {
		params["first_air_date_year"] = strconv.Itoa(*q.Year)
	} else {
		if q.MinYear != nil {
			params["first_air_date.gte"] = fmt.Sprintf("%d-01-01", *q.MinYear)
		}
		if q.MaxYear != nil {
			params["first_air_date.lte"] = fmt.Sprintf("%d-12-31", *q.MaxYear)
		}
	}

	var resp discoverResponse
	if err := e.client.get(ctx, "/discover/tv", params, &resp); err != nil {
		return nil, err
	}

	common.LogDebug("影集探索完成", zap.Int("hits", len(resp.Results)))

	items := make([]common.CatalogItem, 0, e.config.MaxCandidates)
	for _, hit := range topN(resp.Results, e.config.MaxCandidates) {
		if err := e.detailLimiter.Wait(ctx); err != nil {
			return items, err
		}
		item, err := e.getTVDetails(ctx, hit.ID)
		if err != nil {
			common.LogWarn("影集詳情抓取失敗",
				zap.Int("id", hit.ID),
				zap.Error(err),
			)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// getMovieDetails 抓取電影詳情並正規化
func (e *QueryEngine) getMovieDetails(ctx context.Context, id int) (common.CatalogItem, error) {
	var details movieDetails
	params := map[string]string{"append_to_response": "release_dates"}
	if err := e.client.get(ctx, fmt.Sprintf("/movie/%d", id), params, &details); err != nil {
		return common.CatalogItem{}, err
	}

	// 取第一個有值的美國分級，缺省 NR
	certification := "NR"
	for _, r := range details.ReleaseDates.Results {
		if r.ISO31661 != "US" {
			continue
		}
		for _, d := range r.ReleaseDates {
			if d.Certification != "" {
				certification = d.Certification
				break
			}
		}
		break
	}

	return common.CatalogItem{
		Name:           details.Title,
		Type:           common.ContentTypeMovie,
		RuntimeMinutes: details.Runtime,
		Genres:         genreNames(details.Genres),
		Year:           yearOf(details.ReleaseDate),
		AgeRating:      certification,
		Rating:         details.VoteAverage,
		VoteCount:      details.VoteCount,
	}, nil
}

// getTVDetails 抓取影集詳情並正規化
func (e *QueryEngine) getTVDetails(ctx context.Context, id int) (common.CatalogItem, error) {
	var details tvDetails
	params := map[string]string{"append_to_response": "content_ratings"}
	if err := e.client.get(ctx, fmt.Sprintf("/tv/%d", id), params, &details); err != nil {
		return common.CatalogItem{}, err
	}

	certification := "NR"
	for _, r := range details.ContentRatings.Results {
		if r.ISO31661 == "US" && r.Rating != "" {
			certification = r.Rating
			break
		}
	}

	// 平均單集長度；沒有就退回最後一集的長度
	avgRuntime := 0
	if len(details.EpisodeRunTime) > 0 {
		sum := 0
		for _, m := range details.EpisodeRunTime {
			sum += m
		}
		avgRuntime = (sum + len(details.EpisodeRunTime)/2) / len(details.EpisodeRunTime)
	} else if details.LastEpisodeToAir != nil {
		avgRuntime = details.LastEpisodeToAir.Runtime
	}

	return common.CatalogItem{
		Name:                  details.Name,
		Type:                  common.ContentTypeShow,
		EpisodeRuntimeMinutes: avgRuntime,
		Genres:                genreNames(details.Genres),
		Year:                  yearOf(details.FirstAirDate),
		Seasons:               details.NumberOfSeasons,
		AgeRating:             certification,
		Rating:                details.VoteAverage,
		VoteCount:             details.VoteCount,
	}, nil
}

// topN 取前 n 筆，界定後續詳情抓取的成本
func topN(results []discoverResult, n int) []discoverResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}

// genreNames 取出分類法的原始名稱（保持順序）
func genreNames(genres []genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

// yearOf 從 "YYYY-MM-DD" 取年份，空值回傳 0
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
