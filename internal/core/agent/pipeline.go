package agent

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"movie-recommender/internal/core/ai"
	"movie-recommender/internal/infrastructure/config"
	"movie-recommender/internal/pkg/common"
)

// Stage 管線執行階段
type Stage string

const (
	StageRouting    Stage = "routing"
	StageParsing    Stage = "parsing"
	StageRetrieving Stage = "retrieving"
	StageRanking    Stage = "ranking"
	StageValidating Stage = "validating"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// TerminalTag 終端輸出的來源標記，組裝階段依此決定如何呈現
type TerminalTag string

const (
	TagGreeting   TerminalTag = "greeting"
	TagOutOfScope TerminalTag = "out_of_scope"
	TagRanker     TerminalTag = "ranker"
)

// Retriever 目錄檢索的抽象，由 catalog.QueryEngine 實作
type Retriever interface {
	Retrieve(ctx context.Context, q common.PreferenceQuery) ([]common.CatalogItem, error)
}

// RunState 單次執行的狀態與終端輸出
type RunState struct {
	Input      string
	TraceID    string
	Stage      Stage
	Tag        TerminalTag
	Output     string
	LastResult *ai.Result
}

func (s *RunState) record(result *ai.Result) {
	if result != nil {
		s.LastResult = result
	}
}

// Pipeline 推薦管線：護欄 → 路由 → 解析 → 檢索 → 排序 → 驗證
// 推理呼叫循序執行，只有目錄檢索分支並行
type Pipeline struct {
	config    *config.Config
	router    *IntentRouter
	extractor *Extractor
	ranker    *Ranker
	retriever Retriever
}

func NewPipeline(cfg *config.Config, reasoner Reasoner, retriever Retriever) *Pipeline {
	return &Pipeline{
		config:    cfg,
		router:    NewIntentRouter(reasoner),
		extractor: NewExtractor(reasoner),
		ranker:    NewRanker(reasoner),
		retriever: retriever,
	}
}

// Run 執行完整管線
// 輸入護欄觸發時立即終止，不得發出任何推理或檢索呼叫
func (p *Pipeline) Run(ctx context.Context, message, traceID string) (*RunState, error) {
	start := time.Now()
	state := &RunState{Input: message, TraceID: traceID, Stage: StageRouting}

	if gr := CheckInput(message, p.config.Guardrail.MaxInputChars, p.config.Guardrail.Blocklist); gr.TripwireTriggered {
		state.Stage = StageFailed
		common.LogWarn("輸入護欄觸發",
			zap.String("traceId", traceID),
			zap.String("reason", gr.Reason))
		return state, common.NewError(common.ErrCodeInputPolicyViolation, gr.Reason, http.StatusBadRequest, nil)
	}

	intent, result := p.router.Classify(ctx, message)
	state.record(result)
	common.LogInfo("意圖分類完成",
		zap.String("traceId", traceID),
		zap.String("intent", string(intent)))

	if intent != common.IntentRecommendation {
		text, replyResult := p.router.Reply(ctx, intent, message)
		state.record(replyResult)
		state.Tag = TagGreeting
		if intent == common.IntentOutOfScope {
			state.Tag = TagOutOfScope
		}
		state.Output = text
		state.Stage = StageDone
		return state, nil
	}

	state.Stage = StageParsing
	queries, extractResult := p.extractor.Extract(ctx, message)
	state.record(extractResult)
	common.LogInfo("偏好解析完成",
		zap.String("traceId", traceID),
		zap.Int("queryCount", len(queries)))

	state.Stage = StageRetrieving
	candidates, err := p.retrieveAll(ctx, queries)
	if err != nil {
		state.Stage = StageFailed
		return state, common.NewError(common.ErrCodeUpstreamError, "Catalog provider is unavailable", http.StatusBadGateway, err)
	}
	common.LogInfo("目錄檢索完成",
		zap.String("traceId", traceID),
		zap.Int("candidateCount", len(candidates)))

	state.Stage = StageRanking
	output, rankResult := p.ranker.Rank(ctx, message, candidates)
	state.record(rankResult)

	raw, err := common.ToJSON(output)
	if err != nil {
		state.Stage = StageFailed
		return state, common.NewError(common.ErrCodeInternalError, "Failed to serialize recommendations", http.StatusInternalServerError, err)
	}

	state.Stage = StageValidating
	if gr := CheckOutput(raw); gr.TripwireTriggered {
		state.Stage = StageFailed
		common.LogError("輸出護欄觸發",
			zap.String("traceId", traceID),
			zap.String("reason", gr.Reason))
		return state, common.NewError(common.ErrCodeOutputPolicyViolation, gr.Reason, http.StatusInternalServerError, nil)
	}

	state.Tag = TagRanker
	state.Output = raw
	state.Stage = StageDone
	common.LogInfo("推薦管線完成",
		zap.String("traceId", traceID),
		zap.Int("recommendationCount", len(output.Recommendations)),
		zap.Duration("duration", time.Since(start)))
	return state, nil
}

// retrieveAll 對每筆查詢並行檢索後合併去重
// 單一查詢失敗只做降級，全部失敗才回傳錯誤
func (p *Pipeline) retrieveAll(ctx context.Context, queries []common.PreferenceQuery) ([]common.CatalogItem, error) {
	var (
		mu       sync.Mutex
		merged   []common.CatalogItem
		failures []error
	)

	g, gCtx := errgroup.WithContext(ctx)
	for _, q := range queries {
		query := q
		g.Go(func() error {
			items, err := p.retriever.Retrieve(gCtx, query)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				common.LogWarn("單一查詢分支檢索失敗", zap.Error(err))
				failures = append(failures, err)
				return nil
			}
			merged = append(merged, items...)
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == len(queries) && len(queries) > 0 {
		return nil, fmt.Errorf("all %d retrieval branches failed: %w", len(queries), failures[0])
	}
	return Dedupe(merged), nil
}
