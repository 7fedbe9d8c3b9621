package agent

import (
	"context"

	"go.uber.org/zap"

	"movie-recommender/internal/core/ai"
	"movie-recommender/internal/pkg/common"
)

// Reasoner 推理模型的抽象，由 ai.Service 實作
type Reasoner interface {
	Complete(ctx context.Context, prompt string) (*ai.Result, error)
}

// IntentRouter 意圖分類與閒聊回覆
type IntentRouter struct {
	reasoner Reasoner
}

func NewIntentRouter(reasoner Reasoner) *IntentRouter {
	return &IntentRouter{reasoner: reasoner}
}

// Classify 將使用者輸入分類為三種意圖之一
// 任何失敗（呼叫錯誤、無法解析、未知類別）都回退為 out_of_scope
func (r *IntentRouter) Classify(ctx context.Context, message string) (common.Intent, *ai.Result) {
	result, err := r.reasoner.Complete(ctx, classificationPrompt(message))
	if err != nil {
		common.LogWarn("意圖分類失敗，回退為 out_of_scope", zap.Error(err))
		return common.IntentOutOfScope, nil
	}

	var parsed struct {
		Intent string `json:"intent"`
	}
	payload, ok := common.ExtractJSONObject(result.Content)
	if !ok {
		common.LogWarn("意圖分類回應不含 JSON", zap.String("content", result.Content))
		return common.IntentOutOfScope, result
	}
	if err := common.ParseJSON(payload, &parsed); err != nil {
		common.LogWarn("意圖分類回應解析失敗", zap.Error(err))
		return common.IntentOutOfScope, result
	}

	switch common.Intent(parsed.Intent) {
	case common.IntentGreeting:
		return common.IntentGreeting, result
	case common.IntentRecommendation:
		return common.IntentRecommendation, result
	case common.IntentOutOfScope:
		return common.IntentOutOfScope, result
	default:
		common.LogWarn("意圖分類回傳未知類別", zap.String("intent", parsed.Intent))
		return common.IntentOutOfScope, result
	}
}

// Reply 產生招呼或超出範圍的回覆文字，失敗時使用固定句
func (r *IntentRouter) Reply(ctx context.Context, intent common.Intent, message string) (string, *ai.Result) {
	var prompt, fallback string
	switch intent {
	case common.IntentGreeting:
		prompt, fallback = greetingPrompt(message), fallbackGreetingReply
	default:
		prompt, fallback = outOfScopePrompt(message), fallbackOutOfScopeReply
	}

	result, err := r.reasoner.Complete(ctx, prompt)
	if err != nil {
		common.LogWarn("閒聊回覆生成失敗，使用固定回覆", zap.Error(err))
		return fallback, nil
	}
	text := result.Content
	if text == "" {
		return fallback, result
	}
	return text, result
}
