package agent

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"movie-recommender/internal/pkg/common"
)

const emptyResultMessage = "I couldn't find any movies or shows matching your exact criteria. " +
	"You might try broadening your search (e.g., removing a genre or increasing the time limit)."

// Assemble 將管線終端狀態組裝為對外回應
// 依終端標記決定呈現方式，絕不靠字串內容猜測來源
func Assemble(state *RunState) *common.RecommendResponse {
	response := &common.RecommendResponse{
		Message:   state.Output,
		UserQuery: state.Input,
		Metadata:  metadataFrom(state),
	}
	if response.Message == "" {
		response.Message = "No response generated"
	}

	if state.Tag != TagRanker {
		return response
	}

	// 防禦性解析：結構已在驗證階段把關，這裡失敗只降級為純文字
	trimmed := strings.TrimSpace(state.Output)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return response
	}
	var output common.RankerOutput
	if err := common.ParseJSON(trimmed, &output); err != nil {
		common.LogWarn("推薦輸出組裝時解析失敗，降級為純文字",
			zap.String("traceId", state.TraceID),
			zap.Error(err))
		return response
	}

	items := make([]common.RecommendItem, 0, len(output.Recommendations))
	for _, rec := range output.Recommendations {
		why := rec.Explanation
		if strings.TrimSpace(why) == "" {
			why = "Recommended for you"
		}
		items = append(items, common.RecommendItem{
			Name:                   rec.Name,
			Type:                   rec.Type,
			DurationMinutes:        rec.DurationMinutes,
			EpisodeDurationMinutes: rec.EpisodeDurationMinutes,
			Why:                    why,
			Rank:                   rec.Rank,
		})
	}

	response.Items = items
	if len(items) > 0 {
		response.Message = fmt.Sprintf("Here are my top %d recommendations for you:", len(items))
	} else {
		response.Message = emptyResultMessage
	}
	return response
}

// metadataFrom 遙測欄位，無推理呼叫時全部用零值
func metadataFrom(state *RunState) common.ResponseMetadata {
	meta := common.ResponseMetadata{TraceID: state.TraceID}
	if state.LastResult == nil {
		return meta
	}
	meta.Model = state.LastResult.Model
	meta.ResponseID = state.LastResult.ResponseID
	meta.TokensUsed = common.TokensUsed{
		Prompt:     state.LastResult.Usage.PromptTokens,
		Completion: state.LastResult.Usage.CompletionTokens,
		Total:      state.LastResult.Usage.TotalTokens,
	}
	return meta
}
