package recommend

import (
	"net/http"
	"strings"

	"movie-recommender/internal/core/agent"
	"movie-recommender/internal/infrastructure/config"
	"movie-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler 推薦 API 處理器
type Handler struct {
	config   *config.Config
	pipeline *agent.Pipeline
}

func NewHandler(cfg *config.Config, pipeline *agent.Pipeline) *Handler {
	return &Handler{config: cfg, pipeline: pipeline}
}

// HandleRecommend 處理 /recommend 推薦請求
// 憑證檢查在任何管線工作之前，缺憑證就不做任何推理或檢索
func (h *Handler) HandleRecommend(c *gin.Context) {
	traceID := c.GetHeader("X-Request-ID")
	if traceID == "" {
		traceID = uuid.New().String()
		c.Header("X-Request-ID", traceID)
	}

	common.LogInfo("開始處理推薦請求",
		zap.String("request_id", traceID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req common.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", traceID),
		)
		writeError(c, common.ErrInvalidRequest, "'message' field is required")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(c, common.ErrInvalidRequest, "'message' must not be empty")
		return
	}

	if h.config.OpenRouter.APIKey == "" || h.config.TMDB.APIKey == "" {
		common.LogError("API 憑證未設定",
			zap.Bool("openrouter_key_set", h.config.OpenRouter.APIKey != ""),
			zap.Bool("tmdb_key_set", h.config.TMDB.APIKey != ""),
			zap.String("request_id", traceID),
		)
		writeError(c, common.ErrUnauthorized, "")
		return
	}

	state, err := h.pipeline.Run(c.Request.Context(), message, traceID)
	if err != nil {
		if custom, ok := common.AsCustomError(err); ok {
			common.LogWarn("推薦管線回傳錯誤",
				zap.String("code", custom.Code),
				zap.String("request_id", traceID),
				zap.Error(err),
			)
			writeError(c, custom, "")
			return
		}
		common.LogError("推薦管線發生未預期錯誤",
			zap.Error(err),
			zap.String("request_id", traceID),
		)
		writeError(c, common.ErrInternalError, "")
		return
	}

	c.JSON(http.StatusOK, agent.Assemble(state))
}

func writeError(c *gin.Context, custom *common.CustomError, details string) {
	c.JSON(custom.Status, common.ErrorResponse{
		Error:   custom.Message,
		Code:    custom.Code,
		Details: details,
	})
}
