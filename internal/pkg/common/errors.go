package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Error   string `json:"error"`             // 錯誤信息
	Code    string `json:"code"`              // 錯誤代碼
	Details string `json:"details,omitempty"` // 詳細信息
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// AsCustomError 取出鏈上的 CustomError
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest       = "INVALID_REQUEST"        // 400：訊息缺失或格式錯誤
	ErrCodeInputPolicyViolation = "INPUT_POLICY_VIOLATION" // 400：輸入護欄觸發
	ErrCodeUnauthorized         = "UNAUTHORIZED"           // 401：憑證缺失
	ErrCodeRequestTimeout       = "REQUEST_TIMEOUT"        // 408
	ErrCodeTooManyRequests      = "TOO_MANY_REQUESTS"      // 429

	// 服務器錯誤 (5xx)
	ErrCodeOutputPolicyViolation = "OUTPUT_POLICY_VIOLATION" // 500：輸出護欄觸發
	ErrCodeInternalError         = "INTERNAL_ERROR"          // 500
	ErrCodeUpstreamError         = "UPSTREAM_ERROR"          // 502：目錄供應商全部分支失敗
	ErrCodeServiceUnavailable    = "SERVICE_UNAVAILABLE"     // 503
)

// 預定義錯誤
var (
	ErrInvalidRequest       = NewError(ErrCodeInvalidRequest, "Message is required", http.StatusBadRequest, nil)
	ErrInputPolicyViolation = NewError(ErrCodeInputPolicyViolation, "Input rejected by content policy", http.StatusBadRequest, nil)
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "API credential is not configured", http.StatusUnauthorized, nil)
	ErrRequestTimeout       = NewError(ErrCodeRequestTimeout, "Request timeout", http.StatusRequestTimeout, nil)
	ErrTooManyRequests      = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)

	ErrOutputPolicyViolation = NewError(ErrCodeOutputPolicyViolation, "Generated output failed validation", http.StatusInternalServerError, nil)
	ErrInternalError         = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrUpstreamError         = NewError(ErrCodeUpstreamError, "Catalog provider is unavailable", http.StatusBadGateway, nil)

	// 快取相關
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheDisabled = errors.New("cache disabled")
	ErrCacheFull     = errors.New("cache full")
)
