package ai

// Usage token 使用量信息
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result 推理能力回傳的型別化信封
// 供應商回應的內部形狀只在本套件內展開，管線其他部分一律透過這個結構取值
type Result struct {
	Content    string `json:"content"`
	Model      string `json:"model"`
	ResponseID string `json:"response_id"`
	Usage      Usage  `json:"usage"`
	CacheHit   bool   `json:"cache_hit,omitempty"`
}
