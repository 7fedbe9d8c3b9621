package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 護欄是純函式，不依賴任何外部服務，觸發與否只取決於輸入本身

// maxOutputEntries 單次回覆的推薦數上限
const maxOutputEntries = 25

// GuardrailResult 護欄檢查結果
type GuardrailResult struct {
	TripwireTriggered bool
	Reason            string
	Info              map[string]interface{}
}

// CheckInput 輸入護欄：空白、超長、黑名單詞彙
// 長度以 byte 計，與上游請求大小限制一致
func CheckInput(text string, maxChars int, blocklist []string) GuardrailResult {
	info := map[string]interface{}{
		"is_empty":            false,
		"is_too_long":         false,
		"has_blocked_content": false,
	}

	if strings.TrimSpace(text) == "" {
		info["is_empty"] = true
		return GuardrailResult{TripwireTriggered: true, Reason: "Empty input", Info: info}
	}

	if len(text) > maxChars {
		info["is_too_long"] = true
		return GuardrailResult{
			TripwireTriggered: true,
			Reason:            fmt.Sprintf("Input too long (max %d characters)", maxChars),
			Info:              info,
		}
	}

	lower := strings.ToLower(text)
	for _, term := range blocklist {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			info["has_blocked_content"] = true
			info["matched_term"] = term
			return GuardrailResult{TripwireTriggered: true, Reason: "Offensive content detected", Info: info}
		}
	}

	return GuardrailResult{Reason: "Input is safe", Info: info}
}

// CheckOutput 輸出護欄：驗證推薦清單的結構
// 只檢查形狀，不重新驗證排序邏輯
func CheckOutput(raw string) GuardrailResult {
	var envelope struct {
		Recommendations *json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return GuardrailResult{TripwireTriggered: true, Reason: "Output is not valid JSON"}
	}
	if envelope.Recommendations == nil {
		return GuardrailResult{TripwireTriggered: true, Reason: "Missing 'recommendations' field"}
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal(*envelope.Recommendations, &entries); err != nil {
		return GuardrailResult{TripwireTriggered: true, Reason: "Recommendations must be an array"}
	}

	if len(entries) > maxOutputEntries {
		return GuardrailResult{
			TripwireTriggered: true,
			Reason:            fmt.Sprintf("Too many recommendations (max %d)", maxOutputEntries),
		}
	}

	for i, entry := range entries {
		if s, ok := entry["name"].(string); !ok || strings.TrimSpace(s) == "" {
			return GuardrailResult{
				TripwireTriggered: true,
				Reason:            fmt.Sprintf("Recommendation %d is missing 'name'", i+1),
			}
		}
		if s, ok := entry["type"].(string); !ok || strings.TrimSpace(s) == "" {
			return GuardrailResult{
				TripwireTriggered: true,
				Reason:            fmt.Sprintf("Recommendation %d is missing 'type'", i+1),
			}
		}
	}

	return GuardrailResult{Reason: "Output is valid"}
}
