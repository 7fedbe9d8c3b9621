package agent_test

import (
	"context"
	"sync"

	"movie-recommender/internal/core/ai"
)

// scriptedReasoner 依序回傳預先準備的回應
type scriptedReasoner struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *scriptedReasoner) Complete(ctx context.Context, prompt string) (*ai.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	content := "{}"
	if len(s.responses) > 0 {
		content = s.responses[0]
		s.responses = s.responses[1:]
	}
	return &ai.Result{
		Content:    content,
		Model:      "test-model",
		ResponseID: "resp-1",
		Usage: ai.Usage{
			PromptTokens:     10,
			CompletionTokens: 5,
			TotalTokens:      15,
		},
	}, nil
}

func (s *scriptedReasoner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
