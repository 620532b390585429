package llm

import (
	"context"
	"sync"
)

// StaticClient is a Client that returns canned responses. It is used for
// offline runs and tests.
type StaticClient struct {
	mu sync.Mutex
	// Respond produces the response for a prompt. When nil, Response is returned.
	Respond  func(prompt string, tier ModelTier) (string, error)
	Response string
	Err      error
	calls    int
}

// GenerateContent implements Client.
func (s *StaticClient) GenerateContent(_ context.Context, prompt string, tier ModelTier) (string, error) {
	return s.answer(prompt, tier)
}

// GenerateJSON implements Client.
func (s *StaticClient) GenerateJSON(_ context.Context, prompt string, tier ModelTier) (string, error) {
	out, err := s.answer(prompt, tier)
	if err != nil {
		return "", err
	}
	return StripCodeFence(out), nil
}

// GetModel implements Client.
func (s *StaticClient) GetModel(tier ModelTier) string {
	return "static-" + string(tier)
}

// Close implements Client.
func (s *StaticClient) Close() error { return nil }

// Calls returns the number of generate calls made.
func (s *StaticClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StaticClient) answer(prompt string, tier ModelTier) (string, error) {
	s.mu.Lock()
	s.calls++
	respond, resp, err := s.Respond, s.Response, s.Err
	s.mu.Unlock()

	if respond != nil {
		return respond(prompt, tier)
	}
	return resp, err
}
