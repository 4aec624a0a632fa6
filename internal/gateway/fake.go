package gateway

import (
	"context"
	"sync"
)

// Call records one request made to a Fake
type Call struct {
	Purpose   string
	Prompt    string
	MaxTokens int
}

// Fake is a scripted Generator for tests. Responses are returned in order;
// once they run out the last one repeats. Err, when set, is returned
// instead of a response.
type Fake struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	// Block makes Generate wait for the context to end
	Block bool
	calls []Call
}

// NewFake returns a Fake answering with responses
func NewFake(responses ...string) *Fake {
	return &Fake{Responses: responses}
}

// Generate implements Generator
func (f *Fake) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Purpose: PurposeFrom(ctx), Prompt: prompt, MaxTokens: maxTokens})
	n := len(f.calls)
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", nil
	}
	return f.Responses[min(n, len(f.Responses))-1], nil
}

// Calls returns the recorded calls
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
