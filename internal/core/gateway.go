package core

import (
	"context"
	"fmt"
	"sync"
)

// Gateway sends a role-tagged transcript to a hosted model and returns the
// single completion text. The production implementation lives in
// internal/llm; the engine never retries a failed call.
type Gateway interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// ScriptedGateway implements Gateway for tests with queued replies and
// per-invocation recording.
type ScriptedGateway struct {
	mu sync.Mutex

	// Replies are consumed in order; when exhausted, a generated placeholder
	// reply is returned instead.
	Replies []string

	// Err, when set, fails every call.
	Err error

	// FailAfter, when positive, serves that many more calls and then fails
	// the rest.
	FailAfter int

	Calls  [][]Message
	Models []string
}

func (g *ScriptedGateway) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return "", g.Err
	}
	if g.FailAfter > 0 {
		g.FailAfter--
		if g.FailAfter == 0 {
			g.Err = fmt.Errorf("scripted gateway exhausted")
		}
	}

	snapshot := make([]Message, len(messages))
	copy(snapshot, messages)
	g.Calls = append(g.Calls, snapshot)
	g.Models = append(g.Models, model)

	if len(g.Replies) == 0 {
		return fmt.Sprintf("scripted reply %d", len(g.Calls)), nil
	}
	reply := g.Replies[0]
	g.Replies = g.Replies[1:]
	return reply, nil
}

// CallCount returns how many completions have been served.
func (g *ScriptedGateway) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls)
}
