package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TurnStatus reports whether the conversation continues or has produced the
// final artifact.
type TurnStatus string

const (
	StatusContinue  TurnStatus = "continue"
	StatusCompleted TurnStatus = "completed"
)

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	SessionID string
	Response  string
	Status    TurnStatus
	Final     bool
}

// Engine drives the per-turn stage state machine. It owns no transport: the
// CLI loop and the HTTP handler both call ProcessTurn.
type Engine struct {
	gateway Gateway
	store   SessionStore
	policy  StagePolicy
	log     Logger
}

// NewEngine validates the policy and wires the engine's collaborators.
func NewEngine(gateway Gateway, store SessionStore, policy StagePolicy, log Logger) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("stage policy: %w", err)
	}
	return &Engine{gateway: gateway, store: store, policy: policy, log: log}, nil
}

// ProcessTurn resolves the session, runs one exchange against the stage
// model, and commits the updated session. An absent or unknown session
// identifier opens a fresh session and returns the greeting; the user text is
// not consumed on that path.
//
// A turn is atomic: all mutation happens on a clone that replaces the stored
// session only after every gateway call has succeeded, so a failed turn can
// be retried against unchanged state.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, userText string) (*TurnResult, error) {
	if _, err := e.store.Get(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return e.openSession(ctx)
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	lock := e.store.Lock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: the session may have finalized while waiting.
	session, err := e.store.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return e.openSession(ctx)
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	work := session.Clone()
	work.AddMessage(RoleUser, userText)

	switch work.Stage {
	case StageBusiness:
		return e.businessTurn(ctx, work)
	case StageDesign:
		return e.designTurn(ctx, work)
	default:
		return nil, fmt.Errorf("session %s in unexpected stage %s", work.ID, work.Stage)
	}
}

// Discard drops a session without finalizing it.
func (e *Engine) Discard(sessionID string) {
	lock := e.store.Lock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	e.store.Delete(sessionID)
	e.log.Info("session discarded", "session_id", sessionID)
}

// openSession creates a fresh business-stage session and asks the stage model
// for its opening greeting on the system-only transcript.
func (e *Engine) openSession(ctx context.Context) (*TurnResult, error) {
	session, err := NewSession(e.policy.Business.Instruction)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	greeting, err := e.gateway.Complete(ctx, e.policy.Business.Model, session.Transcript)
	if err != nil {
		return nil, err
	}
	session.AddMessage(RoleAssistant, greeting)

	lock := e.store.Lock(session.ID)
	lock.Lock()
	defer lock.Unlock()
	if err := e.store.Create(session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	e.log.Info("session opened", "session_id", session.ID)
	return &TurnResult{SessionID: session.ID, Response: greeting, Status: StatusContinue}, nil
}

func (e *Engine) businessTurn(ctx context.Context, work *Session) (*TurnResult, error) {
	reply, err := e.gateway.Complete(ctx, e.policy.Business.Model, work.Transcript)
	if err != nil {
		return nil, err
	}
	work.AddMessage(RoleAssistant, reply)
	work.TurnCount++

	if work.TurnCount < e.policy.Business.Threshold {
		if err := e.store.Put(work); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
		return &TurnResult{SessionID: work.ID, Response: reply, Status: StatusContinue}, nil
	}

	// Question budget exhausted: cross into the design interview within the
	// same turn. The design instruction is appended, never swapped in, so the
	// business context stays visible to the design model.
	work.Stage = StageDesign
	work.TurnCount = 0
	work.AddMessage(RoleSystem, e.policy.Design.Instruction)

	opening, err := e.gateway.Complete(ctx, e.policy.Design.Model, work.Transcript)
	if err != nil {
		return nil, err
	}
	work.AddMessage(RoleAssistant, opening)

	if err := e.store.Put(work); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	e.log.Info("stage transition", "session_id", work.ID, "stage", work.Stage.String())

	return &TurnResult{
		SessionID: work.ID,
		Response:  e.policy.TransitionMarker + "\n\n" + opening,
		Status:    StatusContinue,
	}, nil
}

func (e *Engine) designTurn(ctx context.Context, work *Session) (*TurnResult, error) {
	reply, err := e.gateway.Complete(ctx, e.policy.Design.Model, work.Transcript)
	if err != nil {
		return nil, err
	}
	work.AddMessage(RoleAssistant, reply)
	work.TurnCount++

	if work.TurnCount < e.policy.Design.Threshold {
		if err := e.store.Put(work); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
		return &TurnResult{SessionID: work.ID, Response: reply, Status: StatusContinue}, nil
	}

	// Interview complete. The session is deleted whatever the synthesis
	// outcome: a finalized identifier is never reused for another
	// conversation.
	work.Stage = StageFinalized
	defer e.store.Delete(work.ID)

	artifact, err := e.finalize(ctx, work)
	if err != nil {
		e.log.Error("finalization failed", "session_id", work.ID, "error", err)
		return nil, err
	}

	e.log.Info("session finalized", "session_id", work.ID)
	return &TurnResult{
		SessionID: work.ID,
		Response:  artifact,
		Status:    StatusCompleted,
		Final:     true,
	}, nil
}

// finalize runs the one-shot synthesis call. The synthesizer never sees the
// live transcript: it gets the flattened history embedded in its instruction
// plus a fixed trigger message, so it cannot attempt further clarification.
func (e *Engine) finalize(ctx context.Context, work *Session) (string, error) {
	history := FormatTranscript(work.Transcript)
	instruction := strings.ReplaceAll(e.policy.SynthesisTemplate, ChatHistoryPlaceholder, history)

	messages := []Message{
		{Role: RoleSystem, Content: instruction},
		{Role: RoleUser, Content: e.policy.SynthesisTrigger},
	}
	return e.gateway.Complete(ctx, e.policy.SynthesisModel, messages)
}
