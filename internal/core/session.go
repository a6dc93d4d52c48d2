package core

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Role tags a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Stage identifies the interview phase a session is in. Stages only ever move
// forward: business context, then prompt design, then finalized.
type Stage int

const (
	StageBusiness  Stage = 1
	StageDesign    Stage = 2
	StageFinalized Stage = 3
)

func (s Stage) String() string {
	switch s {
	case StageBusiness:
		return "business"
	case StageDesign:
		return "design"
	case StageFinalized:
		return "finalized"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Message is one role-tagged entry in a session transcript. Messages are
// never modified or removed once appended.
type Message struct {
	Role    Role
	Content string
}

// Session is the per-conversation state: the accumulated transcript, the
// active stage, and the count of completed exchanges within that stage.
type Session struct {
	ID         string
	Stage      Stage
	TurnCount  int
	Transcript []Message
}

// NewSessionID generates an opaque session identifier in format SES-{nanoid(12)}.
func NewSessionID() (string, error) {
	id, err := gonanoid.New(12)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SES-%s", id), nil
}

// NewSession creates a business-stage session seeded with the given system
// instruction as its only transcript entry.
func NewSession(instruction string) (*Session, error) {
	id, err := NewSessionID()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:         id,
		Stage:      StageBusiness,
		Transcript: []Message{{Role: RoleSystem, Content: instruction}},
	}, nil
}

// AddMessage appends a message to the transcript.
func (s *Session) AddMessage(role Role, content string) {
	s.Transcript = append(s.Transcript, Message{Role: role, Content: content})
}

// Clone creates a deep copy of the session. The engine mutates a clone and
// commits it back to the store only once every gateway call in the turn has
// succeeded, so a failed turn leaves the stored session untouched.
func (s *Session) Clone() *Session {
	clone := &Session{
		ID:         s.ID,
		Stage:      s.Stage,
		TurnCount:  s.TurnCount,
		Transcript: make([]Message, len(s.Transcript)),
	}
	copy(clone.Transcript, s.Transcript)
	return clone
}
