package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// CLISession runs the interactive terminal front end over a single engine
// session: one line per turn, "exit" quits, and the local transcript is
// printed on the way out.
type CLISession struct {
	Engine *Engine
	In     io.Reader
	Out    io.Writer

	sessionID  string
	transcript []Message
}

// NewCLISession creates a CLI session bound to stdin/stdout.
func NewCLISession(engine *Engine) *CLISession {
	return &CLISession{Engine: engine, In: os.Stdin, Out: os.Stdout}
}

// Run executes the interactive loop until the conversation finalizes, the
// user types "exit", or input ends.
func (s *CLISession) Run(ctx context.Context) error {
	opening, err := s.Engine.ProcessTurn(ctx, "", "")
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	s.sessionID = opening.SessionID
	s.transcript = append(s.transcript, Message{Role: RoleAssistant, Content: opening.Response})
	fmt.Fprintf(s.Out, "ai: %s\n", opening.Response)

	reader := bufio.NewReader(s.In)
	for {
		fmt.Fprint(s.Out, "you: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			fmt.Fprintln(s.Out, "Exiting interaction.")
			break
		}

		result, err := s.Engine.ProcessTurn(ctx, s.sessionID, input)
		if err != nil {
			// The turn did not commit; the user can simply try again.
			fmt.Fprintf(s.Out, "ai: something went wrong (%v), please try that again\n", err)
			continue
		}

		s.transcript = append(s.transcript,
			Message{Role: RoleUser, Content: input},
			Message{Role: RoleAssistant, Content: result.Response},
		)
		fmt.Fprintf(s.Out, "ai: %s\n", result.Response)

		if result.Status == StatusCompleted {
			fmt.Fprintln(s.Out, "\nExiting interaction.")
			break
		}
	}

	for _, m := range s.transcript {
		fmt.Fprintf(s.Out, "%s: %s\n", m.Role, m.Content)
	}
	return nil
}
