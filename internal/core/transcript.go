package core

import "strings"

// FormatTranscript flattens a transcript into "User:"/"AI:" lines for
// embedding in the synthesis instruction. System messages are omitted: the
// synthesis instruction restates the full task itself, so only the interview
// content is relevant. Text passes through raw, no escaping.
func FormatTranscript(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			lines = append(lines, "User: "+m.Content)
		case RoleAssistant:
			lines = append(lines, "AI: "+m.Content)
		}
	}
	return strings.Join(lines, "\n")
}
