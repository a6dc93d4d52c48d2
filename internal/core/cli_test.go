package core

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, gw *ScriptedGateway, policy StagePolicy, input string) string {
	t.Helper()
	engine, _ := newTestEngine(t, gw, policy)

	var out bytes.Buffer
	cli := &CLISession{Engine: engine, In: strings.NewReader(input), Out: &out}
	require.NoError(t, cli.Run(context.Background()))
	return out.String()
}

func TestCLISession_GreetingAndExit(t *testing.T) {
	gw := &ScriptedGateway{Replies: []string{"Level 1 Business Context. Hi!"}}
	out := runCLI(t, gw, testPolicy(4, 7), "exit\n")

	assert.Contains(t, out, "ai: Level 1 Business Context. Hi!")
	assert.Contains(t, out, "Exiting interaction.")
	// transcript dump on the way out
	assert.Contains(t, out, "assistant: Level 1 Business Context. Hi!")
}

func TestCLISession_TurnThenExit(t *testing.T) {
	gw := &ScriptedGateway{Replies: []string{"greeting", "what industry?"}}
	out := runCLI(t, gw, testPolicy(4, 7), "we sell shoes\nexit\n")

	assert.Contains(t, out, "ai: what industry?")
	assert.Contains(t, out, "user: we sell shoes")
	assert.Contains(t, out, "assistant: what industry?")
}

func TestCLISession_CompletionEndsLoop(t *testing.T) {
	gw := &ScriptedGateway{Replies: []string{
		"greeting",
		"business reply",
		"design opening",
		"design reply",
		"FINAL ARTIFACT",
	}}
	// one business turn, one design turn, then synthesis
	out := runCLI(t, gw, testPolicy(1, 1), "answer one\nanswer two\nignored\n")

	assert.Contains(t, out, "FINAL ARTIFACT")
	assert.Contains(t, out, "Exiting interaction.")
	assert.NotContains(t, out, "ignored")
}

func TestCLISession_GatewayErrorDoesNotEndLoop(t *testing.T) {
	// greeting succeeds, the first interactive turn fails, the loop continues
	gw := &ScriptedGateway{Replies: []string{"greeting"}, FailAfter: 1}
	out := runCLI(t, gw, testPolicy(4, 7), "hello\nexit\n")

	assert.Contains(t, out, "something went wrong")
	assert.Contains(t, out, "Exiting interaction.")
}
