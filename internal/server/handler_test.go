package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/core"
)

func newTestServer(t *testing.T, gw *core.ScriptedGateway) (*echo.Echo, *core.MemoryStore) {
	t.Helper()

	policy := core.DefaultPolicy()
	policy.Business.Threshold = 1
	policy.Design.Threshold = 1

	store := core.NewMemoryStore()
	engine, err := core.NewEngine(gw, store, policy, core.NewNopLogger())
	require.NoError(t, err)

	return NewServer(engine, []string{"http://localhost:5173"}), store
}

func postJSON(t *testing.T, e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeTurn(t *testing.T, rec *httptest.ResponseRecorder) turnResponse {
	t.Helper()
	var resp turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGenerate_NewSessionReturnsGreeting(t *testing.T) {
	gw := &core.ScriptedGateway{Replies: []string{"Level 1 Business Context. Hello!"}}
	e, store := newTestServer(t, gw)

	rec := postJSON(t, e, "/generate", `{"useCase":"a chatbot for my shop"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeTurn(t, rec)
	assert.Equal(t, "Level 1 Business Context. Hello!", resp.Prompt)
	assert.Equal(t, "continue", resp.Status)
	assert.False(t, resp.IsFinalPrompt)
	assert.True(t, strings.HasPrefix(resp.SessionID, "SES-"))

	// useCase is ignored on the creating call
	session, err := store.Get(resp.SessionID)
	require.NoError(t, err)
	for _, m := range session.Transcript {
		assert.NotEqual(t, core.RoleUser, m.Role)
	}
}

func TestGenerate_UnknownSessionStartsFresh(t *testing.T) {
	gw := &core.ScriptedGateway{}
	e, _ := newTestServer(t, gw)

	rec := postJSON(t, e, "/generate", `{"useCase":"hi","session_id":"SES-unknown"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeTurn(t, rec)
	assert.Equal(t, "continue", resp.Status)
	assert.NotEqual(t, "SES-unknown", resp.SessionID)
}

func TestGenerate_FullConversation(t *testing.T) {
	gw := &core.ScriptedGateway{Replies: []string{
		"greeting",
		"business reply",
		"design opening",
		"design reply",
		"THE FINAL PROMPT",
	}}
	e, store := newTestServer(t, gw)

	opening := decodeTurn(t, postJSON(t, e, "/generate", `{"useCase":""}`))
	id := opening.SessionID

	// business threshold 1: this turn transitions into design
	mid := decodeTurn(t, postJSON(t, e, "/generate", `{"useCase":"shoes","session_id":"`+id+`"}`))
	assert.Equal(t, "continue", mid.Status)
	assert.Contains(t, mid.Prompt, "design opening")

	// design threshold 1: this turn finalizes
	rec := postJSON(t, e, "/generate", `{"useCase":"sell more shoes","session_id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	final := decodeTurn(t, rec)

	assert.Equal(t, "completed", final.Status)
	assert.True(t, final.IsFinalPrompt)
	assert.Equal(t, "THE FINAL PROMPT", final.Prompt)

	_, err := store.Get(id)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestGenerate_ProviderErrorMapsTo500(t *testing.T) {
	gw := &core.ScriptedGateway{Err: errors.New("provider unavailable")}
	e, _ := newTestServer(t, gw)

	rec := postJSON(t, e, "/generate", `{"useCase":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "provider unavailable")
}

func TestGenerate_MalformedBody(t *testing.T) {
	gw := &core.ScriptedGateway{}
	e, _ := newTestServer(t, gw)

	rec := postJSON(t, e, "/generate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewChat_DiscardsExistingSession(t *testing.T) {
	gw := &core.ScriptedGateway{}
	e, store := newTestServer(t, gw)

	opening := decodeTurn(t, postJSON(t, e, "/generate", `{"useCase":""}`))
	oldID := opening.SessionID

	rec := postJSON(t, e, "/new_chat", `{"session_id":"`+oldID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	fresh := decodeTurn(t, rec)
	assert.Equal(t, "continue", fresh.Status)
	assert.NotEqual(t, oldID, fresh.SessionID)

	_, err := store.Get(oldID)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	_, err = store.Get(fresh.SessionID)
	assert.NoError(t, err)
}

func TestNewChat_WithoutSessionID(t *testing.T) {
	gw := &core.ScriptedGateway{}
	e, _ := newTestServer(t, gw)

	rec := postJSON(t, e, "/new_chat", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeTurn(t, rec)
	assert.True(t, strings.HasPrefix(resp.SessionID, "SES-"))
}

func TestHealth(t *testing.T) {
	gw := &core.ScriptedGateway{}
	e, _ := newTestServer(t, gw)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestCORS_AllowedOrigin(t *testing.T) {
	gw := &core.ScriptedGateway{}
	e, _ := newTestServer(t, gw)

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	gw := &core.ScriptedGateway{}
	e, _ := newTestServer(t, gw)

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
