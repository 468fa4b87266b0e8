package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoplay/convoplay/internal/domain"
	"github.com/convoplay/convoplay/internal/provider"
	"github.com/convoplay/convoplay/internal/service"
)

type fakeClient struct {
	reply *provider.Reply
	err   error
}

func (f *fakeClient) Complete(ctx context.Context, req provider.Request) (*provider.Reply, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &provider.Reply{Text: "canned reply"}, nil
}

func newTestServer(t *testing.T, client provider.Client) (*httptest.Server, *http.Client) {
	t.Helper()
	models := service.NewModelManager(map[domain.ProviderName]provider.Client{
		domain.ProviderOpenRouter: client,
		domain.ProviderGoogle:     client,
	})
	sessions := service.NewSessionStore(models, nil, nil)
	srv := httptest.NewServer(New(sessions, models, nil, nil).Router())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func getJSON(t *testing.T, c *http.Client, url string, out any) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, c *http.Client, url string, body any, out any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := c.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestStateCreatesSession(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{})

	var state stateResponse
	resp := getJSON(t, c, srv.URL+"/api/state", &state)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NotEmpty(t, state.SessionID)
	assert.Equal(t, "llama", state.Config.ModelKey)
	assert.Equal(t, "assistant", state.Config.PersonaKey)
	assert.Equal(t, 10, state.Config.MemoryWindow)
	assert.Len(t, state.Personas, 4)
	assert.Len(t, state.Models, 3)
	assert.False(t, state.ArchiveEnabled)

	// Same cookie, same session.
	var again stateResponse
	getJSON(t, c, srv.URL+"/api/state", &again)
	assert.Equal(t, state.SessionID, again.SessionID)
}

func TestChatRoundTrip(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{reply: &provider.Reply{Text: "hi from the model"}})

	var chat chatResponse
	resp := postJSON(t, c, srv.URL+"/api/chat", chatRequest{Message: "hello"}, &chat)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hi from the model", chat.Reply)
	assert.Equal(t, 2, chat.Stats.Messages)
	assert.Equal(t, 1, chat.Stats.Turns)

	var state stateResponse
	getJSON(t, c, srv.URL+"/api/state", &state)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, domain.RoleUser, state.Messages[0].Role)
	assert.Equal(t, "hello", state.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, state.Messages[1].Role)
}

func TestChatEmptyMessage(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{})

	var errBody map[string]string
	resp := postJSON(t, c, srv.URL+"/api/chat", chatRequest{Message: "  "}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, errBody["error"])
}

func TestChatProviderFailure(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{err: &provider.Error{Provider: "openrouter", Status: 500, Message: "upstream broke"}})

	var errBody map[string]string
	resp := postJSON(t, c, srv.URL+"/api/chat", chatRequest{Message: "hello"}, &errBody)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, errBody["error"], "upstream broke")

	// The failed turn's user message stays visible.
	var state stateResponse
	getJSON(t, c, srv.URL+"/api/state", &state)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, domain.RoleUser, state.Messages[0].Role)
}

func TestChatProviderTimeout(t *testing.T) {
	// Clients wrap a blown deadline in their own error type; the status
	// must still come out as 504, not 502.
	wrapped := &provider.Error{
		Provider: "openrouter",
		Message:  "context deadline exceeded",
		Err:      context.DeadlineExceeded,
	}
	srv, c := newTestServer(t, &fakeClient{err: wrapped})

	resp := postJSON(t, c, srv.URL+"/api/chat", chatRequest{Message: "hello"}, nil)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestChatRateLimited(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{err: &provider.Error{Provider: "openrouter", Status: 429, Message: "too fast"}})

	resp := postJSON(t, c, srv.URL+"/api/chat", chatRequest{Message: "hello"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestConfigUpdateAndValidation(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{})

	temp := 0.3
	window := 4
	model := "gemini"
	personaKey := "coder"
	resp := postJSON(t, c, srv.URL+"/api/config", domain.ConfigPatch{
		ModelKey:     &model,
		PersonaKey:   &personaKey,
		Temperature:  &temp,
		MemoryWindow: &window,
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state stateResponse
	getJSON(t, c, srv.URL+"/api/state", &state)
	assert.Equal(t, "gemini", state.Config.ModelKey)
	assert.Equal(t, "coder", state.Config.PersonaKey)
	assert.Equal(t, 0.3, state.Config.Temperature)
	assert.Equal(t, 4, state.Config.MemoryWindow)

	// Unknown persona is rejected and nothing changes.
	bad := "pirate"
	var errBody map[string]string
	resp = postJSON(t, c, srv.URL+"/api/config", domain.ConfigPatch{PersonaKey: &bad}, &errBody)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, domain.ErrUnknownPersona.Error(), errBody["error"])

	getJSON(t, c, srv.URL+"/api/state", &state)
	assert.Equal(t, "coder", state.Config.PersonaKey)
}

func TestReset(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{})

	postJSON(t, c, srv.URL+"/api/chat", chatRequest{Message: "hello"}, nil)

	resp := postJSON(t, c, srv.URL+"/api/reset", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state stateResponse
	getJSON(t, c, srv.URL+"/api/state", &state)
	assert.Empty(t, state.Messages)
	assert.Equal(t, 0, state.Stats.Turns)
}

func TestExportCSV(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{reply: &provider.Reply{Text: "exported answer"}})

	postJSON(t, c, srv.URL+"/api/chat", chatRequest{Message: "export me"}, nil)

	resp, err := c.Get(srv.URL + "/api/export")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "chat_export_")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "role,content,timestamp", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "user,export me,"))
	assert.True(t, strings.HasPrefix(lines[2], "assistant,exported answer,"))
}

func TestArchiveDisabled(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{})

	var errBody map[string]string
	resp := getJSON(t, c, srv.URL+"/api/archive", &errBody)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.NotEmpty(t, errBody["error"])
}

func TestIndexServed(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{})

	resp, err := c.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Conversational AI Playground")
}

func TestSessionSurvivesRequests(t *testing.T) {
	srv, c := newTestServer(t, &fakeClient{})

	for i := 0; i < 3; i++ {
		postJSON(t, c, srv.URL+"/api/chat", chatRequest{Message: fmt.Sprintf("msg %d", i)}, nil)
	}

	var state stateResponse
	getJSON(t, c, srv.URL+"/api/state", &state)
	assert.Len(t, state.Messages, 6)
	assert.Equal(t, 3, state.Stats.Turns)
}
