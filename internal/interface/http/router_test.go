package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/web-summarizer/internal/domain/progress"
	"github.com/yanqian/web-summarizer/internal/domain/summarizer"
	"github.com/yanqian/web-summarizer/internal/domain/target"
	"github.com/yanqian/web-summarizer/internal/infra/config"
	"github.com/yanqian/web-summarizer/internal/infra/settingsstore"
	"github.com/yanqian/web-summarizer/internal/infra/targetrepo"
)

func TestRouter_SummarizePage(t *testing.T) {
	svc := &stubSummarizer{resp: summarizer.Response{OK: true, SessionID: "s-1"}}
	env := newRouterUnderTest(t, svc, config.RateLimitConfig{})

	recorder := performRequest(env.server, http.MethodPost, "/api/v1/summaries/page", `{"targetId":3,"length":"short"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"ok":true,"sessionId":"s-1"}`, recorder.Body.String())
	require.Equal(t, []summarizer.Command{{TargetID: 3, Length: summarizer.LengthShort}}, svc.commands())
}

func TestRouter_SummarizePageEmptyBody(t *testing.T) {
	svc := &stubSummarizer{resp: summarizer.Response{SessionID: "s-2", Reason: summarizer.ReasonEmptyText}}
	env := newRouterUnderTest(t, svc, config.RateLimitConfig{})

	recorder := performRequest(env.server, http.MethodPost, "/api/v1/summaries/page", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"ok":false,"sessionId":"s-2","reason":"EMPTY_TEXT"}`, recorder.Body.String())
	require.Equal(t, []summarizer.Command{{}}, svc.commands())
}

func TestRouter_SummarizePageInvalidJSON(t *testing.T) {
	svc := &stubSummarizer{}
	env := newRouterUnderTest(t, svc, config.RateLimitConfig{})

	recorder := performRequest(env.server, http.MethodPost, "/api/v1/summaries/page", `{"targetId":"abc"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
	require.Empty(t, svc.commands())
}

func TestRouter_Events(t *testing.T) {
	env := newRouterUnderTest(t, &stubSummarizer{}, config.RateLimitConfig{})
	server := httptest.NewServer(env.server.Handler)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/summaries/events?sessionId=s-1", nil)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)
	require.Equal(t, 1, env.bus.Subscribers())

	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	published := []progress.Event{
		progress.Start("s-1", "http://127.0.0.1:7864/summarize_stream_status", at),
		progress.Chunk("s-2", "other session", at),
		progress.Chunk("s-1", "Hello", at),
		progress.Done("s-1", "Hello", at),
	}
	for _, evt := range published {
		env.bus.Publish(context.Background(), evt)
	}

	var got []progress.Event
	for len(got) < 3 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var evt progress.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &evt))
		got = append(got, evt)
	}
	require.Equal(t, []progress.Event{published[0], published[2], published[3]}, got)

	cancel()
	require.Eventually(t, func() bool { return env.bus.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestRouter_Targets(t *testing.T) {
	env := newRouterUnderTest(t, &stubSummarizer{}, config.RateLimitConfig{})

	recorder := performRequest(env.server, http.MethodPost, "/api/v1/targets", `{"url":"https://example.com/a","agentUrl":"http://127.0.0.1:9001"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var first target.Target
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &first))
	require.Equal(t, int64(1), first.ID)
	require.True(t, first.Active)

	recorder = performRequest(env.server, http.MethodPost, "/api/v1/targets", `{"url":"https://example.com/b"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = performRequest(env.server, http.MethodPost, "/api/v1/targets/2/activate", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var activated target.Target
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &activated))
	require.Equal(t, int64(2), activated.ID)
	require.True(t, activated.Active)

	recorder = performRequest(env.server, http.MethodGet, "/api/v1/targets", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var list struct {
		Targets []target.Target `json:"targets"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &list))
	require.Len(t, list.Targets, 2)
	require.False(t, list.Targets[0].Active)
	require.True(t, list.Targets[1].Active)
}

func TestRouter_TargetErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "missing url", method: http.MethodPost, path: "/api/v1/targets", body: `{}`, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "bad scheme", method: http.MethodPost, path: "/api/v1/targets", body: `{"url":"ftp://example.com"}`, wantStatus: http.StatusBadRequest, wantCode: "invalid_request", wantMsg: "url: scheme must be http or https"},
		{name: "bad agent url", method: http.MethodPost, path: "/api/v1/targets", body: `{"url":"https://example.com","agentUrl":"localhost"}`, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "bad id", method: http.MethodPost, path: "/api/v1/targets/abc/activate", wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "unknown id", method: http.MethodPost, path: "/api/v1/targets/9/activate", wantStatus: http.StatusNotFound, wantCode: "target_not_found", wantMsg: "No target with id 9."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newRouterUnderTest(t, &stubSummarizer{}, config.RateLimitConfig{})
			recorder := performRequest(env.server, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, recorder.Code)
			body := decodeErrorBody(t, recorder.Body.Bytes())
			require.Equal(t, tt.wantCode, body["error"]["code"])
			if tt.wantMsg != "" {
				require.Equal(t, tt.wantMsg, body["error"]["message"])
			}
		})
	}
}

func TestRouter_HostSettings(t *testing.T) {
	env := newRouterUnderTest(t, &stubSummarizer{}, config.RateLimitConfig{})

	recorder := performRequest(env.server, http.MethodGet, "/api/v1/settings/host", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"host":""}`, recorder.Body.String())

	recorder = performRequest(env.server, http.MethodPut, "/api/v1/settings/host", `{"host":" example.com:9000 "}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"host":"example.com:9000"}`, recorder.Body.String())

	stored, err := env.prefs.Host(context.Background())
	require.NoError(t, err)
	require.Equal(t, "example.com:9000", stored)

	recorder = performRequest(env.server, http.MethodPut, "/api/v1/settings/host", `{"host":"bad host"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_Health(t *testing.T) {
	env := newRouterUnderTest(t, &stubSummarizer{}, config.RateLimitConfig{})

	recorder := performRequest(env.server, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestRouter_RateLimit(t *testing.T) {
	env := newRouterUnderTest(t, &stubSummarizer{}, config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1})

	require.Equal(t, http.StatusOK, performRequest(env.server, http.MethodGet, "/api/v1/targets", "").Code)
	recorder := performRequest(env.server, http.MethodGet, "/api/v1/targets", "")
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
	require.Equal(t, http.StatusOK, performRequest(env.server, http.MethodGet, "/healthz", "").Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	env := newRouterUnderTest(t, &stubSummarizer{}, config.RateLimitConfig{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/settings/host", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	rec := httptest.NewRecorder()

	env.server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://ui.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Last-Event-ID")
	require.Equal(t, "Origin", rec.Header().Get("Vary"))
	require.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestRouter_CORSSimpleRequest(t *testing.T) {
	env := newRouterUnderTest(t, &stubSummarizer{}, config.RateLimitConfig{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://other.example.com")
	rec := httptest.NewRecorder()

	env.server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://ui.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", rec.Header().Get("Vary"))
	require.Empty(t, rec.Header().Get("Access-Control-Max-Age"))
}

type routerEnv struct {
	server *http.Server
	bus    *progress.Bus
	prefs  *settingsstore.MemoryStore
}

func performRequest(server *http.Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc summarizer.Service, rateLimit config.RateLimitConfig) routerEnv {
	t.Helper()
	logger := newTestLogger()
	bus := progress.NewBus(8, logger)
	prefs := settingsstore.NewMemoryStore("")
	handler := NewHandler(svc, bus, targetrepo.NewMemoryRepository(), prefs, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			AllowedOrigins: []string{"https://ui.example.com"},
			RateLimit:      rateLimit,
		},
	}
	return routerEnv{server: NewRouter(cfg, handler), bus: bus, prefs: prefs}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubSummarizer struct {
	mu   sync.Mutex
	resp summarizer.Response
	cmds []summarizer.Command
}

func (s *stubSummarizer) Summarize(_ context.Context, cmd summarizer.Command) summarizer.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
	return s.resp
}

func (s *stubSummarizer) commands() []summarizer.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]summarizer.Command(nil), s.cmds...)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
