package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResponder struct {
	mu      sync.Mutex
	message string
	history []core.Message
	reply   string
	err     error
}

func (m *mockResponder) Respond(ctx context.Context, message string, history []core.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.message = message
	m.history = history
	return m.reply, m.err
}

type mockTurns struct {
	limit int
	turns []core.StoredTurn
	err   error
}

func (m *mockTurns) AddTurn(ctx context.Context, turn core.StoredTurn) error { return nil }

func (m *mockTurns) ListTurns(ctx context.Context, limit int) ([]core.StoredTurn, error) {
	m.limit = limit
	return m.turns, m.err
}

type exchangerFunc func(ctx context.Context, message string, history []core.Message) string

func (f exchangerFunc) Exchange(ctx context.Context, message string, history []core.Message) string {
	return f(ctx, message, history)
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		ListenAddr:      "127.0.0.1:0",
		ScrollDelay:     100 * time.Millisecond,
		TimestampLayout: "3:04 PM",
	}
}

func newTestServer(t *testing.T, deps Deps) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(context.Background(), testConfig(), deps)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, core.ChatResponse) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out core.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHandleChat(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		reply      string
		err        error
		wantStatus int
		wantResp   *string
		wantError  string
	}{
		{
			name:       "success",
			body:       `{"message":"Five","history":[{"role":"user","content":"Five"}]}`,
			reply:      "**Corolla**",
			wantStatus: http.StatusOK,
			wantResp:   ptr("**Corolla**"),
		},
		{
			name:       "empty message",
			body:       `{"message":"  ","history":[]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No message provided",
		},
		{
			name:       "missing message",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No message provided",
		},
		{
			name:       "invalid json",
			body:       `{"message`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No message provided",
		},
		{
			name:       "provider failure",
			body:       `{"message":"hi","history":[]}`,
			err:        errors.New("ai chat error: http 503"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "ai chat error: http 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t, Deps{Responder: &mockResponder{reply: tt.reply, err: tt.err}})

			resp, out := postJSON(t, ts.URL+"/api/chat", tt.body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Equal(t, tt.wantResp != nil, out.Success)
			assert.Equal(t, tt.wantResp, out.Response)
			assert.Equal(t, tt.wantError, out.Error)
		})
	}
}

func TestHandleChat_PassesHistory(t *testing.T) {
	r := &mockResponder{reply: "ok"}
	_, ts := newTestServer(t, Deps{Responder: r})

	postJSON(t, ts.URL+"/api/chat", `{"message":"Five","history":[{"role":"user","content":"I need a car"},{"role":"assistant","content":"How many?"}]}`)

	assert.Equal(t, "Five", r.message)
	assert.Equal(t, []core.Message{
		{Role: core.RoleUser, Content: "I need a car"},
		{Role: core.RoleAssistant, Content: "How many?"},
	}, r.history)
}

func TestHandleChat_RateLimited(t *testing.T) {
	s, ts := newTestServer(t, Deps{Responder: &mockResponder{reply: "ok"}})
	s.limiter.SetBurst(0)

	resp, out := postJSON(t, ts.URL+"/api/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.False(t, out.Success)
}

func TestHandleTurns(t *testing.T) {
	turns := &mockTurns{turns: []core.StoredTurn{{ID: 1, Message: "hi", Reply: "hello"}}}
	_, ts := newTestServer(t, Deps{Turns: turns})

	resp, err := http.Get(ts.URL + "/api/turns?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Count int               `json:"count"`
		Turns []core.StoredTurn `json:"turns"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, turns.limit)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "hello", out.Turns[0].Reply)

	bad, err := http.Get(ts.URL + "/api/turns?limit=abc")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

type mockCars struct {
	cars []core.Car
	err  error
}

func (m *mockCars) ListCars(ctx context.Context) ([]core.Car, error) { return m.cars, m.err }

func (m *mockCars) SearchCars(ctx context.Context, criteria core.CarSearch) ([]core.Car, error) {
	return m.cars, m.err
}

func TestHandleCars(t *testing.T) {
	type carsBody struct {
		Success bool       `json:"success"`
		Cars    []core.Car `json:"cars"`
		Error   string     `json:"error"`
	}
	getCars := func(t *testing.T, repo *mockCars) (int, carsBody, string) {
		t.Helper()
		_, ts := newTestServer(t, Deps{Cars: repo})
		resp, err := http.Get(ts.URL + "/api/cars")
		require.NoError(t, err)
		raw := readBody(t, resp)

		var out carsBody
		require.NoError(t, json.Unmarshal([]byte(raw), &out))
		return resp.StatusCode, out, raw
	}

	t.Run("lists cars", func(t *testing.T) {
		status, out, _ := getCars(t, &mockCars{cars: []core.Car{{ID: 1, Make: "Toyota", Model: "Corolla", DailyPrice: 35}}})
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, out.Success)
		require.Len(t, out.Cars, 1)
		assert.Equal(t, "Corolla", out.Cars[0].Model)
	})

	t.Run("empty inventory is an empty list", func(t *testing.T) {
		status, out, raw := getCars(t, &mockCars{})
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, out.Success)
		assert.Contains(t, raw, `"cars":[]`)
	})

	t.Run("storage failure", func(t *testing.T) {
		status, out, _ := getCars(t, &mockCars{err: errors.New("database is locked")})
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.False(t, out.Success)
		assert.Equal(t, "database is locked", out.Error)
	})
}

func TestDisabledEndpoints(t *testing.T) {
	_, ts := newTestServer(t, Deps{})

	for _, path := range []string{"/api/turns", "/api/cars", "/", "/transcript.txt"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func newBrowser(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestChatPage_Flow(t *testing.T) {
	var histories [][]core.Message
	ex := exchangerFunc(func(ctx context.Context, message string, history []core.Message) string {
		histories = append(histories, history)
		return "[IMAGE:https://example.com/car.jpg]**Corolla** for $35\n---\nInterested?"
	})
	s, ts := newTestServer(t, Deps{Exchanger: ex})
	browser := newBrowser(t)

	resp, err := browser.Get(ts.URL + "/")
	require.NoError(t, err)
	page := readBody(t, resp)
	assert.Contains(t, page, `action="/send"`)
	assert.Regexp(t, `\},\s*100\s*\);`, page)

	resp, err = browser.PostForm(ts.URL+"/send", url.Values{"message": {"I need a car <now>"}})
	require.NoError(t, err)
	page = readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, s.sessions.len())
	require.Len(t, histories, 1)
	assert.Equal(t, []core.Message{{Role: core.RoleUser, Content: "I need a car <now>"}}, histories[0])

	assert.Contains(t, page, `<div class="message user">`)
	assert.Contains(t, page, "I need a car &lt;now&gt;")
	assert.Contains(t, page, `<img src="https://example.com/car.jpg" alt="image"`)
	assert.Contains(t, page, "<strong>Corolla</strong> for $35")
	assert.Contains(t, page, "<hr")
	assert.Contains(t, page, `id="latest"`)
	assert.Less(t, strings.Index(page, "car.jpg"), strings.Index(page, "Corolla"))
	assert.NotContains(t, page, "<now>")

	resp, err = browser.Get(ts.URL + "/transcript.txt")
	require.NoError(t, err)
	text := readBody(t, resp)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, text, "I need a car <now>")
	assert.Contains(t, text, "Interested?")
}

func TestChatPage_SessionsAreIsolated(t *testing.T) {
	ex := exchangerFunc(func(ctx context.Context, message string, history []core.Message) string {
		return "reply to " + message
	})
	_, ts := newTestServer(t, Deps{Exchanger: ex})

	alice, bob := newBrowser(t), newBrowser(t)

	resp, err := alice.PostForm(ts.URL+"/send", url.Values{"message": {"from alice"}})
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = bob.Get(ts.URL + "/")
	require.NoError(t, err)
	assert.NotContains(t, readBody(t, resp), "from alice")
}

func TestChatPage_BusySessionRejectsSecondSend(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	ex := exchangerFunc(func(ctx context.Context, message string, history []core.Message) string {
		started <- struct{}{}
		<-release
		return "done"
	})
	_, ts := newTestServer(t, Deps{Exchanger: ex})
	browser := newBrowser(t)

	// establish the session cookie first
	resp, err := browser.Get(ts.URL + "/")
	require.NoError(t, err)
	readBody(t, resp)

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := browser.PostForm(ts.URL+"/send", url.Values{"message": {"first"}})
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-started

	resp, err = browser.PostForm(ts.URL+"/send", url.Values{"message": {"second"}})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = browser.Get(ts.URL + "/")
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), `id="typing-indicator" class="active"`)

	close(release)
	<-done
}

func ptr(s string) *string { return &s }
