package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHistory = []core.Message{
	{Role: core.RoleSystem, Content: "be brief"},
	{Role: core.RoleUser, Content: "I need a car"},
}

func TestOpenAICompatible_Chat(t *testing.T) {
	var (
		payload map[string]any
		auth    string
		title   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		title = r.Header.Get("X-Title")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"**Corolla** it is"}}]}`)
	}))
	defer srv.Close()

	p := NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:      srv.URL,
		APIKey:       "sk-test",
		Model:        "gpt-4",
		AuthHeader:   "Authorization",
		AuthPrefix:   "Bearer ",
		ExtraHeaders: map[string]string{"X-Title": core.TuskName},
		Options:      Options{Temperature: 0.7, MaxTokens: 500},
	})

	msg, err := p.Chat(context.Background(), testHistory, nil)
	require.NoError(t, err)

	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "**Corolla** it is"}, msg)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, core.TuskName, title)
	assert.Equal(t, "gpt-4", payload["model"])
	assert.Equal(t, 0.7, payload["temperature"])
	assert.Equal(t, float64(500), payload["max_tokens"])
	assert.Len(t, payload["messages"], 2)
}

func TestOpenAICompatible_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusUnauthorized, body: `{"error":"bad key"}`},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "invalid json", status: http.StatusOK, body: `{"choices`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p := NewCustomOpenAI(srv.URL, "", "local", Options{})
			_, err := p.Chat(context.Background(), testHistory, nil)
			assert.Error(t, err)
		})
	}
}

func TestAnthropic_Chat(t *testing.T) {
	var (
		payload struct {
			System      string           `json:"system"`
			MaxTokens   int              `json:"max_tokens"`
			Temperature float64          `json:"temperature"`
			Messages    []map[string]any `json:"messages"`
		}
		apiKey string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		apiKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Hello "},{"type":"text","text":"there"}]}`)
	}))
	defer srv.Close()

	p := NewAnthropic("key", "claude", Options{Temperature: 0.7, MaxTokens: 500})
	p.baseURL = srv.URL

	msg, err := p.Chat(context.Background(), testHistory, nil)
	require.NoError(t, err)

	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "Hello there"}, msg)
	assert.Equal(t, "key", apiKey)
	assert.Equal(t, "be brief", payload.System)
	assert.Equal(t, 500, payload.MaxTokens)
	assert.Equal(t, 0.7, payload.Temperature)
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, "user", payload.Messages[0]["role"])
}

var testTools = []core.Tool{{
	Type: "function",
	Function: core.Function{
		Name:        "search_cars",
		Description: "Search the rental inventory",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"max_price":{"type":"number"}}}`),
	},
}}

func TestOpenAICompatible_ToolCalls(t *testing.T) {
	var payload struct {
		Tools    []core.Tool    `json:"tools"`
		Messages []core.Message `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"search_cars","arguments":"{\"max_price\":40}"}}]}}]}`)
	}))
	defer srv.Close()

	history := append(testHistory, core.Message{Role: core.RoleTool, Content: "[]", ToolCallID: "call_0"})
	msg, err := NewCustomOpenAI(srv.URL, "", "local", Options{}).Chat(context.Background(), history, testTools)
	require.NoError(t, err)

	require.Len(t, payload.Tools, 1)
	assert.Equal(t, "search_cars", payload.Tools[0].Function.Name)
	assert.JSONEq(t, string(testTools[0].Function.Parameters), string(payload.Tools[0].Function.Parameters))
	require.Len(t, payload.Messages, 3)
	assert.Equal(t, "call_0", payload.Messages[2].ToolCallID)

	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "search_cars", msg.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"max_price":40}`, msg.ToolCalls[0].Function.Arguments)
}

func TestOpenAICompatible_OmitsEmptyTools(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer srv.Close()

	_, err := NewCustomOpenAI(srv.URL, "", "local", Options{}).Chat(context.Background(), testHistory, nil)
	require.NoError(t, err)
	assert.NotContains(t, payload, "tools")
}

func TestAnthropic_ToolUse(t *testing.T) {
	var payload struct {
		Tools    []anthropicTool    `json:"tools"`
		Messages []anthropicMessage `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Let me check."},
			{"type":"tool_use","id":"toolu_2","name":"get_car_inventory","input":{}}]}`)
	}))
	defer srv.Close()

	p := NewAnthropic("key", "claude", Options{})
	p.baseURL = srv.URL

	history := append(testHistory,
		core.Message{
			Role: core.RoleAssistant,
			ToolCalls: []core.ToolCall{
				{ID: "toolu_0", Type: "function", Function: core.FunctionCall{Name: "search_cars", Arguments: `{"max_price":40}`}},
				{ID: "toolu_1", Type: "function", Function: core.FunctionCall{Name: "search_cars", Arguments: `{"category":"SUV"}`}},
			},
		},
		core.Message{Role: core.RoleTool, Content: "[]", ToolCallID: "toolu_0"},
		core.Message{Role: core.RoleTool, Content: "[]", ToolCallID: "toolu_1"},
	)

	msg, err := p.Chat(context.Background(), history, testTools)
	require.NoError(t, err)

	require.Len(t, payload.Tools, 1)
	assert.Equal(t, "search_cars", payload.Tools[0].Name)
	assert.JSONEq(t, string(testTools[0].Function.Parameters), string(payload.Tools[0].InputSchema))

	require.Len(t, payload.Messages, 3)
	assistant := payload.Messages[1]
	assert.Equal(t, "assistant", assistant.Role)
	require.Len(t, assistant.Content, 2)
	assert.Equal(t, "tool_use", assistant.Content[0].Type)
	assert.JSONEq(t, `{"max_price":40}`, string(assistant.Content[0].Input))

	results := payload.Messages[2]
	assert.Equal(t, "user", results.Role)
	require.Len(t, results.Content, 2)
	assert.Equal(t, "tool_result", results.Content[0].Type)
	assert.Equal(t, "toolu_0", results.Content[0].ToolUseID)
	assert.Equal(t, "toolu_1", results.Content[1].ToolUseID)

	assert.Equal(t, "Let me check.", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "toolu_2", msg.ToolCalls[0].ID)
	assert.Equal(t, "get_car_inventory", msg.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{}`, msg.ToolCalls[0].Function.Arguments)
}

func TestEcho_Chat(t *testing.T) {
	msg, err := NewEcho().Chat(context.Background(), testHistory, nil)
	require.NoError(t, err)
	assert.Equal(t, core.RoleAssistant, msg.Role)
	assert.Contains(t, msg.Content, "**I need a car**")

	_, err = NewEcho().Chat(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantErr  bool
		want     any
	}{
		{provider: "openai", want: &OpenAI{}},
		{provider: "anthropic", want: &Anthropic{}},
		{provider: "openrouter", want: &OpenRouter{}},
		{provider: "ollama", want: &Ollama{}},
		{provider: "echo", want: &Echo{}},
		{provider: "custom", wantErr: true},
		{provider: "mystery", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := &config.ResponderConfig{Provider: tt.provider, Model: "m"}
			p, err := NewProvider(context.Background(), cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}
