package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clarifai/internal/model"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
			t.Errorf("Expected JSON response format")
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIProvider_WriteScript(t *testing.T) {
	reply := "```json\n" + `{"segments":[
		{"text":"Good evening.","mood":"happy"},
		{"text":"  "},
		{"text":"Reuters reports calm markets.","gesture":"nod"},
		{"text":"This is ClarifAI.","gesture":"wave"}
	],"sources_cited":["Reuters"]}` + "\n```"
	server := chatServer(t, reply)
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini", Timeout: 5})
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	script, err := provider.WriteScript(context.Background(), ScriptRequest{Topic: "Markets", Duration: model.DurationShort})
	require.NoError(t, err)

	require.Len(t, script.Segments, 3)
	assert.Equal(t, "Good evening.", script.Segments[0].Text)
	assert.Equal(t, "happy", script.Segments[0].Mood)
	assert.Equal(t, model.DefaultMood, script.Segments[1].Mood)
	assert.Equal(t, "nod", script.Segments[1].Gesture)
	assert.Equal(t, model.DefaultVoice, script.Segments[2].Voice)
	assert.Equal(t, []string{"Reuters"}, script.SourcesCited)
	assert.Equal(t, "Markets", script.Topic)
}

func TestOpenAIProvider_CapsSegments(t *testing.T) {
	server := chatServer(t, `{"segments":[{"text":"a"},{"text":"b"},{"text":"c"},{"text":"d"},{"text":"e"}]}`)
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	script, err := provider.WriteScript(context.Background(), ScriptRequest{Topic: "T", Duration: model.DurationShort})
	require.NoError(t, err)
	assert.Len(t, script.Segments, 3)
	assert.NotNil(t, script.SourcesCited)
}

func TestOpenAIProvider_BadReply(t *testing.T) {
	server := chatServer(t, "I cannot help with that.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.WriteScript(context.Background(), ScriptRequest{Topic: "T"})
	assert.Error(t, err)
}

func TestOpenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(Config{})
	assert.Error(t, err)
}

func TestNewOllamaProvider_Defaults(t *testing.T) {
	p, err := NewOllamaProvider(Config{})
	require.NoError(t, err)

	assert.Equal(t, "ollama", p.Name())
	assert.Equal(t, "llama3.1", p.config.Model)
	assert.Equal(t, "http://localhost:11434/v1", p.config.BaseURL)
	assert.Equal(t, 60, p.config.Timeout)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = NewProvider(Config{Provider: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = NewProvider(Config{Provider: "gemini"})
	assert.Error(t, err)
}
