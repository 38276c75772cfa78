package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"title\":\"T\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
		}`))
	}))
	defer server.Close()

	client, err := NewChatClient(ClientConfig{
		Provider: "openai",
		BaseURL:  server.URL + "/v1",
		APIKey:   "test-key",
		Model:    "gpt-4o-mini",
		Timeout:  5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	text, usage, err := client.Complete(context.Background(), "system", "user")
	require.NoError(t, err)

	assert.Equal(t, `{"title":"T"}`, text)
	assert.Equal(t, 17, usage.TotalTokens)
	assert.False(t, usage.Estimated)

	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	format, ok := gotBody["response_format"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	client, err := NewChatClient(ClientConfig{Provider: "openai", BaseURL: server.URL, Model: "gpt-4o-mini", Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)

	_, _, err = client.Complete(context.Background(), "system", "user")
	assert.ErrorIs(t, err, ErrAIGenerationFailed)
}

func TestOllamaClient_Complete(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"{\"title\":\"T\"}"},"done":true,"prompt_eval_count":20,"eval_count":8}` + "\n"))
	}))
	defer server.Close()

	client, err := NewChatClient(ClientConfig{
		Provider: "ollama",
		BaseURL:  server.URL + "/v1",
		Model:    "llama3",
		Timeout:  5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	text, usage, err := client.Complete(context.Background(), "system", "user")
	require.NoError(t, err)

	assert.Equal(t, `{"title":"T"}`, text)
	assert.Equal(t, 28, usage.TotalTokens)
	assert.Equal(t, "json", gotBody["format"])
	assert.Equal(t, false, gotBody["stream"])
}

func TestNewChatClient_UnknownProvider(t *testing.T) {
	_, err := NewChatClient(ClientConfig{Provider: "bard"}, zap.NewNop())
	assert.Error(t, err)
}
