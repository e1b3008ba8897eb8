package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerdneilsfield/go-dict-translator/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "deepseek-chat", config.Model)
	assert.Equal(t, "https://api.deepseek.com/v1", config.APIEndpoint)
	assert.Equal(t, float32(0.1), config.Temperature)
}

func TestName(t *testing.T) {
	provider := New(DefaultConfig())
	assert.Equal(t, "deepseek", provider.Name())
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "deepseek-chat", body["model"])

		messages := body["messages"].([]interface{})
		require.Len(t, messages, 2)

		system := messages[0].(map[string]interface{})
		assert.Equal(t, "system", system["role"])
		assert.Contains(t, system["content"], "保持 *** 包裹的内容不变")

		user := messages[1].(map[string]interface{})
		assert.Equal(t, "user", user["role"])
		assert.Equal(t, "こんにちは", user["content"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"model": "deepseek-chat",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "你好"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`))
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIKey = "test-key"
	config.APIEndpoint = server.URL
	provider := New(config)

	resp, err := provider.Translate(context.Background(), &providers.Request{
		Text:           "こんにちは",
		Instructions:   "翻译时保持 *** 包裹的内容不变。",
		SourceLanguage: "Japanese",
		TargetLanguage: "Chinese",
	})
	require.NoError(t, err)

	assert.Equal(t, "你好", resp.Text)
	assert.Equal(t, "deepseek-chat", resp.Model)
	assert.Equal(t, 12, resp.TokensIn)
	assert.Equal(t, 4, resp.TokensOut)
}

func TestTranslateWithoutInstructions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)

		// 没有指令时只发送用户消息
		messages := body["messages"].([]interface{})
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]interface{})["role"])

		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}], "usage": {}}`))
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	_, err := provider.Translate(context.Background(), &providers.Request{Text: "hello"})
	require.NoError(t, err)
}

func TestTranslateRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit reached", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	_, err := provider.Translate(context.Background(), &providers.Request{Text: "hello"})
	require.Error(t, err)

	var provErr *providers.Error
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, providers.CodeRateLimit, provErr.Code)
	assert.True(t, provErr.IsRetryable())
}

func TestTranslateAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key", "type": "authentication_error"}}`))
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	config.APIKey = "bad-key"
	provider := New(config)

	_, err := provider.Translate(context.Background(), &providers.Request{Text: "hello"})
	require.Error(t, err)

	var provErr *providers.Error
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, providers.CodeAuth, provErr.Code)
	assert.False(t, provErr.IsRetryable())
}

func TestTranslateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [], "usage": {}}`))
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	_, err := provider.Translate(context.Background(), &providers.Request{Text: "hello"})
	require.Error(t, err)

	var provErr *providers.Error
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, providers.CodeBadResponse, provErr.Code)
}
