package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/config"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

func TestCreateChatCompletionStreamAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"auth_error"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "nope", 5*time.Second)
	_, err := client.CreateChatCompletionStream(context.Background(), &ChatCompletionRequest{Model: "m"}, func(*StreamChunk) error {
		t.Fatal("no chunks expected")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad key")
}

func TestCreateChatCompletionStreamToolCallDeltas(t *testing.T) {
	lines := []string{
		`data: {"id":"s","choices":[{"index":0,"delta":{"role":"assistant","content":"Let me "}}]}`,
		`data: {"id":"s","choices":[{"index":0,"delta":{"content":"check."}}]}`,
		`data: {"id":"s","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"check_collection","arguments":""}}]}}]}`,
		`: keep-alive comment`,
		`data: {not json`,
		`data: {"id":"s","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"name":"_availability","arguments":"{\"collection_name\":"}}]}}]}`,
		`data: {"id":"s","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"ASPRO\"}"}}]},"finish_reason":"tool_calls"}]}`,
		`data: {"id":"s","choices":[],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`,
		`data: [DONE]`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		require.NotNil(t, req.StreamOptions)
		assert.True(t, req.StreamOptions.IncludeUsage)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, l := range lines {
			fmt.Fprint(w, l+"\n\n")
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", 5*time.Second)

	var text strings.Builder
	var deltas []ToolCallDelta
	usage, err := client.CreateChatCompletionStream(context.Background(), &ChatCompletionRequest{Model: "m"}, func(chunk *StreamChunk) error {
		for _, c := range chunk.Choices {
			if c.Delta == nil {
				continue
			}
			text.WriteString(c.Delta.Content)
			deltas = append(deltas, c.Delta.ToolCalls...)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Let me check.", text.String())
	require.Len(t, deltas, 3)
	assert.Equal(t, "call_1", deltas[0].ID)
	assert.Equal(t, "", deltas[1].ID)
	assert.Equal(t, 0, deltas[2].Index)
	assert.Equal(t, "check_collection_availability", deltas[0].Function.Name+deltas[1].Function.Name+deltas[2].Function.Name)
	require.NotNil(t, usage)
	assert.Equal(t, 15, usage.TotalTokens)
}

func TestCreateChatCompletionStreamWithoutDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `data: {"choices":[{"index":0,"delta":{"content":"tail"}}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	var got string
	_, err := client.CreateChatCompletionStream(context.Background(), &ChatCompletionRequest{Model: "m"}, func(chunk *StreamChunk) error {
		got += chunk.Choices[0].Delta.Content
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "tail", got)
}

func TestCreateChatCompletionStreamCallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"a\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"b\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	stop := errors.New("stop")
	calls := 0
	client := NewClient(server.URL, "", 5*time.Second)
	_, err := client.CreateChatCompletionStream(context.Background(), &ChatCompletionRequest{Model: "m"}, func(chunk *StreamChunk) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		fmt.Fprint(w, `{"object":"list","data":[{"id":"gpt-4o","object":"model","owned_by":"openai"}]}`)
	}))
	defer server.Close()

	models, err := NewClient(server.URL+"/", "k", time.Second).ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "gpt-4o", models[0].ID)
}

func TestMockClientStreamsLabelledReply(t *testing.T) {
	m := NewMockClient()
	var got strings.Builder
	usage, err := m.CreateChatCompletionStream(context.Background(), &ChatCompletionRequest{
		Model:    "mock",
		Messages: []domain.Message{domain.UserMessage("mint ASPRO ✨")},
	}, func(chunk *StreamChunk) error {
		require.Len(t, chunk.Choices, 1)
		assert.Empty(t, chunk.Choices[0].Delta.ToolCalls)
		got.WriteString(chunk.Choices[0].Delta.Content)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.String(), MockBanner))
	assert.Contains(t, got.String(), "mint ASPRO ✨")
	assert.NotNil(t, usage)
}

func TestNewLLMClientSelectsMock(t *testing.T) {
	cfg := config.Default()
	_, ok := NewLLMClient(cfg).(*MockClient)
	assert.True(t, ok, "no API key should select the mock client")

	cfg.LLMAPIKey = "sk-test"
	_, ok = NewLLMClient(cfg).(*Client)
	assert.True(t, ok)

	cfg.Mode = config.ModeMock
	_, ok = NewLLMClient(cfg).(*MockClient)
	assert.True(t, ok, "MOCK mode wins over credentials")
}
