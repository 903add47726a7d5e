package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/llm"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/config"
)

func modelsServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"object":"list","data":[
			{"id":"gpt-4o-mini","object":"model","owned_by":"openai"},
			{"id":"gpt-4o","object":"model","owned_by":"openai"}]}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestListModelsMarksConfiguredModel(t *testing.T) {
	server := modelsServer(t)
	c := config.Default()
	c.LLMBaseURL = server.URL
	c.LLMAPIKey = "sk-test"

	var out bytes.Buffer
	err := listModels(context.Background(), c, llm.NewClient(c.LLMBaseURL, c.LLMAPIKey, time.Second), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "*  gpt-4o ")
	assert.Contains(t, out.String(), "gpt-4o-mini")
}

func TestListModelsMissingConfiguredModel(t *testing.T) {
	server := modelsServer(t)
	c := config.Default()
	c.LLMBaseURL = server.URL
	c.LLMAPIKey = "sk-test"
	c.LLMModel = "gpt-5-turbo"

	var out bytes.Buffer
	err := listModels(context.Background(), c, llm.NewClient(c.LLMBaseURL, c.LLMAPIKey, time.Second), &out)
	assert.ErrorContains(t, err, `configured model "gpt-5-turbo" is not served`)
}

func TestListModelsMockMode(t *testing.T) {
	c := mockConfig(t)

	var out bytes.Buffer
	require.NoError(t, listModels(context.Background(), c, llm.NewLLMClient(c), &out))
	assert.Contains(t, out.String(), "mock-gpt-4o")
}

func TestListModelsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"auth_error"}}`)
	}))
	defer server.Close()
	c := config.Default()
	c.LLMBaseURL = server.URL
	c.LLMAPIKey = "nope"

	err := listModels(context.Background(), c, llm.NewLLMClient(c), &bytes.Buffer{})
	assert.ErrorContains(t, err, "list models")
	assert.ErrorContains(t, err, "bad key")
}
