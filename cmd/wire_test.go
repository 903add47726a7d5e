package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/llm"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/agent"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/config"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/protocol"
)

func mockConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.Default()
	c.Mode = config.ModeMock
	c.CollectionsDBPath = filepath.Join(t.TempDir(), "collections.json")
	return c
}

func TestBuildAppMockMode(t *testing.T) {
	a, err := buildApp(context.Background(), mockConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.mock)
	assert.Equal(t, 3, a.loop.MaxIterations())

	turn := a.loop.Run(context.Background(), "hello there", nil)
	var chunks []agent.Chunk
	for c := range turn.Chunks() {
		chunks = append(chunks, c)
	}
	require.NotEmpty(t, chunks)
	assert.Equal(t, agent.Chunk{Kind: agent.ChunkNotice, Text: mockChainNotice}, chunks[0])

	var text strings.Builder
	for _, c := range chunks[1:] {
		text.WriteString(c.Text)
	}
	assert.True(t, strings.HasPrefix(text.String(), llm.MockBanner))
	assert.Equal(t, agent.StateDone, turn.State())

	run, err := a.trace.GetRun(context.Background(), turn.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
}

func TestBuildAppSQLiteCollections(t *testing.T) {
	c := mockConfig(t)
	c.CollectionsStore = config.StoreSQLite
	c.DatabaseURL = filepath.Join(t.TempDir(), "launchpad.db")

	a, err := buildApp(context.Background(), c)
	require.NoError(t, err)
	defer a.Close()

	list, err := a.directory.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBuildAppBadPolicy(t *testing.T) {
	c := mockConfig(t)
	c.PolicyPath = filepath.Join(t.TempDir(), "missing.rego")

	_, err := buildApp(context.Background(), c)
	assert.ErrorContains(t, err, "load tool policy")
}

func TestFrameChunk(t *testing.T) {
	f := protocol.NewFrame(protocol.TypeProgress, "run_1")
	f.Text = "get_deployment_instructions"
	assert.Equal(t, agent.Chunk{Kind: agent.ChunkProgress, Text: f.Text}, frameChunk(f))

	f.Type = protocol.TypeDelta
	assert.Equal(t, agent.ChunkText, frameChunk(f).Kind)
}
