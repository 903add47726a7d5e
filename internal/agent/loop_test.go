package agent

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/chain"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/llm"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/collections"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/tools"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/tests/helpers"
)

// scriptedModel replays one list of chunks per round. Rounds past the end
// repeat the last one.
type scriptedModel struct {
	mu       sync.Mutex
	rounds   [][]*llm.StreamChunk
	errs     map[int]error
	requests [][]domain.Message
}

func (m *scriptedModel) CreateChatCompletionStream(ctx context.Context, req *llm.ChatCompletionRequest, cb llm.StreamCallback) (*llm.Usage, error) {
	m.mu.Lock()
	round := len(m.requests)
	m.requests = append(m.requests, append([]domain.Message(nil), req.Messages...))
	err := m.errs[round]
	chunks := m.rounds[min(round, len(m.rounds)-1)]
	m.mu.Unlock()

	for _, c := range chunks {
		if err := cb(c); err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	return &llm.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12}, nil
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func text(s string) *llm.StreamChunk {
	return &llm.StreamChunk{Choices: []llm.Choice{{Delta: &llm.Delta{Content: s}}}}
}

func toolDelta(index int, id, name, args string) *llm.StreamChunk {
	return &llm.StreamChunk{Choices: []llm.Choice{{Delta: &llm.Delta{ToolCalls: []llm.ToolCallDelta{{
		Index:    index,
		ID:       id,
		Type:     "function",
		Function: llm.ToolCallFunctionDelta{Name: name, Arguments: args},
	}}}}}}
}

func newDispatcher(t *testing.T) (*tools.Dispatcher, *chain.MockChain, *collections.Directory) {
	t.Helper()
	mock := chain.NewMockChain()
	dir := collections.NewDirectory(collections.NewMemoryStore(), mock)
	lp := &tools.Launchpad{
		Directory:        dir,
		Verifier:         mock,
		Minter:           mock,
		AgentWallet:      "0x32e75870fB68372d703ED6867cF6A1E52C4769EE",
		DeploymentFeeETH: 0.01,
		ExplorerURL:      "https://sepolia.basescan.org",
	}
	r := tools.NewRegistry()
	require.NoError(t, lp.Register(r))
	return tools.NewDispatcher(r, nil), mock, dir
}

func collect(turn *Turn) []Chunk {
	var out []Chunk
	for c := range turn.Chunks() {
		out = append(out, c)
	}
	return out
}

func TestLoopTextOnlyRound(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{{text("Hello"), text(", minter!")}}}
	d, _, _ := newDispatcher(t)
	loop := NewLoop(model, d, WithSystemPrompt(func(context.Context) string { return "sys" }))

	history := []domain.Message{domain.UserMessage("hi"), domain.AssistantMessage("hey", nil)}
	turn := loop.Run(context.Background(), "what can you do?", history)
	chunks := collect(turn)

	assert.Equal(t, []Chunk{{Kind: ChunkText, Text: "Hello"}, {Kind: ChunkText, Text: ", minter!"}}, chunks)
	assert.Equal(t, 1, turn.Iterations())
	assert.Equal(t, 1, model.calls())
	assert.Equal(t, StateDone, turn.State())
	assert.False(t, turn.Exhausted())
	assert.NoError(t, turn.Err())

	sent := model.requests[0]
	require.Len(t, sent, 4)
	assert.Equal(t, domain.RoleSystem, sent[0].Role)
	assert.Equal(t, "sys", sent[0].Text())
	assert.Equal(t, "what can you do?", sent[3].Text())

	msgs := turn.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "Hello, minter!", msgs[3].Text())
	assert.Len(t, history, 2, "caller history is not modified")
}

func TestLoopToolRoundThenAnswer(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{
		{
			text("Let me check."),
			toolDelta(0, "call_1", "check_collection", ""),
			toolDelta(0, "", "_availability", `{"collection_`),
			toolDelta(0, "", "", `name":"aspro"}`),
		},
		{text("ASPRO is a free mint!")},
	}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "tell me about aspro", nil)

	assert.Equal(t, []Chunk{
		{Kind: ChunkText, Text: "Let me check."},
		{Kind: ChunkProgress, Text: "check_collection_availability"},
		{Kind: ChunkText, Text: "ASPRO is a free mint!"},
	}, collect(turn))
	assert.Equal(t, 2, turn.Iterations())
	assert.Equal(t, StateDone, turn.State())

	second := model.requests[1]
	require.Len(t, second, 4)
	assistant := second[2]
	assert.Equal(t, domain.RoleAssistant, assistant.Role)
	assert.Equal(t, "Let me check.", assistant.Text())
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call_1", assistant.ToolCalls[0].ID)
	assert.Equal(t, `{"collection_name":"aspro"}`, assistant.ToolCalls[0].Function.Arguments)

	tool := second[3]
	assert.Equal(t, domain.RoleTool, tool.Role)
	assert.Equal(t, "call_1", tool.ToolCallID)
	assert.Contains(t, tool.Text(), `"name":"ASPRO"`)
}

func TestLoopToolCallOnlyRoundSendsNullContent(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{
		{toolDelta(0, "call_1", "get_deployment_instructions", "")},
		{text("Send 0.01 ETH.")},
	}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "deploy please", nil)
	collect(turn)

	assistant := model.requests[1][2]
	assert.Nil(t, assistant.Content)
	assert.Contains(t, model.requests[1][3].Text(), "deployment_fee_eth")
}

func TestLoopStopsAtCap(t *testing.T) {
	for _, limit := range []int{1, 3, 5} {
		model := &scriptedModel{rounds: [][]*llm.StreamChunk{
			{toolDelta(0, "call", "get_deployment_instructions", "{}")},
		}}
		d, _, _ := newDispatcher(t)
		turn := NewLoop(model, d, WithMaxIterations(limit)).Run(context.Background(), "loop forever", nil)
		chunks := collect(turn)

		assert.Equal(t, limit, model.calls(), "limit %d", limit)
		assert.Equal(t, limit, turn.Iterations())
		assert.True(t, turn.Exhausted())
		assert.Equal(t, StateDone, turn.State())
		assert.NoError(t, turn.Err())

		require.NotEmpty(t, chunks)
		last := chunks[len(chunks)-1]
		assert.Equal(t, ChunkNotice, last.Kind)
		assert.Contains(t, last.Text, "tool rounds")

		// last tool results stand as the final state
		msgs := turn.Messages()
		assert.Equal(t, domain.RoleTool, msgs[len(msgs)-1].Role)
	}
}

func TestLoopDefaultCapIsThree(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{{toolDelta(0, "call", "get_deployment_instructions", "")}}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d, WithMaxIterations(0)).Run(context.Background(), "x", nil)
	collect(turn)
	assert.Equal(t, 3, model.calls())
}

func TestLoopUnknownToolContinues(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{
		{toolDelta(0, "call_x", "launch_rocket", `{}`)},
		{text("I can't do that.")},
	}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "launch", nil)
	collect(turn)

	assert.Equal(t, StateDone, turn.State())
	assert.Contains(t, model.requests[1][3].Text(), "unknown tool: launch_rocket")
}

func TestLoopDispatchesInIndexOrder(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{
		{
			toolDelta(1, "call_b", "get_payment_instructions", `{"collection_name":"CyberPunks"}`),
			toolDelta(0, "call_a", "check_collection_availability", `{"collection_name":"ASPRO"}`),
		},
		{text("done")},
	}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "both", nil)

	var progress []string
	for c := range turn.Chunks() {
		if c.Kind == ChunkProgress {
			progress = append(progress, c.Text)
		}
	}
	assert.Equal(t, []string{"check_collection_availability", "get_payment_instructions"}, progress)

	second := model.requests[1]
	assert.Equal(t, "call_a", second[2].ToolCalls[0].ID)
	assert.Equal(t, "call_a", second[3].ToolCallID)
	assert.Equal(t, "call_b", second[4].ToolCallID)
}

func TestLoopMalformedArgumentsAbort(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{
		{toolDelta(0, "call_1", "check_collection_availability", `{"collection_name": "ASP`)},
		{text("never")},
	}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "x", nil)
	chunks := collect(turn)

	require.Len(t, chunks, 2)
	assert.Equal(t, ChunkProgress, chunks[0].Kind)
	assert.Equal(t, ChunkError, chunks[1].Kind)
	assert.Contains(t, chunks[1].Text, "Oops!")
	assert.Equal(t, StateError, turn.State())

	var parseErr *domain.ParseError
	assert.ErrorAs(t, turn.Err(), &parseErr)
	assert.Equal(t, 1, model.calls(), "no retry after a failure")
}

func TestLoopModelErrorAbortsWithOneDiagnostic(t *testing.T) {
	model := &scriptedModel{
		rounds: [][]*llm.StreamChunk{{text("partial ")}},
		errs:   map[int]error{0: errors.New("connection reset")},
	}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "x", nil)
	chunks := collect(turn)

	require.Len(t, chunks, 2)
	assert.Equal(t, Chunk{Kind: ChunkText, Text: "partial "}, chunks[0])
	assert.Equal(t, ChunkError, chunks[1].Kind)
	assert.Contains(t, chunks[1].Text, "connection reset")
	assert.Equal(t, StateError, turn.State())
	assert.Equal(t, 1, model.calls())
}

func TestLoopNotice(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{{text("hi")}}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d, WithNotice("mock mode")).Run(context.Background(), "x", nil)
	chunks := collect(turn)

	require.Len(t, chunks, 2)
	assert.Equal(t, Chunk{Kind: ChunkNotice, Text: "mock mode"}, chunks[0])
}

func TestTurnIsNotRestartable(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{{text("once")}}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "x", nil)

	assert.Len(t, collect(turn), 1)
	assert.Empty(t, collect(turn))
	assert.Equal(t, 1, model.calls())
}

func TestTurnEarlyBreakStopsModel(t *testing.T) {
	round := make([]*llm.StreamChunk, 500)
	for i := range round {
		round[i] = text("x")
	}
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{round}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "x", nil)

	for range turn.Chunks() {
		break
	}
	assert.Equal(t, StateError, turn.State())
	assert.ErrorIs(t, turn.Err(), errConsumerGone)
}

func TestTurnTextRendersProgress(t *testing.T) {
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{
		{toolDelta(0, "c", "get_deployment_instructions", "")},
		{text("ok")},
	}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "x", nil)

	var b strings.Builder
	for s := range turn.Text() {
		b.WriteString(s)
	}
	assert.Equal(t, "\n\n⚙️ *Executing tool `get_deployment_instructions`...*\nok", b.String())
}

func TestLoopMintFlowEndToEnd(t *testing.T) {
	const hash = "0x9f1c2b7e4d3a5b6c7d8e9f0a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e"
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{
		{toolDelta(0, "call_m", "verify_payment_and_mint_nft",
			`{"transaction_hash":"`+hash+`","user_wallet_address":"0x2222222222222222222222222222222222222222","collection_name":"ASPRO"}`)},
		{text("Minted!")},
	}}
	d, mock, _ := newDispatcher(t)
	turn := NewLoop(model, d).Run(context.Background(), "here is my hash", nil)
	collect(turn)

	assert.Equal(t, StateDone, turn.State())
	assert.Len(t, mock.Mints(), 1)
	assert.Contains(t, model.requests[1][3].Text(), `"success":true`)
}

func TestLoopRecordsTrace(t *testing.T) {
	store := helpers.NewTestSQLiteStore(t)
	model := &scriptedModel{rounds: [][]*llm.StreamChunk{
		{toolDelta(0, "call_1", "get_deployment_instructions", "")},
		{text("Send the fee.")},
	}}
	d, _, _ := newDispatcher(t)
	turn := NewLoop(model, d, WithRecorder(store), WithModel("gpt-4o")).Run(context.Background(), "deploy", nil)
	collect(turn)

	events, err := store.GetEvents(context.Background(), turn.RunID, 0, nil, 0)
	require.NoError(t, err)

	var types []domain.EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []domain.EventType{
		domain.EventTypeRunStarted,
		domain.EventTypeLLMCallStarted,
		domain.EventTypeLLMCallDone,
		domain.EventTypeToolDispatched,
		domain.EventTypeToolResult,
		domain.EventTypeLLMCallStarted,
		domain.EventTypeLLMCallDone,
		domain.EventTypeRunDone,
	}, types)

	run, err := store.GetRun(context.Background(), turn.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, domain.RunStatusDone, run.Status)
	assert.Equal(t, 2, run.Iterations)
}

func TestLaunchpadPromptListsCollections(t *testing.T) {
	_, _, dir := newDispatcher(t)
	prompt := LaunchpadPrompt(dir)(context.Background())
	assert.Contains(t, prompt, "ASPRO, CyberPunks")
	assert.Contains(t, prompt, "verify_deployment_payment_and_deploy")
}

func TestLaunchpadPromptSeesCollectionsFromOtherProcesses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.json")
	ctx := context.Background()

	served := collections.NewDirectory(collections.NewFileStore(path), chain.NewMockChain())
	require.NoError(t, served.Refresh(ctx))
	other := collections.NewDirectory(collections.NewFileStore(path), chain.NewMockChain())
	_, err := other.Register(ctx, domain.NewCollection{Name: "Moon Cats", Symbol: "MCAT", PriceETH: 0.02, Supply: 500})
	require.NoError(t, err)

	model := &scriptedModel{rounds: [][]*llm.StreamChunk{{text("ok")}}}
	d, _, _ := newDispatcher(t)
	loop := NewLoop(model, d, WithSystemPrompt(LaunchpadPrompt(served)))

	collect(loop.Run(ctx, "what can I mint?", nil))
	require.Equal(t, 1, model.calls())
	assert.Contains(t, model.requests[0][0].Text(), "ASPRO, CyberPunks, Moon Cats")
}
