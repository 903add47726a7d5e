package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/chain"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/llm"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/agent"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/collections"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/config"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/policy"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/repository"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/tools"
)

// mockChainNotice is shown at the start of every turn when blockchain calls
// are simulated.
const mockChainNotice = "[MOCK] Blockchain calls are simulated because AGENT_PRIVATE_KEY is not set. Nothing is sent on-chain."

// app holds the wired launchpad components.
type app struct {
	loop      *agent.Loop
	directory *collections.Directory
	trace     *repository.SQLiteStore
	mock      bool

	closers []func() error
}

// Close releases every resource opened by buildApp, last opened first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// buildApp wires the launchpad from configuration.
func buildApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{mock: cfg.MockLLM() || cfg.MockChain()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	// Chain
	var ch chain.Chain
	if cfg.MockChain() {
		slog.Warn("blockchain running in mock mode", "reason", mockReason(cfg))
		ch = chain.NewMockChain()
	} else {
		eth, err := chain.NewEthereumChain(ctx, chain.EthereumConfig{
			RPCURL:       cfg.RPCURL,
			PrivateKey:   cfg.AgentPrivateKey,
			ChainID:      cfg.ChainID,
			AgentWallet:  cfg.AgentWallet,
			ArtifactPath: cfg.ContractArtifactPath,
			MintABIPath:  cfg.MintABIPath,
		})
		if err != nil {
			return nil, fmt.Errorf("connect chain: %w", err)
		}
		a.closers = append(a.closers, func() error { eth.Close(); return nil })
		ch = eth
	}

	// Run trace, in memory unless DATABASE_URL is set
	traceDSN := cfg.DatabaseURL
	if traceDSN == "" {
		traceDSN = ":memory:"
	}
	trace, err := repository.NewSQLiteStore(traceDSN)
	if err != nil {
		return nil, fmt.Errorf("open trace store: %w", err)
	}
	a.closers = append(a.closers, trace.Close)
	a.trace = trace

	// Collections
	var store collections.Store
	switch cfg.CollectionsStore {
	case config.StoreSQLite:
		store = trace
	default:
		store = collections.NewFileStore(cfg.CollectionsDBPath)
	}
	a.directory = collections.NewDirectory(store, ch, collections.WithGasEstimate(cfg.GasEstimateETH))
	if err := a.directory.Refresh(ctx); err != nil {
		slog.Warn("could not load stored collections", "err", err)
	}

	// Tools
	engine, err := policy.NewEngineFromFile(ctx, cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load tool policy: %w", err)
	}
	registry := tools.NewRegistry()
	launchpad := &tools.Launchpad{
		Directory:        a.directory,
		Verifier:         ch,
		Minter:           ch,
		AgentWallet:      cfg.AgentWallet,
		DeploymentFeeETH: cfg.DeploymentFeeETH,
		ExplorerURL:      cfg.ExplorerURL,
	}
	if err := launchpad.Register(registry); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	opts := []agent.Option{
		agent.WithSystemPrompt(agent.LaunchpadPrompt(a.directory)),
		agent.WithRecorder(trace),
		agent.WithModel(cfg.LLMModel),
		agent.WithMaxIterations(cfg.MaxIterations),
	}
	if cfg.MockChain() {
		opts = append(opts, agent.WithNotice(mockChainNotice))
	}
	a.loop = agent.NewLoop(llm.NewLLMClient(cfg), tools.NewDispatcher(registry, engine), opts...)

	slog.Info("launchpad ready",
		"model", cfg.LLMModel,
		"mock_llm", cfg.MockLLM(),
		"mock_chain", cfg.MockChain(),
		"collections_store", cfg.CollectionsStore,
		"max_iterations", a.loop.MaxIterations())
	return a, nil
}

func mockReason(cfg *config.Config) string {
	if strings.EqualFold(cfg.Mode, config.ModeMock) {
		return "LAUNCHPAD_MODE=MOCK"
	}
	return "AGENT_PRIVATE_KEY not set"
}
