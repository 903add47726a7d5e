// Package config provides configuration for the launchpad agent.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigFile names an optional YAML file loaded before the environment.
	EnvConfigFile = "LAUNCHPAD_CONFIG"
	// ModeMock forces mock collaborators even when credentials are present.
	ModeMock = "MOCK"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds the launchpad configuration.
type Config struct {
	// Server settings
	HTTPPort  int    `yaml:"http_port"`
	StaticDir string `yaml:"static_dir"`

	// Storage
	DatabaseURL       string `yaml:"database_url"`
	CollectionsStore  string `yaml:"collections_store"`
	CollectionsDBPath string `yaml:"collections_db_path"`

	// LLM settings
	LLMBaseURL    string        `yaml:"llm_base_url"`
	LLMAPIKey     string        `yaml:"llm_api_key"`
	LLMModel      string        `yaml:"llm_model"`
	LLMTimeout    time.Duration `yaml:"llm_timeout"`
	MaxIterations int           `yaml:"max_iterations"`
	Mode          string        `yaml:"mode"`

	// Tool policy (Rego). Empty uses the built-in policy.
	PolicyPath string `yaml:"policy_path"`

	// Chain settings. The private key is only ever read from the environment.
	AgentPrivateKey      string  `yaml:"-"`
	AgentWallet          string  `yaml:"agent_wallet"`
	RPCURL               string  `yaml:"rpc_url"`
	ChainID              int64   `yaml:"chain_id"`
	ExplorerURL          string  `yaml:"explorer_url"`
	DeploymentFeeETH     float64 `yaml:"deployment_fee_eth"`
	GasEstimateETH       float64 `yaml:"gas_estimate_eth"`
	ContractArtifactPath string  `yaml:"contract_artifact_path"`
	MintABIPath          string  `yaml:"mint_abi_path"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPPort:             5000,
		DatabaseURL:          "",
		CollectionsStore:     StoreFile,
		CollectionsDBPath:    "/tmp/collections_db.json",
		LLMBaseURL:           "https://api.openai.com",
		LLMModel:             "gpt-4o",
		LLMTimeout:           120 * time.Second,
		MaxIterations:        3,
		AgentWallet:          "0x32e75870fB68372d703ED6867cF6A1E52C4769EE",
		RPCURL:               "https://sepolia.base.org",
		ChainID:              84532,
		ExplorerURL:          "https://sepolia.basescan.org",
		DeploymentFeeETH:     0.01,
		GasEstimateETH:       0.005,
		ContractArtifactPath: "contract_artifact.json",
		MintABIPath:          "aspro_abi.json",
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by LAUNCHPAD_CONFIG, and finally environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.CollectionsStore = strings.ToLower(getEnv("COLLECTIONS_STORE", cfg.CollectionsStore))
	cfg.CollectionsDBPath = getEnv("COLLECTIONS_DB_PATH", cfg.CollectionsDBPath)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.LLMTimeout = time.Duration(getEnvInt("LLM_TIMEOUT_MS", int(cfg.LLMTimeout.Milliseconds()))) * time.Millisecond
	cfg.MaxIterations = getEnvInt("MAX_ITERATIONS", cfg.MaxIterations)
	cfg.Mode = strings.ToUpper(getEnv("LAUNCHPAD_MODE", cfg.Mode))
	cfg.PolicyPath = getEnv("POLICY_PATH", cfg.PolicyPath)
	cfg.AgentPrivateKey = os.Getenv("AGENT_PRIVATE_KEY")
	cfg.AgentWallet = getEnv("AGENT_WALLET", cfg.AgentWallet)
	cfg.RPCURL = getEnv("RPC_URL", cfg.RPCURL)
	cfg.ChainID = int64(getEnvInt("CHAIN_ID", int(cfg.ChainID)))
	cfg.ExplorerURL = getEnv("EXPLORER_URL", cfg.ExplorerURL)
	cfg.DeploymentFeeETH = getEnvFloat("DEPLOYMENT_FEE_ETH", cfg.DeploymentFeeETH)
	cfg.GasEstimateETH = getEnvFloat("DEFAULT_GAS_ESTIMATE_ETH", cfg.GasEstimateETH)
	cfg.ContractArtifactPath = getEnv("CONTRACT_ARTIFACT_PATH", cfg.ContractArtifactPath)
	cfg.MintABIPath = getEnv("MINT_ABI_PATH", cfg.MintABIPath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the agent cannot run with.
func (c *Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	switch c.CollectionsStore {
	case StoreFile:
		if c.CollectionsDBPath == "" {
			return fmt.Errorf("collections_db_path is required for the file store")
		}
	case StoreSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for the sqlite collection store")
		}
	default:
		return fmt.Errorf("unknown collections_store %q", c.CollectionsStore)
	}
	if c.DeploymentFeeETH < 0 || c.GasEstimateETH < 0 {
		return fmt.Errorf("fees must not be negative")
	}
	return nil
}

// MockLLM reports whether the model runs in mock mode.
func (c *Config) MockLLM() bool {
	return c.Mode == ModeMock || c.LLMAPIKey == ""
}

// MockChain reports whether blockchain collaborators run in mock mode.
func (c *Config) MockChain() bool {
	return c.Mode == ModeMock || c.AgentPrivateKey == ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
