package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/compliance-cli/internal/rules"
)

// Config holds the full application configuration.
type Config struct {
	Watsonx   WatsonxConfig   `yaml:"watsonx" mapstructure:"watsonx"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Context   ContextConfig   `yaml:"context" mapstructure:"context"`
	KB        KBConfig        `yaml:"kb" mapstructure:"kb"`
	Rules     rules.Config    `yaml:"rules" mapstructure:"rules"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// WatsonxConfig holds IBM watsonx.ai credentials and model selection.
type WatsonxConfig struct {
	APIKey           string `yaml:"api_key" mapstructure:"api_key"`
	URL              string `yaml:"url" mapstructure:"url"`
	ProjectID        string `yaml:"project_id" mapstructure:"project_id"`
	ModelID          string `yaml:"model_id" mapstructure:"model_id"`
	EmbeddingModelID string `yaml:"embedding_model_id" mapstructure:"embedding_model_id"`
}

// AnthropicConfig holds Anthropic API settings for the alternative
// generation backend.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// LLMConfig selects the generation backend and its client behavior.
type LLMConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ContextConfig bounds the direct-context strategy.
type ContextConfig struct {
	MaxContextLength int `yaml:"max_context_length" mapstructure:"max_context_length"`
	MaxSummaryLength int `yaml:"max_summary_length" mapstructure:"max_summary_length"`
}

// KBConfig configures the retrieval strategy's knowledge base.
type KBConfig struct {
	Strategy     string `yaml:"strategy" mapstructure:"strategy"` // "retrieval" or "direct"
	ChunkSize    int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	MaxResults   int    `yaml:"max_results" mapstructure:"max_results"`
	Path         string `yaml:"path" mapstructure:"path"` // empty = in-memory index
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMPLIANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("llm.provider", "watsonx")
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("watsonx.model_id", "meta-llama/llama-3-3-70b-instruct")
	v.SetDefault("watsonx.embedding_model_id", "ibm/slate-125m-english-rtrvr")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("context.max_context_length", 30000)
	v.SetDefault("context.max_summary_length", 8000)
	v.SetDefault("kb.strategy", "retrieval")
	v.SetDefault("kb.chunk_size", 1000)
	v.SetDefault("kb.chunk_overlap", 200)
	v.SetDefault("kb.max_results", 3)
	v.SetDefault("rules.high_weight", 40)
	v.SetDefault("rules.medium_weight", 20)
	v.SetDefault("rules.low_weight", 10)
	v.SetDefault("rules.high_penalty", 300000)
	v.SetDefault("rules.medium_penalty", 125000)
	v.SetDefault("rules.low_penalty", 50000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
