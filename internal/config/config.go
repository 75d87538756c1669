package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration, sourced from the
// environment. Components never read the environment themselves; the
// value is built once at startup and passed to constructors.
type Config struct {
	// Classifier settings
	ModelID           string
	HFAPIKey          string
	ClassifierBackend string
	OllamaURL         string
	OllamaModel       string

	// Preprocessing settings
	StrategyOverride string
	ABTesting        bool

	// Tip generation settings
	AITips          bool
	TipProvider     string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Persistence; empty path disables the store entirely
	DBPath string
}

// FromEnv builds a Config from environment variables, applying
// documented defaults for anything unset.
func FromEnv() *Config {
	return &Config{
		ModelID:           envOr("HF_MODEL_ID", "nateraw/food"),
		HFAPIKey:          os.Getenv("HF_API_KEY"),
		ClassifierBackend: envOr("CLASSIFIER_BACKEND", "huggingface"),
		OllamaURL:         envOr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:       envOr("OLLAMA_MODEL", "llava"),
		StrategyOverride:  os.Getenv("PREPROCESS_STRATEGY"),
		ABTesting:         envBool("ENABLE_AB_TESTING", false),
		AITips:            envBool("ENABLE_AI_TIPS", true),
		TipProvider:       envOr("AI_TIP_PROVIDER", "huggingface"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		DBPath:            os.Getenv("DB_PATH"),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.ClassifierBackend {
	case "huggingface", "ollama":
	default:
		return fmt.Errorf("classifier backend must be huggingface or ollama, got %q", c.ClassifierBackend)
	}

	switch c.StrategyOverride {
	case "", "minimal", "adaptive", "aggressive":
	default:
		return fmt.Errorf("preprocess strategy must be minimal, adaptive or aggressive, got %q", c.StrategyOverride)
	}

	switch c.TipProvider {
	case "huggingface", "openai", "anthropic":
	default:
		return fmt.Errorf("tip provider must be huggingface, openai or anthropic, got %q", c.TipProvider)
	}

	if c.ModelID == "" {
		return fmt.Errorf("model id cannot be empty")
	}

	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
