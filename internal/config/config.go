package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds configuration for the chat server process.
type Config struct {
	ListenAddr            string
	DBPath                string
	OpenAIAPIKey          string
	OpenAIChatCompURL     string
	OpenAIModel           string
	OpenAITimeoutSeconds  int
	HistoryWindow         int
	SystemPrompt          string
	DefaultConversationID string
	LogLevel              string
}

// Load reads server configuration from environment variables. A missing API
// credential is a startup failure, never a per-request error.
func Load() (Config, error) {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required in environment")
	}

	cfg := Config{
		ListenAddr:            envOrDefault("SMSCHAT_LISTEN_ADDR", ":8080"),
		DBPath:                envOrDefault("SMSCHAT_DB_PATH", "./chat_history.db"),
		OpenAIAPIKey:          openaiKey,
		OpenAIChatCompURL:     envOrDefault("OPENAI_CHAT_COMPLETIONS_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:           envOrDefault("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAITimeoutSeconds:  envIntOrDefault("SMSCHAT_OPENAI_TIMEOUT_SECONDS", 120),
		HistoryWindow:         envIntOrDefault("SMSCHAT_HISTORY_WINDOW", 40),
		SystemPrompt:          envOrDefault("SMSCHAT_SYSTEM_PROMPT", ""),
		DefaultConversationID: envOrDefault("SMSCHAT_DEFAULT_CONVERSATION", "local"),
		LogLevel:              envOrDefault("SMSCHAT_LOG_LEVEL", "info"),
	}

	if cfg.OpenAITimeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("SMSCHAT_OPENAI_TIMEOUT_SECONDS must be positive")
	}
	if cfg.HistoryWindow < 0 {
		return Config{}, fmt.Errorf("SMSCHAT_HISTORY_WINDOW must not be negative")
	}
	if cfg.DefaultConversationID == "" {
		return Config{}, fmt.Errorf("SMSCHAT_DEFAULT_CONVERSATION must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
