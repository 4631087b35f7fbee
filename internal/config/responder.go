package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type ResponderConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"openai"`
	Model    string `env:"LLM_MODEL" envDefault:"gpt-4"`

	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"500"`
	MaxRetries  int     `env:"LLM_MAX_RETRIES" envDefault:"2"`

	OpenAIAPIKey        string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey     string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey    string `env:"OPENROUTER_API_KEY"`
	OllamaBaseURL       string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaAPIKey        string `env:"OLLAMA_API_KEY"`
	CustomOpenAIBaseURL string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"CUSTOM_OPENAI_API_KEY"`
}

func LoadResponderConfig() (*ResponderConfig, error) {
	c := &ResponderConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("failed to parse Responder config: %w", err)
	}
	return c, nil
}

func NewResponderConfig(ctx context.Context) *ResponderConfig {
	c, err := LoadResponderConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Responder config")
	}
	return c
}

func (c ResponderConfig) GetProvider() string {
	return c.Provider
}

func (c ResponderConfig) GetModel() string {
	return c.Model
}
