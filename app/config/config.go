package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log      `yaml:"log"`
	API      API      `yaml:"api"`
	OpenAI   OpenAI   `yaml:"openai"`
	HTTP     HTTP     `yaml:"http"`
	MCP      MCP      `yaml:"mcp"`
	Pipeline Pipeline `yaml:"pipeline"`
}

type API struct {
	// Base URL of the pet professionals API
	BaseURL string `yaml:"base_url" example:"https://api.petpro.example.com" validate:"required"`
	// Bearer token for the pet professionals API
	Key string `yaml:"key"`
	// Request timeout in seconds
	TimeoutSeconds int `yaml:"timeout_seconds" example:"30"`
}

type OpenAI struct {
	Decision ModelConfig `yaml:"decision" validate:"required"`
}

type ModelConfig struct {
	// OpenAI-compatible base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1" validate:"required"`
	// OpenAI token
	Token string `yaml:"token" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"gpt-4o-mini" validate:"required"`
}

type HTTP struct {
	// Listen address for the HTTP API
	Listen string `yaml:"listen" example:":8080"`
}

type MCP struct {
	// Serve the resolution stages as MCP tools over stdio
	Enabled bool `yaml:"enabled" example:"false"`
}

type Pipeline struct {
	// Default professional when message intake omits one
	ProfessionalID string `yaml:"professional_id" validate:"required"`
	// Fixed anchor date (YYYY-MM-DD) for date resolution, wall clock if empty
	CurrentDate string `yaml:"current_date" example:"2024-11-27"`
	// Minimum extraction confidence to run the pipeline
	MinConfidence float32 `yaml:"min_confidence" example:"0.7"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.API.TimeoutSeconds <= 0 {
		result.API.TimeoutSeconds = 30
	}
	if result.HTTP.Listen == "" {
		result.HTTP.Listen = ":8080"
	}
	if result.Pipeline.MinConfidence <= 0 {
		result.Pipeline.MinConfidence = 0.7
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
