// Package config loads application settings from a YAML file via viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Conf holds the loaded configuration for the whole process.
var Conf Config

// Config mirrors configs/config.yaml.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LLMConfig configures the chat-completion client. BaseURL may point at any
// OpenAI-compatible endpoint.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// AuthConfig holds the shared secret that protects job-trigger endpoints.
type AuthConfig struct {
	JobToken string `mapstructure:"job_token"`
}

type PipelineConfig struct {
	// TrendIntervalDays is the cooldown between trend regenerations.
	TrendIntervalDays int `mapstructure:"trend_interval_days"`
	// JokeIntervalDays is the cooldown for on-demand per-character generation.
	JokeIntervalDays int `mapstructure:"joke_interval_days"`
	// HighVolumeCount is the number of jokes requested per character in
	// high-volume jobs.
	HighVolumeCount int `mapstructure:"high_volume_count"`
	// TopCharacterLimit bounds the roster of top-characters jobs.
	TopCharacterLimit int `mapstructure:"top_character_limit"`
	// MemoryLimit is the default top-K for memory retrieval.
	MemoryLimit int `mapstructure:"memory_limit"`
}

// Init reads the YAML file at configPath into Conf and applies defaults.
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.9)
	viper.SetDefault("embedding.model", "text-embedding-004")
	viper.SetDefault("embedding.dimensions", 768)
	viper.SetDefault("pipeline.trend_interval_days", 7)
	viper.SetDefault("pipeline.joke_interval_days", 1)
	viper.SetDefault("pipeline.high_volume_count", 100)
	viper.SetDefault("pipeline.top_character_limit", 5)
	viper.SetDefault("pipeline.memory_limit", 5)

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("failed to read config file: %w", err))
	}
	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %w", err))
	}
}
