package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Timeline  TimelineConfig  `mapstructure:"timeline"`
	Assistant AssistantConfig `mapstructure:"assistant"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// StorageConfig points at the sqlite file backing every durable record.
// An empty path keeps everything in memory.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// TimelineConfig holds pagination and reply simulation settings
type TimelineConfig struct {
	PageLength int           `mapstructure:"page_length"`
	ReplyDelay time.Duration `mapstructure:"reply_delay"`
}

// AssistantConfig selects the backend that writes assistant replies.
type AssistantConfig struct {
	Name         string `mapstructure:"name"`
	Provider     string `mapstructure:"provider"` // echo or openai
	BaseURL      string `mapstructure:"base_url"`
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	SystemPrompt string `mapstructure:"system_prompt"`
}

const (
	ProviderEcho   = "echo"
	ProviderOpenAI = "openai"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("storage.path", "roomchat.db")
	v.SetDefault("timeline.page_length", 20)
	v.SetDefault("timeline.reply_delay", 2*time.Second)
	v.SetDefault("assistant.name", "Gemini")
	v.SetDefault("assistant.provider", ProviderEcho)
}

// Load reads config.yaml from the working directory, or the file named by
// CONFIG_PATH. A missing file is fine; ROOMCHAT_* variables override values.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("roomchat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Timeline.PageLength <= 0 {
		config.Timeline.PageLength = 20
	}

	return &config, nil
}
