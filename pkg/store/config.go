package store

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config tells persistence where to keep its data.
type Config interface {
	BasePath() string
}

// FileConfig is the resolved contents of .chatroom.yaml plus CHATROOM_*
// environment overrides.
type FileConfig struct {
	Path      string        `json:"path"`
	Responder string        `json:"responder"`
	User      string        `json:"user"`
	LogLevel  string        `json:"logLevel"`
	MinDelay  time.Duration `json:"minDelay"`
	MaxDelay  time.Duration `json:"maxDelay"`
	OpenAI    OpenAIConfig  `json:"openai"`
}

// OpenAIConfig holds the settings for the OpenAI backed responder.
type OpenAIConfig struct {
	Token        string `json:"-"`
	Model        string `json:"model"`
	BaseURL      string `json:"baseURL,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

func (f *FileConfig) BasePath() string {
	return f.Path
}

// ConfigPathEnv overrides the directory searched for .chatroom.yaml.
const ConfigPathEnv = "CHATROOM_CONFIG_PATH"

// LoadConfig walks the config search path and applies defaults.
func LoadConfig() (*FileConfig, error) {
	v := viper.New()
	v.SetDefault("path", "~/.chatroom.db")
	v.SetDefault("responder", "canned")
	v.SetDefault("user", "me")
	v.SetDefault("log.level", "info")
	v.SetDefault("delay.min", time.Second)
	v.SetDefault("delay.max", 3*time.Second)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetConfigName(".chatroom") // .yaml is implicit
	v.SetEnvPrefix("CHATROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv(ConfigPathEnv); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}

	return &FileConfig{
		Path:      path,
		Responder: v.GetString("responder"),
		User:      v.GetString("user"),
		LogLevel:  v.GetString("log.level"),
		MinDelay:  v.GetDuration("delay.min"),
		MaxDelay:  v.GetDuration("delay.max"),
		OpenAI: OpenAIConfig{
			Token:        v.GetString("openai.token"),
			Model:        v.GetString("openai.model"),
			BaseURL:      v.GetString("openai.baseurl"),
			SystemPrompt: v.GetString("openai.systemprompt"),
		},
	}, nil
}
