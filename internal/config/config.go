// Package config handles application configuration using Viper.
// Viper merges YAML files, environment variables and defaults in priority order.
// Configuration is loaded into structs once at startup, never read as raw
// key-value pairs at request time.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: PETCOMPOSER_SERVER_PORT=9090 → server.port.
const EnvPrefix = "PETCOMPOSER"

// Config is the root configuration struct.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	CORS    CORSConfig    `mapstructure:"cors"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Brand   BrandConfig   `mapstructure:"brand"`
	Fonts   FontsConfig   `mapstructure:"fonts"`
	Render  RenderConfig  `mapstructure:"render"`
	Battle  BattleConfig  `mapstructure:"battle"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// MaxUploadMB bounds multipart photo uploads.
	MaxUploadMB int `mapstructure:"max_upload_mb"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	OutputDir    string `mapstructure:"output_dir"`
}

type AuthConfig struct {
	// APIKeys guards the compose endpoints. Empty leaves them open.
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LLMConfig struct {
	// ProviderOrder controls which LLM providers are used and in what order.
	// First provider is primary, rest are fallbacks. Example: ["anthropic", "openai"]
	ProviderOrder []string        `mapstructure:"provider_order"`
	Anthropic     AnthropicConfig `mapstructure:"anthropic"`
	OpenAI        OpenAIConfig    `mapstructure:"openai"`
	RatePerMinute int             `mapstructure:"rate_per_minute"`
	MaxTokens     int             `mapstructure:"max_tokens"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// BrandConfig is the fixed styling stamped on every artifact.
type BrandConfig struct {
	Name           string `mapstructure:"name"`
	URL            string `mapstructure:"url"`
	CTAHeadline    string `mapstructure:"cta_headline"`
	PrimaryColor   string `mapstructure:"primary_color"`
	SecondaryColor string `mapstructure:"secondary_color"`
	AccentColor    string `mapstructure:"accent_color"`
}

// FontsConfig holds TTF paths. Empty paths use the embedded Go fonts.
type FontsConfig struct {
	Regular string `mapstructure:"regular"`
	Bold    string `mapstructure:"bold"`
	Emoji   string `mapstructure:"emoji"`
}

type RenderConfig struct {
	JPEGQuality       int `mapstructure:"jpeg_quality"`
	MemeMaxWidth      int `mapstructure:"meme_max_width"`
	MaxPhotoDimension int `mapstructure:"max_photo_dimension"`
}

type BattleConfig struct {
	// Voices is the default lineup when a battle request names none.
	Voices []string `mapstructure:"voices"`
	// MaxVoices bounds one battle. Each voice is one paid LLM call.
	MaxVoices int `mapstructure:"max_voices"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
// configPath may be empty: then PETCOMPOSER_CONFIG_PATH is tried, then
// config.yaml in . and ./config. A missing default file is fine; a missing
// explicit one is an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		configPath = os.Getenv(EnvPrefix + "_CONFIG_PATH")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults applies when neither file nor env provides a value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 15)
	v.SetDefault("storage.database_path", "./storage/pet-composer.db")
	v.SetDefault("storage.output_dir", "./storage/output")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("llm.provider_order", []string{"anthropic", "openai"})
	v.SetDefault("llm.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.openai.model", "gpt-4o")
	v.SetDefault("llm.rate_per_minute", 30)
	v.SetDefault("llm.max_tokens", 200)
	v.SetDefault("brand.name", "PetTalk")
	v.SetDefault("brand.url", "pettalk.app")
	v.SetDefault("brand.cta_headline", "Make your pet talk")
	v.SetDefault("brand.primary_color", "#0a84ff")
	v.SetDefault("brand.secondary_color", "#5e2ced")
	v.SetDefault("brand.accent_color", "#ffcc00")
	v.SetDefault("fonts.regular", "")
	v.SetDefault("fonts.bold", "")
	v.SetDefault("fonts.emoji", "")
	v.SetDefault("render.jpeg_quality", 92)
	v.SetDefault("render.meme_max_width", 1080)
	v.SetDefault("render.max_photo_dimension", 2048)
	v.SetDefault("battle.voices", []string{"sassy", "dramatic", "wholesome"})
	v.SetDefault("battle.max_voices", 6)
	v.SetDefault("log.level", "info")
}

// Validate rejects values the renderers can't work with.
func (c *Config) Validate() error {
	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		return fmt.Errorf("render.jpeg_quality must be in 1..100, got %d", c.Render.JPEGQuality)
	}
	if c.Render.MemeMaxWidth < 64 {
		return fmt.Errorf("render.meme_max_width must be at least 64, got %d", c.Render.MemeMaxWidth)
	}
	if c.Render.MaxPhotoDimension < 64 {
		return fmt.Errorf("render.max_photo_dimension must be at least 64, got %d", c.Render.MaxPhotoDimension)
	}
	if c.Battle.MaxVoices < 1 {
		return fmt.Errorf("battle.max_voices must be at least 1, got %d", c.Battle.MaxVoices)
	}
	if len(c.Battle.Voices) > c.Battle.MaxVoices {
		return fmt.Errorf("battle.voices lists %d voices, more than battle.max_voices (%d)", len(c.Battle.Voices), c.Battle.MaxVoices)
	}
	for _, name := range c.LLM.ProviderOrder {
		if name != "anthropic" && name != "openai" {
			return fmt.Errorf("llm.provider_order: unknown provider %q", name)
		}
	}
	return nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
