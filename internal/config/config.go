package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the ReelForge server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AI        AIConfig
	VideoGen  VideoGenConfig
	Render    RenderConfig
	Instagram InstagramConfig
	TikTok    TikTokConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AIConfig struct {
	Provider string
	Gemini   GeminiConfig
}

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type VideoGenConfig struct {
	Model        string
	MaxClips     int
	PollInterval time.Duration
}

type RenderConfig struct {
	BaseURL string
	Timeout time.Duration
}

type InstagramConfig struct {
	BaseURL   string
	AppID     string
	AppSecret string
}

type TikTokConfig struct {
	BaseURL      string
	ClientKey    string
	ClientSecret string
}

type AuthConfig struct {
	// Bcrypt hash of the service API key. Empty disables auth (dev mode).
	APIKeyHash string
}

var validProviders = map[string]bool{
	"gemini": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("REELFORGE_PORT", 8080),
			Env:  envString("REELFORGE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: AIConfig{
			Provider: envString("AI_PROVIDER", "gemini"),
			Gemini: GeminiConfig{
				APIKey:  os.Getenv("GEMINI_API_KEY"),
				BaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
				Model:   envString("GEMINI_MODEL", "gemini-2.5-flash"),
				Timeout: envDurationSecs("AI_TIMEOUT_SECS", 60*time.Second),
			},
		},
		VideoGen: VideoGenConfig{
			Model:        envString("VIDEOGEN_MODEL", "veo-2"),
			MaxClips:     envInt("VIDEOGEN_MAX_CLIPS", 4),
			PollInterval: envDurationSecs("VIDEOGEN_POLL_INTERVAL_SECS", 5*time.Second),
		},
		Render: RenderConfig{
			BaseURL: os.Getenv("RENDER_SERVER_URL"),
			Timeout: envDuration("RENDER_TIMEOUT", 10*time.Minute),
		},
		Instagram: InstagramConfig{
			BaseURL:   envString("INSTAGRAM_GRAPH_URL", "https://graph.facebook.com/v21.0"),
			AppID:     os.Getenv("INSTAGRAM_APP_ID"),
			AppSecret: os.Getenv("INSTAGRAM_APP_SECRET"),
		},
		TikTok: TikTokConfig{
			BaseURL:      envString("TIKTOK_API_URL", "https://open.tiktokapis.com/v2"),
			ClientKey:    os.Getenv("TIKTOK_CLIENT_KEY"),
			ClientSecret: os.Getenv("TIKTOK_CLIENT_SECRET"),
		},
		Auth: AuthConfig{
			APIKeyHash: os.Getenv("REELFORGE_API_KEY_HASH"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Render.BaseURL == "" {
		return fmt.Errorf("RENDER_SERVER_URL is required")
	}
	if !strings.HasPrefix(c.Render.BaseURL, "http://") && !strings.HasPrefix(c.Render.BaseURL, "https://") {
		return fmt.Errorf("RENDER_SERVER_URL must start with http:// or https://, got %q", c.Render.BaseURL)
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of gemini, mock; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "gemini" && c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
	}

	if c.VideoGen.MaxClips < 1 {
		return fmt.Errorf("VIDEOGEN_MAX_CLIPS must be at least 1")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
