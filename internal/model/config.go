package model

import "time"

// Config is the complete dashboard configuration
type Config struct {
	API          APIConfig         `yaml:"api" mapstructure:"api"`
	Broadcast    BroadcastConfig   `yaml:"broadcast" mapstructure:"broadcast"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	UI           UIConfig          `yaml:"ui" mapstructure:"ui"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
}

// APIConfig points at the ClarifAI backend
type APIConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
	// Mode selects the data source: "auto" (API, demo on failure), "api" or "demo"
	Mode        string `yaml:"mode" mapstructure:"mode"`
	ClaimsLimit int    `yaml:"claims_limit" mapstructure:"claims_limit"`
	GraphLimit  int    `yaml:"graph_limit" mapstructure:"graph_limit"`
}

// BroadcastConfig points at the broadcast studio that renders briefing videos
type BroadcastConfig struct {
	URL          string        `yaml:"url" mapstructure:"url"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	JobTimeout   time.Duration `yaml:"job_timeout" mapstructure:"job_timeout"`
	Voice        string        `yaml:"voice" mapstructure:"voice"`
	Tone         string        `yaml:"tone" mapstructure:"tone"`
	Duration     string        `yaml:"duration" mapstructure:"duration"`
}

// ServerConfig controls the dashboard HTTP server
type ServerConfig struct {
	Addr             string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout      time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	FeedPollInterval time.Duration `yaml:"feed_poll_interval" mapstructure:"feed_poll_interval"`
	SessionTTL       time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
	Robots           string        `yaml:"robots" mapstructure:"robots"` // robots.txt body served at /robots.txt
}

// HTTPConfig controls outbound HTTP clients
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig controls the API response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig bounds outbound requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig bounds panel loading
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LLMConfig configures the anchor script writer
type LLMConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"` // "openai" or "" (template)
	Model         string `yaml:"model" mapstructure:"model"`
	APIKey        string `yaml:"-" mapstructure:"api_key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	Timeout       int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	StrictSources bool   `yaml:"strict_sources" mapstructure:"strict_sources"`
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// UIConfig holds presentation defaults for new sessions
type UIConfig struct {
	Theme            string `yaml:"theme" mapstructure:"theme"` // light, dark, system
	SidebarCollapsed bool   `yaml:"sidebar_collapsed" mapstructure:"sidebar_collapsed"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"` // console or json
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// Data source modes
const (
	ModeAuto = "auto"
	ModeAPI  = "api"
	ModeDemo = "demo"
)

// Default endpoints
const (
	DefaultAPIURL       = "http://localhost:8000"
	DefaultBroadcastURL = "http://localhost:5500"
)

// DefaultRobots disallows crawling the JSON and websocket surfaces
const DefaultRobots = "User-agent: *\nDisallow: /api/\nDisallow: /ws/\n"

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:         DefaultAPIURL,
			Mode:        ModeAuto,
			ClaimsLimit: 20,
			GraphLimit:  50,
		},
		Broadcast: BroadcastConfig{
			URL:          DefaultBroadcastURL,
			PollInterval: 2 * time.Second,
			JobTimeout:   10 * time.Minute,
			Voice:        DefaultVoice,
			Tone:         "professional",
			Duration:     DurationShort,
		},
		Server: ServerConfig{
			Addr:             ":3000",
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     30 * time.Second,
			ShutdownTimeout:  10 * time.Second,
			FeedPollInterval: 15 * time.Second,
			SessionTTL:       24 * time.Hour,
			Robots:           DefaultRobots,
		},
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "ClarifAI-Dashboard/0.3",
			MaxBodyBytes: 4 << 20,
			MaxRetries:   3,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Second,
			DiskDir:   "",
			DiskTTL:   24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 10,
			BurstSize:         20,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		LLM: LLMConfig{
			Timeout:       30,
			StrictSources: true,
			MaxTokens:     1000,
		},
		UI: UIConfig{
			Theme: "system",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}
