package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	HubSpot   HubSpotConfig   `yaml:"hubspot"`
	Google    GoogleConfig    `yaml:"google"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Sync      SyncConfig      `yaml:"sync"`
	Redis     RedisConfig     `yaml:"redis"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Overrides OverridesConfig `yaml:"overrides"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// HubSpotConfig holds HubSpot private-app API configuration
type HubSpotConfig struct {
	AccessToken    string `yaml:"access_token"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	DealLimit      int    `yaml:"deal_limit"`
}

// Timeout returns the configured timeout as a duration
func (c HubSpotConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Enabled reports whether the HubSpot connector is configured
func (c HubSpotConfig) Enabled() bool {
	return c.AccessToken != ""
}

// GoogleConfig holds Google OAuth and workspace API configuration
type GoogleConfig struct {
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	RefreshToken   string `yaml:"refresh_token"`
	RedirectURL    string `yaml:"redirect_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c GoogleConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Enabled reports whether the Google connector is configured
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// OpenAIConfig holds OpenAI API configuration for outreach generation
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Enabled bool   `yaml:"enabled"`
}

// SyncConfig holds sync orchestration parameters
type SyncConfig struct {
	EmailLimit           int `yaml:"email_limit"`
	CalendarLookbackDays int `yaml:"calendar_lookback_days"`
	FetchTimeoutSeconds  int `yaml:"fetch_timeout_seconds"`
}

// FetchTimeout returns the per-source fetch timeout as a duration
func (c SyncConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// RedisConfig holds the optional snapshot mirror configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

// ArchiveConfig holds the optional S3 sync-snapshot archive configuration
type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	S3Bucket   string `yaml:"s3_bucket"`
	AWSRegion  string `yaml:"aws_region"`
	AWSProfile string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c ArchiveConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "" // Running on ECS or Lambda, use IAM role
	}
	return c.AWSProfile
}

// OverridesConfig holds the placement-export enrichment file location
type OverridesConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.HubSpot.BaseURL == "" {
		cfg.HubSpot.BaseURL = "https://api.hubapi.com"
	}
	if cfg.HubSpot.TimeoutSeconds == 0 {
		cfg.HubSpot.TimeoutSeconds = 30
	}
	if cfg.HubSpot.DealLimit == 0 {
		cfg.HubSpot.DealLimit = 100
	}
	if cfg.Google.TimeoutSeconds == 0 {
		cfg.Google.TimeoutSeconds = 30
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o"
	}
	if cfg.Sync.EmailLimit == 0 {
		cfg.Sync.EmailLimit = 50
	}
	if cfg.Sync.CalendarLookbackDays == 0 {
		cfg.Sync.CalendarLookbackDays = 90
	}
	if cfg.Sync.FetchTimeoutSeconds == 0 {
		cfg.Sync.FetchTimeoutSeconds = 30
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Archive.AWSRegion == "" {
		cfg.Archive.AWSRegion = "us-west-2"
	}
	if cfg.Overrides.CSVPath == "" {
		cfg.Overrides.CSVPath = "data/renewals.csv"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if token := os.Getenv("HUBSPOT_ACCESS_TOKEN"); token != "" {
		cfg.HubSpot.AccessToken = token
	}
	if baseURL := os.Getenv("HUBSPOT_BASE_URL"); baseURL != "" {
		cfg.HubSpot.BaseURL = baseURL
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Google.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REFRESH_TOKEN"); v != "" {
		cfg.Google.RefreshToken = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
		cfg.OpenAI.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		cfg.Archive.S3Bucket = v
		cfg.Archive.Enabled = true
	}
	if v := os.Getenv("ARCHIVE_S3_REGION"); v != "" {
		cfg.Archive.AWSRegion = v
	}
	if v := os.Getenv("OVERRIDES_CSV_PATH"); v != "" {
		cfg.Overrides.CSVPath = v
	}

	return cfg, nil
}
