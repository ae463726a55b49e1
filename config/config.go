package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when CONFIG_FILE is not set. A missing file is not an error.
const DefaultConfigFile = "config/default.yaml"

type Config struct {
	// MapQuest reverse geocoding
	GeocodeKey    string `yaml:"key"`
	GeocodeAPIURL string `yaml:"geocode_api_url"`

	// Messenger / Graph API
	AppSecret         string `yaml:"app_secret"`
	VerifyToken       string `yaml:"validation_token"`
	PageAccessToken   string `yaml:"page_access_token"`
	WorkerAccessToken string `yaml:"worker_app_access_token"`
	GraphAPIURL       string `yaml:"graph_api_url"`
	GraphAPIVersion   string `yaml:"graph_api_version"`

	// Server configuration
	ServerURL string `yaml:"server_url"`
	Port      string `yaml:"port"`

	// Bot behaviour
	SearchCategory   string `yaml:"search_category"`
	MaxPlaces        int    `yaml:"max_places"`
	PrivacyPolicyURL string `yaml:"privacy_policy_url"`

	// Outbound calls
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	PipelineTimeout time.Duration `yaml:"pipeline_timeout"`

	// MongoDB configuration, empty URI disables message deduplication
	MongoURI     string        `yaml:"mongo_uri"`
	DatabaseName string        `yaml:"mongo_db_name"`
	DedupTTL     time.Duration `yaml:"dedup_ttl"`

	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
	Breaker BreakerConfig `yaml:"breaker"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// BreakerConfig applies to both provider breakers (MapQuest and Graph search).
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Defaults returns the configuration used before the file and environment are applied.
func Defaults() *Config {
	return &Config{
		GeocodeAPIURL:    "https://www.mapquestapi.com",
		GraphAPIURL:      "https://graph.facebook.com",
		GraphAPIVersion:  "v18.0",
		Port:             "5005",
		SearchCategory:   "Restaurant",
		MaxPlaces:        3,
		PrivacyPolicyURL: "https://datadatbot.tk/privacypolicy/placelookup_policy.html",
		HTTPTimeout:      5 * time.Second,
		PipelineTimeout:  20 * time.Second,
		DatabaseName:     "restaurantsaround",
		DedupTTL:         24 * time.Hour,
		Logger:           LoggerConfig{Level: "info", Format: "json"},
		Tracer:           TracerConfig{Exporter: "noop"},
		Breaker:          BreakerConfig{MaxFailures: 5, Timeout: 30 * time.Second},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file and the
// environment. Environment variables always win over the file.
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	path := getEnv("CONFIG_FILE", DefaultConfigFile)
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No config file found", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.GeocodeKey = getEnv("MAPQUEST_KEY", cfg.GeocodeKey)
	cfg.GeocodeAPIURL = getEnv("MAPQUEST_API_URL", cfg.GeocodeAPIURL)

	cfg.AppSecret = getEnv("MESSENGER_APP_SECRET", cfg.AppSecret)
	cfg.VerifyToken = getEnv("MESSENGER_VALIDATION_TOKEN", cfg.VerifyToken)
	cfg.PageAccessToken = getEnv("MESSENGER_PAGE_ACCESS_TOKEN", cfg.PageAccessToken)
	cfg.WorkerAccessToken = getEnv("MESSENGER_WORKER_APP_ACCESS_TOKEN", cfg.WorkerAccessToken)
	cfg.GraphAPIURL = getEnv("GRAPH_API_URL", cfg.GraphAPIURL)
	cfg.GraphAPIVersion = getEnv("GRAPH_API_VERSION", cfg.GraphAPIVersion)

	cfg.ServerURL = getEnv("SERVER_URL", cfg.ServerURL)
	cfg.Port = getEnv("PORT", cfg.Port)

	cfg.SearchCategory = getEnv("SEARCH_CATEGORY", cfg.SearchCategory)
	cfg.MaxPlaces = getEnvInt("MAX_PLACES", cfg.MaxPlaces)
	cfg.PrivacyPolicyURL = getEnv("PRIVACY_POLICY_URL", cfg.PrivacyPolicyURL)

	cfg.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.PipelineTimeout = getEnvDuration("PIPELINE_TIMEOUT", cfg.PipelineTimeout)

	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.DatabaseName = getEnv("MONGO_DB_NAME", cfg.DatabaseName)
	cfg.DedupTTL = getEnvDuration("DEDUP_TTL", cfg.DedupTTL)

	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Format = getEnv("LOG_FORMAT", cfg.Logger.Format)

	if v := os.Getenv("TRACER_ENABLED"); v != "" {
		cfg.Tracer.Enabled = v == "true"
	}
	cfg.Tracer.Exporter = getEnv("TRACER_EXPORTER", cfg.Tracer.Exporter)

	if v := getEnvInt("BREAKER_MAX_FAILURES", int(cfg.Breaker.MaxFailures)); v > 0 {
		cfg.Breaker.MaxFailures = uint32(v)
	}
	cfg.Breaker.Timeout = getEnvDuration("BREAKER_TIMEOUT", cfg.Breaker.Timeout)
}

// Validate reports every missing secret at once. The server refuses to start on error.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"MAPQUEST_KEY", c.GeocodeKey},
		{"MESSENGER_APP_SECRET", c.AppSecret},
		{"MESSENGER_VALIDATION_TOKEN", c.VerifyToken},
		{"MESSENGER_PAGE_ACCESS_TOKEN", c.PageAccessToken},
		{"MESSENGER_WORKER_APP_ACCESS_TOKEN", c.WorkerAccessToken},
		{"SERVER_URL", c.ServerURL},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing config values: %s", strings.Join(missing, ", "))
	}

	if c.MaxPlaces < 1 {
		return fmt.Errorf("max_places must be at least 1, got %d", c.MaxPlaces)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if c.PipelineTimeout <= 0 {
		return fmt.Errorf("pipeline_timeout must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Ignoring invalid integer config value", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Ignoring invalid duration config value", "key", key, "value", value)
	}
	return defaultValue
}
