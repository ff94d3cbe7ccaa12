package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Store         StoreConfig
	Oracle        OracleConfig
	Chat          ChatConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig points the pipeline at the relational database holding the
// fixed schema. Driver is "sqlite", "duckdb" or "postgres".
type StoreConfig struct {
	Driver          string
	DSN             string
	QueryTimeout    time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type OracleConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type ChatConfig struct {
	HistoryWindow int
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

// Load builds the configuration in three layers: profile defaults, an
// optional YAML file named by ASKDB_CONFIG_FILE, then ASKDB_* environment
// overrides.
func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("ASKDB_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid ASKDB_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if path, ok := lookup("ASKDB_CONFIG_FILE"); ok && strings.TrimSpace(path) != "" {
		if err := applyFile(strings.TrimSpace(path), &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyString(lookup, "ASKDB_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKDB_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKDB_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKDB_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKDB_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKDB_STORE_DRIVER", &cfg.Store.Driver); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKDB_STORE_DSN", &cfg.Store.DSN); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKDB_STORE_QUERY_TIMEOUT", &cfg.Store.QueryTimeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ASKDB_STORE_MAX_OPEN_CONNS", &cfg.Store.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ASKDB_STORE_MAX_IDLE_CONNS", &cfg.Store.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKDB_STORE_CONN_MAX_IDLE_TIME", &cfg.Store.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKDB_STORE_CONN_MAX_LIFETIME", &cfg.Store.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKDB_ORACLE_BASE_URL", &cfg.Oracle.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKDB_ORACLE_API_KEY", &cfg.Oracle.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKDB_ORACLE_MODEL", &cfg.Oracle.Model); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "ASKDB_ORACLE_TEMPERATURE", &cfg.Oracle.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKDB_ORACLE_TIMEOUT", &cfg.Oracle.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ASKDB_CHAT_HISTORY_WINDOW", &cfg.Chat.HistoryWindow); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ASKDB_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "ASKDB_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Chat.HistoryWindow <= 0 {
		return Config{}, fmt.Errorf("chat history window must be positive")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "askdb-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{
			Driver:          "sqlite",
			DSN:             "northwind.db",
			QueryTimeout:    15 * time.Second,
			MaxOpenConns:    4,
			MaxIdleConns:    4,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Oracle: OracleConfig{
			BaseURL:     "https://api.openai.com",
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
			Timeout:     30 * time.Second,
		},
		Chat: ChatConfig{
			HistoryWindow: 5,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
	}

	return cfg
}

// fileConfig is the YAML shape of the config file. Environment references
// like ${ASKDB_ORACLE_KEY} are expanded before parsing; durations stay
// env-only.
type fileConfig struct {
	Service struct {
		Name string `yaml:"name"`
	} `yaml:"service"`
	HTTP struct {
		Address string `yaml:"address"`
	} `yaml:"http"`
	Store struct {
		Driver       string `yaml:"driver"`
		DSN          string `yaml:"dsn"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"store"`
	Oracle struct {
		BaseURL     string   `yaml:"base_url"`
		APIKey      string   `yaml:"api_key"`
		Model       string   `yaml:"model"`
		Temperature *float64 `yaml:"temperature"`
	} `yaml:"oracle"`
	Chat struct {
		HistoryWindow int `yaml:"history_window"`
	} `yaml:"chat"`
	Observability struct {
		LogLevel string `yaml:"log_level"`
		LogJSON  *bool  `yaml:"log_json"`
	} `yaml:"observability"`
}

func applyFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var file fileConfig
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if file.Service.Name != "" {
		cfg.Service.Name = file.Service.Name
	}
	if file.HTTP.Address != "" {
		cfg.HTTP.Address = file.HTTP.Address
	}
	if file.Store.Driver != "" {
		cfg.Store.Driver = file.Store.Driver
	}
	if file.Store.DSN != "" {
		cfg.Store.DSN = file.Store.DSN
	}
	if file.Store.MaxOpenConns > 0 {
		cfg.Store.MaxOpenConns = file.Store.MaxOpenConns
	}
	if file.Store.MaxIdleConns > 0 {
		cfg.Store.MaxIdleConns = file.Store.MaxIdleConns
	}
	if file.Oracle.BaseURL != "" {
		cfg.Oracle.BaseURL = file.Oracle.BaseURL
	}
	if file.Oracle.APIKey != "" {
		cfg.Oracle.APIKey = file.Oracle.APIKey
	}
	if file.Oracle.Model != "" {
		cfg.Oracle.Model = file.Oracle.Model
	}
	if file.Oracle.Temperature != nil {
		cfg.Oracle.Temperature = *file.Oracle.Temperature
	}
	if file.Chat.HistoryWindow > 0 {
		cfg.Chat.HistoryWindow = file.Chat.HistoryWindow
	}
	if file.Observability.LogLevel != "" {
		if err := parseLogLevel(file.Observability.LogLevel, &cfg.Observability.LogLevel); err != nil {
			return fmt.Errorf("config file log_level: %w", err)
		}
	}
	if file.Observability.LogJSON != nil {
		cfg.Observability.LogJSON = *file.Observability.LogJSON
	}
	return nil
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	if err := parseLogLevel(raw, dst); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func parseLogLevel(raw string, dst *slog.Level) error {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", raw)
	}
	return nil
}
