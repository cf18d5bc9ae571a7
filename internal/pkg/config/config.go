package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Inference InferenceConfig `mapstructure:"inference"`
	Session   SessionConfig   `mapstructure:"session"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	News      NewsConfig      `mapstructure:"news"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	BodyLimitMB  int    `mapstructure:"body_limit_mb"`
	CORSOrigins  string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig configures the saved-field store. Leaving Host empty runs
// without persistence.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) Enabled() bool { return d.Host != "" }

func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	OTLPAddr    string  `mapstructure:"otlp_addr"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Enabled     bool    `mapstructure:"enabled"`
}

// AnalysisConfig selects the vegetation index backend. With Endpoint set the
// session orchestrator posts there; otherwise it uses the in-process backend,
// which forwards to UpstreamURL when set and simulates a value when not.
type AnalysisConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	UpstreamURL  string        `mapstructure:"upstream_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SimulateWait time.Duration `mapstructure:"simulate_wait"`
}

type GeocoderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type InferenceConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`
	MaxSessions     int           `mapstructure:"max_sessions"`
}

// TemporalConfig configures field surveys. An empty HostPort disables them.
type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// NewsConfig configures the news providers. NewsData.io is skipped without a
// key; the Guardian and the curated list are always consulted.
type NewsConfig struct {
	NewsDataKey string        `mapstructure:"newsdata_key"`
	NewsDataURL string        `mapstructure:"newsdata_url"`
	GuardianURL string        `mapstructure:"guardian_url"`
	GuardianKey string        `mapstructure:"guardian_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// NewsDataEnabled reports whether a usable NewsData.io key is set.
func (n NewsConfig) NewsDataEnabled() bool {
	return n.NewsDataKey != "" && n.NewsDataKey != "demo"
}

// Load reads configuration from defaults, an optional config.yaml, an optional
// .env file and environment variables, in increasing precedence.
func Load(service string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 70)
	v.SetDefault("server.body_limit_mb", 10)
	v.SetDefault("server.cors_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "agrishield")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "agrishield")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("nats.url", "")
	v.SetDefault("valkey.addr", "")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("analysis.endpoint", "")
	v.SetDefault("analysis.upstream_url", "")
	v.SetDefault("analysis.timeout", "60s")
	v.SetDefault("analysis.simulate_wait", "2s")
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "agrishield/1.0 (+https://github.com/kunaldubey10/Agrishield)")
	v.SetDefault("geocoder.timeout", "10s")
	v.SetDefault("inference.url", "http://localhost:5000")
	v.SetDefault("inference.timeout", "30s")
	v.SetDefault("session.idle_ttl", "30m")
	v.SetDefault("session.janitor_interval", "1m")
	v.SetDefault("session.max_sessions", 10000)
	v.SetDefault("temporal.host_port", "")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "field-survey-queue")
	v.SetDefault("news.newsdata_key", "")
	v.SetDefault("news.newsdata_url", "https://newsdata.io")
	v.SetDefault("news.guardian_url", "https://content.guardianapis.com")
	v.SetDefault("news.guardian_key", "test")
	v.SetDefault("news.timeout", "8s")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: AGRISHIELD_DATABASE_HOST → database.host
	v.SetEnvPrefix("AGRISHIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The key is commonly exported under the provider's own name.
	_ = v.BindEnv("news.newsdata_key", "AGRISHIELD_NEWS_NEWSDATA_KEY", "NEWSDATA_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.BodyLimitMB <= 0 {
		errs = append(errs, "server.body_limit_mb must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if c.Database.Enabled() {
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, "telemetry.sample_ratio must be between 0 and 1")
	}
	for _, u := range []struct{ key, raw string }{
		{"analysis.endpoint", c.Analysis.Endpoint},
		{"analysis.upstream_url", c.Analysis.UpstreamURL},
		{"geocoder.base_url", c.Geocoder.BaseURL},
		{"inference.url", c.Inference.URL},
		{"news.newsdata_url", c.News.NewsDataURL},
		{"news.guardian_url", c.News.GuardianURL},
	} {
		if u.raw == "" {
			continue
		}
		if parsed, err := url.Parse(u.raw); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, fmt.Sprintf("%s must be an absolute URL, got %q", u.key, u.raw))
		}
	}
	if c.Analysis.Timeout <= 0 {
		errs = append(errs, "analysis.timeout must be positive")
	}
	if c.Analysis.SimulateWait < 0 {
		errs = append(errs, "analysis.simulate_wait must not be negative")
	}
	if c.News.Timeout <= 0 {
		errs = append(errs, "news.timeout must be positive")
	}
	if c.Session.IdleTTL <= 0 {
		errs = append(errs, "session.idle_ttl must be positive")
	}
	if c.Session.JanitorInterval <= 0 {
		errs = append(errs, "session.janitor_interval must be positive")
	}
	if c.Temporal.HostPort != "" && c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required when temporal.host_port is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
