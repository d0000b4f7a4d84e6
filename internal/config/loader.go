package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Scan     ScanConfig     `mapstructure:"scan"`
	AI       AIConfig       `mapstructure:"ai"`
	Report   ReportConfig   `mapstructure:"report"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Features FeaturesConfig `mapstructure:"features"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Version      string        `mapstructure:"version"`
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type LoggerConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

type AuthConfig struct {
	AdminAPIKey    string        `mapstructure:"admin_api_key"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
	SocialLogin    bool          `mapstructure:"social_login"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScanConfig drives the simulated scan lifecycle.
type ScanConfig struct {
	Store             string        `mapstructure:"store"` // memory | database
	StartDelay        time.Duration `mapstructure:"start_delay"`
	ProgressDelay     time.Duration `mapstructure:"progress_delay"`
	FinishDelay       time.Duration `mapstructure:"finish_delay"`
	MaxConcurrent     int           `mapstructure:"max_concurrent"`
	MaxLifetime       time.Duration `mapstructure:"max_lifetime"`
	EnforceOwnership  bool          `mapstructure:"enforce_ownership"`
	StreamInterval    time.Duration `mapstructure:"stream_interval"`
	RateLimitCapacity int           `mapstructure:"rate_limit_capacity"`
	RateLimitRefill   float64       `mapstructure:"rate_limit_refill_per_sec"`
}

type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ReportConfig struct {
	Sink          string     `mapstructure:"sink"` // "" | local | s3 | sftp
	EncryptionKey string     `mapstructure:"encryption_key"`
	LocalDir      string     `mapstructure:"local_dir"`
	S3            S3Config   `mapstructure:"s3"`
	SFTP          SFTPConfig `mapstructure:"sftp"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
	Prefix    string `mapstructure:"prefix"`
}

type SFTPConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	HostKey        string        `mapstructure:"host_key"`
	Directory      string        `mapstructure:"directory"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// WebhookConfig controls the GitHub webhook. An empty secret disables it.
type WebhookConfig struct {
	Secret   string   `mapstructure:"secret"`
	Branches []string `mapstructure:"branches"`
	Checks   []string `mapstructure:"checks"`
}

type FeaturesConfig struct {
	RequestIDHeader      string `mapstructure:"request_id_header"`
	EnableRequestLogging bool   `mapstructure:"enable_request_logging"`
	EnableMetrics        bool   `mapstructure:"enable_metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.version", "1.0.0")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "cyberio")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.output_paths", []string{"stdout"})
	v.SetDefault("logger.error_output_paths", []string{"stderr"})

	v.SetDefault("auth.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.social_login", false)

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("scan.store", "memory")
	v.SetDefault("scan.start_delay", 2*time.Second)
	v.SetDefault("scan.progress_delay", 3*time.Second)
	v.SetDefault("scan.finish_delay", 2*time.Second)
	v.SetDefault("scan.max_concurrent", 64)
	v.SetDefault("scan.max_lifetime", 2*time.Minute)
	v.SetDefault("scan.stream_interval", 500*time.Millisecond)
	v.SetDefault("scan.rate_limit_capacity", 20)
	v.SetDefault("scan.rate_limit_refill_per_sec", 0.5)

	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 30*time.Second)

	v.SetDefault("report.local_dir", "./reports")
	v.SetDefault("report.sftp.port", 22)
	v.SetDefault("report.sftp.directory", "/upload")
	v.SetDefault("report.sftp.timeout", 30*time.Second)

	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.branches", []string{"main", "master"})
	v.SetDefault("webhook.checks", []string{"semgrep", "trivy"})

	v.SetDefault("features.request_id_header", "X-Request-ID")
	v.SetDefault("features.enable_request_logging", true)
	v.SetDefault("features.enable_metrics", true)
}

func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("CYBERIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Scan.Store {
	case "memory", "database":
	default:
		errs = append(errs, fmt.Errorf("scan.store must be memory or database, got %q", c.Scan.Store))
	}
	if c.Scan.StartDelay <= 0 || c.Scan.ProgressDelay <= 0 || c.Scan.FinishDelay <= 0 {
		errs = append(errs, errors.New("scan delays must be positive"))
	}
	if c.Scan.MaxConcurrent < 1 {
		errs = append(errs, errors.New("scan.max_concurrent must be at least 1"))
	}
	if c.Scan.MaxLifetime <= c.Scan.StartDelay+c.Scan.ProgressDelay+c.Scan.FinishDelay {
		errs = append(errs, errors.New("scan.max_lifetime must exceed the full scan schedule"))
	}

	switch c.Report.Sink {
	case "", "local", "s3", "sftp":
	default:
		errs = append(errs, fmt.Errorf("report.sink must be local, s3 or sftp, got %q", c.Report.Sink))
	}
	if c.Report.Sink == "s3" && c.Report.S3.Bucket == "" {
		errs = append(errs, errors.New("report.s3.bucket is required for the s3 sink"))
	}
	if c.Report.Sink == "sftp" && c.Report.SFTP.Host == "" {
		errs = append(errs, errors.New("report.sftp.host is required for the sftp sink"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
