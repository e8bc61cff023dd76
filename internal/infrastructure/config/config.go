package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Auth     AuthConfig
	Engine   EngineConfig
	Rerank   RerankConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds the connection settings for the historical store.
// The store is read-only to this service.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for the model cache.
// Redis is optional; the cache falls back to in-memory when unavailable.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// AuthConfig holds bearer-token authentication settings for the suggest
// endpoint. When Secret is empty the endpoint is open (development mode).
type AuthConfig struct {
	Secret string
	Issuer string
}

// EngineConfig holds the tunable constants of the suggestion engine. The
// defaults are the empirically calibrated values; see coding.DefaultParams.
type EngineConfig struct {
	KNNWeight     float64
	JournalWeight float64
	BayesWeight   float64

	BM25K1        float64
	BM25B         float64
	LexicalWeight float64
	TrigramWeight float64

	CandidateWindow int
	VoterCount      int
	JournalWindow   int
	JournalMonths   int

	ModelTTL   time.Duration
	WarmModels bool
}

// RerankConfig holds the optional remote reranking escape hatch. An empty
// endpoint disables reranking entirely.
type RerankConfig struct {
	Endpoint  string
	Token     string
	Threshold float64
	Timeout   time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with ISYSTEM_ prefix (e.g. ISYSTEM_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ISYSTEM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Auth: AuthConfig{
			Secret: v.GetString("auth.secret"),
			Issuer: v.GetString("auth.issuer"),
		},
		Engine: EngineConfig{
			KNNWeight:       v.GetFloat64("engine.knn_weight"),
			JournalWeight:   v.GetFloat64("engine.journal_weight"),
			BayesWeight:     v.GetFloat64("engine.bayes_weight"),
			BM25K1:          v.GetFloat64("engine.bm25_k1"),
			BM25B:           v.GetFloat64("engine.bm25_b"),
			LexicalWeight:   v.GetFloat64("engine.lexical_weight"),
			TrigramWeight:   v.GetFloat64("engine.trigram_weight"),
			CandidateWindow: v.GetInt("engine.candidate_window"),
			VoterCount:      v.GetInt("engine.voter_count"),
			JournalWindow:   v.GetInt("engine.journal_window"),
			JournalMonths:   v.GetInt("engine.journal_months"),
			ModelTTL:        v.GetDuration("engine.model_ttl"),
			WarmModels:      v.GetBool("engine.warm_models"),
		},
		Rerank: RerankConfig{
			Endpoint:  v.GetString("rerank.endpoint"),
			Token:     v.GetString("rerank.token"),
			Threshold: v.GetFloat64("rerank.threshold"),
			Timeout:   v.GetDuration("rerank.timeout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "voucher-coding")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "isystem")
	v.SetDefault("database.dbname", "isystem")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.conn_max_idle_time", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_body_size", int64(1<<20))

	v.SetDefault("engine.knn_weight", 0.60)
	v.SetDefault("engine.journal_weight", 0.15)
	v.SetDefault("engine.bayes_weight", 0.25)
	v.SetDefault("engine.bm25_k1", 1.2)
	v.SetDefault("engine.bm25_b", 0.75)
	v.SetDefault("engine.lexical_weight", 0.7)
	v.SetDefault("engine.trigram_weight", 0.3)
	v.SetDefault("engine.candidate_window", 800)
	v.SetDefault("engine.voter_count", 40)
	v.SetDefault("engine.journal_window", 220)
	v.SetDefault("engine.journal_months", 30)
	v.SetDefault("engine.model_ttl", 6*time.Hour)
	v.SetDefault("engine.warm_models", false)

	v.SetDefault("rerank.threshold", 0.35)
	v.SetDefault("rerank.timeout", 2*time.Second)
}

// Validate checks internal consistency of the loaded configuration.
func (c *Config) Validate() error {
	weightSum := c.Engine.KNNWeight + c.Engine.JournalWeight + c.Engine.BayesWeight
	if math.Abs(weightSum-1) > 1e-6 {
		return fmt.Errorf("engine ensemble weights must sum to 1, got %.4f", weightSum)
	}
	blendSum := c.Engine.LexicalWeight + c.Engine.TrigramWeight
	if math.Abs(blendSum-1) > 1e-6 {
		return fmt.Errorf("engine lexical blend weights must sum to 1, got %.4f", blendSum)
	}
	if c.Engine.CandidateWindow <= 0 || c.Engine.VoterCount <= 0 || c.Engine.JournalWindow <= 0 {
		return fmt.Errorf("engine windows must be positive")
	}
	if c.Rerank.Threshold < 0 || c.Rerank.Threshold > 1 {
		return fmt.Errorf("rerank threshold must be in [0,1], got %.4f", c.Rerank.Threshold)
	}
	if c.Rerank.Endpoint != "" && c.Rerank.Timeout <= 0 {
		return fmt.Errorf("rerank timeout must be positive when an endpoint is configured")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns the host:port address for Redis.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
