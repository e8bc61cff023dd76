package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "voucher-coding", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)

	// Engine defaults are the calibrated constants.
	assert.InDelta(t, 0.60, cfg.Engine.KNNWeight, 1e-9)
	assert.InDelta(t, 0.15, cfg.Engine.JournalWeight, 1e-9)
	assert.InDelta(t, 0.25, cfg.Engine.BayesWeight, 1e-9)
	assert.InDelta(t, 1.2, cfg.Engine.BM25K1, 1e-9)
	assert.InDelta(t, 0.75, cfg.Engine.BM25B, 1e-9)
	assert.Equal(t, 800, cfg.Engine.CandidateWindow)
	assert.Equal(t, 40, cfg.Engine.VoterCount)
	assert.Equal(t, 220, cfg.Engine.JournalWindow)
	assert.Equal(t, 30, cfg.Engine.JournalMonths)
	assert.Equal(t, 6*time.Hour, cfg.Engine.ModelTTL)

	assert.Equal(t, 2*time.Second, cfg.Rerank.Timeout)
	assert.Empty(t, cfg.Rerank.Endpoint)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ISYSTEM_APP_PORT", "9090")
	t.Setenv("ISYSTEM_DATABASE_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "ensemble weights must sum to 1",
			mutate:  func(c *Config) { c.Engine.KNNWeight = 0.9 },
			wantErr: "ensemble weights",
		},
		{
			name:    "lexical blend must sum to 1",
			mutate:  func(c *Config) { c.Engine.TrigramWeight = 0.5 },
			wantErr: "lexical blend",
		},
		{
			name:    "candidate window positive",
			mutate:  func(c *Config) { c.Engine.CandidateWindow = 0 },
			wantErr: "windows must be positive",
		},
		{
			name:    "threshold bounds",
			mutate:  func(c *Config) { c.Rerank.Threshold = 1.5 },
			wantErr: "threshold",
		},
		{
			name: "rerank timeout required with endpoint",
			mutate: func(c *Config) {
				c.Rerank.Endpoint = "http://rerank.internal"
				c.Rerank.Timeout = 0
			},
			wantErr: "rerank timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "d", SSLMode: "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=d sslmode=disable", cfg.DSN())
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "localhost", Port: 6379}
	assert.Equal(t, "localhost:6379", cfg.Addr())
}
