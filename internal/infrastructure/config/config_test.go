package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "minimart-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 23456, cfg.World.Port)
	assert.Equal(t, 10*time.Second, cfg.World.DialTimeout)
	assert.Equal(t, 5, cfg.Outbound.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Outbound.CallTimeout)
	assert.Equal(t, uint32(5), cfg.Carrier.BreakerMaxFails)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name: "idle conns above open conns",
			mutate: func(cfg *Config) {
				cfg.Database.MaxOpenConns = 2
				cfg.Database.MaxIdleConns = 5
			},
			wantErr: "cannot exceed",
		},
		{
			name: "invalid world port",
			mutate: func(cfg *Config) {
				cfg.World.Port = 99999
			},
			wantErr: "world.port",
		},
		{
			name: "production requires db password",
			mutate: func(cfg *Config) {
				cfg.App.Env = "production"
				cfg.Database.SSLMode = "require"
			},
			wantErr: "database.password",
		},
		{
			name: "production forbids sslmode disable",
			mutate: func(cfg *Config) {
				cfg.App.Env = "production"
				cfg.Database.Password = "secret"
			},
			wantErr: "sslmode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "mart",
		Password: "p@ss/word",
		DBName:   "minimart",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5433")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestWorldConfig_Address(t *testing.T) {
	cfg := WorldConfig{Host: "sim.internal", Port: 23456}
	assert.Equal(t, "sim.internal:23456", cfg.Address())
}
