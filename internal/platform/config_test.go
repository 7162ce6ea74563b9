package platform

import (
	"log/slog"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *AppConfig {
	return &AppConfig{
		Flags:          defaultFlagsCfg(),
		NatsCfg:        defaultNatsCfg(),
		HTTPSrvCfg:     defaultHTTPServerCfg(),
		LogLevel:       slog.LevelInfo,
		SessionIdleTTL: 30 * time.Minute,
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.applyEnv(map[string]string{
		"TERMFOLIO_PORT":        "9090",
		"TERMFOLIO_SESSION_KEY": "k",
		"TERMFOLIO_CONTENT_DIR": "/srv/content",
		"TERMFOLIO_STORE_DIR":   "/var/lib/termfolio",
		"TERMFOLIO_IDLE_TTL":    "5m",
		"TERMFOLIO_HEADLESS":    "true",
		"TERMFOLIO_LOG_LEVEL":   "debug",
		"TERMFOLIO_NATS_LISTEN": "1",
		"OTHER_PORT":            "not a number",
	})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPSrvCfg.Port)
	assert.Equal(t, "k", cfg.HTTPSrvCfg.SessionKey)
	assert.Equal(t, "/srv/content", cfg.ContentDir)
	assert.Equal(t, "/var/lib/termfolio", cfg.NatsCfg.StoreDir)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTTL)
	assert.True(t, cfg.Flags.Headless)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.NatsCfg.InProcess)
}

func TestApplyEnv_Defaults(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.applyEnv(map[string]string{"TERMFOLIO_PORT": "  "}))

	assert.Equal(t, 8080, cfg.HTTPSrvCfg.Port)
	assert.False(t, cfg.HTTPSrvCfg.EnableTLS)
	assert.True(t, cfg.NatsCfg.InProcess)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
}

func TestApplyEnv_Errors(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.applyEnv(map[string]string{
		"TERMFOLIO_PORT":      "eighty",
		"TERMFOLIO_IDLE_TTL":  "soon",
		"TERMFOLIO_LOG_LEVEL": "loud",
		"TERMFOLIO_TLS":       "true",
		"TERMFOLIO_CERT":      "",
	})
	require.Error(t, err)
	var agg env.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 3)
	for _, field := range []string{`"Port"`, `"IdleTTL"`, `"LogLevel"`} {
		assert.ErrorContains(t, err, field)
	}
	assert.Equal(t, 8080, cfg.HTTPSrvCfg.Port, "bad values keep the default")

	cfg = defaultConfig()
	cfg.HTTPSrvCfg.CertFile = ""
	err = cfg.applyEnv(map[string]string{"TERMFOLIO_TLS": "true"})
	assert.ErrorContains(t, err, "requires TERMFOLIO_CERT")
}
