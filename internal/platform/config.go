package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// FlagsConfig holds all boolean or string flags for the app.
type FlagsConfig struct {
	// Headless disables the HTTP server when true.
	Headless bool
}

// AppConfig contains the configuration for the app.
type AppConfig struct {
	Flags      *FlagsConfig
	NatsCfg    *EmbeddedServerConfig
	HTTPSrvCfg *HTTPServerConfig

	LogLevel slog.Level
	// ContentDir replaces the embedded portfolio content when set.
	ContentDir string
	// SessionIdleTTL is how long a session engine lives without commands.
	SessionIdleTTL time.Duration
}

// LoadAppConfig builds the config from defaults, then a .env file in the
// working directory (if any), then TERMFOLIO_* environment variables.
func LoadAppConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &AppConfig{
		Flags:          defaultFlagsCfg(),
		NatsCfg:        defaultNatsCfg(),
		HTTPSrvCfg:     defaultHTTPServerCfg(),
		LogLevel:       slog.LevelInfo,
		SessionIdleTTL: 30 * time.Minute,
	}
	return cfg, cfg.applyEnv(env.ToMap(os.Environ()))
}

const envPrefix = "TERMFOLIO_"

// envConfig mirrors the TERMFOLIO_* variables. Unset or blank variables
// leave the prefilled value alone.
type envConfig struct {
	Port       int           `env:"PORT"`
	TLS        bool          `env:"TLS"`
	Cert       string        `env:"CERT"`
	Key        string        `env:"KEY"`
	SessionKey string        `env:"SESSION_KEY"`
	ContentDir string        `env:"CONTENT_DIR"`
	StoreDir   string        `env:"STORE_DIR"`
	IdleTTL    time.Duration `env:"IDLE_TTL"`
	Headless   bool          `env:"HEADLESS"`
	LogLevel   slog.Level    `env:"LOG_LEVEL"`
	NatsListen bool          `env:"NATS_LISTEN"`
}

func (c *AppConfig) applyEnv(environ map[string]string) error {
	vars := make(map[string]string, len(environ))
	for k, v := range environ {
		if strings.HasPrefix(k, envPrefix) {
			vars[k] = strings.TrimSpace(v)
		}
	}

	ec := envConfig{
		Port:       c.HTTPSrvCfg.Port,
		TLS:        c.HTTPSrvCfg.EnableTLS,
		Cert:       c.HTTPSrvCfg.CertFile,
		Key:        c.HTTPSrvCfg.KeyFile,
		SessionKey: c.HTTPSrvCfg.SessionKey,
		ContentDir: c.ContentDir,
		StoreDir:   c.NatsCfg.StoreDir,
		IdleTTL:    c.SessionIdleTTL,
		Headless:   c.Flags.Headless,
		LogLevel:   c.LogLevel,
	}
	var errs []error
	if err := env.ParseWithOptions(&ec, env.Options{
		Environment: vars,
		Prefix:      envPrefix,
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(slog.Level(0)): func(v string) (any, error) {
				var l slog.Level
				err := l.UnmarshalText([]byte(v))
				return l, err
			},
		},
	}); err != nil {
		errs = append(errs, err)
	}

	c.HTTPSrvCfg.Port = ec.Port
	c.HTTPSrvCfg.EnableTLS = ec.TLS
	c.HTTPSrvCfg.CertFile = ec.Cert
	c.HTTPSrvCfg.KeyFile = ec.Key
	c.HTTPSrvCfg.SessionKey = ec.SessionKey
	c.ContentDir = ec.ContentDir
	c.NatsCfg.StoreDir = ec.StoreDir
	c.SessionIdleTTL = ec.IdleTTL
	c.Flags.Headless = ec.Headless
	c.LogLevel = ec.LogLevel
	if ec.NatsListen {
		c.NatsCfg.InProcess = false
	}

	if c.HTTPSrvCfg.EnableTLS && (c.HTTPSrvCfg.CertFile == "" || c.HTTPSrvCfg.KeyFile == "") {
		errs = append(errs, errors.New("TERMFOLIO_TLS requires TERMFOLIO_CERT and TERMFOLIO_KEY"))
	}
	return errors.Join(errs...)
}

// defaultFlagsCfg returns the default FlagsConfig.
func defaultFlagsCfg() *FlagsConfig {
	return &FlagsConfig{Headless: false}
}

// defaultHTTPServerCfg returns sane defaults for the HTTP server.
func defaultHTTPServerCfg() *HTTPServerConfig {
	return &HTTPServerConfig{
		Port:         8080,
		ReadTimeout:  -1,
		WriteTimeout: -1,
		IdleTimeout:  -1,
		EnableTLS:    false,
		CertFile:     "./local_certs/localhost+2.pem",
		KeyFile:      "./local_certs/localhost+2-key.pem",
	}
}

// defaultNatsCfg returns the default EmbeddedServerConfig.
func defaultNatsCfg() *EmbeddedServerConfig {
	return &EmbeddedServerConfig{
		InProcess:     true,
		EnableLogging: true,
		JetStream:     true,
		StoreDir:      "./store/js",
	}
}
