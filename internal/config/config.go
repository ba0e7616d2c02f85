// Package config loads frametran settings from flags, a YAML file and the
// environment through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/valpere/frametran/internal/llm"
)

// EnvPrefix is prepended to every environment override, e.g.
// FRAMETRAN_MODEL_NAME for model.name.
const EnvPrefix = "FRAMETRAN"

// Keys.
const (
	KeyModelBackend     = "model.backend"
	KeyModelName        = "model.name"
	KeyModelAPIKey      = "model.api_key"
	KeyModelBaseURL     = "model.base_url"
	KeyModelTemperature = "model.temperature"
	KeyModelMaxTokens   = "model.max_tokens"
	KeyModelTimeout     = "model.timeout"
	KeyModelMaxAttempts = "model.max_attempts"

	KeyFramesDir     = "frames.dir"
	KeyFramesDefault = "frames.default"

	KeyServerAddr            = "server.addr"
	KeyServerRequestTimeout  = "server.request_timeout"
	KeyServerShutdownTimeout = "server.shutdown_timeout"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"

	KeyBaselineCredentials = "baseline.credentials"
)

// DefaultModelEnv is read for model.name when FRAMETRAN_MODEL_NAME is unset.
const DefaultModelEnv = "DEFAULT_MODEL"

// Config is the resolved configuration of one process.
type Config struct {
	Model    llm.Config
	Frames   Frames
	Server   Server
	Log      Log
	Baseline Baseline
}

type Frames struct {
	Dir     string
	Default string
}

type Server struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  string
	Format string
}

type Baseline struct {
	// CredentialsFile is a Google service account file; empty means
	// Application Default Credentials.
	CredentialsFile string
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyModelName, EnvPrefix+"_MODEL_NAME", DefaultModelEnv)
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyModelBackend, "")
	v.SetDefault(KeyModelName, llm.DefaultModel)
	v.SetDefault(KeyModelAPIKey, "")
	v.SetDefault(KeyModelBaseURL, "")
	v.SetDefault(KeyModelTemperature, llm.DefaultTemperature)
	v.SetDefault(KeyModelMaxTokens, llm.DefaultMaxTokens)
	v.SetDefault(KeyModelTimeout, llm.DefaultTimeout)
	v.SetDefault(KeyModelMaxAttempts, 1)

	v.SetDefault(KeyFramesDir, "./frames")
	v.SetDefault(KeyFramesDefault, "commerce-buy-frame")

	v.SetDefault(KeyServerAddr, ":5000")
	v.SetDefault(KeyServerRequestTimeout, 180*time.Second)
	v.SetDefault(KeyServerShutdownTimeout, 10*time.Second)

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")

	v.SetDefault(KeyBaselineCredentials, "")
}

// ReadFile reads path into v. With an empty path it looks for frametran.yaml
// in the working directory and the user config directory; not finding one is
// not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("frametran")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir + string(os.PathSeparator) + "frametran")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load resolves v into a Config. The model backend is settled here, once:
// an explicit model.backend wins, otherwise it is inferred from the model
// name. A missing API key falls back to the backend's conventional
// environment variable. Credentials are not checked; llm.New does that.
func Load(v *viper.Viper) (Config, error) {
	name := strings.TrimSpace(v.GetString(KeyModelName))

	var backend llm.Backend
	if raw := strings.TrimSpace(v.GetString(KeyModelBackend)); raw != "" {
		b, err := llm.ParseBackend(raw)
		if err != nil {
			return Config{}, err
		}
		backend = b
	} else {
		backend = llm.InferBackend(name)
	}

	apiKey := strings.TrimSpace(v.GetString(KeyModelAPIKey))
	if apiKey == "" && backend.CredentialEnv() != "" {
		apiKey = strings.TrimSpace(os.Getenv(backend.CredentialEnv()))
	}

	cfg := Config{
		Model: llm.Config{
			Backend:     backend,
			Model:       name,
			APIKey:      apiKey,
			BaseURL:     v.GetString(KeyModelBaseURL),
			Temperature: v.GetFloat64(KeyModelTemperature),
			MaxTokens:   v.GetInt(KeyModelMaxTokens),
			Timeout:     v.GetDuration(KeyModelTimeout),
			MaxAttempts: v.GetInt(KeyModelMaxAttempts),
		},
		Frames: Frames{
			Dir:     v.GetString(KeyFramesDir),
			Default: v.GetString(KeyFramesDefault),
		},
		Server: Server{
			Addr:            v.GetString(KeyServerAddr),
			RequestTimeout:  v.GetDuration(KeyServerRequestTimeout),
			ShutdownTimeout: v.GetDuration(KeyServerShutdownTimeout),
		},
		Log: Log{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
		Baseline: Baseline{
			CredentialsFile: v.GetString(KeyBaselineCredentials),
		},
	}

	if cfg.Model.Temperature < 0 || cfg.Model.Temperature > 2 {
		return Config{}, fmt.Errorf("model.temperature must be between 0 and 2, got %v", cfg.Model.Temperature)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		return Config{}, fmt.Errorf("log.format must be json or console, got %q", cfg.Log.Format)
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return Config{}, fmt.Errorf("invalid log.level: %w", err)
	}
	return cfg, nil
}

// Build creates the process logger. verbose forces debug level.
func (l Log) Build(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if l.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if l.Level != "" {
		parsed, err := zapcore.ParseLevel(l.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
