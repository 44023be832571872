package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. DICTATE_MODEL_DIR.
const Prefix = "DICTATE"

type Config struct {
	// Model location; ModelPath overrides ModelDir/ggml-base.en.bin
	ModelDir    string `envconfig:"MODEL_DIR" default:""`
	ModelPath   string `envconfig:"MODEL_PATH" default:""`
	ModelURL    string `envconfig:"MODEL_URL" default:"https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin"`
	ModelSHA256 string `envconfig:"MODEL_SHA256" default:""`
	Threads     uint   `envconfig:"THREADS" default:"0"` // 0 = min(NumCPU, 8)
	Language    string `envconfig:"LANGUAGE" default:"en"`

	HistoryDir string `envconfig:"HISTORY_DIR" default:""`
	ArchiveDir string `envconfig:"ARCHIVE_DIR" default:""` // empty disables the FLAC archive

	RestoreDelay      time.Duration `envconfig:"RESTORE_DELAY" default:"150ms"`
	CancelDisplay     time.Duration `envconfig:"CANCEL_DISPLAY" default:"800ms"`
	PermissionTimeout time.Duration `envconfig:"PERMISSION_TIMEOUT" default:"3s"`
	LevelInterval     time.Duration `envconfig:"LEVEL_INTERVAL" default:"33ms"`
	LevelWindow       int           `envconfig:"LEVEL_WINDOW" default:"30"`
	SilenceAutoStop   bool          `envconfig:"SILENCE_AUTO_STOP" default:"false"`

	Device      string `envconfig:"DEVICE" default:""`
	Beep        bool   `envconfig:"BEEP" default:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"` // debug, info, warn, error
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`  // e.g. localhost:9464
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv skips the .env file.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	for name, d := range map[string]time.Duration{
		"RESTORE_DELAY":      c.RestoreDelay,
		"CANCEL_DISPLAY":     c.CancelDisplay,
		"PERMISSION_TIMEOUT": c.PermissionTimeout,
		"LEVEL_INTERVAL":     c.LevelInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s_%s must be positive, got %v", Prefix, name, d))
		}
	}
	if c.LevelWindow <= 0 {
		errs = append(errs, fmt.Errorf("%s_LEVEL_WINDOW must be positive, got %d", Prefix, c.LevelWindow))
	}
	return errors.Join(errs...)
}
