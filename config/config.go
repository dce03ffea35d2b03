// Package config contains szopper configuration definitions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/szopper/go-szopper/database"
	"github.com/szopper/go-szopper/discovery"
	"github.com/szopper/go-szopper/log"
	"github.com/szopper/go-szopper/p2p"
	"github.com/szopper/go-szopper/syncer"
	"github.com/szopper/go-szopper/transport"
	"github.com/szopper/go-szopper/transport/tcp"
)

const (
	defaultDataDirName = ".szopper"
	// EnvPrefix of environment variables overriding config keys, e.g. SZOPPER_MAIN_DEVICE_NAME.
	EnvPrefix = "SZOPPER"
	// LockFile in the data dir held while a process uses it.
	LockFile = "szopper.lock"
)

// Config defines the top level configuration of a szopper device.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Log        log.Config       `mapstructure:"log"`
	Sync       syncer.Config    `mapstructure:"sync"`
	Session    transport.Config `mapstructure:"session"`
	Discovery  discovery.Config `mapstructure:"discovery"`
	TCP        tcp.Config       `mapstructure:"tcp"`
	P2P        p2p.Config       `mapstructure:"p2p"`
	Database   database.Config  `mapstructure:"database"`
}

// BaseConfig defines the device wide options.
type BaseConfig struct {
	DataDir    string `mapstructure:"data-dir"`
	ConfigFile string `mapstructure:"config"`
	// DeviceID is sent in every message, generated on first start when empty.
	DeviceID   string `mapstructure:"device-id"`
	DeviceName string `mapstructure:"device-name"`
	// MetricsListen enables the prometheus endpoint when set.
	MetricsListen string `mapstructure:"metrics-listen"`
	// InboundRate limits accepted sync sessions per second when serving.
	InboundRate  float64 `mapstructure:"inbound-rate"`
	InboundBurst int     `mapstructure:"inbound-burst"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "szopper"
	}
	return Config{
		BaseConfig: BaseConfig{
			DataDir:      filepath.Join(home, defaultDataDirName),
			DeviceName:   hostname,
			InboundRate:  1,
			InboundBurst: 2,
		},
		Log:       log.DefaultConfig(),
		Sync:      syncer.DefaultConfig(),
		Session:   transport.DefaultConfig(),
		Discovery: discovery.DefaultConfig(),
		TCP:       tcp.DefaultConfig(),
		P2P:       p2p.DefaultConfig(),
		Database:  database.DefaultConfig(),
	}
}

// LoadConfig reads the config file into vip. A missing file at the
// default location is not an error.
func LoadConfig(fileLocation string, vip *viper.Viper) error {
	if fileLocation == "" {
		return nil
	}
	vip.SetConfigFile(fileLocation)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", fileLocation, err)
	}
	return nil
}

// LoadEnv loads variables from .env files into the process environment.
// Variables that are already set win, missing files are skipped.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// Load decodes the file at path over cfg. Environment variables prefixed
// with EnvPrefix override keys of the file.
func Load(cfg *Config, path string) error {
	vip := viper.New()
	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vip.AutomaticEnv()
	if err := LoadConfig(path, vip); err != nil {
		return err
	}
	return Decode(vip, cfg)
}

// Decode decodes the settings of vip over cfg.
func Decode(vip *viper.Viper, cfg *Config) error {
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		WithIgnoreUntagged(),
		WithErrorUnused(),
	}
	if err := vip.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func WithIgnoreUntagged() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.IgnoreUntaggedFields = true
	}
}

func WithErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}

// Validate checks values that can't be checked while decoding.
func (cfg *Config) Validate() error {
	if err := cfg.Sync.ConnectRetry.Validate(); err != nil {
		return fmt.Errorf("sync.connect-retry: %w", err)
	}
	if err := cfg.Sync.TransferRetry.Validate(); err != nil {
		return fmt.Errorf("sync.transfer-retry: %w", err)
	}
	if cfg.Sync.SyncTimeout <= 0 {
		return fmt.Errorf("sync.sync-timeout must be positive, got %v", cfg.Sync.SyncTimeout)
	}
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.InboundRate <= 0 || cfg.InboundBurst < 1 {
		return fmt.Errorf("main.inbound-rate and main.inbound-burst must be positive, got %v and %d",
			cfg.InboundRate, cfg.InboundBurst)
	}
	if cfg.DataDir == "" {
		return errors.New("main.data-dir is empty")
	}
	return nil
}

// Finalize fills values derived from the data dir and device settings.
func (cfg *Config) Finalize() {
	if cfg.P2P.DataDir == "" {
		cfg.P2P.DataDir = filepath.Join(cfg.DataDir, "p2p")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.DataDir, "items")
	}
	if cfg.P2P.DeviceName == "" {
		cfg.P2P.DeviceName = cfg.DeviceName
	}
}

// LockPath is the path of the data dir lock file.
func (cfg *Config) LockPath() string {
	return filepath.Join(cfg.DataDir, LockFile)
}
