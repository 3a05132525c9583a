// Package config loads bsold daemon settings from <home>/config/bsold.toml,
// BSOLD_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "BSOLD"
	ConfigFileName = "bsold"
	ConfigFileType = "toml"

	DefaultHome      = ".bsol"
	DefaultAddr      = "tcp://127.0.0.1:26658"
	DefaultTransport = "socket"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "plain"
	DefaultDBBackend = string(dbm.GoLevelDBBackend)
)

// Flag and config keys.
const (
	FlagHome      = "home"
	FlagAddr      = "addr"
	FlagTransport = "transport"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagFaucet    = "faucet"
	FlagDBBackend = "db-backend"
)

type Config struct {
	Home      string `mapstructure:"home"`
	Addr      string `mapstructure:"addr"`
	Transport string `mapstructure:"transport"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	Faucet    bool   `mapstructure:"faucet"`
	DBBackend string `mapstructure:"db-backend"`
}

func Default() Config {
	return Config{
		Home:      DefaultHome,
		Addr:      DefaultAddr,
		Transport: DefaultTransport,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		DBBackend: DefaultDBBackend,
	}
}

// AddFlags registers the daemon flags with their defaults.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagHome, d.Home, "app home directory (state lives under <home>/data)")
	fs.String(FlagAddr, d.Addr, "ABCI listen address")
	fs.String(FlagTransport, d.Transport, "ABCI transport (socket|grpc)")
	fs.String(FlagLogLevel, d.LogLevel, "log level (trace|debug|info|warn|error)")
	fs.String(FlagLogFormat, d.LogFormat, "log format (plain|json)")
	fs.Bool(FlagFaucet, d.Faucet, "enable the unsigned bank/mint faucet (devnets only)")
	fs.String(FlagDBBackend, d.DBBackend, "state database backend (goleveldb|memdb)")
}

// Load resolves the configuration. fs may be nil.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Config, error) {
	d := Default()
	v.SetDefault(FlagHome, d.Home)
	v.SetDefault(FlagAddr, d.Addr)
	v.SetDefault(FlagTransport, d.Transport)
	v.SetDefault(FlagLogLevel, d.LogLevel)
	v.SetDefault(FlagLogFormat, d.LogFormat)
	v.SetDefault(FlagFaucet, d.Faucet)
	v.SetDefault(FlagDBBackend, d.DBBackend)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(filepath.Join(v.GetString(FlagHome), "config"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("home must not be empty")
	}
	switch c.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case "plain", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	switch dbm.BackendType(c.DBBackend) {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend:
	default:
		return fmt.Errorf("unsupported db backend %q", c.DBBackend)
	}
	return nil
}

// DataDir is where the state database lives.
func (c Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}
