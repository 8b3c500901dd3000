// Package config loads sessiond settings from flags, environment and
// <home>/config/sessiond.toml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pokerescrow/internal/events"
)

const (
	EnvPrefix      = "SESSIOND"
	ConfigFileName = "sessiond.toml"
	DefaultHome    = ".sessiond"
)

// Keys.
const (
	KeyHome             = "home"
	KeyABCIAddr         = "abci.addr"
	KeyABCITransport    = "abci.transport"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyBankMintEnabled  = "bank.mint_enabled"
	KeyEventsBuffer     = "events.buffer"
	KeyEventsDropIfFull = "events.drop_if_full"
	KeyRedisAddr        = "events.redis.addr"
	KeyRedisChannel     = "events.redis.channel"
	KeyMetricsAddr      = "metrics.addr"
)

type Config struct {
	Home    string        `mapstructure:"home"`
	ABCI    ABCIConfig    `mapstructure:"abci"`
	Log     LogConfig     `mapstructure:"log"`
	Bank    BankConfig    `mapstructure:"bank"`
	Events  EventsConfig  `mapstructure:"events"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ABCIConfig struct {
	Addr      string `mapstructure:"addr"`
	Transport string `mapstructure:"transport"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // plain|json
}

type BankConfig struct {
	MintEnabled bool `mapstructure:"mint_enabled"`
}

type EventsConfig struct {
	Buffer     int         `mapstructure:"buffer"`
	DropIfFull bool        `mapstructure:"drop_if_full"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig enables the pub/sub sink when Addr is set.
type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	Channel string `mapstructure:"channel"`
}

// MetricsConfig serves /metrics when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHome, DefaultHome)
	v.SetDefault(KeyABCIAddr, "tcp://127.0.0.1:26658")
	v.SetDefault(KeyABCITransport, "socket")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "plain")
	v.SetDefault(KeyBankMintEnabled, false)
	v.SetDefault(KeyEventsBuffer, 1024)
	v.SetDefault(KeyEventsDropIfFull, true)
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisChannel, events.DefaultRedisChannel)
	v.SetDefault(KeyMetricsAddr, "")
}

// BindFlags registers the node flags on fs and binds them to v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String(KeyABCIAddr, "tcp://127.0.0.1:26658", "ABCI listen address")
	fs.String(KeyABCITransport, "socket", "ABCI transport (socket|grpc)")
	fs.String(KeyLogLevel, "info", "log level (debug|info|warn|error)")
	fs.String(KeyLogFormat, "plain", "log output format (plain|json)")
	fs.Bool(KeyBankMintEnabled, false, "accept unsigned bank/mint txs (devnet faucet)")
	fs.Int(KeyEventsBuffer, 1024, "async event queue size")
	fs.Bool(KeyEventsDropIfFull, true, "drop notifications instead of blocking commit when the queue is full")
	fs.String(KeyRedisAddr, "", "publish session events to this Redis server")
	fs.String(KeyRedisChannel, events.DefaultRedisChannel, "Redis pub/sub channel")
	fs.String(KeyMetricsAddr, "", "serve Prometheus metrics on this address")

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load merges the config file (if present) and environment into v and
// decodes the result.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home := v.GetString(KeyHome)
	path := filepath.Join(home, "config", ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("stat %s: %w", path, err)
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
		return errors.New("home must be set")
	}
	switch c.ABCI.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("invalid abci.transport %q (want socket|grpc)", c.ABCI.Transport)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	switch c.Log.Format {
	case "plain", "json":
	default:
		return fmt.Errorf("invalid log.format %q (want plain|json)", c.Log.Format)
	}
	if c.Events.Buffer <= 0 {
		return fmt.Errorf("events.buffer must be > 0")
	}
	return nil
}

// NewLogger builds the process logger described by c.
func NewLogger(c LogConfig, w io.Writer) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	opts := []log.Option{log.LevelOption(lvl)}
	if c.Format == "json" {
		opts = append(opts, log.OutputJSONOption())
	} else {
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(w, opts...), nil
}
