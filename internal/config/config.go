package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "WATCHER"

// Store backends.
const (
	StoreJSONL    = "jsonl"
	StorePostgres = "postgres"
	StoreWAL      = "wal"
)

// StoreConfig selects and locates the snapshot store.
type StoreConfig struct {
	Kind   string
	Out    string
	PGDSN  string
	WALDir string
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Address          string
	ExplorerURL      string
	ExplorerAPIKey   string
	ExplorerChainID  uint64
	ExplorerPageSize int
	RPCURL           string
	HTTPTimeout      time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration

	Store StoreConfig

	DiscordWebhooks []string
	NATSURL         string
	NATSSubject     string

	NativeSymbol          string
	FingerprintSortTokens bool
	NotifyRequiresPersist bool
	Interval              time.Duration
	LogLevel              string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setStoreDefaults(v)
	v.SetDefault("explorer-url", "https://api.etherscan.io/api")
	v.SetDefault("explorer-page-size", 10000)
	v.SetDefault("http-timeout", 15*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("nats-subject", "wallet.snapshots")
	v.SetDefault("native-symbol", "ETH")
	v.SetDefault("interval", 3*time.Minute)
	v.SetDefault("log-level", "info")

	if err := read(v, cfgFile, flags); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Address:               strings.TrimSpace(v.GetString("address")),
		ExplorerURL:           v.GetString("explorer-url"),
		ExplorerAPIKey:        v.GetString("explorer-api-key"),
		ExplorerChainID:       v.GetUint64("explorer-chain-id"),
		ExplorerPageSize:      v.GetInt("explorer-page-size"),
		RPCURL:                v.GetString("rpc"),
		HTTPTimeout:           v.GetDuration("http-timeout"),
		MaxRetries:            v.GetInt("max-retries"),
		RetryBackoff:          v.GetDuration("retry-backoff"),
		Store:                 storeConfig(v),
		DiscordWebhooks:       getStringSlice(v, "discord-webhook"),
		NATSURL:               v.GetString("nats-url"),
		NATSSubject:           v.GetString("nats-subject"),
		NativeSymbol:          v.GetString("native-symbol"),
		FingerprintSortTokens: v.GetBool("fingerprint-sort-tokens"),
		NotifyRequiresPersist: v.GetBool("notify-requires-persist"),
		Interval:              v.GetDuration("interval"),
		LogLevel:              v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks the values a run cannot start without.
func (c Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.ExplorerPageSize <= 0 || c.ExplorerPageSize > 10000 {
		return fmt.Errorf("explorer-page-size must be between 1 and 10000")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max-retries must not be negative")
	}
	return c.Store.Validate()
}

// Validate checks that the selected backend has what it needs.
func (s StoreConfig) Validate() error {
	switch s.Kind {
	case StoreJSONL:
		if s.Out == "" {
			return fmt.Errorf("out is required for the %s store", s.Kind)
		}
	case StorePostgres:
		if s.PGDSN == "" {
			return fmt.Errorf("pg-dsn is required for the %s store", s.Kind)
		}
	case StoreWAL:
		if s.WALDir == "" {
			return fmt.Errorf("wal-dir is required for the %s store", s.Kind)
		}
	default:
		return fmt.Errorf("unknown store %q", s.Kind)
	}
	return nil
}

func setStoreDefaults(v *viper.Viper) {
	v.SetDefault("store", StoreJSONL)
	v.SetDefault("out", "./data/snapshots.jsonl")
	v.SetDefault("wal-dir", "./data/wal")
}

func storeConfig(v *viper.Viper) StoreConfig {
	return StoreConfig{
		Kind:   strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		Out:    v.GetString("out"),
		PGDSN:  v.GetString("pg-dsn"),
		WALDir: v.GetString("wal-dir"),
	}
}

// read wires env and flags into v and reads the config file. Without an
// explicit file, a missing ./config.* is not an error.
func read(v *viper.Viper, cfgFile string, flags *pflag.FlagSet) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
