package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// History output formats.
const (
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// HistoryConfig holds configuration for listing persisted snapshots.
type HistoryConfig struct {
	Store    StoreConfig
	Since    time.Time
	Limit    int
	Format   string
	LogLevel string
}

// LoadHistory merges config file, environment variables, and flags into HistoryConfig.
func LoadHistory(cfgFile string, flags *pflag.FlagSet) (HistoryConfig, error) {
	v := viper.New()
	setStoreDefaults(v)
	v.SetDefault("format", FormatJSONL)
	v.SetDefault("log-level", "info")

	if err := read(v, cfgFile, flags); err != nil {
		return HistoryConfig{}, err
	}

	since, err := ParseTimestamp(v.GetString("since"))
	if err != nil {
		return HistoryConfig{}, fmt.Errorf("parse since: %w", err)
	}

	cfg := HistoryConfig{
		Store:    storeConfig(v),
		Limit:    v.GetInt("limit"),
		Format:   strings.ToLower(strings.TrimSpace(v.GetString("format"))),
		LogLevel: v.GetString("log-level"),
	}
	if since > 0 {
		cfg.Since = time.Unix(int64(since), 0).UTC()
	}

	if cfg.Format != FormatJSONL && cfg.Format != FormatCSV {
		return HistoryConfig{}, fmt.Errorf("unknown format %q", cfg.Format)
	}
	return cfg, nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseUint(input, 10, 63)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	if tm.Unix() < 0 {
		return 0, fmt.Errorf("timestamp %s is before 1970-01-01", input)
	}
	return uint64(tm.Unix()), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
