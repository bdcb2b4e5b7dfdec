package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Store        string
	StatePath    string
	Journal      string
	PGDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	MetricsOut   string
	LogLevel     string

	Deployer    string
	PoolAddress string
	Price       string
	FeeRateBps  uint16
	MinBuy      string
	Decimals    uint8
	TotalSupply string
}

// ReportConfig holds configuration for the windowed trade report.
type ReportConfig struct {
	Journal  string
	Window   string
	From     string
	Out      string
	Decimals uint8
	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"store":         StoreFile,
		"state":         "./data/pool_state.json",
		"journal":       "./data/events.jsonl",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
		"price":         "0.001",
		"fee-rate-bps":  30,
		"min-buy":       "0.001",
		"decimals":      18,
		"total-supply":  "1000000",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Store:        strings.ToLower(v.GetString("store")),
		StatePath:    v.GetString("state"),
		Journal:      v.GetString("journal"),
		PGDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		MetricsOut:   v.GetString("metrics-out"),
		LogLevel:     v.GetString("log-level"),
		Deployer:     v.GetString("deployer"),
		PoolAddress:  v.GetString("pool-address"),
		Price:        v.GetString("price"),
		FeeRateBps:   uint16(v.GetUint("fee-rate-bps")),
		MinBuy:       v.GetString("min-buy"),
		Decimals:     uint8(v.GetUint("decimals")),
		TotalSupply:  v.GetString("total-supply"),
	}

	switch cfg.Store {
	case StoreFile, StoreMemory, StorePostgres:
	default:
		return Config{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
	if cfg.Store == StorePostgres && cfg.PGDSN == "" {
		return Config{}, fmt.Errorf("pg-dsn is required for the postgres store")
	}
	if cfg.FeeRateBps > 10_000 {
		return Config{}, fmt.Errorf("fee-rate-bps must be <= 10000, got %d", cfg.FeeRateBps)
	}
	return cfg, nil
}

// LoadReport merges config file, environment variables, and flags into ReportConfig.
func LoadReport(cfgFile string, flags *pflag.FlagSet) (ReportConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"journal":   "./data/events.jsonl",
		"window":    "1h",
		"decimals":  18,
		"log-level": "info",
	})
	if err != nil {
		return ReportConfig{}, err
	}

	return ReportConfig{
		Journal:  v.GetString("journal"),
		Window:   v.GetString("window"),
		From:     v.GetString("from"),
		Out:      v.GetString("out"),
		Decimals: uint8(v.GetUint("decimals")),
		LogLevel: v.GetString("log-level"),
	}, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("POOL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}
