package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// PoolsConfig holds configuration for the pools command.
type PoolsConfig struct {
	Providers
	DEXes         []string
	PoolIDs       map[string][]string
	PoolLimit     int
	Watch         bool
	Interval      time.Duration
	Out           string
	PGDSN         string
	MaxRetries    int
	RetryBackoff  time.Duration
	SkipUnchanged bool
}

// LoadPools merges config file, environment variables, and flags into PoolsConfig.
func LoadPools(cfgFile string, flags *pflag.FlagSet) (PoolsConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("dex", []string{"cetus"})
		v.SetDefault("pool-limit", 200)
		v.SetDefault("interval", 30*time.Second)
		v.SetDefault("max-retries", 3)
		v.SetDefault("retry-backoff", 500*time.Millisecond)
		v.SetDefault("skip-unchanged", true)
	})
	if err != nil {
		return PoolsConfig{}, err
	}

	dexes, err := dexList(v)
	if err != nil {
		return PoolsConfig{}, err
	}
	cfg := PoolsConfig{
		Providers:     loadProviders(v),
		DEXes:         dexes,
		PoolIDs:       poolIDs(v, dexes),
		PoolLimit:     v.GetInt("pool-limit"),
		Watch:         v.GetBool("watch"),
		Interval:      v.GetDuration("interval"),
		Out:           v.GetString("out"),
		PGDSN:         v.GetString("pg-dsn"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		SkipUnchanged: v.GetBool("skip-unchanged"),
	}

	return cfg, nil
}
