package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ServeConfig holds configuration for the HTTP API.
type ServeConfig struct {
	Providers
	Listen          string
	DEXes           []string
	PoolIDs         map[string][]string
	PoolLimit       int
	PGDSN           string
	StateFile       string
	RefreshInterval time.Duration
	HideDust        bool
	DustUSD         string
	IncludeUnpriced bool
	ShutdownTimeout time.Duration
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("listen", ":8080")
		v.SetDefault("dex", []string{"cetus"})
		v.SetDefault("pool-limit", 200)
		v.SetDefault("state-file", "./data/portfolio_state.json")
		v.SetDefault("refresh-interval", time.Duration(0))
		v.SetDefault("hide-dust", true)
		v.SetDefault("dust-usd", "0.01")
		v.SetDefault("include-unpriced", true)
		v.SetDefault("shutdown-timeout", 10*time.Second)
	})
	if err != nil {
		return ServeConfig{}, err
	}

	dexes, err := dexList(v)
	if err != nil {
		return ServeConfig{}, err
	}
	cfg := ServeConfig{
		Providers:       loadProviders(v),
		Listen:          v.GetString("listen"),
		DEXes:           dexes,
		PoolIDs:         poolIDs(v, dexes),
		PoolLimit:       v.GetInt("pool-limit"),
		PGDSN:           v.GetString("pg-dsn"),
		StateFile:       v.GetString("state-file"),
		RefreshInterval: v.GetDuration("refresh-interval"),
		HideDust:        v.GetBool("hide-dust"),
		DustUSD:         v.GetString("dust-usd"),
		IncludeUnpriced: v.GetBool("include-unpriced"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
	}

	return cfg, nil
}
