package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// TickRangeConfig holds inputs for the tick-range command.
type TickRangeConfig struct {
	TickSpacing int32
	CurrentTick int32
	DecimalsA   uint8
	DecimalsB   uint8
	USDA        float64
	USDB        float64
	Lower       int32
	Upper       int32
	MinPrice    float64
	MaxPrice    float64
	Full        bool
}

// LoadTickRange merges config file, environment variables, and flags into TickRangeConfig.
func LoadTickRange(cfgFile string, flags *pflag.FlagSet) (TickRangeConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("tick-spacing", 60)
		v.SetDefault("decimals-a", 9)
		v.SetDefault("decimals-b", 9)
	})
	if err != nil {
		return TickRangeConfig{}, err
	}

	cfg := TickRangeConfig{
		TickSpacing: v.GetInt32("tick-spacing"),
		CurrentTick: v.GetInt32("current-tick"),
		DecimalsA:   uint8(v.GetUint("decimals-a")),
		DecimalsB:   uint8(v.GetUint("decimals-b")),
		USDA:        v.GetFloat64("usd-a"),
		USDB:        v.GetFloat64("usd-b"),
		Lower:       v.GetInt32("lower"),
		Upper:       v.GetInt32("upper"),
		MinPrice:    v.GetFloat64("min-price"),
		MaxPrice:    v.GetFloat64("max-price"),
		Full:        v.GetBool("full"),
	}

	return cfg, nil
}

// TokenConfig holds configuration for the token command.
type TokenConfig struct {
	Providers
	PGDSN string
}

// LoadToken merges config file, environment variables, and flags into TokenConfig.
func LoadToken(cfgFile string, flags *pflag.FlagSet) (TokenConfig, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return TokenConfig{}, err
	}
	return TokenConfig{Providers: loadProviders(v), PGDSN: v.GetString("pg-dsn")}, nil
}

// DepositPreviewConfig holds inputs for the deposit-preview command.
type DepositPreviewConfig struct {
	Providers
	DEX      string
	PoolID   string
	AmountA  string
	AmountB  string
	Slippage float64
	Lower    int32
	Upper    int32
	Full     bool
	OneSided bool
	VaultID  string
}

// LoadDepositPreview merges config file, environment variables, and flags into DepositPreviewConfig.
func LoadDepositPreview(cfgFile string, flags *pflag.FlagSet) (DepositPreviewConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("dex", "cetus")
		v.SetDefault("slippage", 0.5)
	})
	if err != nil {
		return DepositPreviewConfig{}, err
	}

	cfg := DepositPreviewConfig{
		Providers: loadProviders(v),
		DEX:       v.GetString("dex"),
		PoolID:    v.GetString("pool"),
		AmountA:   v.GetString("amount-a"),
		AmountB:   v.GetString("amount-b"),
		Slippage:  v.GetFloat64("slippage"),
		Lower:     v.GetInt32("lower"),
		Upper:     v.GetInt32("upper"),
		Full:      v.GetBool("full"),
		OneSided:  v.GetBool("one-sided"),
		VaultID:   v.GetString("vault"),
	}

	return cfg, nil
}
