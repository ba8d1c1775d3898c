package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"suiLiquidity/internal/dex"
)

// EnvPrefix prefixes every environment variable, e.g. DESK_RPC.
const EnvPrefix = "DESK"

// Providers holds the upstream endpoints shared by every command.
type Providers struct {
	RPCURL             string
	BlockVisionURL     string
	BlockVisionKey     string
	BirdeyeURL         string
	BirdeyeKey         string
	BirdeyeChain       string
	CetusURL           string
	RequestTimeout     time.Duration
	RateLimit          float64
	PriceTTL           time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	LogLevel           string
}

func setProviderDefaults(v *viper.Viper) {
	v.SetDefault("rpc", "https://fullnode.mainnet.sui.io:443")
	v.SetDefault("blockvision-url", "https://api.blockvision.org/v2/sui")
	v.SetDefault("birdeye-url", "https://public-api.birdeye.so")
	v.SetDefault("birdeye-chain", "sui")
	v.SetDefault("cetus-url", "https://api-sui.cetus.zone")
	v.SetDefault("request-timeout", 10*time.Second)
	v.SetDefault("rate-limit", 5.0)
	v.SetDefault("price-ttl", time.Minute)
	v.SetDefault("breaker-max-failures", 5)
	v.SetDefault("breaker-open-timeout", 30*time.Second)
	v.SetDefault("log-level", "info")
}

func loadProviders(v *viper.Viper) Providers {
	return Providers{
		RPCURL:             v.GetString("rpc"),
		BlockVisionURL:     v.GetString("blockvision-url"),
		BlockVisionKey:     v.GetString("blockvision-key"),
		BirdeyeURL:         v.GetString("birdeye-url"),
		BirdeyeKey:         v.GetString("birdeye-key"),
		BirdeyeChain:       v.GetString("birdeye-chain"),
		CetusURL:           v.GetString("cetus-url"),
		RequestTimeout:     v.GetDuration("request-timeout"),
		RateLimit:          v.GetFloat64("rate-limit"),
		PriceTTL:           v.GetDuration("price-ttl"),
		BreakerMaxFailures: v.GetUint32("breaker-max-failures"),
		BreakerOpenTimeout: v.GetDuration("breaker-open-timeout"),
		LogLevel:           v.GetString("log-level"),
	}
}

// newViper merges config file, environment variables, and flags on top of
// the shared provider defaults and the command's own defaults.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setProviderDefaults(v)
	if defaults != nil {
		defaults(v)
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

// dexList reads the "dex" list and rejects DEXes without a pool layout.
func dexList(v *viper.Viper) ([]string, error) {
	dexes := getStringSlice(v, "dex")
	supported := dex.Supported()
	for _, name := range dexes {
		if !slices.Contains(supported, name) {
			return nil, fmt.Errorf("unsupported dex %q (supported: %s)", name, strings.Join(supported, ", "))
		}
	}
	return dexes, nil
}

// poolIDs reads "<dex>-pools" lists for every dex.
func poolIDs(v *viper.Viper, dexes []string) map[string][]string {
	out := make(map[string][]string)
	for _, dex := range dexes {
		if ids := getStringSlice(v, dex+"-pools"); len(ids) > 0 {
			out[dex] = ids
		}
	}
	return out
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
