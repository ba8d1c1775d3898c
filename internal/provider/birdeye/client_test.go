package birdeye

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceUSD(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/price", r.URL.Path)
		assert.Equal(t, "sui", r.Header.Get("x-chain"))
		assert.Equal(t, "k", r.Header.Get("X-API-KEY"))
		if r.URL.Query().Get("address") == "0x2::sui::SUI" {
			_, _ = w.Write([]byte(`{"success":true,"data":{"value":3.5,"updateUnixTime":1700000000}}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, APIKey: "k"}, nil, nil)

	price, err := client.PriceUSD(context.Background(), "0x2::sui::SUI")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("3.5")))

	_, err = client.PriceUSD(context.Background(), "0xnope::x::X")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTokenOverview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"address":"0x2::sui::SUI","symbol":"SUI","name":"Sui","decimals":9,"logoURI":"https://img/sui.png","price":3.5,"liquidity":1000000,"v24hUSD":"25000"}}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, nil, nil)
	overview, err := client.TokenOverview(context.Background(), "0x2::sui::SUI")
	require.NoError(t, err)
	assert.Equal(t, "SUI", overview.Symbol)
	assert.Equal(t, uint8(9), overview.Decimals)
	assert.Equal(t, "https://img/sui.png", overview.LogoURI)
	assert.True(t, overview.Volume24h.Valid)
}

func TestTokenOverviewLogoFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"address":"0xabc::usdc::USDC","symbol":"USDC","decimals":6,"logo_uri":"https://img/usdc.png"}}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, nil, nil)
	info, err := client.TokenInfo(context.Background(), "0xabc::usdc::USDC")
	require.NoError(t, err)
	assert.Equal(t, "https://img/usdc.png", info.LogoURL)
}

func TestPriceUSDStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, nil, nil)
	_, err := client.PriceUSD(context.Background(), "0x2::sui::SUI")
	assert.Error(t, err)
}
