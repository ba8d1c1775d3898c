package cetus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suiLiquidity/internal/model"
)

func poolRow(i int) string {
	return fmt.Sprintf(`{"address":"0xpool%d","symbol":"SUI-USDC","fee":"0.0025","tick_spacing":"60","tvl_in_usd":"1000.5","vol_in_usd_24h":"200","fee_24_h":"0.5","price":"3.2","total_apr":"18.254","coin_a":{"address":"0x2::sui::SUI","symbol":"SUI","decimals":9,"logo_url":"https://img/sui.png"},"coin_b":{"address":"0xabc::usdc::USDC","symbol":"USDC","decimals":6}}`, i)
}

func TestPoolsPaginates(t *testing.T) {
	const total = 5
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v2/sui/stats_pools", r.URL.Path)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		rows := ""
		for i := offset; i < offset+limit && i < total; i++ {
			if rows != "" {
				rows += ","
			}
			rows += poolRow(i)
		}
		fmt.Fprintf(w, `{"code":200,"msg":"OK","data":{"total":%d,"lp_list":[%s]}}`, total, rows)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, PageSize: 2}, nil, nil)
	pools, err := client.Pools(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, pools, total)
	assert.Equal(t, 3, calls)

	limited, err := client.Pools(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestToPoolInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"code":200,"msg":"OK","data":{"total":1,"lp_list":[%s]}}`, poolRow(1))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, nil, nil)
	pools, err := client.Pools(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, pools, 1)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	info := pools[0].ToPoolInfo(at)
	assert.Equal(t, model.DEXCetus, info.DEX)
	assert.Equal(t, "0xpool1", info.PoolID)
	assert.Equal(t, 25, info.FeeBps)
	assert.Equal(t, int32(60), info.TickSpacing)
	assert.Equal(t, "1000.5", info.LiquidityUSD)
	assert.Equal(t, 3.2, info.CurrentPrice)
	require.NotNil(t, info.APR)
	assert.Equal(t, "18.25", *info.APR)
	assert.Equal(t, "SUI/USDC", info.Pair())
	assert.Equal(t, at, info.FetchedAt)
}

func TestVaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/sui/vaults/info", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":200,"msg":"OK","data":{"list":[{"id":"0xvault","pool":"0xpool1","apy":"12.5"}]}}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, nil, nil)
	vaults, err := client.Vaults(context.Background())
	require.NoError(t, err)
	require.Len(t, vaults, 1)
	assert.Equal(t, "0xpool1", vaults[0].PoolID)
	assert.True(t, vaults[0].APY.Valid)
}

func TestPoolsErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":500,"msg":"internal"}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, nil, nil)
	_, err := client.Pools(context.Background(), 0)
	assert.Error(t, err)
}

func TestCoinLogoFallback(t *testing.T) {
	var c Coin
	require.NoError(t, json.Unmarshal([]byte(`{"address":"0xabc::usdc::USDC","symbol":"USDC","decimals":6,"logoURI":"https://img/usdc.png"}`), &c))
	assert.Equal(t, "https://img/usdc.png", c.LogoURL)

	require.NoError(t, json.Unmarshal([]byte(`{"address":"0x2::sui::SUI","logo_url":"https://img/sui.png"}`), &c))
	assert.Equal(t, "https://img/sui.png", c.LogoURL)
}
