package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suixService struct {
	metaCalls atomic.Int32
}

func (s *suixService) GetCoinMetadata(coinType string) (*CoinMetadata, error) {
	s.metaCalls.Add(1)
	if coinType != "0x2::sui::SUI" {
		return nil, nil
	}
	icon := "https://example.com/sui.png"
	return &CoinMetadata{Decimals: 9, Name: "Sui", Symbol: "SUI", IconURL: &icon}, nil
}

func (s *suixService) GetAllBalances(owner string) ([]Balance, error) {
	return []Balance{
		{CoinType: "0x2::sui::SUI", CoinObjectCount: 2, TotalBalance: "1500000000"},
	}, nil
}

type suiService struct {
	batches atomic.Int32
}

func poolObject(id string) ObjectResponse {
	fields, _ := json.Marshal(map[string]any{"tick_spacing": 60})
	return ObjectResponse{Data: &ObjectData{
		ObjectID: id,
		Version:  7,
		Type:     "0x1eab::pool::Pool<0x2::sui::SUI, 0xdba3::usdc::USDC>",
		Content:  &MoveContent{DataType: "moveObject", Fields: fields},
	}}
}

func (s *suiService) MultiGetObjects(ids []string, opts ObjectOptions) ([]ObjectResponse, error) {
	s.batches.Add(1)
	if len(ids) > MaxMultiGetObjects {
		return nil, fmt.Errorf("too many ids: %d", len(ids))
	}
	out := make([]ObjectResponse, 0, len(ids))
	for _, id := range ids {
		if id == "0xdead" {
			out = append(out, ObjectResponse{Error: &ObjectError{Code: "deleted", ObjectID: id}})
			continue
		}
		out = append(out, poolObject(id))
	}
	return out, nil
}

func newTestClient(t *testing.T) (*Client, *suixService, *suiService) {
	t.Helper()
	server := rpc.NewServer()
	suix := &suixService{}
	sui := &suiService{}
	require.NoError(t, server.RegisterName("suix", suix))
	require.NoError(t, server.RegisterName("sui", sui))
	t.Cleanup(server.Stop)

	client := NewClientFromRPC(rpc.DialInProc(server))
	t.Cleanup(client.Close)
	return client, suix, sui
}

func TestCoinMetadataIsCached(t *testing.T) {
	client, suix, _ := newTestClient(t)
	ctx := context.Background()

	meta, err := client.CoinMetadata(ctx, "0x2::sui::SUI")
	require.NoError(t, err)
	assert.Equal(t, uint8(9), meta.Decimals)
	assert.Equal(t, "SUI", meta.Symbol)

	_, err = client.CoinMetadata(ctx, "0x2::sui::SUI")
	require.NoError(t, err)
	assert.Equal(t, int32(1), suix.metaCalls.Load())
}

func TestCoinMetadataMissing(t *testing.T) {
	client, _, _ := newTestClient(t)
	_, err := client.CoinMetadata(context.Background(), "0x9::nope::NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllBalances(t *testing.T) {
	client, _, _ := newTestClient(t)
	balances, err := client.AllBalances(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "1500000000", balances[0].TotalBalance)
}

func TestMultiGetObjectsBatches(t *testing.T) {
	client, _, sui := newTestClient(t)

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("0x%x", i+1)
	}
	objs, err := client.MultiGetObjects(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, objs, 120)
	assert.Equal(t, int32(3), sui.batches.Load())
}

func TestMultiGetObjectsSkipsDeleted(t *testing.T) {
	client, _, _ := newTestClient(t)

	objs, err := client.MultiGetObjects(context.Background(), []string{"0xpool", "0xdead"})
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, SequenceNumber(7), objs["0xpool"].Version)
	require.NotNil(t, objs["0xpool"].Content)
}

func TestSequenceNumberAcceptsStrings(t *testing.T) {
	var data ObjectData
	require.NoError(t, json.Unmarshal([]byte(`{"objectId":"0x1","version":"42"}`), &data))
	assert.Equal(t, SequenceNumber(42), data.Version)
}
