package dex

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"suiLiquidity/internal/chain"
	"suiLiquidity/internal/model"
)

// Decoder turns a pool object into its on-chain state.
type Decoder interface {
	Decode(obj chain.ObjectData) (model.PoolState, error)
}

// PoolDecoder decodes pool objects using a field layout.
type PoolDecoder struct {
	layout Layout
}

// NewPoolDecoder builds a decoder for dex.
func NewPoolDecoder(dex string) (*PoolDecoder, error) {
	layout, err := LayoutFor(dex)
	if err != nil {
		return nil, err
	}
	return &PoolDecoder{layout: layout}, nil
}

// Decode converts an object into a PoolState.
func (d *PoolDecoder) Decode(obj chain.ObjectData) (model.PoolState, error) {
	if obj.Content == nil || len(obj.Content.Fields) == 0 {
		return model.PoolState{}, fmt.Errorf("pool %s: missing content", obj.ObjectID)
	}

	objType := obj.Type
	if objType == "" {
		objType = obj.Content.Type
	}
	_, args, err := ParseType(objType)
	if err != nil {
		return model.PoolState{}, fmt.Errorf("pool %s: %w", obj.ObjectID, err)
	}
	if len(args) < 2 {
		return model.PoolState{}, fmt.Errorf("pool %s: expected two coin types in %q", obj.ObjectID, objType)
	}

	fields := obj.Content.Fields
	state := model.PoolState{
		PoolID:    obj.ObjectID,
		CoinTypeA: args[0],
		CoinTypeB: args[1],
	}

	raw, ok := lookup(fields, d.layout.TickIndex)
	if !ok {
		return model.PoolState{}, fmt.Errorf("pool %s: missing %s", obj.ObjectID, d.layout.TickIndex)
	}
	if state.CurrentTick, err = decodeI32(raw); err != nil {
		return model.PoolState{}, fmt.Errorf("pool %s: tick: %w", obj.ObjectID, err)
	}

	raw, ok = lookup(fields, d.layout.TickSpacing)
	if !ok {
		return model.PoolState{}, fmt.Errorf("pool %s: missing %s", obj.ObjectID, d.layout.TickSpacing)
	}
	spacing, err := decodeUint(raw)
	if err != nil {
		return model.PoolState{}, fmt.Errorf("pool %s: tick spacing: %w", obj.ObjectID, err)
	}
	state.TickSpacing = int32(spacing)

	if raw, ok := lookup(fields, d.layout.SqrtPrice); ok {
		state.SqrtPriceX64, _ = decodeString(raw)
	}
	if raw, ok := lookup(fields, d.layout.Liquidity); ok {
		state.Liquidity, _ = decodeString(raw)
	}
	if raw, ok := lookup(fields, d.layout.FeeRate); ok {
		state.FeeRate, _ = decodeUint(raw)
	}

	return state, nil
}

// ParseType splits "0xpkg::pool::Pool<A, B>" into its base and type
// arguments. Nested generics stay intact.
func ParseType(t string) (string, []string, error) {
	open := strings.IndexByte(t, '<')
	if open < 0 {
		return t, nil, nil
	}
	if !strings.HasSuffix(t, ">") {
		return "", nil, fmt.Errorf("malformed type %q", t)
	}
	base := t[:open]
	inner := t[open+1 : len(t)-1]

	var args []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return "", nil, fmt.Errorf("malformed type %q", t)
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, fmt.Errorf("malformed type %q", t)
	}
	if last := strings.TrimSpace(inner[start:]); last != "" {
		args = append(args, last)
	}
	return base, args, nil
}

// lookup walks a dotted path through Move struct fields, unwrapping
// {"type":..,"fields":{..}} envelopes on the way.
func lookup(fields json.RawMessage, path string) (json.RawMessage, bool) {
	current := fields
	for _, key := range strings.Split(path, ".") {
		obj, ok := unwrapStruct(current)
		if !ok {
			return nil, false
		}
		next, ok := obj[key]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func unwrapStruct(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	if inner, ok := obj["fields"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(inner, &nested); err == nil {
			return nested, true
		}
	}
	return obj, true
}

// decodeI32 reads a Move I32 ({"bits": u32}) as two's complement.
func decodeI32(raw json.RawMessage) (int32, error) {
	obj, ok := unwrapStruct(raw)
	if !ok {
		return 0, fmt.Errorf("expected struct, got %s", string(raw))
	}
	bitsRaw, ok := obj["bits"]
	if !ok {
		return 0, fmt.Errorf("missing bits")
	}
	bits, err := decodeUint(bitsRaw)
	if err != nil {
		return 0, err
	}
	if bits > 0xFFFFFFFF {
		return 0, fmt.Errorf("i32 overflow: %d", bits)
	}
	return int32(uint32(bits)), nil
}

// decodeUint accepts both JSON numbers and the string encoding used for
// u64 and wider.
func decodeUint(raw json.RawMessage) (uint64, error) {
	s, err := decodeString(raw)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(s, 10, 64)
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected number, got %s", string(raw))
	}
	return n.String(), nil
}
