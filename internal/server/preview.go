package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"suiLiquidity/internal/clmm"
	"suiLiquidity/internal/deposit"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/withdraw"
)

type queryReader struct {
	q   url.Values
	err error
}

func (qr *queryReader) int32(key string, def int32) int32 {
	raw := qr.q.Get(key)
	if raw == "" || qr.err != nil {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		qr.err = fmt.Errorf("%s: %w", key, err)
		return def
	}
	return int32(v)
}

func (qr *queryReader) uint8(key string, def uint8) uint8 {
	raw := qr.q.Get(key)
	if raw == "" || qr.err != nil {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		qr.err = fmt.Errorf("%s: %w", key, err)
		return def
	}
	return uint8(v)
}

func (qr *queryReader) float(key string) float64 {
	raw := qr.q.Get(key)
	if raw == "" || qr.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		qr.err = fmt.Errorf("%s: %w", key, err)
		return 0
	}
	return v
}

func (qr *queryReader) bool(key string) bool {
	raw := qr.q.Get(key)
	if raw == "" || qr.err != nil {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		qr.err = fmt.Errorf("%s: %w", key, err)
		return false
	}
	return v
}

type tickRangeResponse struct {
	clmm.RangeQuote
	Valid        bool       `json:"valid"`
	Reason       string     `json:"reason,omitempty"`
	CurrentPrice clmm.Price `json:"current_price"`
}

// handleTickRange quotes either the full range, an explicit tick range, or
// the range snapped around min_price/max_price.
func (s *Server) handleTickRange(w http.ResponseWriter, r *http.Request) {
	qr := &queryReader{q: r.URL.Query()}
	spacing := qr.int32("spacing", 60)
	current := qr.int32("current_tick", 0)
	decA := qr.uint8("decimals_a", 9)
	decB := qr.uint8("decimals_b", 9)
	usdA := qr.float("usd_a")
	usdB := qr.float("usd_b")
	full := qr.bool("full")
	minPrice := qr.float("min_price")
	maxPrice := qr.float("max_price")
	_, hasLower := r.URL.Query()["lower"]
	lower := qr.int32("lower", 0)
	upper := qr.int32("upper", 0)
	if qr.err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, qr.err.Error())
		return
	}

	var ref *clmm.USDReference
	if usdA > 0 && usdB > 0 {
		ref = &clmm.USDReference{A: usdA, B: usdB}
	}

	var quote clmm.RangeQuote
	switch {
	case minPrice > 0 || maxPrice > 0:
		tr, err := clmm.RangeFromPrices(minPrice, maxPrice, decA, decB, spacing)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		quote = clmm.QuoteRange(tr.Lower, tr.Upper, current, tr.FullRange, decA, decB, ref)
	case full || !hasLower:
		quote = clmm.FullRangeQuote(spacing, current, decA, decB, ref)
	default:
		quote = clmm.QuoteRange(lower, upper, current, false, decA, decB, ref)
	}

	resp := tickRangeResponse{
		RangeQuote:   quote,
		Valid:        true,
		CurrentPrice: clmm.TickToPrice(current, decA, decB, ref),
	}
	if !quote.FullRange {
		tr := model.TickRange{Lower: quote.TickLower, Upper: quote.TickUpper}
		if err := clmm.ValidateRange(tr, spacing); err != nil {
			resp.Valid = false
			resp.Reason = err.Error()
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type depositPreviewRequest struct {
	DEX             string   `json:"dex"`
	PoolID          string   `json:"pool_id"`
	AmountA         string   `json:"amount_a"`
	AmountB         string   `json:"amount_b"`
	SlippagePercent float64  `json:"slippage_percent"`
	TickLower       *int32   `json:"tick_lower"`
	TickUpper       *int32   `json:"tick_upper"`
	MinPrice        *float64 `json:"min_price"`
	MaxPrice        *float64 `json:"max_price"`
	FullRange       bool     `json:"full_range"`
	OneSided        bool     `json:"one_sided"`
	VaultID         string   `json:"vault_id"`
}

type depositPreviewResponse struct {
	Result deposit.Result `json:"result"`
	Form   deposit.View   `json:"form"`
}

func (s *Server) handleDepositPreview(w http.ResponseWriter, r *http.Request) {
	var req depositPreviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.PoolID == "" {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, "pool_id is required")
		return
	}

	pool, ok, err := s.lookupPool(r.Context(), req.DEX, req.PoolID)
	if err != nil {
		s.upstream(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, codeNotFound, "pool "+req.PoolID+" not found")
		return
	}

	session := deposit.NewSession(deposit.PoolFromInfo(pool, s.usdReference(r, pool)),
		deposit.WithMetrics(s.opts.Metrics),
		deposit.WithLogger(s.logger),
	)
	if err := s.fillDeposit(session, req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	res, err := session.Prepare(r.Context())
	if err != nil {
		s.writeError(w, http.StatusConflict, codeConflict, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, depositPreviewResponse{Result: res, Form: session.View()})
}

func (s *Server) fillDeposit(session *deposit.Session, req depositPreviewRequest) error {
	if req.SlippagePercent != 0 {
		if err := session.SetSlippage(req.SlippagePercent); err != nil {
			return err
		}
	}
	session.SetOneSided(req.OneSided)
	session.SelectVault(req.VaultID)
	if req.AmountA != "" {
		if err := session.SetAmountA(req.AmountA); err != nil {
			return fmt.Errorf("amount_a: %w", err)
		}
	}
	if req.AmountB != "" && (req.AmountA == "" || req.OneSided || req.VaultID != "") {
		if err := session.SetAmountB(req.AmountB); err != nil {
			return fmt.Errorf("amount_b: %w", err)
		}
	}

	switch {
	case req.FullRange:
		session.UseFullRange()
	case req.MinPrice != nil && req.MaxPrice != nil:
		if err := session.SetPriceRange(*req.MinPrice, *req.MaxPrice); err != nil {
			return err
		}
	case req.TickLower != nil && req.TickUpper != nil:
		session.SetRange(*req.TickLower, *req.TickUpper)
	}
	return nil
}

func (s *Server) usdReference(r *http.Request, pool model.PoolInfo) *clmm.USDReference {
	if s.opts.Prices == nil {
		return nil
	}
	qa, errA := s.opts.Prices.PriceUSD(r.Context(), pool.TokenA.Address)
	qb, errB := s.opts.Prices.PriceUSD(r.Context(), pool.TokenB.Address)
	if errA != nil || errB != nil {
		return nil
	}
	a, _ := qa.PriceUSD.Float64()
	b, _ := qb.PriceUSD.Float64()
	return &clmm.USDReference{A: a, B: b}
}

type withdrawPreviewRequest struct {
	PositionID      string  `json:"position_id"`
	PoolID          string  `json:"pool_id"`
	Liquidity       string  `json:"liquidity"`
	AmountA         string  `json:"amount_a"`
	AmountB         string  `json:"amount_b"`
	DecimalsA       uint8   `json:"decimals_a"`
	DecimalsB       uint8   `json:"decimals_b"`
	DisplayFeeBps   int     `json:"display_fee_bps"`
	Percent         float64 `json:"percent"`
	SlippagePercent float64 `json:"slippage_percent"`
}

func (s *Server) handleWithdrawPreview(w http.ResponseWriter, r *http.Request) {
	var req withdrawPreviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.SlippagePercent == 0 {
		req.SlippagePercent = deposit.DefaultSlippagePercent
	}

	pos, err := withdraw.ParsePosition(req.PositionID, req.PoolID, req.Liquidity, req.AmountA, req.AmountB, req.DecimalsA, req.DecimalsB)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	pos.DisplayFeeBps = req.DisplayFeeBps
	quote, err := withdraw.Preview(pos, req.Percent, req.SlippagePercent)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, quote)
}
