package server

import (
	"errors"
	"net/http"

	"suiLiquidity/internal/model"
	"suiLiquidity/internal/pools"
	"suiLiquidity/internal/portfolio"
	"suiLiquidity/internal/price"
	"suiLiquidity/internal/token"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type poolsResponse struct {
	DEXes []string         `json:"dexes"`
	Pools []model.PoolInfo `json:"pools"`
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	if s.opts.Pools == nil {
		s.unavailable(w, "pool source")
		return
	}

	dexName := r.URL.Query().Get("dex")
	var (
		list []model.PoolInfo
		err  error
	)
	if dexName == "" {
		list, err = s.opts.Pools.FetchAll(r.Context())
	} else {
		list, err = s.opts.Pools.Fetch(r.Context(), dexName)
	}
	s.remember(list)
	if errors.Is(err, pools.ErrUnsupportedDEX) {
		s.writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		return
	}
	if err != nil {
		s.upstream(w, r, err)
		return
	}
	if list == nil {
		list = []model.PoolInfo{}
	}
	s.writeJSON(w, http.StatusOK, poolsResponse{DEXes: s.opts.Pools.DEXes(), Pools: list})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.opts.Tokens == nil {
		s.unavailable(w, "token resolver")
		return
	}
	coinType := r.PathValue("coinType")
	if _, err := token.CanonicalAddress(coinType); err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	meta, err := s.opts.Tokens.Resolve(r.Context(), coinType)
	if err != nil {
		s.upstream(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if s.opts.Prices == nil {
		s.unavailable(w, "price service")
		return
	}
	coinType := r.PathValue("coinType")
	if _, err := token.CanonicalAddress(coinType); err != nil {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	q, err := s.opts.Prices.PriceUSD(r.Context(), coinType)
	if errors.Is(err, price.ErrNoPrice) {
		s.writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		return
	}
	if err != nil {
		s.upstream(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, q)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if s.opts.Portfolio == nil {
		s.unavailable(w, "portfolio")
		return
	}
	summary, err := s.opts.Portfolio.Value(r.Context(), r.PathValue("owner"))
	if errors.Is(err, portfolio.ErrInvalidOwner) {
		s.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if err != nil {
		s.upstream(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}
