// Package server exposes the desk over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/portfolio"
	"suiLiquidity/internal/price"
)

type PoolSource interface {
	Fetch(ctx context.Context, dex string) ([]model.PoolInfo, error)
	FetchAll(ctx context.Context) ([]model.PoolInfo, error)
	DEXes() []string
}

type TokenResolver interface {
	Resolve(ctx context.Context, coinType string) (model.TokenMetadata, error)
}

type PriceLookup interface {
	PriceUSD(ctx context.Context, coinType string) (price.Quote, error)
}

type PortfolioValuer interface {
	Value(ctx context.Context, owner string) (portfolio.Summary, error)
}

// Options wires the server. Nil sources disable their endpoints with 503.
type Options struct {
	Pools     PoolSource
	Tokens    TokenResolver
	Prices    PriceLookup
	Portfolio PortfolioValuer
	Gatherer  prometheus.Gatherer
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

type Server struct {
	opts   Options
	logger *zap.Logger

	mu    sync.RWMutex
	index map[string]model.PoolInfo
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{opts: opts, logger: logger, index: make(map[string]model.PoolInfo)}
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/pools", s.handlePools)
	mux.HandleFunc("GET /api/tokens/{coinType}", s.handleToken)
	mux.HandleFunc("GET /api/prices/{coinType}", s.handlePrice)
	mux.HandleFunc("GET /api/portfolio/{owner}", s.handlePortfolio)
	mux.HandleFunc("GET /api/tick-range", s.handleTickRange)
	mux.HandleFunc("POST /api/deposit/preview", s.handleDepositPreview)
	mux.HandleFunc("POST /api/withdraw/preview", s.handleWithdrawPreview)
	if s.opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return otelhttp.NewHandler(s.logRequests(mux), "desk.api")
}

// Serve runs the API on addr until ctx is done, then shuts down within
// shutdownTimeout.
func (s *Server) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		}
		switch {
		case r.Context().Err() != nil:
			s.logger.Debug("request aborted", fields...)
		case rec.status >= http.StatusInternalServerError:
			s.logger.Warn("request failed", fields...)
		default:
			s.logger.Debug("request", fields...)
		}
	})
}

func (s *Server) remember(list []model.PoolInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range list {
		s.index[p.PoolID] = p
	}
}

func (s *Server) lookupPool(ctx context.Context, dex, poolID string) (model.PoolInfo, bool, error) {
	s.mu.RLock()
	p, ok := s.index[poolID]
	s.mu.RUnlock()
	if ok || s.opts.Pools == nil || dex == "" {
		return p, ok, nil
	}

	list, err := s.opts.Pools.Fetch(ctx, dex)
	if err != nil {
		return model.PoolInfo{}, false, err
	}
	s.remember(list)
	for _, p := range list {
		if p.PoolID == poolID {
			return p, true, nil
		}
	}
	return model.PoolInfo{}, false, nil
}
