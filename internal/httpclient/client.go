package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"suiLiquidity/internal/metrics"
)

const (
	defaultDialKeepAlive         = 10 * time.Second
	defaultRequestTimeout        = 10 * time.Second
	defaultMaxConnsPerHost       = 5
	defaultIdleConnTimeout       = 2 * time.Minute
	defaultExpectContinueTimeout = 100 * time.Millisecond

	tracerName = "suiLiquidity/httpclient"
)

// Client wraps http.Client with tracing, rate limiting and metrics.
type Client struct {
	client         *http.Client
	providerName   string
	tracer         trace.Tracer
	limiter        *rate.Limiter
	metrics        *metrics.Metrics
	baseURL        string
	defaultHeaders map[string]string
}

// New creates a client.
func New(opts ...ClientOption) *Client {
	options := NewClientOptions(opts...)

	httpClient := options.client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if options.roundTripper != nil {
		httpClient.Transport = options.roundTripper
	} else if httpClient.Transport == nil {
		httpClient.Transport = &http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost:       defaultMaxConnsPerHost,
			IdleConnTimeout:       defaultIdleConnTimeout,
			ExpectContinueTimeout: defaultExpectContinueTimeout,
		}
	}
	if options.requestTimeout != nil {
		httpClient.Timeout = *options.requestTimeout
	}

	httpClient.Transport = otelhttp.NewTransport(
		httpClient.Transport,
		otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx)
		}),
	)

	providerName := options.providerName
	if providerName == "" {
		providerName = "default"
	}

	tracer := options.tracer
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(tracerName)
	}

	return &Client{
		client:         httpClient,
		providerName:   providerName,
		tracer:         tracer,
		limiter:        options.limiter,
		metrics:        options.metrics,
		baseURL:        options.baseURL,
		defaultHeaders: options.headers,
	}
}

// Provider returns the configured provider name.
func (c *Client) Provider() string {
	return c.providerName
}

// NewRequest creates a request builder carrying the default headers.
func (c *Client) NewRequest() *Request {
	return &Request{
		client:  c,
		headers: copyHeaders(c.defaultHeaders),
	}
}

func copyHeaders(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
