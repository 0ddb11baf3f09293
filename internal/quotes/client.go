// Package quotes wraps the upstream market-data API (Alpha Vantage) behind a
// typed client. The API key is configuration; it never appears in logs or in
// errors returned to callers.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"tickerdesk/internal/platform/metrics"
	dErrors "tickerdesk/pkg/domain-errors"
	"tickerdesk/pkg/platform/circuit"
)

// symbolPattern accepts ordinary exchange tickers ("AAPL", "BRK.B").
var symbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.\-]{0,9}$`)

// Point is one bar of the intraday series.
type Point struct {
	Time   string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// IntradaySeries is the decoded TIME_SERIES_INTRADAY response.
type IntradaySeries struct {
	Symbol        string
	LastRefreshed string
	Interval      string
	Points        []Point
}

// Config holds client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the upstream quote API with a bounded timeout and a circuit
// breaker so a dead upstream fails fast instead of stalling every request.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient overrides the HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New constructs a quote client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: circuit.New("quotes-upstream"),
		logger:  slog.Default(),
		tracer:  otel.Tracer("tickerdesk/quotes"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Intraday fetches the 5-minute intraday series for a ticker symbol.
func (c *Client) Intraday(ctx context.Context, symbol string) (*IntradaySeries, error) {
	ctx, span := c.tracer.Start(ctx, "quotes.intraday")
	defer span.End()

	if !symbolPattern.MatchString(symbol) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid ticker symbol")
	}

	if !c.breaker.Allow() {
		c.metrics.ObserveQuote("circuit_open", 0)
		return nil, dErrors.New(dErrors.CodeUnavailable, "market data temporarily unavailable")
	}

	start := time.Now()
	series, err := c.fetch(ctx, symbol)
	elapsed := time.Since(start)

	if err != nil {
		// Upstream rejections (bad symbol, throttling) are not circuit
		// failures; only transport-level errors count.
		if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeTimeout) {
			if change := c.breaker.RecordFailure(); change.Opened {
				c.logger.Warn("quote circuit opened", "breaker", c.breaker.Name())
				c.metrics.SetQuoteCircuitOpen(true)
			}
		}
		c.metrics.ObserveQuote("error", elapsed.Seconds())
		return nil, err
	}

	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("quote circuit closed", "breaker", c.breaker.Name())
		c.metrics.SetQuoteCircuitOpen(false)
	}
	c.metrics.ObserveQuote("ok", elapsed.Seconds())
	c.logger.InfoContext(ctx, "quote fetched",
		"symbol", series.Symbol,
		"points", len(series.Points),
		"duration_ms", elapsed.Milliseconds(),
	)
	return series, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (*IntradaySeries, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_INTRADAY")
	q.Set("symbol", symbol)
	q.Set("interval", "5min")
	q.Set("apikey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build quote request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "market data request timed out")
		}
		// Never wrap the raw error into user-facing text; the URL inside it
		// carries the API key.
		return nil, dErrors.New(dErrors.CodeInternal, "market data request failed")
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("market data returned status %d", resp.StatusCode))
	}

	var payload intradayPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode market data response")
	}

	// Alpha Vantage signals problems in-band with a 200 status.
	if payload.ErrorMessage != "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown ticker symbol")
	}
	if payload.Note != "" || payload.Information != "" {
		return nil, dErrors.New(dErrors.CodeUnavailable, "market data quota exceeded")
	}
	if len(payload.Series) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no data for ticker symbol")
	}

	return payload.toSeries(), nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// intradayPayload mirrors the upstream JSON shape, including its numbered keys.
type intradayPayload struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	MetaData     struct {
		Symbol        string `json:"2. Symbol"`
		LastRefreshed string `json:"3. Last Refreshed"`
		Interval      string `json:"4. Interval"`
	} `json:"Meta Data"`
	Series map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (5min)"`
}

func (p *intradayPayload) toSeries() *IntradaySeries {
	series := &IntradaySeries{
		Symbol:        p.MetaData.Symbol,
		LastRefreshed: p.MetaData.LastRefreshed,
		Interval:      p.MetaData.Interval,
		Points:        make([]Point, 0, len(p.Series)),
	}
	for ts, bar := range p.Series {
		series.Points = append(series.Points, Point{
			Time:   ts,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}
	// Most recent bar first.
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Time > series.Points[j].Time
	})
	return series
}
