// Package pricefeed provides the ETH/USD quote used for display
// conversions. A lookup never fails: when the feed is unavailable the last
// good quote, or else a configured default, is returned instead.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chukwumela909/project-bolt/internal/config"
	"github.com/chukwumela909/project-bolt/internal/logging"
	"github.com/chukwumela909/project-bolt/internal/metrics"
)

// Fallback reasons reported on a Quote and in metrics.
const (
	ReasonTimeout   = "timeout"
	ReasonNetwork   = "network"
	ReasonStatus    = "status"
	ReasonMalformed = "malformed"
)

const maxBodySize = 64 << 10

var errMalformed = errors.New("malformed price response")

// Quote is an ETH price in USD.
type Quote struct {
	USD  decimal.Decimal
	AsOf time.Time

	// Fallback is set when USD did not come from this lookup. Reason says
	// why the lookup failed; Stale is set when USD is the last good quote
	// rather than the configured default.
	Fallback bool
	Stale    bool
	Reason   string
}

// ToUSD converts an ETH amount at this quote.
func (q Quote) ToUSD(eth decimal.Decimal) decimal.Decimal {
	return eth.Mul(q.USD)
}

// coinGeckoResponse is {"ethereum":{"usd":2412.5}}.
type coinGeckoResponse struct {
	Ethereum *struct {
		USD decimal.Decimal `json:"usd"`
	} `json:"ethereum"`
}

// Feed fetches ETH/USD quotes.
type Feed struct {
	url        string
	timeout    time.Duration
	fallback   decimal.Decimal
	httpClient *http.Client
	metrics    *metrics.Collector

	mu   sync.RWMutex
	last *Quote

	now func() time.Time
}

// New creates a feed from cfg. m may be nil.
func New(cfg config.PriceFeedConfig, m *metrics.Collector) *Feed {
	return &Feed{
		url:        cfg.URL,
		timeout:    cfg.Timeout(),
		fallback:   decimal.NewFromFloat(cfg.FallbackUSD),
		httpClient: &http.Client{},
		metrics:    m,
		now:        time.Now,
	}
}

// SetHTTPClient overrides the HTTP client used for lookups.
func (f *Feed) SetHTTPClient(c *http.Client) {
	f.httpClient = c
}

// Last returns the most recent successful quote, if any.
func (f *Feed) Last() (Quote, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.last == nil {
		return Quote{}, false
	}
	return *f.last, true
}

// Quote looks up the current price, falling back on any failure.
func (f *Feed) Quote(ctx context.Context) Quote {
	usd, err := f.fetch(ctx)
	if err == nil {
		q := Quote{USD: usd, AsOf: f.now()}
		f.mu.Lock()
		f.last = &q
		f.mu.Unlock()
		f.metrics.ObservePrice(usd.InexactFloat64(), "")
		return q
	}

	reason := classify(err)
	q := Quote{USD: f.fallback, AsOf: f.now(), Fallback: true, Reason: reason}
	if last, ok := f.Last(); ok {
		q.USD = last.USD
		q.AsOf = last.AsOf
		q.Stale = true
	}

	logging.Warn("ETH price unavailable, using fallback",
		"reason", reason,
		"fallback_usd", q.USD.String(),
		"stale", q.Stale,
		logging.Err(err),
		logging.Component("pricefeed"))
	f.metrics.ObservePrice(q.USD.InexactFloat64(), reason)
	return q
}

func (f *Feed) fetch(ctx context.Context) (decimal.Decimal, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, &statusError{code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read price response: %w", err)
	}

	var cg coinGeckoResponse
	if err := json.Unmarshal(data, &cg); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if cg.Ethereum == nil || !cg.Ethereum.USD.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: missing ethereum.usd", errMalformed)
	}
	return cg.Ethereum.USD, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("price feed returned status %d", e.code)
}

func classify(err error) string {
	var se *statusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &se):
		return ReasonStatus
	case errors.Is(err, errMalformed):
		return ReasonMalformed
	default:
		return ReasonNetwork
	}
}
