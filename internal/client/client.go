package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/chukwumela909/project-bolt/internal/config"
	"github.com/chukwumela909/project-bolt/internal/logging"
	"github.com/chukwumela909/project-bolt/internal/metrics"
	"github.com/chukwumela909/project-bolt/internal/util"
	"github.com/chukwumela909/project-bolt/pkg/types"
)

// Backend endpoints, relative to the base URL and before the path suffix.
const (
	EndpointLogin      = "/auth/login"
	EndpointUserData   = "/auth/user-data"
	EndpointPlans      = "/investment/plans"
	EndpointListStakes = "/investment/list-stakes"
	EndpointStake      = "/investment/stake"
	EndpointUnstake    = "/investment/unstake"
	EndpointRestake    = "/investment/restake"
	EndpointWithdraw   = "/withdrawal/create"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// TokenSource supplies the current session token. An empty token with a
// nil error means the user is logged out.
type TokenSource interface {
	Token() (string, error)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	PathSuffix string
	APIKey     string
	Timeout    time.Duration

	// RateLimit paces outbound requests; zero disables pacing.
	RateLimit rate.Limit
	Burst     int

	// ReadRetries is how many times an idempotent read is retried on a
	// network failure or gateway error. Mutations are never retried.
	ReadRetries    int
	RetryBaseDelay time.Duration

	HTTPClient *http.Client
	Metrics    *metrics.Collector
}

// OptionsFromConfig maps the api config section onto client options.
func OptionsFromConfig(cfg config.APIConfig) Options {
	return Options{
		BaseURL:        cfg.BaseURL,
		PathSuffix:     cfg.PathSuffix,
		APIKey:         cfg.APIKey,
		Timeout:        cfg.Timeout(),
		RateLimit:      rate.Limit(cfg.RateLimitPerSec),
		Burst:          cfg.RateLimitBurst,
		ReadRetries:    cfg.ReadRetries,
		RetryBaseDelay: cfg.RetryBaseDelay(),
	}
}

// Client talks to the staking backend. It is safe for concurrent use and
// holds no state besides its configuration.
type Client struct {
	baseURL    string
	pathSuffix string
	apiKey     string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      *util.RetryConfig
	metrics    *metrics.Collector
}

// New creates a backend client. tokens may be nil for clients that only
// call unauthenticated endpoints (plans, login).
func New(opts Options, tokens TokenSource) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}

	retry := util.ReadRetryConfig(opts.ReadRetries, opts.RetryBaseDelay)
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		logging.Debug("retrying backend read",
			"attempt", attempt,
			"delay", delay,
			logging.Err(err),
			logging.Component("client"))
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		pathSuffix: opts.PathSuffix,
		apiKey:     opts.APIKey,
		tokens:     tokens,
		httpClient: httpClient,
		limiter:    limiter,
		retry:      retry,
		metrics:    opts.Metrics,
	}
}

// token returns the session token or ErrNotAuthenticated.
func (c *Client) token() (string, error) {
	if c.tokens == nil {
		return "", ErrNotAuthenticated
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	if tok == "" {
		return "", ErrNotAuthenticated
	}
	return tok, nil
}

// do performs one request and returns the raw 2xx body.
func (c *Client) do(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	start := time.Now()
	respBody, err := c.roundTrip(ctx, method, endpoint, body)
	c.metrics.ObserveRequest(endpoint, classify(err), time.Since(start))
	if err != nil {
		logging.DebugContext(ctx, "backend request failed",
			logging.Endpoint(endpoint), logging.Err(err), logging.Component("client"))
	}
	return respBody, err
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Endpoint: endpoint, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint+c.pathSuffix, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, util.MarkRetryable(&NetworkError{Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, util.MarkRetryable(&NetworkError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response: %w", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Endpoint: endpoint, Status: resp.StatusCode}
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Message = errResp.Message
			if apiErr.Message == "" {
				apiErr.Message = errResp.Error
			}
		}
		switch resp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return nil, util.MarkRetryable(apiErr)
		}
		return nil, apiErr
	}

	return respBody, nil
}

func classify(err error) string {
	var (
		apiErr *APIError
		netErr *NetworkError
		decErr *DecodeError
	)
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.As(err, &apiErr):
		return metrics.ResultRejected
	case errors.As(err, &decErr):
		return metrics.ResultDecode
	case errors.As(err, &netErr):
		return metrics.ResultNetwork
	default:
		return metrics.ResultNetwork
	}
}

// read performs an idempotent request with retries and decodes the body into out.
func (c *Client) read(ctx context.Context, method, endpoint string, body, out any) error {
	data, result := util.RetryWithValue(ctx, c.retry, func() ([]byte, error) {
		return c.do(ctx, method, endpoint, body)
	})
	if result.LastError != nil {
		return unwrapRetry(result.LastError)
	}
	return decodeBody(endpoint, data, out)
}

// write performs a mutation exactly once.
func (c *Client) write(ctx context.Context, endpoint string, body, out any) error {
	data, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeBody(endpoint, data, out)
}

// unwrapRetry strips the retry bookkeeping so callers see the typed error.
func unwrapRetry(err error) error {
	var (
		apiErr *APIError
		netErr *NetworkError
	)
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.As(err, &netErr) {
		return netErr
	}
	return err
}

func decodeBody(endpoint string, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Index: -1, Err: err}
	}
	return nil
}

// UserData fetches the aggregate account record.
func (c *Client) UserData(ctx context.Context) (*types.User, error) {
	tok, err := c.token()
	if err != nil {
		return nil, err
	}
	var w wireUser
	if err := c.read(ctx, http.MethodPost, EndpointUserData, tokenBody{Token: tok}, &w); err != nil {
		return nil, err
	}
	return w.user(EndpointUserData)
}

// Plans fetches the plan catalog. No session is needed.
func (c *Client) Plans(ctx context.Context) ([]types.Plan, error) {
	var wire []wirePlan
	if err := c.read(ctx, http.MethodGet, EndpointPlans, nil, &wire); err != nil {
		return nil, err
	}
	plans := make([]types.Plan, 0, len(wire))
	for i, w := range wire {
		p, err := w.plan(EndpointPlans, i)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// ListStakes fetches every stake of the session's user. A single malformed
// record fails the whole list.
func (c *Client) ListStakes(ctx context.Context) ([]types.StakeRecord, error) {
	tok, err := c.token()
	if err != nil {
		return nil, err
	}
	var resp listStakesResponse
	if err := c.read(ctx, http.MethodPost, EndpointListStakes, tokenBody{Token: tok}, &resp); err != nil {
		return nil, err
	}
	stakes := make([]types.StakeRecord, 0, len(resp.Stakes))
	for i, w := range resp.Stakes {
		s, err := w.record(EndpointListStakes, i)
		if err != nil {
			return nil, err
		}
		stakes = append(stakes, s)
	}
	return stakes, nil
}

// IssueDepositAddress asks the backend for a deposit address for planID.
func (c *Client) IssueDepositAddress(ctx context.Context, planID string) (string, error) {
	tok, err := c.token()
	if err != nil {
		return "", err
	}
	var resp depositResponse
	if err := c.write(ctx, EndpointStake, stakeBody{Token: tok, PlanID: planID}, &resp); err != nil {
		return "", err
	}
	if !resp.DepositAddress.present() {
		return "", &DecodeError{Endpoint: EndpointStake, Field: "deposit_address", Index: -1, Err: errMissing}
	}
	return resp.DepositAddress.Value, nil
}

// Unstake requests an early exit of req.Amount from a stake.
func (c *Client) Unstake(ctx context.Context, req types.UnstakeRequest) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	return c.write(ctx, EndpointUnstake, unstakeBody{
		Token:         tok,
		StakeID:       req.StakeID,
		WalletAddress: req.WalletAddress,
		UnstakeAmount: req.Amount.String(),
	}, nil)
}

// Restake asks the backend to renew a stake's lock term.
func (c *Client) Restake(ctx context.Context, stakeID string) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	return c.write(ctx, EndpointRestake, restakeBody{Token: tok, StakeID: stakeID}, nil)
}

// Withdraw requests a payout of referral earnings.
func (c *Client) Withdraw(ctx context.Context, req types.WithdrawRequest) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	return c.write(ctx, EndpointWithdraw, withdrawBody{
		Token:      tok,
		Amount:     req.Amount.String(),
		EthAddress: req.EthAddress,
	}, nil)
}

// LoginResult is a successful credential exchange.
type LoginResult struct {
	Token  string
	UserID string
	Email  string
	Name   string
}

// Login exchanges email and password for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	if err := c.write(ctx, EndpointLogin, loginBody{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if !resp.Token.present() {
		return nil, &DecodeError{Endpoint: EndpointLogin, Field: "token", Index: -1, Err: errMissing}
	}

	result := &LoginResult{Token: resp.Token.Value, Email: email}
	if u := resp.User; u != nil {
		result.UserID = u.ID.Value
		if u.Email.Value != "" {
			result.Email = u.Email.Value
		}
		result.Name = u.FullName.Value
		if result.Name == "" {
			result.Name = u.Name.Value
		}
	}
	return result, nil
}
