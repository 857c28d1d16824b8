package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/logger"
)

const (
	// DefaultBaseURL is the Yahoo Finance query host.
	DefaultBaseURL = "https://query2.finance.yahoo.com"

	// DefaultCookieURL hands out the session cookie required for a crumb.
	DefaultCookieURL = "https://fc.yahoo.com"

	// DefaultSymbolSuffix maps B3 tickers to Yahoo symbols (PETR4 -> PETR4.SA).
	DefaultSymbolSuffix = ".SA"

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the default request budget (requests per second).
	DefaultRateLimit = 20

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	quoteModules = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile"
)

// Client is a Yahoo Finance client covering the two lookups the fetcher
// needs: a fundamentals snapshot and a daily closing-price series.
type Client struct {
	baseURL   string
	cookieURL string
	suffix    string
	useCrumb  bool

	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger

	crumbMu sync.Mutex
	crumb   string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL (tests point it at httptest servers).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets a custom HTTP client. A cookie jar is attached when the
// client has none.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit caps the request rate shared by all workers.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithSymbolSuffix sets the exchange suffix appended to every ticker.
func WithSymbolSuffix(suffix string) ClientOption {
	return func(c *Client) { c.suffix = suffix }
}

// WithCrumb enables or disables the cookie/crumb handshake. cookieURL may be
// empty to keep the default.
func WithCrumb(enabled bool, cookieURL string) ClientOption {
	return func(c *Client) {
		c.useCrumb = enabled
		if cookieURL != "" {
			c.cookieURL = cookieURL
		}
	}
}

// NewClient creates a Yahoo Finance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		cookieURL:  DefaultCookieURL,
		suffix:     DefaultSymbolSuffix,
		useCrumb:   true,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		log:        logger.Component("provider"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil) // never fails without options
		c.httpClient.Jar = jar
	}
	return c
}

// Symbol maps a B3 ticker to the provider symbol.
func (c *Client) Symbol(t models.Ticker) string {
	return string(t) + c.suffix
}

// Quote fetches the fundamentals snapshot for t.
func (c *Client) Quote(ctx context.Context, t models.Ticker) (*models.Quote, error) {
	params := url.Values{}
	params.Set("modules", quoteModules)
	if crumb := c.ensureCrumb(ctx); crumb != "" {
		params.Set("crumb", crumb)
	}

	var resp quoteSummaryResponse
	path := "/v10/finance/quoteSummary/" + url.PathEscape(c.Symbol(t))
	if err := c.get(ctx, path, params, &resp); err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusUnauthorized {
			c.resetCrumb()
		}
		return nil, err
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, &APIError{Endpoint: path, Message: e.Code + ": " + e.Description}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &APIError{Endpoint: path, Message: "empty result"}
	}
	return resp.QuoteSummary.Result[0].toQuote(), nil
}

// Closes fetches daily closing prices for t over period, oldest first.
func (c *Client) Closes(ctx context.Context, t models.Ticker, period models.HistoryPeriod) ([]float64, error) {
	params := url.Values{}
	params.Set("range", string(period))
	params.Set("interval", "1d")
	params.Set("includeAdjustedClose", "true")

	var resp chartResponse
	path := "/v8/finance/chart/" + url.PathEscape(c.Symbol(t))
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if e := resp.Chart.Error; e != nil {
		return nil, &APIError{Endpoint: path, Message: e.Code + ": " + e.Description}
	}
	return resp.closes(), nil
}

// get performs a rate-limited GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("provider request")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Endpoint: path, Message: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ensureCrumb returns the cached crumb, fetching it on first use. Failures
// are logged and yield an empty crumb; the request is then sent without one.
func (c *Client) ensureCrumb(ctx context.Context) string {
	if !c.useCrumb {
		return ""
	}
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	if c.crumb != "" {
		return c.crumb
	}

	crumb, err := c.fetchCrumb(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("crumb handshake failed")
		return ""
	}
	c.crumb = crumb
	return crumb
}

func (c *Client) fetchCrumb(ctx context.Context) (string, error) {
	// The cookie endpoint answers 404 but still sets the session cookie.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cookieURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	if resp, err := c.httpClient.Do(req); err == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Endpoint: "/v1/test/getcrumb", Message: strings.TrimSpace(string(body))}
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", fmt.Errorf("unexpected crumb payload")
	}
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.crumbMu.Lock()
	c.crumb = ""
	c.crumbMu.Unlock()
}
