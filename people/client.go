package people

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/warp/tax-engine/factory"
	"github.com/warp/tax-engine/logging"
	"github.com/warp/tax-engine/tax"
)

// =============================================================================
// REMOTE CLIENT - People service over HTTP
// =============================================================================

// ClientOptions tunes the remote client. Zero values get defaults.
type ClientOptions struct {
	HTTPClient *http.Client
	// CacheTTL is how long a resolved person is reused. Negative disables caching.
	CacheTTL time.Duration
	// RequestsPerSecond throttles outbound lookups. Zero means 20.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Client resolves people from a remote service exposing GET {base}/people/{id}.
// Lookups are cached and rate limited; the caller's correlation id is
// forwarded in the X-Correlation-ID header.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(baseURL string, opts ClientOptions) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 20
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), int(opts.RequestsPerSecond)+1),
		logger:  opts.Logger,
	}
	if opts.CacheTTL > 0 {
		c.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return c
}

func (c *Client) Get(ctx context.Context, id int64) (tax.Person, error) {
	key := strconv.FormatInt(id, 10)
	if c.cache != nil {
		if p, found := c.cache.Get(key); found {
			return p.(tax.Person), nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("people lookup throttled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/people/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build people request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cid := logging.CorrelationID(ctx); cid != "" {
		req.Header.Set(logging.CorrelationIDHeader, cid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("people service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read people response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{ID: id}
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "people service returned non-OK status", "status", resp.Status, "person_id", id)
		return nil, fmt.Errorf("people service returned %s", resp.Status)
	}

	p, err := factory.ParsePerson(body)
	if err != nil {
		return nil, fmt.Errorf("people service returned an unusable record: %w", err)
	}
	if c.cache != nil {
		c.cache.Set(key, p, cache.DefaultExpiration)
	}
	return p, nil
}

var _ Directory = (*Client)(nil)
