// Package serp talks to the SerpApi product-search provider. All
// provider-shape handling lives here; the rest of the engine only sees
// the typed candidate records from internal/domain.
package serp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/dealradar/backend/internal/domain"
)

const maxAttempts = 5

// Client wraps provider calls with bounded retries, exponential backoff
// with jitter, and a courtesy inter-call pacing limiter shared by all
// concurrent callers.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	sleep      func(time.Duration) // injectable for tests
	debug      bool
}

// NewClient creates a provider client. paceDelay is the fixed delay
// applied between independent calls (not retries); hundreds of
// milliseconds is the neighborly value.
func NewClient(apiKey, baseURL string, paceDelay time.Duration) *Client {
	if paceDelay <= 0 {
		paceDelay = 500 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(paceDelay), 1),
		sleep:   time.Sleep,
	}
}

// SetDebug enables request/response logging.
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// Search runs a retailer search and returns adapted candidates. An empty
// result set is not an error; "no match" is a scoring outcome upstream.
func (c *Client) Search(ctx context.Context, source domain.Source, query string) ([]domain.Candidate, error) {
	params := url.Values{}
	switch source {
	case domain.SourceCounterpart:
		params.Set("engine", "amazon")
		params.Set("amazon_domain", "amazon.com")
		params.Set("q", query)
	default:
		params.Set("engine", "walmart")
		params.Set("query", query)
	}
	params.Set("gl", "us")
	params.Set("hl", "en")

	body, err := c.getJSON(ctx, params)
	if err != nil {
		return nil, err
	}
	candidates, err := candidatesFromSearch(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	if c.debug {
		log.Printf("[SERP] %s search %q: %d candidates", source, query, len(candidates))
	}
	return candidates, nil
}

// ProductDetail fetches barcode identifiers and category for one listing.
func (c *Client) ProductDetail(ctx context.Context, source domain.Source, externalID string) (*domain.ProductDetail, error) {
	params := url.Values{}
	params.Set("engine", "walmart_product")
	params.Set("product_id", externalID)
	params.Set("gl", "us")
	params.Set("hl", "en")

	body, err := c.getJSON(ctx, params)
	if err != nil {
		return nil, err
	}
	detail, err := detailFromProduct(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	if c.debug {
		log.Printf("[SERP] product detail %s: identifier=%q category=%q",
			externalID, detail.Identifier, detail.Category)
	}
	return detail, nil
}

// getJSON executes one logical fetch: pacing wait, then up to
// maxAttempts HTTP attempts. Rate limits (429), timeouts, connection
// errors and 5xx responses are retried with backoff; other 4xx fail
// immediately with the upstream status and body for diagnostics.
// Exhausting attempts yields ErrUpstreamUnavailable, which is
// distinguishable from "no match found".
func (c *Client) getJSON(ctx context.Context, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", domain.ErrProviderFailure)
	}
	params.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())

	// Pacing applies between independent fetches, not between retries;
	// the retry loop has its own backoff.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.sleep(backoffDelay(attempt - 1))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "DealRadar/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !retryableNetError(err) {
				return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
			}
			if c.debug {
				log.Printf("[SERP] attempt %d transport error: %v", attempt, err)
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			if c.debug {
				log.Printf("[SERP] attempt %d rate limited", attempt)
			}
			lastErr = domain.ErrRateLimited
		case resp.StatusCode >= 500:
			if c.debug {
				log.Printf("[SERP] attempt %d status %d", attempt, resp.StatusCode)
			}
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
		default:
			// Non-retryable client error; surface status and body.
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrProviderFailure, resp.StatusCode, string(body))
		}
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, lastErr)
}

// backoffDelay computes the delay before retry n: an exponential base of
// 0.6-1.5s doubled per attempt, plus up to 1s of jitter so concurrent
// callers don't retry in lockstep.
func backoffDelay(retry int) time.Duration {
	base := 0.6 + rand.Float64()*0.9
	backoff := base * float64(int(1)<<(retry-1))
	jitter := rand.Float64()
	return time.Duration((backoff + jitter) * float64(time.Second))
}

// retryableNetError reports whether a transport error is worth retrying:
// timeouts and connection-level failures are, everything else is not.
func retryableNetError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
