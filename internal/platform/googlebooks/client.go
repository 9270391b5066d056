// Package googlebooks is a client for the Google Books volumes search API.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"booksearch/internal/platform/breaker"
)

const maxBodyBytes = 4 << 20

var (
	// ErrMissingKey is returned when no API key is configured and keyless
	// access is not allowed.
	ErrMissingKey = errors.New("googlebooks: missing API key")
	// ErrMalformedResponse is returned when the body is not the expected JSON.
	ErrMalformedResponse = errors.New("googlebooks: malformed response")
)

// StatusError reports a non-200 reply.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("googlebooks: unexpected status code: %d", e.StatusCode)
}

type Config struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	RPS        float64
	MaxRetries uint
	// KeylessFallback retries a request rejected with 403 once without the key,
	// and allows running with no key at all.
	KeylessFallback bool
	HTTPClient      *http.Client
}

type Client struct {
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	userAgent       string
	limiter         *rate.Limiter
	maxRetries      uint
	keylessFallback bool
	cb              *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		// Callers bound each search with a context deadline; this only guards
		// against requests made without one.
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		httpClient:      hc,
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		userAgent:       cfg.UserAgent,
		limiter:         rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:      cfg.MaxRetries,
		keylessFallback: cfg.KeylessFallback,
		cb:              breaker.New[[]byte]("google-books", breaker.Settings{}),
	}
}

// SearchVolumes runs a volumes query. Network errors and 5xx replies are
// retried up to MaxRetries times within ctx; every other failure is returned
// as is.
func (c *Client) SearchVolumes(ctx context.Context, query string, maxResults int) (*SearchResult, error) {
	if c.apiKey == "" && !c.keylessFallback {
		return nil, ErrMissingKey
	}

	body, err := c.fetch(ctx, c.searchURL(query, maxResults, c.apiKey))
	var se *StatusError
	if err != nil && c.apiKey != "" && c.keylessFallback && errors.As(err, &se) && se.StatusCode == http.StatusForbidden {
		body, err = c.fetch(ctx, c.searchURL(query, maxResults, ""))
	}
	if err != nil {
		return nil, err
	}
	return ParseSearch(body)
}

func (c *Client) searchURL(query string, maxResults int, key string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("maxResults", fmt.Sprint(maxResults))
	v.Set("printType", "books")
	v.Set("maxAllowedMaturityRating", "not-mature")
	if key != "" {
		v.Set("key", key)
	}
	return c.baseURL + "/volumes?" + v.Encode()
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	return c.cb.Execute(func() ([]byte, error) {
		var body []byte
		err := retry.Do(
			func() error {
				b, err := c.get(ctx, u)
				if err != nil {
					return err
				}
				body = b
				return nil
			},
			retry.Context(ctx),
			retry.Attempts(c.maxRetries+1),
			retry.Delay(200*time.Millisecond),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(retryable),
		)
		return body, err
	})
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}
