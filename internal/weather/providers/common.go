package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-resolver/internal/metrics"
	"github.com/i474232898/weather-resolver/internal/weather"
)

// BreakerConfig controls the circuit breaker guarding one endpoint.
// A zero MaxFailures disables the breaker, which is the default.
type BreakerConfig struct {
	MaxFailures uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// DefaultBreakerConfig trips after five consecutive upstream failures.
var DefaultBreakerConfig = BreakerConfig{
	MaxFailures: 5,
	Interval:    1 * time.Minute,
	Timeout:     2 * time.Minute,
}

// HTTPClientConfig bundles the HTTP client and breaker for one provider.
type HTTPClientConfig struct {
	Client  *http.Client
	Breaker BreakerConfig
}

var (
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errClientStatus = errors.New("client error status")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
	errMalformed    = errors.New("malformed response body")
)

// endpoint is one upstream URL, optionally guarded by its own breaker.
type endpoint struct {
	provider string
	name     string
	baseURL  string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

func newCircuit(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.MaxFailures == 0 {
		return nil
	}
	threshold := cfg.MaxFailures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("INFO: circuit %s changed from %s to %s", name, from, to)
		},
	})
}

// countsAsHealthy reports whether err says nothing about upstream health:
// 4xx replies are caused by the query and cancellations by the caller.
func countsAsHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, errClientStatus) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// getJSON issues a single GET and decodes a 2xx JSON body into out. Transport
// errors, non-2xx statuses and undecodable bodies are all reported as
// weather.KindUpstreamUnavailable. No retries are performed.
func (e *endpoint) getJSON(ctx context.Context, query url.Values, out any) error {
	if e.client == nil {
		return weather.UpstreamUnavailable(e.provider+" request failed", errNoHTTPClient)
	}

	start := time.Now()
	err := e.execute(func() error {
		return e.do(ctx, query, out)
	})

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.RecordUpstream(e.provider, e.name, result, time.Since(start).Seconds())

	if err != nil {
		return weather.UpstreamUnavailable(e.provider+" "+e.name+" request failed", err)
	}
	return nil
}

func (e *endpoint) execute(fn func() error) error {
	if e.circuit == nil {
		return fn()
	}

	_, err := e.circuit.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", errCircuitOpen, err)
	}
	return err
}

func (e *endpoint) do(ctx context.Context, query url.Values, out any) error {
	u := e.baseURL
	if len(query) > 0 {
		u = fmt.Sprintf("%s?%s", e.baseURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ctxErr, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %w: %d", errUnexpected, errClientStatus, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}
