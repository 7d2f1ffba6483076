package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/city-weather/internal/weather"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// newCircuitBreaker returns the breaker guarding one upstream endpoint.
// It opens after more than five consecutive failures and probes again after Timeout.
// Cancellation by the caller is not counted as a failure.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		// A cancelled request says nothing about the upstream's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// doRequest executes a single GET through the circuit breaker. There is no
// retry. Every failure is wrapped with weather.ErrTransport.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	rawURL string,
) (*http.Response, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrTransport, errNoHTTPClient)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		var statusErr error
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			statusErr = errRateLimited
		case resp.StatusCode >= 500:
			statusErr = errServerError
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			statusErr = fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}
		if statusErr != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, statusErr
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v: %v", weather.ErrTransport, errCircuitOpen, err)
		}
		return nil, fmt.Errorf("%w: %v", weather.ErrTransport, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", weather.ErrTransport)
	}
	return resp, nil
}

// getJSON fetches rawURL and decodes the body into out.
func getJSON(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, rawURL string, out any) error {
	resp, err := doRequest(ctx, client, cb, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", weather.ErrTransport, err)
	}
	return nil
}
