package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/shared"
)

const (
	requestTimeout = 5 * time.Second
	maxAttempts    = 3
	retryDelay     = 500 * time.Millisecond
)

// fetcher wraps an http.Client with the uniform provider retry policy:
// a fixed per-request timeout, up to maxAttempts attempts with a fixed
// delay, retrying only on timeout, connection failure, or 5xx responses.
// 4xx responses are returned immediately as client errors.
type fetcher struct {
	tag    Tag
	client *http.Client
	logger *log.Logger
}

func newFetcher(tag Tag, client *http.Client, logger *log.Logger) fetcher {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return fetcher{tag: tag, client: client, logger: logger.With("provider", tag)}
}

// getJSON issues the request produced by newReq, retrying per policy, and
// decodes a successful JSON response into out. Failures after the retry
// budget is exhausted surface as a typed [*Error].
func (f fetcher) getJSON(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error), out any) error {
	var last *Error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			f.logger.Debug("retrying provider request", "attempt", attempt, "cause", last.Cause)
			select {
			case <-ctx.Done():
				return &Error{Provider: f.tag, Kind: shared.ErrProviderTimeout, Cause: ctx.Err()}
			case <-time.After(retryDelay):
			}
		}

		req, err := newReq(ctx)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			kind := shared.ErrProviderConnection
			if isTimeout(err) {
				kind = shared.ErrProviderTimeout
			}
			last = &Error{Provider: f.tag, Kind: kind, Cause: err}
			continue
		}

		if resp.StatusCode >= 500 {
			last = &Error{Provider: f.tag, Kind: shared.ErrProviderServer, Status: resp.StatusCode, Cause: statusError(resp)}
			continue
		}

		if resp.StatusCode >= 400 {
			return &Error{Provider: f.tag, Kind: shared.ErrProviderClient, Status: resp.StatusCode, Cause: statusError(resp)}
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", f.tag, err)
		}
		return nil
	}

	return last
}

// statusError reads a bounded prefix of the response body into the error
// message and closes the body.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	resp.Body.Close()
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, trimmed)
	}
	return fmt.Errorf("status %d", resp.StatusCode)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// toleratedStatus reports whether a client error on a recommendation
// endpoint means "no recommendations available" rather than a hard failure.
func toleratedStatus(err error) bool {
	var perr *Error
	if !errors.As(err, &perr) {
		return false
	}
	switch perr.Status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
