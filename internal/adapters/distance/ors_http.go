package distance

import (
	"bytes"
	"context"
	"deadline-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const orsMaxAttempts = 4

// httpStatusError is an ORS response with a 4xx or 5xx status.
type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("ors status %d: %s", e.Code, e.Body)
}

// orsCall describes one logical ORS request. Body is encoded once and
// replayed on every attempt.
type orsCall struct {
	method   string
	endpoint string
	query    url.Values
	body     any
}

// fetchJSON runs c through the breaker and retry loop and decodes the JSON
// response into out.
func (o *ORSProvider) fetchJSON(ctx context.Context, c orsCall, out any) error {
	var payload []byte
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("encode ors request: %w", err)
		}
		payload = b
	}

	// One breaker outcome per logical call, however many attempts it took.
	res, err := o.breaker.Execute(func() (interface{}, error) {
		return o.attempts(ctx, c, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrORSUnavailable
	}
	if err != nil {
		return err
	}

	body := res.([]byte)
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode ors response: %w", err)
	}
	return nil
}

// attempts sends the request until it succeeds, fails permanently or runs
// out of attempts, doubling the wait between tries.
func (o *ORSProvider) attempts(ctx context.Context, c orsCall, payload []byte) ([]byte, error) {
	wait := o.backoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := o.send(ctx, c, payload)
		if err == nil {
			return body, nil
		}
		if !retryable(err) || attempt == orsMaxAttempts {
			return nil, err
		}

		log.Printf("req_id=%s ors retry endpoint=%s attempt=%d wait=%s err=%v",
			obs.RequestID(ctx), c.endpoint, attempt, wait, err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}

func (o *ORSProvider) send(ctx context.Context, c orsCall, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create ors request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(c.query) > 0 {
		req.URL.RawQuery = c.query.Encode()
	}

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ors response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return b, nil
}

// retryable reports whether err is a network failure, a rate limit or a
// server-side error.
func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
