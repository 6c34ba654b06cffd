package node

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/chainclient/pkg/errors"
	"github.com/DeBrosOfficial/chainclient/pkg/logging"
	"github.com/DeBrosOfficial/chainclient/pkg/metrics"
)

// maxBodySize caps how much of a response body is read.
var maxBodySize int64 = 16 << 20

// ErrResponseTooLarge is returned when a node response body exceeds maxBodySize.
var ErrResponseTooLarge = stderrors.New("response body too large")

var errRateLimited = stderrors.New("rate limit wait exceeds deadline")

type response struct {
	status int
	body   []byte
}

// addAuthHeaders adds authentication headers to the request
func (c *Client) addAuthHeaders(req *http.Request) {
	// Prefer JWT if available
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
		return
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

// do sends one request bounded by timeout and returns the status and body.
// Failures before a full response exists come back as TimeoutError or
// TransportError; non-success statuses are left to the caller.
func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}, timeout time.Duration) (*response, error) {
	var jsonBody []byte
	if payload != nil {
		var err error
		jsonBody, err = json.Marshal(payload)
		if err != nil {
			return nil, errors.NewInternalError("failed to marshal request", err).WithOperation(op)
		}
	}

	budget := effectiveTimeout(ctx, timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.roundTrip(ctx, method, path, jsonBody)
	if err != nil {
		outcome := metrics.OutcomeTransport
		if ctx.Err() == context.DeadlineExceeded || stderrors.Is(err, context.DeadlineExceeded) ||
			stderrors.Is(err, errRateLimited) {
			outcome = metrics.OutcomeTimeout
			err = errors.NewTimeoutError(op, budget, err)
		} else {
			err = errors.NewTransportError(op, err)
		}
		c.metrics.ObserveNodeRequest(op, outcome, time.Since(start))
		c.logger.ComponentWarn(logging.ComponentNode, "Node request failed",
			zap.String("operation", op),
			zap.String("path", path),
			zap.String("code", errors.GetErrorCode(err)),
			zap.Error(err))
		return nil, err
	}

	outcome := metrics.OutcomeSuccess
	if resp.status != http.StatusOK && resp.status != http.StatusAccepted {
		outcome = metrics.OutcomeRejected
	}
	c.metrics.ObserveNodeRequest(op, outcome, time.Since(start))
	c.logger.ComponentDebug(logging.ComponentNode, "Node request completed",
		zap.String("operation", op),
		zap.Int("status", resp.status),
		zap.Duration("duration", time.Since(start)))
	return resp, nil
}

// effectiveTimeout is the earlier of timeout and the time left before the
// caller's deadline.
func effectiveTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return timeout
	}
	left := time.Until(deadline)
	if left < 0 {
		return 0
	}
	if left < timeout {
		return left
	}
	return timeout
}

func (c *Client) roundTrip(ctx context.Context, method, path string, jsonBody []byte) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", errRateLimited, err)
		}
	}

	var body io.Reader
	if jsonBody != nil {
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxBodySize)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}
