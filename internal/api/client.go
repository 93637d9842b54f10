package api

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

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ObjCodingDevMart/storefront/pkg/circuitbreaker"
	"github.com/ObjCodingDevMart/storefront/pkg/logger"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker circuitbreaker.Config
}

// Client talks to the commerce backend. A Client is bound to at most one
// user token; use WithToken to derive per-user clients sharing transport
// and circuit breaker.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.Breaker[rawResponse]
	token   string
	log     *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	hc := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewWithHTTPClient(cfg, hc, log)
}

func NewWithHTTPClient(cfg Config, hc *http.Client, log *zap.Logger) *Client {
	log = logger.OrNop(log)
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		breaker: circuitbreaker.New[rawResponse]("commerce-backend", cfg.Breaker, log),
		log:     log,
	}
}

func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type requestIDKey struct{}

// WithRequestID makes outgoing calls made with ctx carry id as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// envelope wraps every backend response.
type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type rawResponse struct {
	status int
	body   []byte
}

// statusError marks 5xx answers as failures for the breaker while keeping
// the body, which usually still holds an envelope.
type statusError struct {
	resp rawResponse
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.resp.status)
}

type call struct {
	method  string
	path    string
	body    any
	out     any
	headers map[string]string
}

// do executes c and decodes the envelope. It returns the envelope message
// on success.
func (c *Client) do(ctx context.Context, cl call) (string, error) {
	log := logger.FromContext(ctx, c.log).With(
		zap.String("method", cl.method),
		zap.String("path", cl.path))

	var reader io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return "", transportError(fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reader)
	if err != nil {
		return "", transportError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", requestID(ctx))
	for k, v := range cl.headers {
		req.Header.Set(k, v)
	}

	raw, err := c.breaker.Execute(func() (rawResponse, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return rawResponse{}, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return rawResponse{}, fmt.Errorf("read body: %w", err)
		}
		r := rawResponse{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return r, &statusError{resp: r}
		}
		return r, nil
	})
	var se *statusError
	switch {
	case errors.As(err, &se):
		raw = se.resp
	case err != nil:
		log.Warn("backend call failed", zap.Error(err))
		return "", transportError(err)
	}

	var env envelope
	if err := json.Unmarshal(raw.body, &env); err != nil {
		log.Warn("undecodable backend response", zap.Int("status", raw.status), zap.Error(err))
		return "", &Error{Status: raw.status, Message: MsgGeneric, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if !env.Success || raw.status >= http.StatusBadRequest {
		log.Info("backend rejected request",
			zap.Int("status", raw.status),
			zap.String("code", env.Code),
			zap.String("message", env.Message))
		return "", &Error{Status: raw.status, Code: env.Code, Message: orGeneric(env.Message)}
	}

	if cl.out != nil && len(env.Result) > 0 && string(env.Result) != "null" {
		if err := json.Unmarshal(env.Result, cl.out); err != nil {
			return "", &Error{Status: raw.status, Message: MsgGeneric, Err: fmt.Errorf("decode result: %w", err)}
		}
	}
	return env.Message, nil
}
