// Package client issues JSON requests against the RPG admin API and
// classifies their outcome.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "rpgpanel/internal/errors"
)

const maxBodyBytes = 8 << 20

var tracer = otel.Tracer("rpgpanel/client")

// TokenSource yields the bearer token for the next request. An empty
// token means the request goes out unauthenticated.
type TokenSource func(ctx context.Context) (string, error)

type messageFieldKey struct{}

// WithMessageField names the body field that carries the error message of
// rejections sent under ctx. "message" and "error" are still tried after it.
func WithMessageField(ctx context.Context, field string) context.Context {
	if field == "" {
		return ctx
	}
	return context.WithValue(ctx, messageFieldKey{}, field)
}

func messageField(ctx context.Context) string {
	field, _ := ctx.Value(messageFieldKey{}).(string)
	return field
}

// StaticToken always returns token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Response is a decoded 2xx reply. Body is whatever the JSON decoded to;
// non-JSON bodies are kept as a string and empty bodies as nil.
type Response struct {
	Status int
	Body   any
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do sends one request. Transport failures come back as NETWORK_ERROR and
// non-2xx statuses as SERVER_REJECTED carrying the body's message. There
// are no retries.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	ctx, span := tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, "encoding request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.Network(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading credentials: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, apperrors.Network(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reading body")
		return nil, apperrors.Network(err)
	}
	decoded := decodeBody(data)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rejected := apperrors.WithMetadata(apperrors.CodeServerRejected, messageFrom(decoded, messageField(ctx), resp.StatusCode), map[string]string{
			"status": strconv.Itoa(resp.StatusCode),
		})
		span.SetStatus(codes.Error, rejected.Message)
		return nil, rejected
	}

	return &Response{Status: resp.StatusCode, Body: decoded}, nil
}

func decodeBody(data []byte) any {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return string(trimmed)
	}
	return decoded
}

func messageFrom(body any, field string, status int) string {
	if obj, ok := body.(map[string]any); ok {
		for _, key := range []string{field, "message", "error"} {
			if key == "" {
				continue
			}
			if msg, ok := obj[key].(string); ok && strings.TrimSpace(msg) != "" {
				return msg
			}
		}
	}
	if status > 0 {
		return fmt.Sprintf("request failed with status %d", status)
	}
	return "request rejected"
}
