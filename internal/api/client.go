package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// defaultTimeout bounds every request so a hung call cannot wedge a caller.
const defaultTimeout = 15 * time.Second

// TokenSource yields the current session token. session.Store satisfies it.
type TokenSource interface {
	Token() (string, bool)
}

// Client performs HTTP calls against the storefront API with consistent
// headers, body encoding and response normalization. It does no caching;
// callers own their own state.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do issues one request and decodes the response into out (which may be nil,
// a *json.RawMessage, a *string for opaque text, or any JSON-decodable
// value). Non-success statuses come back as *Error; transport failures come
// back as *Error with KindNetwork.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	reader, contentType, err := encodeBody(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	// The Authorization header is attached only when a token actually
	// exists. Sending a bearer value built from a missing token can make
	// the server reject a request that should have been anonymous.
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, parseJSONObject(data))
	}

	return decodeResponse(resp.Header.Get("Content-Type"), data, out)
}

// encodeBody serializes structured bodies to JSON; pre-serialized ([]byte)
// and streaming (io.Reader) bodies pass through untouched with no content
// type forced on them.
func encodeBody(body interface{}) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// decodeResponse interprets the body by declared content type. A JSON body
// that fails to parse yields an empty payload rather than an error.
func decodeResponse(contentType string, data []byte, out interface{}) error {
	if out == nil {
		return nil
	}

	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}

	if isJSON(contentType) {
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			// Tolerated: callers get the zero value, same as an
			// empty response.
			return nil
		}
		return nil
	}

	if text, ok := out.(*string); ok {
		*text = string(data)
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// parseJSONObject decodes an error response body, yielding nil for anything
// that is not a JSON object.
func parseJSONObject(data []byte) map[string]interface{} {
	if len(data) == 0 {
		return nil
	}
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	return body
}
