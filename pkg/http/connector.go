package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// jsonAPI sorts map keys so identical requests produce identical bodies
var jsonAPI = sonic.Config{
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	return &Connector{
		baseURL:    config.BaseURL,
		httpClient: newClient(options...),
		logger:     config.Logger,
	}
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     map[string]string
	overrideURL string
	maxBodySize int64
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

func WithURL(url string) RequestOpt {
	return func(c *requestConfig) {
		c.overrideURL = url
	}
}

// WithMaxBodySize limits how many response bytes are read
func WithMaxBodySize(size int64) RequestOpt {
	return func(c *requestConfig) {
		c.maxBodySize = size
	}
}

// Marshal encodes v with the connector codec
func Marshal(v any) ([]byte, error) {
	return jsonAPI.Marshal(v)
}

// Unmarshal decodes data with the connector codec, numbers are kept as json.Number
func Unmarshal(data []byte, v any) error {
	return jsonAPI.Unmarshal(data, v)
}

func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	var rawBody []byte
	if reqBody != nil {
		jsonData, err := Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rawBody = jsonData
	}

	headers := []RequestOpt{WithHeader("Accept", "application/json")}
	if reqBody != nil {
		headers = append(headers, WithHeader("Content-Type", "application/json"))
	}

	bodyBytes, err := c.do(ctx, method, endpoint, rawBody, append(headers, opts...)...)
	if err != nil {
		return err
	}

	// Decode response if needed
	if respBody != nil && len(bodyBytes) > 0 {
		if err := Unmarshal(bodyBytes, respBody); err != nil {
			return &DecodeError{Err: err, Body: bodyBytes}
		}
	}

	return nil
}

// DoRaw performs a request and returns the raw response body
func (c *Connector) DoRaw(ctx context.Context, method, endpoint string, opts ...RequestOpt) ([]byte, error) {
	return c.do(ctx, method, endpoint, nil, opts...)
}

func (c *Connector) do(ctx context.Context, method, endpoint string, rawBody []byte, opts ...RequestOpt) ([]byte, error) {
	// Apply request options
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Use override URL if provided, otherwise use baseURL + endpoint
	var url string
	if cfg.overrideURL != "" {
		url = cfg.overrideURL
	} else {
		url = c.baseURL + endpoint
	}

	var bodyReader io.Reader
	if rawBody != nil {
		bodyReader = bytes.NewReader(rawBody)
		// Attach payload to context for logging transport
		ctx = context.WithValue(ctx, payloadContextKey{}, rawBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if cfg.maxBodySize > 0 {
		body = io.LimitReader(resp.Body, cfg.maxBodySize)
	}

	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    truncate(string(bodyBytes), 512),
		}
	}

	return bodyBytes, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError represents a response body that could not be decoded
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
