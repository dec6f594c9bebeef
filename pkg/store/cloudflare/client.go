package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL   = "https://api.cloudflare.com/client/v4"
	defaultUserAgent = "traffic-atlas/1.0"
	defaultTimeout   = 30 * time.Second
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a thin Cloudflare v4 API client. It performs exactly one attempt per call.
type Client struct {
	BaseURL   string
	HTTP      HTTPClient
	UserAgent string
}

func NewClient(httpClient HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		HTTP:      httpClient,
		UserAgent: defaultUserAgent,
	}
}

type request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Token  string
}

// Message is an error or info entry of a Cloudflare payload.
type Message struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// ResultInfo is the pagination block of list responses.
type ResultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
}

// envelope is the common v4 REST response wrapper.
type envelope struct {
	Success    bool            `json:"success"`
	Errors     []Message       `json:"errors"`
	Result     json.RawMessage `json:"result"`
	ResultInfo *ResultInfo     `json:"result_info"`
}

// send performs the request and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	if req.Token == "" {
		return nil, ErrMissingToken
	}

	endpoint, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse cloudflare base url: %w", err)
	}
	endpoint.Path = path.Join(endpoint.Path, strings.TrimPrefix(req.Path, "/"))
	if len(req.Query) > 0 {
		endpoint.RawQuery = req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build cloudflare request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.UserAgent)

	logger.Debug().
		Str("method", req.Method).
		Str("path", endpoint.Path).
		Msg("cloudflare request")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env envelope
		if json.Unmarshal(body, &env) == nil {
			apiErr.Errors = env.Errors
		}
		return nil, apiErr
	}

	return body, nil
}

// getEnvelope performs a REST call and unwraps the v4 envelope, failing on success=false.
func (c *Client) getEnvelope(ctx context.Context, req request) (*envelope, error) {
	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !env.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Errors: env.Errors}
	}

	return &env, nil
}
