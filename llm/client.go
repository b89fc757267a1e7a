package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexschlessinger/vanillachat/auth"
	"github.com/alexschlessinger/vanillachat/llm/adapters"
	"github.com/alexschlessinger/vanillachat/llm/streaming"
	"github.com/alexschlessinger/vanillachat/messages"
	"go.uber.org/zap"
)

var _ LLM = (*Client)(nil)

// ClientConfig configures a backend Client.
type ClientConfig struct {
	Endpoints  Endpoints
	Route      Route            // chat route used by ChatCompletionStream; defaults to RouteChat
	HTTPClient *http.Client     // optional
	Tokens     auth.TokenSource // optional; no Authorization header when nil or empty
	Timeout    time.Duration    // time allowed until response headers arrive; 0 means none
	Decoder    *streaming.Decoder
}

// Client talks to the chat backend over HTTP.
type Client struct {
	endpoints  Endpoints
	route      Route
	httpClient *http.Client
	tokens     auth.TokenSource
	decoder    *streaming.Decoder
}

// NewClient builds a client. Invalid endpoints surface per request as setup failures.
func NewClient(cfg ClientConfig) *Client {
	route := cfg.Route
	if route == "" {
		route = RouteChat
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.Timeout)
	}
	decoder := cfg.Decoder
	if decoder == nil {
		decoder = streaming.NewDecoder(adapters.NewOpenAIAdapter())
	}
	return &Client{
		endpoints:  cfg.Endpoints,
		route:      route,
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		decoder:    decoder,
	}
}

// newHTTPClient never sets http.Client.Timeout, which would cut long streams short.
func newHTTPClient(headerTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}

// ChatCompletionStream posts the conversation and decodes the streamed reply.
func (c *Client) ChatCompletionStream(ctx context.Context, req *CompletionRequest) (<-chan *messages.StreamEvent, error) {
	history := []messages.ChatMessage{}
	if req != nil && req.Messages != nil {
		history = req.Messages
	}

	httpReq, err := c.newRequest(ctx, c.route, chatBody{Messages: history})
	if err != nil {
		zap.S().Debugw("chat_request_setup_failed", "error", err)
		return setupFailure(err), nil
	}
	zap.S().Debugw("chat_request_started", "url", httpReq.URL.String(), "messages", len(history))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		zap.S().Debugw("chat_request_failed", "error", err)
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := c.rejected(resp)
		zap.S().Debugw("chat_request_rejected", "status", resp.StatusCode, "error", apiErr)
		return nil, apiErr
	}
	if resp.Body == nil {
		return nil, ErrNoResponseBody
	}

	return c.decoder.Decode(ctx, resp.Body), nil
}

// newRequest resolves the route, acquires a token and encodes body.
// Any error here happens before a request is sent.
func (c *Client) newRequest(ctx context.Context, route Route, body any) (*http.Request, error) {
	url, err := c.endpoints.URL(route)
	if err != nil {
		return nil, err
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire token: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// rejected decodes a non-2xx response. An unauthorized response drops a cached token.
func (c *Client) rejected(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		if inv, ok := c.tokens.(interface{ Invalidate() }); ok {
			inv.Invalidate()
		}
	}
	return decodeAPIError(resp)
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	return c.tokens.Token(ctx)
}

// setupFailure returns a closed stream holding a single error snapshot.
func setupFailure(err error) <-chan *messages.StreamEvent {
	events := make(chan *messages.StreamEvent, 1)
	events <- messages.NewSnapshotEvent(messages.ErrorSnapshot(err))
	close(events)
	return events
}
