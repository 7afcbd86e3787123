// Package remote talks to the hosted school backend that owns timetable data.
// Reads and lesson writes go through its GraphQL endpoint; onboarding uses REST.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/tenant"
)

const maxErrorBody = 4 << 10

// Config locates the backend.
type Config struct {
	GraphQLURL  string
	RESTBaseURL string
	APIToken    string
	Timeout     time.Duration
}

type requestObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Client implements the persistence interfaces of the timetable services over HTTP.
type Client struct {
	cfg     Config
	http    *http.Client
	metrics requestObserver
	logger  *zap.Logger
}

// NewClient constructs a backend client. Calls time out after cfg.Timeout (15s when unset).
func NewClient(cfg Config, metrics requestObserver, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	cfg.RESTBaseURL = strings.TrimRight(cfg.RESTBaseURL, "/")
	return &Client{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []remoteError   `json:"errors"`
}

// graphql runs one operation and decodes its data object into dest.
func (c *Client) graphql(ctx context.Context, operation, query string, variables map[string]interface{}, dest interface{}) error {
	if c.cfg.GraphQLURL == "" {
		return appErrors.Clone(appErrors.ErrRemote, "graphql endpoint not configured")
	}
	var resp graphQLResponse
	if err := c.send(ctx, c.cfg.GraphQLURL, "graphql_"+operation, graphQLRequest{Query: query, Variables: variables}, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		c.logger.Warn("graphql operation rejected",
			zap.String("operation", operation),
			zap.String("code", resp.Errors[0].code()),
			zap.String("message", resp.Errors[0].Message),
		)
		return resp.Errors[0].toError()
	}
	if dest == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, fmt.Sprintf("decode %s response", operation))
	}
	return nil
}

// rest posts body to a REST path under the configured base URL.
func (c *Client) rest(ctx context.Context, path string, body, dest interface{}) error {
	if c.cfg.RESTBaseURL == "" {
		return appErrors.Clone(appErrors.ErrRemote, "rest endpoint not configured")
	}
	return c.send(ctx, c.cfg.RESTBaseURL+path, "rest"+path, body, dest)
}

func (c *Client) send(ctx context.Context, url, label string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", label, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", label, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(tenant.HeaderKey, tenant.FromContext(ctx))
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(label, http.StatusServiceUnavailable, duration)
		return appErrors.Wrap(err, appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, fmt.Sprintf("%s request failed", label))
	}
	defer resp.Body.Close()
	c.observe(label, resp.StatusCode, duration)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, fmt.Sprintf("read %s response", label))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp.StatusCode, raw)
	}
	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, fmt.Sprintf("decode %s response", label))
	}
	return nil
}

func (c *Client) observe(label string, status int, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveHTTPRequest(http.MethodPost, "remote_"+label, status, duration)
	}
}
