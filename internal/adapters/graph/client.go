// Package graph talks to Microsoft Graph on behalf of the signed-in kiosk
// operator: SharePoint list items for the kiosk lists and a handful of
// directory reads.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/observability/metrics"
	"github.com/target/totem-api/internal/observability/statsd"
	"github.com/target/totem-api/internal/ports"
)

const (
	// DefaultBaseURL is the Graph v1.0 root.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	headerPrefer      = "Prefer"
	preferNonIndexed  = "HonorNonIndexedQueriesWarningMayFailRandomly"
	headerConsistency = "ConsistencyLevel"

	maxErrorBody = 64 << 10
	maxPhotoSize = 4 << 20
)

// TokenSourceFunc adapts a function to ports.AccessTokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

// AccessToken calls f.
func (f TokenSourceFunc) AccessToken(ctx context.Context) (string, error) { return f(ctx) }

// StatusError is a non-2xx Graph response.
type StatusError struct {
	Operation string
	Status    int
	Code      string
	Message   string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("graph %s: status %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("graph %s: status %d: %s: %s", e.Operation, e.Status, e.Code, e.Message)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration // used when HTTPClient is nil
	Tokens     ports.AccessTokenSource
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// Client performs authenticated Graph requests. Safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     ports.AccessTokenSource
	metrics    statsd.Sink
	logger     *slog.Logger
}

// NewClient validates opts and builds a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Tokens == nil {
		return nil, errors.New("graph: token source is required")
	}
	raw := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("graph: invalid base URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		tokens:     opts.Tokens,
		metrics:    sink,
		logger:     logger.With("component", "graph"),
	}, nil
}

// request describes one Graph call. path is relative to the base URL unless
// it is an absolute @odata.nextLink.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	header http.Header
	body   any
}

func (c *Client) resolve(r request) (string, error) {
	if strings.HasPrefix(r.path, "https://") || strings.HasPrefix(r.path, "http://") {
		u, err := url.Parse(r.path)
		if err != nil {
			return "", fmt.Errorf("graph %s: parse next link: %w", r.op, err)
		}
		// Never send the bearer token to a host other than Graph.
		if u.Host != c.baseURL.Host {
			return "", fmt.Errorf("graph %s: next link host %q does not match %q", r.op, u.Host, c.baseURL.Host)
		}
		return u.String(), nil
	}
	s := c.baseURL.String() + r.path
	if len(r.query) > 0 {
		s += "?" + encodeQuery(r.query)
	}
	return s, nil
}

// encodeQuery keeps OData system query option names ($filter, $top) literal
// and escapes spaces as %20.
func encodeQuery(q url.Values) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range q[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strings.ReplaceAll(url.QueryEscape(v), "+", "%20"))
		}
	}
	return b.String()
}

// send executes r and returns the 2xx response. The caller closes the body.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	target, err := c.resolve(r)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph %s: acquire token: %w", r.op, err)
	}

	var body io.Reader
	if r.body != nil {
		buf, marshalErr := json.Marshal(r.body)
		if marshalErr != nil {
			return nil, fmt.Errorf("graph %s: marshal body: %w", r.op, marshalErr)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("graph %s: build request: %w", r.op, err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.EmitGraphRequest(c.metrics, metrics.GraphRequest{Operation: r.op, Duration: time.Since(start)})
		return nil, transportError(ctx, r.op, err)
	}
	metrics.EmitGraphRequest(c.metrics, metrics.GraphRequest{
		Operation: r.op,
		Status:    resp.StatusCode,
		Duration:  time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		se := readStatusError(r.op, resp)
		c.logger.WarnContext(ctx, "graph request failed",
			"operation", r.op,
			"status", se.Status,
			"code", se.Code,
			"message", se.Message)
		ae := apperrors.Upstream(se.Status, "graph "+r.op)
		ae.Cause = se
		return nil, ae
	}
	return resp, nil
}

func transportError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "graph "+op)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "graph "+op)
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeUpstream, "graph "+op)
	}
}

func readStatusError(op string, resp *http.Response) *StatusError {
	se := &StatusError{Operation: op, Status: resp.StatusCode}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &payload) == nil {
		se.Code = payload.Error.Code
		se.Message = payload.Error.Message
	}
	return se
}

// doJSON executes r and decodes a JSON response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUpstream, "graph "+r.op+": decode response")
	}
	return nil
}

// page is one OData collection page.
type page[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// collect follows @odata.nextLink until the collection is exhausted or limit
// items were read. Headers of the first request are repeated on every page.
func collect[T any](ctx context.Context, c *Client, r request, limit int) ([]T, error) {
	var out []T
	for {
		var p page[T]
		if err := c.doJSON(ctx, r, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Value...)
		if limit > 0 && len(out) >= limit {
			return out[:limit], nil
		}
		if p.NextLink == "" {
			return out, nil
		}
		r = request{op: r.op, method: http.MethodGet, path: p.NextLink, header: r.header}
	}
}
