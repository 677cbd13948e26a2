// Package webservice posts form-wrapped JSON payloads to a fixed base URL and
// decodes JSON replies.
package webservice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"warnmode/internal/logx"
	"warnmode/internal/telemetry"
)

// DefaultTimeout bounds a whole request when no other timeout is set.
const DefaultTimeout = 30 * time.Second

// Doer sends an HTTP request. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client executes POST requests relative to a fixed base URL. It is safe for
// concurrent use and is meant to be shared by every endpoint wrapper.
type Client struct {
	base *url.URL
	http Doer
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the transport.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithTimeout sets the overall timeout of the default transport. It has no
// effect on a Doer supplied with WithDoer unless that Doer is an *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if hc, ok := c.http.(*http.Client); ok && d > 0 {
			hc.Timeout = d
		}
	}
}

// New returns a Client rooted at base.
func New(base string, opts ...Option) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, badURL(base, err)
	}
	c := &Client{base: u, http: newHTTPClient()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSHandshakeTimeout = 5 * time.Second
	transport.ResponseHeaderTimeout = 10 * time.Second
	transport.ExpectContinueTimeout = 1 * time.Second
	return &http.Client{Timeout: DefaultTimeout, Transport: transport}
}

// DoDictionary posts payload to path and decodes a non-empty JSON object.
func (c *Client) DoDictionary(ctx context.Context, path string, payload map[string]string) (map[string]any, error) {
	req, err := c.prepare(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	return execute(ctx, c, req, path, jsonDictionary)
}

// DoArray posts payload to path and decodes a JSON array.
func (c *Client) DoArray(ctx context.Context, path string, payload map[string]string) ([]any, error) {
	req, err := c.prepare(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	return execute(ctx, c, req, path, jsonArray)
}

// ExecuteDictionary is the asynchronous form of DoDictionary. completion runs
// exactly once: on the calling goroutine when the request cannot be built,
// otherwise on the goroutine that performed the request.
func (c *Client) ExecuteDictionary(ctx context.Context, path string, payload map[string]string, completion func(Result[map[string]any])) {
	req, err := c.prepare(ctx, path, payload)
	if err != nil {
		completion(Fail[map[string]any](err))
		return
	}
	go func() {
		v, err := execute(ctx, c, req, path, jsonDictionary)
		completion(resultOf(v, err))
	}()
}

// ExecuteArray is the asynchronous form of DoArray.
func (c *Client) ExecuteArray(ctx context.Context, path string, payload map[string]string, completion func(Result[[]any])) {
	req, err := c.prepare(ctx, path, payload)
	if err != nil {
		completion(Fail[[]any](err))
		return
	}
	go func() {
		v, err := execute(ctx, c, req, path, jsonArray)
		completion(resultOf(v, err))
	}()
}

func (c *Client) prepare(ctx context.Context, path string, payload map[string]string) (*http.Request, error) {
	logx.From(ctx).Info().Str("path", path).Msg("executing request")
	req, err := c.BuildRequest(ctx, path, payload)
	if err != nil {
		logx.From(ctx).Warn().Err(err).Str("path", path).Str("kind", string(KindBadURL)).Msg("build request")
		return nil, err
	}
	return req, nil
}

// execute sends req, classifies the outcome and decodes the body.
func execute[T any](ctx context.Context, c *Client, req *http.Request, path string, decode func([]byte) (T, bool)) (T, error) {
	var zero T
	start := time.Now()
	status := 0
	var err error
	defer func() {
		fields := map[string]string{
			"path":        path,
			"status":      strconv.Itoa(status),
			"duration_ms": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
			"outcome":     "ok",
		}
		if err != nil {
			fields["outcome"] = "error"
			fields["kind"] = string(KindOf(err))
			logx.From(ctx).Warn().Err(err).Str("path", path).Str("kind", string(KindOf(err))).Msg("request failed")
		}
		telemetry.Event(ctx, "webservice_request", fields)
	}()

	resp, doErr := c.http.Do(req)
	if doErr != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		err = &Error{Kind: KindTransport, Path: path, Err: doErr}
		return zero, err
	}
	if resp != nil {
		status = resp.StatusCode
	}
	if err = checkResponse(resp, path); err != nil {
		return zero, err
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		err = &Error{Kind: KindTransport, Path: path, Err: readErr}
		return zero, err
	}
	logx.From(ctx).Info().Str("path", path).Str("body", logx.Body(body)).Msg("request success")

	v, ok := decode(body)
	if !ok {
		err = &Error{Kind: KindParse, Path: path, Status: status}
		return zero, err
	}
	return v, nil
}

// checkResponse rejects missing, malformed and non-200 responses. The body of
// a rejected response is closed unread.
func checkResponse(resp *http.Response, path string) error {
	if resp == nil {
		return &Error{Kind: KindNoResponse, Path: path}
	}
	if resp.StatusCode == 0 || resp.Body == nil {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return &Error{Kind: KindBadResponse, Path: path}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return &Error{Kind: KindOther, Path: path, Status: resp.StatusCode}
	}
	return nil
}

// jsonDictionary decodes a JSON object. An empty object is not accepted.
func jsonDictionary(data []byte) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || len(m) == 0 {
		return nil, false
	}
	return m, true
}

// jsonArray decodes a JSON array.
func jsonArray(data []byte) ([]any, bool) {
	var a []any
	if err := json.Unmarshal(data, &a); err != nil || a == nil {
		return nil, false
	}
	return a, true
}
