package mws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/mws-sync/internal/metrics"
)

type callOptions struct {
	method      string
	body        []byte
	contentType string
	header      http.Header
}

// CallOption configures a single call.
type CallOption func(*callOptions)

// WithMethod sets the HTTP verb. The default is GET, or POST when a body is
// attached.
func WithMethod(method string) CallOption {
	return func(o *callOptions) {
		o.method = method
	}
}

// WithBody attaches a request body. Content-MD5 and Content-Type are set from
// it.
func WithBody(body []byte, contentType string) CallOption {
	return func(o *callOptions) {
		o.body = body
		o.contentType = contentType
	}
}

// WithHeader adds an extra request header.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		o.header.Add(key, value)
	}
}

// SignedParams returns the full parameter set for action, including the
// account, version, timestamp and signature-method fields. Caller values take
// precedence over the defaults.
func (c *Client) SignedParams(family Family, action string, params Values) Values {
	all := Values{
		"AWSAccessKeyId":    c.creds.AccessKey,
		family.AccountField: c.creds.AccountID,
		"SignatureVersion":  signatureVersion,
		"Timestamp":         FormatTime(c.nowFunc()),
		"Version":           family.Version,
		"SignatureMethod":   signatureMethod,
		"Action":            action,
	}
	if c.creds.AuthToken != "" {
		all["MWSAuthToken"] = c.creds.AuthToken
	}
	return all.Merge(params)
}

// SignedURL builds the request URL: endpoint, path, canonical query and the
// trailing Signature parameter.
func (c *Client) SignedURL(method string, family Family, action string, params Values) string {
	canonical := c.SignedParams(family, action, params).Canonical()
	sig := Sign(c.creds.SecretKey, method, c.domain, family.Path, canonical)
	return c.domain + family.Path + "?" + canonical + "&Signature=" + sig
}

// Call performs one remote operation. The body is checked for an error
// envelope first (ServiceError), then the status code (HTTPError), then
// decoded as XML or returned raw after Content-MD5 verification.
func (c *Client) Call(
	ctx context.Context,
	family Family,
	action string,
	params Values,
	opts ...CallOption,
) (resp *Response, err error) {
	ctx, span := c.tracer.Start(ctx, "mws."+action,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("mws.family", family.Name),
			attribute.String("mws.action", action),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return c.call(ctx, span, family, action, params, opts...)
}

func (c *Client) call(
	ctx context.Context,
	span trace.Span,
	family Family,
	action string,
	params Values,
	opts ...CallOption,
) (*Response, error) {
	o := callOptions{header: http.Header{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.method == "" {
		o.method = http.MethodGet
		if o.body != nil {
			o.method = http.MethodPost
		}
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrHourlyLimitReached) {
				metrics.HourlyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.HourlyUsage.Set(float64(c.rateLimiter.HourlyCount()))
	}
	metrics.APICallsTotal.WithLabelValues(family.Name, action).Inc()

	u := c.SignedURL(o.method, family, action, params)

	var body io.Reader = http.NoBody
	if o.body != nil {
		body = bytes.NewReader(o.body)
	}
	req, err := http.NewRequestWithContext(ctx, o.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", action, err)
	}
	for k, vs := range o.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if o.body != nil {
		req.Header.Set("Content-MD5", ContentMD5(o.body))
		if o.contentType != "" {
			req.Header.Set("Content-Type", o.contentType)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.APICallDuration.WithLabelValues(family.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIErrorsTotal.WithLabelValues(family.Name, "transport").Inc()
		return nil, fmt.Errorf("executing %s request: %w", action, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIErrorsTotal.WithLabelValues(family.Name, "transport").Inc()
		return nil, fmt.Errorf("reading %s response body: %w", action, err)
	}

	c.log.DebugContext(ctx, "mws call",
		"family", family.Name,
		"action", action,
		"method", o.method,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	c.dump(action, data)

	if svcErr := ParseErrorResponse(data); svcErr != nil {
		svcErr.StatusCode = resp.StatusCode
		metrics.APIErrorsTotal.WithLabelValues(family.Name, "service").Inc()
		return nil, svcErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.APIErrorsTotal.WithLabelValues(family.Name, "http").Inc()
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
			Response:   resp,
		}
	}

	r, err := newResponse(action, resp, data)
	if err != nil {
		metrics.APIErrorsTotal.WithLabelValues(family.Name, "integrity").Inc()
		return nil, err
	}
	return r, nil
}

func (c *Client) dump(action string, data []byte) {
	if c.dumpDir == "" {
		return
	}
	name := action + "-" + strconv.FormatInt(c.nowFunc().UnixNano(), 10) + ".dump"
	path := filepath.Join(c.dumpDir, name)
	if err := os.MkdirAll(c.dumpDir, 0o750); err != nil {
		c.log.Warn("creating dump dir", "dir", c.dumpDir, "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		c.log.Warn("writing response dump", "path", path, "error", err)
	}
}
