// Package httpclient builds the resty clients the sources fetch with.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"tagsync/internal/components/assert"
	"tagsync/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultTimeout   = 30 * time.Second
)

const (
	report_client_get = "client.get"
)

// ErrStatus is wrapped by every error caused by a non-2xx response.
var ErrStatus = errors.New("unexpected http status")

type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d (%s)", ErrStatus, e.Code, e.URL)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

type Options struct {
	BaseURL   string
	UserAgent string
	Headers   map[string]string
	// Timeout defaults to DefaultTimeout when zero.
	Timeout time.Duration
	// Retries is the amount of extra attempts made on transport errors and
	// 5xx responses.
	Retries int
	// RatePerSecond limits outgoing requests, zero disables the limit.
	RatePerSecond    float64
	CloudflareBypass bool
	// Output receives a dump of every exchange when set.
	Output telemetry.MessageOutput
}

// Client wraps a configured resty client.
type Client struct {
	Http *resty.Client
	tel  telemetry.API
}

func New(opts Options, tel telemetry.API) Client {
	assert.NotNil(tel)

	httpClient := resty.New()
	if opts.BaseURL != "" {
		httpClient.SetBaseURL(opts.BaseURL)
	}
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetHeaders(opts.Headers)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient.SetTimeout(timeout)
	httpClient.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	if opts.Retries > 0 {
		httpClient.SetRetryCount(opts.Retries)
		httpClient.SetRetryWaitTime(time.Second)
		httpClient.AddRetryCondition(func(res *resty.Response, err error) bool {
			// replaces resty's default condition, so transport errors must be kept
			return err != nil || (res != nil && res.StatusCode() >= 500)
		})
	}

	if opts.RatePerSecond > 0 {
		// burst >= rate just means that no requests will be dropped
		burst := int(math.Max(1, math.Ceil(opts.RatePerSecond)))
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	return Client{Http: httpClient, tel: tel}
}

// Get fetches endpoint (relative to the base url, if any) and fails on
// anything but a 2xx response. Transport errors are reported as broken,
// status errors are left to the caller.
func (c Client) Get(ctx context.Context, endpoint string) (*resty.Response, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(
			report_client_get,
			fmt.Errorf("fetch: %w", err),
			endpoint,
		)
		return nil, err
	}
	if res.IsError() {
		// a bad status can be an expected answer (ex. past the last page),
		// callers decide how loud it is
		c.tel.ReportDebug("unexpected status", endpoint, res.StatusCode())
		return res, &StatusError{Code: res.StatusCode(), URL: res.Request.URL}
	}
	return res, nil
}

// GetJSON fetches endpoint and decodes the response body into out.
func (c Client) GetJSON(ctx context.Context, endpoint string, out any) error {
	res, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		c.tel.ReportBroken(
			report_client_get,
			fmt.Errorf("decode json: %w", err),
			endpoint,
		)
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
