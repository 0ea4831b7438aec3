package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// HeaderProvider supplies per-request headers.
type HeaderProvider func() map[string]string

// WebhookPublisher POSTs each event as JSON to a fixed URL, retrying transport errors and
// 5xx responses with exponential backoff.
type WebhookPublisher struct {
	url     string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type WebhookOption func(*WebhookPublisher)

func WithTimeout(d time.Duration) WebhookOption {
	return func(p *WebhookPublisher) {
		if d > 0 {
			p.defaultTimeout = d
		}
	}
}

func WithRetry(max int) WebhookOption {
	return func(p *WebhookPublisher) { p.retryMax = max }
}

func WithHeaderProvider(h HeaderProvider) WebhookOption {
	return func(p *WebhookPublisher) { p.headers = h }
}

func WithMaxConnsPerHost(n int) WebhookOption {
	return func(p *WebhookPublisher) { p.http.MaxConnsPerHost = n }
}

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(c *fasthttp.Client) WebhookOption {
	return func(p *WebhookPublisher) {
		if c != nil {
			p.http = c
		}
	}
}

func NewWebhookPublisher(url string, opts ...WebhookOption) *WebhookPublisher {
	p := &WebhookPublisher{
		url:            strings.TrimSpace(url),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 5 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StaticHeaders returns a provider for a fixed header set; blank values are skipped at send time.
func StaticHeaders(h map[string]string) HeaderProvider {
	cp := make(map[string]string, len(h))
	for k, v := range h {
		cp[k] = v
	}
	return func() map[string]string { return cp }
}

func (p *WebhookPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(p.url)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Chess-Event", string(ev.Kind))
	if p.headers != nil {
		for k, v := range p.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	req.SetBody(payload)

	attempts := p.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := p.http.DoDeadline(req, resp, p.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("webhook request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = fmt.Errorf("webhook error: status=%d body=%s", status, truncate(string(resp.Body()), 512))
			if attempt == attempts || !shouldRetryStatus(status) {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (p *WebhookPublisher) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(p.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
