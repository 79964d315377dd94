package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pders01/sowestart/internal/config"
)

const (
	defaultUserAgent = "sowestart/1.0 (https://github.com/pders01/sowestart)"
	feedAccept       = "application/rss+xml, application/atom+xml, application/xml, text/xml, text/calendar, */*;q=0.5"
)

// Fetcher retrieves raw feed text, routed through the configured CORS
// relay. Each call carries its own timeout so one slow feed never holds up
// or cancels another.
type Fetcher struct {
	client    *http.Client
	relayBase string
	userAgent string
	maxBody   int64
}

func NewFetcher(cfg *config.Config) *Fetcher {
	userAgent := cfg.Relay.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Fetcher{
		client:    &http.Client{},
		relayBase: cfg.Relay.BaseURL,
		userAgent: userAgent,
		maxBody:   cfg.Relay.MaxBodyBytes,
	}
}

// SetClient swaps the HTTP client, e.g. for a custom transport.
func (f *Fetcher) SetClient(client *http.Client) {
	if client != nil {
		f.client = client
	}
}

// RequestURL returns the URL actually requested for target: the relay base
// followed by the percent-encoded target, or target itself when no relay
// is configured.
func (f *Fetcher) RequestURL(target string) string {
	if f.relayBase == "" {
		return target
	}
	return f.relayBase + url.QueryEscape(target)
}

// Fetch returns the response body for target. It fails with ErrTimeout when
// the deadline passes and with *HTTPError on a non-2xx status.
func (f *Fetcher) Fetch(ctx context.Context, target string, timeout time.Duration) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.RequestURL(target), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", feedAccept)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classify(ctx, "fetching feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &HTTPError{StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if f.maxBody > 0 {
		body = io.LimitReader(resp.Body, f.maxBody+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", classify(ctx, "reading response", err)
	}
	if f.maxBody > 0 && int64(len(data)) > f.maxBody {
		return "", fmt.Errorf("%w (limit %d bytes)", ErrBodyTooLarge, f.maxBody)
	}

	return string(data), nil
}

// FetchCalendar is Fetch plus a sanity check that rejects bodies without
// any VCALENDAR or VEVENT marker.
func (f *Fetcher) FetchCalendar(ctx context.Context, target string, timeout time.Duration) (string, error) {
	body, err := f.Fetch(ctx, target, timeout)
	if err != nil {
		return "", err
	}
	if !LooksLikeICalendar(body) {
		return "", ErrInvalidFormat
	}
	return body, nil
}

// LooksLikeICalendar reports whether body contains an iCalendar block.
func LooksLikeICalendar(body string) bool {
	return strings.Contains(body, "BEGIN:VCALENDAR") || strings.Contains(body, "BEGIN:VEVENT")
}

func classify(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
