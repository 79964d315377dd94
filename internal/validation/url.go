package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

const DefaultMaxURLLength = 2048

var ErrEmptyURL = errors.New("URL cannot be empty")

// FeedURLValidator checks subscription URLs before they are stored.
// Calendar apps hand out webcal:// links, so those are rewritten to
// https:// rather than rejected.
type FeedURLValidator struct {
	// AllowLocal permits loopback, private and link-local hosts.
	AllowLocal bool
	MaxLength  int
}

func NewFeedURLValidator() *FeedURLValidator {
	return &FeedURLValidator{MaxLength: DefaultMaxURLLength}
}

// NewPermissiveFeedURLValidator accepts local hosts, e.g. a calendar
// served from the LAN or a test server.
func NewPermissiveFeedURLValidator() *FeedURLValidator {
	return &FeedURLValidator{AllowLocal: true, MaxLength: DefaultMaxURLLength}
}

// ValidateAndNormalize trims input, adds https:// when no scheme is given,
// maps webcal(s):// to https:// and returns the normalized URL.
func (v *FeedURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyURL
	}

	maxLen := v.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxURLLength
	}
	if len(input) > maxLen {
		return "", fmt.Errorf("URL too long (max %d characters)", maxLen)
	}
	if strings.ContainsAny(input, "<>\"'` \t\r\n") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	input = normalizeScheme(input)

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q: use http, https or webcal", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if parsed.User != nil {
		return "", fmt.Errorf("credentials in feed URLs are not permitted")
	}

	if !v.AllowLocal && isLocalHost(parsed.Hostname()) {
		return "", fmt.Errorf("local address %q is not permitted", parsed.Hostname())
	}

	parsed.Host = strings.ToLower(parsed.Host)
	return parsed.String(), nil
}

// normalizeScheme lowercases a known scheme and rewrites webcal variants.
// Input without any scheme gets https://.
func normalizeScheme(input string) string {
	scheme, rest, found := strings.Cut(input, "://")
	if !found {
		return "https://" + input
	}

	switch strings.ToLower(scheme) {
	case "webcal", "webcals":
		return "https://" + rest
	case "http", "https":
		return strings.ToLower(scheme) + "://" + rest
	}
	return input
}

func isLocalHost(hostname string) bool {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}

	ip := net.ParseIP(hostname)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
