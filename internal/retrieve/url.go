package retrieve

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned for profile URLs that cannot be normalized.
var ErrInvalidURL = errors.New("invalid profile url")

// NormalizeProfileURL turns a loosely written profile URL into
// "https://www.linkedin.com/in/<slug>/". Non-LinkedIn hosts keep their host
// but still gain a scheme and trailing slash.
func NormalizeProfileURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" || !strings.Contains(host, ".") {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}
	if host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com") {
		host = "www.linkedin.com"
	}
	path := parsed.EscapedPath()
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return "https://" + host + path, nil
}

// EmailDomain returns the lower-cased domain of an address.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

func truncate(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
