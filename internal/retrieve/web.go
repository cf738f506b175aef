package retrieve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

const (
	webUserAgent = "Mozilla/5.0 (compatible; screener/1.0)"
	webBodyLimit = 1 << 20
)

// Web fetches pages directly and extracts their visible text. Search visits
// the home page of a company domain.
type Web struct {
	Client HTTPDoer
}

// NewWeb returns a Web backend; a nil client uses http.DefaultClient.
func NewWeb(client HTTPDoer) *Web {
	if client == nil {
		client = http.DefaultClient
	}
	return &Web{Client: client}
}

// Fetch returns the visible text of url.
func (w *Web) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", webUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := w.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, webBodyLimit))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return ExtractText(doc), nil
}

// Search fetches the home page of domain.
func (w *Web) Search(ctx context.Context, domain string) ([]string, error) {
	target := domain
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	text, err := w.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}

// ExtractText returns the page title on its own line followed by the
// visible body text with whitespace collapsed.
func ExtractText(doc *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "head", "script", "style", "noscript", "svg", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	body := strings.Join(strings.Fields(sb.String()), " ")
	if title := findTitle(doc); title != "" {
		return title + "\n" + body
	}
	return body
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}
