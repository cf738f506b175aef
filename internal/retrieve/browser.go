package retrieve

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Browser renders pages in a headless Chrome before extracting text. The
// browser is launched lazily on the first Fetch and reused afterwards.
type Browser struct {
	logger *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowser returns an unstarted Browser backend.
func NewBrowser(logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{logger: logger}
}

func (b *Browser) ensureStarted() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}
	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	b.logger.Debug("headless browser started", zap.String("control_url", controlURL))
	b.browser = browser
	return browser, nil
}

// Fetch navigates to url and returns the rendered body text.
func (b *Browser) Fetch(ctx context.Context, url string) (string, error) {
	browser, err := b.ensureStarted()
	if err != nil {
		return "", err
	}
	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}
	body, err := page.Element("body")
	if err != nil {
		return "", fmt.Errorf("find body: %w", err)
	}
	text, err := body.Text()
	if err != nil {
		return "", fmt.Errorf("read body text: %w", err)
	}
	return text, nil
}

// Close shuts the browser down if it was started.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}
