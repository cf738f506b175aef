// Package retrieve gathers best-effort text about a candidate and their
// employer. Failures are reported as an Absence, never as a Go error.
package retrieve

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"screener/internal/config"
)

// Absence explains why a Result carries no text.
type Absence string

const (
	Present       Absence = ""
	NoIdentifier  Absence = "no_identifier"
	InvalidURL    Absence = "invalid_url"
	Disabled      Absence = "disabled"
	CommonDomain  Absence = "common_domain"
	BackendError  Absence = "backend_error"
	EmptyResponse Absence = "empty"
)

// Result is the outcome of one lookup.
type Result struct {
	Text    string
	Absence Absence
	// Err holds the swallowed backend error for logging.
	Err error
}

// OK reports whether text was found.
func (r Result) OK() bool {
	return r.Absence == Present && r.Text != ""
}

// Bundle is everything retrieved for one candidate.
type Bundle struct {
	Profile Result
	Company Result
	Domain  string
	// ProfileURL is the normalized profile URL, if one was given.
	ProfileURL string
}

// Fetcher returns the readable text of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Searcher returns text snippets about a company.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Retriever runs profile and company lookups against the configured backends.
type Retriever struct {
	cfg      *config.Config
	fetcher  Fetcher
	searcher Searcher
	logger   *zap.Logger
}

// New builds a Retriever. Either backend may be nil, in which case the
// corresponding lookup reports BackendError.
func New(cfg *config.Config, fetcher Fetcher, searcher Searcher, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{cfg: cfg, fetcher: fetcher, searcher: searcher, logger: logger}
}

func (r *Retriever) timeout() time.Duration {
	return time.Duration(r.cfg.Scraping.TimeoutSeconds) * time.Second
}

// FetchProfile returns the text of the profile at rawURL.
func (r *Retriever) FetchProfile(ctx context.Context, rawURL string) Result {
	if strings.TrimSpace(rawURL) == "" {
		return Result{Absence: NoIdentifier}
	}
	normalized, err := NormalizeProfileURL(rawURL)
	if err != nil {
		return Result{Absence: InvalidURL, Err: err}
	}
	if r.fetcher == nil {
		return Result{Absence: BackendError, Err: fmt.Errorf("no fetch backend configured")}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()
	text, err := r.fetcher.Fetch(ctx, normalized)
	if err != nil {
		r.logger.Warn("profile fetch failed", zap.String("url", normalized), zap.Error(err))
		return Result{Absence: BackendError, Err: err}
	}
	return r.result(text)
}

// FetchCompany returns research about a company domain or name.
func (r *Retriever) FetchCompany(ctx context.Context, domainOrName string) Result {
	query := strings.TrimSpace(domainOrName)
	if query == "" {
		return Result{Absence: NoIdentifier}
	}
	if r.isCommonDomain(query) {
		return Result{Absence: CommonDomain}
	}
	if r.searcher == nil {
		return Result{Absence: BackendError, Err: fmt.Errorf("no search backend configured")}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()
	snippets, err := r.searcher.Search(ctx, query)
	if err != nil {
		r.logger.Warn("company search failed", zap.String("query", query), zap.Error(err))
		return Result{Absence: BackendError, Err: err}
	}
	return r.result(strings.Join(snippets, "\n\n"))
}

// Collect gathers profile and company text for a candidate, honouring the
// scraping toggles. When no profile text exists and the e-mail domain is not
// a consumer provider, a short pseudo-profile is derived from the address.
func (r *Retriever) Collect(ctx context.Context, email, profileURL string) Bundle {
	var bundle Bundle
	bundle.Domain = EmailDomain(email)
	if normalized, err := NormalizeProfileURL(profileURL); err == nil {
		bundle.ProfileURL = normalized
	}

	if r.cfg.Scraping.ScanForLinkedIn {
		bundle.Profile = r.FetchProfile(ctx, profileURL)
	} else {
		bundle.Profile = Result{Absence: Disabled}
	}

	switch {
	case !r.cfg.Scraping.ResearchCompanies:
		bundle.Company = Result{Absence: Disabled}
	case bundle.Domain == "":
		bundle.Company = Result{Absence: NoIdentifier}
	default:
		bundle.Company = r.FetchCompany(ctx, bundle.Domain)
	}

	if !bundle.Profile.OK() && bundle.Domain != "" && !r.isCommonDomain(bundle.Domain) {
		bundle.Profile = Result{Text: pseudoProfile(email, bundle.Domain)}
	}
	r.logger.Debug("retrieved candidate data",
		zap.String("email", email),
		zap.String("profile_absence", string(bundle.Profile.Absence)),
		zap.String("company_absence", string(bundle.Company.Absence)),
		zap.Int("profile_chars", len(bundle.Profile.Text)),
		zap.Int("company_chars", len(bundle.Company.Text)),
	)
	return bundle
}

func (r *Retriever) result(text string) Result {
	text = truncate(text, r.cfg.Scraping.MaxChars)
	if text == "" {
		return Result{Absence: EmptyResponse}
	}
	return Result{Text: text}
}

func (r *Retriever) isCommonDomain(domain string) bool {
	return slices.Contains(r.cfg.Scraping.CommonDomains, strings.ToLower(domain))
}

func pseudoProfile(email, domain string) string {
	return fmt.Sprintf("Email: %s\nWork domain: %s\nNo public profile was available; judge from the e-mail domain and company information.", email, domain)
}

// FromConfig builds the retriever backends named by scraping_controls.
// The browser backend has no search; company research falls back to the web
// backend in that case. The returned close function releases the backends.
func FromConfig(cfg *config.Config, logger *zap.Logger) (*Retriever, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Scraping.FetchBackend {
	case config.FetchExa:
		exa, err := ExaFromEnv(nil)
		if err != nil {
			return nil, noop, err
		}
		return New(cfg, exa, exa, logger), noop, nil
	case config.FetchWeb:
		web := NewWeb(nil)
		return New(cfg, web, web, logger), noop, nil
	case config.FetchBrowser:
		browser := NewBrowser(logger)
		return New(cfg, browser, NewWeb(nil), logger), browser.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported fetch backend %q", cfg.Scraping.FetchBackend)
	}
}
