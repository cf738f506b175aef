package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"screener/internal/config"
	"screener/internal/testutil"
)

type fakeBackend struct {
	pages    map[string]string
	snippets map[string][]string
	err      error
	fetched  []string
	searched []string
}

func (f *fakeBackend) Fetch(_ context.Context, url string) (string, error) {
	f.fetched = append(f.fetched, url)
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

func (f *fakeBackend) Search(_ context.Context, query string) ([]string, error) {
	f.searched = append(f.searched, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.snippets[query], nil
}

func newRetriever(backend *fakeBackend) (*Retriever, *config.Config) {
	cfg := config.Default()
	return New(&cfg, backend, backend, nil), &cfg
}

func TestCollectSkipsCommonDomains(t *testing.T) {
	backend := &fakeBackend{}
	r, _ := newRetriever(backend)

	bundle := r.Collect(testutil.Context(t, 0), "alice@gmail.com", "")

	require.Equal(t, NoIdentifier, bundle.Profile.Absence)
	require.Equal(t, CommonDomain, bundle.Company.Absence)
	require.Empty(t, bundle.Profile.Text)
	require.Empty(t, backend.searched)
}

func TestCollectFetchesProfileAndCompany(t *testing.T) {
	backend := &fakeBackend{
		pages:    map[string]string{"https://www.linkedin.com/in/jane/": "Jane Doe, CTO at Acme"},
		snippets: map[string][]string{"acme.io": {"Field: AI", "Size: 50"}},
	}
	r, _ := newRetriever(backend)

	bundle := r.Collect(testutil.Context(t, 0), "jane@acme.io", "linkedin.com/in/jane")

	require.True(t, bundle.Profile.OK())
	require.Equal(t, "Jane Doe, CTO at Acme", bundle.Profile.Text)
	require.Equal(t, "Field: AI\n\nSize: 50", bundle.Company.Text)
	require.Equal(t, "https://www.linkedin.com/in/jane/", bundle.ProfileURL)
	require.Equal(t, "acme.io", bundle.Domain)
}

func TestCollectBuildsPseudoProfile(t *testing.T) {
	backend := &fakeBackend{err: errors.New("timeout")}
	r, _ := newRetriever(backend)

	bundle := r.Collect(testutil.Context(t, 0), "jane@acme.io", "")

	require.Equal(t, BackendError, bundle.Company.Absence)
	require.Error(t, bundle.Company.Err)
	require.Contains(t, bundle.Profile.Text, "acme.io")
}

func TestCollectHonoursToggles(t *testing.T) {
	backend := &fakeBackend{}
	r, cfg := newRetriever(backend)
	cfg.Scraping.ScanForLinkedIn = false
	cfg.Scraping.ResearchCompanies = false

	bundle := r.Collect(testutil.Context(t, 0), "bob@gmail.com", "linkedin.com/in/bob")

	require.Equal(t, Disabled, bundle.Profile.Absence)
	require.Equal(t, Disabled, bundle.Company.Absence)
	require.Empty(t, backend.fetched)
	require.Empty(t, backend.searched)
}

func TestFetchProfileReportsAbsences(t *testing.T) {
	backend := &fakeBackend{pages: map[string]string{}}
	r, cfg := newRetriever(backend)
	ctx := testutil.Context(t, 0)

	require.Equal(t, NoIdentifier, r.FetchProfile(ctx, " ").Absence)
	require.Equal(t, InvalidURL, r.FetchProfile(ctx, "nonsense").Absence)
	require.Equal(t, EmptyResponse, r.FetchProfile(ctx, "linkedin.com/in/ghost").Absence)

	backend.pages["https://www.linkedin.com/in/long/"] = strings.Repeat("a", 50)
	cfg.Scraping.MaxChars = 10
	require.Len(t, r.FetchProfile(ctx, "linkedin.com/in/long").Text, 10)
}

func TestNilBackendsAreAbsences(t *testing.T) {
	cfg := config.Default()
	r := New(&cfg, nil, nil, nil)
	ctx := testutil.Context(t, 0)

	require.Equal(t, BackendError, r.FetchProfile(ctx, "linkedin.com/in/jane").Absence)
	require.Equal(t, BackendError, r.FetchCompany(ctx, "acme.io").Absence)
}
