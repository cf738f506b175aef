package retrieve

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"screener/internal/testutil"
)

const samplePage = `<html><head><title>Acme AI</title><style>body{}</style></head>
<body><h1>Acme</h1><script>var x = 1;</script><p>We build
   inference chips.</p></body></html>`

func TestWebFetchExtractsVisibleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, samplePage)
	}))
	defer server.Close()

	web := NewWeb(server.Client())
	text, err := web.Fetch(testutil.Context(t, 0), server.URL)
	require.NoError(t, err)
	require.Equal(t, "Acme AI\nAcme We build inference chips.", text)
}

func TestWebFetchRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewWeb(server.Client()).Fetch(testutil.Context(t, 0), server.URL)
	require.ErrorContains(t, err, "404")
}
