package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCIK = 320193

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/files/company_tickers.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"0":{"cik_str":320193,"ticker":"ACME","title":"Acme Corp"}}`))
	})
	mux.HandleFunc("/submissions/CIK0000320193.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"filings": {"recent": {
				"accessionNumber": ["0000320193-25-000101", "0000320193-25-000102", "0000320193-25-000103", "0000320193-25-000104"],
				"form":            ["4", "10-K", "4", "4"],
				"filingDate":      ["2025-08-20", "2025-08-19", "2025-08-18", "2025-08-01"]
			}}
		}`))
	})
	mux.HandleFunc("/Archives/edgar/data/320193/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<ACCEPTANCE-DATETIME>20250820123456\nsubmission for " + r.URL.Path))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("test test@example.com")
	c.TickerMapURL = srv.URL + "/files/company_tickers.json"
	c.SubmissionsURL = srv.URL + "/submissions/CIK%010d.json"
	c.ArchiveURL = srv.URL + "/Archives/edgar/data/%d/%s.txt"
	c.RequestDelay = 0
	return c
}

func TestResolveCIK(t *testing.T) {
	c := newTestClient(newTestServer(t))

	cik, err := c.ResolveCIK(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, testCIK, cik)
}

func TestResolveCIKUnknownTicker(t *testing.T) {
	c := newTestClient(newTestServer(t))

	_, err := c.ResolveCIK(context.Background(), "GHOST")
	require.ErrorIs(t, err, ErrUnresolvableTicker)
}

func TestFetchWritesBundleLayout(t *testing.T) {
	c := newTestClient(newTestServer(t))
	root := t.TempDir()

	since, _ := time.Parse("2006-01-02", "2025-08-15")
	err := c.Fetch(context.Background(), "4", "ACME", 10, since, root)
	require.NoError(t, err)

	// Two Form 4s pass the since-date filter; the 10-K and the stale Form 4
	// do not.
	entries, err := os.ReadDir(filepath.Join(root, "ACME", "4"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	raw, err := os.ReadFile(filepath.Join(root, "ACME", "4", "0000320193-25-000101", "full-submission.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<ACCEPTANCE-DATETIME>")
}

func TestFetchHonorsLimit(t *testing.T) {
	c := newTestClient(newTestServer(t))
	root := t.TempDir()

	since, _ := time.Parse("2006-01-02", "2025-08-15")
	err := c.Fetch(context.Background(), "4", "ACME", 1, since, root)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "ACME", "4"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFetchUnknownTicker(t *testing.T) {
	c := newTestClient(newTestServer(t))

	since, _ := time.Parse("2006-01-02", "2025-08-15")
	err := c.Fetch(context.Background(), "4", "GHOST", 10, since, t.TempDir())
	require.ErrorIs(t, err, ErrUnresolvableTicker)
}
