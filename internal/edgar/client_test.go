package edgar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filing-rag/internal/models"
)

const tickerDirectory = `{
  "0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
  "1": {"cik_str": 789019, "ticker": "MSFT", "title": "Microsoft Corp"}
}`

const appleSubmissions = `{
  "filings": {
    "recent": {
      "form": ["8-K", "10-Q", "10-Q", "10-Q"],
      "filingDate": ["2024-01-05", "2024-02-02", "2024-05-03", "2024-06-10"],
      "accessionNumber": ["0000320193-24-000001", "0000320193-24-000002", "0000320193-24-000003", "0000320193-24-000004"],
      "primaryDocument": ["news.htm", "aapl-q1.htm", "aapl-q2.htm", "aapl-q2a.htm"]
    }
  }
}`

const filingHTML = `<html><body><p>Net revenue increased twelve percent for the quarter, driven by services and wearables.</p></body></html>`

type testEnv struct {
	srv       *httptest.Server
	client    *Client
	userAgent string
	agents    []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{userAgent: "Example Corp research@example.com"}

	mux := http.NewServeMux()
	record := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			env.agents = append(env.agents, r.Header.Get("User-Agent"))
			h(w, r)
		}
	}
	mux.HandleFunc("/files/company_tickers.json", record(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(tickerDirectory))
	}))
	mux.HandleFunc("/submissions/CIK0000320193.json", record(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(appleSubmissions))
	}))
	mux.HandleFunc("/archives/320193/000032019324000002/aapl-q1.htm", record(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(filingHTML))
	}))

	env.srv = httptest.NewServer(mux)
	t.Cleanup(env.srv.Close)

	env.client = NewClient(env.userAgent, WithBaseURLs(
		env.srv.URL+"/files/company_tickers.json",
		env.srv.URL+"/submissions",
		env.srv.URL+"/archives",
	))
	return env
}

func TestResolveCIK(t *testing.T) {
	env := newTestEnv(t)

	cik, err := env.client.ResolveCIK(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "0000320193", cik, "CIK must be zero-padded to 10 digits")

	require.NotEmpty(t, env.agents)
	assert.Equal(t, env.userAgent, env.agents[0], "every request must carry the identifying User-Agent")
}

func TestResolveCIKUnknownTicker(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.ResolveCIK(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocateFiling(t *testing.T) {
	env := newTestEnv(t)

	url, err := env.client.LocateFiling(context.Background(), "0000320193", 2024, models.Q1)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "/archives/320193/000032019324000002/aapl-q1.htm"),
		"unexpected document URL: %s", url)
}

func TestLocateFilingFirstMatchWins(t *testing.T) {
	env := newTestEnv(t)

	// Q2 2024 has two 10-Q entries; the first in API order is picked.
	url, err := env.client.LocateFiling(context.Background(), "0000320193", 2024, models.Q2)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "/aapl-q2.htm"), "unexpected document URL: %s", url)
}

func TestLocateFilingNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.client.LocateFiling(ctx, "0000320193", 2024, models.Q3)
	assert.ErrorIs(t, err, ErrNotFound, "no 10-Q filed in Q3")

	_, err = env.client.LocateFiling(ctx, "0000320193", 2023, models.Q1)
	assert.ErrorIs(t, err, ErrNotFound, "wrong year must not match")
}

func TestFetch(t *testing.T) {
	env := newTestEnv(t)

	body, err := env.client.Fetch(context.Background(), env.srv.URL+"/archives/320193/000032019324000002/aapl-q1.htm")
	require.NoError(t, err)
	assert.Equal(t, filingHTML, body)
}

func TestFetchErrorStatus(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Fetch(context.Background(), env.srv.URL+"/archives/missing.htm")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	c := NewClient("Example Corp research@example.com")
	_, err := c.Fetch(context.Background(), srv.URL+"/gone")
	assert.True(t, errors.Is(err, ErrFetch), "network failures surface as fetch errors, got %v", err)
}
