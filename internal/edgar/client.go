package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"filing-rag/internal/models"
)

const (
	defaultTickerURL      = "https://www.sec.gov/files/company_tickers.json"
	defaultSubmissionsURL = "https://data.sec.gov/submissions"
	defaultArchivesURL    = "https://www.sec.gov/Archives/edgar/data"

	requestTimeout = 30 * time.Second
)

var (
	// ErrNotFound means the ticker has no CIK mapping, or no filing matches
	// the requested form/year/quarter window.
	ErrNotFound = errors.New("not found")

	// ErrFetch wraps a non-success HTTP status or a network failure.
	ErrFetch = errors.New("fetch failed")
)

// Client talks to the SEC EDGAR services. Every request carries the
// caller-identifying User-Agent the SEC requires. Requests are not retried.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	tickerURL      string
	submissionsURL string
	archivesURL    string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURLs overrides the EDGAR endpoints, mainly for tests.
func WithBaseURLs(ticker, submissions, archives string) Option {
	return func(c *Client) {
		if ticker != "" {
			c.tickerURL = ticker
		}
		if submissions != "" {
			c.submissionsURL = submissions
		}
		if archives != "" {
			c.archivesURL = archives
		}
	}
}

// NewClient creates an EDGAR client identifying itself with userAgent.
func NewClient(userAgent string, opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: requestTimeout},
		userAgent:      userAgent,
		tickerURL:      defaultTickerURL,
		submissionsURL: defaultSubmissionsURL,
		archivesURL:    defaultArchivesURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveCIK converts a ticker symbol to a zero-padded 10-digit CIK using
// the SEC's company tickers directory. Matching is case-insensitive but exact.
func (c *Client) ResolveCIK(ctx context.Context, ticker string) (string, error) {
	body, err := c.get(ctx, c.tickerURL)
	if err != nil {
		return "", err
	}

	var directory map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
	}
	if err := json.Unmarshal(body, &directory); err != nil {
		return "", fmt.Errorf("decode ticker directory: %w", err)
	}

	t := strings.ToUpper(strings.TrimSpace(ticker))
	for _, item := range directory {
		if item.Ticker == t {
			return fmt.Sprintf("%010d", item.CIK), nil
		}
	}
	return "", fmt.Errorf("%w: ticker %s", ErrNotFound, t)
}

// LocateFiling scans the company's filing history for a 10-Q filed in the
// given year and quarter and returns the primary document URL. When several
// filings match, the first one in API order wins.
func (c *Client) LocateFiling(ctx context.Context, cik string, year int, quarter models.Quarter) (string, error) {
	body, err := c.get(ctx, c.submissionsURL+"/CIK"+cik+".json")
	if err != nil {
		return "", err
	}

	var payload struct {
		Filings struct {
			Recent struct {
				Form            []string `json:"form"`
				FilingDate      []string `json:"filingDate"`
				AccessionNumber []string `json:"accessionNumber"`
				PrimaryDocument []string `json:"primaryDocument"`
			} `json:"recent"`
		} `json:"filings"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode submissions: %w", err)
	}

	firstMonth, lastMonth := quarter.Months()
	recent := payload.Filings.Recent
	for i := range recent.Form {
		if recent.Form[i] != models.Form10Q {
			continue
		}
		filed, err := time.Parse("2006-01-02", recent.FilingDate[i])
		if err != nil {
			continue
		}
		month := int(filed.Month())
		if filed.Year() != year || month < firstMonth || month > lastMonth {
			continue
		}

		// Archive paths use the unpadded CIK and the accession number
		// without dashes.
		cikNum, err := strconv.Atoi(cik)
		if err != nil {
			return "", fmt.Errorf("malformed CIK %q: %v", cik, err)
		}
		acc := strings.ReplaceAll(recent.AccessionNumber[i], "-", "")
		url := fmt.Sprintf("%s/%d/%s/%s", c.archivesURL, cikNum, acc, recent.PrimaryDocument[i])
		log.Debug().Str("cik", cik).Int("year", year).Str("quarter", string(quarter)).Str("url", url).Msg("Located filing")
		return url, nil
	}

	return "", fmt.Errorf("%w: no %s for CIK=%s year=%d quarter=%s", ErrNotFound, models.Form10Q, cik, year, quarter)
}

// Fetch downloads the raw filing markup from url.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrFetch, url, err)
	}
	return body, nil
}
