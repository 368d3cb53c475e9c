/*
Package edgar downloads filing submissions from the SEC EDGAR system. A fetch
materializes each filing as an on-disk bundle under
<root>/<TICKER>/<FORM>/<accession>/full-submission.txt, mirroring the archive
layout the ingestion step consumes and then reclaims.
*/
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	defaultTickerMapURL   = "https://www.sec.gov/files/company_tickers.json"
	defaultSubmissionsURL = "https://data.sec.gov/submissions/CIK%010d.json"
	defaultArchiveURL     = "https://www.sec.gov/Archives/edgar/data/%d/%s.txt"

	// SEC fair-access policy allows at most 10 requests per second.
	defaultRequestDelay = 150 * time.Millisecond

	submissionFileName = "full-submission.txt"
)

// ErrUnresolvableTicker is returned when a symbol has no entry in the SEC
// company-ticker map and therefore cannot be mapped to a filer.
var ErrUnresolvableTicker = errors.New("ticker not found in SEC company map")

// Client fetches filings from EDGAR. The SEC requires a contact address in
// the User-Agent header of every request.
type Client struct {
	HTTPClient     *http.Client
	UserAgent      string
	TickerMapURL   string
	SubmissionsURL string
	ArchiveURL     string
	RequestDelay   time.Duration

	mapOnce   sync.Once
	mapErr    error
	tickerMap map[string]int
}

// NewClient creates a client with production EDGAR endpoints.
func NewClient(userAgent string) *Client {
	return &Client{
		HTTPClient:     &http.Client{Timeout: 60 * time.Second},
		UserAgent:      userAgent,
		TickerMapURL:   defaultTickerMapURL,
		SubmissionsURL: defaultSubmissionsURL,
		ArchiveURL:     defaultArchiveURL,
		RequestDelay:   defaultRequestDelay,
	}
}

type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

type submissionsDoc struct {
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			Form            []string `json:"form"`
			FilingDate      []string `json:"filingDate"`
		} `json:"recent"`
	} `json:"filings"`
}

// ResolveCIK maps an equity symbol to its SEC Central Index Key. The ticker
// map is fetched once and cached for the lifetime of the client.
func (c *Client) ResolveCIK(ctx context.Context, ticker string) (int, error) {
	c.mapOnce.Do(func() {
		body, err := c.get(ctx, c.TickerMapURL)
		if err != nil {
			c.mapErr = fmt.Errorf("failed to fetch company-ticker map: %w", err)
			return
		}
		var entries map[string]tickerEntry
		if err := json.Unmarshal(body, &entries); err != nil {
			c.mapErr = fmt.Errorf("failed to decode company-ticker map: %w", err)
			return
		}
		c.tickerMap = make(map[string]int, len(entries))
		for _, e := range entries {
			c.tickerMap[strings.ToUpper(e.Ticker)] = e.CIK
		}
	})
	if c.mapErr != nil {
		return 0, c.mapErr
	}

	cik, ok := c.tickerMap[strings.ToUpper(ticker)]
	if !ok {
		return 0, fmt.Errorf("%s: %w", ticker, ErrUnresolvableTicker)
	}
	return cik, nil
}

// Fetch downloads up to limit filings of formType for ticker accepted on or
// after since, writing one bundle directory per filing under root. An
// unknown symbol yields ErrUnresolvableTicker; any other failure is returned
// as-is and the caller treats it as fatal.
func (c *Client) Fetch(ctx context.Context, formType, ticker string, limit int, since time.Time, root string) error {
	cik, err := c.ResolveCIK(ctx, ticker)
	if err != nil {
		return err
	}

	body, err := c.get(ctx, fmt.Sprintf(c.SubmissionsURL, cik))
	if err != nil {
		return fmt.Errorf("failed to fetch submissions for %s: %w", ticker, err)
	}
	var doc submissionsDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("failed to decode submissions for %s: %w", ticker, err)
	}

	recent := doc.Filings.Recent
	fetched := 0
	for i := range recent.AccessionNumber {
		if fetched >= limit {
			break
		}
		if i >= len(recent.Form) || recent.Form[i] != formType {
			continue
		}
		if i < len(recent.FilingDate) {
			filed, err := time.Parse("2006-01-02", recent.FilingDate[i])
			if err == nil && filed.Before(since) {
				continue
			}
		}

		accession := recent.AccessionNumber[i]
		if err := c.downloadSubmission(ctx, cik, accession, formType, ticker, root); err != nil {
			return err
		}
		fetched++
	}

	return nil
}

func (c *Client) downloadSubmission(ctx context.Context, cik int, accession, formType, ticker, root string) error {
	body, err := c.get(ctx, fmt.Sprintf(c.ArchiveURL, cik, accession))
	if err != nil {
		return fmt.Errorf("failed to download submission %s: %w", accession, err)
	}

	dir := filepath.Join(root, strings.ToUpper(ticker), strings.ToUpper(formType), accession)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bundle directory %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, submissionFileName), body, 0o644); err != nil {
		return fmt.Errorf("failed to write submission %s: %w", accession, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.RequestDelay > 0 {
		time.Sleep(c.RequestDelay)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
