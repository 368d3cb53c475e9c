/*
Package tickers handles the ticker list boundary: loading the input CSV the
pipeline consumes and materializing the SEC company-ticker map as a CSV that
can serve as that input.
*/
package tickers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
)

// DefaultCompanyMapURL is the SEC's published company-ticker map.
const DefaultCompanyMapURL = "https://www.sec.gov/files/company_tickers.json"

// Load reads symbols from a CSV file with a header row containing a "ticker"
// column. Blank cells are dropped; file order is preserved.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ticker list %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "ticker") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("no ticker column in %s", path)
	}

	var symbols []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if col >= len(rec) {
			continue
		}
		if sym := strings.TrimSpace(rec[col]); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	return symbols, nil
}

type companyEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// DownloadCompanyList fetches the SEC company-ticker JSON map and writes it
// to outPath as a cik,ticker,title CSV. Returns the number of rows written.
func DownloadCompanyList(ctx context.Context, url, userAgent, outPath string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch company map: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("received status %d from %s", resp.StatusCode, url)
	}

	var blob map[string]companyEntry
	if err := json.NewDecoder(resp.Body).Decode(&blob); err != nil {
		return 0, fmt.Errorf("failed to decode company map: %w", err)
	}

	companies := make([]companyEntry, 0, len(blob))
	for _, e := range blob {
		companies = append(companies, e)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].CIK < companies[j].CIK })

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"cik", "ticker", "title"}); err != nil {
		return 0, err
	}
	for _, c := range companies {
		if err := w.Write([]string{fmt.Sprint(c.CIK), c.Ticker, c.Title}); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	return len(companies), nil
}
