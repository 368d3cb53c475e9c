/*
Package ingest walks a ticker list, fetches filing bundles through the EDGAR
transport and absorbs them into the filing store. The store's composite key
makes every absorption idempotent, so a re-run over the same tickers inserts
nothing new; bundle directories are deleted as soon as their content is
durable in the store.
*/
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agulab/form4sent/internal/edgar"
	"github.com/agulab/form4sent/internal/store"
)

const (
	submissionFileName = "full-submission.txt"

	// The acceptance header sits in the first kilobyte of a submission.
	acceptanceScanWindow = 1000
)

var (
	acceptanceRe = regexp.MustCompile(`(?i)<ACCEPTANCE-DATETIME>(\d{14})`)
	symbolRe     = regexp.MustCompile(`^[A-Za-z0-9.\-]+$`)
)

// Fetcher materializes filing bundles on disk. The production implementation
// is *edgar.Client.
type Fetcher interface {
	Fetch(ctx context.Context, formType, ticker string, limit int, since time.Time, root string) error
}

// Controller drives one ingestion run.
type Controller struct {
	store   *store.Store
	fetcher Fetcher
	root    string
	log     *zap.SugaredLogger
}

// New creates an ingestion controller writing bundles under root.
func New(s *store.Store, f Fetcher, root string, log *zap.SugaredLogger) *Controller {
	return &Controller{store: s, fetcher: f, root: root, log: log}
}

// Run processes each ticker in list order: fetch bundles, absorb them into
// the store, reclaim the on-disk artifacts. A ticker the transport cannot
// resolve is logged and skipped; any other fetch failure aborts the run with
// all prior work already committed. Returns the number of bundles absorbed.
func (c *Controller) Run(ctx context.Context, tickers []string, formType string, since time.Time, limit int) (int, error) {
	absorbed := 0
	for _, ticker := range tickers {
		if !symbolRe.MatchString(ticker) {
			c.log.Warnw("skipping invalid symbol", "ticker", ticker)
			continue
		}

		c.log.Infow("fetching filings", "ticker", ticker, "form", formType)
		err := c.fetcher.Fetch(ctx, formType, ticker, limit, since, c.root)
		if errors.Is(err, edgar.ErrUnresolvableTicker) {
			c.log.Warnw("could not resolve ticker, skipping", "ticker", ticker)
			continue
		}
		if err != nil {
			return absorbed, fmt.Errorf("fetch failed for %s: %w", ticker, err)
		}

		n, err := c.absorb(ticker, formType)
		if err != nil {
			return absorbed, err
		}
		absorbed += n
	}
	return absorbed, nil
}

// absorb moves every bundle under <root>/<TICKER>/<FORM>/ into the store and
// deletes it. The store is the sole durable copy once this returns.
func (c *Controller) absorb(ticker, formType string) (int, error) {
	ticker = strings.ToUpper(ticker)
	formType = strings.ToUpper(formType)

	tickerDir := filepath.Join(c.root, ticker)
	formDir := filepath.Join(tickerDir, formType)

	entries, err := os.ReadDir(formDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read bundle directory %s: %w", formDir, err)
	}

	absorbed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		accession := entry.Name()
		accessionDir := filepath.Join(formDir, accession)

		raw, err := os.ReadFile(filepath.Join(accessionDir, submissionFileName))
		if err == nil {
			f := store.Filing{
				Ticker:             ticker,
				FormType:           formType,
				Accession:          accession,
				Text:               string(raw),
				AcceptanceDatetime: extractAcceptance(string(raw)),
			}
			if err := c.store.UpsertFiling(f); err != nil {
				return absorbed, fmt.Errorf("failed to store filing %s: %w", accession, err)
			}
			absorbed++
			c.log.Infow("absorbed filing", "ticker", ticker, "accession", accession)
		}

		// The bundle goes away whether the upsert inserted or was a no-op.
		if err := os.RemoveAll(accessionDir); err != nil {
			c.log.Warnw("failed to remove bundle directory", "dir", accessionDir, "error", err)
		}
	}

	// Best-effort cleanup of the now-empty parents.
	_ = os.Remove(formDir)
	_ = os.Remove(tickerDir)

	return absorbed, nil
}

// extractAcceptance scans the head of a submission for its acceptance
// timestamp. Returns nil when the header pattern is not found in the window.
func extractAcceptance(raw string) *string {
	head := raw
	if len(head) > acceptanceScanWindow {
		head = head[:acceptanceScanWindow]
	}
	m := acceptanceRe.FindStringSubmatch(head)
	if m == nil {
		return nil
	}
	return &m[1]
}
