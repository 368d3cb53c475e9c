/*
Package classify reads unclassified filings from the store, flattens their
text and records one sentiment verdict per filing in the ledger. The ledger's
(ticker, accession) key plus an accession-only re-check before every call
keep classification at most once per filing across any number of runs.
*/
package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agulab/form4sent/internal/normalize"
	"github.com/agulab/form4sent/internal/store"
)

// Classifier turns canonical filing text into a sentiment label. The
// production implementation is the Gemini client in internal/ai; an error
// return means the call itself failed, not that the label was inconclusive.
type Classifier interface {
	Classify(ctx context.Context, text string) (store.Sentiment, error)
}

// Outcome is one verdict written during a run, kept for reporting.
type Outcome struct {
	Ticker    string
	Accession string
	Sentiment store.Sentiment
}

// Controller drives one classification run.
type Controller struct {
	store      *store.Store
	classifier Classifier
	funds      map[string]struct{}
	log        *zap.SugaredLogger
}

// New creates a classification controller. fundSymbols is the curated set of
// ETF/fund tickers to exclude; membership is checked case-insensitively.
func New(s *store.Store, cl Classifier, fundSymbols []string, log *zap.SugaredLogger) *Controller {
	funds := make(map[string]struct{}, len(fundSymbols))
	for _, sym := range fundSymbols {
		funds[strings.ToUpper(sym)] = struct{}{}
	}
	return &Controller{store: s, classifier: cl, funds: funds, log: log}
}

// Run classifies every pending filing of formType, committing each verdict
// before moving to the next. Classifier failures are recorded as verdicts
// and never abort the run; only store errors do.
func (c *Controller) Run(ctx context.Context, formType string) ([]Outcome, error) {
	var outcomes []Outcome

	err := c.store.ForEachUnclassified(formType, func(f store.Filing) error {
		if _, isFund := c.funds[strings.ToUpper(f.Ticker)]; isFund {
			c.log.Debugw("skipping fund ticker", "ticker", f.Ticker, "accession", f.Accession)
			return nil
		}

		// Re-check on the accession alone: a concurrent run may have
		// written a verdict since the unclassified scan.
		done, err := c.store.HasVerdict(f.Accession)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		text, err := normalize.Flatten(f.Text)
		if err != nil {
			var malformed *normalize.MalformedDocumentError
			if errors.As(err, &malformed) {
				c.log.Warnw("skipping malformed filing",
					"ticker", f.Ticker, "accession", f.Accession, "error", err)
				return nil
			}
			return fmt.Errorf("failed to flatten %s: %w", f.Accession, err)
		}

		sentiment, err := c.classifier.Classify(ctx, text)
		if err != nil {
			c.log.Warnw("classifier call failed",
				"ticker", f.Ticker, "accession", f.Accession, "error", err)
			sentiment = store.SentimentError
		}

		v := store.Verdict{Ticker: f.Ticker, Accession: f.Accession, Sentiment: sentiment}
		if err := c.store.InsertVerdict(v); err != nil {
			return fmt.Errorf("failed to record verdict for %s: %w", f.Accession, err)
		}

		c.log.Infow("classified filing",
			"ticker", f.Ticker, "accession", f.Accession, "sentiment", sentiment)
		outcomes = append(outcomes, Outcome{Ticker: f.Ticker, Accession: f.Accession, Sentiment: sentiment})
		return nil
	})

	return outcomes, err
}
