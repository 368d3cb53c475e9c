/*
Package notify reports the results of a classification run via console output
and an optional email digest.
*/
package notify

import (
	"fmt"
	"strings"

	"github.com/agulab/form4sent/internal/classify"
	"github.com/agulab/form4sent/internal/store"
)

// ReportOutcomes prints a human-readable summary of a run to stdout so
// skipped or errored filings can be triaged without re-running the pipeline.
func ReportOutcomes(outcomes []classify.Outcome) {
	if len(outcomes) == 0 {
		fmt.Println("No new filings classified.")
		return
	}

	fmt.Println("-------------------------------------------")
	for _, o := range outcomes {
		fmt.Printf("%-8s %-24s ->  %s\n", o.Ticker, o.Accession, o.Sentiment)
	}
	fmt.Println("-------------------------------------------")

	counts := tally(outcomes)
	var parts []string
	for _, s := range []store.Sentiment{
		store.SentimentBullish, store.SentimentBearish, store.SentimentNeutral,
		store.SentimentUnknown, store.SentimentError,
	} {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", s, counts[s]))
		}
	}
	fmt.Printf("Classified %d filing(s) (%s)\n", len(outcomes), strings.Join(parts, ", "))
}

func tally(outcomes []classify.Outcome) map[store.Sentiment]int {
	counts := make(map[store.Sentiment]int)
	for _, o := range outcomes {
		counts[o.Sentiment]++
	}
	return counts
}
