package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agulab/form4sent/internal/classify"
	"github.com/agulab/form4sent/internal/store"
)

func TestTallyCountsPerSentiment(t *testing.T) {
	outcomes := []classify.Outcome{
		{Ticker: "ACME", Accession: "0001", Sentiment: store.SentimentBullish},
		{Ticker: "ACME", Accession: "0002", Sentiment: store.SentimentBullish},
		{Ticker: "ZZZZ", Accession: "0003", Sentiment: store.SentimentError},
	}

	counts := tally(outcomes)
	assert.Equal(t, 2, counts[store.SentimentBullish])
	assert.Equal(t, 1, counts[store.SentimentError])
	assert.Zero(t, counts[store.SentimentBearish])
}

func TestEmailDigestDisabledIsNoOp(t *testing.T) {
	outcomes := []classify.Outcome{
		{Ticker: "ACME", Accession: "0001", Sentiment: store.SentimentNeutral},
	}

	require.NoError(t, EmailDigest(outcomes, EmailConfig{Enabled: false}))
	require.NoError(t, EmailDigest(nil, EmailConfig{Enabled: true}))
}
