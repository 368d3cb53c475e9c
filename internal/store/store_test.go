package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "filings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertFilingIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	ts := "20250815123456"
	f := Filing{Ticker: "ACME", FormType: "4", Accession: "0001", Text: "first", AcceptanceDatetime: &ts}
	require.NoError(t, s.UpsertFiling(f))

	// A second attempt for the same key is a silent no-op, even with a
	// different payload.
	f.Text = "second"
	require.NoError(t, s.UpsertFiling(f))

	count, err := s.CountFilings()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := s.GetFiling("4")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)
	require.NotNil(t, got.AcceptanceDatetime)
	assert.Equal(t, ts, *got.AcceptanceDatetime)
}

func TestUpsertFilingNullableAcceptance(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpsertFiling(Filing{Ticker: "ACME", FormType: "4", Accession: "0001", Text: "x"}))

	got, err := s.GetFiling("4")
	require.NoError(t, err)
	assert.Nil(t, got.AcceptanceDatetime)
}

func TestForEachUnclassifiedSkipsVerdicted(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpsertFiling(Filing{Ticker: "ACME", FormType: "4", Accession: "0001", Text: "a"}))
	require.NoError(t, s.UpsertFiling(Filing{Ticker: "ACME", FormType: "4", Accession: "0002", Text: "b"}))
	require.NoError(t, s.UpsertFiling(Filing{Ticker: "ACME", FormType: "10-K", Accession: "0003", Text: "c"}))
	require.NoError(t, s.InsertVerdict(Verdict{Ticker: "ACME", Accession: "0001", Sentiment: SentimentBullish}))

	var seen []string
	err := s.ForEachUnclassified("4", func(f Filing) error {
		seen = append(seen, f.Accession)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0002"}, seen)
}

func TestInsertVerdictNeverOverwrites(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.InsertVerdict(Verdict{Ticker: "ACME", Accession: "0001", Sentiment: SentimentBearish}))
	require.NoError(t, s.InsertVerdict(Verdict{Ticker: "ACME", Accession: "0001", Sentiment: SentimentBullish}))

	count, err := s.CountVerdicts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	has, err := s.HasVerdict("0001")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasVerdictMatchesAccessionAlone(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.InsertVerdict(Verdict{Ticker: "OTHER", Accession: "0001", Sentiment: SentimentNeutral}))

	has, err := s.HasVerdict("0001")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasVerdict("0002")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGetFilingEmptyStore(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetFiling("4")
	assert.Error(t, err)
}
