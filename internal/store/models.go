package store

// Sentiment is the classification verdict for one filing.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
	// SentimentUnknown is recorded when the classifier reply cannot be parsed
	// or carries a label outside the closed set.
	SentimentUnknown Sentiment = "Unknown"
	// SentimentError is recorded when the classifier call itself fails.
	SentimentError Sentiment = "Error"
)

// Filing is one raw regulatory document as archived from EDGAR. Rows are
// append-only: created once on first ingestion, never mutated or deleted.
type Filing struct {
	Ticker             string  `gorm:"column:ticker;primaryKey"`
	FormType           string  `gorm:"column:form_type;primaryKey"`
	Accession          string  `gorm:"column:accession;primaryKey"`
	Text               string  `gorm:"column:text"`
	AcceptanceDatetime *string `gorm:"column:acceptance_datetime"`
}

func (Filing) TableName() string { return "filings" }

// Verdict is one classification outcome. At most one row exists per
// (ticker, accession); once written it is never overwritten.
type Verdict struct {
	Ticker    string    `gorm:"column:ticker;primaryKey"`
	Accession string    `gorm:"column:accession;primaryKey"`
	Sentiment Sentiment `gorm:"column:sentiment"`
}

func (Verdict) TableName() string { return "form4_sentiment" }
