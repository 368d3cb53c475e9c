/*
Package ai classifies the sentiment of Form 4 filings with the Gemini API.
The response schema pins the reply to a single JSON object with one
"sentiment" field so the label can be extracted mechanically.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/agulab/form4sent/internal/store"
)

const systemInstruction = `
You are an expert SEC-filing analyst.
Given the flattened text of a Form 4 (Statement of Changes in Beneficial Ownership),
classify the sentiment of the transaction(s) into exactly one of:
  - "Bullish"   (open-market purchases, exercise-and-hold, etc.)
  - "Bearish"   (open-market sales, large dispositions)
  - "Neutral"   (10b5-1 plan, automatic vesting, tax withholding, gift, etc.)

Return only a single JSON object like:
{"sentiment": "Bullish"}
`

// Gemini is the production Classifier implementation.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed classifier.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client, model: modelName}, nil
}

type sentimentReply struct {
	Sentiment string `json:"sentiment"`
}

// Classify submits flattened filing text and returns the verdict label. A
// failed API call returns an error; a reply that parses but carries no label
// from the closed set comes back as SentimentUnknown with no error.
func (g *Gemini) Classify(ctx context.Context, text string) (store.Sentiment, error) {
	contents := []*genai.Content{
		{Role: "system", Parts: []*genai.Part{{Text: systemInstruction}}},
		{Role: "user", Parts: []*genai.Part{{Text: text}}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	var reply sentimentReply
	if err := json.Unmarshal([]byte(resp.Text()), &reply); err != nil {
		return store.SentimentUnknown, nil
	}

	switch store.Sentiment(reply.Sentiment) {
	case store.SentimentBullish, store.SentimentBearish, store.SentimentNeutral:
		return store.Sentiment(reply.Sentiment), nil
	default:
		return store.SentimentUnknown, nil
	}
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"sentiment": {
				Type:        genai.TypeString,
				Description: `One of "Bullish", "Bearish" or "Neutral".`,
			},
		},
		Required: []string{"sentiment"},
	}
}
