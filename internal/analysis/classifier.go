package analysis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pulseboard/feedback-insights/internal/llm"
	"github.com/pulseboard/feedback-insights/internal/models"
	"github.com/sirupsen/logrus"
)

// Classifier turns raw feedback text into a validated ClassificationResult.
// The generative model's output is treated as untrusted: anything that
// fails extraction, decoding, or enum validation collapses to a fixed
// neutral fallback, so callers always get a usable, in-domain record.
type Classifier struct {
	llm llm.Client
}

// NewClassifier creates a classifier backed by the given text generator
func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{llm: client}
}

// rawClassification mirrors the JSON contract stated in the prompt
type rawClassification struct {
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
	Theme          string  `json:"theme"`
	Urgency        string  `json:"urgency"`
	Summary        string  `json:"summary"`
}

// Classify analyzes one piece of feedback. It never fails: classifier
// errors and malformed output are absorbed into the fallback record.
// Content must be non-empty; rejecting empty input is the caller's job.
func (c *Classifier) Classify(ctx context.Context, content string) models.ClassificationResult {
	response, err := c.llm.Run(ctx, buildClassifyPrompt(content))
	if err != nil {
		logrus.Warnf("Classifier call failed, using fallback: %v", err)
		return fallbackResult("AI analysis unavailable")
	}

	extracted, ok := extractJSON(response)
	if !ok {
		logrus.Warnf("No JSON object found in classifier response (%d bytes)", len(response))
		return fallbackResult("Unable to parse AI response")
	}

	var raw rawClassification
	if err := json.Unmarshal([]byte(extracted), &raw); err != nil {
		logrus.Warnf("Classifier response is not valid JSON: %v", err)
		return fallbackResult("Unable to parse AI response")
	}

	// Out-of-domain enum values are never coerced; the whole result is
	// discarded in favor of the fallback.
	if !models.ValidSentiment(raw.Sentiment) || !models.ValidTheme(raw.Theme) || !models.ValidUrgency(raw.Urgency) {
		logrus.Warnf("Classifier returned out-of-domain values: sentiment=%q theme=%q urgency=%q",
			raw.Sentiment, raw.Theme, raw.Urgency)
		return fallbackResult("Unable to parse AI response")
	}

	return models.ClassificationResult{
		Sentiment:      raw.Sentiment,
		SentimentScore: clampScore(raw.SentimentScore),
		Theme:          raw.Theme,
		Urgency:        raw.Urgency,
		Summary:        raw.Summary,
	}
}

func buildClassifyPrompt(content string) string {
	var sb strings.Builder

	sb.WriteString("Analyze this piece of product feedback and classify it. Return JSON only.\n\n")
	sb.WriteString("Feedback:\n")
	sb.WriteString(content)
	sb.WriteString("\n\n")

	sb.WriteString(`Return a JSON object with this structure:
{
  "sentiment": "positive" | "neutral" | "negative",
  "sentiment_score": -1.0 to 1.0,
  "theme": "`)
	sb.WriteString(strings.Join(models.Themes, `" | "`))
	sb.WriteString(`",
  "urgency": "low" | "medium" | "high" | "critical",
  "summary": "one sentence summary"
}

Rules:
- sentiment_score is a float between -1.0 (very negative) and 1.0 (very positive)
- Pick the single theme that fits best; use "other" when nothing fits
- urgency reflects how quickly the product team should act
- summary is exactly one sentence

Return ONLY the JSON object, no other text.`)

	return sb.String()
}

// extractJSON scans for the first balanced-looking {...} region: greedy
// from the first '{' to the last '}'. Generative models routinely wrap
// JSON in prose or markdown fences; everything outside is discarded.
func extractJSON(response string) (string, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return response[start : end+1], true
}

func fallbackResult(summary string) models.ClassificationResult {
	return models.ClassificationResult{
		Sentiment:      models.SentimentNeutral,
		SentimentScore: 0,
		Theme:          "other",
		Urgency:        models.UrgencyMedium,
		Summary:        summary,
	}
}

func clampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
