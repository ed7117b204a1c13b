package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pulseboard/feedback-insights/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLLM is a mock implementation of the llm.Client interface
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Run(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestClassifier_Classify_ExtractsWrappedJSON(t *testing.T) {
	mockLLM := &MockLLM{}
	mockLLM.On("Run", mock.Anything, mock.Anything).Return(
		`Sure! {"sentiment":"positive","sentiment_score":0.7,"theme":"pricing","urgency":"low","summary":"ok"} done`, nil)

	classifier := NewClassifier(mockLLM)
	result := classifier.Classify(context.Background(), "the new plan is cheaper, nice")

	assert.Equal(t, "positive", result.Sentiment)
	assert.Equal(t, 0.7, result.SentimentScore)
	assert.Equal(t, "pricing", result.Theme)
	assert.Equal(t, "low", result.Urgency)
	assert.Equal(t, "ok", result.Summary)
}

func TestClassifier_Classify_MarkdownFencedJSON(t *testing.T) {
	mockLLM := &MockLLM{}
	mockLLM.On("Run", mock.Anything, mock.Anything).Return(
		"```json\n{\"sentiment\":\"negative\",\"sentiment_score\":-0.5,\"theme\":\"reliability\",\"urgency\":\"high\",\"summary\":\"outage\"}\n```", nil)

	classifier := NewClassifier(mockLLM)
	result := classifier.Classify(context.Background(), "the service keeps going down")

	assert.Equal(t, "negative", result.Sentiment)
	assert.Equal(t, "reliability", result.Theme)
	assert.Equal(t, "high", result.Urgency)
}

func TestClassifier_Classify_FallbackCases(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		summary  string
	}{
		{
			name:     "Not JSON at all",
			response: "not json at all",
			summary:  "Unable to parse AI response",
		},
		{
			name:     "Empty response",
			response: "",
			summary:  "Unable to parse AI response",
		},
		{
			name:     "Malformed JSON",
			response: `{"sentiment": "positive", "theme": `,
			summary:  "Unable to parse AI response",
		},
		{
			name:     "Hallucinated sentiment",
			response: `{"sentiment":"ecstatic","sentiment_score":0.9,"theme":"pricing","urgency":"low","summary":"ok"}`,
			summary:  "Unable to parse AI response",
		},
		{
			name:     "Hallucinated theme",
			response: `{"sentiment":"positive","sentiment_score":0.9,"theme":"vibes","urgency":"low","summary":"ok"}`,
			summary:  "Unable to parse AI response",
		},
		{
			name:     "Hallucinated urgency",
			response: `{"sentiment":"positive","sentiment_score":0.9,"theme":"pricing","urgency":"asap","summary":"ok"}`,
			summary:  "Unable to parse AI response",
		},
		{
			name:    "Capability failure",
			err:     errors.New("connection refused"),
			summary: "AI analysis unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLLM := &MockLLM{}
			mockLLM.On("Run", mock.Anything, mock.Anything).Return(tt.response, tt.err)

			classifier := NewClassifier(mockLLM)
			result := classifier.Classify(context.Background(), "some feedback")

			assert.Equal(t, models.SentimentNeutral, result.Sentiment)
			assert.Equal(t, 0.0, result.SentimentScore)
			assert.Equal(t, "other", result.Theme)
			assert.Equal(t, models.UrgencyMedium, result.Urgency)
			assert.Equal(t, tt.summary, result.Summary)
		})
	}
}

func TestClassifier_Classify_AlwaysInDomain(t *testing.T) {
	// Whatever the model returns, the result must stay within the closed
	// enum domains with a score in [-1, 1].
	responses := []string{
		"not json at all",
		"",
		"{}",
		`{"sentiment":"positive","sentiment_score":42,"theme":"pricing","urgency":"low","summary":"ok"}`,
		`{"sentiment":"negative","sentiment_score":-3.5,"theme":"performance","urgency":"critical","summary":"slow"}`,
		`prose {"sentiment":"neutral","sentiment_score":0,"theme":"other","urgency":"medium","summary":"meh"} trailing`,
	}

	for _, response := range responses {
		mockLLM := &MockLLM{}
		mockLLM.On("Run", mock.Anything, mock.Anything).Return(response, nil)

		classifier := NewClassifier(mockLLM)
		result := classifier.Classify(context.Background(), "anything")

		assert.True(t, models.ValidSentiment(result.Sentiment), "sentiment %q for response %q", result.Sentiment, response)
		assert.True(t, models.ValidTheme(result.Theme), "theme %q for response %q", result.Theme, response)
		assert.True(t, models.ValidUrgency(result.Urgency), "urgency %q for response %q", result.Urgency, response)
		assert.GreaterOrEqual(t, result.SentimentScore, -1.0)
		assert.LessOrEqual(t, result.SentimentScore, 1.0)
	}
}

func TestClassifier_Classify_ClampsScore(t *testing.T) {
	mockLLM := &MockLLM{}
	mockLLM.On("Run", mock.Anything, mock.Anything).Return(
		`{"sentiment":"positive","sentiment_score":1.7,"theme":"pricing","urgency":"low","summary":"ok"}`, nil)

	classifier := NewClassifier(mockLLM)
	result := classifier.Classify(context.Background(), "great pricing")

	assert.Equal(t, 1.0, result.SentimentScore)
	assert.Equal(t, "positive", result.Sentiment)
}

func TestClassifier_Classify_PromptContainsContent(t *testing.T) {
	mockLLM := &MockLLM{}
	mockLLM.On("Run", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "the dashboard is slow") &&
			strings.Contains(prompt, "sentiment_score") &&
			strings.Contains(prompt, "urgency")
	})).Return(`{"sentiment":"negative","sentiment_score":-0.4,"theme":"performance","urgency":"medium","summary":"slow dashboard"}`, nil)

	classifier := NewClassifier(mockLLM)
	classifier.Classify(context.Background(), "the dashboard is slow")

	mockLLM.AssertExpectations(t)
}
