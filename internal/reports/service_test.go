package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/pulseboard/feedback-insights/internal/config"
	"github.com/pulseboard/feedback-insights/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.DigestReport {
	return &models.DigestReport{
		GeneratedAt: time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC),
		Period:      "weekly",
		Overview: models.OverviewStats{
			Total: 12, Positive: 5, Neutral: 3, Negative: 4,
			Critical: 2, High: 3, AvgSentiment: -0.05,
		},
		TopThemes: []models.ThemeStats{
			{Theme: "reliability", Total: 4, Urgent: 3, AvgSentiment: -0.6},
			{Theme: "pricing", Total: 5, Urgent: 1, AvgSentiment: 0.1},
		},
		Recent: []models.FeedbackItem{
			{
				Channel: "support", Content: "webhooks keep failing",
				Sentiment: "negative", Urgency: "critical", Theme: "reliability",
				CreatedAt: time.Date(2026, 8, 23, 14, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestService_BuildWebhookMessage(t *testing.T) {
	service := NewService(&config.Config{})

	message := service.buildWebhookMessage(sampleReport())

	assert.Equal(t, "MessageCard", message.Type)
	assert.Equal(t, "Feedback Digest - Weekly", message.Title)
	require.Len(t, message.Sections, 2)

	facts := message.Sections[0].Facts
	assert.Equal(t, "Total Feedback", facts[0].Name)
	assert.Equal(t, "12", facts[0].Value)

	assert.Contains(t, message.Sections[1].ActivityText, "reliability")
	assert.Contains(t, message.Sections[1].ActivityText, "3 urgent")
}

func TestService_BuildEmailText(t *testing.T) {
	service := NewService(&config.Config{})

	text := service.buildEmailText(sampleReport())

	assert.Contains(t, text, "Feedback Digest - Weekly")
	assert.Contains(t, text, "Total Feedback: 12")
	assert.Contains(t, text, "1. reliability - 4 items, 3 urgent")
	assert.Contains(t, text, "[support] webhooks keep failing")
}

func TestService_BuildEmailHTML(t *testing.T) {
	service := NewService(&config.Config{})

	html, err := service.buildEmailHTML(sampleReport())
	require.NoError(t, err)

	assert.True(t, strings.Contains(html, "Weekly report generated"))
	assert.Contains(t, html, "reliability")
	assert.Contains(t, html, "webhooks keep failing")
}
