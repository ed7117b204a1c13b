package reports

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pulseboard/feedback-insights/internal/config"
	"github.com/pulseboard/feedback-insights/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service delivers digest reports via the configured channels
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements DigestInterface
var _ DigestInterface = (*Service)(nil)

// WebhookMessage is the card posted to the configured webhook
type WebhookMessage struct {
	Type     string           `json:"@type"`
	Context  string           `json:"@context"`
	Title    string           `json:"title"`
	Text     string           `json:"text"`
	Sections []WebhookSection `json:"sections,omitempty"`
}

type WebhookSection struct {
	ActivityTitle string        `json:"activityTitle,omitempty"`
	ActivityText  string        `json:"activityText,omitempty"`
	Facts         []WebhookFact `json:"facts,omitempty"`
	Markdown      bool          `json:"markdown,omitempty"`
}

type WebhookFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new digest delivery service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendDigest sends a digest via every configured channel
func (s *Service) SendDigest(report *models.DigestReport) error {
	var errors []string

	if s.config.WebhookURL != "" {
		if err := s.sendToWebhook(report); err != nil {
			logrus.Errorf("Failed to send webhook digest: %v", err)
			errors = append(errors, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Successfully sent digest to webhook")
		}
	}

	if s.config.DigestEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email digest: %v", err)
			errors = append(errors, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Successfully sent digest via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("digest delivery errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToWebhook(report *models.DigestReport) error {
	message := s.buildWebhookMessage(report)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.WebhookURL)

	if err != nil {
		return fmt.Errorf("failed to post webhook message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildWebhookMessage(report *models.DigestReport) *WebhookMessage {
	message := &WebhookMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Feedback Digest - %s", titleCase(report.Period)),
		Text: fmt.Sprintf("%d analyzed feedback items, average sentiment %.2f",
			report.Overview.Total, report.Overview.AvgSentiment),
	}

	facts := []WebhookFact{
		{Name: "Total Feedback", Value: fmt.Sprintf("%d", report.Overview.Total)},
		{Name: "Positive", Value: fmt.Sprintf("%d", report.Overview.Positive)},
		{Name: "Negative", Value: fmt.Sprintf("%d", report.Overview.Negative)},
		{Name: "Critical Urgency", Value: fmt.Sprintf("%d", report.Overview.Critical)},
		{Name: "Generated", Value: report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
	}

	message.Sections = append(message.Sections, WebhookSection{
		ActivityTitle: "Overview",
		Facts:         facts,
		Markdown:      true,
	})

	if len(report.TopThemes) > 0 {
		var lines []string
		for _, theme := range report.TopThemes {
			lines = append(lines, fmt.Sprintf("**%s** - %d items, %d urgent, avg sentiment %.2f",
				theme.Theme, theme.Total, theme.Urgent, theme.AvgSentiment))
		}

		message.Sections = append(message.Sections, WebhookSection{
			ActivityTitle: "Top Themes",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(report *models.DigestReport) error {
	subject := fmt.Sprintf("Feedback Digest - %s (%d items)",
		titleCase(report.Period), report.Overview.Total)

	htmlBody, err := s.buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUser)
	m.SetHeader("To", s.config.DigestEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUser, s.config.SMTPPass)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailHTML(report *models.DigestReport) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Feedback Digest</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #1a73e8; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .theme { border-left: 4px solid #1a73e8; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .item { padding: 8px; margin: 8px 0; border-bottom: 1px solid #eee; }
        .meta { color: #666; font-size: 0.9em; }
        .positive { border-left-color: #188038; }
        .negative { border-left-color: #d93025; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Feedback Digest</h1>
        <p>{{.Period | title}} report generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Overview</h2>
        <p><strong>Total Feedback:</strong> {{.Overview.Total}}</p>
        <p><strong>Positive:</strong> {{.Overview.Positive}} | <strong>Neutral:</strong> {{.Overview.Neutral}} | <strong>Negative:</strong> {{.Overview.Negative}}</p>
        <p><strong>Critical:</strong> {{.Overview.Critical}} | <strong>High Urgency:</strong> {{.Overview.High}}</p>
        <p><strong>Average Sentiment:</strong> {{printf "%.2f" .Overview.AvgSentiment}}</p>
    </div>

    {{if .TopThemes}}
    <h2>Top Themes</h2>
    {{range .TopThemes}}
    <div class="theme">
        <strong>{{.Theme}}</strong> - {{.Total}} items, {{.Urgent}} urgent, avg sentiment {{printf "%.2f" .AvgSentiment}}
    </div>
    {{end}}
    {{end}}

    {{if .Recent}}
    <h2>Recent Feedback</h2>
    {{range .Recent}}
    <div class="item {{.Sentiment}}">
        {{if .Title}}<strong>{{.Title}}</strong><br>{{end}}
        {{.Content | truncate 200}}
        <div class="meta">{{.Channel}} | {{.Sentiment}} | {{.Urgency}} | {{.CreatedAt.Format "Jan 2, 2006"}}</div>
    </div>
    {{end}}
    {{end}}

    <hr>
    <p><small>This digest was generated automatically by Feedback Insights.</small></p>
</body>
</html>
`

	t := template.New("digest").Funcs(template.FuncMap{
		"title": titleCase,
		"truncate": func(length int, s string) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
	})

	t, err := t.Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(report *models.DigestReport) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Feedback Digest - %s\n", titleCase(report.Period)))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("OVERVIEW\n")
	text.WriteString("========\n")
	text.WriteString(fmt.Sprintf("Total Feedback: %d\n", report.Overview.Total))
	text.WriteString(fmt.Sprintf("Positive: %d | Neutral: %d | Negative: %d\n",
		report.Overview.Positive, report.Overview.Neutral, report.Overview.Negative))
	text.WriteString(fmt.Sprintf("Critical: %d | High Urgency: %d\n",
		report.Overview.Critical, report.Overview.High))
	text.WriteString(fmt.Sprintf("Average Sentiment: %.2f\n", report.Overview.AvgSentiment))

	if len(report.TopThemes) > 0 {
		text.WriteString("\nTOP THEMES\n")
		text.WriteString("==========\n")
		for i, theme := range report.TopThemes {
			text.WriteString(fmt.Sprintf("%d. %s - %d items, %d urgent, avg sentiment %.2f\n",
				i+1, theme.Theme, theme.Total, theme.Urgent, theme.AvgSentiment))
		}
	}

	if len(report.Recent) > 0 {
		text.WriteString("\nRECENT FEEDBACK\n")
		text.WriteString("===============\n")
		for i, item := range report.Recent {
			if i >= 10 {
				break
			}
			content := item.Content
			if len(content) > 200 {
				content = content[:200] + "..."
			}
			text.WriteString(fmt.Sprintf("\n%d. [%s] %s\n", i+1, item.Channel, content))
			text.WriteString(fmt.Sprintf("   Sentiment: %s | Urgency: %s | Theme: %s | %s\n",
				item.Sentiment, item.Urgency, item.Theme, item.CreatedAt.Format("Jan 2, 2006")))
		}
	}

	text.WriteString("\n---\nThis digest was generated automatically by Feedback Insights.\n")

	return text.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
