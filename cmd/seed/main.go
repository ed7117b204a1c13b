package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pulseboard/feedback-insights/internal/models"
	"github.com/pulseboard/feedback-insights/internal/store"
)

type fixture struct {
	channel string
	title   string
	content string
	author  string
	result  models.ClassificationResult
}

// Pre-classified sample feedback for local dashboard development, so the
// aggregate views have data without a live classifier.
var fixtures = []fixture{
	{
		channel: "support",
		title:   "API latency has gotten much worse",
		content: "Since last week our p99 latency on the search endpoint doubled. Requests that used to take 200ms now regularly take over a second.",
		author:  "dana@acme.example",
		result: models.ClassificationResult{
			Sentiment: "negative", SentimentScore: -0.8,
			Theme: "performance", Urgency: "critical",
			Summary: "Severe search endpoint latency regression since last week.",
		},
	},
	{
		channel: "github",
		title:   "Pricing page is confusing",
		content: "I can't figure out from the pricing page whether the team plan includes SSO. Had to open a ticket just to ask.",
		author:  "octocat",
		result: models.ClassificationResult{
			Sentiment: "negative", SentimentScore: -0.4,
			Theme: "pricing", Urgency: "medium",
			Summary: "Pricing page does not make plan features clear.",
		},
	},
	{
		channel: "discord",
		content: "The new quickstart guide is fantastic, got my first integration running in under ten minutes.",
		author:  "builder#4821",
		result: models.ClassificationResult{
			Sentiment: "positive", SentimentScore: 0.9,
			Theme: "documentation", Urgency: "low",
			Summary: "Quickstart guide praised for fast time to first integration.",
		},
	},
	{
		channel: "twitter",
		content: "Love the CLI but the error messages when auth fails are useless. Just says 'request failed'.",
		result: models.ClassificationResult{
			Sentiment: "negative", SentimentScore: -0.3,
			Theme: "developer-experience", Urgency: "medium",
			Summary: "CLI auth failures produce unhelpful error messages.",
		},
	},
	{
		channel: "forum",
		title:   "Intermittent 502s from the webhook receiver",
		content: "We see bursts of 502 responses from the webhook receiver a few times a day. Retries succeed but deliveries are delayed.",
		author:  "ops_team",
		result: models.ClassificationResult{
			Sentiment: "negative", SentimentScore: -0.6,
			Theme: "reliability", Urgency: "high",
			Summary: "Webhook receiver intermittently returns 502s causing delivery delays.",
		},
	},
	{
		channel: "github",
		title:   "Feature request: export dashboards as PDF",
		content: "It would be great to export a dashboard snapshot as a PDF for sharing with stakeholders who don't have accounts.",
		author:  "pm-jordan",
		result: models.ClassificationResult{
			Sentiment: "neutral", SentimentScore: 0.1,
			Theme: "feature-request", Urgency: "low",
			Summary: "Request for PDF export of dashboard snapshots.",
		},
	},
	{
		channel: "support",
		content: "Honestly the product mostly just works for us. Billing was easy to set up and support answered quickly.",
		author:  "sam@startup.example",
		result: models.ClassificationResult{
			Sentiment: "positive", SentimentScore: 0.7,
			Theme: "other", Urgency: "low",
			Summary: "General satisfaction with setup and support responsiveness.",
		},
	},
	{
		channel: "forum",
		title:   "Docs for the v2 API are out of date",
		content: "Half the examples in the v2 API reference still use v1 endpoints. Copy-pasting them returns 404s.",
		author:  "integrator42",
		result: models.ClassificationResult{
			Sentiment: "negative", SentimentScore: -0.5,
			Theme: "documentation", Urgency: "high",
			Summary: "v2 API reference contains stale v1 examples that 404.",
		},
	},
}

func main() {
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded configuration from .env")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "feedback.db"
	}

	st, err := store.New(dbPath)
	if err != nil {
		fmt.Printf("Failed to open store at %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer st.Close()

	for _, f := range fixtures {
		item, err := st.AddFeedback(f.channel, f.title, f.content, f.author)
		if err != nil {
			fmt.Printf("Failed to insert fixture: %v\n", err)
			os.Exit(1)
		}
		if err := st.ApplyClassification(item.ID, f.result); err != nil {
			fmt.Printf("Failed to classify fixture %s: %v\n", item.ID, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Seeded %d feedback items into %s\n", len(fixtures), dbPath)
}
