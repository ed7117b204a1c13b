package models

import "time"

// Sentiment values assigned by the classifier. Pending marks items that
// have not been analyzed yet and is never a valid classifier output.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
	SentimentPending  = "pending"
)

// Urgency tiers driving prioritization.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// ThemeUncategorized is the sentinel theme for unclassified items.
const ThemeUncategorized = "uncategorized"

// Themes is the closed set of topical categories the classifier may assign.
var Themes = []string{
	"performance",
	"pricing",
	"documentation",
	"developer-experience",
	"reliability",
	"feature-request",
	"other",
}

// Channels is the set of sources feedback arrives from.
var Channels = []string{"support", "github", "discord", "twitter", "forum"}

// ValueScores is the closed set of business-value tiers.
var ValueScores = []string{"low", "medium", "high"}

// FeedbackItem represents one reported piece of feedback
type FeedbackItem struct {
	ID             string    `json:"id"`
	Channel        string    `json:"channel"` // "support", "github", "discord", etc.
	Title          string    `json:"title,omitempty"`
	Content        string    `json:"content"`
	Author         string    `json:"author,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Sentiment      string    `json:"sentiment"`       // "positive", "negative", "neutral", "pending"
	SentimentScore float64   `json:"sentiment_score"` // -1.0 to 1.0
	Theme          string    `json:"theme"`
	Urgency        string    `json:"urgency"`
	ValueScore     string    `json:"value_score"`
	Analyzed       bool      `json:"analyzed"`
}

// ClassificationResult is the structured output of the classification
// pipeline. It is applied to a FeedbackItem or returned standalone by the
// live analyzer; it is never persisted on its own.
type ClassificationResult struct {
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
	Theme          string  `json:"theme"`
	Urgency        string  `json:"urgency"`
	Summary        string  `json:"summary"`
}

// OverviewStats summarizes all analyzed feedback
type OverviewStats struct {
	Total        int     `json:"total"`
	Positive     int     `json:"positive"`
	Neutral      int     `json:"neutral"`
	Negative     int     `json:"negative"`
	Critical     int     `json:"critical"`
	High         int     `json:"high"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

// ThemeStats is one per-theme rollup row
type ThemeStats struct {
	Theme        string  `json:"theme"`
	Total        int     `json:"total"`
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	Critical     int     `json:"critical"`
	High         int     `json:"high"`
	Urgent       int     `json:"urgent"` // critical + high
	AvgSentiment float64 `json:"avg_sentiment"`
}

// TrendPoint is one calendar-day bucket of the sentiment trend
type TrendPoint struct {
	Day          string  `json:"day"` // YYYY-MM-DD
	Total        int     `json:"total"`
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

// ThemeDetail bundles everything the dashboard shows for a single theme
type ThemeDetail struct {
	Theme       string         `json:"theme"`
	Stats       OverviewStats  `json:"stats"`
	Urgency     map[string]int `json:"urgency"`  // all four levels
	Channels    map[string]int `json:"channels"` // count per channel
	Samples     []FeedbackItem `json:"samples"`
	Trend       []TrendPoint   `json:"trend"`
	RecentTexts []string       `json:"-"` // raw input for summarization
}

// Distributions holds the four group-by-count breakdowns over analyzed rows
type Distributions struct {
	BySentiment  map[string]int `json:"by_sentiment"`
	ByUrgency    map[string]int `json:"by_urgency"`
	ByValueScore map[string]int `json:"by_value_score"`
	ByTheme      map[string]int `json:"by_theme"`
}

// DigestReport is a periodic summary sent by the reports service
type DigestReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Period      string         `json:"period"` // "daily" or "weekly"
	Overview    OverviewStats  `json:"overview"`
	TopThemes   []ThemeStats   `json:"top_themes"`
	Recent      []FeedbackItem `json:"recent"`
}

// ValidSentiment reports whether s is a sentiment the classifier may emit.
// Pending is excluded: it only marks unanalyzed rows.
func ValidSentiment(s string) bool {
	return s == SentimentPositive || s == SentimentNeutral || s == SentimentNegative
}

// ValidTheme reports whether t is a member of the closed theme set.
func ValidTheme(t string) bool {
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}

// ValidUrgency reports whether u is a member of the closed urgency set.
func ValidUrgency(u string) bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh || u == UrgencyCritical
}

// ValidChannel reports whether c is a known feedback channel.
func ValidChannel(c string) bool {
	for _, known := range Channels {
		if c == known {
			return true
		}
	}
	return false
}
