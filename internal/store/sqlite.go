package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pulseboard/feedback-insights/internal/models"
)

//go:embed schema.sql
var schema string

const feedbackColumns = "id, channel, title, content, author, created_at, sentiment, sentiment_score, theme, urgency, value_score, analyzed"

// Store handles database operations over the feedback relation
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at the given path and initializes
// the schema
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// AddFeedback creates a new feedback item in the unanalyzed state.
// Channel and content are required; items are append-only after creation.
func (s *Store) AddFeedback(channel, title, content, author string) (*models.FeedbackItem, error) {
	item := &models.FeedbackItem{
		ID:         uuid.New().String(),
		Channel:    channel,
		Title:      title,
		Content:    content,
		Author:     author,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Sentiment:  models.SentimentPending,
		Theme:      models.ThemeUncategorized,
		Urgency:    models.UrgencyLow,
		ValueScore: "medium",
	}

	_, err := s.db.Exec(
		"INSERT INTO feedback ("+feedbackColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.Channel, item.Title, item.Content, item.Author, item.CreatedAt,
		item.Sentiment, item.SentimentScore, item.Theme, item.Urgency, item.ValueScore, item.Analyzed,
	)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}

	return item, nil
}

// ApplyClassification marks an item analyzed with the classifier's output.
// The result is always in-domain (the pipeline guarantees it), so every
// analyzed row satisfies the enum invariants the aggregate views rely on.
func (s *Store) ApplyClassification(id string, result models.ClassificationResult) error {
	res, err := s.db.Exec(
		"UPDATE feedback SET sentiment = ?, sentiment_score = ?, theme = ?, urgency = ?, analyzed = 1 WHERE id = ?",
		result.Sentiment, result.SentimentScore, result.Theme, result.Urgency, id,
	)
	if err != nil {
		return fmt.Errorf("apply classification: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply classification: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("feedback %s not found", id)
	}

	return nil
}

// GetFeedback retrieves one item by id
func (s *Store) GetFeedback(id string) (*models.FeedbackItem, error) {
	row := s.db.QueryRow("SELECT "+feedbackColumns+" FROM feedback WHERE id = ?", id)

	item, err := scanFeedback(row)
	if err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}

	return item, nil
}

// ListFeedback returns analyzed items matching the filter, newest first
func (s *Store) ListFeedback(f Filter) ([]models.FeedbackItem, error) {
	where, args := f.buildWhere()
	args = append(args, f.limit())

	rows, err := s.db.Query(
		"SELECT "+feedbackColumns+" FROM feedback WHERE "+where+" ORDER BY created_at DESC LIMIT ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	return collectFeedback(rows)
}

// ListPending returns unanalyzed items, oldest first, for the sweep
func (s *Store) ListPending(limit int) ([]models.FeedbackItem, error) {
	rows, err := s.db.Query(
		"SELECT "+feedbackColumns+" FROM feedback WHERE analyzed = 0 ORDER BY created_at ASC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	return collectFeedback(rows)
}

// Overview computes the headline counters over all analyzed rows. An empty
// set yields zeros, never NULL or NaN.
func (s *Store) Overview() (models.OverviewStats, error) {
	var stats models.OverviewStats

	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sentiment = 'neutral' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN urgency = 'critical' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN urgency = 'high' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(sentiment_score), 0)
		FROM feedback WHERE analyzed = 1
	`).Scan(&stats.Total, &stats.Positive, &stats.Neutral, &stats.Negative,
		&stats.Critical, &stats.High, &stats.AvgSentiment)
	if err != nil {
		return stats, fmt.Errorf("overview: %w", err)
	}

	return stats, nil
}

// TopThemes returns the five themes ranked by urgent count, then by total.
// The two-key order is fixed; no further tie-break is defined.
func (s *Store) TopThemes() ([]models.ThemeStats, error) {
	return s.themeRollups("ORDER BY urgent DESC, total DESC LIMIT 5")
}

// ThemeTable returns the full per-theme breakdown ordered by total
func (s *Store) ThemeTable() ([]models.ThemeStats, error) {
	return s.themeRollups("ORDER BY total DESC")
}

func (s *Store) themeRollups(ordering string) ([]models.ThemeStats, error) {
	rows, err := s.db.Query(`
		SELECT theme, COUNT(*) AS total,
			SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END) AS positive,
			SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END) AS negative,
			SUM(CASE WHEN urgency = 'critical' THEN 1 ELSE 0 END) AS critical,
			SUM(CASE WHEN urgency = 'high' THEN 1 ELSE 0 END) AS high,
			SUM(CASE WHEN urgency IN ('critical', 'high') THEN 1 ELSE 0 END) AS urgent,
			AVG(sentiment_score) AS avg_sentiment
		FROM feedback
		WHERE analyzed = 1 AND theme != ?
		GROUP BY theme ` + ordering,
		models.ThemeUncategorized,
	)
	if err != nil {
		return nil, fmt.Errorf("theme rollups: %w", err)
	}
	defer rows.Close()

	var themes []models.ThemeStats
	for rows.Next() {
		var t models.ThemeStats
		if err := rows.Scan(&t.Theme, &t.Total, &t.Positive, &t.Negative,
			&t.Critical, &t.High, &t.Urgent, &t.AvgSentiment); err != nil {
			return nil, fmt.Errorf("scan theme rollup: %w", err)
		}
		themes = append(themes, t)
	}

	return themes, rows.Err()
}

// SentimentTrend returns per-day buckets for the most recent 14 days in
// ascending chronological order. The query fetches newest-first so the
// LIMIT picks the right window, then the slice is reversed for charting.
func (s *Store) SentimentTrend() ([]models.TrendPoint, error) {
	return s.trend("analyzed = 1", nil)
}

func (s *Store) trend(where string, args []interface{}) ([]models.TrendPoint, error) {
	rows, err := s.db.Query(`
		SELECT date(created_at) AS day, COUNT(*),
			SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END),
			SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END),
			AVG(sentiment_score)
		FROM feedback
		WHERE `+where+`
		GROUP BY day
		ORDER BY day DESC
		LIMIT 14
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("sentiment trend: %w", err)
	}
	defer rows.Close()

	var points []models.TrendPoint
	for rows.Next() {
		var p models.TrendPoint
		if err := rows.Scan(&p.Day, &p.Total, &p.Positive, &p.Negative, &p.AvgSentiment); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first from the store, ascending for callers
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}

// ThemeDetail computes the full drill-down for one theme: overview-style
// stats, per-urgency counts, channel breakdown, sample items, a scoped
// 14-day trend, and the raw texts feeding summarization.
func (s *Store) ThemeDetail(theme string) (*models.ThemeDetail, error) {
	if theme == "" {
		return nil, fmt.Errorf("theme is required")
	}

	detail := &models.ThemeDetail{
		Theme: theme,
		Urgency: map[string]int{
			models.UrgencyLow:      0,
			models.UrgencyMedium:   0,
			models.UrgencyHigh:     0,
			models.UrgencyCritical: 0,
		},
		Channels: make(map[string]int),
	}

	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sentiment = 'neutral' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN urgency = 'critical' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN urgency = 'high' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(sentiment_score), 0)
		FROM feedback WHERE analyzed = 1 AND theme = ?
	`, theme).Scan(&detail.Stats.Total, &detail.Stats.Positive, &detail.Stats.Neutral,
		&detail.Stats.Negative, &detail.Stats.Critical, &detail.Stats.High,
		&detail.Stats.AvgSentiment)
	if err != nil {
		return nil, fmt.Errorf("theme stats: %w", err)
	}

	urgency, err := s.countGroups("SELECT urgency, COUNT(*) FROM feedback WHERE analyzed = 1 AND theme = ? GROUP BY urgency", theme)
	if err != nil {
		return nil, fmt.Errorf("theme urgency breakdown: %w", err)
	}
	for level, count := range urgency {
		detail.Urgency[level] = count
	}

	// Channel breakdown counts every row with this theme, analyzed or not
	detail.Channels, err = s.countGroups("SELECT channel, COUNT(*) FROM feedback WHERE theme = ? GROUP BY channel", theme)
	if err != nil {
		return nil, fmt.Errorf("theme channel breakdown: %w", err)
	}

	// Samples surface the most severe items first, newest breaking ties
	sampleRows, err := s.db.Query(`
		SELECT `+feedbackColumns+` FROM feedback
		WHERE analyzed = 1 AND theme = ?
		ORDER BY CASE urgency
			WHEN 'critical' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			ELSE 3
		END, created_at DESC
		LIMIT 10
	`, theme)
	if err != nil {
		return nil, fmt.Errorf("theme samples: %w", err)
	}
	defer sampleRows.Close()

	detail.Samples, err = collectFeedback(sampleRows)
	if err != nil {
		return nil, err
	}

	detail.Trend, err = s.trend("analyzed = 1 AND theme = ?", []interface{}{theme})
	if err != nil {
		return nil, err
	}

	detail.RecentTexts, err = s.recentTexts(theme, 10)
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// recentTexts returns the content of the newest analyzed items for a theme,
// most recent first
func (s *Store) recentTexts(theme string, limit int) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT content FROM feedback WHERE analyzed = 1 AND theme = ? ORDER BY created_at DESC LIMIT ?",
		theme, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		texts = append(texts, content)
	}

	return texts, rows.Err()
}

// Distributions computes the four group-by-count breakdowns over analyzed
// rows
func (s *Store) Distributions() (*models.Distributions, error) {
	d := &models.Distributions{}
	var err error

	if d.BySentiment, err = s.countGroups("SELECT sentiment, COUNT(*) FROM feedback WHERE analyzed = 1 GROUP BY sentiment"); err != nil {
		return nil, fmt.Errorf("sentiment distribution: %w", err)
	}
	if d.ByUrgency, err = s.countGroups("SELECT urgency, COUNT(*) FROM feedback WHERE analyzed = 1 GROUP BY urgency"); err != nil {
		return nil, fmt.Errorf("urgency distribution: %w", err)
	}
	if d.ByValueScore, err = s.countGroups("SELECT value_score, COUNT(*) FROM feedback WHERE analyzed = 1 GROUP BY value_score"); err != nil {
		return nil, fmt.Errorf("value score distribution: %w", err)
	}
	if d.ByTheme, err = s.countGroups(
		"SELECT theme, COUNT(*) FROM feedback WHERE analyzed = 1 AND theme != ? GROUP BY theme",
		models.ThemeUncategorized,
	); err != nil {
		return nil, fmt.Errorf("theme distribution: %w", err)
	}

	return d, nil
}

func (s *Store) countGroups(query string, args ...interface{}) (map[string]int, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeedback(row rowScanner) (*models.FeedbackItem, error) {
	var item models.FeedbackItem
	err := row.Scan(&item.ID, &item.Channel, &item.Title, &item.Content, &item.Author,
		&item.CreatedAt, &item.Sentiment, &item.SentimentScore, &item.Theme,
		&item.Urgency, &item.ValueScore, &item.Analyzed)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func collectFeedback(rows *sql.Rows) ([]models.FeedbackItem, error) {
	var items []models.FeedbackItem
	for rows.Next() {
		item, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
