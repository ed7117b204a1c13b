package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pulseboard/feedback-insights/internal/analysis"
	"github.com/pulseboard/feedback-insights/internal/models"
	"github.com/pulseboard/feedback-insights/internal/store"
	"github.com/sirupsen/logrus"
)

// Server handles HTTP requests for the feedback API
type Server struct {
	store      *store.Store
	classifier *analysis.Classifier
	summarizer *analysis.Summarizer
}

// NewServer creates a new API server
func NewServer(s *store.Store, classifier *analysis.Classifier, summarizer *analysis.Summarizer) *Server {
	return &Server{
		store:      s,
		classifier: classifier,
		summarizer: summarizer,
	}
}

// Router builds the HTTP routing table
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/health", s.health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/feedback", s.createFeedback).Methods("POST")
	api.HandleFunc("/feedback", s.listFeedback).Methods("GET")
	api.HandleFunc("/analyze", s.analyze).Methods("POST")
	api.HandleFunc("/stats/overview", s.overview).Methods("GET")
	api.HandleFunc("/stats/top-themes", s.topThemes).Methods("GET")
	api.HandleFunc("/stats/themes", s.themeTable).Methods("GET")
	api.HandleFunc("/stats/trend", s.trend).Methods("GET")
	api.HandleFunc("/stats/distributions", s.distributions).Methods("GET")
	api.HandleFunc("/themes/{theme}", s.themeDetail).Methods("GET")
	api.HandleFunc("/themes/{theme}/summary", s.themeSummary).Methods("POST")

	return router
}

// corsMiddleware allows the dashboard frontend to call the API from
// another origin during development
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// CreateFeedbackRequest is the request body for submitting feedback
type CreateFeedbackRequest struct {
	Channel string `json:"channel"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
}

func (s *Server) createFeedback(w http.ResponseWriter, r *http.Request) {
	var req CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if !models.ValidChannel(req.Channel) {
		writeError(w, http.StatusBadRequest, "channel must be one of: "+strings.Join(models.Channels, ", "))
		return
	}

	item, err := s.store.AddFeedback(req.Channel, req.Title, req.Content, req.Author)
	if err != nil {
		logrus.Errorf("Failed to insert feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store feedback")
		return
	}

	// Classification never fails; a broken classifier yields the neutral
	// fallback and the item still ends up analyzed.
	result := s.classifier.Classify(r.Context(), item.Content)
	if err := s.store.ApplyClassification(item.ID, result); err != nil {
		logrus.Errorf("Failed to apply classification to %s: %v", item.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to store classification")
		return
	}

	item, err = s.store.GetFeedback(item.ID)
	if err != nil {
		logrus.Errorf("Failed to reload feedback %s: %v", item.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to load feedback")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// AnalyzeRequest is the request body for the live analyzer
type AnalyzeRequest struct {
	Content string `json:"content"`
}

// analyze classifies text without persisting anything
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	result := s.classifier.Classify(r.Context(), req.Content)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) listFeedback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.Filter{
		Sentiment: q.Get("sentiment"),
		Theme:     q.Get("theme"),
		Urgency:   q.Get("urgency"),
		Channel:   q.Get("channel"),
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	items, err := s.store.ListFeedback(filter)
	if err != nil {
		logrus.Errorf("Failed to list feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}
	if items == nil {
		items = []models.FeedbackItem{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) overview(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Overview()
	if err != nil {
		logrus.Errorf("Failed to compute overview: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compute overview")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) topThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := s.store.TopThemes()
	if err != nil {
		logrus.Errorf("Failed to compute top themes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compute top themes")
		return
	}
	if themes == nil {
		themes = []models.ThemeStats{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"themes": themes})
}

func (s *Server) themeTable(w http.ResponseWriter, r *http.Request) {
	themes, err := s.store.ThemeTable()
	if err != nil {
		logrus.Errorf("Failed to compute theme table: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compute theme table")
		return
	}
	if themes == nil {
		themes = []models.ThemeStats{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"themes": themes})
}

func (s *Server) trend(w http.ResponseWriter, r *http.Request) {
	points, err := s.store.SentimentTrend()
	if err != nil {
		logrus.Errorf("Failed to compute sentiment trend: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compute trend")
		return
	}
	if points == nil {
		points = []models.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trend": points})
}

func (s *Server) distributions(w http.ResponseWriter, r *http.Request) {
	dist, err := s.store.Distributions()
	if err != nil {
		logrus.Errorf("Failed to compute distributions: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compute distributions")
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (s *Server) themeDetail(w http.ResponseWriter, r *http.Request) {
	theme := mux.Vars(r)["theme"]
	if theme == "" {
		writeError(w, http.StatusBadRequest, "theme is required")
		return
	}

	detail, err := s.store.ThemeDetail(theme)
	if err != nil {
		logrus.Errorf("Failed to compute detail for theme %q: %v", theme, err)
		writeError(w, http.StatusInternalServerError, "failed to compute theme detail")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) themeSummary(w http.ResponseWriter, r *http.Request) {
	theme := mux.Vars(r)["theme"]
	if theme == "" {
		writeError(w, http.StatusBadRequest, "theme is required")
		return
	}

	detail, err := s.store.ThemeDetail(theme)
	if err != nil {
		logrus.Errorf("Failed to load texts for theme %q: %v", theme, err)
		writeError(w, http.StatusInternalServerError, "failed to load theme feedback")
		return
	}

	summary := s.summarizer.Summarize(r.Context(), detail.RecentTexts, theme)
	writeJSON(w, http.StatusOK, map[string]string{
		"theme":   theme,
		"summary": summary,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
