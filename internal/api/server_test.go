package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/pulseboard/feedback-insights/internal/analysis"
	"github.com/pulseboard/feedback-insights/internal/models"
	"github.com/pulseboard/feedback-insights/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLLM is a mock implementation of the llm.Client interface
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Run(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newTestServer(t *testing.T, mockLLM *MockLLM) (*Server, *store.Store) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	server := NewServer(st, analysis.NewClassifier(mockLLM), analysis.NewSummarizer(mockLLM))
	return server, st
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_CreateFeedback_Validation(t *testing.T) {
	server, _ := newTestServer(t, &MockLLM{})

	tests := []struct {
		name string
		body CreateFeedbackRequest
	}{
		{
			name: "Missing content",
			body: CreateFeedbackRequest{Channel: "github"},
		},
		{
			name: "Whitespace content",
			body: CreateFeedbackRequest{Channel: "github", Content: "   "},
		},
		{
			name: "Missing channel",
			body: CreateFeedbackRequest{Content: "some feedback"},
		},
		{
			name: "Unknown channel",
			body: CreateFeedbackRequest{Channel: "carrier-pigeon", Content: "some feedback"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, server, "POST", "/api/feedback", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_CreateFeedback_ClassifiesAndPersists(t *testing.T) {
	mockLLM := &MockLLM{}
	mockLLM.On("Run", mock.Anything, mock.Anything).Return(
		`{"sentiment":"negative","sentiment_score":-0.6,"theme":"performance","urgency":"high","summary":"slow search"}`, nil)

	server, st := newTestServer(t, mockLLM)

	rec := doJSON(t, server, "POST", "/api/feedback", CreateFeedbackRequest{
		Channel: "support",
		Content: "search is really slow lately",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.FeedbackItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&item))

	assert.True(t, item.Analyzed)
	assert.Equal(t, "negative", item.Sentiment)
	assert.Equal(t, "performance", item.Theme)
	assert.Equal(t, "high", item.Urgency)

	stored, err := st.GetFeedback(item.ID)
	require.NoError(t, err)
	assert.True(t, stored.Analyzed)
}

func TestServer_CreateFeedback_ClassifierGarbageStillSucceeds(t *testing.T) {
	mockLLM := &MockLLM{}
	mockLLM.On("Run", mock.Anything, mock.Anything).Return("total nonsense", nil)

	server, _ := newTestServer(t, mockLLM)

	rec := doJSON(t, server, "POST", "/api/feedback", CreateFeedbackRequest{
		Channel: "forum",
		Content: "something or other",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.FeedbackItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&item))

	// Fallback classification, but the item is analyzed and in-domain
	assert.True(t, item.Analyzed)
	assert.Equal(t, "neutral", item.Sentiment)
	assert.Equal(t, "other", item.Theme)
	assert.Equal(t, "medium", item.Urgency)
}

func TestServer_Analyze_DoesNotPersist(t *testing.T) {
	mockLLM := &MockLLM{}
	mockLLM.On("Run", mock.Anything, mock.Anything).Return(
		`{"sentiment":"positive","sentiment_score":0.7,"theme":"pricing","urgency":"low","summary":"ok"}`, nil)

	server, st := newTestServer(t, mockLLM)

	rec := doJSON(t, server, "POST", "/api/analyze", AnalyzeRequest{Content: "pricing looks fair"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ClassificationResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, "pricing", result.Theme)

	items, err := st.ListFeedback(store.Filter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestServer_Analyze_EmptyContent(t *testing.T) {
	server, _ := newTestServer(t, &MockLLM{})

	rec := doJSON(t, server, "POST", "/api/analyze", AnalyzeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Overview_EmptyStore(t *testing.T) {
	server, _ := newTestServer(t, &MockLLM{})

	rec := doJSON(t, server, "GET", "/api/stats/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.OverviewStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.AvgSentiment)
}

func TestServer_ListFeedback_FilterSemantics(t *testing.T) {
	server, st := newTestServer(t, &MockLLM{})

	seed := func(sentiment, theme string) {
		item, err := st.AddFeedback("github", "", "text", "")
		require.NoError(t, err)
		require.NoError(t, st.ApplyClassification(item.ID, models.ClassificationResult{
			Sentiment: sentiment, Theme: theme, Urgency: "low",
		}))
	}
	seed("positive", "pricing")
	seed("negative", "performance")

	type listResponse struct {
		Items []models.FeedbackItem `json:"items"`
		Count int                   `json:"count"`
	}

	var all, explicit, positive listResponse

	rec := doJSON(t, server, "GET", "/api/feedback", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))

	rec = doJSON(t, server, "GET", "/api/feedback?sentiment=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&explicit))

	rec = doJSON(t, server, "GET", "/api/feedback?sentiment=positive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&positive))

	assert.Equal(t, 2, all.Count)
	assert.Equal(t, all.Items, explicit.Items)
	require.Equal(t, 1, positive.Count)
	assert.Equal(t, "positive", positive.Items[0].Sentiment)
}

func TestServer_ThemeDetail(t *testing.T) {
	server, st := newTestServer(t, &MockLLM{})

	item, err := st.AddFeedback("discord", "", "docs are stale", "")
	require.NoError(t, err)
	require.NoError(t, st.ApplyClassification(item.ID, models.ClassificationResult{
		Sentiment: "negative", SentimentScore: -0.4, Theme: "documentation", Urgency: "high",
	}))

	rec := doJSON(t, server, "GET", "/api/themes/documentation", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail models.ThemeDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
	assert.Equal(t, "documentation", detail.Theme)
	assert.Equal(t, 1, detail.Stats.Total)
	assert.Equal(t, 1, detail.Urgency["high"])
	assert.Equal(t, 1, detail.Channels["discord"])
	require.Len(t, detail.Samples, 1)
}

func TestServer_ThemeSummary_NoFeedbackSkipsLLM(t *testing.T) {
	mockLLM := &MockLLM{}
	server, _ := newTestServer(t, mockLLM)

	rec := doJSON(t, server, "POST", "/api/themes/pricing/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, analysis.NoFeedbackSummary, resp["summary"])

	mockLLM.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t, &MockLLM{})

	rec := doJSON(t, server, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp["status"])
}
