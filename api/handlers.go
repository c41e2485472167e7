package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/usecase"
)

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const defaultHistoryLimit = 20

type newsService interface {
	Latest(ctx context.Context) (usecase.Result, error)
	Refresh(ctx context.Context) (usecase.Result, error)
	Search(ctx context.Context, query string) ([]news.Item, error)
	History(ctx context.Context, limit int) ([]news.Item, error)
	ArchivedCount(ctx context.Context) (int, error)
}

type reportService interface {
	PDFReport(items []news.Item, digest string) ([]byte, error)
}

type notificationService interface {
	Start() error
	Stop()
	Status() usecase.Status
	Subscribe(ctx context.Context, email string) (usecase.SubscribeResult, error)
	Unsubscribe(email string) (bool, error)
	SendTest(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	news     newsService
	notifier notificationService
	reports  reportService

	now func() time.Time
}

// NewHandler creates a new handler instance
func NewHandler(news newsService, notifier notificationService, reports reportService) *Handler {
	return &Handler{
		news:     news,
		notifier: notifier,
		reports:  reports,
		now:      time.Now,
	}
}

// HealthCheck returns API health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	count, err := h.news.ArchivedCount(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "database health check failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"archived_items": count,
	})
}

// News returns the current collection result, collecting one first if
// the cache is stale.
func (h *Handler) News(w http.ResponseWriter, r *http.Request) {
	result, err := h.news.Latest(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("failed to get news: %+v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   resultToJSON(result),
	})
}

// Search matches the query against the current result set.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "Query parameter required")
		return
	}

	results, err := h.news.Search(r.Context(), query)
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("search failed: %+v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "success",
		"query":         query,
		"results":       itemsToJSON(results),
		"total_results": len(results),
	})
}

// History serves previously archived items.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	items, err := h.news.History(r.Context(), limit)
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("history failed: %+v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"items":       itemsToJSON(items),
		"total_items": len(items),
	})
}

// Refresh forces a new collection cycle.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.news.Refresh(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("refresh failed: %+v", err)
		respondError(w, http.StatusInternalServerError, "Failed to refresh news data")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"message":     "News data refreshed successfully",
		"total_items": result.Total,
		"timestamp":   result.Timestamp.Format(time.RFC3339),
	})
}

// Digest returns only the daily digest text.
func (h *Handler) Digest(w http.ResponseWriter, r *http.Request) {
	result, err := h.news.Latest(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("failed to get digest: %+v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"digest":      result.Digest,
		"total_items": result.Total,
		"timestamp":   result.Timestamp.Format(time.RFC3339),
	})
}

// ExportJSON serves the current items as a downloadable JSON document.
func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	result, err := h.news.Latest(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("export failed: %+v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=cyber-news-%s.json", h.now().Format("2006-01-02")))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp":   h.now().Format(time.RFC3339),
		"total_items": result.Total,
		"digest":      result.Digest,
		"items":       itemsToJSON(result.Items),
	})
}

// ExportPDF serves the current items as a downloadable PDF report.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	result, err := h.news.Latest(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("export failed: %+v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	doc, err := h.reports.PDFReport(result.Items, result.Digest)
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("pdf generation failed: %+v", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate PDF report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=cyber-news-report-%s.pdf", h.now().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// NotificationStatus reports the scheduler state.
func (h *Handler) NotificationStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  h.notifier.Status(),
	})
}

// StartNotifications arms the daily scheduler.
func (h *Handler) StartNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.notifier.Start(); err != nil {
		log.Ctx(r.Context()).Warn().Msgf("failed to start notifications: %+v", err)
		respondFailure(w, http.StatusInternalServerError, "Failed to start daily notifications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Daily notifications started",
	})
}

// StopNotifications pauses daily sends.
func (h *Handler) StopNotifications(w http.ResponseWriter, r *http.Request) {
	h.notifier.Stop()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Daily notifications stopped",
	})
}

// TestNotification sends one digest immediately.
func (h *Handler) TestNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.notifier.SendTest(r.Context()); err != nil {
		log.Ctx(r.Context()).Warn().Msgf("test notification failed: %+v", err)
		respondFailure(w, http.StatusInternalServerError, "Test notification failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Test notification sent successfully",
	})
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe adds the email to the daily notification list.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	email, ok := decodeEmail(w, r)
	if !ok {
		return
	}

	result, err := h.notifier.Subscribe(r.Context(), email)
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("subscribe failed: %+v", err)
		respondFailure(w, http.StatusInternalServerError, "Subscription failed")
		return
	}
	if !result.Added {
		respondFailure(w, http.StatusBadRequest, "Email already subscribed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Successfully subscribed %s to daily notifications", email),
	})
}

// Unsubscribe removes the email from the daily notification list.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	email, ok := decodeEmail(w, r)
	if !ok {
		return
	}

	removed, err := h.notifier.Unsubscribe(email)
	if err != nil {
		log.Ctx(r.Context()).Warn().Msgf("unsubscribe failed: %+v", err)
		respondFailure(w, http.StatusInternalServerError, "Unsubscription failed")
		return
	}
	if !removed {
		respondFailure(w, http.StatusBadRequest, "Email not found in subscribers")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Successfully unsubscribed %s from daily notifications", email),
	})
}

// decodeEmail reads and validates the email from the request body.
// Surrounding whitespace is trimmed but case is kept as sent, the
// subscriber list compares addresses byte for byte.
func decodeEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request body")
		return "", false
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		respondFailure(w, http.StatusBadRequest, "Email address is required")
		return "", false
	}
	if !emailRegexp.MatchString(email) {
		respondFailure(w, http.StatusBadRequest, "Invalid email format")
		return "", false
	}
	return email, true
}

type itemJSON struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Summary     string   `json:"summary"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	PublishedAt string   `json:"published_at"`
	Category    string   `json:"category"`
	Severity    string   `json:"severity"`
	Tags        []string `json:"tags"`
}

func itemToJSON(item news.Item) itemJSON {
	return itemJSON{
		Title:       item.Title,
		Content:     item.Content,
		Summary:     item.Summary,
		URL:         item.URL,
		Source:      item.Source,
		PublishedAt: item.PublishedAt.Format(time.RFC3339),
		Category:    item.Category.String(),
		Severity:    item.Severity.String(),
		Tags:        item.Tags,
	}
}

func itemsToJSON(items []news.Item) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, itemToJSON(item))
	}
	return out
}

func resultToJSON(result usecase.Result) map[string]interface{} {
	categorized := make(map[string][]itemJSON, len(result.Categorized))
	for category, items := range result.Categorized {
		categorized[category.String()] = itemsToJSON(items)
	}
	stats := make(map[string]int, len(result.SeverityStats))
	for severity, count := range result.SeverityStats {
		stats[severity.String()] = count
	}

	return map[string]interface{}{
		"news_items":       itemsToJSON(result.Items),
		"categorized_news": categorized,
		"daily_digest":     result.Digest,
		"severity_stats":   stats,
		"total_items":      result.Total,
		"timestamp":        result.Timestamp.Format(time.RFC3339),
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondFailure sends a notification-style error response
func respondFailure(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
