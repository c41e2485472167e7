package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/usecase"
)

type stubNews struct {
	result   usecase.Result
	results  []news.Item
	archived []news.Item
	count    int
	err      error
	gotQuery string
	gotLimit int
}

func (s *stubNews) Latest(ctx context.Context) (usecase.Result, error) {
	return s.result, s.err
}

func (s *stubNews) Refresh(ctx context.Context) (usecase.Result, error) {
	return s.result, s.err
}

func (s *stubNews) Search(ctx context.Context, query string) ([]news.Item, error) {
	s.gotQuery = query
	return s.results, s.err
}

func (s *stubNews) History(ctx context.Context, limit int) ([]news.Item, error) {
	s.gotLimit = limit
	return s.archived, s.err
}

func (s *stubNews) ArchivedCount(ctx context.Context) (int, error) {
	return s.count, s.err
}

type stubNotifier struct {
	status       usecase.Status
	subscribeRes usecase.SubscribeResult
	subscribeErr error
	removed      bool
	removeErr    error
	startErr     error
	testErr      error
	gotEmail     string
	stopped      bool
}

func (s *stubNotifier) Start() error           { return s.startErr }
func (s *stubNotifier) Stop()                  { s.stopped = true }
func (s *stubNotifier) Status() usecase.Status { return s.status }

func (s *stubNotifier) Subscribe(ctx context.Context, email string) (usecase.SubscribeResult, error) {
	s.gotEmail = email
	return s.subscribeRes, s.subscribeErr
}

func (s *stubNotifier) Unsubscribe(email string) (bool, error) {
	s.gotEmail = email
	return s.removed, s.removeErr
}

func (s *stubNotifier) SendTest(ctx context.Context) error { return s.testErr }

type stubReports struct {
	doc       []byte
	err       error
	gotDigest string
}

func (s *stubReports) PDFReport(items []news.Item, digest string) ([]byte, error) {
	s.gotDigest = digest
	return s.doc, s.err
}

func serve(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	SetupRouter(h).ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return got
}

func testResult() usecase.Result {
	items := []news.Item{
		{
			ID:          "1",
			Title:       "Ransomware hits hospital network",
			Content:     "Attackers encrypted systems across three hospitals.",
			URL:         "https://example.com/ransomware",
			Source:      "Krebs on Security",
			PublishedAt: time.Date(2023, 4, 10, 8, 0, 0, 0, time.UTC),
			Category:    news.CategoryAttacks,
			Severity:    news.SeverityHigh,
			Tags:        []string{"ransomware"},
			Summary:     "Hospitals hit by ransomware.",
		},
	}
	return usecase.Result{
		Items:         items,
		Categorized:   map[news.Category][]news.Item{news.CategoryAttacks: items},
		Digest:        "1 significant development.",
		SeverityStats: map[news.Severity]int{news.SeverityHigh: 1},
		Total:         1,
		Timestamp:     time.Date(2023, 4, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestHandler_HealthCheck(t *testing.T) {
	h := NewHandler(&stubNews{count: 7}, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	got := decodeBody(t, w)
	if got["status"] != "healthy" {
		t.Errorf("status field = %v", got["status"])
	}
	if got["archived_items"] != float64(7) {
		t.Errorf("archived_items = %v", got["archived_items"])
	}
}

func TestHandler_HealthCheck_dbDown(t *testing.T) {
	h := NewHandler(&stubNews{err: context.DeadlineExceeded}, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/health", "")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestHandler_History(t *testing.T) {
	svc := &stubNews{archived: testResult().Items}
	h := NewHandler(svc, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/api/history?limit=5", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if svc.gotLimit != 5 {
		t.Errorf("limit = %d, want 5", svc.gotLimit)
	}
	got := decodeBody(t, w)
	if got["total_items"] != float64(1) {
		t.Errorf("total_items = %v", got["total_items"])
	}
}

func TestHandler_History_defaultLimit(t *testing.T) {
	svc := &stubNews{}
	h := NewHandler(svc, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/api/history", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if svc.gotLimit != 20 {
		t.Errorf("limit = %d, want 20", svc.gotLimit)
	}
}

func TestHandler_History_invalidLimit(t *testing.T) {
	h := NewHandler(&stubNews{}, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/api/history?limit=zero", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	got := decodeBody(t, w)
	if got["error"] != "Invalid limit parameter" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestHandler_News(t *testing.T) {
	h := NewHandler(&stubNews{result: testResult()}, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/api/news", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	got := decodeBody(t, w)
	if got["status"] != "success" {
		t.Errorf("status field = %v", got["status"])
	}
	data := got["data"].(map[string]interface{})
	if data["total_items"] != float64(1) {
		t.Errorf("total_items = %v", data["total_items"])
	}
	if data["daily_digest"] != "1 significant development." {
		t.Errorf("daily_digest = %v", data["daily_digest"])
	}
	if data["timestamp"] != "2023-04-10T09:00:00Z" {
		t.Errorf("timestamp = %v", data["timestamp"])
	}
	categorized := data["categorized_news"].(map[string]interface{})
	if _, ok := categorized["Latest Attacks"]; !ok {
		t.Errorf("categorized_news keys = %v", categorized)
	}
	stats := data["severity_stats"].(map[string]interface{})
	if stats["High"] != float64(1) {
		t.Errorf("severity_stats = %v", stats)
	}
	itemFields := data["news_items"].([]interface{})[0].(map[string]interface{})
	if itemFields["published_at"] != "2023-04-10T08:00:00Z" {
		t.Errorf("published_at = %v", itemFields["published_at"])
	}
	if itemFields["severity"] != "High" {
		t.Errorf("severity = %v", itemFields["severity"])
	}
}

func TestHandler_News_error(t *testing.T) {
	h := NewHandler(&stubNews{err: context.DeadlineExceeded}, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/api/news", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	got := decodeBody(t, w)
	if got["error"] != "Internal server error" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestHandler_Search(t *testing.T) {
	svc := &stubNews{results: testResult().Items}
	h := NewHandler(svc, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/api/search?q=ransomware", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if svc.gotQuery != "ransomware" {
		t.Errorf("query = %q, want %q", svc.gotQuery, "ransomware")
	}
	got := decodeBody(t, w)
	want := map[string]interface{}{
		"query":         "ransomware",
		"total_results": float64(1),
	}
	for key, wantValue := range want {
		if diff := cmp.Diff(wantValue, got[key]); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", key, diff)
		}
	}
}

func TestHandler_Search_missingQuery(t *testing.T) {
	h := NewHandler(&stubNews{}, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/api/search", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	got := decodeBody(t, w)
	if got["error"] != "Query parameter required" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestHandler_Refresh(t *testing.T) {
	h := NewHandler(&stubNews{result: testResult()}, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/api/refresh", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	got := decodeBody(t, w)
	if got["message"] != "News data refreshed successfully" {
		t.Errorf("message = %v", got["message"])
	}
	if got["total_items"] != float64(1) {
		t.Errorf("total_items = %v", got["total_items"])
	}
}

func TestHandler_ExportPDF(t *testing.T) {
	reports := &stubReports{doc: []byte("%PDF-1.4 fake document")}
	h := NewHandler(&stubNews{result: testResult()}, &stubNotifier{}, reports)
	h.now = func() time.Time {
		return time.Date(2023, 4, 10, 14, 30, 0, 0, time.UTC)
	}

	w := serve(h, http.MethodGet, "/export/pdf", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q, want %q", got, "application/pdf")
	}
	wantDisposition := "attachment; filename=cyber-news-report-2023-04-10.pdf"
	if got := w.Header().Get("Content-Disposition"); got != wantDisposition {
		t.Errorf("Content-Disposition = %q, want %q", got, wantDisposition)
	}
	if !bytes.Equal(w.Body.Bytes(), reports.doc) {
		t.Errorf("body = %q, want the generated document", w.Body.Bytes())
	}
	if reports.gotDigest != "1 significant development." {
		t.Errorf("digest passed to generator = %q", reports.gotDigest)
	}
}

func TestHandler_ExportPDF_renderError(t *testing.T) {
	reports := &stubReports{err: context.DeadlineExceeded}
	h := NewHandler(&stubNews{result: testResult()}, &stubNotifier{}, reports)

	w := serve(h, http.MethodGet, "/export/pdf", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	got := decodeBody(t, w)
	if got["error"] != "Failed to generate PDF report" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestHandler_ExportJSON(t *testing.T) {
	h := NewHandler(&stubNews{result: testResult()}, &stubNotifier{}, &stubReports{})
	h.now = func() time.Time {
		return time.Date(2023, 4, 10, 14, 30, 0, 0, time.UTC)
	}

	w := serve(h, http.MethodGet, "/export/json", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	wantDisposition := "attachment; filename=cyber-news-2023-04-10.json"
	if got := w.Header().Get("Content-Disposition"); got != wantDisposition {
		t.Errorf("Content-Disposition = %q, want %q", got, wantDisposition)
	}
	got := decodeBody(t, w)
	if got["total_items"] != float64(1) {
		t.Errorf("total_items = %v", got["total_items"])
	}
	if _, ok := got["items"]; !ok {
		t.Errorf("items missing: %v", got)
	}
}

func TestHandler_NotificationStatus(t *testing.T) {
	notifier := &stubNotifier{
		status: usecase.Status{
			Running:          true,
			NotificationTime: "09:00",
			EmailConfigured:  true,
			SubscriberCount:  2,
			NextNotification: "2023-04-11 09:00:00",
		},
	}
	h := NewHandler(&stubNews{}, notifier, &stubReports{})

	w := serve(h, http.MethodGet, "/notifications/status", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	got := decodeBody(t, w)
	if got["success"] != true {
		t.Errorf("success = %v", got["success"])
	}
	status := got["status"].(map[string]interface{})
	if status["is_running"] != true {
		t.Errorf("is_running = %v", status["is_running"])
	}
	if status["subscriber_count"] != float64(2) {
		t.Errorf("subscriber_count = %v", status["subscriber_count"])
	}
	if status["next_notification"] != "2023-04-11 09:00:00" {
		t.Errorf("next_notification = %v", status["next_notification"])
	}
}

func TestHandler_Subscribe(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		notifier   *stubNotifier
		wantStatus int
		wantEmail  string
		wantError  string
	}{
		{
			name:       "ok",
			body:       `{"email": "alice@example.com"}`,
			notifier:   &stubNotifier{subscribeRes: usecase.SubscribeResult{Added: true, WelcomeSent: true}},
			wantStatus: http.StatusOK,
			wantEmail:  "alice@example.com",
		},
		{
			name:       "surrounding whitespace trimmed, case kept",
			body:       `{"email": "  Alice@Example.com "}`,
			notifier:   &stubNotifier{subscribeRes: usecase.SubscribeResult{Added: true, WelcomeSent: true}},
			wantStatus: http.StatusOK,
			wantEmail:  "Alice@Example.com",
		},
		{
			name:       "already subscribed",
			body:       `{"email": "alice@example.com"}`,
			notifier:   &stubNotifier{subscribeRes: usecase.SubscribeResult{Added: false}},
			wantStatus: http.StatusBadRequest,
			wantEmail:  "alice@example.com",
			wantError:  "Email already subscribed",
		},
		{
			name:       "empty email",
			body:       `{"email": ""}`,
			notifier:   &stubNotifier{},
			wantStatus: http.StatusBadRequest,
			wantError:  "Email address is required",
		},
		{
			name:       "invalid format",
			body:       `{"email": "not-an-email"}`,
			notifier:   &stubNotifier{},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid email format",
		},
		{
			name:       "broken body",
			body:       `{"email": `,
			notifier:   &stubNotifier{},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubNews{}, tt.notifier, &stubReports{})

			w := serve(h, http.MethodPost, "/notifications/subscribe", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.notifier.gotEmail != tt.wantEmail {
				t.Errorf("email = %q, want %q", tt.notifier.gotEmail, tt.wantEmail)
			}
			if tt.wantError != "" {
				got := decodeBody(t, w)
				if got["error"] != tt.wantError {
					t.Errorf("error = %v, want %q", got["error"], tt.wantError)
				}
			}
		})
	}
}

func TestHandler_Unsubscribe(t *testing.T) {
	tests := []struct {
		name       string
		notifier   *stubNotifier
		wantStatus int
		wantError  string
	}{
		{
			name:       "ok",
			notifier:   &stubNotifier{removed: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "not subscribed",
			notifier:   &stubNotifier{removed: false},
			wantStatus: http.StatusBadRequest,
			wantError:  "Email not found in subscribers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubNews{}, tt.notifier, &stubReports{})

			w := serve(h, http.MethodPost, "/notifications/unsubscribe", `{"email": "alice@example.com"}`)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.notifier.gotEmail != "alice@example.com" {
				t.Errorf("email = %q", tt.notifier.gotEmail)
			}
			if tt.wantError != "" {
				got := decodeBody(t, w)
				if got["error"] != tt.wantError {
					t.Errorf("error = %v, want %q", got["error"], tt.wantError)
				}
			}
		})
	}
}

func TestHandler_StartStopNotifications(t *testing.T) {
	notifier := &stubNotifier{}
	h := NewHandler(&stubNews{}, notifier, &stubReports{})

	w := serve(h, http.MethodPost, "/notifications/start", "")
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d, want %d", w.Code, http.StatusOK)
	}
	got := decodeBody(t, w)
	if got["message"] != "Daily notifications started" {
		t.Errorf("message = %v", got["message"])
	}

	w = serve(h, http.MethodPost, "/notifications/stop", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want %d", w.Code, http.StatusOK)
	}
	if !notifier.stopped {
		t.Errorf("notifier was not stopped")
	}
}

func TestHandler_TestNotification(t *testing.T) {
	h := NewHandler(&stubNews{}, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodPost, "/notifications/test", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	got := decodeBody(t, w)
	if got["message"] != "Test notification sent successfully" {
		t.Errorf("message = %v", got["message"])
	}
}

func TestHandler_TestNotification_error(t *testing.T) {
	h := NewHandler(&stubNews{}, &stubNotifier{testErr: context.DeadlineExceeded}, &stubReports{})

	w := serve(h, http.MethodPost, "/notifications/test", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	got := decodeBody(t, w)
	if got["success"] != false {
		t.Errorf("success = %v", got["success"])
	}
}

func TestSetupRouter_methodNotAllowed(t *testing.T) {
	h := NewHandler(&stubNews{}, &stubNotifier{}, &stubReports{})

	w := serve(h, http.MethodGet, "/notifications/subscribe", "")

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
