package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	r := gin.New()
	NewHandler(svc, nil).RegisterRoutes(r.Group(""))
	return r, svc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHistoryEndpoints(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()
	first, _ := svc.Create(ctx, "old.pdf", "old", "standard", 1, 1)
	second, _ := svc.Create(ctx, "new.pdf", "new", "brief", 2, 4)

	w := do(r, http.MethodGet, "/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /history = %d", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0]["filename"] != "new.pdf" {
		t.Fatalf("list = %v", list)
	}
	if ts, _ := list[0]["created_at"].(string); len(ts) != len("2006-01-02 15:04:05") {
		t.Fatalf("created_at = %v", list[0]["created_at"])
	}

	w = do(r, http.MethodPost, "/history/"+itoa(second.ID)+"/rate", `{"rating": 9}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"rating":5`) {
		t.Fatalf("rate = %d %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodPost, "/history/"+itoa(second.ID)+"/rate", `{}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"rating":1`) {
		t.Fatalf("rate without value = %d %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodPost, "/history/"+itoa(second.ID)+"/rate", `{"rating": "x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rate bad value = %d", w.Code)
	}

	w = do(r, http.MethodDelete, "/history/"+itoa(first.ID)+"/delete", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("delete = %d %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodGet, "/history/"+itoa(first.ID), "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"error"`) {
		t.Fatalf("get deleted = %d %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodGet, "/history/abc", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get non-numeric = %d", w.Code)
	}

	w = do(r, http.MethodGet, "/stats", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total_summaries":1`) {
		t.Fatalf("stats = %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/export/history", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("export = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestRatingValue(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{nil, 0, true},
		{float64(3.9), 3, true},
		{float64(-5), -5, true},
		{"4", 4, true},
		{"four", 0, false},
		{true, 0, false},
		{float64(1e12), 1e6, true},
	}
	for _, tc := range cases {
		got, ok := ratingValue(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ratingValue(%v) = %d,%v want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
