package health

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/vort/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()
	db := testutil.SetupTestDB(t)
	r := chi.NewRouter()
	Register(r, NewHandler(db.Client(), zap.NewNop()))
	return r
}

func TestCheck(t *testing.T) {
	r := newRouter(t)

	req := testutil.NewRequest(http.MethodGet, "/health")
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q, want ok", resp.Status)
	}
	if resp.Services["mongodb"] != "ok" {
		t.Fatalf("mongodb = %q, want ok", resp.Services["mongodb"])
	}
}

func TestReadyAndLive(t *testing.T) {
	r := newRouter(t)

	for _, path := range []string{"/readyz", "/healthz"} {
		req := testutil.NewRequest(http.MethodGet, path)
		rec := testutil.NewRecorder()
		r.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusOK)
	}
}
