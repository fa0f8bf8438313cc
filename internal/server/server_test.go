package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lazypower/texprogress/internal/series"
	"github.com/lazypower/texprogress/internal/store"
)

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func testServer(t *testing.T, records ...series.Record) (*Server, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if len(records) > 0 {
		if err := db.Series().Save(context.Background(), records); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	clock := func() time.Time { return fixedNow }
	return New(db.Series(), "test-version", Options{Clock: clock, Runs: db}), db
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["store"] != true {
		t.Errorf("store = %v, want true", body["store"])
	}
}

type brokenStore struct{}

func (brokenStore) Load(ctx context.Context) ([]series.Record, error) {
	return nil, errors.New("disk gone")
}
func (brokenStore) Save(ctx context.Context, r []series.Record) error { return nil }

func TestStoreFailure(t *testing.T) {
	srv := New(brokenStore{}, "v", Options{})

	for _, path := range []string{"/progress.svg", "/api/series", "/api/deltas"} {
		if w := get(t, srv, path); w.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", path, w.Code)
		}
	}

	var body map[string]any
	json.Unmarshal(get(t, srv, "/api/health").Body.Bytes(), &body)
	if body["store"] != false {
		t.Errorf("health store = %v, want false", body["store"])
	}
}

func TestRootRedirects(t *testing.T) {
	srv, _ := testServer(t)
	w := get(t, srv, "/")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/progress.svg" {
		t.Errorf("got %d to %q", w.Code, w.Header().Get("Location"))
	}
}
