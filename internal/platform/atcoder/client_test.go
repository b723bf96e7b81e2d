package atcoder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"atcrank/internal/common"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.URL, 5*time.Second, 2), srv
}

func TestFetchResults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/atcoder-api/v3/user/submissions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("user"); got != "chokudai" {
			t.Errorf("user = %q, want chokudai", got)
		}
		if got := r.URL.Query().Get("from_second"); got != "12345" {
			t.Errorf("from_second = %q, want 12345", got)
		}
		w.Write([]byte(`[
			{"id": 1, "epoch_second": 12400, "problem_id": "abc1_a", "result": "AC"},
			{"id": 2, "epoch_second": 12500, "problem_id": "abc1_b", "result": "WA"}
		]`))
	}))

	results, err := client.FetchResults(context.Background(), "chokudai", 12345)
	if err != nil {
		t.Fatalf("FetchResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ProblemID != "abc1_a" || results[0].Result != "AC" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
}

func TestFetchResultsCasingFallback(t *testing.T) {
	var exactCalls, lowerCalls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("user") {
		case "Chokudai":
			atomic.AddInt32(&exactCalls, 1)
			http.NotFound(w, r)
		case "chokudai":
			atomic.AddInt32(&lowerCalls, 1)
			w.Write([]byte(`[{"id": 1, "epoch_second": 100, "problem_id": "abc1_a", "result": "AC"}]`))
		default:
			t.Errorf("unexpected user %q", r.URL.Query().Get("user"))
		}
	}))

	results, err := client.FetchResults(context.Background(), "Chokudai", 0)
	if err != nil {
		t.Fatalf("FetchResults: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if exactCalls != 1 || lowerCalls != 1 {
		t.Errorf("expected one call each, got exact=%d lower=%d", exactCalls, lowerCalls)
	}
}

func TestFetchResultsUnknownUser(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.FetchResults(context.Background(), "nosuchuser", 0)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchResultsRetriesTransientErrors(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))

	results, err := client.FetchResults(context.Background(), "retry_me", 0)
	if err != nil {
		t.Fatalf("FetchResults: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestFetchRating(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/tourist/history/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"NewRating": 2800}, {"NewRating": 3650}]`))
	}))

	rating, err := client.FetchRating(context.Background(), "tourist")
	if err != nil {
		t.Fatalf("FetchRating: %v", err)
	}
	if rating != 3650 {
		t.Errorf("rating = %d, want the latest entry 3650", rating)
	}
}

func TestFetchRatingNoHistory(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	rating, err := client.FetchRating(context.Background(), "unrated")
	if err != nil {
		t.Fatalf("FetchRating: %v", err)
	}
	if rating != 0 {
		t.Errorf("rating = %d, want 0 for empty history", rating)
	}
}

func TestFetchCatalogJoinsModels(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resources/problems.json":
			w.Write([]byte(`[
				{"id": "abc1_a", "contest_id": "abc1", "title": "Easy"},
				{"id": "abc1_b", "contest_id": "abc1", "title": "Unrated"},
				{"contest_id": "abc1", "title": "No ID"}
			]`))
		case "/resources/problem-models.json":
			w.Write([]byte(`{"abc1_a": {"difficulty": 312.5}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))

	catalog, err := client.FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("FetchCatalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 problems (record without id dropped), got %d", len(catalog))
	}
	if catalog[0].ProblemID != "abc1_a" || catalog[0].DifficultyRaw == nil || *catalog[0].DifficultyRaw != 312.5 {
		t.Errorf("unexpected first record: %+v", catalog[0])
	}
	if catalog[1].DifficultyRaw != nil {
		t.Errorf("expected nil difficulty for unmodeled problem, got %v", *catalog[1].DifficultyRaw)
	}
}
