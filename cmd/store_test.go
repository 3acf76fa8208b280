package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestDaemon(t *testing.T, listHits, entryHits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/services", func(w http.ResponseWriter, r *http.Request) {
		listHits.Add(1)
		json.NewEncoder(w).Encode([]Service{
			{ID: "chat", Name: "Chat", Running: true, Downloaded: true},
			{ID: "petals", Name: "Petals", ComingSoon: true},
		})
	})
	mux.HandleFunc("/v1/services/chat", func(w http.ResponseWriter, r *http.Request) {
		entryHits.Add(1)
		json.NewEncoder(w).Encode(Service{ID: "chat", Name: "Chat", Running: true, Downloaded: true})
	})
	mux.HandleFunc("/v1/interfaces", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Interface{{ID: "playground", Name: "Playground"}})
	})
	mux.HandleFunc("/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		limit := 8.0
		json.NewEncoder(w).Encode(SystemStats{MemoryLimit: &limit})
	})
	mux.HandleFunc("/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStoreCachesServices(t *testing.T) {
	var listHits, entryHits atomic.Int64
	srv := newTestDaemon(t, &listHits, &entryHits)
	store := NewStore(NewDaemonClient(srv.URL, nil))
	ctx := context.Background()

	services, err := store.Services(ctx)
	if err != nil {
		t.Fatalf("Services() error = %v", err)
	}
	if len(services) != 2 {
		t.Fatalf("Services() returned %d services, want 2", len(services))
	}

	// Second read comes from cache
	if _, err := store.Services(ctx); err != nil {
		t.Fatalf("Services() error = %v", err)
	}
	if got := listHits.Load(); got != 1 {
		t.Errorf("daemon list endpoint hit %d times, want 1", got)
	}
}

func TestStoreRefreshServicesForcesRefetch(t *testing.T) {
	var listHits, entryHits atomic.Int64
	srv := newTestDaemon(t, &listHits, &entryHits)
	store := NewStore(NewDaemonClient(srv.URL, nil))
	ctx := context.Background()

	if _, err := store.Services(ctx); err != nil {
		t.Fatalf("Services() error = %v", err)
	}
	if err := store.RefreshServices(ctx); err != nil {
		t.Fatalf("RefreshServices() error = %v", err)
	}
	if _, err := store.Services(ctx); err != nil {
		t.Fatalf("Services() error = %v", err)
	}
	if got := listHits.Load(); got != 2 {
		t.Errorf("daemon list endpoint hit %d times, want 2 (initial + forced)", got)
	}
}

func TestStoreInvalidateService(t *testing.T) {
	var listHits, entryHits atomic.Int64
	srv := newTestDaemon(t, &listHits, &entryHits)
	store := NewStore(NewDaemonClient(srv.URL, nil))
	ctx := context.Background()

	if _, err := store.Service(ctx, "chat"); err != nil {
		t.Fatalf("Service() error = %v", err)
	}
	if _, err := store.Service(ctx, "chat"); err != nil {
		t.Fatalf("Service() error = %v", err)
	}
	if got := entryHits.Load(); got != 1 {
		t.Fatalf("daemon entry endpoint hit %d times, want 1", got)
	}

	store.InvalidateService("chat")
	if _, err := store.Service(ctx, "chat"); err != nil {
		t.Fatalf("Service() error = %v", err)
	}
	if got := entryHits.Load(); got != 2 {
		t.Errorf("daemon entry endpoint hit %d times after invalidate, want 2", got)
	}

	// Invalidating an unknown id is a no-op
	store.InvalidateService("nope")
}

func TestStoreStatsNotCached(t *testing.T) {
	var hits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		limit := 16.0
		json.NewEncoder(w).Encode(SystemStats{MemoryLimit: &limit})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := NewStore(NewDaemonClient(srv.URL, nil))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		stats, err := store.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.MemoryLimit == nil || *stats.MemoryLimit != 16.0 {
			t.Errorf("Stats() memory = %v, want 16", stats.MemoryLimit)
		}
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("stats endpoint hit %d times, want 3 (live probe)", got)
	}
}

func TestDaemonClientHealthy(t *testing.T) {
	var listHits, entryHits atomic.Int64
	srv := newTestDaemon(t, &listHits, &entryHits)

	client := NewDaemonClient(srv.URL, nil)
	if !client.Healthy(context.Background()) {
		t.Error("Healthy() = false against a live daemon")
	}

	down := NewDaemonClient("http://127.0.0.1:1", nil)
	if down.Healthy(context.Background()) {
		t.Error("Healthy() = true against a dead address")
	}
}
