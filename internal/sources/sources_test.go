package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/estia-cy/estia/internal/config"
	"github.com/estia-cy/estia/pkg/types"
)

func TestBackendClientFetch(t *testing.T) {
	var gotAPIKey, gotAuth, gotOrder string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		gotOrder = r.URL.Query().Get("order")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"agt_1","name":"Blue Coast Estates","location":"Limassol","listings":120}]`))
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "test-key", 5*time.Second)

	agents, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(agents) != 1 || agents[0].Name != "Blue Coast Estates" {
		t.Fatalf("unexpected agents: %v", agents)
	}
	if gotAPIKey != "test-key" {
		t.Errorf("expected apikey header, got %q", gotAPIKey)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotOrder != "listings.desc" {
		t.Errorf("expected listings.desc ordering, got %q", gotOrder)
	}
}

func TestBackendClientFetchEmptyIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "test-key", 5*time.Second)

	_, err := client.Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for empty result, got %v", err)
	}
}

func TestBackendClientGetByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "eq.agt_missing" {
			t.Errorf("unexpected id filter: %q", r.URL.Query().Get("id"))
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "test-key", 5*time.Second)

	_, err := client.GetByID(context.Background(), "agt_missing")
	if err == nil {
		t.Fatal("expected an error for missing record")
	}
}

func TestBackendClientInsertSetsUpsertHeader(t *testing.T) {
	var gotPrefer string
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		gotMethod = r.Method
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "test-key", 5*time.Second)

	err := client.Insert(context.Background(), []types.RawAgent{{Name: "Blue Coast Estates"}})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotPrefer != "resolution=merge-duplicates" {
		t.Errorf("expected merge-duplicates preference, got %q", gotPrefer)
	}
}

func TestBackendClientCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "test-key", 5*time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := client.Fetch(ctx); err == nil {
			t.Fatal("expected failure from 500 response")
		}
	}

	_, err := client.Fetch(ctx)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen after repeated failures, got %v", err)
	}
	if client.Breaker().State() != "open" {
		t.Errorf("expected open breaker, got %s", client.Breaker().State())
	}
}

func TestStaticJSONSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"Capital Homes","location":"Nicosia","listings":45}]`))
	}))
	defer server.Close()

	src := NewStaticJSONSource(server.URL, 5*time.Second)

	agents, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(agents) != 1 || agents[0].Name != "Capital Homes" {
		t.Fatalf("unexpected agents: %v", agents)
	}
}

func TestStaticJSONSourceFailureModes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}},
		{"empty array", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			src := NewStaticJSONSource(server.URL, 5*time.Second)
			_, err := src.Fetch(context.Background())
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestSampleAgentsAreFixed(t *testing.T) {
	samples := SampleAgents()
	if len(samples) != 3 {
		t.Fatalf("expected exactly 3 sample agents, got %d", len(samples))
	}

	wantNames := []string{"Kalogirou Real Estate", "CENTURY 21", "Cyprus Sothebys International Realty"}
	for i, want := range wantNames {
		if samples[i].Name != want {
			t.Errorf("sample %d: expected %q, got %q", i, want, samples[i].Name)
		}
		if samples[i].Rating == 0 || samples[i].ReviewCount == 0 {
			t.Errorf("sample %q must carry pre-set rating and review count", samples[i].Name)
		}
		if len(samples[i].Services) == 0 {
			t.Errorf("sample %q must carry pre-set services", samples[i].Name)
		}
	}
}

func TestManagerDefaultChain(t *testing.T) {
	cfg := &config.Config{}
	cfg.Backend.Active = true
	cfg.Backend.Transport = "rest"
	cfg.Backend.URL = "https://backend.example"
	cfg.Backend.Key = "key"
	cfg.Backend.TimeoutSeconds = 5
	cfg.Fallback.StaticURL = "https://static.example/agents.json"
	cfg.Fallback.TimeoutSeconds = 5

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("manager failed: %v", err)
	}
	defer m.Close()

	chain := m.Chain()
	if len(chain) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(chain))
	}
	if chain[0].Name() != "backend" {
		t.Errorf("expected backend first, got %s", chain[0].Name())
	}
	if chain[1].Name() != "static-json" {
		t.Errorf("expected static-json second, got %s", chain[1].Name())
	}
}

func TestManagerSkipsUnconfiguredBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Backend.Active = true
	cfg.Backend.Transport = "rest"
	cfg.Fallback.StaticURL = "https://static.example/agents.json"

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("manager failed: %v", err)
	}
	defer m.Close()

	chain := m.Chain()
	if len(chain) != 1 || chain[0].Name() != "static-json" {
		t.Fatalf("expected static-json only, got %d sources", len(chain))
	}
}

func TestManagerSQLiteTransport(t *testing.T) {
	cfg := &config.Config{}
	cfg.Backend.Active = true
	cfg.Backend.Transport = "sqlite"
	cfg.Backend.SQLitePath = filepath.Join(t.TempDir(), "estia.db")

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("manager failed: %v", err)
	}
	defer m.Close()

	chain := m.Chain()
	if len(chain) != 1 || chain[0].Name() != "sqlite" {
		t.Fatalf("expected sqlite source, got %v", chain)
	}
	if _, ok := chain[0].(Lookup); !ok {
		t.Error("sqlite source should support point lookups")
	}
}

func TestManagerChainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	content := `sources:
  - type: backend
    url: https://backend.example
    key: key
  - type: static
    url: https://static.example/agents.json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Sources.File = path

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("manager failed: %v", err)
	}
	defer m.Close()

	if len(m.Chain()) != 2 {
		t.Fatalf("expected 2 sources from chain file, got %d", len(m.Chain()))
	}
}

func TestManagerChainFileRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	if err := os.WriteFile(path, []byte("sources:\n  - type: carrier-pigeon\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Sources.File = path

	if _, err := NewManager(cfg); err == nil {
		t.Fatal("expected error for unknown source type")
	}
}
