package ditto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/infrastructure/config"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/twin"
)

// fakeDitto is a minimal in-memory stand-in for the Things API, covering the
// status codes the client cares about.
type fakeDitto struct {
	mu     sync.Mutex
	things map[string]twin.Thing
	puts   int
	gets   int
}

func newFakeDitto() *fakeDitto {
	return &fakeDitto{things: make(map[string]twin.Thing)}
}

func (f *fakeDitto) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest, ok := strings.CutPrefix(r.URL.Path, "/api/2/things")
		if !ok {
			http.NotFound(w, r)
			return
		}
		rest = strings.TrimPrefix(rest, "/")

		f.mu.Lock()
		defer f.mu.Unlock()

		// GET /api/2/things is the connection probe
		if rest == "" {
			w.WriteHeader(http.StatusOK)
			return
		}

		thingID := rest
		if i := strings.Index(rest, "/"); i >= 0 {
			thingID = rest[:i]
		}

		switch r.Method {
		case http.MethodGet:
			f.gets++
			thing, exists := f.things[thingID]
			if !exists {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(thing)
		case http.MethodPut:
			f.puts++
			_, existed := f.things[thingID]
			var thing twin.Thing
			_ = json.NewDecoder(r.Body).Decode(&thing)
			f.things[thingID] = thing
			if existed {
				w.WriteHeader(http.StatusNoContent)
			} else {
				w.WriteHeader(http.StatusCreated)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	return New(config.DittoConfig{
		URL:            url,
		Username:       "ditto",
		Password:       "ditto",
		RequestTimeout: 5,
	})
}

func TestEnsureThing_CreatesThenReportsExisting(t *testing.T) {
	store := newFakeDitto()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	mixer := twin.NewThing("org.eclipse.ditto:Mixer", map[string]twin.Feature{
		"Mixer": {Properties: map[string]any{"Temperature": 100, "RPM": 60}},
		"Alarm": {Properties: map[string]any{"alarm_status": "NORMAL"}},
	})

	result, err := client.EnsureThing(context.Background(), mixer)
	if err != nil {
		t.Fatalf("EnsureThing() first call error: %v", err)
	}
	if result != Created {
		t.Errorf("first EnsureThing() = %v, want Created", result)
	}
	if store.puts != 1 {
		t.Errorf("PUT count after create = %d, want 1", store.puts)
	}

	// Second call must be a pure read: no duplicate write.
	result, err = client.EnsureThing(context.Background(), mixer)
	if err != nil {
		t.Fatalf("EnsureThing() second call error: %v", err)
	}
	if result != AlreadyExists {
		t.Errorf("second EnsureThing() = %v, want AlreadyExists", result)
	}
	if store.puts != 1 {
		t.Errorf("PUT count after second call = %d, want still 1", store.puts)
	}
}

func TestEnsureThing_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.EnsureThing(context.Background(), twin.NewThing("ns:thing", nil))
	if err == nil {
		t.Fatal("EnsureThing() expected error for 500, got nil")
	}
}

func TestEnsureThing_TransportFailure(t *testing.T) {
	// Point at a closed server to force a connection error.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := newTestClient(t, url)
	if _, err := client.EnsureThing(context.Background(), twin.NewThing("ns:thing", nil)); err == nil {
		t.Fatal("EnsureThing() expected transport error, got nil")
	}
}

func TestPatchThing_ReturnsStatus(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	status, err := client.PatchThing(context.Background(), "ns:thing", twin.MergePatch{
		Features: map[string]twin.Feature{
			"sensor": {Properties: map[string]any{"value": "42"}},
		},
	})
	if err != nil {
		t.Fatalf("PatchThing() error: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("PatchThing() status = %d, want 404", status)
	}
	if gotContentType != "application/merge-patch+json" {
		t.Errorf("Content-Type = %q, want merge-patch", gotContentType)
	}
}

func TestCheckConnection(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"unauthorized", http.StatusUnauthorized, true},
		{"server error", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := newTestClient(t, srv.URL).CheckConnection(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckConnection() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSend_SetsAuthAndCorrelationHeaders(t *testing.T) {
	var auth, correlation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		correlation = r.Header.Get("x-correlation-id")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if err := client.CheckConnection(context.Background()); err != nil {
		t.Fatalf("CheckConnection() error: %v", err)
	}

	if auth != "Basic ZGl0dG86ZGl0dG8=" {
		t.Errorf("Authorization = %q, want basic ditto/ditto", auth)
	}
	if correlation == "" {
		t.Error("x-correlation-id header missing")
	}
}
