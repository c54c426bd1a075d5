package dashboard

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvaghela/bizbook/internal/model"
	"github.com/mvaghela/bizbook/internal/reader"
	"github.com/mvaghela/bizbook/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.New(store.NewMemPersister(), nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	st.AddCustomer(model.Customer{ID: "c1", Name: "Asha"})
	return NewServer(reader.New(nil, st, nil, 0), Config{})
}

func TestHandleSnapshot(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleSnapshot(rec, httptest.NewRequest("GET", "/api/snapshot", nil))

	if rec.Code != 200 {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	var payload SnapshotPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}

	if len(payload.Customers) != 1 || payload.Customers[0].Name != "Asha" {
		t.Errorf("unexpected customers: %+v", payload.Customers)
	}
	if payload.Sources["customers"] != "local" {
		t.Errorf("customers served from %q, want local", payload.Sources["customers"])
	}
	// Empty collections fall through to sample data.
	if payload.Sources["sales"] != "sample" {
		t.Errorf("sales served from %q, want sample", payload.Sources["sales"])
	}
	if payload.RemoteErr == "" {
		t.Error("remote failure reason not reported")
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %+v", body)
	}
}

func TestStoreWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	w, err := NewStoreWatcher(path)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case <-w.Changes():
	case err := <-w.Errors():
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after write")
	}

	// Writes to other files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	select {
	case <-w.Changes():
		t.Error("unrelated file triggered a change notification")
	case <-time.After(2 * debounceWindow):
	}
}
