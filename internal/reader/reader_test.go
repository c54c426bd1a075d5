package reader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mvaghela/bizbook/internal/model"
	"github.com/mvaghela/bizbook/internal/remote"
	"github.com/mvaghela/bizbook/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(store.NewMemPersister(), nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return st
}

func TestReaderRemoteFirst(t *testing.T) {
	gateway, err := remote.Open(filepath.Join(t.TempDir(), "remote.db"))
	if err != nil {
		t.Fatalf("failed to open gateway: %v", err)
	}
	t.Cleanup(func() { gateway.Close() })
	ctx := context.Background()

	if err := gateway.Upsert(ctx, model.KindCustomer, "c1", model.Customer{ID: "c1", Name: "Remote"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	st := newTestStore(t)
	st.AddCustomer(model.Customer{ID: "c2", Name: "Local"})

	r := New(gateway, st, nil, 0)
	customers, info := r.Customers(ctx)

	if info.Source != SourceRemote {
		t.Errorf("got source %v, want remote", info.Source)
	}
	if info.RemoteErr != nil {
		t.Errorf("unexpected remote error: %v", info.RemoteErr)
	}
	if len(customers) != 1 || customers[0].Name != "Remote" {
		t.Errorf("unexpected customers: %+v", customers)
	}
}

func TestReaderFallsBackToLocal(t *testing.T) {
	st := newTestStore(t)
	st.AddCustomer(model.Customer{ID: "c1", Name: "Local"})

	// Nil gateway models an unconfigured remote.
	r := New(nil, st, nil, 0)
	customers, info := r.Customers(context.Background())

	if info.Source != SourceLocal {
		t.Errorf("got source %v, want local", info.Source)
	}
	if !remote.IsUnavailable(info.RemoteErr) {
		t.Errorf("fallback should carry the remote failure, got %v", info.RemoteErr)
	}
	if len(customers) != 1 || customers[0].Name != "Local" {
		t.Errorf("unexpected customers: %+v", customers)
	}
}

func TestReaderFallsBackToSamples(t *testing.T) {
	r := New(nil, newTestStore(t), nil, 0)
	customers, info := r.Customers(context.Background())

	if info.Source != SourceSample {
		t.Errorf("got source %v, want sample", info.Source)
	}
	if len(customers) == 0 {
		t.Error("sample fallback returned no records")
	}
}

func TestReaderProfile(t *testing.T) {
	t.Run("falls back to local profile", func(t *testing.T) {
		st := newTestStore(t)
		st.UpdateProfile(model.Profile{Name: "Asha"})

		r := New(nil, st, nil, 0)
		profile, info := r.Profile(context.Background())

		if info.Source != SourceLocal {
			t.Errorf("got source %v, want local", info.Source)
		}
		if profile == nil || profile.Name != "Asha" {
			t.Errorf("unexpected profile: %+v", profile)
		}
	})

	t.Run("absent profile stays nil", func(t *testing.T) {
		r := New(nil, newTestStore(t), nil, 0)
		profile, _ := r.Profile(context.Background())
		if profile != nil {
			t.Errorf("expected nil profile, got %+v", profile)
		}
	})
}
