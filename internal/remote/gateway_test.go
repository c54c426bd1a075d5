package remote

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mvaghela/bizbook/internal/model"
)

func openTestGateway(t *testing.T) *Gateway {
	t.Helper()
	path := filepath.Join(t.TempDir(), "remote.db")
	gateway, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open gateway: %v", err)
	}
	t.Cleanup(func() { gateway.Close() })
	return gateway
}

func TestOpen(t *testing.T) {
	t.Run("empty path is unavailable", func(t *testing.T) {
		_, err := Open("")
		if !IsUnavailable(err) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("creates collections idempotently", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "remote.db")
		first, err := Open(path)
		if err != nil {
			t.Fatalf("first open failed: %v", err)
		}
		if err := first.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		second, err := Open(path)
		if err != nil {
			t.Fatalf("second open failed: %v", err)
		}
		defer second.Close()
	})
}

func TestUpsertAndFetch(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()

	t.Run("fetch on empty collection returns empty, not error", func(t *testing.T) {
		customers, err := gateway.Customers(ctx, 0)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(customers) != 0 {
			t.Errorf("expected empty, got %d", len(customers))
		}
	})

	t.Run("upsert then fetch round-trips", func(t *testing.T) {
		customer := model.Customer{ID: "c1", Name: "Sharma Traders", Status: model.CustomerActive}
		if err := gateway.Upsert(ctx, model.KindCustomer, customer.ID, customer); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		customers, err := gateway.Customers(ctx, 0)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(customers) != 1 || customers[0].Name != "Sharma Traders" {
			t.Fatalf("unexpected customers: %+v", customers)
		}
	})

	t.Run("fetch orders by id descending and honors limit", func(t *testing.T) {
		for _, id := range []string{"v1", "v3", "v2"} {
			vehicle := model.Vehicle{ID: id, Make: "Tata"}
			if err := gateway.Upsert(ctx, model.KindVehicle, id, vehicle); err != nil {
				t.Fatalf("upsert %s failed: %v", id, err)
			}
		}

		vehicles, err := gateway.Vehicles(ctx, 2)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(vehicles) != 2 || vehicles[0].ID != "v3" || vehicles[1].ID != "v2" {
			t.Errorf("unexpected order: %+v", vehicles)
		}
	})

	t.Run("partial upsert merges fields instead of replacing", func(t *testing.T) {
		customer := model.Customer{ID: "c9", Name: "Patil Constructions", Phone: "9822000002", Status: model.CustomerActive}
		if err := gateway.Upsert(ctx, model.KindCustomer, customer.ID, customer); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		// Partial document: only the name changes.
		patch := map[string]any{"id": "c9", "name": "Patil & Sons"}
		if err := gateway.Upsert(ctx, model.KindCustomer, "c9", patch); err != nil {
			t.Fatalf("partial upsert failed: %v", err)
		}

		customers, err := gateway.Customers(ctx, 0)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		var got *model.Customer
		for i := range customers {
			if customers[i].ID == "c9" {
				got = &customers[i]
			}
		}
		if got == nil {
			t.Fatal("customer c9 missing")
		}
		if got.Name != "Patil & Sons" {
			t.Errorf("name not updated: %q", got.Name)
		}
		if got.Phone != "9822000002" {
			t.Errorf("phone erased by partial write: %q", got.Phone)
		}
	})

	t.Run("remove deletes and is idempotent", func(t *testing.T) {
		expense := model.Expense{ID: "e1", Category: "Fuel", Amount: decimal.NewFromInt(100)}
		if err := gateway.Upsert(ctx, model.KindExpense, expense.ID, expense); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		if err := gateway.Remove(ctx, model.KindExpense, "e1"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if err := gateway.Remove(ctx, model.KindExpense, "e1"); err != nil {
			t.Fatalf("second remove should be a no-op: %v", err)
		}

		expenses, err := gateway.Expenses(ctx, 0)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("expense not removed: %+v", expenses)
		}
	})
}

func TestProfile(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()

	t.Run("absent profile is nil, not an error", func(t *testing.T) {
		profile, err := gateway.FetchProfile(ctx)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if profile != nil {
			t.Errorf("expected nil profile, got %+v", profile)
		}
	})

	t.Run("save and fetch the singleton", func(t *testing.T) {
		want := &model.Profile{Name: "Asha", CompanyName: "Asha Transport"}
		if err := gateway.SaveProfile(ctx, want); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := gateway.SaveProfile(ctx, want); err != nil {
			t.Fatalf("second save failed: %v", err)
		}

		got, err := gateway.FetchProfile(ctx)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if got == nil || got.Name != "Asha" || got.CompanyName != "Asha Transport" {
			t.Errorf("unexpected profile: %+v", got)
		}
	})
}

func TestExistingIDs(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()

	for _, id := range []string{"r1", "r2"} {
		if err := gateway.Upsert(ctx, model.KindReminder, id, model.Reminder{ID: id}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	ids, err := gateway.ExistingIDs(ctx, model.KindReminder, 0)
	if err != nil {
		t.Fatalf("ExistingIDs failed: %v", err)
	}
	if len(ids) != 2 || !ids["r1"] || !ids["r2"] {
		t.Errorf("unexpected ids: %+v", ids)
	}
}

func TestBatch(t *testing.T) {
	gateway := openTestGateway(t)
	ctx := context.Background()

	t.Run("commit applies every staged write", func(t *testing.T) {
		batch := gateway.Batch()
		for _, id := range []string{"c1", "c2"} {
			if err := batch.Upsert(model.KindCustomer, id, model.Customer{ID: id, Name: id}); err != nil {
				t.Fatalf("stage failed: %v", err)
			}
		}
		if err := batch.UpsertProfile(&model.Profile{Name: "Asha"}); err != nil {
			t.Fatalf("stage profile failed: %v", err)
		}
		if batch.Len() != 3 {
			t.Fatalf("expected 3 staged writes, got %d", batch.Len())
		}

		if err := batch.Commit(ctx); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		count, err := gateway.Count(ctx, model.KindCustomer)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 2 {
			t.Errorf("got %d customers, want 2", count)
		}
		profile, err := gateway.FetchProfile(ctx)
		if err != nil || profile == nil || profile.Name != "Asha" {
			t.Errorf("profile not committed: %+v, %v", profile, err)
		}
	})

	t.Run("empty batch commit is a no-op", func(t *testing.T) {
		if err := gateway.Batch().Commit(ctx); err != nil {
			t.Fatalf("empty commit failed: %v", err)
		}
	})
}
