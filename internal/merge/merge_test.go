package merge

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mvaghela/bizbook/internal/model"
)

func customer(id, name string) model.Customer {
	return model.Customer{ID: id, Name: name, Status: model.CustomerActive}
}

func TestRecords(t *testing.T) {
	t.Run("contains exactly the union of ids", func(t *testing.T) {
		existing := []model.Customer{customer("a", "A"), customer("b", "B")}
		incoming := []model.Customer{customer("b", "B2"), customer("c", "C")}

		got := Records(existing, incoming, TakeIncoming[model.Customer])

		if len(got) != 3 {
			t.Fatalf("expected 3 records, got %d", len(got))
		}
		seen := map[string]int{}
		for _, rec := range got {
			seen[rec.ID]++
		}
		for _, id := range []string{"a", "b", "c"} {
			if seen[id] != 1 {
				t.Errorf("id %s appears %d times, want 1", id, seen[id])
			}
		}
	})

	t.Run("incoming wins on matching id", func(t *testing.T) {
		existing := []model.Customer{customer("a", "Old Name")}
		incoming := []model.Customer{customer("a", "New Name")}

		got := Records(existing, incoming, TakeIncoming[model.Customer])

		if len(got) != 1 || got[0].Name != "New Name" {
			t.Fatalf("expected updated record, got %+v", got)
		}
	})

	t.Run("preserves existing order and appends new at the end", func(t *testing.T) {
		existing := []model.Customer{customer("a", "A"), customer("b", "B"), customer("c", "C")}
		incoming := []model.Customer{customer("e", "E"), customer("b", "B2"), customer("d", "D")}

		got := Records(existing, incoming, TakeIncoming[model.Customer])

		wantOrder := []string{"a", "b", "c", "e", "d"}
		if len(got) != len(wantOrder) {
			t.Fatalf("expected %d records, got %d", len(wantOrder), len(got))
		}
		for i, id := range wantOrder {
			if got[i].ID != id {
				t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
			}
		}
	})

	t.Run("empty inputs", func(t *testing.T) {
		if got := Records(nil, nil, TakeIncoming[model.Customer]); len(got) != 0 {
			t.Errorf("expected empty result, got %d records", len(got))
		}
		incoming := []model.Customer{customer("a", "A")}
		if got := Records(nil, incoming, TakeIncoming[model.Customer]); len(got) != 1 {
			t.Errorf("expected 1 record, got %d", len(got))
		}
		existing := []model.Customer{customer("a", "A")}
		if got := Records(existing, nil, TakeIncoming[model.Customer]); len(got) != 1 {
			t.Errorf("expected 1 record, got %d", len(got))
		}
	})

	t.Run("does not mutate inputs", func(t *testing.T) {
		existing := []model.Customer{customer("a", "A")}
		incoming := []model.Customer{customer("a", "A2")}

		Records(existing, incoming, TakeIncoming[model.Customer])

		if existing[0].Name != "A" {
			t.Errorf("existing input mutated: %+v", existing[0])
		}
	})
}

func TestPreserveAmount(t *testing.T) {
	amount := decimal.NewFromInt(5000)

	t.Run("nil incoming amount keeps existing amount", func(t *testing.T) {
		existing := []model.Reminder{{ID: "1", Type: model.ReminderCredit, Amount: &amount}}
		incoming := []model.Reminder{{ID: "1", Type: model.ReminderCredit, Amount: nil, Details: "updated"}}

		got := Records(existing, incoming, PreserveAmount)

		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
		if got[0].Amount == nil || !got[0].Amount.Equal(amount) {
			t.Errorf("amount not preserved: %v", got[0].Amount)
		}
		if got[0].Details != "updated" {
			t.Errorf("other fields should come from incoming, got %q", got[0].Details)
		}
	})

	t.Run("non-nil incoming amount wins", func(t *testing.T) {
		newAmount := decimal.NewFromInt(750)
		existing := []model.Reminder{{ID: "1", Amount: &amount}}
		incoming := []model.Reminder{{ID: "1", Amount: &newAmount}}

		got := Records(existing, incoming, PreserveAmount)

		if !got[0].Amount.Equal(newAmount) {
			t.Errorf("got amount %v, want %v", got[0].Amount, newAmount)
		}
	})

	t.Run("both nil stays nil", func(t *testing.T) {
		existing := []model.Reminder{{ID: "1"}}
		incoming := []model.Reminder{{ID: "1"}}

		got := Records(existing, incoming, PreserveAmount)

		if got[0].Amount != nil {
			t.Errorf("expected nil amount, got %v", got[0].Amount)
		}
	})
}
