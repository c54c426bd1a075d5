// Package store holds the authoritative working copy of every record
// collection plus the profile. Mutations are synchronous against the
// in-memory state and write through to durable storage best-effort: a
// failed physical write is logged, never surfaced, so mutators cannot
// fail on well-formed input.
//
// The store is an explicit instance injected into whatever consumes it.
// There is no package-level singleton.
package store

import (
	"log/slog"
	"sync"

	"github.com/mvaghela/bizbook/internal/model"
)

// Store is the local record store. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	state   model.Snapshot
	persist Persister
	logger  *slog.Logger
}

// New creates a store rehydrated from the persister. Absence of stored
// data yields the empty initial state. If logger is nil the default
// slog logger is used.
func New(persist Persister, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	snapshot, err := persist.Load()
	if err != nil {
		return nil, err
	}

	s := &Store{persist: persist, logger: logger}
	if snapshot != nil {
		s.state = *snapshot
	}
	return s, nil
}

// Reload replaces the in-memory state with whatever the persister
// currently holds. Used when the durable file changed outside this
// process (a restore written by another invocation, a manual edit).
func (s *Store) Reload() error {
	snapshot, err := s.persist.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot == nil {
		s.state = model.Snapshot{}
	} else {
		s.state = *snapshot
	}
	return nil
}

// Export returns a deep copy of the full state. The copy is detached:
// later mutations do not affect it, which makes it safe to hand to the
// sync coordinator or serialize as a backup.
func (s *Store) Export() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Profile returns the current profile, or nil if none is set.
func (s *Store) Profile() *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Profile == nil {
		return nil
	}
	profile := *s.state.Profile
	return &profile
}

// upsertByID replaces the element whose id matches rec, or reports that
// no match was found. Identity never changes across mutation, so a
// replacement lands at the matched index.
func upsertByID[T model.Entity](list []T, rec T) ([]T, bool) {
	for i := range list {
		if list[i].EntityID() == rec.EntityID() {
			list[i] = rec
			return list, true
		}
	}
	return list, false
}

// deleteByID removes the element with the given id, if present.
func deleteByID[T model.Entity](list []T, id string) []T {
	for i := range list {
		if list[i].EntityID() == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// AddSale appends a sale. The total price is recomputed from the line
// items so the stored record always satisfies the sum invariant. No
// duplicate-id check is performed; callers own id generation.
func (s *Store) AddSale(sale model.Sale) {
	sale.TotalPrice = sale.SumItems()
	s.mutate(func() { s.state.Sales = append(s.state.Sales, sale) })
}

// UpdateSale replaces the sale with a matching id; no-op if absent.
func (s *Store) UpdateSale(sale model.Sale) {
	sale.TotalPrice = sale.SumItems()
	s.mutate(func() { s.state.Sales, _ = upsertByID(s.state.Sales, sale) })
}

// DeleteSale removes the sale with the given id; no-op if absent.
func (s *Store) DeleteSale(id string) {
	s.mutate(func() { s.state.Sales = deleteByID(s.state.Sales, id) })
}

func (s *Store) AddCustomer(customer model.Customer) {
	s.mutate(func() { s.state.Customers = append(s.state.Customers, customer) })
}

func (s *Store) UpdateCustomer(customer model.Customer) {
	s.mutate(func() { s.state.Customers, _ = upsertByID(s.state.Customers, customer) })
}

func (s *Store) DeleteCustomer(id string) {
	s.mutate(func() { s.state.Customers = deleteByID(s.state.Customers, id) })
}

func (s *Store) AddVehicle(vehicle model.Vehicle) {
	s.mutate(func() { s.state.Vehicles = append(s.state.Vehicles, vehicle) })
}

func (s *Store) UpdateVehicle(vehicle model.Vehicle) {
	s.mutate(func() { s.state.Vehicles, _ = upsertByID(s.state.Vehicles, vehicle) })
}

func (s *Store) DeleteVehicle(id string) {
	s.mutate(func() { s.state.Vehicles = deleteByID(s.state.Vehicles, id) })
}

func (s *Store) AddExpense(expense model.Expense) {
	s.mutate(func() { s.state.Expenses = append(s.state.Expenses, expense) })
}

func (s *Store) UpdateExpense(expense model.Expense) {
	s.mutate(func() { s.state.Expenses, _ = upsertByID(s.state.Expenses, expense) })
}

func (s *Store) DeleteExpense(id string) {
	s.mutate(func() { s.state.Expenses = deleteByID(s.state.Expenses, id) })
}

func (s *Store) AddReminder(reminder model.Reminder) {
	s.mutate(func() { s.state.Reminders = append(s.state.Reminders, reminder) })
}

func (s *Store) UpdateReminder(reminder model.Reminder) {
	s.mutate(func() { s.state.Reminders, _ = upsertByID(s.state.Reminders, reminder) })
}

func (s *Store) DeleteReminder(id string) {
	s.mutate(func() { s.state.Reminders = deleteByID(s.state.Reminders, id) })
}

// UpdateProfile replaces the singleton profile.
func (s *Store) UpdateProfile(profile model.Profile) {
	s.mutate(func() { s.state.Profile = &profile })
}

// RestoreData unconditionally replaces the entire state with the given
// snapshot. Shape validation belongs to the caller (model.ParseBackup).
func (s *Store) RestoreData(snapshot *model.Snapshot) {
	clone := snapshot.Clone()
	s.mutate(func() { s.state = *clone })
}

// ImportData merges each collection present in the partial snapshot
// into the current state using the merge resolver; absent collections
// are left untouched. A profile in the input fully replaces the current
// profile. Reminders use the amount-preservation rule.
func (s *Store) ImportData(partial *model.Partial) {
	s.mutate(func() {
		if partial.Sales != nil {
			s.state.Sales = mergeSales(s.state.Sales, *partial.Sales)
		}
		if partial.Customers != nil {
			s.state.Customers = mergeCustomers(s.state.Customers, *partial.Customers)
		}
		if partial.Vehicles != nil {
			s.state.Vehicles = mergeVehicles(s.state.Vehicles, *partial.Vehicles)
		}
		if partial.Expenses != nil {
			s.state.Expenses = mergeExpenses(s.state.Expenses, *partial.Expenses)
		}
		if partial.Reminders != nil {
			s.state.Reminders = mergeReminders(s.state.Reminders, *partial.Reminders)
		}
		if partial.Profile != nil {
			profile := *partial.Profile
			s.state.Profile = &profile
		}
	})
}

// ClearData resets every collection to empty and the profile to absent.
func (s *Store) ClearData() {
	s.mutate(func() { s.state = model.Snapshot{} })
}

// mutate applies fn under the lock, then writes the full state through
// to durable storage. Persistence failures are logged, not returned:
// the in-memory update has already happened and callers must not treat
// a mutation as durable until a later export or restart proves it.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if err := s.persist.Save(snapshot); err != nil {
		s.logger.Warn("failed to persist store state", "error", err)
	}
}
