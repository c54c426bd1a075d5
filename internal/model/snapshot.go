package model

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the full record set: every collection plus the optional
// profile. It is the unit of local persistence, backup export, and
// full restore. The JSON shape doubles as the backup file format.
type Snapshot struct {
	Sales     []Sale     `json:"sales"`
	Customers []Customer `json:"customers"`
	Vehicles  []Vehicle  `json:"vehicles"`
	Expenses  []Expense  `json:"expenses"`
	Reminders []Reminder `json:"reminders"`
	Profile   *Profile   `json:"profile,omitempty"`
}

// Partial is a snapshot in which any collection may be absent. Absent
// collections (nil pointers) are left untouched by import operations;
// a present-but-empty collection is a deliberate empty set.
type Partial struct {
	Sales     *[]Sale     `json:"sales,omitempty"`
	Customers *[]Customer `json:"customers,omitempty"`
	Vehicles  *[]Vehicle  `json:"vehicles,omitempty"`
	Expenses  *[]Expense  `json:"expenses,omitempty"`
	Reminders *[]Reminder `json:"reminders,omitempty"`
	Profile   *Profile    `json:"profile,omitempty"`
}

// ValidationError reports a backup document whose structure does not
// match the expected shape. It is raised before any I/O and never
// retried.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid backup: %s", e.Reason)
	}
	return fmt.Sprintf("invalid backup: key %q: %s", e.Key, e.Reason)
}

// collectionKeys are the top-level backup keys that must be arrays when
// present. Profile is the one object-valued key.
var collectionKeys = []string{"sales", "customers", "vehicles", "expenses", "reminders"}

// ParseBackup parses a backup document into a Partial, enforcing the
// structural contract: every collection key present must hold an array,
// and "profile", if present, must hold an object. Field-level problems
// inside records surface as ordinary decode errors, not ValidationError.
func ParseBackup(data []byte) (*Partial, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Reason: "not a JSON object"}
	}

	for _, key := range collectionKeys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		if !startsWith(msg, '[') {
			return nil, &ValidationError{Key: key, Reason: "expected an array"}
		}
	}
	if msg, ok := raw["profile"]; ok && !startsWith(msg, '{') {
		return nil, &ValidationError{Key: "profile", Reason: "expected an object"}
	}

	var p Partial
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode backup records: %w", err)
	}
	return &p, nil
}

// Complete converts a Partial into a full Snapshot, requiring every
// collection key to be present (empty arrays are fine). This is the
// acceptance check for a full restore.
func (p *Partial) Complete() (*Snapshot, error) {
	required := map[string]bool{
		"sales":     p.Sales != nil,
		"customers": p.Customers != nil,
		"vehicles":  p.Vehicles != nil,
		"expenses":  p.Expenses != nil,
		"reminders": p.Reminders != nil,
	}
	for _, key := range collectionKeys {
		if !required[key] {
			return nil, &ValidationError{Key: key, Reason: "required for a full restore"}
		}
	}
	return &Snapshot{
		Sales:     *p.Sales,
		Customers: *p.Customers,
		Vehicles:  *p.Vehicles,
		Expenses:  *p.Expenses,
		Reminders: *p.Reminders,
		Profile:   p.Profile,
	}, nil
}

// Has reports whether the collection for the given kind is present.
func (p *Partial) Has(k Kind) bool {
	switch k {
	case KindSale:
		return p.Sales != nil
	case KindCustomer:
		return p.Customers != nil
	case KindVehicle:
		return p.Vehicles != nil
	case KindExpense:
		return p.Expenses != nil
	case KindReminder:
		return p.Reminders != nil
	default:
		return false
	}
}

// Partial returns a partial view of a full snapshot with every
// collection present. Used when migrating or importing the entire
// local state.
func (s *Snapshot) Partial() *Partial {
	return &Partial{
		Sales:     &s.Sales,
		Customers: &s.Customers,
		Vehicles:  &s.Vehicles,
		Expenses:  &s.Expenses,
		Reminders: &s.Reminders,
		Profile:   s.Profile,
	}
}

// Clone returns a deep copy of the snapshot so callers can hold it
// without racing later store mutations.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Sales:     make([]Sale, len(s.Sales)),
		Customers: append([]Customer(nil), s.Customers...),
		Vehicles:  append([]Vehicle(nil), s.Vehicles...),
		Expenses:  append([]Expense(nil), s.Expenses...),
		Reminders: make([]Reminder, len(s.Reminders)),
	}
	for i, sale := range s.Sales {
		sale.Items = append([]SaleItem(nil), sale.Items...)
		out.Sales[i] = sale
	}
	for i, r := range s.Reminders {
		if r.Amount != nil {
			amount := *r.Amount
			r.Amount = &amount
		}
		out.Reminders[i] = r
	}
	if s.Profile != nil {
		profile := *s.Profile
		out.Profile = &profile
	}
	return out
}

// Counts returns the number of records per collection, keyed by
// collection name. Used by the status command and the dashboard.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		KindSale.Collection():     len(s.Sales),
		KindCustomer.Collection(): len(s.Customers),
		KindVehicle.Collection():  len(s.Vehicles),
		KindExpense.Collection():  len(s.Expenses),
		KindReminder.Collection(): len(s.Reminders),
	}
}

func startsWith(msg json.RawMessage, c byte) bool {
	for _, b := range msg {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == c
		}
	}
	return false
}
