// Package merge reconciles two collections of the same record kind by
// identity. It is a pure function shared by the local store's import
// operation and any caller that needs identity-keyed reconciliation; it
// performs no I/O and never mutates its inputs.
package merge

import "github.com/mvaghela/bizbook/internal/model"

// Resolver combines an existing record with an incoming record that
// share an id and returns the record to keep. Resolvers must be pure.
type Resolver[T model.Entity] func(existing, incoming T) T

// TakeIncoming is the default resolver: the incoming record wins
// outright. This is full-record replacement, not field diffing.
func TakeIncoming[T model.Entity](_, incoming T) T { return incoming }

// Records merges incoming into existing by id:
//
//   - Existing records with a matching incoming id are replaced by
//     resolve(existing, incoming), in place, preserving existing order.
//   - Existing records without a match are kept as-is.
//   - Incoming records with unseen ids are appended, in incoming order.
//
// The result contains exactly one record per distinct id across both
// inputs. Duplicate ids inside incoming itself collapse to the last
// occurrence.
func Records[T model.Entity](existing, incoming []T, resolve Resolver[T]) []T {
	byID := make(map[string]T, len(incoming))
	for _, rec := range incoming {
		byID[rec.EntityID()] = rec
	}

	out := make([]T, 0, len(existing)+len(incoming))
	for _, rec := range existing {
		if update, ok := byID[rec.EntityID()]; ok {
			out = append(out, resolve(rec, update))
			delete(byID, rec.EntityID())
		} else {
			out = append(out, rec)
		}
	}

	seen := make(map[string]bool, len(byID))
	for _, rec := range incoming {
		id := rec.EntityID()
		if _, isNew := byID[id]; !isNew || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, byID[id])
	}
	return out
}

// PreserveAmount resolves reminders: the incoming record wins, except
// that a nil incoming amount never clobbers an existing recorded
// amount. This guards against import files that omitted the optional
// credit amount from silently zeroing it out. It is a deliberate,
// domain-specific rule, not a general deep merge.
func PreserveAmount(existing, incoming model.Reminder) model.Reminder {
	if incoming.Amount == nil && existing.Amount != nil {
		incoming.Amount = existing.Amount
	}
	return incoming
}
