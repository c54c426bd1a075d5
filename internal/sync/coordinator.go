// Package sync orchestrates the bulk migrate and import operations
// between the local record set and the remote document store.
//
// Migrate asserts local-wins: every local record is staged as a
// field-merging upsert and committed in one atomic batch, so re-running
// it re-asserts the same state. Import asserts remote-wins-if-present:
// only records whose ids are absent remotely are staged, making it
// strictly additive. The read-ids-then-write sequence in Import is not
// protected against concurrent remote writers; a record created by
// another client between the read and the commit can make the
// missing-id check stale. That window is accepted, documented behavior.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mvaghela/bizbook/internal/model"
	"github.com/mvaghela/bizbook/internal/remote"
)

var (
	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizbook_sync_batches_total",
		Help: "Sync batches attempted, by operation and outcome.",
	}, []string{"operation", "outcome"})

	recordsStaged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizbook_sync_records_staged_total",
		Help: "Records staged for upsert, by operation.",
	}, []string{"operation"})
)

// Coordinator runs bulk operations against the remote gateway.
type Coordinator struct {
	gateway    *remote.Gateway
	logger     *slog.Logger
	fetchLimit int
}

// New creates a coordinator. If logger is nil the default slog logger
// is used. fetchLimit bounds the existing-id reads during Import; pass
// 0 for the gateway default.
func New(gateway *remote.Gateway, logger *slog.Logger, fetchLimit int) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{gateway: gateway, logger: logger, fetchLimit: fetchLimit}
}

// Result reports what a bulk operation staged and skipped per
// collection. Skipped counts records left alone because their id
// already existed remotely (Import) or because they carried no id.
type Result struct {
	Staged  map[string]int
	Skipped map[string]int
}

// Total returns the total number of staged records.
func (r *Result) Total() int {
	total := 0
	for _, n := range r.Staged {
		total += n
	}
	return total
}

func newResult() *Result {
	return &Result{Staged: map[string]int{}, Skipped: map[string]int{}}
}

// stageAll stages an upsert for every record in recs that carries an
// id. When existing is non-nil, records whose id is already present
// are skipped instead.
func stageAll[T model.Entity](batch *remote.Batch, kind model.Kind, recs []T, existing map[string]bool, result *Result) error {
	name := kind.Collection()
	for _, rec := range recs {
		id := rec.EntityID()
		if id == "" || (existing != nil && existing[id]) {
			result.Skipped[name]++
			continue
		}
		if err := batch.Upsert(kind, id, rec); err != nil {
			return err
		}
		result.Staged[name]++
	}
	return nil
}

// Migrate bulk-writes the local record set to the remote store,
// local-wins. All staged writes commit as a single atomic batch; on
// failure no partial writes are visible. Intended as a one-time
// adopt-the-cloud operation but safe to re-run.
func (c *Coordinator) Migrate(ctx context.Context, partial *model.Partial) (*Result, error) {
	if partial == nil {
		return nil, &model.ValidationError{Reason: "nothing to migrate"}
	}

	result := newResult()
	batch := c.gateway.Batch()

	if err := c.stagePartial(batch, partial, nil, result); err != nil {
		return nil, err
	}
	if partial.Profile != nil {
		if err := batch.UpsertProfile(partial.Profile); err != nil {
			return nil, err
		}
	}

	if err := c.commit(ctx, "migrate", batch, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Import bulk-writes only the local records whose ids are absent from
// the remote store. Records already present remotely are never
// overwritten, even when the local copy differs, and an existing
// remote profile is left untouched. All staged writes commit as a
// single atomic batch.
func (c *Coordinator) Import(ctx context.Context, partial *model.Partial) (*Result, error) {
	if partial == nil {
		return nil, &model.ValidationError{Reason: "nothing to import"}
	}

	result := newResult()
	batch := c.gateway.Batch()

	existing := make(map[model.Kind]map[string]bool, len(model.Kinds))
	for _, kind := range model.Kinds {
		if !partial.Has(kind) {
			continue
		}
		ids, err := c.gateway.ExistingIDs(ctx, kind, c.fetchLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to read existing %s ids: %w", kind, err)
		}
		existing[kind] = ids
	}

	if err := c.stagePartialFiltered(batch, partial, existing, result); err != nil {
		return nil, err
	}
	if partial.Profile != nil {
		remoteProfile, err := c.gateway.FetchProfile(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read remote profile: %w", err)
		}
		if remoteProfile == nil {
			if err := batch.UpsertProfile(partial.Profile); err != nil {
				return nil, err
			}
		}
	}

	if err := c.commit(ctx, "import", batch, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Coordinator) stagePartial(batch *remote.Batch, partial *model.Partial, _ map[model.Kind]map[string]bool, result *Result) error {
	none := map[model.Kind]map[string]bool{}
	return c.stagePartialFiltered(batch, partial, none, result)
}

func (c *Coordinator) stagePartialFiltered(batch *remote.Batch, partial *model.Partial, existing map[model.Kind]map[string]bool, result *Result) error {
	if partial.Sales != nil {
		if err := stageAll(batch, model.KindSale, *partial.Sales, existing[model.KindSale], result); err != nil {
			return err
		}
	}
	if partial.Customers != nil {
		if err := stageAll(batch, model.KindCustomer, *partial.Customers, existing[model.KindCustomer], result); err != nil {
			return err
		}
	}
	if partial.Vehicles != nil {
		if err := stageAll(batch, model.KindVehicle, *partial.Vehicles, existing[model.KindVehicle], result); err != nil {
			return err
		}
	}
	if partial.Expenses != nil {
		if err := stageAll(batch, model.KindExpense, *partial.Expenses, existing[model.KindExpense], result); err != nil {
			return err
		}
	}
	if partial.Reminders != nil {
		if err := stageAll(batch, model.KindReminder, *partial.Reminders, existing[model.KindReminder], result); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) commit(ctx context.Context, operation string, batch *remote.Batch, result *Result) error {
	if err := batch.Commit(ctx); err != nil {
		batchesTotal.WithLabelValues(operation, "failure").Inc()
		return fmt.Errorf("%s failed: %w", operation, err)
	}
	batchesTotal.WithLabelValues(operation, "success").Inc()
	recordsStaged.WithLabelValues(operation).Add(float64(result.Total()))

	c.logger.Info("sync batch committed",
		"operation", operation,
		"staged", result.Total(),
		"collections", result.Staged)
	return nil
}
