package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mvaghela/bizbook/internal/model"
)

// Batch stages document writes for a single atomic commit. Staging
// performs no I/O; Commit runs every staged write inside one
// transaction, so either every write lands or none do. The atomicity
// guarantee is the database's own; there is no two-phase commit here.
type Batch struct {
	gateway *Gateway
	writes  []stagedWrite
}

type stagedWrite struct {
	collection string
	key        string
	doc        string
	keyColumn  string
}

// Batch starts an empty write batch against the gateway.
func (g *Gateway) Batch() *Batch {
	return &Batch{gateway: g}
}

// Upsert stages a field-merging upsert of record at id.
func (b *Batch) Upsert(kind model.Kind, id string, record any) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record %s: %w", kind, id, err)
	}
	b.writes = append(b.writes, stagedWrite{
		collection: kind.Collection(),
		key:        id,
		doc:        string(doc),
		keyColumn:  "id",
	})
	return nil
}

// UpsertProfile stages a write of the singleton profile document.
func (b *Batch) UpsertProfile(profile *model.Profile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	b.writes = append(b.writes, stagedWrite{
		collection: model.ProfileCollection,
		key:        model.ProfileKey,
		doc:        string(doc),
		keyColumn:  "key",
	})
	return nil
}

// Len reports the number of staged writes.
func (b *Batch) Len() int { return len(b.writes) }

// Commit applies every staged write in one transaction. On any failure
// the transaction is rolled back and no partial effect is visible.
func (b *Batch) Commit(ctx context.Context) error {
	if len(b.writes) == 0 {
		return nil
	}

	tx, err := b.gateway.conn.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("failed to begin batch: %w", err))
	}
	defer tx.Rollback()

	for _, w := range b.writes {
		query := fmt.Sprintf(`
		INSERT INTO %s (%s, doc) VALUES (?, ?)
		ON CONFLICT(%s) DO UPDATE SET doc = json_patch(doc, excluded.doc)
		`, w.collection, w.keyColumn, w.keyColumn)
		if _, err := tx.ExecContext(ctx, query, w.key, w.doc); err != nil {
			return classify(fmt.Errorf("batch write %s/%s failed: %w", w.collection, w.key, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("failed to commit batch: %w", err))
	}
	return nil
}
