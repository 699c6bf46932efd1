// Package reconcile binds external identifiers to record store ids through a
// find-or-create upsert. It is the only place a record id is obtained for an
// external key.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"BillSync/internal/domain"
	"BillSync/internal/logging"
	"BillSync/internal/metrics"
	"BillSync/internal/ports"
)

const stripeCount = 64

// Reconciler upserts records by a natural key. Calls for the same collection
// and key are serialized within the process; the store offers no atomic
// find-or-create, so separate processes can still race.
type Reconciler struct {
	store   ports.RecordStore
	stripes [stripeCount]sync.Mutex
	logger  *slog.Logger
}

var _ ports.Reconciler = (*Reconciler)(nil)

// New wires a record store.
func New(store ports.RecordStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logging.OrDiscard(logger)}
}

// Reconcile finds the record whose keyField equals keyValue and applies a
// partial update of fields, or creates it with fields plus the key. It returns
// the internal record id.
func (r *Reconciler) Reconcile(ctx context.Context, collection, keyField, keyValue string, fields domain.Fields) (string, error) {
	if keyValue == "" {
		return "", &domain.StoreError{Op: "reconcile", Collection: collection, Err: fmt.Errorf("empty key for %s", keyField)}
	}

	mu := r.stripe(collection, keyField, keyValue)
	mu.Lock()
	defer mu.Unlock()

	payload := fields.Merge(domain.Fields{keyField: keyValue})

	existing, found, err := r.store.FindByField(ctx, collection, keyField, keyValue)
	if err != nil {
		return "", asStoreError("find", collection, err)
	}

	if found {
		if _, err := r.store.Update(ctx, collection, existing.ID, payload); err != nil {
			return "", asStoreError("update", collection, err)
		}
		metrics.RecordsReconciled.WithLabelValues(collection, "updated").Inc()
		r.logger.Debug("record updated", "collection", collection, "key", keyValue, "record_id", existing.ID)
		return existing.ID, nil
	}

	created, err := r.store.Create(ctx, collection, payload)
	if err != nil {
		return "", asStoreError("create", collection, err)
	}
	metrics.RecordsReconciled.WithLabelValues(collection, "created").Inc()
	r.logger.Debug("record created", "collection", collection, "key", keyValue, "record_id", created.ID)
	return created.ID, nil
}

func (r *Reconciler) stripe(collection, keyField, keyValue string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(collection))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(keyField))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(keyValue))
	return &r.stripes[h.Sum32()%stripeCount]
}

func asStoreError(op, collection string, err error) error {
	var se *domain.StoreError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StoreError{Op: op, Collection: collection, Err: err}
}
