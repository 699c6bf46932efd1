package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BillSync/internal/domain"
)

// memStore locks find and create separately, so racing reconcilers would
// duplicate records without the stripe locks.
type memStore struct {
	mu      sync.Mutex
	records map[string][]domain.Record
	next    int
	creates int
	updates int
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{records: map[string][]domain.Record{}}
}

func (m *memStore) FindByField(_ context.Context, collection, field, value string) (domain.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "find" {
		return domain.Record{}, false, errors.New("boom")
	}
	for _, rec := range m.records[collection] {
		if fmt.Sprint(rec.Fields[field]) == value {
			return rec, true, nil
		}
	}
	return domain.Record{}, false, nil
}

func (m *memStore) Create(_ context.Context, collection string, fields domain.Fields) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "create" {
		return domain.Record{}, errors.New("boom")
	}
	m.next++
	m.creates++
	rec := domain.Record{ID: fmt.Sprintf("rec%d", m.next), Fields: fields}
	m.records[collection] = append(m.records[collection], rec)
	return rec, nil
}

func (m *memStore) Update(_ context.Context, collection, id string, fields domain.Fields) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	for i, rec := range m.records[collection] {
		if rec.ID == id {
			m.records[collection][i].Fields = rec.Fields.Merge(fields)
			return m.records[collection][i], nil
		}
	}
	return domain.Record{}, domain.ErrNotFound
}

func TestReconcileCreatesThenUpdates(t *testing.T) {
	store := newMemStore()
	r := New(store, nil)
	ctx := context.Background()

	id1, err := r.Reconcile(ctx, "Bills", "Bill ID", "ocd-bill/1", domain.Fields{"Title": "First"})
	require.NoError(t, err)
	id2, err := r.Reconcile(ctx, "Bills", "Bill ID", "ocd-bill/1", domain.Fields{"Title": "Second"})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 1, store.updates)
	require.Len(t, store.records["Bills"], 1)
	assert.Equal(t, "Second", store.records["Bills"][0].Fields["Title"])
	assert.Equal(t, "ocd-bill/1", store.records["Bills"][0].Fields["Bill ID"])
}

func TestReconcileKeepsUnmappedFields(t *testing.T) {
	store := newMemStore()
	r := New(store, nil)
	ctx := context.Background()

	_, err := r.Reconcile(ctx, "Legislators", "OpenStates ID", "p1", domain.Fields{"Name": "A"})
	require.NoError(t, err)
	store.records["Legislators"][0].Fields["Editor Notes"] = "keep me"

	_, err = r.Reconcile(ctx, "Legislators", "OpenStates ID", "p1", domain.Fields{"Name": "B"})
	require.NoError(t, err)
	assert.Equal(t, "keep me", store.records["Legislators"][0].Fields["Editor Notes"])
}

func TestReconcileConcurrentSameKey(t *testing.T) {
	store := newMemStore()
	r := New(store, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := r.Reconcile(ctx, "Subjects", "Name", "Public Safety", domain.Fields{"Category": "Justice"})
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.creates)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestReconcileErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty key", func(t *testing.T) {
		r := New(newMemStore(), nil)
		_, err := r.Reconcile(ctx, "Bills", "Bill ID", "", nil)
		var storeErr *domain.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "reconcile", storeErr.Op)
	})

	for _, op := range []string{"find", "create"} {
		t.Run(op, func(t *testing.T) {
			store := newMemStore()
			store.failOn = op
			r := New(store, nil)
			_, err := r.Reconcile(ctx, "Bills", "Bill ID", "x", nil)
			var storeErr *domain.StoreError
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, op, storeErr.Op)
			assert.Equal(t, "Bills", storeErr.Collection)
		})
	}
}
