package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"BillSync/internal/domain"
	"BillSync/internal/ports"
	"BillSync/internal/reconcile"
)

type memStore struct {
	mu      sync.Mutex
	records map[string][]domain.Record
	next    int
	// failKey makes Create and Update fail for records carrying this value.
	failKey string
}

func newMemStore() *memStore {
	return &memStore{records: map[string][]domain.Record{}}
}

func (m *memStore) FindByField(_ context.Context, collection, field, value string) (domain.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	if m.failing(fields) {
		return domain.Record{}, errors.New("store unavailable")
	}
	m.next++
	rec := domain.Record{ID: fmt.Sprintf("rec%03d", m.next), Fields: domain.Fields{}.Merge(fields)}
	m.records[collection] = append(m.records[collection], rec)
	return rec, nil
}

func (m *memStore) Update(_ context.Context, collection, id string, fields domain.Fields) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing(fields) {
		return domain.Record{}, errors.New("store unavailable")
	}
	for i, rec := range m.records[collection] {
		if rec.ID == id {
			m.records[collection][i].Fields = rec.Fields.Merge(fields)
			return m.records[collection][i], nil
		}
	}
	return domain.Record{}, domain.ErrNotFound
}

func (m *memStore) failing(fields domain.Fields) bool {
	if m.failKey == "" {
		return false
	}
	for _, v := range fields {
		if s, ok := v.(string); ok && s == m.failKey {
			return true
		}
	}
	return false
}

func (m *memStore) all(collection string) []domain.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Record(nil), m.records[collection]...)
}

func (m *memStore) find(collection, field, value string) (domain.Record, bool) {
	rec, ok, _ := m.FindByField(context.Background(), collection, field, value)
	return rec, ok
}

type fakeSource struct {
	mu            sync.Mutex
	bills         map[string][]domain.Bill
	people        map[string]domain.Legislator
	peopleErr     error
	jurisdictions map[string]domain.Jurisdiction
	failStates    map[string]bool
	queries       []ports.BillQuery
	peopleCalls   int

	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeSource) ListBills(_ context.Context, q ports.BillQuery) ([]domain.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	bills := f.bills[q.Jurisdiction]
	if q.Limit > 0 && len(bills) > q.Limit {
		bills = bills[:q.Limit]
	}
	return bills, nil
}

func (f *fakeSource) PeopleDetails(_ context.Context, ids []string) (map[string]domain.Legislator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.peopleCalls++
	if f.peopleErr != nil {
		return nil, f.peopleErr
	}
	out := make(map[string]domain.Legislator, len(ids))
	for _, id := range ids {
		if p, ok := f.people[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeSource) Jurisdiction(_ context.Context, abbr string) (domain.Jurisdiction, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStates[abbr] {
		return domain.Jurisdiction{}, &domain.SourceAPIError{Status: 404, Body: "not found"}
	}
	if j, ok := f.jurisdictions[abbr]; ok {
		return j, nil
	}
	return domain.Jurisdiction{
		ID:       fmt.Sprintf("ocd-jurisdiction/country:us/state:%s/government", abbr),
		Name:     "State " + abbr,
		Chambers: 2,
	}, nil
}

func (f *fakeSource) lastQuery() ports.BillQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type memWatermarks struct {
	mu    sync.Mutex
	marks map[string]domain.Watermark
	saves int
}

func newMemWatermarks() *memWatermarks {
	return &memWatermarks{marks: map[string]domain.Watermark{}}
}

func (w *memWatermarks) Load(_ context.Context, jurisdiction string) (domain.Watermark, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	mark, ok := w.marks[jurisdiction]
	return mark, ok, nil
}

func (w *memWatermarks) Save(_ context.Context, mark domain.Watermark) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saves++
	w.marks[mark.Jurisdiction] = mark
	return nil
}

func newTestPipeline(source *fakeSource, store *memStore, marks ports.WatermarkStore, opts Options) *Pipeline {
	return NewPipeline(PipelineDeps{
		Source:     source,
		Reconciler: reconcile.New(store, nil),
		Watermarks: marks,
		Options:    opts,
	})
}

var baseTime = time.Date(2025, 2, 19, 5, 0, 0, 0, time.UTC)

func makeBills(state string, n int, sponsorsPerBill int, subjects ...string) []domain.Bill {
	bills := make([]domain.Bill, n)
	for i := range bills {
		sponsors := make([]domain.PersonStub, sponsorsPerBill)
		for j := range sponsors {
			sponsors[j] = domain.PersonStub{
				ID:      fmt.Sprintf("ocd-person/%s-%d-%d", state, i, j),
				Name:    fmt.Sprintf("Member %d-%d", i, j),
				Party:   "Democratic",
				Chamber: "lower",
			}
		}
		bills[i] = domain.Bill{
			ID:               fmt.Sprintf("ocd-bill/%s-%d", state, i),
			Identifier:       fmt.Sprintf("AB %d", i+1),
			Title:            fmt.Sprintf("Bill %d", i+1),
			Abstract:         "<p>An act relating to <b>things</b>.</p>",
			Session:          "20252026",
			Jurisdiction:     strings.ToUpper(state),
			Classification:   []string{"bill"},
			Subjects:         subjects,
			OriginChamber:    "lower",
			LatestAction:     "Referred to Committee on Health",
			LatestActionDate: "2025-02-19T05:00:00+00:00",
			FirstActionDate:  "2025-01-10",
			UpdatedAt:        baseTime.Add(time.Duration(i) * time.Hour),
			Sponsors:         sponsors,
		}
	}
	return bills
}
