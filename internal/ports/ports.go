package ports

import (
	"context"
	"time"

	"BillSync/internal/domain"
)

// BillQuery filters a bill listing.
type BillQuery struct {
	Jurisdiction string
	Limit        int
	UpdatedSince time.Time
}

// LegislativeSource pulls bills, people and jurisdictions from the upstream API.
type LegislativeSource interface {
	ListBills(ctx context.Context, q BillQuery) ([]domain.Bill, error)
	PeopleDetails(ctx context.Context, ids []string) (map[string]domain.Legislator, error)
	Jurisdiction(ctx context.Context, abbr string) (domain.Jurisdiction, error)
}

// RecordStore is the relational spreadsheet-style store bills are mapped into.
type RecordStore interface {
	FindByField(ctx context.Context, collection, field, value string) (domain.Record, bool, error)
	Create(ctx context.Context, collection string, fields domain.Fields) (domain.Record, error)
	Update(ctx context.Context, collection, id string, fields domain.Fields) (domain.Record, error)
}

// Reconciler binds an external key to a record id by find-or-create.
type Reconciler interface {
	Reconcile(ctx context.Context, collection, keyField, keyValue string, fields domain.Fields) (string, error)
}

// WatermarkStore persists per-jurisdiction sync progress.
type WatermarkStore interface {
	Load(ctx context.Context, jurisdiction string) (domain.Watermark, bool, error)
	Save(ctx context.Context, mark domain.Watermark) error
}

// Scheduler controls when scheduled syncs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
