package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"BillSync/internal/domain"
	"BillSync/internal/ports"
)

// WatermarkStore persists per-jurisdiction sync progress.
type WatermarkStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.WatermarkStore = (*WatermarkStore)(nil)

// NewWatermarkStore wires a migrated database.
func NewWatermarkStore(db *sql.DB, driver string) *WatermarkStore {
	return &WatermarkStore{db: db, sb: builderFor(driver)}
}

// Load returns the watermark of jurisdiction, if one was saved.
func (w *WatermarkStore) Load(ctx context.Context, jurisdiction string) (domain.Watermark, bool, error) {
	query, args, err := w.sb.Select("jurisdiction", "updated_at", "last_bill_id", "synced_at").
		From("sync_watermarks").
		Where(sq.Eq{"jurisdiction": strings.ToUpper(jurisdiction)}).
		ToSql()
	if err != nil {
		return domain.Watermark{}, false, fmt.Errorf("build load: %w", err)
	}

	var mark domain.Watermark
	err = w.db.QueryRowContext(ctx, query, args...).Scan(&mark.Jurisdiction, &mark.UpdatedAt, &mark.LastBillID, &mark.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Watermark{}, false, nil
	}
	if err != nil {
		return domain.Watermark{}, false, fmt.Errorf("load watermark %s: %w", jurisdiction, err)
	}
	mark.UpdatedAt = mark.UpdatedAt.UTC()
	mark.SyncedAt = mark.SyncedAt.UTC()
	return mark, true, nil
}

// Save upserts the watermark of mark.Jurisdiction.
func (w *WatermarkStore) Save(ctx context.Context, mark domain.Watermark) error {
	query, args, err := w.sb.Insert("sync_watermarks").
		Columns("jurisdiction", "updated_at", "last_bill_id", "synced_at").
		Values(strings.ToUpper(mark.Jurisdiction), mark.UpdatedAt.UTC(), mark.LastBillID, mark.SyncedAt.UTC()).
		Suffix("ON CONFLICT (jurisdiction) DO UPDATE SET updated_at = excluded.updated_at, last_bill_id = excluded.last_bill_id, synced_at = excluded.synced_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build save: %w", err)
	}
	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save watermark %s: %w", mark.Jurisdiction, err)
	}
	return nil
}
