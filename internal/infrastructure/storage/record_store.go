package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"BillSync/internal/domain"
	"BillSync/internal/metrics"
	"BillSync/internal/ports"
)

// RecordStore keeps records as JSON documents in a SQL database. Key fields
// declared per collection are indexed in record_keys, whose primary key makes
// a second record with the same key fail instead of duplicating.
type RecordStore struct {
	db   *sql.DB
	sb   sq.StatementBuilderType
	keys map[string][]string
	now  func() time.Time
}

var _ ports.RecordStore = (*RecordStore)(nil)

// NewRecordStore wires a migrated database. keys maps a collection to the
// fields that identify its records.
func NewRecordStore(db *sql.DB, driver string, keys map[string][]string) *RecordStore {
	return &RecordStore{
		db:   db,
		sb:   builderFor(driver),
		keys: keys,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// FindByField returns the record whose field equals value. Key fields use the
// index; other fields fall back to scanning the collection.
func (s *RecordStore) FindByField(ctx context.Context, collection, field, value string) (domain.Record, bool, error) {
	rec, found, err := s.findByField(ctx, collection, field, value)
	metrics.StoreRequests.WithLabelValues("find", metrics.Outcome(err)).Inc()
	return rec, found, err
}

func (s *RecordStore) findByField(ctx context.Context, collection, field, value string) (domain.Record, bool, error) {
	if s.isKey(collection, field) {
		query, args, err := s.sb.Select("r.id", "r.fields").
			From("record_keys k").
			Join("records r ON r.id = k.record_id").
			Where(sq.Eq{"k.collection": collection, "k.field": field, "k.value": value}).
			Limit(1).
			ToSql()
		if err != nil {
			return domain.Record{}, false, fmt.Errorf("build find: %w", err)
		}

		var id, raw string
		err = s.db.QueryRowContext(ctx, query, args...).Scan(&id, &raw)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Record{}, false, nil
		}
		if err != nil {
			return domain.Record{}, false, fmt.Errorf("find by key: %w", err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return domain.Record{}, false, err
		}
		return domain.Record{ID: id, Fields: fields}, true, nil
	}

	query, args, err := s.sb.Select("id", "fields").
		From("records").
		Where(sq.Eq{"collection": collection}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("build scan: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("scan collection: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return domain.Record{}, false, fmt.Errorf("scan row: %w", err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return domain.Record{}, false, err
		}
		if v, ok := fields[field]; ok && fmt.Sprint(v) == value {
			return domain.Record{ID: id, Fields: fields}, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Record{}, false, fmt.Errorf("rows iteration: %w", err)
	}
	return domain.Record{}, false, nil
}

// Create inserts a record and its key index entries in one transaction.
func (s *RecordStore) Create(ctx context.Context, collection string, fields domain.Fields) (domain.Record, error) {
	rec, err := s.create(ctx, collection, fields)
	metrics.StoreRequests.WithLabelValues("create", metrics.Outcome(err)).Inc()
	return rec, err
}

func (s *RecordStore) create(ctx context.Context, collection string, fields domain.Fields) (domain.Record, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return domain.Record{}, fmt.Errorf("encode fields: %w", err)
	}

	id := newRecordID()
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Record{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := s.sb.Insert("records").
		Columns("id", "collection", "fields", "created_at", "updated_at").
		Values(id, collection, string(raw), now, now).
		ToSql()
	if err != nil {
		return domain.Record{}, fmt.Errorf("build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return domain.Record{}, fmt.Errorf("insert record: %w", err)
	}

	if err := s.indexKeys(ctx, tx, collection, id, fields); err != nil {
		return domain.Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Record{}, fmt.Errorf("commit: %w", err)
	}
	return domain.Record{ID: id, Fields: fields}, nil
}

// Update merges fields into the stored document; other fields are preserved.
func (s *RecordStore) Update(ctx context.Context, collection, id string, fields domain.Fields) (domain.Record, error) {
	rec, err := s.update(ctx, collection, id, fields)
	metrics.StoreRequests.WithLabelValues("update", metrics.Outcome(err)).Inc()
	return rec, err
}

func (s *RecordStore) update(ctx context.Context, collection, id string, fields domain.Fields) (domain.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Record{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := s.sb.Select("fields").
		From("records").
		Where(sq.Eq{"id": id, "collection": collection}).
		ToSql()
	if err != nil {
		return domain.Record{}, fmt.Errorf("build select: %w", err)
	}

	var raw string
	err = tx.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("load record: %w", err)
	}

	existing, err := decodeFields(raw)
	if err != nil {
		return domain.Record{}, err
	}
	merged := existing.Merge(fields)

	encoded, err := json.Marshal(merged)
	if err != nil {
		return domain.Record{}, fmt.Errorf("encode fields: %w", err)
	}

	query, args, err = s.sb.Update("records").
		Set("fields", string(encoded)).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Record{}, fmt.Errorf("build update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return domain.Record{}, fmt.Errorf("update record: %w", err)
	}

	if err := s.indexKeys(ctx, tx, collection, id, fields); err != nil {
		return domain.Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Record{}, fmt.Errorf("commit: %w", err)
	}
	return domain.Record{ID: id, Fields: merged}, nil
}

func (s *RecordStore) indexKeys(ctx context.Context, tx *sql.Tx, collection, id string, fields domain.Fields) error {
	for _, field := range s.keys[collection] {
		v, ok := fields[field]
		if !ok {
			continue
		}
		value := strings.TrimSpace(fmt.Sprint(v))
		if value == "" {
			continue
		}

		query, args, err := s.sb.Delete("record_keys").
			Where(sq.Eq{"record_id": id, "field": field}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build key delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear key %s: %w", field, err)
		}

		query, args, err = s.sb.Insert("record_keys").
			Columns("collection", "field", "value", "record_id").
			Values(collection, field, value, id).
			ToSql()
		if err != nil {
			return fmt.Errorf("build key insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("index key %s=%s: %w", field, value, err)
		}
	}
	return nil
}

func (s *RecordStore) isKey(collection, field string) bool {
	for _, k := range s.keys[collection] {
		if k == field {
			return true
		}
	}
	return false
}

// Count returns the number of records in collection.
func (s *RecordStore) Count(ctx context.Context, collection string) (int, error) {
	query, args, err := s.sb.Select("COUNT(*)").From("records").Where(sq.Eq{"collection": collection}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func decodeFields(raw string) (domain.Fields, error) {
	fields := domain.Fields{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}

func newRecordID() string {
	return "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}
