package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/sqlite"
	"github.com/stephenafamo/bob/dialect/sqlite/im"
	"github.com/stephenafamo/bob/dialect/sqlite/sm"
	"github.com/stephenafamo/bob/dialect/sqlite/um"
	"github.com/stephenafamo/scan"
)

var _ RecordStore = (*RecordsTable)(nil)

const recordsTableName = "transactions"

var recordColumns = []string{
	"id", "type", "full_name", "document_number", "phone_number",
	"amount_minor", "status", "created_at", "synced_at",
}

// RecordsTable implements RecordStore on the transactions table.
type RecordsTable struct {
	exec bob.Executor
}

func NewRecordsTable(db *sql.DB) *RecordsTable {
	return &RecordsTable{exec: bob.NewDB(db)}
}

// transactionRow is the scan target for the transactions table.
type transactionRow struct {
	ID             string       `db:"id"`
	Type           string       `db:"type"`
	FullName       string       `db:"full_name"`
	DocumentNumber string       `db:"document_number"`
	PhoneNumber    string       `db:"phone_number"`
	AmountMinor    int64        `db:"amount_minor"`
	Status         string       `db:"status"`
	CreatedAt      time.Time    `db:"created_at"`
	SyncedAt       sql.NullTime `db:"synced_at"`
}

// Insert persists a new record. The write is durable when Insert returns.
// A colliding id fails with ErrAlreadyExists and leaves the table unchanged.
func (t *RecordsTable) Insert(ctx context.Context, record *Transaction) error {
	var syncedAt any
	if record.SyncedAt != nil {
		syncedAt = record.SyncedAt.UTC()
	}

	q := sqlite.Insert(
		im.Into(recordsTableName, recordColumns...),
		im.Values(sqlite.Arg(
			record.ID.String(),
			string(record.Type),
			record.FullName,
			record.DocumentNumber,
			record.PhoneNumber,
			record.AmountMinor,
			string(record.Status),
			record.CreatedAt.UTC(),
			syncedAt,
		)),
	)

	_, err := bob.Exec(ctx, t.exec, q)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("insert %s: %w", record.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// FindByID retrieves a record by primary key, ErrNotFound when absent.
func (t *RecordsTable) FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	q := sqlite.Select(
		sm.Columns(toAnySlice(recordColumns)...),
		sm.From(recordsTableName),
		sm.Where(sqlite.Quote("id").EQ(sqlite.Arg(id.String()))),
	)

	row, err := bob.One(ctx, t.exec, q, scan.StructMapper[transactionRow]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	return rowToTransaction(row)
}

// GetAll returns every record. No ordering is guaranteed; sorting is the
// caller's concern.
func (t *RecordsTable) GetAll(ctx context.Context) ([]Transaction, error) {
	q := sqlite.Select(
		sm.Columns(toAnySlice(recordColumns)...),
		sm.From(recordsTableName),
	)

	rows, err := bob.All(ctx, t.exec, q, scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	result := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		record, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	return result, nil
}

// PatchByID merges the set fields of patch into the stored record and writes
// the merged record back whole. Concurrent patches to the same id race with
// last-write-wins semantics on the full record.
func (t *RecordsTable) PatchByID(ctx context.Context, id uuid.UUID, patch RecordPatch) error {
	existing, err := t.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if patch.Status.IsValue() {
		existing.Status = patch.Status.MustGet()
	}
	if patch.SyncedAt.IsValue() {
		syncedAt := patch.SyncedAt.MustGet().UTC()
		existing.SyncedAt = &syncedAt
	}

	var syncedAt any
	if existing.SyncedAt != nil {
		syncedAt = existing.SyncedAt.UTC()
	}

	q := sqlite.Update(
		um.Table(recordsTableName),
		um.SetCol("type").ToArg(string(existing.Type)),
		um.SetCol("full_name").ToArg(existing.FullName),
		um.SetCol("document_number").ToArg(existing.DocumentNumber),
		um.SetCol("phone_number").ToArg(existing.PhoneNumber),
		um.SetCol("amount_minor").ToArg(existing.AmountMinor),
		um.SetCol("status").ToArg(string(existing.Status)),
		um.SetCol("created_at").ToArg(existing.CreatedAt.UTC()),
		um.SetCol("synced_at").ToArg(syncedAt),
		um.Where(sqlite.Quote("id").EQ(sqlite.Arg(id.String()))),
	)

	if _, err := bob.Exec(ctx, t.exec, q); err != nil {
		return fmt.Errorf("patch record: %w", err)
	}
	return nil
}

// CountByStatus reports how many records are in the given status. Served by
// the secondary status index.
func (t *RecordsTable) CountByStatus(ctx context.Context, status Status) (int64, error) {
	q := sqlite.Select(
		sm.Columns(sqlite.Raw("count(*)")),
		sm.From(recordsTableName),
		sm.Where(sqlite.Quote("status").EQ(sqlite.Arg(string(status)))),
	)

	count, err := bob.One(ctx, t.exec, q, scan.SingleColumnMapper[int64])
	if err != nil {
		return 0, fmt.Errorf("count by status: %w", err)
	}
	return count, nil
}

func rowToTransaction(row transactionRow) (*Transaction, error) {
	id, err := uuid.FromString(row.ID)
	if err != nil {
		return nil, fmt.Errorf("stored id %q: %w", row.ID, err)
	}

	record := &Transaction{
		ID:             id,
		Type:           TransactionType(row.Type),
		FullName:       row.FullName,
		DocumentNumber: row.DocumentNumber,
		PhoneNumber:    row.PhoneNumber,
		AmountMinor:    row.AmountMinor,
		Status:         Status(row.Status),
		CreatedAt:      row.CreatedAt,
	}
	if row.SyncedAt.Valid {
		syncedAt := row.SyncedAt.Time
		record.SyncedAt = &syncedAt
	}
	return record, nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
