package actions

import (
	"context"

	"github.com/carson-networks/field-ledger/internal/storage"
)

// InsertRecord persists a new transaction record. The record is complete when
// it reaches the queue; the action is a plain durable write.
type InsertRecord struct {
	Record *storage.Transaction
}

func (a *InsertRecord) Perform(ctx context.Context, records storage.RecordStore) error {
	return records.Insert(ctx, a.Record)
}
