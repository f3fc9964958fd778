package actions

import (
	"context"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/field-ledger/internal/storage"
)

// MarkSynced flips a record to synced after the remote authority accepted it.
// Status and synced_at are set together; the patch is the only mutation a
// record ever receives.
type MarkSynced struct {
	ID       uuid.UUID
	SyncedAt time.Time
}

func (a *MarkSynced) Perform(ctx context.Context, records storage.RecordStore) error {
	return records.PatchByID(ctx, a.ID, storage.RecordPatch{
		Status:   omit.From(storage.StatusSynced),
		SyncedAt: omit.From(a.SyncedAt),
	})
}
