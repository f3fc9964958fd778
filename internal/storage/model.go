package storage

import (
	"context"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
)

// TransactionType is the direction of a mobile-money transaction.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
)

// Status is a record's lifecycle state with respect to remote acknowledgment.
// Transitions only pending -> synced, never back.
type Status string

const (
	StatusPending Status = "pending"
	StatusSynced  Status = "synced"
)

// Transaction is the persisted record shape. Amounts are fixed-point minor
// units (cents); this is the storage and sync-payload contract.
type Transaction struct {
	ID             uuid.UUID
	Type           TransactionType
	FullName       string
	DocumentNumber string
	PhoneNumber    string
	AmountMinor    int64
	Status         Status
	CreatedAt      time.Time
	SyncedAt       *time.Time
}

// RecordPatch is the field mask accepted by PatchByID. Unset fields keep the
// stored value; the merged record is written whole, last write wins.
type RecordPatch struct {
	Status   omit.Val[Status]
	SyncedAt omit.Val[time.Time]
}

// RecordStore defines the interface for transaction record storage.
// This abstraction allows swapping the implementation without changing callers.
type RecordStore interface {
	Insert(ctx context.Context, record *Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetAll(ctx context.Context) ([]Transaction, error)
	PatchByID(ctx context.Context, id uuid.UUID, patch RecordPatch) error
	CountByStatus(ctx context.Context, status Status) (int64, error)
}
