package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/field-ledger/internal/operator"
	"github.com/carson-networks/field-ledger/internal/operator/actions"
	"github.com/carson-networks/field-ledger/internal/storage"
)

// ErrInvalidRecord wraps all input validation failures.
var ErrInvalidRecord = errors.New("invalid record")

// LedgerService handles transaction record business logic.
type LedgerService struct {
	records  storage.RecordStore
	operator *operator.OperatorDelegator
	now      func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(records storage.RecordStore, op *operator.OperatorDelegator) *LedgerService {
	return &LedgerService{
		records:  records,
		operator: op,
		now:      time.Now,
	}
}

// CreateRecord validates and persists a new pending record, returning its id.
// A zero id gets a generated one; created_at is always assigned here. The
// write is durable when CreateRecord returns.
func (s *LedgerService) CreateRecord(ctx context.Context, record Record) (uuid.UUID, error) {
	if err := validateRecord(record); err != nil {
		return uuid.Nil, err
	}

	id := record.ID
	if id.IsNil() {
		id = uuid.Must(uuid.NewV4())
	}

	stored := &storage.Transaction{
		ID:             id,
		Type:           record.Type,
		FullName:       record.FullName,
		DocumentNumber: record.DocumentNumber,
		PhoneNumber:    record.PhoneNumber,
		AmountMinor:    record.AmountMinor,
		Status:         storage.StatusPending,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.operator.Process(ctx, &actions.InsertRecord{Record: stored}); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ListRecords returns every record, newest first. The slice is a read-through
// snapshot of the store, not a live view; callers re-list after any mutation.
func (s *LedgerService) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.records.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	converted := make([]Record, len(rows))
	for i, row := range rows {
		converted[i] = Record{
			ID:             row.ID,
			Type:           row.Type,
			FullName:       row.FullName,
			DocumentNumber: row.DocumentNumber,
			PhoneNumber:    row.PhoneNumber,
			AmountMinor:    row.AmountMinor,
			Status:         row.Status,
			CreatedAt:      row.CreatedAt,
			SyncedAt:       row.SyncedAt,
		}
	}

	// The store makes no ordering promise; newest-first lives here.
	sort.Slice(converted, func(i, j int) bool {
		return converted[i].CreatedAt.After(converted[j].CreatedAt)
	})
	return converted, nil
}

// PendingCount reports the number of records not yet acknowledged remotely.
func (s *LedgerService) PendingCount(ctx context.Context) (int64, error) {
	return s.records.CountByStatus(ctx, storage.StatusPending)
}

func validateRecord(record Record) error {
	if record.Type != storage.TypeDeposit && record.Type != storage.TypeWithdrawal {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRecord, record.Type)
	}
	if record.FullName == "" {
		return fmt.Errorf("%w: full name is empty", ErrInvalidRecord)
	}
	if record.DocumentNumber == "" {
		return fmt.Errorf("%w: document number is empty", ErrInvalidRecord)
	}
	if record.PhoneNumber == "" {
		return fmt.Errorf("%w: phone number is empty", ErrInvalidRecord)
	}
	if record.AmountMinor < 0 {
		return fmt.Errorf("%w: amount is negative", ErrInvalidRecord)
	}
	return nil
}
