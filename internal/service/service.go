package service

import (
	"github.com/carson-networks/field-ledger/internal/operator"
	"github.com/carson-networks/field-ledger/internal/storage"
)

// Service holds all business logic services.
type Service struct {
	Ledger *LedgerService
}

// NewService creates a new Service. Reads go straight to the record store;
// writes are funneled through the operator queue.
func NewService(records storage.RecordStore, op *operator.OperatorDelegator) *Service {
	return &Service{
		Ledger: NewLedgerService(records, op),
	}
}
