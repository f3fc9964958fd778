package actions

import (
	"context"

	"github.com/carson-networks/field-ledger/internal/storage"
)

type IAction interface {
	Perform(ctx context.Context, records storage.RecordStore) error
}
