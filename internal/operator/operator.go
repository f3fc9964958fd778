package operator

import (
	"context"

	"github.com/carson-networks/field-ledger/internal/operator/actions"
	"github.com/carson-networks/field-ledger/internal/storage"
)

// Operator is the worker that performs queued store actions.
type Operator struct {
	records storage.RecordStore
	queue   chan ActionItem
}

func NewOperator(records storage.RecordStore, queue chan ActionItem) *Operator {
	return &Operator{
		records: records,
		queue:   queue,
	}
}

// Run listens to the queue and performs items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		item.response <- ActionItemResponse{err: item.action.Perform(item.ctx, o.records)}
	}
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
