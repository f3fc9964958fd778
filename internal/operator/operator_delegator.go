package operator

import (
	"context"
	"sync"

	"github.com/carson-networks/field-ledger/internal/operator/actions"
	"github.com/carson-networks/field-ledger/internal/storage"
)

// OperatorDelegator manages the queue, starts/stops Operators (workers), and
// enqueues items. All store mutations go through it, so dependent writes are
// serialized explicitly instead of racing through the driver.
type OperatorDelegator struct {
	records    storage.RecordStore
	queue      chan ActionItem
	numWorkers int
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// NewOperatorDelegator creates a delegator over the record store. One worker
// keeps writes strictly ordered; more workers trade ordering for throughput.
func NewOperatorDelegator(records storage.RecordStore, numWorkers int) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &OperatorDelegator{
		records:    records,
		queue:      make(chan ActionItem, 1000),
		numWorkers: numWorkers,
	}
}

func (d *OperatorDelegator) Start() {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		op := NewOperator(d.records, d.queue)
		go func() {
			defer d.wg.Done()
			op.Run()
		}()
	}
}

func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
		d.wg.Wait()
	})
}

// Process enqueues the action and blocks until it has been performed or the
// context is done.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	d.queue <- item

	select {
	case resp := <-respCh:
		return resp.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
