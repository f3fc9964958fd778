package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/field-ledger/internal/operator"
	"github.com/carson-networks/field-ledger/internal/operator/actions"
	"github.com/carson-networks/field-ledger/internal/storage"
)

// ErrSyncInFlight is returned when Trigger is called while a cycle is already
// running. The call is dropped, not queued; a later trigger retries.
var ErrSyncInFlight = errors.New("sync cycle already in flight")

// Engine reconciles pending local records with the remote authority.
type Engine struct {
	records   storage.RecordStore
	operator  *operator.OperatorDelegator
	transport Transport
	logger    *logrus.Logger
	inFlight  atomic.Bool
	now       func() time.Time
}

func NewEngine(records storage.RecordStore, op *operator.OperatorDelegator, transport Transport, logger *logrus.Logger) *Engine {
	return &Engine{
		records:   records,
		operator:  op,
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
}

// Trigger runs one reconciliation cycle: read pending records, submit them as
// a single batch, and mark exactly the accepted ids synced. Records the
// remote did not accept stay pending and ride the next trigger.
//
// A transport failure aborts the cycle with nothing mutated; it is never
// fatal to the store or to future cycles.
func (e *Engine) Trigger(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInFlight
	}
	defer e.inFlight.Store(false)

	all, err := e.records.GetAll(ctx)
	if err != nil {
		e.logger.WithError(err).Error("SyncEngine.Trigger.read")
		return err
	}

	pending := make([]storage.Transaction, 0, len(all))
	for _, record := range all {
		if record.Status == storage.StatusPending {
			pending = append(pending, record)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	result, err := e.transport.Submit(ctx, pending)
	if err != nil {
		e.logger.WithError(err).WithField("pending", len(pending)).
			Warn("SyncEngine.Trigger.submit failed, will retry")
		return err
	}

	syncedAt := e.now().UTC()
	for _, id := range result.Accepted {
		if err := e.operator.Process(ctx, &actions.MarkSynced{ID: id, SyncedAt: syncedAt}); err != nil {
			e.logger.WithError(err).WithField("id", id).Error("SyncEngine.Trigger.markSynced")
			return err
		}
	}

	e.logger.WithFields(logrus.Fields{
		"submitted": len(pending),
		"accepted":  len(result.Accepted),
	}).Info("SyncEngine.Trigger.cycle complete")
	return nil
}
