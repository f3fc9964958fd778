package operator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/field-ledger/internal/operator/actions"
	"github.com/carson-networks/field-ledger/internal/storage"
)

// recordingStore counts writes without a real database and tracks whether
// two Perform calls ever overlap.
type recordingStore struct {
	mu         sync.Mutex
	inserts    int
	inCall     bool
	overlapped bool
	insertErr  error
}

func (s *recordingStore) Insert(ctx context.Context, record *storage.Transaction) error {
	s.mu.Lock()
	if s.inCall {
		s.overlapped = true
	}
	s.inCall = true
	s.inserts++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inCall = false
		s.mu.Unlock()
	}()
	return s.insertErr
}

func (s *recordingStore) FindByID(ctx context.Context, id uuid.UUID) (*storage.Transaction, error) {
	return nil, storage.ErrNotFound
}

func (s *recordingStore) GetAll(ctx context.Context) ([]storage.Transaction, error) {
	return nil, nil
}

func (s *recordingStore) PatchByID(ctx context.Context, id uuid.UUID, patch storage.RecordPatch) error {
	return nil
}

func (s *recordingStore) CountByStatus(ctx context.Context, status storage.Status) (int64, error) {
	return 0, nil
}

func newRecord() *storage.Transaction {
	return &storage.Transaction{ID: uuid.Must(uuid.NewV4())}
}

func TestProcess_PerformsAction(t *testing.T) {
	store := &recordingStore{}
	delegator := NewOperatorDelegator(store, 1)
	delegator.Start()
	defer delegator.Stop()

	err := delegator.Process(context.Background(), &actions.InsertRecord{Record: newRecord()})
	require.NoError(t, err)
	assert.Equal(t, 1, store.inserts)
}

func TestProcess_SurfacesActionError(t *testing.T) {
	store := &recordingStore{insertErr: errors.New("disk full")}
	delegator := NewOperatorDelegator(store, 1)
	delegator.Start()
	defer delegator.Stop()

	err := delegator.Process(context.Background(), &actions.InsertRecord{Record: newRecord()})
	assert.EqualError(t, err, "disk full")
}

func TestSingleWorkerSerializesWrites(t *testing.T) {
	store := &recordingStore{}
	delegator := NewOperatorDelegator(store, 1)
	delegator.Start()
	defer delegator.Stop()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = delegator.Process(context.Background(), &actions.InsertRecord{Record: newRecord()})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, store.inserts)
	assert.False(t, store.overlapped)
}

func TestStopIsIdempotent(t *testing.T) {
	delegator := NewOperatorDelegator(&recordingStore{}, 1)
	delegator.Start()
	delegator.Stop()
	delegator.Stop()
}
