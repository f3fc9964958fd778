package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/field-ledger/internal/operator"
	"github.com/carson-networks/field-ledger/internal/storage"
)

// mockRecordStore is a testify mock for storage.RecordStore.
type mockRecordStore struct {
	mock.Mock
}

func (m *mockRecordStore) Insert(ctx context.Context, record *storage.Transaction) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockRecordStore) FindByID(ctx context.Context, id uuid.UUID) (*storage.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Transaction), args.Error(1)
}

func (m *mockRecordStore) GetAll(ctx context.Context) ([]storage.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Transaction), args.Error(1)
}

func (m *mockRecordStore) PatchByID(ctx context.Context, id uuid.UUID, patch storage.RecordPatch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *mockRecordStore) CountByStatus(ctx context.Context, status storage.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(t *testing.T) (*LedgerService, *mockRecordStore) {
	t.Helper()
	records := new(mockRecordStore)
	op := operator.NewOperatorDelegator(records, 1)
	op.Start()
	t.Cleanup(op.Stop)
	return NewLedgerService(records, op), records
}

func validRecord() Record {
	return Record{
		Type:           storage.TypeDeposit,
		FullName:       "Awino Odhiambo",
		DocumentNumber: "CM-4471002",
		PhoneNumber:    "+254711000222",
		AmountMinor:    125050,
	}
}

func TestCreateRecord_Success(t *testing.T) {
	svc, records := newTestService(t)

	records.On("Insert", mock.Anything, mock.MatchedBy(func(tx *storage.Transaction) bool {
		return tx.FullName == "Awino Odhiambo" &&
			tx.AmountMinor == 125050 &&
			tx.Status == storage.StatusPending &&
			tx.SyncedAt == nil &&
			!tx.CreatedAt.IsZero()
	})).Return(nil)

	id, err := svc.CreateRecord(context.Background(), validRecord())
	require.NoError(t, err)
	assert.False(t, id.IsNil())
	records.AssertExpectations(t)
}

func TestCreateRecord_KeepsClientID(t *testing.T) {
	svc, records := newTestService(t)

	clientID := uuid.Must(uuid.NewV4())
	records.On("Insert", mock.Anything, mock.MatchedBy(func(tx *storage.Transaction) bool {
		return tx.ID == clientID
	})).Return(nil)

	record := validRecord()
	record.ID = clientID

	id, err := svc.CreateRecord(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, clientID, id)
}

func TestCreateRecord_DuplicateSurfaced(t *testing.T) {
	svc, records := newTestService(t)

	records.On("Insert", mock.Anything, mock.Anything).Return(storage.ErrAlreadyExists)

	_, err := svc.CreateRecord(context.Background(), validRecord())
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestCreateRecord_Validation(t *testing.T) {
	svc, records := newTestService(t)

	cases := map[string]func(*Record){
		"unknown type":    func(r *Record) { r.Type = "transfer" },
		"empty name":      func(r *Record) { r.FullName = "" },
		"empty document":  func(r *Record) { r.DocumentNumber = "" },
		"empty phone":     func(r *Record) { r.PhoneNumber = "" },
		"negative amount": func(r *Record) { r.AmountMinor = -1 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			record := validRecord()
			mutate(&record)
			_, err := svc.CreateRecord(context.Background(), record)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
	records.AssertNotCalled(t, "Insert")
}

func TestListRecords_NewestFirst(t *testing.T) {
	svc, records := newTestService(t)

	older := storage.Transaction{
		ID:        uuid.Must(uuid.NewV4()),
		CreatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	newer := storage.Transaction{
		ID:        uuid.Must(uuid.NewV4()),
		CreatedAt: time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
	}
	records.On("GetAll", mock.Anything).Return([]storage.Transaction{older, newer}, nil)

	listed, err := svc.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)
	assert.Equal(t, older.ID, listed[1].ID)
}

func TestListRecords_StorageError(t *testing.T) {
	svc, records := newTestService(t)

	storageErr := errors.New("disk gone")
	records.On("GetAll", mock.Anything).Return(nil, storageErr)

	_, err := svc.ListRecords(context.Background())
	assert.ErrorIs(t, err, storageErr)
}

func TestMinorUnitsFromString(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "125.50", want: 12550},
		{in: "0", want: 0},
		{in: "1000", want: 100000},
		{in: "0.01", want: 1},
		{in: "12.345", wantErr: true},
		{in: "-5.00", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := MinorUnitsFromString(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAmountDecimal(t *testing.T) {
	record := Record{AmountMinor: 12550}
	assert.Equal(t, "125.5", record.AmountDecimal().String())
}
