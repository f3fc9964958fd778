package record

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/field-ledger/internal/service"
	"github.com/carson-networks/field-ledger/internal/storage"
)

type mockRecordLister struct {
	mock.Mock
}

func (m *mockRecordLister) ListRecords(ctx context.Context) ([]service.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.Record), args.Error(1)
}

func newListTestAPI(t *testing.T, svc recordLister) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewListRecordsHandler(svc).Register(api)
	return api
}

func TestHTTP_ListRecords_Success(t *testing.T) {
	syncedAt := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)
	records := []service.Record{
		{
			ID:             uuid.Must(uuid.NewV4()),
			Type:           storage.TypeWithdrawal,
			FullName:       "Awino Odhiambo",
			DocumentNumber: "CM-4471002",
			PhoneNumber:    "+254711000222",
			AmountMinor:    12550,
			Status:         storage.StatusSynced,
			CreatedAt:      time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
			SyncedAt:       &syncedAt,
		},
		{
			ID:          uuid.Must(uuid.NewV4()),
			Type:        storage.TypeDeposit,
			FullName:    "Baraka Mwangi",
			AmountMinor: 500,
			Status:      storage.StatusPending,
			CreatedAt:   time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC),
		},
	}

	mockSvc := new(mockRecordLister)
	mockSvc.On("ListRecords", mock.Anything).Return(records, nil)

	resp := newListTestAPI(t, mockSvc).Get("/v1/records")
	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Records []RecordResponse `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Records, 2)

	assert.Equal(t, records[0].ID.String(), body.Records[0].ID)
	assert.Equal(t, "withdrawal", body.Records[0].Type)
	assert.Equal(t, "125.50", body.Records[0].Amount)
	assert.Equal(t, "synced", body.Records[0].Status)
	require.NotNil(t, body.Records[0].SyncedAt)

	assert.Equal(t, "5.00", body.Records[1].Amount)
	assert.Equal(t, "pending", body.Records[1].Status)
	assert.Nil(t, body.Records[1].SyncedAt)
}

func TestHTTP_ListRecords_Empty(t *testing.T) {
	mockSvc := new(mockRecordLister)
	mockSvc.On("ListRecords", mock.Anything).Return([]service.Record{}, nil)

	resp := newListTestAPI(t, mockSvc).Get("/v1/records")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHTTP_ListRecords_ServiceError(t *testing.T) {
	mockSvc := new(mockRecordLister)
	mockSvc.On("ListRecords", mock.Anything).Return(nil, errors.New("database gone"))

	resp := newListTestAPI(t, mockSvc).Get("/v1/records")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
