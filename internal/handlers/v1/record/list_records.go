package record

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/field-ledger/internal/service"
)

// recordLister is the service dependency for listing records.
type recordLister interface {
	ListRecords(ctx context.Context) ([]service.Record, error)
}

// RecordResponse is one record in the list response.
type RecordResponse struct {
	ID             string     `json:"id" doc:"Record UUID"`
	Type           string     `json:"type" doc:"Transaction type"`
	FullName       string     `json:"fullName" doc:"Customer full name"`
	DocumentNumber string     `json:"documentNumber" doc:"Customer document number"`
	PhoneNumber    string     `json:"phoneNumber" doc:"Customer phone number"`
	Amount         string     `json:"amount" doc:"Decimal amount"`
	Status         string     `json:"status" doc:"pending or synced"`
	CreatedAt      time.Time  `json:"createdAt" doc:"Creation timestamp"`
	SyncedAt       *time.Time `json:"syncedAt,omitempty" doc:"Remote acknowledgment timestamp"`
}

// ListRecordsOutput is the Huma output for listing records.
type ListRecordsOutput struct {
	Body struct {
		Records []RecordResponse `json:"records"`
	}
}

// ListRecordsHandler handles GET /v1/records.
type ListRecordsHandler struct {
	Service recordLister
}

// NewListRecordsHandler creates a new ListRecordsHandler.
func NewListRecordsHandler(svc recordLister) *ListRecordsHandler {
	return &ListRecordsHandler{Service: svc}
}

// Register registers the list records endpoint with the Huma API.
func (h *ListRecordsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-records",
		Method:      http.MethodGet,
		Path:        "/v1/records",
		Summary:     "List records",
		Description: "Returns every recorded transaction, newest first.",
		Tags:        []string{"Records"},
	}, h.handle)
}

func (h *ListRecordsHandler) handle(ctx context.Context, _ *struct{}) (*ListRecordsOutput, error) {
	records, err := h.Service.ListRecords(ctx)
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to list records", err)
	}

	output := &ListRecordsOutput{}
	output.Body.Records = make([]RecordResponse, len(records))
	for i, record := range records {
		output.Body.Records[i] = RecordResponse{
			ID:             record.ID.String(),
			Type:           string(record.Type),
			FullName:       record.FullName,
			DocumentNumber: record.DocumentNumber,
			PhoneNumber:    record.PhoneNumber,
			Amount:         record.AmountDecimal().StringFixed(2),
			Status:         string(record.Status),
			CreatedAt:      record.CreatedAt,
			SyncedAt:       record.SyncedAt,
		}
	}
	return output, nil
}
