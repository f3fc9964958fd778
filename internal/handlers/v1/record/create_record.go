package record

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/field-ledger/internal/service"
	"github.com/carson-networks/field-ledger/internal/storage"
)

// recordCreator is the service dependency for creating records.
type recordCreator interface {
	CreateRecord(ctx context.Context, record service.Record) (uuid.UUID, error)
}

// CreateRecordBody is the request body for recording a transaction.
type CreateRecordBody struct {
	ID             string `json:"id,omitempty" format:"uuid" doc:"Client-generated record UUID; generated server-side when omitted"`
	Type           string `json:"type" required:"true" enum:"deposit,withdrawal" doc:"Transaction type"`
	FullName       string `json:"fullName" required:"true" minLength:"1" doc:"Customer full name"`
	DocumentNumber string `json:"documentNumber" required:"true" minLength:"1" doc:"Customer document number"`
	PhoneNumber    string `json:"phoneNumber" required:"true" minLength:"1" doc:"Customer phone number"`
	Amount         string `json:"amount" required:"true" doc:"Decimal amount, e.g. \"125.50\""`
}

// CreateRecordInput is the Huma input for recording a transaction.
type CreateRecordInput struct {
	Body CreateRecordBody
}

// CreateRecordResponse is the created record summary.
type CreateRecordResponse struct {
	ID        string    `json:"id" doc:"Record UUID"`
	Status    string    `json:"status" doc:"Record sync status, always pending at creation"`
	CreatedAt time.Time `json:"createdAt" doc:"Creation timestamp"`
}

// CreateRecordOutput is the Huma output for recording a transaction.
type CreateRecordOutput struct {
	Body CreateRecordResponse
}

// CreateRecordHandler handles POST /v1/record.
type CreateRecordHandler struct {
	Service recordCreator
}

// NewCreateRecordHandler creates a new CreateRecordHandler.
func NewCreateRecordHandler(svc recordCreator) *CreateRecordHandler {
	return &CreateRecordHandler{Service: svc}
}

// Register registers the create record endpoint with the Huma API.
func (h *CreateRecordHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-record",
		Method:        http.MethodPost,
		Path:          "/v1/record",
		Summary:       "Record transaction",
		Description:   "Durably records a mobile-money transaction for later synchronization.",
		Tags:          []string{"Records"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *CreateRecordHandler) handle(ctx context.Context, input *CreateRecordInput) (*CreateRecordOutput, error) {
	record, err := parseCreateRecordInput(input)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid record", err)
	}

	id, err := h.Service.CreateRecord(ctx, record)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, huma.NewError(http.StatusConflict, "record id already exists", err)
		case errors.Is(err, service.ErrInvalidRecord):
			return nil, huma.NewError(http.StatusBadRequest, "invalid record", err)
		default:
			return nil, huma.NewError(http.StatusInternalServerError, "failed to record transaction", err)
		}
	}

	return &CreateRecordOutput{
		Body: CreateRecordResponse{
			ID:        id.String(),
			Status:    string(storage.StatusPending),
			CreatedAt: time.Now().UTC(),
		},
	}, nil
}

func parseCreateRecordInput(input *CreateRecordInput) (service.Record, error) {
	var id uuid.UUID
	if input.Body.ID != "" {
		parsed, err := uuid.FromString(input.Body.ID)
		if err != nil {
			return service.Record{}, err
		}
		id = parsed
	}

	amountMinor, err := service.MinorUnitsFromString(input.Body.Amount)
	if err != nil {
		return service.Record{}, err
	}

	return service.Record{
		ID:             id,
		Type:           storage.TransactionType(input.Body.Type),
		FullName:       input.Body.FullName,
		DocumentNumber: input.Body.DocumentNumber,
		PhoneNumber:    input.Body.PhoneNumber,
		AmountMinor:    amountMinor,
	}, nil
}
