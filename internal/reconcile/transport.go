package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/field-ledger/internal/storage"
)

// SubmitResult is the remote authority's verdict on a batch. Accepted lists
// the ids the authority took ownership of; anything else stays pending here.
type SubmitResult struct {
	Accepted []uuid.UUID
}

// Transport submits one batch of pending records to the remote authority.
// A returned error means nothing in the batch may be considered accepted.
// Implementations own their timeout; the engine never cancels a cycle.
type Transport interface {
	Submit(ctx context.Context, batch []storage.Transaction) (*SubmitResult, error)
}

// HTTPTransport posts batches as JSON to the remote authority's batch endpoint.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type recordPayload struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	FullName       string    `json:"fullName"`
	DocumentNumber string    `json:"documentNumber"`
	PhoneNumber    string    `json:"phoneNumber"`
	AmountMinor    int64     `json:"amountMinor"`
	CreatedAt      time.Time `json:"createdAt"`
}

type batchRequest struct {
	Transactions []recordPayload `json:"transactions"`
}

type batchResponse struct {
	Accepted []string `json:"accepted"`
}

func (t *HTTPTransport) Submit(ctx context.Context, batch []storage.Transaction) (*SubmitResult, error) {
	payload := batchRequest{Transactions: make([]recordPayload, len(batch))}
	for i, record := range batch {
		payload.Transactions[i] = recordPayload{
			ID:             record.ID.String(),
			Type:           string(record.Type),
			FullName:       record.FullName,
			DocumentNumber: record.DocumentNumber,
			PhoneNumber:    record.PhoneNumber,
			AmountMinor:    record.AmountMinor,
			CreatedAt:      record.CreatedAt,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/v1/transactions/batch", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("submit batch: remote returned %d", resp.StatusCode)
	}

	var decoded batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}

	result := &SubmitResult{Accepted: make([]uuid.UUID, 0, len(decoded.Accepted))}
	for _, raw := range decoded.Accepted {
		id, err := uuid.FromString(raw)
		if err != nil {
			return nil, fmt.Errorf("remote accepted invalid id %q: %w", raw, err)
		}
		result.Accepted = append(result.Accepted, id)
	}
	return result, nil
}
