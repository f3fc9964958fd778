package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carson-networks/field-ledger/internal/logging"
)

// onlineReader reports the connectivity monitor's current state.
type onlineReader interface {
	IsOnline() bool
}

// pendingCounter reports the pending sync backlog.
type pendingCounter interface {
	PendingCount(ctx context.Context) (int64, error)
}

type Handler struct {
	Monitor onlineReader
	Ledger  pendingCounter
}

func NewHandler(monitor onlineReader, ledger pendingCounter) Handler {
	return Handler{Monitor: monitor, Ledger: ledger}
}

type statusResponse struct {
	Status  string `json:"status"`
	Online  bool   `json:"online"`
	Pending int64  `json:"pendingRecords"`
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	pending, err := h.Ledger.PendingCount(req.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}

	online := h.Monitor.IsOnline()
	logData.AddData("online", online)
	logData.AddData("pending", pending)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(statusResponse{
		Status:  "ok",
		Online:  online,
		Pending: pending,
	})
}
