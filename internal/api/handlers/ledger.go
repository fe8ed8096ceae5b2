// Package handlers exposes the recorder service over HTTP.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tallybook/backend/internal/api/response"
	"github.com/tallybook/backend/internal/common/utils"
	"github.com/tallybook/backend/internal/domain/batch"
	"github.com/tallybook/backend/internal/domain/errors"
	"github.com/tallybook/backend/internal/domain/ledger"
	"github.com/tallybook/backend/internal/domain/recorder"
)

// Handler serves the ledger API.
type Handler struct {
	svc    *recorder.Service
	logger *zap.Logger
}

// New creates a handler over the recorder service.
func New(svc *recorder.Service, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// Register mounts the API routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/batches", h.submitBatch)
	r.Get("/ledger", h.getLedger)
	r.Delete("/ledger/rows/{position}", h.deleteRow)
	r.Get("/ledger/export", h.exportLedger)
}

type submitBatchRequest struct {
	// Text is the raw paste, one item per line.
	Text     string `json:"text"`
	Invoice  string `json:"invoice"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
	// RefundMode forces every parsed amount negative.
	RefundMode bool `json:"refundMode"`
	// Date optionally backdates the batch (YYYY-MM-DD). Defaults to today.
	Date string `json:"date,omitempty"`
}

type submitBatchResponse struct {
	BatchID   string              `json:"batchId"`
	Committed bool                `json:"committed"`
	Version   string              `json:"version,omitempty"`
	NetTotal  string              `json:"netTotal"`
	Rows      []ledger.Row        `json:"rows"`
	Failures  []batch.LineFailure `json:"failures,omitempty"`
}

func (h *Handler) submitBatch(w http.ResponseWriter, r *http.Request) {
	requestID := chimiddleware.GetReqID(r.Context())

	var req submitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, errors.NewValidationError("request body is not valid JSON"), requestID)
		return
	}

	timestamp := time.Now()
	if req.Date != "" {
		if err := utils.ValidateISODate(req.Date); err != nil {
			response.WriteError(w, err, requestID)
			return
		}
		day, _ := time.Parse("2006-01-02", req.Date)
		timestamp = time.Date(day.Year(), day.Month(), day.Day(),
			timestamp.Hour(), timestamp.Minute(), 0, 0, timestamp.Location())
	}

	result, err := h.svc.SubmitBatch(r.Context(), req.Text, batch.Context{
		Invoice:       req.Invoice,
		Customer:      req.Customer,
		Status:        ledger.Status(req.Status),
		ForceNegative: req.RefundMode,
		Timestamp:     timestamp,
	})
	if err != nil {
		response.WriteError(w, err, requestID)
		return
	}

	status := http.StatusOK
	if result.Committed {
		status = http.StatusCreated
	}
	response.WriteSuccess(w, status, submitBatchResponse{
		BatchID:   result.BatchID,
		Committed: result.Committed,
		Version:   result.Version,
		NetTotal:  result.NetTotal.String(),
		Rows:      result.Rows,
		Failures:  result.Failures,
	}, requestID)
}

type ledgerResponse struct {
	Version  string       `json:"version"`
	RowCount int          `json:"rowCount"`
	Rows     []ledger.Row `json:"rows"`
}

func (h *Handler) getLedger(w http.ResponseWriter, r *http.Request) {
	requestID := chimiddleware.GetReqID(r.Context())

	snapshot, err := h.svc.Ledger(r.Context())
	if err != nil {
		response.WriteError(w, err, requestID)
		return
	}

	rows := snapshot.Rows
	if rows == nil {
		rows = []ledger.Row{}
	}
	response.WriteSuccess(w, http.StatusOK, ledgerResponse{
		Version:  snapshot.Version,
		RowCount: len(rows),
		Rows:     rows,
	}, requestID)
}

func (h *Handler) deleteRow(w http.ResponseWriter, r *http.Request) {
	requestID := chimiddleware.GetReqID(r.Context())

	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		response.WriteError(w, errors.NewValidationError("position must be an integer"), requestID)
		return
	}

	commit, err := h.svc.DeleteRow(r.Context(), position, r.Header.Get("If-Match"))
	if err != nil {
		response.WriteError(w, err, requestID)
		return
	}
	response.WriteSuccess(w, http.StatusOK, commit, requestID)
}

func (h *Handler) exportLedger(w http.ResponseWriter, r *http.Request) {
	requestID := chimiddleware.GetReqID(r.Context())

	content, version, err := h.svc.ExportCSV(r.Context())
	if err != nil {
		response.WriteError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	if version != "" {
		w.Header().Set("ETag", fmt.Sprintf("%q", version))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
