package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/albapepper/diamondstats/internal/api/respond"
	"github.com/albapepper/diamondstats/internal/batch"
)

// ListBatches returns ingestion batches for a year.
// @Summary List ingestion batches
// @Tags batches
// @Produce json
// @Param year query int true "Season year"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /batches [get]
func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_YEAR", "year query parameter must be an integer")
		return
	}

	batches, err := batch.ListForYear(r.Context(), h.pool, year)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"year":    year,
		"batches": batchViews(batches),
	})
}

// GetBatch returns one ingestion batch by id.
// @Summary Get ingestion batch
// @Tags batches
// @Produce json
// @Param batchID path string true "Batch UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /batches/{batchID} [get]
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "batch id must be a UUID")
		return
	}

	b, err := batch.Get(r.Context(), h.pool, id)
	if errors.Is(err, batch.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("batch %s not found", id))
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, batchView(*b))
}

func batchView(b batch.Batch) map[string]interface{} {
	v := map[string]interface{}{
		"id":             b.ID.String(),
		"domain":         string(b.Domain),
		"source_file":    b.SourceFile,
		"year":           b.Year,
		"status":         string(b.Status),
		"total_rows":     b.TotalRows,
		"processed_rows": b.ProcessedRows,
		"started_at":     b.StartedAt,
	}
	if b.CompletedAt != nil {
		v["completed_at"] = *b.CompletedAt
	}
	if b.Error != nil {
		v["error"] = *b.Error
	}
	return v
}

func batchViews(batches []batch.Batch) []map[string]interface{} {
	out := make([]map[string]interface{}, len(batches))
	for i, b := range batches {
		out[i] = batchView(b)
	}
	return out
}
