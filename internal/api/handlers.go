package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hunchagency/dotupdate/internal/apperr"
	"github.com/hunchagency/dotupdate/internal/updateservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *updateservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *updateservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ProcessUpdate handles POST /update.
//
//	@Summary		Process a status update message for a job
//	@Tags			updates
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpdateRequest	true	"Update to process"
//	@Success		200		{object}	UpdateResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/update [post]
func (h *Handler) ProcessUpdate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	result, err := h.svc.ProcessUpdate(r.Context(), req.JobNumber, req.EmailContent)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrJobNotFound):
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error":     "job_not_found",
				"jobNumber": req.JobNumber,
				"message":   fmt.Sprintf("Could not find job %s in the system", req.JobNumber),
			})
		case errors.Is(err, apperr.ErrExtraction):
			slog.Error("extraction failed", slog.String("job_number", req.JobNumber), slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadGateway, errorBody("classifier returned an unusable response"))
		default:
			slog.Error("process update failed", slog.String("job_number", req.JobNumber), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
