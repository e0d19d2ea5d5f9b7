package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/delivery/http/request"
	"github.com/user/reality-watch/internal/delivery/http/response"
	"github.com/user/reality-watch/internal/usecase"
)

type Handler struct {
	listings usecase.ListingQuery
	logger   *zap.Logger
}

func NewHandler(listings usecase.ListingQuery, logger *zap.Logger) *Handler {
	return &Handler{
		listings: listings,
		logger:   logger,
	}
}

func (h *Handler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	req, err := request.ParseListListings(r.URL.Query())
	if err != nil {
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.listings.List(r.Context(), usecase.ListingFilter{Region: req.Region, Limit: req.Limit})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidLimit) {
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to list listings", zap.String("region", req.Region), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.FromListings(rows))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
