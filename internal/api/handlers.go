package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/parkhaus/parking-cli/internal/catalog"
	"github.com/parkhaus/parking-cli/internal/model"
	"github.com/parkhaus/parking-cli/internal/resolver"
	"github.com/parkhaus/parking-cli/internal/ticket"
)

type handlers struct {
	catalog  *catalog.Catalog
	resolver *resolver.Resolver
	manager  *ticket.Manager
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) resolve(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		writeError(w, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}

	loc := h.resolver.Resolve(r.Context(), lat, lon)
	writeJSON(w, http.StatusOK, map[string]any{
		"zone":   loc.Zone,
		"street": loc.Street,
		"method": loc.MethodString(),
	})
}

func (h *handlers) reloadCatalog(w http.ResponseWriter, _ *http.Request) {
	if err := h.catalog.Reload(); err != nil {
		zap.L().Error("catalog reload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "reload failed, previous catalog still active")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "reloaded",
		"zones":  len(h.catalog.Snapshot().Zones()),
	})
}

type startSessionRequest struct {
	Plate    string `json:"plate"`
	ZoneCode string `json:"zone_code"`
	Hours    int    `json:"hours"`
}

func (h *handlers) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Plate == "" || req.ZoneCode == "" {
		writeError(w, http.StatusBadRequest, "plate and zone_code are required")
		return
	}

	zone := h.catalog.Snapshot().ZoneByCode(req.ZoneCode)
	if zone == nil {
		writeError(w, http.StatusNotFound, "unknown zone code")
		return
	}

	t, err := h.manager.StartSession(r.Context(), req.Plate, *zone, req.Hours)
	if err != nil {
		switch {
		case eris.Is(err, ticket.ErrInvalidDuration):
			writeError(w, http.StatusBadRequest, "duration out of range")
		case eris.Is(err, ticket.ErrAlreadyActive):
			writeError(w, http.StatusConflict, "plate already has an active session")
		case eris.Is(err, ticket.ErrActivationFailed):
			writeError(w, http.StatusBadGateway, "activation dispatch failed")
		default:
			zap.L().Error("start session failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

func (h *handlers) cancelSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := h.manager.Cancel(r.Context(), id)
	if err != nil {
		switch {
		case eris.Is(err, ticket.ErrNotFound):
			writeError(w, http.StatusNotFound, "ticket not found")
		case eris.Is(err, ticket.ErrNotActive):
			writeError(w, http.StatusConflict, "ticket is not active")
		default:
			zap.L().Error("cancel failed", zap.String("ticket", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (h *handlers) activeTicket(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("plate")
	if plate == "" {
		writeError(w, http.StatusBadRequest, "plate query parameter is required")
		return
	}

	t := h.manager.ActiveTicketFor(plate)
	if t == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handlers) ticketHistory(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("plate")
	if plate == "" {
		writeError(w, http.StatusBadRequest, "plate query parameter is required")
		return
	}

	history := h.manager.HistoryFor(r.Context(), plate)
	if history == nil {
		history = []model.Ticket{}
	}
	writeJSON(w, http.StatusOK, history)
}
