package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/deskmap/internal/api/response"
	"github.com/Rrens/deskmap/internal/domain"
	"github.com/Rrens/deskmap/internal/service"
)

// DirectoryHandler handles directory sync configuration and triggers
type DirectoryHandler struct {
	directoryService *service.DirectoryService
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// GetConfig returns the stored directory configuration without the secret
func (h *DirectoryHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.directoryService.GetConfig(r.Context())
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}
	if cfg == nil {
		cfg = &domain.DirectoryConfig{SyncIntervalMinutes: 15}
	}

	response.OK(w, cfg)
}

// SaveConfig stores the directory configuration. An empty client secret
// keeps the previously stored one.
func (h *DirectoryHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var input domain.DirectoryConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	cfg, err := h.directoryService.SaveConfig(r.Context(), input)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, cfg)
}

// Users returns the cached directory snapshot from the last sync
func (h *DirectoryHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.directoryService.CachedUsers(r.Context())
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}
	if users == nil {
		users = []domain.DirectoryUser{}
	}

	response.OK(w, users)
}

// Sync triggers a directory sync pass. The body shape is fixed for the
// admin UI: {"ok":true,"users":N,"desksUpdated":M} or {"ok":false,"error":...}.
func (h *DirectoryHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.directoryService.Sync(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, service.ErrConfigIncomplete) || errors.Is(err, service.ErrMapNotInitialized) {
			status = http.StatusBadRequest
		}
		writeRaw(w, status, map[string]any{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	writeRaw(w, http.StatusOK, map[string]any{
		"ok":           true,
		"users":        result.Users,
		"desksUpdated": result.DesksUpdated,
	})
}

// Test verifies the stored credentials against the directory API
func (h *DirectoryHandler) Test(w http.ResponseWriter, r *http.Request) {
	if err := h.directoryService.TestConnection(r.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, service.ErrConfigIncomplete) {
			status = http.StatusBadRequest
		}
		writeRaw(w, status, map[string]any{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	writeRaw(w, http.StatusOK, map[string]any{
		"ok": true,
	})
}

// writeRaw bypasses the response envelope for endpoints whose body shape
// is part of the admin UI contract.
func writeRaw(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
