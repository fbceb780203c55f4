package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/deskmap/internal/api/response"
	"github.com/Rrens/deskmap/internal/domain"
	"github.com/Rrens/deskmap/internal/service"
)

// LayoutHandler handles floor-map layout endpoints
type LayoutHandler struct {
	layoutService *service.LayoutService
}

// NewLayoutHandler creates a new layout handler
func NewLayoutHandler(layoutService *service.LayoutService) *LayoutHandler {
	return &LayoutHandler{layoutService: layoutService}
}

// Get returns the full layout for the viewer
func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	layout, err := h.layoutService.GetLayout(r.Context())
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, layout)
}

// Save replaces the desk set and optionally updates the map style
func (h *LayoutHandler) Save(w http.ResponseWriter, r *http.Request) {
	var input domain.LayoutSave
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	layout, err := h.layoutService.SaveLayout(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateDeskNumber) {
			response.BadRequest(w, "duplicate desk number")
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, layout)
}
