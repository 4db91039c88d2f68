package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"anna.local/annad/internal/apperr"
	"anna.local/annad/internal/http/dto"
	"anna.local/annad/internal/model"
	"anna.local/annad/internal/persona"
)

// PersonaHandler serves GET /v1/persona and POST/DELETE
// /v1/persona/override, the HTTP face of spec.md §6's persona/
// current.json and persona/override.
type PersonaHandler struct {
	store *persona.Store
}

// NewPersonaHandler builds a persona handler over store.
func NewPersonaHandler(store *persona.Store) *PersonaHandler {
	return &PersonaHandler{store: store}
}

// Show returns the currently active persona state, plus the override
// name if one is pinned.
func (h *PersonaHandler) Show(c *gin.Context) {
	state := h.store.Current()
	resp := dto.PersonaResponse{
		Persona:      string(state.Persona),
		Confidence:   state.Confidence,
		Updated:      state.Updated.Format(time.RFC3339),
		Source:       string(state.Source),
		Explanations: state.Explanations,
		WindowDays:   state.WindowDays,
	}
	if name, ok := h.store.Override(); ok {
		resp.Override = string(name)
	}
	c.JSON(http.StatusOK, resp)
}

// SetOverride pins the persona to the requested name, validating it
// against model.ValidPersonas.
func (h *PersonaHandler) SetOverride(c *gin.Context) {
	var req dto.PersonaOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name, ok := model.ParsePersonaName(req.Persona)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown persona: " + req.Persona})
		return
	}

	if err := h.store.SetOverride(name); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Category == apperr.CategoryPolicy {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Show(c)
}

// ClearOverride removes the pinned persona, reverting to inference.
func (h *PersonaHandler) ClearOverride(c *gin.Context) {
	if err := h.store.ClearOverride(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.Show(c)
}
