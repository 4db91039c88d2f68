package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anna.local/annad/internal/clarify"
	"anna.local/annad/internal/http/dto"
)

// ClarifyHandler serves POST /v1/clarify/{request_id}: the user's
// reply to a clarification menu raised by a prior Ask call.
type ClarifyHandler struct {
	engine  *clarify.Engine
	pending *PendingClarifications
}

// NewClarifyHandler builds a clarify handler sharing pending with the
// AskHandler that raised the menu.
func NewClarifyHandler(engine *clarify.Engine, pending *PendingClarifications) *ClarifyHandler {
	return &ClarifyHandler{engine: engine, pending: pending}
}

func (h *ClarifyHandler) Resolve(c *gin.Context) {
	requestID := c.Param("request_id")

	menu, ok := h.pending.Take(requestID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending clarification for this request_id"})
		return
	}

	var req dto.ClarifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed := clarify.ParseResponse(menu, req.Response)
	result := h.engine.Resolve(c.Request.Context(), menu, parsed, requestID, nil)

	if result.Kind == clarify.ResultVerificationFailed {
		h.pending.Put(requestID, menu)
	}

	c.JSON(http.StatusOK, dto.ClarifyResponse{
		Kind:         string(result.Kind),
		Value:        result.Value,
		FactKey:      string(result.FactKey),
		Error:        result.Error,
		Alternatives: result.Alternatives,
	})
}
