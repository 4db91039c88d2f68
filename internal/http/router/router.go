// Package router wires annad's v1 HTTP surface: /v1/ask, the
// clarification follow-up, action rollback, and a health check, per
// spec.md §6.
package router

import (
	"github.com/gin-gonic/gin"

	"anna.local/annad/internal/http/handler"
)

// Handlers bundles every handler SetupRoutes needs, built once in
// cmd/annad's composition root.
type Handlers struct {
	Ask      *handler.AskHandler
	Clarify  *handler.ClarifyHandler
	Rollback *handler.RollbackHandler
	Persona  *handler.PersonaHandler
}

// SetupRoutes registers annad's v1 API on router.
func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/v1/healthz", handler.Healthz)

	v1 := r.Group("/v1")
	{
		v1.POST("/ask", h.Ask.Ask)
		v1.POST("/clarify/:request_id", h.Clarify.Resolve)
		v1.POST("/actions/:episode_id/rollback", h.Rollback.Rollback)
		v1.GET("/persona", h.Persona.Show)
		v1.POST("/persona/override", h.Persona.SetOverride)
		v1.DELETE("/persona/override", h.Persona.ClearOverride)
	}
}
