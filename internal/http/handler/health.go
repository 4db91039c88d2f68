package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz serves GET /v1/healthz.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
