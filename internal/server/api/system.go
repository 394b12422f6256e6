package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looplj/crmhub/internal/build"
)

type SystemHandlers struct{}

func NewSystemHandlers() *SystemHandlers {
	return &SystemHandlers{}
}

// Health reports liveness and the running version.
func (h *SystemHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": build.Version,
	})
}
