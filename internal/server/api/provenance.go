package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/server/biz"
)

type ProvenanceHandlersParams struct {
	fx.In

	ProvenanceService *biz.ProvenanceService
}

func NewProvenanceHandlers(params ProvenanceHandlersParams) *ProvenanceHandlers {
	return &ProvenanceHandlers{
		ProvenanceService: params.ProvenanceService,
	}
}

// ProvenanceHandlers serves the audit trail and automation outcomes.
// Both are read-only; entries are written by the mutation pipeline.
type ProvenanceHandlers struct {
	ProvenanceService *biz.ProvenanceService
}

// auditScope reads the optional ?entity= and ?entity_id= query filters.
func auditScope(c *gin.Context) (string, int, error) {
	entity := c.Query("entity")

	raw := c.Query("entity_id")
	if raw == "" {
		return entity, 0, nil
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return "", 0, errors.New("invalid entity_id")
	}

	if entity == "" {
		return "", 0, errors.New("entity_id requires entity")
	}

	return entity, id, nil
}

func (h *ProvenanceHandlers) ListAuditLogs(c *gin.Context) {
	entity, entityID, err := auditScope(c)
	if err != nil {
		JSONError(c, http.StatusBadRequest, err)
		return
	}

	logs, err := h.ProvenanceService.ListAuditLogs(c.Request.Context(), entity, entityID)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}

func (h *ProvenanceHandlers) ListAutomationLogs(c *gin.Context) {
	entity, entityID, err := auditScope(c)
	if err != nil {
		JSONError(c, http.StatusBadRequest, err)
		return
	}

	logs, err := h.ProvenanceService.ListAutomationLogs(c.Request.Context(), entity, entityID)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"automation_logs": logs})
}
