package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/server/biz"
)

type LeadHandlersParams struct {
	fx.In

	LeadService *biz.LeadService
}

func NewLeadHandlers(params LeadHandlersParams) *LeadHandlers {
	return &LeadHandlers{
		LeadService: params.LeadService,
	}
}

type LeadHandlers struct {
	LeadService *biz.LeadService
}

type CreateLeadRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Source      string `json:"source"`
	OwnerUserID int    `json:"owner_user_id"`
}

func (h *LeadHandlers) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	lead, err := h.LeadService.CreateLead(c.Request.Context(), &objects.Lead{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		Source:      req.Source,
		OwnerUserID: req.OwnerUserID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lead)
}

func (h *LeadHandlers) GetLead(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	lead, err := h.LeadService.GetLead(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandlers) ListLeads(c *gin.Context) {
	leads, err := h.LeadService.ListLeads(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

type UpdateLeadRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Company     *string `json:"company"`
	Status      *string `json:"status"`
	Source      *string `json:"source"`
	OwnerUserID *int    `json:"owner_user_id"`
}

func (h *LeadHandlers) UpdateLead(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	ctx := c.Request.Context()

	lead, err := h.LeadService.GetLead(ctx, id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	applyString(&lead.Name, req.Name)
	applyString(&lead.Email, req.Email)
	applyString(&lead.Phone, req.Phone)
	applyString(&lead.Company, req.Company)
	applyString(&lead.Status, req.Status)
	applyString(&lead.Source, req.Source)
	applyInt(&lead.OwnerUserID, req.OwnerUserID)

	lead, err = h.LeadService.UpdateLead(ctx, lead)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandlers) DeleteLead(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.LeadService.DeleteLead(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ConvertLead promotes a lead into a contact. Repeating the call returns
// 409; conversion is one way.
func (h *LeadHandlers) ConvertLead(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	contact, err := h.LeadService.ConvertLead(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

func (h *LeadHandlers) ListStatusHistory(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	history, err := h.LeadService.ListStatusHistory(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
