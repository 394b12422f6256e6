package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/server/biz"
)

type ContactHandlersParams struct {
	fx.In

	ContactService *biz.ContactService
}

func NewContactHandlers(params ContactHandlersParams) *ContactHandlers {
	return &ContactHandlers{
		ContactService: params.ContactService,
	}
}

type ContactHandlers struct {
	ContactService *biz.ContactService
}

type CreateContactRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	OwnerUserID int    `json:"owner_user_id" binding:"required"`
}

func (h *ContactHandlers) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	contact, err := h.ContactService.CreateContact(c.Request.Context(), &objects.Contact{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		OwnerUserID: req.OwnerUserID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandlers) GetContact(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	contact, err := h.ContactService.GetContact(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandlers) ListContacts(c *gin.Context) {
	contacts, err := h.ContactService.ListContacts(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

type UpdateContactRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Company     *string `json:"company"`
	OwnerUserID *int    `json:"owner_user_id"`
}

func (h *ContactHandlers) UpdateContact(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	ctx := c.Request.Context()

	contact, err := h.ContactService.GetContact(ctx, id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	applyString(&contact.FirstName, req.FirstName)
	applyString(&contact.LastName, req.LastName)
	applyString(&contact.Email, req.Email)
	applyString(&contact.Phone, req.Phone)
	applyString(&contact.Company, req.Company)
	applyInt(&contact.OwnerUserID, req.OwnerUserID)

	contact, err = h.ContactService.UpdateContact(ctx, contact)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandlers) DeleteContact(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.ContactService.DeleteContact(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
