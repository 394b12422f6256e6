package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/server/biz"
)

type DealHandlersParams struct {
	fx.In

	DealService *biz.DealService
}

func NewDealHandlers(params DealHandlersParams) *DealHandlers {
	return &DealHandlers{
		DealService: params.DealService,
	}
}

type DealHandlers struct {
	DealService *biz.DealService
}

type CreateDealRequest struct {
	Title       string     `json:"title" binding:"required"`
	Amount      float64    `json:"amount"`
	ContactID   *int       `json:"contact_id"`
	OwnerUserID int        `json:"owner_user_id" binding:"required"`
	CloseDate   *time.Time `json:"close_date"`
}

func (h *DealHandlers) CreateDeal(c *gin.Context) {
	var req CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	deal, err := h.DealService.CreateDeal(c.Request.Context(), &objects.Deal{
		Title:       req.Title,
		Amount:      req.Amount,
		ContactID:   req.ContactID,
		OwnerUserID: req.OwnerUserID,
		CloseDate:   req.CloseDate,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, deal)
}

func (h *DealHandlers) GetDeal(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	deal, err := h.DealService.GetDeal(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

func (h *DealHandlers) ListDeals(c *gin.Context) {
	deals, err := h.DealService.ListDeals(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

type UpdateDealRequest struct {
	Title       *string    `json:"title"`
	Amount      *float64   `json:"amount"`
	ContactID   *int       `json:"contact_id"`
	OwnerUserID *int       `json:"owner_user_id"`
	CloseDate   *time.Time `json:"close_date"`
}

func (h *DealHandlers) UpdateDeal(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	ctx := c.Request.Context()

	deal, err := h.DealService.GetDeal(ctx, id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	applyString(&deal.Title, req.Title)

	if req.Amount != nil {
		deal.Amount = *req.Amount
	}

	if req.ContactID != nil {
		deal.ContactID = req.ContactID
	}

	applyInt(&deal.OwnerUserID, req.OwnerUserID)

	if req.CloseDate != nil {
		deal.CloseDate = req.CloseDate
	}

	deal, err = h.DealService.UpdateDeal(ctx, deal)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

func (h *DealHandlers) DeleteDeal(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.DealService.DeleteDeal(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type MoveStageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// MoveStage advances the pipeline stage and records the transition.
func (h *DealHandlers) MoveStage(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req MoveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	deal, err := h.DealService.MoveStage(c.Request.Context(), id, req.Stage)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

func (h *DealHandlers) ListStageHistory(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	history, err := h.DealService.ListStageHistory(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
