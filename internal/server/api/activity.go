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

type ActivityHandlersParams struct {
	fx.In

	ActivityService *biz.ActivityService
}

func NewActivityHandlers(params ActivityHandlersParams) *ActivityHandlers {
	return &ActivityHandlers{
		ActivityService: params.ActivityService,
	}
}

// ActivityHandlers serves notes, documents and communication entries.
type ActivityHandlers struct {
	ActivityService *biz.ActivityService
}

type CreateNoteRequest struct {
	Body      string `json:"body" binding:"required"`
	LeadID    *int   `json:"lead_id"`
	ContactID *int   `json:"contact_id"`
	DealID    *int   `json:"deal_id"`
}

func (h *ActivityHandlers) CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	note, err := h.ActivityService.CreateNote(c.Request.Context(), &objects.Note{
		Body:      req.Body,
		LeadID:    req.LeadID,
		ContactID: req.ContactID,
		DealID:    req.DealID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

func (h *ActivityHandlers) GetNote(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	note, err := h.ActivityService.GetNote(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

func (h *ActivityHandlers) ListNotes(c *gin.Context) {
	notes, err := h.ActivityService.ListNotes(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

type UpdateNoteRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *ActivityHandlers) UpdateNote(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	ctx := c.Request.Context()

	note, err := h.ActivityService.GetNote(ctx, id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	note.Body = req.Body

	note, err = h.ActivityService.UpdateNote(ctx, note)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

func (h *ActivityHandlers) DeleteNote(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.ActivityService.DeleteNote(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type CreateDocumentRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	StorageKey  string `json:"storage_key" binding:"required"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	LeadID      *int   `json:"lead_id"`
	ContactID   *int   `json:"contact_id"`
	DealID      *int   `json:"deal_id"`
}

func (h *ActivityHandlers) CreateDocument(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	doc, err := h.ActivityService.CreateDocument(c.Request.Context(), &objects.Document{
		FileName:    req.FileName,
		StorageKey:  req.StorageKey,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		LeadID:      req.LeadID,
		ContactID:   req.ContactID,
		DealID:      req.DealID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *ActivityHandlers) GetDocument(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	doc, err := h.ActivityService.GetDocument(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *ActivityHandlers) ListDocuments(c *gin.Context) {
	docs, err := h.ActivityService.ListDocuments(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *ActivityHandlers) DeleteDocument(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.ActivityService.DeleteDocument(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type CreateCommunicationRequest struct {
	Kind       string     `json:"kind" binding:"required"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	LeadID     *int       `json:"lead_id"`
	ContactID  *int       `json:"contact_id"`
	DealID     *int       `json:"deal_id"`
	OccurredAt *time.Time `json:"occurred_at"`
}

func (h *ActivityHandlers) CreateCommunication(c *gin.Context) {
	var req CreateCommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	comm := &objects.Communication{
		Kind:      req.Kind,
		Subject:   req.Subject,
		Body:      req.Body,
		LeadID:    req.LeadID,
		ContactID: req.ContactID,
		DealID:    req.DealID,
	}
	if req.OccurredAt != nil {
		comm.OccurredAt = *req.OccurredAt
	}

	comm, err := h.ActivityService.CreateCommunication(c.Request.Context(), comm)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comm)
}

func (h *ActivityHandlers) GetCommunication(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	comm, err := h.ActivityService.GetCommunication(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comm)
}

func (h *ActivityHandlers) ListCommunications(c *gin.Context) {
	comms, err := h.ActivityService.ListCommunications(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"communications": comms})
}

func (h *ActivityHandlers) DeleteCommunication(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.ActivityService.DeleteCommunication(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
