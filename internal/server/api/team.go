package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/server/biz"
)

type TeamHandlersParams struct {
	fx.In

	TeamService *biz.TeamService
}

func NewTeamHandlers(params TeamHandlersParams) *TeamHandlers {
	return &TeamHandlers{
		TeamService: params.TeamService,
	}
}

type TeamHandlers struct {
	TeamService *biz.TeamService
}

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	OwnerUserID int    `json:"owner_user_id" binding:"required"`
}

func (h *TeamHandlers) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	team, err := h.TeamService.CreateTeam(c.Request.Context(), &objects.Team{
		Name:        req.Name,
		Description: req.Description,
		OwnerUserID: req.OwnerUserID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, team)
}

func (h *TeamHandlers) GetTeam(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	team, err := h.TeamService.GetTeam(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

func (h *TeamHandlers) ListTeams(c *gin.Context) {
	teams, err := h.TeamService.ListTeams(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	OwnerUserID *int    `json:"owner_user_id"`
}

func (h *TeamHandlers) UpdateTeam(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	ctx := c.Request.Context()

	team, err := h.TeamService.GetTeam(ctx, id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	applyString(&team.Name, req.Name)
	applyString(&team.Description, req.Description)
	applyInt(&team.OwnerUserID, req.OwnerUserID)

	team, err = h.TeamService.UpdateTeam(ctx, team)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

func (h *TeamHandlers) DeleteTeam(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.TeamService.DeleteTeam(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type AddMemberRequest struct {
	UserID int    `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

func (h *TeamHandlers) AddMember(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	member, err := h.TeamService.AddMember(c.Request.Context(), &objects.TeamMember{
		TeamID: id,
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (h *TeamHandlers) ListMembers(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	members, err := h.TeamService.ListMembers(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateMember changes the team role of the membership identified by the
// :memberID parameter.
func (h *TeamHandlers) UpdateMember(c *gin.Context) {
	memberID, err := pathInt(c, "memberID")
	if err != nil {
		JSONError(c, http.StatusBadRequest, err)
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	member, err := h.TeamService.UpdateMember(c.Request.Context(), &objects.TeamMember{
		ID:   memberID,
		Role: req.Role,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// RemoveMember deletes the membership identified by the :memberID parameter.
func (h *TeamHandlers) RemoveMember(c *gin.Context) {
	memberID, err := pathInt(c, "memberID")
	if err != nil {
		JSONError(c, http.StatusBadRequest, err)
		return
	}

	if err := h.TeamService.RemoveMember(c.Request.Context(), memberID); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
