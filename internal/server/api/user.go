package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/server/biz"
)

type UserHandlersParams struct {
	fx.In

	UserService *biz.UserService
}

func NewUserHandlers(params UserHandlersParams) *UserHandlers {
	return &UserHandlers{
		UserService: params.UserService,
	}
}

type UserHandlers struct {
	UserService *biz.UserService
}

type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	user, err := h.UserService.CreateUser(c.Request.Context(), &objects.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.Info())
}

func (h *UserHandlers) GetUser(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Info())
}

func (h *UserHandlers) ListUsers(c *gin.Context) {
	users, err := h.UserService.ListUsers(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": lo.Map(users, func(u *objects.User, _ int) *objects.UserInfo {
			return u.Info()
		}),
	})
}

type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (h *UserHandlers) UpdateUser(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	ctx := c.Request.Context()

	user, err := h.UserService.GetUser(ctx, id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	applyString(&user.Email, req.Email)
	applyString(&user.FirstName, req.FirstName)
	applyString(&user.LastName, req.LastName)

	user.Password = ""
	if req.Password != nil {
		user.Password = *req.Password
	}

	user, err = h.UserService.UpdateUser(ctx, user)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Info())
}

func (h *UserHandlers) DeleteUser(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.UserService.DeleteUser(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type AssignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandlers) AssignRole(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	assignment, err := h.UserService.AssignRole(c.Request.Context(), id, req.Role)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// RevokeRole removes the role assignment identified by the :id parameter.
func (h *UserHandlers) RevokeRole(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.UserService.RevokeRole(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandlers) ListRoles(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	roles, err := h.UserService.ListRoles(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}
