package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/store"
)

type UserServiceParams struct {
	fx.In

	Store *store.Store
}

func NewUserService(params UserServiceParams) *UserService {
	return &UserService{
		AbstractService: &AbstractService{store: params.Store},
	}
}

type UserService struct {
	*AbstractService
}

// CreateUser hashes the password and stores the user. Admin only through
// the user insert policy.
func (s *UserService) CreateUser(ctx context.Context, user *objects.User) (*objects.User, error) {
	hashed, err := HashPassword(user.Password)
	if err != nil {
		return nil, err
	}

	user.Password = hashed

	return s.store.Users().Create(ctx, user)
}

func (s *UserService) GetUser(ctx context.Context, id int) (*objects.User, error) {
	return s.store.Users().Get(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*objects.User, error) {
	return s.store.Users().List(ctx)
}

// UpdateUser replaces profile fields. An empty password keeps the stored
// hash; a non-empty one is re-hashed.
func (s *UserService) UpdateUser(ctx context.Context, user *objects.User) (*objects.User, error) {
	if user.Password != "" {
		hashed, err := HashPassword(user.Password)
		if err != nil {
			return nil, err
		}

		user.Password = hashed
	}

	return s.store.Users().Update(ctx, user)
}

func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	return s.store.Users().Delete(ctx, id)
}

// AssignRole grants a role to a user.
func (s *UserService) AssignRole(ctx context.Context, userID int, role string) (*objects.RoleAssignment, error) {
	return s.store.RoleAssignments().Create(ctx, &objects.RoleAssignment{UserID: userID, Role: role})
}

// RevokeRole removes a role assignment by id.
func (s *UserService) RevokeRole(ctx context.Context, assignmentID int) error {
	return s.store.RoleAssignments().Delete(ctx, assignmentID)
}

// ListRoles returns the user's role assignments.
func (s *UserService) ListRoles(ctx context.Context, userID int) ([]*objects.RoleAssignment, error) {
	return s.store.RoleAssignments().ListByUser(ctx, userID)
}
