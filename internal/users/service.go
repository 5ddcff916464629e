package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/enums"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

// Service is the account administration surface: listing accounts and
// moving them between the user and admin roles.
type Service interface {
	List(ctx context.Context) ([]UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateRole(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*UserDTO, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the user administration service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	dtos := make([]UserDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewUserDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	dto := NewUserDTO(user)
	return &dto, nil
}

// UpdateRole promotes or demotes an account. Superadmin accounts are
// managed out of band, never through this surface.
func (s *service) UpdateRole(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*UserDTO, error) {
	role, err := enums.ParseRole(input.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if role == enums.RoleSuperAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot grant superadmin")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if user.Role == enums.RoleSuperAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot change a superadmin role")
	}

	if _, err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
	}
	user.Role = role

	if s.logg != nil {
		fields := s.logg.WithFields(ctx, map[string]any{
			"user_id": id.String(),
			"role":    role.String(),
		})
		s.logg.Info(fields, "users.role.updated")
	}
	dto := NewUserDTO(user)
	return &dto, nil
}
