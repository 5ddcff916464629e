package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
)

// UserDTO is the API shape of an account. The password hash never leaves
// the persistence layer.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      enums.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewUserDTO maps a user row onto the payload.
func NewUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// UpdateRoleInput promotes or demotes an account.
type UpdateRoleInput struct {
	Role string `json:"role" validate:"required"`
}
