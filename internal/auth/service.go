package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/internal/users"
	pkgauth "github.com/localbasket/localbasket-backend/pkg/auth"
	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/logger"
	"github.com/localbasket/localbasket-backend/pkg/security"
)

// Service registers accounts and issues access tokens.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*SessionDTO, error)
	Login(ctx context.Context, input LoginInput) (*SessionDTO, error)
}

type service struct {
	repo        users.Repository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the auth service.
func NewService(repo users.Repository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		repo:        repo,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*SessionDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         enums.RoleUser,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the existence check;
		// the unique index breaks the tie.
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.registered")
	}
	return s.session(user)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*SessionDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account disabled")
	}

	match, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.logged_in")
	}
	return s.session(user)
}

func (s *service) session(user *models.User) (*SessionDTO, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	return &SessionDTO{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtCfg.AccessTokenTTL().Seconds()),
		User:        users.NewUserDTO(user),
	}, nil
}
