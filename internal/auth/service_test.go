package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	pkgauth "github.com/localbasket/localbasket-backend/pkg/auth"
	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*models.User{}}
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	s.byEmail[strings.ToLower(user.Email)] = &copied
	return nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *stubUserRepo) List(context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range s.byEmail {
		out = append(out, *user)
	}
	return out, nil
}

func (s *stubUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role enums.Role) (bool, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			user.Role = role
			return true, nil
		}
	}
	return false, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "localbasket-test",
		ExpirationMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Low-cost parameters keep the test fast.
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(repo, testJWTConfig(), testPasswordConfig(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterIssuesParseableToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Anna@Example.com",
		Password: "correct-horse",
		Name:     "Anna",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if session.User.Email != "anna@example.com" {
		t.Fatalf("email not normalized: %s", session.User.Email)
	}
	if session.User.Role != enums.RoleUser {
		t.Fatalf("expected role user, got %s", session.User.Role)
	}
	if session.TokenType != "Bearer" || session.ExpiresIn != 3600 {
		t.Fatalf("unexpected session %+v", session)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), session.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != session.User.ID || claims.Role != enums.RoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}

	stored := repo.byEmail["anna@example.com"]
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "correct-horse" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())

	ctx := context.Background()
	input := RegisterInput{Email: "anna@example.com", Password: "correct-horse", Name: "Anna"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLoginWithCorrectPassword(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())

	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "anna@example.com", Password: "correct-horse", Name: "Anna"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	session, err := svc.Login(ctx, LoginInput{Email: "ANNA@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatal("expected access token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())

	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "anna@example.com", Password: "correct-horse", Name: "Anna"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(ctx, LoginInput{Email: "anna@example.com", Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "anna@example.com", Password: "correct-horse", Name: "Anna"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	repo.byEmail["anna@example.com"].IsActive = false

	_, err := svc.Login(ctx, LoginInput{Email: "anna@example.com", Password: "correct-horse"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}
