package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/internal/users"
	pkgAuth "github.com/nutricart/nutricart-backend/pkg/auth"
	"github.com/nutricart/nutricart-backend/pkg/config"
	"github.com/nutricart/nutricart-backend/pkg/db/models"
	pkgerrors "github.com/nutricart/nutricart-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	byEmail   map[string]*models.User
	createErr error
	findErr   error
	created   []users.CreateUserDTO
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*models.User{}}
}

func (s *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, dto)
	user := dto.ToModel()
	user.ID = uuid.New()
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (stubHasher) Verify(password, encoded string) (bool, error) {
	return encoded == "hashed:"+password, nil
}

type stubSessions struct {
	created   map[string]uuid.UUID
	revoked   []string
	createErr error
}

func (s *stubSessions) Create(_ context.Context, accessID string, userID uuid.UUID) error {
	if s.createErr != nil {
		return s.createErr
	}
	if s.created == nil {
		s.created = map[string]uuid.UUID{}
	}
	s.created[accessID] = userID
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "nutricart", ExpirationMinutes: 30}
}

func newTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Hasher:         stubHasher{},
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		Now:            func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without dependencies")
	}
}

func TestRegisterNormalizesEmailAndHashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessions{})

	user, err := svc.Register(context.Background(), RegisterRequest{
		Name:     " Ada ",
		Email:    " Ada@Example.com ",
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Name != "Ada" {
		t.Fatalf("expected trimmed name, got %q", user.Name)
	}
	if len(repo.created) != 1 || repo.created[0].PasswordHash != "hashed:pw" {
		t.Fatalf("expected hashed password stored, got %+v", repo.created)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessions{})
	req := RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}

	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), req)
	requireCode(t, err, pkgerrors.CodeConflict)
	if pkgerrors.As(err).Message() != emailTakenMessage {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}
}

func TestRegisterUniqueViolationOnInsertConflicts(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New("UNIQUE constraint failed: users.email")
	svc := newTestService(t, repo, &stubSessions{})

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestRegisterLookupFailureIsInternal(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("db down")
	svc := newTestService(t, repo, &stubSessions{})

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	requireCode(t, err, pkgerrors.CodeInternal)
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	repo := newStubUserRepo()
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions)
	registered, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ADA@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.TokenType != TokenTypeBearer {
		t.Fatalf("expected bearer token type, got %q", resp.TokenType)
	}
	if resp.ExpiresIn != 1800 {
		t.Fatalf("expected 1800s expiry, got %d", resp.ExpiresIn)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, claims.UserID)
	}
	if got, ok := sessions.created[claims.ID]; !ok || got != registered.ID {
		t.Fatalf("expected session stored for jti %q", claims.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessions{})
	if _, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []LoginRequest{
		{Email: "ada@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "pw"},
		{Email: "", Password: "pw"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		requireCode(t, err, pkgerrors.CodeUnauthorized)
	}
}

func TestLoginSessionFailureIsDependency(t *testing.T) {
	repo := newStubUserRepo()
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions)
	if _, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	sessions.createErr = errors.New("redis down")

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "pw"})
	requireCode(t, err, pkgerrors.CodeDependency)
}

func TestMeReturnsUserOrNotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessions{})
	registered, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	me, err := svc.Me(context.Background(), registered.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Email != "ada@example.com" {
		t.Fatalf("unexpected email %q", me.Email)
	}

	_, err = svc.Me(context.Background(), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessions{}
	svc := newTestService(t, newStubUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-1" {
		t.Fatalf("expected revoke, got %v", sessions.revoked)
	}

	err := svc.Logout(context.Background(), " ")
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}
