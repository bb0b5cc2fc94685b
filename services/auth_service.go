package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
	"gorm.io/gorm"

	"blog-cms/metrics"
	"blog-cms/models"
	"blog-cms/repositories"
)

// dummyPassword is hashed once at startup so that logins for unknown emails
// spend the same bcrypt time as logins with a wrong password.
const dummyPassword = "blog-cms-timing-equaliser"

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	AuthenticateByPassword(ctx context.Context, email, password string) (*models.Principal, error)
	RegisterByPassword(ctx context.Context, email, password, name string) (*models.User, error)
	Profile(ctx context.Context, principal *models.Principal) (*models.User, error)
	CreateAdmin(ctx context.Context, email, password, name string) (*models.User, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	hasher    PasswordHasher
	tokens    TokenService
	log       *slog.Logger
	metrics   metrics.Recorder
	dummyHash string
}

func NewAuthService(
	userRepo repositories.UserRepository,
	hasher PasswordHasher,
	tokens TokenService,
	log *slog.Logger,
	rec metrics.Recorder,
) (AuthService, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, oops.In("auth").Wrapf(err, "prepare dummy hash")
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &authService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		metrics:   rec,
		dummyHash: dummy,
	}, nil
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	user, err := s.RegisterByPassword(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}
	// Registration implies login.
	return s.issue(models.NewPrincipal(user))
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	principal, err := s.AuthenticateByPassword(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(principal)
}

func (s *authService) issue(principal *models.Principal) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Token: token,
		User: models.UserResponse{
			ID:    principal.ID,
			Email: principal.Email,
			Name:  principal.Name,
			Role:  principal.Role,
		},
	}, nil
}

func (s *authService) AuthenticateByPassword(ctx context.Context, email, password string) (*models.Principal, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordLogin(metrics.OutcomeError)
			return nil, oops.In("auth").Wrapf(err, "find user by email")
		}
		s.hasher.Verify(password, s.dummyHash)
		s.metrics.RecordLogin(metrics.OutcomeFailure)
		return nil, errInvalidCredentials()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordLogin(metrics.OutcomeFailure)
		return nil, errInvalidCredentials()
	}

	s.metrics.RecordLogin(metrics.OutcomeSuccess)
	s.log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return models.NewPrincipal(user), nil
}

func (s *authService) RegisterByPassword(ctx context.Context, email, password, name string) (*models.User, error) {
	user, err := s.createUser(ctx, email, password, name, models.RoleUser)
	switch {
	case err == nil:
		s.metrics.RecordRegistration(metrics.OutcomeSuccess)
	case models.HasCode(err, models.CodeEmailTaken):
		s.metrics.RecordRegistration(metrics.OutcomeFailure)
	default:
		s.metrics.RecordRegistration(metrics.OutcomeError)
	}
	return user, err
}

func (s *authService) CreateAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	return s.createUser(ctx, email, password, name, models.RoleAdmin)
}

func (s *authService) Profile(ctx context.Context, principal *models.Principal) (*models.User, error) {
	if principal == nil {
		return nil, errUnauthenticated()
	}
	user, err := s.userRepo.FindByID(ctx, principal.ID)
	if err != nil {
		return nil, lookupError(err, "auth", "user", principal.ID)
	}
	return user, nil
}

func (s *authService) createUser(ctx context.Context, email, password, name string, role models.Role) (*models.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, oops.In("auth").Wrapf(err, "check email")
	}
	if exists {
		return nil, errEmailTaken(email)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, errEmailTaken(email)
		}
		return nil, oops.In("auth").Wrapf(err, "create user")
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "role", role)
	return user, nil
}

func errInvalidCredentials() error {
	return oops.Code(models.CodeInvalidCredentials).Errorf("invalid email or password")
}

func errEmailTaken(email string) error {
	return oops.Code(models.CodeEmailTaken).With("email", email).Errorf("email is already registered")
}
