package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"project_tracker/internal/apperror"
	"project_tracker/internal/model"
	"project_tracker/internal/repository"
	"project_tracker/internal/utils"
)

const (
	msgUserExists          = "User already exists"
	msgIncorrectCredential = "Incorrect Credentials"
)

// TokenIssuer mints session tokens
type TokenIssuer interface {
	GenerateToken(email string, role model.Role) (string, error)
}

// AuthService provides signup, signin and token minting
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*model.SignupResponse, error)
	Signin(ctx context.Context, email, password string) (*model.TokenResponse, error)
	SignToken(email string, role model.Role) (*model.TokenResponse, error)
}

type authService struct {
	userRepo          repository.UserRepository
	tokens            TokenIssuer
	initialAdminEmail string
	logger            *slog.Logger
}

// NewAuthService creates a new AuthService. A signup for initialAdminEmail is given the admin role.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, initialAdminEmail string, logger *slog.Logger) AuthService {
	return &authService{
		userRepo:          userRepo,
		tokens:            tokens,
		initialAdminEmail: normalizeEmail(initialAdminEmail),
		logger:            logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new account and returns its public identity
func (s *authService) Signup(ctx context.Context, email, password string) (*model.SignupResponse, error) {
	email = normalizeEmail(email)
	if len(password) > utils.MaxPasswordBytes {
		return nil, apperror.Validation("Invalid request", map[string]string{"password": "max"})
	}

	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.Conflict(msgUserExists)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperror.Internal(err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	role := model.DefaultRole
	if s.initialAdminEmail != "" && email == s.initialAdminEmail {
		role = model.RoleAdmin
		s.logger.InfoContext(ctx, "registering initial admin", "email", email)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a concurrent signup race on the same email
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict(msgUserExists)
		}
		return nil, apperror.Internal(err)
	}

	return &model.SignupResponse{Email: user.Email, CreatedAt: user.CreatedAt}, nil
}

// Signin verifies the credentials and mints a token carrying the stored role.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *authService) Signin(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Forbidden(msgIncorrectCredential)
		}
		return nil, apperror.Internal(err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperror.Forbidden(msgIncorrectCredential)
	}

	return s.SignToken(user.Email, user.Role)
}

// SignToken mints a one hour token for {email, role}
func (s *authService) SignToken(email string, role model.Role) (*model.TokenResponse, error) {
	token, err := s.tokens.GenerateToken(email, role)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &model.TokenResponse{AccessToken: token}, nil
}
