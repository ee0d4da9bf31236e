package services

import (
	"context"
	"fmt"
	"strings"

	"catalogapi/internal/auth"
	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/utils"

	"go.uber.org/zap"
)

// CredentialStore is what registration and login need from the user table.
type CredentialStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	Users  CredentialStore
	Tokens TokenIssuer
	Log    *zap.Logger
}

var errInvalidCredentials = domain.UnauthenticatedError{Msg: "Invalid credentials"}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s AuthService) Register(ctx context.Context, req models.RegisterRequest) (models.UserResponse, error) {
	email := normalizeEmail(req.Email)
	if err := ensureEmailFree(ctx, s.Users, email, ""); err != nil {
		return models.UserResponse{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.UserResponse{}, domain.InternalError{Msg: "hash password", Err: err}
	}
	u, err := s.Users.Create(ctx, models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     req.LastName,
		Status:       true,
	})
	if err != nil {
		return models.UserResponse{}, fmt.Errorf("register: %w", err)
	}
	utils.LogEvent(ctx, s.Log, "auth", "register", "user_id="+u.ID)
	return models.ToUserResponse(u), nil
}

// Login never says which half of the credentials was wrong.
func (s AuthService) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	u, err := s.Users.FindByEmail(ctx, normalizeEmail(req.Email))
	if domain.IsNotFound(err) {
		utils.LogEvent(ctx, s.Log, "auth", "login_failed", "unknown email")
		return models.AuthResponse{}, errInvalidCredentials
	}
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("login: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		utils.LogEvent(ctx, s.Log, "auth", "login_failed", "user_id="+u.ID)
		return models.AuthResponse{}, errInvalidCredentials
	}

	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return models.AuthResponse{}, domain.InternalError{Msg: "issue token", Err: err}
	}
	utils.LogEvent(ctx, s.Log, "auth", "login", "user_id="+u.ID)
	return models.AuthResponse{User: models.ToUserResponse(u), Token: token}, nil
}

type emailLookup interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// ensureEmailFree fails with a conflict when email belongs to anyone but owner.
func ensureEmailFree(ctx context.Context, users emailLookup, email, owner string) error {
	existing, err := users.FindByEmail(ctx, email)
	switch {
	case domain.IsNotFound(err):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case existing.ID == owner:
		return nil
	default:
		return domain.ConflictError{Msg: "User with this email already exists"}
	}
}
