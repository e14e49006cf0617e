package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Riyogosaki/Crystal/apperrors"
	"github.com/Riyogosaki/Crystal/models"
	"github.com/Riyogosaki/Crystal/repository"
)

// bcryptCost is the fixed adaptive hash cost factor.
const bcryptCost = 10

const minPasswordLength = 6

// RoleUser is the default role claim for freshly registered accounts.
// Admin accounts are provisioned out of band; signup never grants the
// admin role.
const RoleUser = "user"

// AuthService implements the credential store and session issuer.
type AuthService struct {
	users  repository.UserRepository
	tokens *TokenService
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Register creates a new account and mints a session token for it.
func (s *AuthService) Register(ctx context.Context, fullName, username, email, password string) (*models.User, string, error) {
	if !validEmail(email) {
		return nil, "", apperrors.Validation("Invalid email format")
	}
	if len(password) < minPasswordLength {
		return nil, "", apperrors.Validation("Password must be at least 6 characters")
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, "", apperrors.Conflict("Username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", apperrors.Conflict("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		FullName: fullName,
		Password: string(hashed),
		Role:     RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent signup can slip past the lookups above and hit
		// the unique index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.Conflict("Username or email already taken")
		}
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID.String(), user.Role)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login verifies credentials and issues a fresh session token. Unknown
// usernames and wrong passwords produce the identical error so the
// endpoint cannot be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID.String(), user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetMe resolves a session's user id to its account.
func (s *AuthService) GetMe(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// validEmail applies the syntactic check: exactly one "@" with
// non-whitespace on both sides and a "." somewhere in the domain part.
func validEmail(email string) bool {
	at := strings.Count(email, "@")
	if at != 1 {
		return false
	}
	local, domain, _ := strings.Cut(email, "@")
	if local == "" || domain == "" {
		return false
	}
	if strings.ContainsAny(local, " \t") || strings.ContainsAny(domain, " \t") {
		return false
	}
	return strings.Contains(domain, ".")
}
