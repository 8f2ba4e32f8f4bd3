package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, username string, role identity.Role) (*auth.Token, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo identity.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo identity.UserRepository, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := identity.NormalizeUsername(input.Username)
	s.logger.Info("Login attempt", zap.String("username", username))

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("username", username))
			return nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid username or password")
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Login failed: invalid password", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid username or password")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_GENERATION_ERROR", "Failed to generate token")
	}

	s.logger.Info("Login successful",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return &LoginResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        ToUserInfo(user),
	}, nil
}
