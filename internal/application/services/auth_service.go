package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/config"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/repositories"
	"github.com/Stephen-Muteti/writing-backend/internal/jwt"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
)

// AuthService resolves bearer tokens issued by the identity
// collaborator into user records. Registration and login live with the
// collaborator, not here.
type AuthService struct {
	userRepo repositories.UserRepository
	config   *config.Config
	logger   logger.Logger
}

func NewAuthService(
	userRepo repositories.UserRepository,
	config *config.Config,
	logger logger.Logger,
) (*AuthService, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	return &AuthService{
		userRepo: userRepo,
		config:   config,
		logger:   logger,
	}, nil
}

var _ interfaces.AuthService = (*AuthService)(nil)

func (s *AuthService) GetUserFromToken(ctx context.Context, token string) (*user.User, error) {
	id, err := jwt.GetUserID(token, s.config.JWT.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCredentials, err)
	}

	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}

	return u, nil
}
