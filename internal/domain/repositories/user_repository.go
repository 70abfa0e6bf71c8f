package repositories

import (
	"context"

	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
)

// UserRepository reads user rows owned by the identity collaborator.
type UserRepository interface {
	GetUserByID(ctx context.Context, id user.ID) (*user.User, error)
}
