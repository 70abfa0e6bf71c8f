package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/repositories"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
)

type UserRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewUserRepository(db *sql.DB, logger logger.Logger) (*UserRepository, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}

	return &UserRepository{db: db, logger: logger}, nil
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) GetUserByID(ctx context.Context, id user.ID) (*user.User, error) {
	const query = `
		SELECT id, email, full_name, role, created_at
		FROM users
		WHERE id = $1;
	`

	u := new(user.User)

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}
