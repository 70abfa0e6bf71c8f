package entities

import (
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/golang-jwt/jwt/v4"
)

type AuthClaims struct {
	jwt.RegisteredClaims
	UserID user.ID `json:"user_id"`
}
