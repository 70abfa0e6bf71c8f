package user

import (
	"context"
	"time"
)

// ID identifies a user across all entities.
type ID string

// Role determines which operations a user may perform.
type Role string

const (
	Client Role = "client"
	Writer Role = "writer"
	Admin  Role = "admin"
)

// User as seen by this service. Accounts are owned by the identity
// collaborator; only the fields needed for authorization and
// notification addressing are read here.
type User struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ID        ID        `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      Role      `db:"role" json:"role"`
}

// key is an unexported type for keys defined in this package.
// This prevents collisions with keys defined in other packages.
type key int

// userKey is the key for user.User values in Contexts. It is
// unexported; clients use user.NewContext and user.FromContext
// instead of using this key directly.
var userKey key

// NewContext returns a new Context that carries value u.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext returns the User value stored in ctx, if any.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}
