package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// UserLocalsKey is where the gate stores the resolved user on the fiber context
const UserLocalsKey = "user"

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithUser sets the User in the given context
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext finds the user from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok && raw != nil
}

// CurrentUser returns the user the gate attached to c, looking at the fiber
// locals first and the user context second.
func CurrentUser(c *fiber.Ctx) (*User, bool) {
	if user, ok := c.Locals(UserLocalsKey).(*User); ok && user != nil {
		return user, true
	}
	return UserFromContext(c.UserContext())
}
