package auth

import (
	"context"

	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

type userCtxKey struct{}

// GetAssertion returns the verified assertion for the request, if any
func GetAssertion(c *fiber.Ctx) (*kernel.Assertion, bool) {
	a, ok := c.Locals(kernel.AssertionKey).(*kernel.Assertion)
	return a, ok && a != nil
}

// GetUser returns the local user attached by Protect
func GetUser(c *fiber.Ctx) (*user.User, bool) {
	u, ok := c.Locals(kernel.UserContextKey).(*user.User)
	return u, ok && u != nil
}

// ContextWithUser returns a copy of ctx carrying u
func ContextWithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the user stored by ContextWithUser
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*user.User)
	return u, ok && u != nil
}

func setUser(c *fiber.Ctx, u *user.User) {
	c.Locals(kernel.UserContextKey, u)
	c.SetUserContext(ContextWithUser(c.UserContext(), u))
}
