package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core/policy"
	"github.com/edupulse/edupulse/core/user"
)

// roleMiddleware lets through callers holding any of roles.
func roleMiddleware(deny error, roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return deny
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(policy.ErrAdminOnly, user.RoleAdmin)
}
