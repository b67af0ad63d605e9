package auth

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

// RoleAdmin passes every role check.
const RoleAdmin = "admin"

// RequireRole admits callers holding any of roles. An empty list admits every
// authenticated caller, so deployments without role claims keep working.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	denied := fmt.Sprintf("required role: %s", strings.Join(roles, " or "))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(roles) == 0 || hasAnyRole(RolesFromContext(c.Request().Context()), roles) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, denied)
		}
	}
}

func hasAnyRole(held, wanted []string) bool {
	if slices.Contains(held, RoleAdmin) {
		return true
	}
	for _, r := range wanted {
		if slices.Contains(held, r) {
			return true
		}
	}
	return false
}
