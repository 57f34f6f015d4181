package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/utils"
)

const principalKey = "principal"

// PrincipalResolver turns a bearer token into the caller's current identity.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (domain.Principal, error)
}

func AuthMiddleware(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization header must be Bearer token"))
			return
		}

		p, err := resolver.ResolvePrincipal(c.Request.Context(), parts[1])
		if err != nil {
			if domain.KindOf(err) == domain.KindUpstream {
				c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorResponse("Something went wrong"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Not authorized to access this route"))
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// GetPrincipal returns the principal stored by AuthMiddleware.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Not authorized to access this route"))
			return
		}

		for _, r := range allowedRoles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse("User role "+string(p.Role)+" is not authorized to access this route"))
	}
}
