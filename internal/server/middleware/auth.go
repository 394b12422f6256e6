package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/contexts"
	"github.com/looplj/crmhub/internal/server/biz"
)

// WithJWTAuth authenticates the bearer token and binds the user as the
// policy principal for everything downstream. Requests without a valid
// token never reach a handler.
func WithJWTAuth(auth *biz.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			AbortWithError(c, http.StatusUnauthorized, errors.New("missing authorization token"))
			return
		}

		user, err := auth.AuthenticateJWTToken(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		ctx := contexts.WithUser(c.Request.Context(), user)
		ctx = authz.NewUserContext(ctx, user.ID)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
