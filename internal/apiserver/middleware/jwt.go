package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/database"
	"github.com/amoylab/ifood-dashboard/internal/auth/jwt"
	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
	"github.com/amoylab/ifood-dashboard/internal/i18n"
)

// UserLookup resolves a token subject to a user
type UserLookup interface {
	GetLoginByEmail(ctx context.Context, email string) (*database.Login, error)
}

// JWTAuthMiddleware requires a valid bearer token whose subject is a known user.
// The user is stored in the context for CurrentUser.
func JWTAuthMiddleware(jwtService *jwt.Service, users UserLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(cnst.HeaderAuthorization))
		if !ok {
			i18n.RespondWithError(c, i18n.ErrNotAuthenticated)
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				i18n.RespondWithError(c, i18n.ErrTokenExpired)
				return
			}
			i18n.RespondWithError(c, i18n.ErrInvalidToken)
			return
		}

		user, err := users.GetLoginByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				i18n.RespondWithError(c, i18n.ErrUserNotFound)
				return
			}
			logger.Error("failed to resolve token subject",
				zap.String("request_id", c.GetString(cnst.CtxKeyRequestID)),
				zap.Error(err))
			i18n.RespondWithError(c, i18n.ErrInternalServer)
			return
		}

		c.Set(cnst.CtxKeyClaims, claims)
		c.Set(cnst.CtxKeyCurrentUser, user)
		c.Next()
	}
}

// CurrentUser returns the user authenticated by JWTAuthMiddleware
func CurrentUser(c *gin.Context) (*database.Login, bool) {
	v, ok := c.Get(cnst.CtxKeyCurrentUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*database.Login)
	return user, ok && user != nil
}

// bearerToken extracts the credentials of a "Bearer <token>" header; the scheme is case insensitive
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, cnst.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
