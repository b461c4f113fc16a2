package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/http/response"
	"github.com/yungbote/constella-backend/internal/platform/apierr"
	"github.com/yungbote/constella-backend/internal/platform/ctxutil"
	"github.com/yungbote/constella-backend/internal/platform/logger"
	"github.com/yungbote/constella-backend/internal/services"
)

const headerUserID = "X-User-Id"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	// devHeader accepts X-User-Id in place of a token. Local development only.
	devHeader bool
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, devHeader bool) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	if devHeader {
		middlewareLogger.Warn("auth disabled: trusting X-User-Id header")
	}
	return &AuthMiddleware{log: middlewareLogger, authService: authService, devHeader: devHeader}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.devHeader {
			if id, err := uuid.Parse(strings.TrimSpace(c.GetHeader(headerUserID))); err == nil && id != uuid.Nil {
				ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: id})
				c.Request = c.Request.WithContext(ctx)
				c.Next()
				return
			}
		}
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			reject(c, apierr.Unauthorized("missing or invalid token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			reject(c, apierr.Unauthorized(err.Error()))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		if ctxutil.UserID(ctx) == uuid.Nil {
			reject(c, apierr.Forbidden("token carries no user"))
			return
		}
		c.Next()
	}
}

func reject(c *gin.Context, err *apierr.Error) {
	response.RespondServiceError(c, err)
	c.Abort()
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
