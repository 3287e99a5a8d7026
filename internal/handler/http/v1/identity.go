package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	userContextKey     = "user"
	guestSessionHeader = "X-Guest-Session"
)

// IdentityMiddleware - middleware, определяющее личность по bearer-токену или гостевой сессии.
// Запрос без учетных данных проходит анонимно, неверные учетные данные отклоняются.
// Для WebSocket, где заголовки недоступны, принимаются параметры access_token и guest_session.
func IdentityMiddleware(authenticator Authenticator, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := ""
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			bearer = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if bearer == "" {
			bearer = c.Query("access_token")
		}
		guestSession := c.GetHeader(guestSessionHeader)
		if guestSession == "" {
			guestSession = c.Query("guest_session")
		}

		user, err := authenticator.Authenticate(bearer, guestSession)
		if err != nil {
			log.WithError(err).Warn("Invalid credentials provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if user != nil {
			c.Set(userContextKey, user)
		}

		c.Next()
	}
}

// RequireIdentity отклоняет анонимные запросы. Гостевая сессия считается личностью.
// Ставится после IdentityMiddleware.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// currentUser возвращает nil для анонимного запроса
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
