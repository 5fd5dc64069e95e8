package api

import (
	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// Guard builds the authentication middlewares. Guards never call c.Next so
// they compose by running one after another.
type Guard struct {
	auth service.AuthService
	log  zerolog.Logger
}

// NewGuard creates a Guard backed by the auth service
func NewGuard(authService service.AuthService, log zerolog.Logger) *Guard {
	return &Guard{
		auth: authService,
		log:  log.With().Str("component", "guard").Logger(),
	}
}

// RequireAuth rejects requests without a valid access token for an active user
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := auth.ExtractAccessToken(c.Request)
		user, err := g.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, g.log, err)
			return
		}
		setUser(c, user)
	}
}

// RequireAdmin runs RequireAuth and then requires the admin role
func (g *Guard) RequireAdmin() gin.HandlerFunc {
	requireAuth := g.RequireAuth()
	return func(c *gin.Context) {
		requireAuth(c)
		if c.IsAborted() {
			return
		}
		if user := currentUser(c); user == nil || !user.IsAdmin() {
			abortWithError(c, g.log, apperr.Forbidden(apperr.CodeAdminRequired, "admin privileges required"))
		}
	}
}

// OptionalAuth attaches the user when a valid token is present and
// otherwise lets the request through anonymously. A rejected token is
// recorded so content that needs a viewer reports why it was rejected.
func (g *Guard) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.ExtractAccessToken(c.Request)
		if !ok {
			return
		}
		user, err := g.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			g.log.Debug().Err(err).Msg("Unusable token on public route")
			c.Request = c.Request.WithContext(auth.WithAuthError(c.Request.Context(), err))
			return
		}
		setUser(c, user)
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
}

// currentUser returns the authenticated user, or nil for anonymous requests
func currentUser(c *gin.Context) *models.User {
	user, _ := auth.UserFromContext(c.Request.Context())
	return user
}
