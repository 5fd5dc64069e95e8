package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// AuthHandler handles account and token endpoints
type AuthHandler struct {
	services *service.Services
	cfg      config.AuthConfig
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		cfg:      cfg.Auth,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// authResponse is returned by register, login and refresh
type authResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.services.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.writeTokens(c, result, false)
	c.JSON(http.StatusCreated, h.response(result))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.services.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.writeTokens(c, result, req.Remember)
	c.JSON(http.StatusOK, h.response(result))
}

// Refresh handles POST /api/auth/refresh. The refresh token is only read
// from its cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := auth.ExtractRefreshToken(c.Request)

	result, err := h.services.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.writeTokens(c, result, true)
	c.JSON(http.StatusOK, h.response(result))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := auth.ExtractRefreshToken(c.Request)
	if err := h.services.Auth.Logout(c.Request.Context(), token); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.clearTokens(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// ChangePassword handles PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := h.services.Auth.ChangePassword(c.Request.Context(), currentUser(c), &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *AuthHandler) response(result *models.AuthResult) authResponse {
	return authResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(h.cfg.AccessTTL / time.Second),
	}
}

// writeTokens sets both cookies. Without persist they are session cookies.
func (h *AuthHandler) writeTokens(c *gin.Context, result *models.AuthResult, persist bool) {
	accessAge, refreshAge := 0, 0
	if persist {
		accessAge = int(h.cfg.AccessTTL / time.Second)
		refreshAge = int(h.cfg.RefreshTTL / time.Second)
	}
	h.setCookie(c, auth.AccessCookie, result.AccessToken, accessAge)
	h.setCookie(c, auth.RefreshCookie, result.RefreshToken, refreshAge)
}

func (h *AuthHandler) clearTokens(c *gin.Context) {
	h.setCookie(c, auth.AccessCookie, "", -1)
	h.setCookie(c, auth.RefreshCookie, "", -1)
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
