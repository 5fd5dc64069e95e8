package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// AdminHandler handles user management, settings and the dashboard
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// Dashboard handles GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.services.User.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", service.DefaultPerPage)

	users, total, err := h.services.User.List(c.Request.Context(), page, perPage)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":    users,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.services.User.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, err := h.services.User.Update(c.Request.Context(), currentUser(c), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.services.User.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *AdminHandler) ToggleUserActive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.services.User.ToggleActive(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) ListSettings(c *gin.Context) {
	settings, err := h.services.Setting.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *AdminHandler) GetSetting(c *gin.Context) {
	setting, err := h.services.Setting.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// SetSetting handles PUT /api/admin/settings/:key with body {"value": "..."}
func (h *AdminHandler) SetSetting(c *gin.Context) {
	var req struct {
		Value *string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		badRequest(c, "value is required")
		return
	}
	setting, err := h.services.Setting.Set(c.Request.Context(), c.Param("key"), *req.Value)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}
