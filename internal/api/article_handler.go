package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/content"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/resolver"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// articleResponse is a database article tagged with where it came from
type articleResponse struct {
	*models.Article
	Source resolver.Source `json:"source"`
}

// legacyResponse is a rendered legacy Markdown article
type legacyResponse struct {
	Identifier  string          `json:"identifier"`
	Title       string          `json:"title"`
	HTMLContent string          `json:"html_content"`
	Source      resolver.Source `json:"source"`
}

// List handles GET /api/articles
func (h *ArticleHandler) List(c *gin.Context) {
	query := models.ArticleQuery{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", service.DefaultPerPage),
		Status:  c.Query("status"),
		Search:  c.Query("search"),
		Mine:    c.Query("mine") == "true",
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid category_id")
			return
		}
		query.CategoryID = &id
	}

	page, err := h.services.Article.List(c.Request.Context(), currentUser(c), query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/articles/:slug. Legacy HTML files are returned as
// the raw file; everything else is JSON.
func (h *ArticleHandler) Get(c *gin.Context) {
	resolved, err := h.services.Article.Resolve(c.Request.Context(), c.Param("slug"), currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if resolved.Raw() {
		etag := content.ETag(resolved.HTML)
		c.Header("ETag", etag)
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", resolved.HTML)
		return
	}

	if resolved.Article != nil {
		c.JSON(http.StatusOK, articleResponse{Article: resolved.Article, Source: resolved.Source})
		return
	}
	c.JSON(http.StatusOK, legacyResponse{
		Identifier:  resolved.Identifier,
		Title:       resolved.Title,
		HTMLContent: string(resolved.HTML),
		Source:      resolved.Source,
	})
}

// Create handles POST /api/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Update handles PUT /api/articles/:slug
func (h *ArticleHandler) Update(c *gin.Context) {
	var req models.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	article, err := h.services.Article.Update(c.Request.Context(), currentUser(c), c.Param("slug"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /api/articles/:slug
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.services.Article.Delete(c.Request.Context(), currentUser(c), c.Param("slug")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

// Publish handles POST /api/articles/:slug/publish
func (h *ArticleHandler) Publish(c *gin.Context) {
	article, err := h.services.Article.Publish(c.Request.Context(), currentUser(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Unpublish handles POST /api/articles/:slug/unpublish
func (h *ArticleHandler) Unpublish(c *gin.Context) {
	article, err := h.services.Article.Unpublish(c.Request.Context(), currentUser(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// LegacyIndex handles GET /api/legacy
func (h *ArticleHandler) LegacyIndex(c *gin.Context) {
	entries, err := h.services.Article.LegacyIndex(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": entries, "total": len(entries)})
}
