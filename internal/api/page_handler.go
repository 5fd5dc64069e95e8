package api

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/content"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

var articlePage = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<article>
{{- with .Article}}
<p class="meta">{{with .AuthorName}}{{.}} · {{end}}{{with .CategoryName}}{{.}} · {{end}}{{with .PublishedAt}}{{.Format "2006-01-02"}} · {{end}}{{.ViewCount}} views</p>
{{- end}}
{{.Body}}
</article>
</body>
</html>
`))

type pageData struct {
	Title   string
	CSS     template.CSS
	Body    template.HTML
	Article *models.Article
}

// PageHandler serves articles as standalone HTML pages
type PageHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(services *service.Services, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		services: services,
		log:      log.With().Str("handler", "page").Logger(),
	}
}

// Show handles GET /news/:identifier. Legacy HTML files are sent as is;
// other sources are wrapped in the article page template.
func (h *PageHandler) Show(c *gin.Context) {
	resolved, err := h.services.Article.Resolve(c.Request.Context(), c.Param("identifier"), currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	body := resolved.HTML
	if !resolved.Raw() {
		var buf bytes.Buffer
		// rendered HTML is sanitized for database articles and trusted for legacy files
		err := articlePage.Execute(&buf, pageData{
			Title:   resolved.Title,
			CSS:     template.CSS(content.HighlightCSS()),
			Body:    template.HTML(resolved.HTML),
			Article: resolved.Article,
		})
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		body = buf.Bytes()
	}

	etag := content.ETag(body)
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}
