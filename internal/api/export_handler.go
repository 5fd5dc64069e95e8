package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// TotalCountHeader carries the number of rows an export will stream
const TotalCountHeader = "X-Total-Count"

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /api/admin/export?resource=...&format=...
// Streams the export directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()

	resource := c.Query("resource")
	if resource == "" {
		badRequest(c, "resource parameter is required (users, articles)")
		return
	}
	if resource != "users" && resource != "articles" {
		badRequest(c, "resource must be one of: users, articles")
		return
	}

	format := c.Query("format")
	if format == "" {
		format = service.FormatNDJSON
	}
	if format != service.FormatNDJSON && format != service.FormatJSON && format != service.FormatCSV {
		badRequest(c, "format must be one of: ndjson, json, csv")
		return
	}

	// CSV only supported for users
	if format == service.FormatCSV && resource != "users" {
		badRequest(c, "CSV format only supported for users export")
		return
	}

	total, err := h.services.Export.GetCount(ctx, resource)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header(TotalCountHeader, strconv.Itoa(total))

	h.log.Info().
		Str("resource", resource).
		Str("format", format).
		Int("total", total).
		Msg("Starting streaming export")

	switch resource {
	case "users":
		err = h.services.Export.StreamUsers(ctx, c.Writer, format)
	case "articles":
		err = h.services.Export.StreamArticles(ctx, c.Writer, format)
	}

	if err != nil {
		h.log.Error().Err(err).Str("resource", resource).Msg("Export failed")
		if !c.Writer.Written() {
			respondError(c, h.log, err)
		}
	}
}
