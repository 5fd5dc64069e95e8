package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// ImportHandler handles legacy import
type ImportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// ImportLegacy handles POST /api/admin/legacy/import. Imported articles are
// owned by the caller unless owner_id names another user.
func (h *ImportHandler) ImportLegacy(c *gin.Context) {
	ownerID := currentUser(c).ID
	if raw := c.Query("owner_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			badRequest(c, "invalid owner_id")
			return
		}
		ownerID = id
	}

	h.log.Info().Int64("owner_id", ownerID).Msg("Legacy import requested")

	report, err := h.services.Import.ImportLegacy(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
