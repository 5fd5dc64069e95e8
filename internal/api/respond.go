package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/apperr"
	"github.com/rs/zerolog"
)

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func errorResponse(c *gin.Context, log zerolog.Logger, err error) (int, errorBody) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		return http.StatusInternalServerError, errorBody{Error: "internal server error", Code: apperr.CodeInternal}
	}
	return e.Status(), errorBody{Error: e.Message, Code: e.Code}
}

// respondError writes err as a JSON error response
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status, body := errorResponse(c, log, err)
	c.JSON(status, body)
}

// abortWithError writes err and stops the handler chain
func abortWithError(c *gin.Context, log zerolog.Logger, err error) {
	status, body := errorResponse(c, log, err)
	c.AbortWithStatusJSON(status, body)
}

// badRequest reports an unreadable request body or parameter
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: apperr.CodeInvalidInput})
}

// paramID parses a positive integer path parameter
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
