package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/newsroom-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel("WARN"))
	assert.Equal(t, zerolog.ErrorLevel, logger.ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
}

func TestNewWithOptions_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOptions(logger.Options{Level: "info", Out: &buf})

	log.Debug().Msg("hidden")
	log.Info().Str("component", "test").Msg("visible")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, logger.ServiceName, entry["service"])
	assert.Equal(t, "test", entry["component"])
}
