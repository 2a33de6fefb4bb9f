package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greenbox-dashboard/pkg/logger"
)

func TestNew_ProductionEscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Service: "greenbox-dashboard", Output: &buf})

	log.Component("dashboard").Info().Str("school", "Yale").Msg("reporte recalculado")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "greenbox-dashboard", entry["service"])
	assert.Equal(t, "dashboard", entry["component"])
	assert.Equal(t, "Yale", entry["school"])
	assert.Equal(t, "reporte recalculado", entry["message"])
}

func TestNew_NivelFiltraDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Debug().Msg("no debe salir")
	log.Info().Msg("tampoco")

	assert.Empty(t, buf.String())
}

func TestNew_NivelInvalidoEsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "verbose", Output: &buf})

	log.Debug().Msg("filtrado")
	assert.Empty(t, buf.String())

	log.Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), "service", "sin Service no se agrega el campo")
}

func TestNew_NivelEnMayusculas(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: " WARN ", Output: &buf})

	log.Info().Msg("filtrado")
	log.Warn().Msg("visible")

	assert.NotContains(t, buf.String(), "filtrado")
	assert.Contains(t, buf.String(), "visible")
}
