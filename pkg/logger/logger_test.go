package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProduccionEscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Output: &buf})

	l.Info().Msg("descartado")
	l.Warn().Int64("product_id", 7).Msg("stock bajo")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "una sola línea JSON: info queda filtrado")
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(7), entry["product_id"])
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Output: &buf})
	c := l.Component("engine")
	c.Info().Msg("ok")
	assert.Contains(t, buf.String(), `"component":"engine"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("ruido"))
}
