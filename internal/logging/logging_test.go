package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Level(t *testing.T) {
	restoreLevel(t)

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		setup(&bytes.Buffer{}, tt.in, false)
		assert.Equal(t, tt.want, zerolog.GlobalLevel(), "level %q", tt.in)
	}
}

func TestSetup_JSONOutput(t *testing.T) {
	restoreLevel(t)

	var buf bytes.Buffer
	logger := setup(&buf, "info", false)
	logger.Debug().Msg("hidden")
	logger.Info().Str("kind", "products").Msg("loaded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "loaded", line["message"])
	assert.Equal(t, "products", line["kind"])
	assert.Contains(t, line, "time")
}

func TestSetup_ContextFallback(t *testing.T) {
	restoreLevel(t)

	var buf bytes.Buffer
	setup(&buf, "info", false)
	zerolog.Ctx(context.Background()).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func restoreLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}
