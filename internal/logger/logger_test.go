package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	SetVerbose(false)
	SetFormat(FormatConsole)
	SetOutput(os.Stderr)
}

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	t.Cleanup(reset)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat(FormatJSON)
	SetVerbose(verboseMode)
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestSetVerbose(t *testing.T) {
	t.Cleanup(reset)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("test message %s", "arg")

	lines := decode(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "test message arg", lines[0]["message"])
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden too")
	Section("Hidden")

	assert.Empty(t, buf.String())
}

func TestSection_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Section("Recommend")

	lines := decode(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Recommend", lines[0]["section"])
	assert.Equal(t, "=== Recommend ===", lines[0]["message"])
}

func TestWarn_AlwaysEmitted(t *testing.T) {
	buf := capture(t, false)

	Warn("storage slow: %d ms", 250)

	lines := decode(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "storage slow: 250 ms", lines[0]["message"])
}

func TestError_AttachesCause(t *testing.T) {
	buf := capture(t, false)

	Error(errors.New("disk full"), "append failed for %s", "chat-1")

	lines := decode(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "disk full", lines[0]["error"])
	assert.Equal(t, "append failed for chat-1", lines[0]["message"])
}

func TestL_StructuredFields(t *testing.T) {
	buf := capture(t, true)

	L().Info().Str("session", "42").Int("entries", 3).Msg("history read")

	lines := decode(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "42", lines[0]["session"])
	assert.EqualValues(t, 3, lines[0]["entries"])
}

func TestConsoleFormat(t *testing.T) {
	t.Cleanup(reset)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat(FormatConsole)

	Warn("plain text")

	assert.Contains(t, buf.String(), "plain text")
	assert.Contains(t, buf.String(), "WRN")
}

func TestSetFormat_UnknownFallsBackToConsole(t *testing.T) {
	t.Cleanup(reset)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat(Format("xml"))

	Warn("fallback")

	assert.False(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"))
}
