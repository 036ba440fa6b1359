package tail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestReadNewLines_PartialWriteGuard exercises spec scenario S4: a line
// without a trailing newline must not be returned, and the saved offset
// must not advance past its start, until the writer finishes the line.
func TestReadNewLines_PartialWriteGuard(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "log.jsonl", `{"type":"assistant"}`)

	lines, offset, err := ReadNewLines(path, 0)
	require.NoError(t, err)
	assert.Empty(t, lines, "an unterminated line must not be parsed")
	assert.Equal(t, int64(0), offset, "offset must not advance past the partial line's start")

	// Writer finishes the line.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	lines, offset, err = ReadNewLines(path, offset)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, `{"type":"assistant"}`, string(lines[0]))
	assert.Equal(t, int64(len(`{"type":"assistant"}`+"\n")), offset)
}

func TestReadNewLines_MultipleCompleteLines(t *testing.T) {
	dir := t.TempDir()
	content := "{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n"
	path := writeFile(t, dir, "log.jsonl", content)

	lines, offset, err := ReadNewLines(path, 0)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, int64(len(content)), offset)
}

func TestReadNewLines_ResumesFromSavedOffset(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "log.jsonl", "{\"a\":1}\n")

	_, offset, err := ReadNewLines(path, 0)
	require.NoError(t, err)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{\"a\":2}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	lines, _, err := ReadNewLines(path, offset)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, `{"a":2}`, string(lines[0]))
}

func TestReadNewLines_InvalidJSONLineStillAdvancesOffset(t *testing.T) {
	// The line reader itself is JSON-agnostic: it is the converter's job
	// to skip unparseable JSON, but the offset must still move past a
	// complete, newline-terminated line regardless of its content.
	dir := t.TempDir()
	path := writeFile(t, dir, "log.jsonl", "not valid json\n{\"a\":1}\n")

	lines, offset, err := ReadNewLines(path, 0)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "not valid json", string(lines[0]))
	assert.Equal(t, int64(len("not valid json\n{\"a\":1}\n")), offset)
}

func TestReadNewLines_FileNotFoundIsNonFatal(t *testing.T) {
	_, _, err := ReadNewLines("/nonexistent/path/does/not/exist.jsonl", 0)
	assert.Error(t, err)
}
