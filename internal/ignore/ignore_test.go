package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReservedNames(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	for _, name := range []string{".gate.db", ".gate.db-wal", ".gate.db-shm", ".gateignore", ".gate.yaml"} {
		assert.True(t, m.MatchName(name), name)
	}
	assert.False(t, m.MatchName("gate.db"))
	assert.False(t, m.MatchName("notes.txt"))
}

func TestMatch_AnyComponent(t *testing.T) {
	m, err := New("node_modules", "*.log")
	require.NoError(t, err)

	assert.True(t, m.Match("node_modules"))
	assert.True(t, m.Match("web/node_modules/react/index.js"))
	assert.True(t, m.Match("logs/today.log"))
	assert.False(t, m.Match("logs/today.txt"))
	assert.False(t, m.Match("."))
}

func TestNew_SkipsBlankAndComments(t *testing.T) {
	m, err := New("", "   ", "# comment", "keep")
	require.NoError(t, err)

	assert.Contains(t, m.Patterns(), "keep")
	assert.NotContains(t, m.Patterns(), "# comment")
	assert.Len(t, m.Patterns(), len(reserved)+1)
}

func TestNew_TrailingSlash(t *testing.T) {
	m, err := New("build/")
	require.NoError(t, err)
	assert.True(t, m.Match("build/out.bin"))
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New("[unterminated")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, IgnoreFile)
	require.NoError(t, os.WriteFile(path, []byte("a.txt\r\n\n# skip\n  b.txt  \n"), 0o644))

	lines, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, lines)
}

func TestReadFile_Missing(t *testing.T) {
	lines, err := ReadFile(filepath.Join(t.TempDir(), IgnoreFile))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IgnoreFile), []byte("ignore_me.txt\n"), 0o644))

	m, err := Load(dir, "*.tmp")
	require.NoError(t, err)
	assert.True(t, m.Match("ignore_me.txt"))
	assert.True(t, m.Match("sub/ignore_me.txt"))
	assert.True(t, m.Match("x.tmp"))
	assert.False(t, m.Match("keep.txt"))
}
