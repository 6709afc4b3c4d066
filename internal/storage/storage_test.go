package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/flex-ledger/internal/storage"
)

func newFile(t *testing.T, content string) storage.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), storage.LedgerFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return storage.File{Path: path}
}

func contents(t *testing.T, f storage.File) string {
	t.Helper()
	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	return string(data)
}

func TestReadAllLines(t *testing.T) {
	f := newFile(t, "# usage\n@header\n1;2026-02-27;8;0;15;;\r\n")
	lines, err := f.ReadAllLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"# usage", "@header", "1;2026-02-27;8;0;15;;"}, lines)

	_, err = storage.File{Path: filepath.Join(t.TempDir(), "missing")}.ReadAllLines()
	assert.Error(t, err)
}

func TestReadAllLinesEmpty(t *testing.T) {
	lines, err := newFile(t, "").ReadAllLines()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestAppendLine(t *testing.T) {
	f := newFile(t, "a\n")
	require.NoError(t, f.AppendLine("b"))
	require.NoError(t, f.AppendLine("c"))
	assert.Equal(t, "a\nb\nc\n", contents(t, f))
}

func TestAppendLineMissingNewline(t *testing.T) {
	f := newFile(t, "a")
	require.NoError(t, f.AppendLine("b"))
	assert.Equal(t, "a\nb\n", contents(t, f))
}

func TestTruncateLastLine(t *testing.T) {
	f := newFile(t, "a\nb\nc\n")
	require.NoError(t, f.TruncateLastLine())
	assert.Equal(t, "a\nb\n", contents(t, f))

	f = newFile(t, "only\n")
	require.NoError(t, f.TruncateLastLine())
	assert.Equal(t, "", contents(t, f))
}

func TestReplaceLastLine(t *testing.T) {
	f := newFile(t, "a\nb\n")
	require.NoError(t, f.ReplaceLastLine("B"))
	assert.Equal(t, "a\nB\n", contents(t, f))

	f = newFile(t, "a\nb")
	require.NoError(t, f.ReplaceLastLine("B"))
	assert.Equal(t, "a\nB\n", contents(t, f))

	_, err := os.Stat(f.Path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be gone")
}

func TestCreate(t *testing.T) {
	f := storage.File{Path: filepath.Join(t.TempDir(), "sub", storage.LedgerFileName)}
	require.NoError(t, f.Create([]string{"# hi", "1;2026-02-27;8;0;15;;"}))
	assert.Equal(t, "# hi\n1;2026-02-27;8;0;15;;\n", contents(t, f))

	assert.ErrorIs(t, f.Create([]string{"x"}), storage.ErrExists)
}
