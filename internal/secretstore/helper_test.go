package secretstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeHelper(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "helper")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestHelperBackendReadsTrimmedStdout(t *testing.T) {
	path := writeFakeHelper(t, "#!/bin/sh\necho '  sk-ant-TEST  '\n")
	h := &HelperBackend{Path: path}

	secret, err := h.Read(context.Background(), "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-TEST", string(secret.Bytes()))
}

func TestHelperBackendMissingPathIsNotFound(t *testing.T) {
	h := &HelperBackend{}
	_, err := h.Read(context.Background(), "anthropic")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHelperBackendNonexistentFileIsNotFound(t *testing.T) {
	h := &HelperBackend{Path: "/nonexistent/path/to/helper"}
	_, err := h.Read(context.Background(), "anthropic")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHelperBackendNonZeroExitIsNotFound(t *testing.T) {
	path := writeFakeHelper(t, "#!/bin/sh\nexit 1\n")
	h := &HelperBackend{Path: path}

	_, err := h.Read(context.Background(), "anthropic")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHelperBackendEmptyOutputIsNotFound(t *testing.T) {
	path := writeFakeHelper(t, "#!/bin/sh\necho -n ''\n")
	h := &HelperBackend{Path: path}

	_, err := h.Read(context.Background(), "anthropic")
	assert.ErrorIs(t, err, ErrNotFound)
}
