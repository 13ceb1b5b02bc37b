package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSaveFetchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir, "http://localhost:5001/")
	require.NoError(t, err)

	data := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	url, err := s.Save(context.Background(), data, "u1/abc123.png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001/uploads/u1/abc123.png", url)

	// resolvable immediately after Save returns
	rc, err := s.Fetch(context.Background(), url)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// and the bytes are actually on disk under the configured dir
	_, err = os.Stat(filepath.Join(dir, "u1", "abc123.png"))
	assert.NoError(t, err)
}

func TestLocalFetchRejectsTraversal(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "http://localhost:5001")
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), "http://localhost:5001/uploads/../../etc/passwd")
	assert.Error(t, err)
}

func TestLocalFetchRejectsForeignURL(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "http://localhost:5001")
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), "http://elsewhere.example/other/file.png")
	assert.Error(t, err)
}

func TestLocalFetchMissingArtifact(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "http://localhost:5001")
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), "http://localhost:5001/uploads/u1/missing.png")
	assert.Error(t, err, "missing artifact must surface as an error so the dispatcher can skip")
}
