package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/krkdev/contacts-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveDeleteURL(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "avatars/a.png", strings.NewReader("png-bytes")))

	data, err := os.ReadFile(filepath.Join(root, "avatars", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "/avatars/a.png", s.URL("avatars/a.png"))

	entries, err := os.ReadDir(filepath.Join(root, "avatars"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed, not left behind")

	require.NoError(t, s.Delete(ctx, "avatars/a.png"))
	require.NoError(t, s.Delete(ctx, "avatars/a.png"), "deleting twice is fine")
	_, err = os.Stat(filepath.Join(root, "avatars", "a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../x.png", "/etc/passwd", "a/../../x", "."} {
		assert.Error(t, s.Save(context.Background(), p, strings.NewReader("x")), p)
	}
}

func TestLocalStorage_SaveHonoursCanceledContext(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, "avatars/a.png", strings.NewReader("x")), context.Canceled)
}

func TestS3PublicURL(t *testing.T) {
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", s3PublicURL(S3Config{Bucket: "b", Region: "eu-west-1"}))
	assert.Equal(t, "http://localhost:9000/b", s3PublicURL(S3Config{Bucket: "b", Endpoint: "http://localhost:9000/"}))
	assert.Equal(t, "https://cdn.example.com", s3PublicURL(S3Config{Bucket: "b", PublicURL: "https://cdn.example.com/"}))
}

func TestNew_Local(t *testing.T) {
	s, err := New(&config.Config{StorageDriver: config.StorageDriverLocal, PublicDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(&config.Config{StorageDriver: "ftp"})
	assert.Error(t, err)
}
