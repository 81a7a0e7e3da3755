package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemPutWritesBlob(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFilesystem(dir, "https://files.example.com/")
	require.NoError(t, err)

	stored, err := s.Put(context.Background(), Object{
		Folder: "/zippybox/user_1/folders/f-1",
		Name:   "abc.txt",
		Body:   strings.NewReader("hello"),
		Size:   5,
	})
	require.NoError(t, err)

	assert.Equal(t, "/zippybox/user_1/folders/f-1/abc.txt", stored.Path)
	assert.Equal(t, "https://files.example.com/zippybox/user_1/folders/f-1/abc.txt", stored.URL)
	assert.Empty(t, stored.ThumbnailURL)

	data, err := os.ReadFile(filepath.Join(dir, "zippybox", "user_1", "folders", "f-1", "abc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFilesystemPutNeverOverwrites(t *testing.T) {
	s, err := NewFilesystem(t.TempDir(), "")
	require.NoError(t, err)

	obj := Object{Folder: "/ns/u", Name: "same.bin", Body: strings.NewReader("1")}
	_, err = s.Put(context.Background(), obj)
	require.NoError(t, err)

	obj.Body = strings.NewReader("2")
	_, err = s.Put(context.Background(), obj)
	assert.Error(t, err)
}

func TestFilesystemFileURLFallback(t *testing.T) {
	s, err := NewFilesystem(t.TempDir(), "")
	require.NoError(t, err)

	stored, err := s.Put(context.Background(), Object{Folder: "/ns/u", Name: "a.txt", Body: strings.NewReader("x")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.URL, "file://"), stored.URL)
	assert.True(t, strings.HasSuffix(stored.URL, "/ns/u/a.txt"), stored.URL)
}

func TestFilesystemHonoursCancelledContext(t *testing.T) {
	s, err := NewFilesystem(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, Object{Folder: "/ns/u", Name: "a.txt", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJoinURLEscapesSegments(t *testing.T) {
	assert.Equal(t, "https://cdn/x/my%20file.txt", joinURL("https://cdn/", "x/my file.txt"))
	assert.Equal(t, "a/b", objectKey("/a/", "b"))
	assert.Equal(t, "b", objectKey("", "b"))
}
