package upload

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zippybox-server/config"
)

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":     ".jpg",
		"bundle.min.js": ".js",
		"README":        "",
		"trailing.":     "",
		".env":          ".env",
	}
	for name, want := range tests {
		assert.Equal(t, want, extension(name), name)
	}
}

func TestLimitsFrom(t *testing.T) {
	l := LimitsFrom(config.UploadConfig{})
	assert.Equal(t, config.DefaultMaxFileSize, l.MaxFileSize)
	assert.ErrorIs(t, l.Check(textPayload("tool.exe")), ErrForbiddenFileType)

	l = LimitsFrom(config.UploadConfig{MaxFileSize: 1024, DeniedExtensions: []string{"sh"}})
	assert.Equal(t, int64(1024), l.MaxFileSize)
	assert.NoError(t, l.Check(textPayload("notes.txt")))
	assert.ErrorIs(t, l.Check(textPayload("install.sh")), ErrForbiddenFileType)
	assert.ErrorIs(t, l.Check(textPayload("tool.exe")), ErrForbiddenFileType, "configured list extends the built-in one")
}

func TestEmptyDenylistKeepsExecutablesBlocked(t *testing.T) {
	l := LimitsFrom(config.UploadConfig{MaxFileSize: 1024, DeniedExtensions: []string{}})
	for _, name := range []string{"tool.exe", "run.BAT", "app.js", "macro.vbs"} {
		assert.ErrorIs(t, l.Check(textPayload(name)), ErrForbiddenFileType, name)
	}

	l = Limits{MaxFileSize: 1024}
	assert.ErrorIs(t, l.Check(textPayload("tool.exe")), ErrForbiddenFileType)
}

func TestCheckAcceptsEmptyFile(t *testing.T) {
	assert.NoError(t, DefaultLimits().Check(BytesPayload("empty.txt", "text/plain", nil)))
}

func TestCheckSizeBeforeExtension(t *testing.T) {
	err := DefaultLimits().Check(oversized("huge.exe"))
	assert.ErrorIs(t, err, ErrSizeLimitExceeded)
}

func TestCheckNegativeSize(t *testing.T) {
	p := textPayload("a.txt")
	p.Size = -1
	assert.ErrorIs(t, DefaultLimits().Check(p), ErrInvalidInput)
}

func TestDeniedNormalizesEntries(t *testing.T) {
	l := Limits{DeniedExtensions: []string{"EXE", " .Bat "}}
	assert.True(t, l.denied(".exe"))
	assert.True(t, l.denied(".bat"))
	assert.False(t, l.denied(".txt"))
}

func TestSniff(t *testing.T) {
	t.Run("declared type wins", func(t *testing.T) {
		r, mt, err := sniff(strings.NewReader("%PDF-1.4"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "text/plain", mt)
		data, _ := io.ReadAll(r)
		assert.Equal(t, "%PDF-1.4", string(data))
	})

	t.Run("detects when generic", func(t *testing.T) {
		body := "<html><body>hi</body></html>"
		r, mt, err := sniff(strings.NewReader(body), "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(mt, "text/html"), mt)
		data, _ := io.ReadAll(r)
		assert.Equal(t, body, string(data))
	})

	t.Run("keeps bytes past the sniff window", func(t *testing.T) {
		body := strings.Repeat("a", sniffLen*2+7)
		r, _, err := sniff(strings.NewReader(body), "application/octet-stream")
		require.NoError(t, err)
		data, _ := io.ReadAll(r)
		assert.Len(t, data, len(body))
	})
}
