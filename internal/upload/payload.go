package upload

import (
	"bytes"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"zippybox-server/config"
)

// sniffLen is how many leading bytes are inspected to detect a media type.
const sniffLen = 3072

// Payload is one uploaded file. Open is called at most once, after every
// pre-flight check passed.
type Payload struct {
	Name      string
	Size      int64
	MediaType string
	Open      func() (io.ReadCloser, error)
}

// BytesPayload wraps in-memory content as a Payload.
func BytesPayload(name, mediaType string, data []byte) Payload {
	return Payload{
		Name:      name,
		Size:      int64(len(data)),
		MediaType: mediaType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Limits are the per-item constraints checked before anything is written.
// DeniedExtensions extends config.DefaultDeniedExtensions, which are always
// refused.
type Limits struct {
	MaxFileSize      int64
	DeniedExtensions []string
}

// DefaultLimits returns the stock limits: 50 MiB and executable-style
// extensions refused whatever media type the client declares.
func DefaultLimits() Limits {
	return Limits{MaxFileSize: config.DefaultMaxFileSize}
}

// LimitsFrom reads the limits from the upload section of the config.
func LimitsFrom(cfg config.UploadConfig) Limits {
	l := DefaultLimits()
	if cfg.MaxFileSize > 0 {
		l.MaxFileSize = cfg.MaxFileSize
	}
	if cfg.DeniedExtensions != nil {
		l.DeniedExtensions = cfg.DeniedExtensions
	}
	return l
}

// Check validates one payload: presence, size, then extension.
func (l Limits) Check(p Payload) error {
	if strings.TrimSpace(p.Name) == "" || p.Open == nil {
		return invalidInput("No file provided")
	}
	if p.Size < 0 {
		return &Error{Kind: KindInvalidInput, Message: "File " + p.Name + " has an invalid size", FileName: p.Name}
	}
	if l.MaxFileSize > 0 && p.Size > l.MaxFileSize {
		return &Error{
			Kind:     KindSizeLimitExceeded,
			Message:  "File " + p.Name + " exceeds " + humanize.IBytes(uint64(l.MaxFileSize)) + " limit",
			FileName: p.Name,
		}
	}
	if ext := extension(p.Name); ext != "" && l.denied(ext) {
		return &Error{
			Kind:      KindForbiddenFileType,
			Message:   "This file type is not allowed for security reasons",
			FileName:  p.Name,
			Extension: ext,
		}
	}
	return nil
}

func (l Limits) denied(ext string) bool {
	return listed(config.DefaultDeniedExtensions, ext) || listed(l.DeniedExtensions, ext)
}

func listed(list []string, ext string) bool {
	for _, d := range list {
		d = strings.ToLower(strings.TrimSpace(d))
		if !strings.HasPrefix(d, ".") {
			d = "." + d
		}
		if d == ext {
			return true
		}
	}
	return false
}

// extension is the lower-cased text from the last dot on, so ".js" and
// "bundle.min.JS" both yield ".js".
func extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i:])
}

// sniff returns a reader over the full content and the media type to store.
// Declared types win unless they are empty or the generic octet-stream.
func sniff(r io.Reader, declared string) (io.Reader, string, error) {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return r, declared, nil
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", err
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), r), mimetype.Detect(head).String(), nil
}
