// Package naming generates the synthetic file names blobs are stored under.
// Display names stay in the catalog; the blob namespace only ever sees these.
package naming

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Generator returns a fresh stored name for an uploaded file.
type Generator interface {
	Name(original string) string
}

// UUID names blobs <uuid>.<ext>, keeping the lower-cased extension of the
// original name so content types survive on the blob host.
type UUID struct{}

func (UUID) Name(original string) string {
	return withExt(uuid.NewString(), original)
}

// Func adapts a plain function to a Generator.
type Func func(original string) string

func (f Func) Name(original string) string { return f(original) }

// Ext returns the lower-cased extension of name including the dot, or "".
func Ext(name string) string {
	ext := filepath.Ext(name)
	if ext == "." || ext == name {
		return ""
	}
	return strings.ToLower(ext)
}

func withExt(id, original string) string {
	return id + Ext(original)
}
