// Package paths maps owners, parents and names onto canonical storage paths.
package paths

import (
	"errors"
	"path"
	"strings"
)

// ErrEmptySegment is returned when the owner or name is blank.
var ErrEmptySegment = errors.New("paths: owner and name must not be empty")

// DefaultNamespace is the top-level prefix of every stored path.
const DefaultNamespace = "zippybox"

// Builder computes canonical paths. The zero value uses DefaultNamespace.
type Builder struct {
	Namespace string
}

// Dir returns the directory under which entries of the given owner and
// parent live:
//
//	/<namespace>/<owner>                       (root)
//	/<namespace>/<owner>/folders/<parentID>    (inside a folder)
func (b Builder) Dir(ownerID, parentID string) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", ErrEmptySegment
	}
	ns := b.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	if parentID == "" {
		return "/" + path.Join(ns, ownerID), nil
	}
	return "/" + path.Join(ns, ownerID, "folders", parentID), nil
}

// Build returns Dir(ownerID, parentID) joined with name.
func (b Builder) Build(ownerID, parentID, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptySegment
	}
	dir, err := b.Dir(ownerID, parentID)
	if err != nil {
		return "", err
	}
	return dir + "/" + name, nil
}
