package catalog

import (
	"encoding/base64"
	"io/fs"
	"strings"
)

// SpriteLoader returns the base64 encoding of a battle sprite.
type SpriteLoader interface {
	Load(name string) (string, error)
}

// FSSprites reads sprites from a directory.
type FSSprites struct {
	fsys fs.FS
}

// NewFSSprites returns a SpriteLoader rooted at fsys.
func NewFSSprites(fsys fs.FS) *FSSprites {
	return &FSSprites{fsys: fsys}
}

// Load reads name and encodes it with standard base64, without a data URI prefix.
// Names that would leave the sprite directory are reported as missing.
func (s *FSSprites) Load(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || !fs.ValidPath(name) || name == "." {
		return "", &SpriteError{Name: name, Err: fs.ErrNotExist}
	}

	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return "", &SpriteError{Name: name, Err: err}
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
