// Package shader loads SPIR-V byte code for the draw pipeline.
package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// Magic is the first word of every SPIR-V module.
const Magic uint32 = 0x07230203

// ErrInvalid reports byte code that is not a SPIR-V module.
var ErrInvalid = errors.New("shader: invalid byte code")

// Source reads byte code from a file system.
type Source struct {
	fsys fs.FS
}

// NewSource returns a Source reading from fsys.
func NewSource(fsys fs.FS) *Source {
	return &Source{fsys: fsys}
}

// Load reads and checks the byte code at name. Read failures keep the
// underlying fs error in the chain.
func (s *Source) Load(name string) ([]byte, error) {
	code, err := fs.ReadFile(s.fsys, path.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	if err := Validate(code); err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	return code, nil
}

// Validate checks the size and magic number of code.
func Validate(code []byte) error {
	switch {
	case len(code) == 0:
		return fmt.Errorf("%w: empty", ErrInvalid)
	case len(code)%4 != 0:
		return fmt.Errorf("%w: size %d is not a multiple of 4", ErrInvalid, len(code))
	}
	if m := binary.LittleEndian.Uint32(code); m != Magic {
		return fmt.Errorf("%w: magic %#08x", ErrInvalid, m)
	}
	return nil
}
