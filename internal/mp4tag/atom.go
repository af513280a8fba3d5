// Package mp4tag implements the MP4/ISO-BMFF iTunes-style metadata tag:
// parsing the meta/hdlr/ilst atom subtree into an editable tag, and a
// two-phase prepareMaking/make planner that serializes it back out.
package mp4tag

import (
	"fmt"

	"github.com/kalmuthu/tagparser/internal/binary"
	"github.com/kalmuthu/tagparser/internal/types"
)

// Atom is an MP4 box: size u32 BE + type u32 BE (+64-bit extended size if
// size==1) + payload.
type Atom struct {
	Size     uint64
	Type     string
	Offset   int64
	Extended bool
}

// DataSize returns the size of the atom's payload, excluding its header.
func (a *Atom) DataSize() uint64 {
	headerSize := uint64(8)
	if a.Extended {
		headerSize = 16
	}
	if a.Size < headerSize {
		return 0
	}
	return a.Size - headerSize
}

// DataOffset returns the file offset where the atom's payload starts.
func (a *Atom) DataOffset() int64 {
	headerSize := int64(8)
	if a.Extended {
		headerSize = 16
	}
	return a.Offset + headerSize
}

// ReadAtomHeader reads one atom header at offset.
func ReadAtomHeader(sr *binary.SafeReader, offset int64) (*Atom, error) {
	size32, err := binary.Read[uint32](sr, offset, "atom size")
	if err != nil {
		return nil, err
	}

	typeBytes := make([]byte, 4)
	if err := sr.ReadAt(typeBytes, offset+4, "atom type"); err != nil {
		return nil, err
	}

	atom := &Atom{Type: string(typeBytes), Offset: offset}

	if size32 == 1 {
		size64, err := binary.Read[uint64](sr, offset+8, "extended atom size")
		if err != nil {
			return nil, err
		}
		atom.Size = size64
		atom.Extended = true
	} else {
		atom.Size = uint64(size32)
	}

	if atom.Size < 8 {
		return nil, &types.CorruptedFileError{Offset: offset, Reason: fmt.Sprintf("invalid atom size %d (minimum is 8)", atom.Size)}
	}

	return atom, nil
}

// FindAtom returns the first atom of the given type within [start, end), or
// an error if none is found.
func FindAtom(sr *binary.SafeReader, start, end int64, atomType string) (*Atom, error) {
	offset := start
	for offset < end {
		atom, err := ReadAtomHeader(sr, offset)
		if err != nil {
			return nil, err
		}
		if atom.Type == atomType {
			return atom, nil
		}
		if atom.Size == 0 {
			return nil, &types.CorruptedFileError{Offset: offset, Reason: "atom with zero size"}
		}
		offset += int64(atom.Size)
	}
	return nil, fmt.Errorf("atom %q not found", atomType)
}
