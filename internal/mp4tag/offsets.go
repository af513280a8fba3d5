package mp4tag

import (
	"encoding/binary"
	"fmt"

	binutil "github.com/kalmuthu/tagparser/internal/binary"
)

// containerAtoms lists the MP4 box types that always hold child atoms and
// therefore need descending into when hunting for stco/co64 tables
// anywhere under moov.
var containerAtoms = map[string]bool{
	"moov": true,
	"trak": true,
	"mdia": true,
	"minf": true,
	"stbl": true,
	"udta": true,
	"edts": true,
}

// OffsetPatch is one absolute-file-offset rewrite to apply while copying
// bytes verbatim: the stco/co64 chunk-offset table entries that point past
// the old meta atom must shift by the same delta the meta atom's size
// changed by, or they'd point at the wrong byte after the rewrite.
type OffsetPatch struct {
	At    int64
	Bytes []byte
}

// FindChunkOffsetPatches walks every box under moov looking for "stco"
// (32-bit offsets) and "co64" (64-bit offsets) tables, and returns a patch
// for every entry whose value is greater than threshold — i.e. every
// absolute offset that points past the start of the byte range being resized.
// Entries at or before threshold are untouched since they describe data
// that doesn't move.
func FindChunkOffsetPatches(sr *binutil.SafeReader, moov *Atom, threshold, delta int64) ([]OffsetPatch, error) {
	if delta == 0 {
		return nil, nil
	}
	var patches []OffsetPatch
	if err := walkForOffsetTables(sr, moov.DataOffset(), moov.DataOffset()+int64(moov.DataSize()), threshold, delta, &patches); err != nil {
		return nil, err
	}
	return patches, nil
}

func walkForOffsetTables(sr *binutil.SafeReader, start, end, threshold, delta int64, patches *[]OffsetPatch) error {
	offset := start
	for offset < end {
		atom, err := ReadAtomHeader(sr, offset)
		if err != nil {
			return err
		}

		switch atom.Type {
		case "stco":
			if err := patchStco(sr, atom, threshold, delta, patches); err != nil {
				return err
			}
		case "co64":
			if err := patchCo64(sr, atom, threshold, delta, patches); err != nil {
				return err
			}
		default:
			if containerAtoms[atom.Type] {
				if err := walkForOffsetTables(sr, atom.DataOffset(), atom.DataOffset()+int64(atom.DataSize()), threshold, delta, patches); err != nil {
					return err
				}
			}
		}

		if atom.Size == 0 {
			return fmt.Errorf("mp4tag: zero-size atom at %d while scanning for chunk offset tables", offset)
		}
		offset += int64(atom.Size)
	}
	return nil
}

// stco payload: version/flags(4) entryCount(4) entries(4 each)
func patchStco(sr *binutil.SafeReader, atom *Atom, threshold, delta int64, patches *[]OffsetPatch) error {
	count, err := binutil.Read[uint32](sr, atom.DataOffset()+4, "stco entry count")
	if err != nil {
		return err
	}
	base := atom.DataOffset() + 8
	for i := uint32(0); i < count; i++ {
		entryOffset := base + int64(i)*4
		val, err := binutil.Read[uint32](sr, entryOffset, "stco entry")
		if err != nil {
			return err
		}
		if int64(val) > threshold {
			newVal := int64(val) + delta
			buf := make([]byte, 4)
			binary.BigEndian.PutUint32(buf, uint32(newVal))
			*patches = append(*patches, OffsetPatch{At: entryOffset, Bytes: buf})
		}
	}
	return nil
}

// co64 payload: version/flags(4) entryCount(4) entries(8 each)
func patchCo64(sr *binutil.SafeReader, atom *Atom, threshold, delta int64, patches *[]OffsetPatch) error {
	count, err := binutil.Read[uint32](sr, atom.DataOffset()+4, "co64 entry count")
	if err != nil {
		return err
	}
	base := atom.DataOffset() + 8
	for i := uint32(0); i < count; i++ {
		entryOffset := base + int64(i)*8
		val, err := binutil.Read[uint64](sr, entryOffset, "co64 entry")
		if err != nil {
			return err
		}
		if int64(val) > threshold {
			newVal := int64(val) + delta
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, uint64(newVal))
			*patches = append(*patches, OffsetPatch{At: entryOffset, Bytes: buf})
		}
	}
	return nil
}
