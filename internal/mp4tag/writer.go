package mp4tag

import (
	"fmt"
	"io"
	"sort"

	binutil "github.com/kalmuthu/tagparser/internal/binary"
	"github.com/kalmuthu/tagparser/internal/registry"
	"github.com/kalmuthu/tagparser/internal/types"
)

// writer implements registry.FormatWriter for M4A/M4B files: it locates
// the existing moov/udta/meta atom subtree, replaces it with a freshly
// serialized one built from the File's current Tags/Artwork_, and patches
// every stco/co64 chunk-offset table entry that the size change shifted.
type writer struct{}

func (writer) Write(w io.Writer, file *types.File, original io.ReaderAt, originalSize int64) error {
	sr := binutil.NewSafeReader(original, originalSize, file.Path)

	moov, err := FindAtom(sr, 0, originalSize, "moov")
	if err != nil {
		return fmt.Errorf("mp4tag write: %w", err)
	}
	udta, err := FindAtom(sr, moov.DataOffset(), moov.DataOffset()+int64(moov.DataSize()), "udta")
	if err != nil {
		return fmt.Errorf("mp4tag write: file has no udta atom to hold metadata: %w", err)
	}
	meta, err := FindAtom(sr, udta.DataOffset(), udta.DataOffset()+int64(udta.DataSize()), "meta")
	if err != nil {
		return fmt.Errorf("mp4tag write: file has no meta atom under udta: %w", err)
	}

	tag := BuildTag(file)
	plan, err := PrepareMaking(tag)
	if err != nil {
		return fmt.Errorf("mp4tag write: %w", err)
	}

	oldMetaSize := int64(meta.Size)
	newMetaSize := int64(plan.Size())
	delta := newMetaSize - oldMetaSize

	var patches []OffsetPatch
	if delta != 0 {
		patches, err = FindChunkOffsetPatches(sr, moov, meta.Offset, delta)
		if err != nil {
			return fmt.Errorf("mp4tag write: patching chunk offsets: %w", err)
		}
	}

	var sizePatches []OffsetPatch
	sizePatches = append(sizePatches, boxSizePatch(moov, delta), boxSizePatch(udta, delta))
	patches = append(patches, sizePatches...)
	sort.Slice(patches, func(i, j int) bool { return patches[i].At < patches[j].At })

	if err := copyWithPatches(w, original, 0, meta.Offset, patches); err != nil {
		return fmt.Errorf("mp4tag write: %w", err)
	}

	if err := Make(w, plan); err != nil {
		return fmt.Errorf("mp4tag write: %w", err)
	}

	if err := copyWithPatches(w, original, meta.Offset+oldMetaSize, originalSize, patches); err != nil {
		return fmt.Errorf("mp4tag write: %w", err)
	}

	return nil
}

// boxSizePatch returns the patch that rewrites atom's 32-bit size field to
// account for delta. MP4 files with extended (64-bit) moov/udta sizes are
// rare enough in practice that this assumes the common 32-bit case.
func boxSizePatch(atom *Atom, delta int64) OffsetPatch {
	newSize := uint32(int64(atom.Size) + delta)
	buf := make([]byte, 4)
	buf[0] = byte(newSize >> 24)
	buf[1] = byte(newSize >> 16)
	buf[2] = byte(newSize >> 8)
	buf[3] = byte(newSize)
	return OffsetPatch{At: atom.Offset, Bytes: buf}
}

// copyWithPatches copies original[start:end) to w, substituting the bytes
// of any patch whose range falls within [start, end). Patches must be
// sorted by offset and must not overlap each other.
func copyWithPatches(w io.Writer, original io.ReaderAt, start, end int64, patches []OffsetPatch) error {
	pos := start
	for _, p := range patches {
		if p.At < pos || p.At+int64(len(p.Bytes)) > end {
			continue
		}
		if err := copyRange(w, original, pos, p.At); err != nil {
			return err
		}
		if _, err := w.Write(p.Bytes); err != nil {
			return err
		}
		pos = p.At + int64(len(p.Bytes))
	}
	return copyRange(w, original, pos, end)
}

func copyRange(w io.Writer, original io.ReaderAt, start, end int64) error {
	if end <= start {
		return nil
	}
	buf := make([]byte, end-start)
	if _, err := original.ReadAt(buf, start); err != nil {
		return fmt.Errorf("read [%d:%d): %w", start, end, err)
	}
	_, err := w.Write(buf)
	return err
}

func init() {
	registry.RegisterWriter(types.FormatM4A, writer{})
	registry.RegisterWriter(types.FormatM4B, writer{})
}
