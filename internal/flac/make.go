package flac

import (
	"fmt"
	"io"

	"github.com/kalmuthu/tagparser/internal/binary"
	"github.com/kalmuthu/tagparser/internal/tagval"
	"github.com/kalmuthu/tagparser/internal/types"
	"github.com/kalmuthu/tagparser/internal/vorbis"
)

// copyBlock describes one original metadata block to be copied verbatim
// into the rewritten stream: everything except VORBIS_COMMENT, PICTURE, and
// PADDING, which are regenerated from the in-memory tag instead.
type copyBlock struct {
	headerOffset int64 // offset of the 4-byte block header in the source
	totalLen     int64 // 4 (header) + dataSize
}

// Plan is the result of PrepareMaking: every byte this maker will write is
// already known, so Make only needs to copy bytes and then append the
// precomputed trailer. Any mutation of the Comment between PrepareMaking
// and Make is a contract violation, per the two-phase make/prepareMaking
// pattern shared by every back-end in this tree.
type Plan struct {
	keep    []copyBlock
	trailer []byte
	Size    int64 // total size of the file Make will produce
}

// PrepareMaking walks the original FLAC metadata-block chain starting right
// after the "fLaC" signature and computes the exact plan for a rewrite:
// every non-VorbisComment/Picture/Padding block is kept verbatim, and a
// fresh VorbisComment block followed by zero or more Picture blocks (one per
// cover, in insertion order) replaces whatever tag blocks existed before.
// paddingSize, if > 0, appends a trailing PADDING block of that many bytes
// total (header included) so a future in-place edit has room to grow into.
func PrepareMaking(r io.ReaderAt, size int64, comment *vorbis.Comment, paddingSize int) (*Plan, error) {
	sr := binary.NewSafeReader(r, size, "")

	plan := &Plan{}
	offset := int64(4) // after "fLaC"

	for offset < size {
		header, err := binary.Read[uint32](sr, offset, "metadata block header")
		if err != nil {
			return nil, fmt.Errorf("flac make: read block header at %d: %w", offset, err)
		}
		isLast := (header >> 31) == 1
		blockType := uint8((header >> 24) & 0x7F)
		blockLength := int64(header & 0x00FFFFFF)

		if blockType != blockTypeVorbisComment && blockType != blockTypePicture && blockType != blockTypePadding {
			plan.keep = append(plan.keep, copyBlock{headerOffset: offset, totalLen: 4 + blockLength})
		}

		offset += 4 + blockLength
		if isLast {
			break
		}
	}

	trailer, err := makeTrailer(comment, paddingSize)
	if err != nil {
		return nil, err
	}
	plan.trailer = trailer

	plan.Size = 4 // signature
	for _, b := range plan.keep {
		plan.Size += b.totalLen
	}
	plan.Size += int64(len(plan.trailer))

	return plan, nil
}

// makeTrailer serializes the VorbisComment block followed by one Picture
// block per cover (insertion order, last one carrying isLast if no padding
// follows) and an optional trailing PADDING block.
func makeTrailer(comment *vorbis.Comment, paddingSize int) ([]byte, error) {
	covers := comment.Covers()

	body := vorbis.Make(comment, vorbis.Flags{NoSignature: true, NoFramingByte: true, NoCovers: true})
	if len(body) > 0x00FFFFFF {
		return nil, &types.InvalidDataError{What: "VORBIS_COMMENT block", Reason: "body exceeds 24-bit size field"}
	}

	var out []byte
	lastBlock := len(covers) == 0 && paddingSize == 0
	out = append(out, blockHeader(blockTypeVorbisComment, lastBlock, len(body))...)
	out = append(out, body...)

	for i, pic := range covers {
		picBody := vorbis.EncodePictureBlock(pic)
		if len(picBody) > 0x00FFFFFF {
			return nil, &types.InvalidDataError{What: "PICTURE block", Reason: "body exceeds 24-bit size field"}
		}
		last := i == len(covers)-1 && paddingSize == 0
		out = append(out, blockHeader(blockTypePicture, last, len(picBody))...)
		out = append(out, picBody...)
	}

	if paddingSize > 0 {
		out = append(out, MakePadding(paddingSize, true)...)
	}

	return out, nil
}

// blockHeader builds the 4-byte metadata block header: bit 7 of byte 0 is
// isLast, bits 0-6 are the block type, bytes 1-3 are the big-endian
// dataSize.
func blockHeader(blockType uint8, isLast bool, dataSize int) []byte {
	var b uint32
	if isLast {
		b |= 1 << 31
	}
	b |= uint32(blockType&0x7F) << 24
	b |= uint32(dataSize) & 0x00FFFFFF
	return []byte{byte(b >> 24), byte(b >> 16), byte(b >> 8), byte(b)}
}

// MakePadding serializes a PADDING metadata block whose total size
// (header included) is size bytes: a 4-byte header with dataSize=size-4,
// followed by size-4 zero bytes. size must be at least 4.
func MakePadding(size int, isLast bool) []byte {
	if size < 4 {
		size = 4
	}
	out := blockHeader(blockTypePadding, isLast, size-4)
	out = append(out, make([]byte, size-4)...)
	return out
}

// Make emits the rewritten file to w: the "fLaC" signature, every kept
// original block copied verbatim from r, then the precomputed trailer.
func Make(w io.Writer, r io.ReaderAt, size int64, plan *Plan) error {
	sr := binary.NewSafeReader(r, size, "")

	if _, err := w.Write([]byte("fLaC")); err != nil {
		return fmt.Errorf("flac make: write signature: %w", err)
	}

	buf := make([]byte, 0, 4096)
	for _, b := range plan.keep {
		if cap(buf) < int(b.totalLen) && b.totalLen < 1<<20 {
			buf = make([]byte, b.totalLen)
		}
		region := buf
		if int64(len(region)) != b.totalLen {
			region = make([]byte, b.totalLen)
		}
		if err := sr.ReadAt(region, b.headerOffset, "flac metadata block copy"); err != nil {
			return fmt.Errorf("flac make: copy block at %d: %w", b.headerOffset, err)
		}
		if _, err := w.Write(region); err != nil {
			return fmt.Errorf("flac make: write block: %w", err)
		}
	}

	if _, err := w.Write(plan.trailer); err != nil {
		return fmt.Errorf("flac make: write trailer: %w", err)
	}
	return nil
}

// findAudioOffset returns the offset of the first byte after the original
// metadata-block chain (i.e. where the audio frames begin), by walking
// block headers the same way Parse and PrepareMaking do. Advance is
// authoritative: the offset always moves by exactly 4+dataSize per block,
// regardless of block type.
func findAudioOffset(r io.ReaderAt, size int64) (int64, error) {
	sr := binary.NewSafeReader(r, size, "")
	offset := int64(4)
	for offset < size {
		header, err := binary.Read[uint32](sr, offset, "metadata block header")
		if err != nil {
			return 0, fmt.Errorf("flac make: locate audio offset: %w", err)
		}
		isLast := (header >> 31) == 1
		blockLength := int64(header & 0x00FFFFFF)
		offset += 4 + blockLength
		if isLast {
			break
		}
	}
	return offset, nil
}

// copyRemainder streams r[from:to) to w in bounded chunks.
func copyRemainder(w io.Writer, r io.ReaderAt, from, to int64) error {
	const chunk = 64 * 1024
	buf := make([]byte, chunk)
	for from < to {
		n := int64(len(buf))
		if to-from < n {
			n = to - from
		}
		if _, err := r.ReadAt(buf[:n], from); err != nil && err != io.EOF {
			return fmt.Errorf("flac make: copy audio data at %d: %w", from, err)
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return fmt.Errorf("flac make: write audio data: %w", err)
		}
		from += n
	}
	return nil
}

// BuildComment constructs a vorbis.Comment from a parsed file's aggregated
// Tags view, for round-tripping through Make. It is intentionally lossy in
// the same way the aggregated Tags view is: fields the flat Tags struct
// doesn't carry (arbitrary raw Vorbis keys beyond the ones already captured
// in file.Tags' raw map) are carried through via Tags.All().
func BuildComment(vendor string, file *types.File) *vorbis.Comment {
	c := vorbis.New(vendor)
	for key, values := range file.Tags.All() {
		for _, v := range values {
			c.Add(key, tagval.NewText(v, tagval.EncodingUtf8))
		}
	}
	for _, art := range file.Artwork_ {
		c.AddCover(tagval.Picture{
			MIME:        art.MIMEType,
			Description: art.Description,
			Role:        art.Type,
			Data:        art.Data,
		})
	}
	return c
}
