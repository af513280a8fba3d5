package flac

import (
	"io"

	"github.com/kalmuthu/tagparser/internal/registry"
	"github.com/kalmuthu/tagparser/internal/types"
)

// DefaultPaddingSize is appended after the rewritten metadata so a future
// tag edit that fits within it can use the in-place fast path instead of a
// full rewrite.
const DefaultPaddingSize = 1024

// writer implements registry.FormatWriter for FLAC files.
type writer struct{}

// Write rebuilds the FLAC metadata chain from file.Tags and file.Artwork_,
// preserving every non-tag metadata block (STREAMINFO, SEEKTABLE,
// CUESHEET, APPLICATION, ...) and the audio frames that follow them
// untouched.
func (writer) Write(w io.Writer, file *types.File, original io.ReaderAt, originalSize int64) error {
	vendor := file.Vendor_
	if vendor == "" {
		vendor = "tagparser"
	}
	comment := BuildComment(vendor, file)
	plan, err := PrepareMaking(original, originalSize, comment, DefaultPaddingSize)
	if err != nil {
		return err
	}

	if err := Make(w, original, originalSize, plan); err != nil {
		return err
	}

	// Copy the audio-frame region: everything in the original file after
	// its own metadata-block chain, found by re-walking it the same way
	// PrepareMaking did.
	audioOffset, err := findAudioOffset(original, originalSize)
	if err != nil {
		return err
	}
	return copyRemainder(w, original, audioOffset, originalSize)
}

func init() {
	registry.RegisterWriter(types.FormatFLAC, writer{})
}
