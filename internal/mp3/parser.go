package mp3

import (
	"io"

	"github.com/kalmuthu/tagparser"
	binutil "github.com/kalmuthu/tagparser/internal/binary"
)

// parser implements the tagparser.FormatParser interface
type parser struct{}

// Parse parses a single MP3 file and extracts metadata
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*tagparser.File, error) {
	// Create safe reader
	sr := binutil.NewSafeReader(r, size, path)

	// Initialize file
	file := &tagparser.File{
		Path:   path,
		Format: tagparser.FormatMP3,
		Size:   size,
		Tags:   tagparser.Tags{},
		Audio:  tagparser.AudioInfo{},
	}

	// Parse ID3v2 tag (if present)
	tagSize, err := parseID3v2(sr, file)
	if err != nil {
		// Not an ID3v2 file or parse error
		// Try to find MP3 frames anyway
		file.Warnings = append(file.Warnings, tagparser.Warning{
			Stage:   "metadata",
			Message: "ID3v2 parsing failed: " + err.Error(),
		})
		tagSize = 0
	}

	// Parse MP3 frame headers for technical info (bitrate, duration, etc.)
	if err := parseTechnicalInfo(sr, tagSize, size, file); err != nil {
		file.Warnings = append(file.Warnings, tagparser.Warning{
			Stage:   "technical",
			Message: "failed to parse MP3 technical info: " + err.Error(),
		})
	}

	// Apply fallbacks
	// If no narrator from TXXX, use composer
	if file.Tags.Narrator == "" && len(file.Tags.Composers) > 0 {
		file.Tags.Narrator = file.Tags.Composers[0]
	}

	return file, nil
}

// ExtractArtwork always returns no artwork and no error: APIC frames are not
// read.
func (p *parser) ExtractArtwork(r io.ReaderAt, size int64, path string) ([]tagparser.Artwork, error) {
	return nil, nil
}

// init registers the MP3 parser
func init() {
	tagparser.RegisterParser(tagparser.FormatMP3, &parser{})
}
