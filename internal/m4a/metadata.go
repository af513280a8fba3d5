package m4a

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kalmuthu/tagparser/internal/binary"
	"github.com/kalmuthu/tagparser/internal/types"
)

// parseMetadataTag extracts the string value from an iTunes metadata tag atom
func parseMetadataTag(sr *binary.SafeReader, tagAtom *Atom) (string, error) {
	// Tag atoms contain a "data" atom with the actual value
	// Format: tag atom → data atom → version/flags → value

	if tagAtom.DataSize() == 0 {
		return "", nil
	}

	// Find data atom inside tag
	dataAtom, err := findAtom(sr, tagAtom.DataOffset(), tagAtom.DataOffset()+int64(tagAtom.DataSize()), "data")
	if err != nil {
		// No data atom found - return empty
		return "", nil
	}

	// Skip version (1 byte) + flags (3 bytes) + reserved (4 bytes) = 8 bytes
	valueOffset := dataAtom.DataOffset() + 8
	valueSize := int64(dataAtom.DataSize()) - 8

	if valueSize <= 0 {
		return "", nil
	}

	// Read the string value
	buf := make([]byte, valueSize)
	if err := sr.ReadAt(buf, valueOffset, "metadata value"); err != nil {
		return "", err
	}

	// Trim null bytes and whitespace
	value := string(buf)
	value = strings.TrimRight(value, "\x00")
	value = strings.TrimSpace(value)

	return value, nil
}

// standardGenres is the ID3v1 genre table, indexed by the numeric genre
// index the legacy "gnre" atom stores (one less than the on-disk value,
// which is 1-based so 0 can mean "absent").
var standardGenres = [...]string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel",
	"Noise", "AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic",
	"Darkwave", "Techno-Industrial", "Electronic", "Pop-Folk",
	"Eurodance", "Dream", "Southern Rock", "Comedy", "Cult", "Gangsta",
	"Top 40", "Christian Rap", "Pop/Funk", "Jungle", "Native American",
	"Cabaret", "New Wave", "Psychedelic", "Rave", "Showtunes", "Trailer",
	"Lo-Fi", "Tribal", "Acid Punk", "Acid Jazz", "Polka", "Retro",
	"Musical", "Rock & Roll", "Hard Rock", "Folk", "Folk-Rock",
	"National Folk", "Swing", "Fast Fusion", "Bebob", "Latin", "Revival",
	"Celtic", "Bluegrass", "Avantgarde", "Gothic Rock", "Progressive Rock",
	"Psychedelic Rock", "Symphonic Rock", "Slow Rock", "Big Band",
	"Chorus", "Easy Listening", "Acoustic", "Humour", "Speech", "Chanson",
	"Opera", "Chamber Music", "Sonata", "Symphony", "Booty Bass", "Primus",
	"Porn Groove", "Satire", "Slow Jam", "Club", "Tango", "Samba",
	"Folklore", "Ballad", "Power Ballad", "Rhythmic Soul", "Freestyle",
	"Duet", "Punk Rock", "Drum Solo", "A capella", "Euro-House", "Dance Hall",
	"Goa", "Drum & Bass", "Club-House", "Hardcore", "Terror", "Indie",
	"Britpop", "Negerpunk", "Polsk Punk", "Beat", "Christian Gangsta Rap",
	"Heavy Metal", "Black Metal", "Crossover", "Contemporary Christian",
	"Christian Rock ", "Merengue", "Salsa", "Thrash Metal", "Anime", "JPop",
	"Synthpop",
}

// extractIlstMetadata parses all metadata items from the ilst atom
func extractIlstMetadata(sr *binary.SafeReader, ilstAtom *Atom, file *types.File) error {
	offset := ilstAtom.DataOffset()
	end := offset + int64(ilstAtom.DataSize())

	for offset < end {
		// Read tag atom
		tagAtom, err := readAtomHeader(sr, offset)
		if err != nil {
			return err
		}

		// Handle special binary tags
		switch tagAtom.Type {
		case "trkn":
			// Track number requires special binary parsing
			trackData, err := parseTrackNumber(sr, tagAtom)
			if err == nil {
				file.Tags.TrackNumber = trackData.Number
				file.Tags.TrackTotal = trackData.Total
				file.Tags.Set(tagAtom.Type, fmt.Sprintf("%d/%d", trackData.Number, trackData.Total))
			}
		case "gnre":
			// Legacy numeric genre: a 2-byte big-endian index, 1-based.
			// Resolved to its standard genre name so it lands in the same
			// Genres field the text "\xA9gen" atom populates.
			name, err := parsePredefinedGenre(sr, tagAtom)
			if err == nil && name != "" {
				file.Tags.Genres = append(file.Tags.Genres, name)
				file.Tags.Set(tagAtom.Type, name)
			}
		default:
			// Parse as text tag
			value, err := parseMetadataTag(sr, tagAtom)
			if err != nil {
				file.Warnings = append(file.Warnings, types.Warning{
					Stage:   "metadata",
					Message: fmt.Sprintf("failed to parse tag %s: %v", tagAtom.Type, err),
				})
			} else {
				// Map tag to metadata field
				mapTagToField(tagAtom.Type, value, file)
			}
		}

		// Move to next tag
		offset += int64(tagAtom.Size)
	}

	return nil
}

// mapTagToField maps an iTunes tag to the appropriate metadata field
// Note: In MP4, © is represented as byte 0xA9, so "©nam" is "\xA9nam" in Go strings
func mapTagToField(tag string, value string, file *types.File) {
	file.Tags.Set(tag, value)
	switch tag {
	case "\xA9nam": // Title (©nam)
		file.Tags.Title = value
	case "\xA9ART": // Artist (©ART)
		file.Tags.Artist = value
	case "\xA9alb": // Album (©alb)
		file.Tags.Album = value
	case "\xA9gen": // Genre (©gen)
		file.Tags.Genres = append(file.Tags.Genres, value)
	case "\xA9cmt": // Comment (©cmt)
		file.Tags.Comment = value
	case "\xA9wrt": // Composer (©wrt)
		file.Tags.Composers = append(file.Tags.Composers, value)
	case "\xA9day": // Year (©day)
		if year, err := strconv.Atoi(value); err == nil {
			file.Tags.Year = year
		}
	}
}

// TrackData holds track number information
type TrackData struct {
	Number int
	Total  int
}

// parseTrackNumber extracts track number and total from trkn atom
func parseTrackNumber(sr *binary.SafeReader, atom *Atom) (TrackData, error) {
	result := TrackData{}

	// Find data atom
	dataAtom, err := findAtom(sr, atom.DataOffset(), atom.DataOffset()+int64(atom.DataSize()), "data")
	if err != nil {
		return result, err
	}

	// Skip version (1) + flags (3) + reserved (4) = 8 bytes
	offset := dataAtom.DataOffset() + 8

	// Track number structure:
	// [2 bytes] reserved
	// [2 bytes] track number
	// [2 bytes] track total
	// [2 bytes] reserved

	offset += 2 // skip reserved

	trackNum, err := binary.Read[uint16](sr, offset, "track number")
	if err != nil {
		return result, err
	}
	result.Number = int(trackNum)
	offset += 2

	trackTotal, err := binary.Read[uint16](sr, offset, "track total")
	if err != nil {
		return result, err
	}
	result.Total = int(trackTotal)

	return result, nil
}

// parsePredefinedGenre extracts the standard genre name from a gnre atom's
// 2-byte big-endian index. The on-disk value is 1-based; an out-of-range or
// zero index yields an empty string rather than an error, since some
// encoders write a zero index to mean "unset".
func parsePredefinedGenre(sr *binary.SafeReader, atom *Atom) (string, error) {
	dataAtom, err := findAtom(sr, atom.DataOffset(), atom.DataOffset()+int64(atom.DataSize()), "data")
	if err != nil {
		return "", err
	}

	// Skip version (1) + flags (3) + reserved (4) = 8 bytes
	offset := dataAtom.DataOffset() + 8

	index, err := binary.Read[uint16](sr, offset, "predefined genre index")
	if err != nil {
		return "", err
	}
	if index == 0 || int(index) > len(standardGenres) {
		return "", nil
	}
	return standardGenres[index-1], nil
}
