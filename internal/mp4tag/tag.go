package mp4tag

import (
	"encoding/binary"
	"fmt"
	"strings"

	binutil "github.com/kalmuthu/tagparser/internal/binary"
	"github.com/kalmuthu/tagparser/internal/fieldmap"
	"github.com/kalmuthu/tagparser/internal/knownfield"
	"github.com/kalmuthu/tagparser/internal/tagval"
	"github.com/kalmuthu/tagparser/internal/types"
)

// FieldID identifies one ilst child. Code is the 4-byte atom type for
// ordinary fields ("©nam", "trkn", "covr", "gnre", ...) and "----" for
// Extended fields, in which case Mean/Name carry the mean/name pair that
// disambiguates them (e.g. mean="com.apple.iTunes", name="cdec").
type FieldID struct {
	Code string
	Mean string
	Name string
}

func (f FieldID) String() string {
	if f.Code == "----" {
		return fmt.Sprintf("----:%s:%s", f.Mean, f.Name)
	}
	return f.Code
}

// handlerLiteral is the only handler type Parse accepts without a warning.
const handlerLiteral = "mdirappl"

// knownFieldAtoms maps KnownField to its standard MP4 atom id. PreDefinedGenre
// and Genre share the same logical slot (see SetValue):
// never write both; text form wins when both are present in memory.
var knownFieldAtoms = map[knownfield.Field]string{
	knownfield.Album:         "\xA9alb",
	knownfield.Artist:        "\xA9ART",
	knownfield.AlbumArtist:   "aART",
	knownfield.Title:         "\xA9nam",
	knownfield.Year:          "\xA9day",
	knownfield.Genre:         "\xA9gen",
	knownfield.PreDefinedGenre: "gnre",
	knownfield.TrackPosition: "trkn",
	knownfield.DiskPosition:  "disk",
	knownfield.Composer:      "\xA9wrt",
	knownfield.Cover:         "covr",
	knownfield.Grouping:      "\xA9grp",
	knownfield.Comment:       "\xA9cmt",
	knownfield.Lyrics:        "\xA9lyr",
	knownfield.Bpm:           "tmpo",
}

// extendedFieldAtoms maps KnownField to an Extended (mean, name) pair for
// fields with no standard 4-byte atom id.
var extendedFieldAtoms = map[knownfield.Field][2]string{
	knownfield.EncoderSettings: {"com.apple.iTunes", "cdec"},
}

const itunesMean = "com.apple.iTunes"

// Tag is the editable MP4 iTunes-style metadata tag: the meta/hdlr/ilst
// subtree reduced to an ordered multimap of FieldID -> tagval.Value.
type Tag struct {
	HandlerVerified bool
	fields          *fieldmap.Map[FieldID, tagval.Value]
}

// New returns an empty Tag.
func New() *Tag {
	return &Tag{fields: fieldmap.New[FieldID, tagval.Value]()}
}

// Value returns the value for a KnownField. Genre prefers the text form
// over the numeric PreDefinedGenre form when both happen to be present,
// matching the source's documented precedence.
func (t *Tag) Value(f knownfield.Field) (tagval.Value, bool) {
	if f == knownfield.Genre {
		if v, ok := t.fields.First(FieldID{Code: knownFieldAtoms[knownfield.Genre]}); ok {
			return v, true
		}
		if v, ok := t.fields.First(FieldID{Code: knownFieldAtoms[knownfield.PreDefinedGenre]}); ok {
			return v, true
		}
		return tagval.Empty(), false
	}
	if atom, ok := knownFieldAtoms[f]; ok {
		return t.fields.First(FieldID{Code: atom})
	}
	if pair, ok := extendedFieldAtoms[f]; ok {
		return t.fields.First(FieldID{Code: "----", Mean: pair[0], Name: pair[1]})
	}
	return tagval.Empty(), false
}

// SetValue stores v under f's atom id. Setting Genre enforces the
// genre-exclusivity invariant: writing the text Genre field erases any
// PreDefinedGenre value and vice versa, so the two are never both present
// at make time.
func (t *Tag) SetValue(f knownfield.Field, v tagval.Value) error {
	if f == knownfield.Genre {
		t.fields.EraseAll(FieldID{Code: knownFieldAtoms[knownfield.PreDefinedGenre]})
		t.fields.SetOne(FieldID{Code: knownFieldAtoms[knownfield.Genre]}, v)
		return nil
	}
	if f == knownfield.PreDefinedGenre {
		t.fields.EraseAll(FieldID{Code: knownFieldAtoms[knownfield.Genre]})
		t.fields.SetOne(FieldID{Code: knownFieldAtoms[knownfield.PreDefinedGenre]}, v)
		return nil
	}
	if atom, ok := knownFieldAtoms[f]; ok {
		t.fields.SetOne(FieldID{Code: atom}, v)
		return nil
	}
	if pair, ok := extendedFieldAtoms[f]; ok {
		t.fields.SetOne(FieldID{Code: "----", Mean: pair[0], Name: pair[1]}, v)
		return nil
	}
	return fmt.Errorf("mp4tag: no atom mapping for %s", f)
}

// AddCover appends a cover; MP4 allows multiple covr entries and preserves
// their insertion order on write.
func (t *Tag) AddCover(p tagval.Picture) {
	t.fields.Insert(FieldID{Code: knownFieldAtoms[knownfield.Cover]}, tagval.NewPicture(p))
}

// Covers returns every cover, in insertion order.
func (t *Tag) Covers() []tagval.Picture {
	var out []tagval.Picture
	for v := range t.fields.Values(FieldID{Code: knownFieldAtoms[knownfield.Cover]}) {
		if p, err := v.AsPicture(); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// HasField reports whether a value is stored for KnownField f. Used to
// assert the genre-exclusivity invariant in tests:
// after SetValue(Genre, text), HasField(PreDefinedGenre) is false.
func (t *Tag) HasField(f knownfield.Field) bool {
	_, ok := t.Value(f)
	return ok
}

// IsEmpty reports whether the tag carries no fields at all.
func (t *Tag) IsEmpty() bool { return t.fields == nil || t.fields.IsEmpty() }

// All iterates every (FieldID, Value) pair in insertion order.
func (t *Tag) All() func(yield func(FieldID, tagval.Value) bool) {
	if t.fields == nil {
		return func(func(FieldID, tagval.Value) bool) {}
	}
	return t.fields.All()
}

// Parse walks the meta atom's children: hdlr (handler verification) and
// ilst (the iTunes metadata list).
//
// Per the corrected behavior (a known bug in the reference implementation
// tests an unassigned variable here and so never actually verifies the
// handler): hdlr lookup is always attempted. Its absence, or a handler type
// other than "mdirappl", produces a Warning but never aborts — parsing
// proceeds to ilst regardless.
func Parse(sr *binutil.SafeReader, metaAtom *Atom) (*Tag, []types.Warning, error) {
	var warnings []types.Warning
	tag := New()

	start := metaAtom.DataOffset()
	end := start + int64(metaAtom.DataSize())

	// meta's payload begins with a 4-byte version/flags field before its
	// child atoms, on every real-world MP4 file.
	childStart := start + 4

	hdlr, err := FindAtom(sr, childStart, end, "hdlr")
	if err != nil {
		warnings = append(warnings, types.Warning{
			Stage: "mp4tag", Message: "hdlr atom not found under meta", Severity: types.SeverityWarning,
		})
	} else {
		handler := make([]byte, 8)
		if err := sr.ReadAt(handler, hdlr.DataOffset()+8, "hdlr handler type"); err != nil {
			warnings = append(warnings, types.Warning{
				Stage: "mp4tag", Message: fmt.Sprintf("failed to read hdlr handler type: %v", err), Severity: types.SeverityWarning,
			})
		} else if string(handler[:8]) != handlerLiteral {
			warnings = append(warnings, types.Warning{
				Stage: "mp4tag", Message: fmt.Sprintf("unexpected hdlr handler type %q", handler), Severity: types.SeverityWarning,
			})
		} else {
			tag.HandlerVerified = true
		}
	}

	ilst, err := FindAtom(sr, childStart, end, "ilst")
	if err != nil {
		// No ilst at all: an empty-but-valid tag, matching the "Tag is
		// empty" make-side behavior for the symmetric case.
		return tag, warnings, nil
	}

	if err := parseIlst(sr, ilst, tag, &warnings); err != nil {
		return tag, warnings, err
	}

	return tag, warnings, nil
}

func parseIlst(sr *binutil.SafeReader, ilst *Atom, tag *Tag, warnings *[]types.Warning) error {
	offset := ilst.DataOffset()
	end := offset + int64(ilst.DataSize())

	for offset < end {
		item, err := ReadAtomHeader(sr, offset)
		if err != nil {
			*warnings = append(*warnings, types.Warning{
				Stage: "mp4tag", Message: fmt.Sprintf("failed to read ilst item at %d: %v", offset, err), Severity: types.SeverityCritical,
			})
			return nil
		}

		if item.Type == "----" {
			if err := parseExtendedField(sr, item, tag); err != nil {
				*warnings = append(*warnings, types.Warning{
					Stage: "mp4tag", Message: fmt.Sprintf("failed to parse extended field: %v", err), Severity: types.SeverityWarning,
				})
			}
		} else if err := parseSimpleField(sr, item, tag); err != nil {
			*warnings = append(*warnings, types.Warning{
				Stage: "mp4tag", Message: fmt.Sprintf("failed to parse %q field: %v", item.Type, err), Severity: types.SeverityWarning,
			})
		}

		offset += int64(item.Size)
	}
	return nil
}

// parseSimpleField descends into item's "data" sub-atom: version byte (0),
// type code (3 bytes), locale (4 bytes), then payload.
func parseSimpleField(sr *binutil.SafeReader, item *Atom, tag *Tag) error {
	data, err := FindAtom(sr, item.DataOffset(), item.DataOffset()+int64(item.DataSize()), "data")
	if err != nil {
		return err
	}
	if data.DataSize() < 8 {
		return nil
	}
	typeCode, err := binutil.Read[uint32](sr, data.DataOffset(), "data type code")
	if err != nil {
		return err
	}
	payloadOffset := data.DataOffset() + 8
	payloadSize := int64(data.DataSize()) - 8
	if payloadSize < 0 {
		return nil
	}
	payload := make([]byte, payloadSize)
	if payloadSize > 0 {
		if err := sr.ReadAt(payload, payloadOffset, "data payload"); err != nil {
			return err
		}
	}

	v, err := decodeDataPayload(item.Type, typeCode, payload)
	if err != nil {
		return err
	}
	if item.Type == knownFieldAtoms[knownfield.Cover] {
		tag.fields.Insert(FieldID{Code: item.Type}, v)
	} else {
		tag.fields.SetOne(FieldID{Code: item.Type}, v)
	}
	return nil
}

// decodeDataPayload interprets a data atom's well-known type codes: 1=UTF-8
// text, 21=signed/unsigned integer (width-dependent), 13/14/27=JPEG/PNG/BMP
// image, 0=implicit (trkn/disk structured binary), else opaque binary.
func decodeDataPayload(atomType string, typeCode uint32, payload []byte) (tagval.Value, error) {
	switch atomType {
	case "trkn", "disk":
		return decodeTrackDisk(payload)
	case "gnre":
		if len(payload) >= 2 {
			return tagval.NewStandardGenreIndex(int(binary.BigEndian.Uint16(payload)) - 1), nil
		}
		return tagval.Empty(), nil
	case "covr":
		mime := "image/jpeg"
		switch typeCode {
		case 14:
			mime = "image/png"
		case 27:
			mime = "image/bmp"
		}
		return tagval.NewPicture(tagval.Picture{MIME: mime, Role: types.ArtworkFrontCover, Data: payload}), nil
	}

	switch typeCode {
	case 1: // UTF-8 text
		return tagval.NewText(strings.TrimRight(string(payload), "\x00"), tagval.EncodingUtf8), nil
	case 21: // integer, width implied by payload length
		var n int64
		for _, b := range payload {
			n = n<<8 | int64(b)
		}
		return tagval.NewInteger(n), nil
	default:
		return tagval.NewBinary(payload), nil
	}
}

// decodeTrackDisk decodes the trkn/disk structured binary payload:
// [2 reserved][2 number][2 total][2 reserved].
func decodeTrackDisk(payload []byte) (tagval.Value, error) {
	if len(payload) < 6 {
		return tagval.Empty(), &types.TruncatedError{What: "trkn/disk payload", Need: 6, Have: len(payload)}
	}
	num := int(binary.BigEndian.Uint16(payload[2:4]))
	total := int(binary.BigEndian.Uint16(payload[4:6]))
	return tagval.NewPositionInSet(tagval.PositionInSet{
		Position: num, HasPosition: num != 0,
		Total: total, HasTotal: total != 0,
	}), nil
}

// parseExtendedField descends into a "----" atom's mean/name/data triplet.
func parseExtendedField(sr *binutil.SafeReader, item *Atom, tag *Tag) error {
	start := item.DataOffset()
	end := start + int64(item.DataSize())

	var mean, name string
	var payload []byte

	offset := start
	for offset < end {
		child, err := ReadAtomHeader(sr, offset)
		if err != nil {
			return err
		}
		switch child.Type {
		case "mean":
			b := make([]byte, int64(child.DataSize())-4)
			if len(b) > 0 {
				if err := sr.ReadAt(b, child.DataOffset()+4, "mean"); err == nil {
					mean = string(b)
				}
			}
		case "name":
			b := make([]byte, int64(child.DataSize())-4)
			if len(b) > 0 {
				if err := sr.ReadAt(b, child.DataOffset()+4, "name"); err == nil {
					name = string(b)
				}
			}
		case "data":
			size := int64(child.DataSize()) - 8
			if size > 0 {
				b := make([]byte, size)
				if err := sr.ReadAt(b, child.DataOffset()+8, "extended data"); err == nil {
					payload = b
				}
			}
		}
		offset += int64(child.Size)
	}

	tag.fields.SetOne(FieldID{Code: "----", Mean: mean, Name: name}, tagval.NewText(strings.TrimRight(string(payload), "\x00"), tagval.EncodingUtf8))
	return nil
}
