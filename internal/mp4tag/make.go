package mp4tag

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kalmuthu/tagparser/internal/knownfield"
	"github.com/kalmuthu/tagparser/internal/tagval"
	"github.com/kalmuthu/tagparser/internal/types"
)

// hdlrLiteral is the fixed 37-byte hdlr atom body this maker always emits:
// size(4) type(4) version/flags(4) predefined(4) handlerType(4)="mdirappl"(8)
// reserved(12) name(1, empty pascal string) = 37 bytes total including the
// 8-byte size+type header.
func hdlrLiteral() []byte {
	b := make([]byte, 37)
	binary.BigEndian.PutUint32(b[0:4], 37)
	copy(b[4:8], "hdlr")
	// b[8:12] version/flags = 0
	// b[12:16] predefined = 0
	copy(b[16:24], handlerLiteral)
	// b[24:36] reserved = 0
	b[36] = 0 // empty pascal-style name
	return b
}

// BuildTag translates a File's structured Tags/Artwork into an editable
// Tag ready for PrepareMaking. Genre is written as text (Genre), never as
// the numeric PreDefinedGenre form, matching what every modern encoder
// actually emits.
func BuildTag(file *types.File) *Tag {
	t := New()
	set := func(f knownfield.Field, s string) {
		if s != "" {
			_ = t.SetValue(f, tagval.NewText(s, tagval.EncodingUtf8))
		}
	}

	set(knownfield.Title, file.Tags.Title)
	set(knownfield.Artist, file.Tags.Artist)
	set(knownfield.AlbumArtist, file.Tags.AlbumArtist)
	set(knownfield.Album, file.Tags.Album)
	set(knownfield.Comment, file.Tags.Comment)
	set(knownfield.Grouping, file.Tags.Grouping)
	set(knownfield.Lyrics, file.Tags.Lyrics)
	if file.Tags.Year > 0 {
		set(knownfield.Year, fmt.Sprintf("%d", file.Tags.Year))
	}
	if len(file.Tags.Composers) > 0 {
		set(knownfield.Composer, file.Tags.Composers[0])
	}
	if len(file.Tags.Genres) > 0 {
		set(knownfield.Genre, file.Tags.Genres[0])
	}
	if file.Tags.TrackNumber > 0 || file.Tags.TrackTotal > 0 {
		_ = t.SetValue(knownfield.TrackPosition, tagval.NewPositionInSet(tagval.PositionInSet{
			Position: file.Tags.TrackNumber, Total: file.Tags.TrackTotal,
		}))
	}
	if file.Tags.DiscNumber > 0 || file.Tags.DiscTotal > 0 {
		_ = t.SetValue(knownfield.DiskPosition, tagval.NewPositionInSet(tagval.PositionInSet{
			Position: file.Tags.DiscNumber, Total: file.Tags.DiscTotal,
		}))
	}

	for _, art := range file.Artwork_ {
		t.AddCover(tagval.Picture{
			MIME:        art.MIMEType,
			Description: art.Description,
			Role:        art.Type,
			Data:        art.Data,
		})
	}

	return t
}

// fieldPlan is one precomputed ilst child: the already-serialized bytes for
// its atom, ready to be written verbatim.
type fieldPlan struct {
	bytes []byte
}

// Plan is the result of PrepareMaking: metaSize and the exact bytes of
// every piece, computed up front so Make is a pure emit.
type Plan struct {
	metaSize int
	ilstSize int
	fields   []fieldPlan
	omitIlst bool
	Warnings []types.Warning
}

// Size returns the total byte length Make will write (the full meta atom,
// header included).
func (p *Plan) Size() int { return p.metaSize }

// PrepareMaking computes the exact serialized size of tag and a plan for
// emitting it. Genre exclusivity is enforced structurally by Tag.SetValue
// (only one of Genre/PreDefinedGenre can be present at a time), so
// omitPreDefinedGenre here is a defensive re-check, not the primary
// enforcement mechanism — it matches the ilstSize/metaSize bookkeeping the
// reference maker keeps as an explicit, separately computed field.
func PrepareMaking(tag *Tag) (*Plan, error) {
	plan := &Plan{}

	// HasField(Genre) also reports a gnre-only tag, so look for the text atom
	// itself.
	_, hasGenreText := tag.fields.First(FieldID{Code: knownFieldAtoms[knownfield.Genre]})
	omitPreDefinedGenre := hasGenreText && tag.HasField(knownfield.PreDefinedGenre)

	for id, v := range tag.All() {
		if omitPreDefinedGenre && id.Code == knownFieldAtoms[knownfield.PreDefinedGenre] {
			continue
		}
		fieldBytes, err := makeField(id, v)
		if err != nil {
			plan.Warnings = append(plan.Warnings, types.Warning{
				Stage: "mp4tag", Message: fmt.Sprintf("skipping field %s: %v", id, err), Severity: types.SeverityWarning,
			})
			continue
		}
		plan.fields = append(plan.fields, fieldPlan{bytes: fieldBytes})
		plan.ilstSize += len(fieldBytes)
	}
	plan.ilstSize += 8 // ilst header itself

	plan.omitIlst = len(plan.fields) == 0
	if plan.omitIlst {
		plan.Warnings = append(plan.Warnings, types.Warning{
			Stage: "mp4tag", Message: "Tag is empty.", Severity: types.SeverityWarning,
		})
		plan.metaSize = 8 + 37
	} else {
		plan.metaSize = 8 + 37 + plan.ilstSize
	}

	return plan, nil
}

// Make emits the meta atom (header, fixed hdlr literal, and ilst if
// non-empty) to w.
func Make(w io.Writer, plan *Plan) error {
	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[0:4], uint32(plan.metaSize))
	copy(header[4:8], "meta")
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("mp4tag make: write meta header: %w", err)
	}

	if _, err := w.Write(hdlrLiteral()); err != nil {
		return fmt.Errorf("mp4tag make: write hdlr: %w", err)
	}

	if plan.omitIlst {
		return nil
	}

	ilstHeader := make([]byte, 8)
	binary.BigEndian.PutUint32(ilstHeader[0:4], uint32(plan.ilstSize))
	copy(ilstHeader[4:8], "ilst")
	if _, err := w.Write(ilstHeader); err != nil {
		return fmt.Errorf("mp4tag make: write ilst header: %w", err)
	}

	for _, f := range plan.fields {
		if _, err := w.Write(f.bytes); err != nil {
			return fmt.Errorf("mp4tag make: write field: %w", err)
		}
	}
	return nil
}

// makeField serializes one ilst child atom. Ordinary fields are
// `size+type` + a single "data" sub-atom (version=0, type code, locale=0,
// payload). Extended fields additionally carry "mean" and "name"
// sub-atoms ahead of "data".
func makeField(id FieldID, v tagval.Value) ([]byte, error) {
	typeCode, payload, err := encodeDataPayload(id, v)
	if err != nil {
		return nil, err
	}

	dataAtom := makeDataAtom(typeCode, payload)

	if id.Code != "----" {
		atomType := id.Code
		size := 8 + len(dataAtom)
		out := make([]byte, 8, size)
		binary.BigEndian.PutUint32(out[0:4], uint32(size))
		copy(out[4:8], atomType)
		out = append(out, dataAtom...)
		return out, nil
	}

	meanAtom := makeMeanOrName("mean", id.Mean)
	nameAtom := makeMeanOrName("name", id.Name)
	size := 8 + len(meanAtom) + len(nameAtom) + len(dataAtom)
	out := make([]byte, 8, size)
	binary.BigEndian.PutUint32(out[0:4], uint32(size))
	copy(out[4:8], "----")
	out = append(out, meanAtom...)
	out = append(out, nameAtom...)
	out = append(out, dataAtom...)
	return out, nil
}

func makeDataAtom(typeCode uint32, payload []byte) []byte {
	size := 8 + 8 + len(payload)
	out := make([]byte, 8, size)
	binary.BigEndian.PutUint32(out[0:4], uint32(size))
	copy(out[4:8], "data")
	head := make([]byte, 8)
	binary.BigEndian.PutUint32(head[0:4], typeCode)
	// head[4:8] locale = 0
	out = append(out, head...)
	out = append(out, payload...)
	return out
}

func makeMeanOrName(atomType, value string) []byte {
	payload := append([]byte{0, 0, 0, 0}, []byte(value)...) // 4-byte version/flags
	size := 8 + len(payload)
	out := make([]byte, 8, size)
	binary.BigEndian.PutUint32(out[0:4], uint32(size))
	copy(out[4:8], atomType)
	out = append(out, payload...)
	return out
}

// encodeDataPayload returns the data atom's well-known type code and raw
// payload bytes for v, keyed by id so trkn/disk/gnre/covr keep their
// structured binary forms instead of falling through to UTF-8 text.
func encodeDataPayload(id FieldID, v tagval.Value) (uint32, []byte, error) {
	switch id.Code {
	case "trkn", "disk":
		pos, err := v.AsPositionInSet()
		if err != nil {
			return 0, nil, err
		}
		payload := make([]byte, 8)
		binary.BigEndian.PutUint16(payload[2:4], uint16(pos.Position))
		binary.BigEndian.PutUint16(payload[4:6], uint16(pos.Total))
		return 0, payload, nil
	case "gnre":
		n, err := v.AsInteger()
		if err != nil {
			return 0, nil, err
		}
		payload := make([]byte, 2)
		binary.BigEndian.PutUint16(payload, uint16(n+1))
		return 0, payload, nil
	case "covr":
		pic, err := v.AsPicture()
		if err != nil {
			return 0, nil, err
		}
		typeCode := uint32(13) // JPEG
		switch pic.MIME {
		case "image/png":
			typeCode = 14
		case "image/bmp":
			typeCode = 27
		}
		return typeCode, pic.Data, nil
	default:
		text, err := v.AsText(tagval.EncodingUtf8)
		if err != nil {
			return 0, nil, err
		}
		return 1, []byte(text), nil
	}
}
