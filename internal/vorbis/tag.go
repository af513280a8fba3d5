package vorbis

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/kalmuthu/tagparser/internal/fieldmap"
	"github.com/kalmuthu/tagparser/internal/knownfield"
	"github.com/kalmuthu/tagparser/internal/tagval"
	"github.com/kalmuthu/tagparser/internal/types"
)

// CoverFieldID is the well-known Vorbis comment key under which cover art is
// stored when embedded directly in a comment list (Ogg Vorbis/Opus). FLAC
// moves covers into their own PICTURE metadata blocks instead; the flac
// package lifts them back into this same field id so both containers share
// one known-field mapping.
const CoverFieldID = "METADATA_BLOCK_PICTURE"

// knownFieldKeys maps the format-agnostic KnownField enumeration to its
// Vorbis comment key, per spec: Album->ALBUM, Artist->ARTIST, Year->DATE,
// Title->TITLE, Genre->GENRE, TrackPosition->TRACKNUMBER (+TRACKTOTAL),
// DiskPosition->DISCNUMBER, Composer->COMPOSER, Encoder->ENCODER,
// Lyrics->LYRICS, Cover->METADATA_BLOCK_PICTURE.
var knownFieldKeys = map[knownfield.Field]string{
	knownfield.Album:         "ALBUM",
	knownfield.Artist:        "ARTIST",
	knownfield.AlbumArtist:   "ALBUMARTIST",
	knownfield.Year:          "DATE",
	knownfield.Title:         "TITLE",
	knownfield.Genre:         "GENRE",
	knownfield.TrackPosition: "TRACKNUMBER",
	knownfield.DiskPosition:  "DISCNUMBER",
	knownfield.Composer:      "COMPOSER",
	knownfield.Encoder:       "ENCODER",
	knownfield.Bpm:           "BPM",
	knownfield.Cover:         CoverFieldID,
	knownfield.Rating:        "RATING",
	knownfield.Grouping:      "GROUPING",
	knownfield.Description:   "DESCRIPTION",
	knownfield.Comment:       "COMMENT",
	knownfield.Lyrics:        "LYRICS",
	knownfield.RecordLabel:   "LABEL",
	knownfield.Performers:    "PERFORMER",
	knownfield.Lyricist:      "LYRICIST",
}

// Flags control which optional framing bytes ParseFlagged/MakeFlagged read
// or emit, matching the three forms the comment body takes depending on
// container: a bare in-memory comment list (no flags needed by either
// caller), the Ogg Vorbis comment header packet (has a leading 7-byte
// "\x03vorbis" signature and a trailing framing byte), and the body embedded
// inside a FLAC VORBIS_COMMENT metadata block (neither signature nor framing
// byte, since the block header already delimits the length).
type Flags struct {
	NoSignature  bool
	NoFramingByte bool
	NoCovers     bool
}

// Comment is the editable Vorbis-comment tag: a vendor string plus an
// ordered, insertion-stable multimap from case-insensitive ASCII key to
// tagval.Value. Multiple values may be stored under one key (e.g. several
// METADATA_BLOCK_PICTURE entries); iteration order matches insertion order.
type Comment struct {
	Vendor string
	fields *fieldmap.Map[string, tagval.Value]
}

// New returns an empty Comment ready for editing.
func New(vendor string) *Comment {
	return &Comment{Vendor: vendor, fields: fieldmap.New[string, tagval.Value]()}
}

func normKey(key string) string { return strings.ToUpper(key) }

// Set stores a single value under key, replacing any prior value(s).
func (c *Comment) Set(key string, v tagval.Value) {
	if c.fields == nil {
		c.fields = fieldmap.New[string, tagval.Value]()
	}
	c.fields.SetOne(normKey(key), v)
}

// Add appends a value under key without removing existing ones (used for
// multi-valued fields such as covers).
func (c *Comment) Add(key string, v tagval.Value) {
	if c.fields == nil {
		c.fields = fieldmap.New[string, tagval.Value]()
	}
	c.fields.Insert(normKey(key), v)
}

// Values returns every value stored under key, in insertion order.
func (c *Comment) Values(key string) []tagval.Value {
	if c.fields == nil {
		return nil
	}
	var out []tagval.Value
	for v := range c.fields.Values(normKey(key)) {
		out = append(out, v)
	}
	return out
}

// SetKnown stores a single value under the Vorbis key for a KnownField.
func (c *Comment) SetKnown(f knownfield.Field, v tagval.Value) error {
	key, ok := knownFieldKeys[f]
	if !ok {
		return fmt.Errorf("vorbis: no known field mapping for %s", f)
	}
	c.Set(key, v)
	return nil
}

// AddCover appends a cover art entry. In the in-memory field map the picture
// is stored as a tagval.Value of kind Picture directly, not base64-encoded;
// encoding to the on-wire METADATA_BLOCK_PICTURE form only happens in Make
// (Ogg) — FLAC emits it as a PICTURE metadata block instead (see
// internal/flac), never through this comment body.
func (c *Comment) AddCover(p tagval.Picture) {
	c.Add(CoverFieldID, tagval.NewPicture(p))
}

// Covers returns every cover stored under the well-known cover key.
func (c *Comment) Covers() []tagval.Picture {
	var out []tagval.Picture
	for _, v := range c.Values(CoverFieldID) {
		if p, err := v.AsPicture(); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// All iterates every (key, value) pair in insertion order.
func (c *Comment) All() func(yield func(string, tagval.Value) bool) {
	if c.fields == nil {
		return func(func(string, tagval.Value) bool) {}
	}
	return c.fields.All()
}

// Parse decodes a Vorbis comment body per flags and returns the structured
// Comment. Layout: vendor-length u32 LE + vendor UTF-8 bytes + count u32 LE
// + count * (len u32 LE + "KEY=VALUE" UTF-8 bytes), optionally wrapped in a
// leading 7-byte signature and trailing framing byte.
func Parse(data []byte, flags Flags) (*Comment, error) {
	pos := 0
	if !flags.NoSignature {
		if len(data) < 7 || string(data[:7]) != "\x03vorbis" {
			return nil, &types.InvalidDataError{What: "vorbis comment signature", Reason: "missing \\x03vorbis signature"}
		}
		pos = 7
	}

	readU32 := func() (uint32, error) {
		if pos+4 > len(data) {
			return 0, &types.TruncatedError{What: "vorbis comment length field", Offset: int64(pos), Need: 4, Have: len(data) - pos}
		}
		v := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4
		return v, nil
	}

	vendorLen, err := readU32()
	if err != nil {
		return nil, err
	}
	if pos+int(vendorLen) > len(data) {
		return nil, &types.TruncatedError{What: "vorbis vendor string", Offset: int64(pos), Need: int(vendorLen), Have: len(data) - pos}
	}
	vendor := string(data[pos : pos+int(vendorLen)])
	pos += int(vendorLen)

	count, err := readU32()
	if err != nil {
		return nil, err
	}

	c := New(vendor)
	for i := uint32(0); i < count; i++ {
		entryLen, err := readU32()
		if err != nil {
			return nil, err
		}
		if pos+int(entryLen) > len(data) {
			return nil, &types.TruncatedError{What: "vorbis comment entry", Offset: int64(pos), Need: int(entryLen), Have: len(data) - pos}
		}
		entry := string(data[pos : pos+int(entryLen)])
		pos += int(entryLen)

		eq := strings.IndexByte(entry, '=')
		if eq == -1 {
			return nil, &types.InvalidDataError{What: "vorbis comment entry", Offset: int64(pos), Reason: "missing '='"}
		}
		key, value := entry[:eq], entry[eq+1:]

		if strings.EqualFold(key, CoverFieldID) && !flags.NoCovers {
			if pic, err := decodeBase64Picture(value); err == nil {
				c.Add(CoverFieldID, tagval.NewPicture(pic))
				continue
			}
			// Fall through to storing as text if the base64/picture blob
			// doesn't decode; better to keep the raw value than drop it.
		}
		c.Add(key, tagval.NewText(value, tagval.EncodingUtf8))
	}

	if !flags.NoFramingByte {
		if pos >= len(data) || data[pos]&0x01 == 0 {
			return nil, &types.InvalidDataError{What: "vorbis comment framing byte", Offset: int64(pos), Reason: "framing bit not set"}
		}
	}

	return c, nil
}

// Make serializes c per flags. Covers are emitted as base64-encoded
// METADATA_BLOCK_PICTURE entries unless flags.NoCovers is set (FLAC sets
// NoCovers, since it emits covers as separate PICTURE blocks instead).
func Make(c *Comment, flags Flags) []byte {
	var body []byte

	writeU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		body = append(body, b[:]...)
	}
	writeString := func(s string) {
		writeU32(uint32(len(s)))
		body = append(body, s...)
	}

	writeU32(uint32(len(c.Vendor)))
	body = append(body, c.Vendor...)

	var entries []string
	if c.fields != nil {
		for key, v := range c.fields.All() {
			if flags.NoCovers && strings.EqualFold(key, CoverFieldID) {
				continue
			}
			var text string
			if v.Kind() == tagval.KindPicture {
				pic, _ := v.AsPicture()
				text = encodeBase64Picture(pic)
			} else {
				text, _ = v.AsText(tagval.EncodingUtf8)
			}
			entries = append(entries, key+"="+text)
		}
	}

	writeU32(uint32(len(entries)))
	for _, e := range entries {
		writeString(e)
	}

	out := body
	if !flags.NoSignature {
		out = append([]byte("\x03vorbis"), body...)
	}
	if !flags.NoFramingByte {
		out = append(out, 0x01)
	}
	return out
}

// decodeBase64Picture decodes a METADATA_BLOCK_PICTURE value (base64 of a
// FLAC-style PICTURE block) into a tagval.Picture.
func decodeBase64Picture(value string) (tagval.Picture, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return tagval.Picture{}, fmt.Errorf("decode base64: %w", err)
	}
	return DecodePictureBlock(raw)
}

func encodeBase64Picture(p tagval.Picture) string {
	return base64.StdEncoding.EncodeToString(EncodePictureBlock(p))
}

// DecodePictureBlock decodes the FLAC PICTURE metadata-block body: role u32
// BE, MIME length u32 BE + MIME bytes, description length u32 BE +
// description bytes, width/height/depth/colors u32 BE x4, data length u32 BE
// + data bytes.
func DecodePictureBlock(data []byte) (tagval.Picture, error) {
	pos := 0
	readU32 := func() (uint32, error) {
		if pos+4 > len(data) {
			return 0, &types.TruncatedError{What: "picture block field", Offset: int64(pos), Need: 4, Have: len(data) - pos}
		}
		v := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4
		return v, nil
	}
	role, err := readU32()
	if err != nil {
		return tagval.Picture{}, err
	}
	mimeLen, err := readU32()
	if err != nil {
		return tagval.Picture{}, err
	}
	if pos+int(mimeLen) > len(data) {
		return tagval.Picture{}, &types.TruncatedError{What: "picture MIME", Offset: int64(pos), Need: int(mimeLen), Have: len(data) - pos}
	}
	mime := string(data[pos : pos+int(mimeLen)])
	pos += int(mimeLen)

	descLen, err := readU32()
	if err != nil {
		return tagval.Picture{}, err
	}
	if pos+int(descLen) > len(data) {
		return tagval.Picture{}, &types.TruncatedError{What: "picture description", Offset: int64(pos), Need: int(descLen), Have: len(data) - pos}
	}
	desc := string(data[pos : pos+int(descLen)])
	pos += int(descLen)

	// width, height, depth, colors — structural, not carried on tagval.Picture.
	for i := 0; i < 4; i++ {
		if _, err := readU32(); err != nil {
			return tagval.Picture{}, err
		}
	}

	dataLen, err := readU32()
	if err != nil {
		return tagval.Picture{}, err
	}
	if pos+int(dataLen) > len(data) {
		return tagval.Picture{}, &types.TruncatedError{What: "picture data", Offset: int64(pos), Need: int(dataLen), Have: len(data) - pos}
	}
	imgData := make([]byte, dataLen)
	copy(imgData, data[pos:pos+int(dataLen)])

	return tagval.Picture{
		MIME:        mime,
		Description: desc,
		Role:        types.ArtworkType(role),
		Data:        imgData,
	}, nil
}

// EncodePictureBlock is the inverse of DecodePictureBlock; width/height/
// depth/colors are not tracked on tagval.Picture and are emitted as zero,
// matching callers (image viewers) that re-derive dimensions from the image
// data itself when these fields are absent.
func EncodePictureBlock(p tagval.Picture) []byte {
	var out []byte
	putU32 := func(v uint32) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		out = append(out, b[:]...)
	}
	putU32(uint32(p.Role))
	putU32(uint32(len(p.MIME)))
	out = append(out, p.MIME...)
	putU32(uint32(len(p.Description)))
	out = append(out, p.Description...)
	putU32(0) // width
	putU32(0) // height
	putU32(0) // depth
	putU32(0) // colors
	putU32(uint32(len(p.Data)))
	out = append(out, p.Data...)
	return out
}
