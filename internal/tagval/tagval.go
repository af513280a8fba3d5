// Package tagval implements the discriminated tag-value model shared by the
// FLAC, MP4, and Vorbis-comment back-ends: a single holder type that can
// carry text, an integer, a position-in-set pair, a standard genre index, a
// picture, or an opaque binary blob, with lossless conversions between views
// where one exists.
package tagval

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kalmuthu/tagparser/internal/types"
)

// Kind discriminates the value a Value holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindInteger
	KindPositionInSet
	KindStandardGenreIndex
	KindTimeSpan
	KindDateTime
	KindPicture
	KindBinary
	KindUndefined
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindText:
		return "Text"
	case KindInteger:
		return "Integer"
	case KindPositionInSet:
		return "PositionInSet"
	case KindStandardGenreIndex:
		return "StandardGenreIndex"
	case KindTimeSpan:
		return "TimeSpan"
	case KindDateTime:
		return "DateTime"
	case KindPicture:
		return "Picture"
	case KindBinary:
		return "Binary"
	default:
		return "Undefined"
	}
}

// Encoding names the text encoding a Text value is declared to carry.
type Encoding int

const (
	EncodingUnspecified Encoding = iota
	EncodingLatin1
	EncodingUtf8
	EncodingUtf16LE
	EncodingUtf16BE
)

// PositionInSet is a (position, total) pair, either of which may be absent
// (represented as 0 with its corresponding Has flag false).
type PositionInSet struct {
	Position    int
	HasPosition bool
	Total       int
	HasTotal    bool
}

func (p PositionInSet) String() string {
	switch {
	case p.HasPosition && p.HasTotal:
		return fmt.Sprintf("%d/%d", p.Position, p.Total)
	case p.HasPosition:
		return fmt.Sprintf("%d", p.Position)
	default:
		return ""
	}
}

// Role classifies what a Picture value depicts, mirroring the FLAC/ID3
// picture-type vocabulary (see types.ArtworkType, which this deliberately
// matches so FLAC <-> Vorbis <-> MP4 conversions never need a table).
type Role = types.ArtworkType

// Picture is binary image data plus a MIME hint and role.
type Picture struct {
	MIME        string
	Description string
	Role        Role
	Data        []byte
}

// Value is the discriminated tag-value union described by the data model:
// kind ∈ {Empty, Text, Integer, PositionInSet, StandardGenreIndex, TimeSpan,
// DateTime, Picture, Binary, Undefined}.
type Value struct {
	kind     Kind
	text     string
	encoding Encoding
	integer  int64
	pos      PositionInSet
	genre    int
	picture  Picture
	binary   []byte
}

// Empty returns the Empty value (kind=Empty per the data-model invariant).
func Empty() Value { return Value{kind: KindEmpty} }

// IsEmpty reports whether v is the Empty value.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Kind returns v's discriminant.
func (v Value) Kind() Kind { return v.kind }

// NewText constructs a Text value with the given declared encoding.
func NewText(s string, enc Encoding) Value {
	return Value{kind: KindText, text: s, encoding: enc}
}

// NewInteger constructs an Integer value.
func NewInteger(i int64) Value { return Value{kind: KindInteger, integer: i} }

// NewPositionInSet constructs a PositionInSet value.
func NewPositionInSet(p PositionInSet) Value { return Value{kind: KindPositionInSet, pos: p} }

// NewStandardGenreIndex constructs a StandardGenreIndex value (ID3/MP4
// numeric genre table index, 0-based per the original genre list).
func NewStandardGenreIndex(idx int) Value { return Value{kind: KindStandardGenreIndex, genre: idx} }

// NewPicture constructs a Picture value.
func NewPicture(p Picture) Value { return Value{kind: KindPicture, picture: p} }

// NewBinary constructs an opaque Binary value.
func NewBinary(b []byte) Value { return Value{kind: KindBinary, binary: b} }

// AsText returns the value transcoded to the requested encoding.
//
// Latin1 <-> Utf8 is always lossless for the Latin-1 subset of Unicode.
// Utf16LE/Utf16BE round through golang.org/x/text/encoding/unicode, which
// correctly handles surrogate pairs the hand-rolled byte-pair decoders in
// the rest of this tree do not attempt. Integer, PositionInSet, and
// StandardGenreIndex values convert to their decimal string form, matching
// the losslessness the data model promises for those kinds; Picture and
// Binary cannot produce a text view and return ConversionError.
func (v Value) AsText(want Encoding) (string, error) {
	switch v.kind {
	case KindText:
		return transcode(v.text, v.encoding, want)
	case KindInteger:
		return fmt.Sprintf("%d", v.integer), nil
	case KindPositionInSet:
		return v.pos.String(), nil
	case KindStandardGenreIndex:
		return fmt.Sprintf("%d", v.genre), nil
	default:
		return "", &types.ConversionError{FromKind: v.kind.String(), ToKind: "Text", Reason: "no lossless text representation"}
	}
}

// AsInteger returns the value as an int64, when the value is an Integer,
// StandardGenreIndex, or a Text value holding a decimal integer literal.
func (v Value) AsInteger() (int64, error) {
	switch v.kind {
	case KindInteger:
		return v.integer, nil
	case KindStandardGenreIndex:
		return int64(v.genre), nil
	case KindText:
		var n int64
		if _, err := fmt.Sscanf(v.text, "%d", &n); err == nil {
			return n, nil
		}
		return 0, &types.ConversionError{FromKind: "Text", ToKind: "Integer", Reason: "not a decimal integer"}
	default:
		return 0, &types.ConversionError{FromKind: v.kind.String(), ToKind: "Integer", Reason: "no numeric representation"}
	}
}

// AsPositionInSet returns the value as a PositionInSet.
func (v Value) AsPositionInSet() (PositionInSet, error) {
	if v.kind != KindPositionInSet {
		return PositionInSet{}, &types.ConversionError{FromKind: v.kind.String(), ToKind: "PositionInSet", Reason: "kind mismatch"}
	}
	return v.pos, nil
}

// AsPicture returns the value as a Picture.
func (v Value) AsPicture() (Picture, error) {
	if v.kind != KindPicture {
		return Picture{}, &types.ConversionError{FromKind: v.kind.String(), ToKind: "Picture", Reason: "kind mismatch"}
	}
	return v.picture, nil
}

// AsBinary returns the raw bytes backing Picture or Binary values.
func (v Value) AsBinary() ([]byte, error) {
	switch v.kind {
	case KindBinary:
		return v.binary, nil
	case KindPicture:
		return v.picture.Data, nil
	default:
		return nil, &types.ConversionError{FromKind: v.kind.String(), ToKind: "Binary", Reason: "no binary representation"}
	}
}

// transcode converts s from "from" to "to", both declared text encodings.
func transcode(s string, from, to Encoding) (string, error) {
	if from == to || to == EncodingUnspecified {
		return s, nil
	}
	// Normalize source to UTF-8 first.
	utf8, err := toUTF8(s, from)
	if err != nil {
		return "", err
	}
	if to == EncodingUtf8 || to == EncodingUnspecified {
		return utf8, nil
	}
	return fromUTF8(utf8, to)
}

func toUTF8(s string, from Encoding) (string, error) {
	switch from {
	case EncodingUnspecified, EncodingUtf8, EncodingLatin1:
		// Latin1 is a strict byte-for-codepoint subset of Unicode below
		// U+0100; Go strings are already UTF-8 once each Latin1 byte is
		// widened to a rune, which is exactly what a []byte->string
		// conversion through []rune does.
		if from == EncodingLatin1 {
			return latin1ToUTF8(s), nil
		}
		return s, nil
	case EncodingUtf16BE:
		return decodeUTF16(s, unicode.BigEndian)
	case EncodingUtf16LE:
		return decodeUTF16(s, unicode.LittleEndian)
	default:
		return "", &types.ConversionError{FromKind: "Text", ToKind: "Text", Reason: "unknown source encoding"}
	}
}

func fromUTF8(s string, to Encoding) (string, error) {
	switch to {
	case EncodingLatin1:
		return utf8ToLatin1(s)
	case EncodingUtf16BE:
		return encodeUTF16(s, unicode.BigEndian)
	case EncodingUtf16LE:
		return encodeUTF16(s, unicode.LittleEndian)
	default:
		return s, nil
	}
}

func decodeUTF16(s string, endian unicode.Endianness) (string, error) {
	dec := unicode.UTF16(endian, unicode.IgnoreBOM).NewDecoder()
	out, _, err := transform.String(dec, s)
	if err != nil {
		return "", fmt.Errorf("decode utf-16: %w", err)
	}
	return out, nil
}

func encodeUTF16(s string, endian unicode.Endianness) (string, error) {
	enc := unicode.UTF16(endian, unicode.IgnoreBOM).NewEncoder()
	out, _, err := transform.String(enc, s)
	if err != nil {
		return "", fmt.Errorf("encode utf-16: %w", err)
	}
	return out, nil
}

func latin1ToUTF8(s string) string {
	runes := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		runes[i] = rune(s[i])
	}
	return string(runes)
}

func utf8ToLatin1(s string) (string, error) {
	runes := []rune(s)
	out := make([]byte, 0, len(runes))
	for _, r := range runes {
		if r > 0xFF {
			return "", &types.ConversionError{FromKind: "Text", ToKind: "Latin1", Reason: "codepoint outside Latin-1 range"}
		}
		out = append(out, byte(r))
	}
	return string(out), nil
}
