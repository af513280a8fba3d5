// Package knownfield defines the format-agnostic KnownField enumeration
// that every back-end's Tag maps its own FieldId vocabulary onto, so callers
// can say "Title" without knowing whether the underlying file is FLAC, MP4,
// or Ogg.
package knownfield

// Field is the format-agnostic known-field enumeration.
type Field int

const (
	Album Field = iota
	Artist
	AlbumArtist
	Year
	Title
	Genre
	PreDefinedGenre // MP4-only numeric genre; Genre (text) wins if both set.
	TrackPosition
	DiskPosition
	Composer
	Encoder
	EncoderSettings
	Bpm
	Cover
	Rating
	Grouping
	Description
	Comment
	Lyrics
	RecordLabel
	Performers
	Lyricist
)

var names = map[Field]string{
	Album:           "Album",
	Artist:          "Artist",
	AlbumArtist:     "AlbumArtist",
	Year:            "Year",
	Title:           "Title",
	Genre:           "Genre",
	PreDefinedGenre: "PreDefinedGenre",
	TrackPosition:   "TrackPosition",
	DiskPosition:    "DiskPosition",
	Composer:        "Composer",
	Encoder:         "Encoder",
	EncoderSettings: "EncoderSettings",
	Bpm:             "Bpm",
	Cover:           "Cover",
	Rating:          "Rating",
	Grouping:        "Grouping",
	Description:     "Description",
	Comment:         "Comment",
	Lyrics:          "Lyrics",
	RecordLabel:     "RecordLabel",
	Performers:      "Performers",
	Lyricist:        "Lyricist",
}

func (f Field) String() string {
	if n, ok := names[f]; ok {
		return n
	}
	return "Unknown"
}
