// Package mpegframe decodes an MPEG-audio frame header (all three versions,
// all three layers) and its optional Xing/Info auxiliary header, superseding
// the MPEG1-Layer-III-only table that used to live inline in the mp3
// package.
package mpegframe

import (
	"encoding/binary"
	"fmt"
)

// Version identifies the MPEG audio version.
type Version int

const (
	Version2_5 Version = iota
	VersionReserved
	Version2
	Version1
)

// Layer identifies the MPEG audio layer.
type Layer int

const (
	LayerReserved Layer = iota
	LayerIII
	LayerII
	LayerI
)

// ChannelMode identifies the channel configuration.
type ChannelMode int

const (
	Stereo ChannelMode = iota
	JointStereo
	DualChannel
	SingleChannel
)

// bitrateTable is indexed [versionClass][layer-1][bitrateIndex] in kbps,
// where versionClass is 0 for MPEG1 and 1 for MPEG2/2.5 (layers II and III
// of MPEG2/2.5 share one table, which is why both rows below are
// duplicated across Layer II and Layer III for versionClass 1).
var bitrateTable = [2][3][16]int{
	// MPEG1: [Layer I][Layer II][Layer III]
	{
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0},
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0},
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
	},
	// MPEG2/2.5: [Layer I][Layer II][Layer III]
	{
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
	},
}

// sampleRatesByVersion maps (Version, rateIndex) -> Hz.
var sampleRatesByVersion = map[Version][3]int{
	Version1:   {44100, 48000, 32000},
	Version2:   {22050, 24000, 16000},
	Version2_5: {11025, 12000, 8000},
}

// Header is a decoded 32-bit MPEG audio frame header.
type Header struct {
	Version      Version
	Layer        Layer
	Protected    bool // true if CRC-protected (bit 16 CLEAR means protected per spec's "CRC-protected = bit 16 cleared")
	BitrateKbps  int
	SampleRate   int
	Padding      bool
	ChannelMode  ChannelMode
	Copyright    bool
	Original     bool
	bitrateIndex int
	samplerateIndex int
}

// ErrInvalidSync is returned when the 11-bit sync pattern doesn't match.
var ErrInvalidSync = fmt.Errorf("mpegframe: invalid frame sync")

// ErrReservedField is returned when a reserved bitrate or samplerate nibble
// is encountered.
var ErrReservedField = fmt.Errorf("mpegframe: reserved field")

// Parse decodes a 32-bit big-endian frame header word.
func Parse(word uint32) (Header, error) {
	if word&0xFFE00000 != 0xFFE00000 {
		return Header{}, ErrInvalidSync
	}

	h := Header{}
	h.Version = Version((word >> 19) & 0x3)
	h.Layer = Layer((word >> 17) & 0x3)
	h.Protected = (word>>16)&0x1 == 0

	h.bitrateIndex = int((word >> 12) & 0xF)
	h.samplerateIndex = int((word >> 10) & 0x3)
	h.Padding = (word>>9)&0x1 == 1
	h.ChannelMode = ChannelMode((word >> 6) & 0x3)
	h.Copyright = (word>>3)&0x1 == 1
	h.Original = (word>>2)&0x1 == 1

	if h.Layer == LayerReserved || h.Version == VersionReserved {
		return Header{}, ErrReservedField
	}

	rates, ok := sampleRatesByVersion[h.Version]
	if !ok || h.samplerateIndex > 2 {
		return Header{}, ErrReservedField
	}
	h.SampleRate = rates[h.samplerateIndex]

	versionClass := 0
	if h.Version != Version1 {
		versionClass = 1
	}
	layerIdx := 3 - int(h.Layer) // LayerI=3 -> 0, LayerII=2 -> 1, LayerIII=1 -> 2
	if h.bitrateIndex == 0 || h.bitrateIndex == 15 {
		return Header{}, ErrReservedField
	}
	h.BitrateKbps = bitrateTable[versionClass][layerIdx][h.bitrateIndex]

	return h, nil
}

// PaddingSize returns the padding byte count this header implies: 4 bytes
// for Layer I, 1 byte for Layer II/III, when the padding bit is set.
func (h Header) PaddingSize() int {
	if !h.Padding {
		return 0
	}
	if h.Layer == LayerI {
		return 4
	}
	return 1
}

// FrameLength computes the total frame length in bytes, including header
// and padding, from the decoded bitrate and sample rate.
func (h Header) FrameLength() int {
	if h.SampleRate == 0 {
		return 0
	}
	samplesPerFrame := 1152
	slotSize := 1
	if h.Layer == LayerI {
		samplesPerFrame = 384
		slotSize = 4
	} else if h.Version != Version1 && h.Layer == LayerIII {
		samplesPerFrame = 576
	}
	bitrateBps := h.BitrateKbps * 1000
	if h.Layer == LayerI {
		return ((12*bitrateBps/h.SampleRate)+btoi(h.Padding))*slotSize
	}
	return (samplesPerFrame/8*bitrateBps)/h.SampleRate + btoi(h.Padding)
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// XingFlags indicate which optional fields follow the flags word in a
// Xing/Info auxiliary header.
type XingFlags uint32

const (
	HasFramesField XingFlags = 1 << iota
	HasBytesField
	HasTOCField
	HasQualityField
)

// XingHeader is the decoded Xing/Info auxiliary header.
type XingHeader struct {
	IsInfo     bool // true for "Info" (CBR-tagged), false for "Xing" (true VBR)
	Flags      XingFlags
	Frames     uint32
	Bytes      uint32
	TOC        [100]byte
	HasTOC     bool
	Quality    uint32
	HasQuality bool
}

// XingOffset returns the byte offset, relative to the start of the frame
// header, where the Xing/Info 4-byte magic is expected: right after the
// side-information block, whose size depends on version and channel mode.
func (h Header) XingOffset() int {
	if h.Version == Version1 {
		if h.ChannelMode == SingleChannel {
			return 4 + 17
		}
		return 4 + 32
	}
	if h.ChannelMode == SingleChannel {
		return 4 + 9
	}
	return 4 + 17
}

// ParseXing decodes a Xing/Info header from buf, which must start at the
// offset XingOffset() returned. Per the corrected behavior (the reference
// implementation checks the wrong flag bit here — HasFramesField instead of
// HasBytesField — which would read the byte-count field only when the frame
// count flag happens to also be set): the byte-count field is read
// whenever HasBytesField is actually set, independent of HasFramesField.
func ParseXing(buf []byte) (XingHeader, bool) {
	if len(buf) < 8 {
		return XingHeader{}, false
	}
	magic := string(buf[:4])
	if magic != "Xing" && magic != "Info" {
		return XingHeader{}, false
	}

	xh := XingHeader{IsInfo: magic == "Info"}
	xh.Flags = XingFlags(binary.BigEndian.Uint32(buf[4:8]))
	pos := 8

	if xh.Flags&HasFramesField != 0 {
		if pos+4 > len(buf) {
			return xh, true
		}
		xh.Frames = binary.BigEndian.Uint32(buf[pos : pos+4])
		pos += 4
	}
	if xh.Flags&HasBytesField != 0 {
		if pos+4 > len(buf) {
			return xh, true
		}
		xh.Bytes = binary.BigEndian.Uint32(buf[pos : pos+4])
		pos += 4
	}
	if xh.Flags&HasTOCField != 0 {
		if pos+100 > len(buf) {
			return xh, true
		}
		copy(xh.TOC[:], buf[pos:pos+100])
		xh.HasTOC = true
		pos += 100
	}
	if xh.Flags&HasQualityField != 0 {
		if pos+4 > len(buf) {
			return xh, true
		}
		xh.Quality = binary.BigEndian.Uint32(buf[pos : pos+4])
		xh.HasQuality = true
		pos += 4
	}

	return xh, true
}
