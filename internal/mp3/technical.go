package mp3

import (
	"encoding/binary"
	"fmt"
	"time"

	binutil "github.com/kalmuthu/tagparser/internal/binary"
	"github.com/kalmuthu/tagparser/internal/mpegframe"
	"github.com/kalmuthu/tagparser/internal/types"
)

// parseTechnicalInfo extracts bitrate, sample rate, codec, and duration from MP3 frames.
func parseTechnicalInfo(sr *binutil.SafeReader, tagSize int64, fileSize int64, file *types.File) error {
	// Find first MP3 frame (after ID3 tag)
	frameOffset := tagSize

	// Search for MP3 frame sync (11 bits set)
	for frameOffset < fileSize-4 {
		header, err := findMP3FrameAt(sr, frameOffset)
		if err == nil {
			channels := 2
			if header.ChannelMode == mpegframe.SingleChannel {
				channels = 1
			}
			if header.BitrateKbps > 0 && header.SampleRate > 0 {
				file.Audio.Bitrate = header.BitrateKbps * 1000
				file.Audio.SampleRate = header.SampleRate
				file.Audio.Channels = channels
				file.Audio.Codec = "MP3"

				// Check for VBR header
				duration, vbr := parseVBRHeader(sr, frameOffset, header, fileSize, tagSize)
				if vbr {
					file.Audio.Duration = duration
					file.Audio.VBR = true
				} else {
					// CBR - estimate from bitrate and file size
					file.Audio.Duration = estimateCBRDuration(header.BitrateKbps*1000, fileSize, tagSize)
					file.Audio.VBR = false
				}

				return nil
			}
		}

		frameOffset++
	}

	return fmt.Errorf("no valid MP3 frame found")
}

// findMP3FrameAt attempts to read and decode an MPEG-audio frame header at
// the given offset. Unlike the MPEG1-Layer-III-only check this replaced,
// mpegframe.Parse accepts any version/layer combination.
func findMP3FrameAt(sr *binutil.SafeReader, offset int64) (mpegframe.Header, error) {
	buf := make([]byte, 4)
	if err := sr.ReadAt(buf, offset, "MP3 frame header"); err != nil {
		return mpegframe.Header{}, err
	}
	return mpegframe.Parse(binary.BigEndian.Uint32(buf))
}

// parseVBRHeader checks for Xing/Info or VBRI VBR headers and calculates
// accurate duration. The Xing byte-count field is read whenever
// HasBytesField is set, independent of HasFramesField — some decoders
// mistakenly gate the byte-count read on the frame-count flag instead;
// this one does not.
func parseVBRHeader(sr *binutil.SafeReader, frameOffset int64, header mpegframe.Header, fileSize int64, tagSize int64) (time.Duration, bool) {
	xingOffset := frameOffset + int64(header.XingOffset())
	buf := make([]byte, 136)
	if err := sr.ReadAt(buf, xingOffset, "VBR header"); err == nil {
		if xh, ok := mpegframe.ParseXing(buf); ok {
			if xh.Flags&mpegframe.HasFramesField != 0 {
				return calculateDurationFromFrames(xh.Frames, header.SampleRate), true
			}
			if xh.Flags&mpegframe.HasBytesField != 0 && xh.Bytes > 0 && header.BitrateKbps > 0 {
				return estimateCBRDuration(header.BitrateKbps*1000, int64(xh.Bytes), 0), true
			}
			return 0, false
		}
	}

	// Try VBRI header (fixed location, 32 bytes after the frame header).
	vbriOffset := frameOffset + 36
	vbriBuf := make([]byte, 32)
	if err := sr.ReadAt(vbriBuf, vbriOffset, "VBRI header"); err == nil {
		if string(vbriBuf[0:4]) == "VBRI" && len(vbriBuf) >= 18 {
			numFrames := binary.BigEndian.Uint32(vbriBuf[14:18])
			return calculateDurationFromFrames(numFrames, header.SampleRate), true
		}
	}

	return 0, false
}

// calculateDurationFromFrames calculates duration from number of frames.
func calculateDurationFromFrames(numFrames uint32, sampleRate int) time.Duration {
	if sampleRate == 0 {
		return 0
	}
	samplesPerFrame := 1152
	totalSamples := uint64(numFrames) * uint64(samplesPerFrame)
	durationSeconds := float64(totalSamples) / float64(sampleRate)
	return time.Duration(durationSeconds * float64(time.Second))
}

// estimateCBRDuration estimates duration for constant bitrate files.
func estimateCBRDuration(bitrate int, fileSize int64, tagSize int64) time.Duration {
	if bitrate == 0 {
		return 0
	}

	// Audio data size (excluding ID3 tag)
	audioSize := fileSize - tagSize

	// Duration = (audio size in bytes * 8 bits/byte) / bitrate
	durationSeconds := float64(audioSize*8) / float64(bitrate)
	return time.Duration(durationSeconds * float64(time.Second))
}
