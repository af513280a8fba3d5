package flac

import (
	"bytes"
	"testing"

	"github.com/kalmuthu/tagparser/internal/tagval"
	"github.com/kalmuthu/tagparser/internal/vorbis"
)

// minimalFLACNoTags builds "fLaC" + a last STREAMINFO block with no
// VORBIS_COMMENT/PICTURE/PADDING, followed by fake audio bytes.
func minimalFLACNoTags(audio []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write(blockHeader(blockTypeStreamInfo, true, 34))
	buf.Write(make([]byte, 34))
	buf.Write(audio)
	return buf.Bytes()
}

func TestPrepareMakingKeepsStreamInfoAndAppendsTrailer(t *testing.T) {
	audio := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	src := minimalFLACNoTags(audio)

	comment := vorbis.New("test encoder")
	comment.Set("TITLE", tagval.NewText("A Title", tagval.EncodingUtf8))

	plan, err := PrepareMaking(bytes.NewReader(src), int64(len(src)), comment, 0)
	if err != nil {
		t.Fatalf("PrepareMaking: %v", err)
	}
	if len(plan.keep) != 1 {
		t.Fatalf("got %d kept blocks, want 1 (STREAMINFO)", len(plan.keep))
	}

	var out bytes.Buffer
	if err := Make(&out, bytes.NewReader(src), int64(len(src)), plan); err != nil {
		t.Fatalf("Make: %v", err)
	}
	if plan.Size != int64(out.Len()) {
		t.Fatalf("plan.Size=%d but wrote %d bytes", plan.Size, out.Len())
	}

	written := out.Bytes()
	if string(written[:4]) != "fLaC" {
		t.Fatal("expected fLaC signature to be preserved")
	}

	audioOffset, err := findAudioOffset(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		t.Fatalf("findAudioOffset: %v", err)
	}
	if !bytes.Equal(written[4:audioOffset], src[4:audioOffset]) {
		t.Fatal("expected STREAMINFO header+body to be copied byte-identical")
	}
}

func TestMakeTrailerRejectsOversizedBody(t *testing.T) {
	comment := vorbis.New("v")
	huge := make([]byte, 0x01000000)
	comment.Set("COMMENT", tagval.NewText(string(huge), tagval.EncodingUtf8))

	if _, err := makeTrailer(comment, 0); err == nil {
		t.Fatal("expected error for a VORBIS_COMMENT body exceeding the 24-bit size field")
	}
}

func TestMakePaddingMinimumSize(t *testing.T) {
	pad := MakePadding(2, true)
	if len(pad) != 4 {
		t.Fatalf("got %d bytes, want 4 (minimum header-only padding block)", len(pad))
	}
}

func TestMakeTrailerWithCoverIsNotLastWhenPaddingFollows(t *testing.T) {
	comment := vorbis.New("v")
	comment.AddCover(tagval.Picture{MIME: "image/jpeg", Data: []byte{1, 2, 3}})

	trailer, err := makeTrailer(comment, 16)
	if err != nil {
		t.Fatalf("makeTrailer: %v", err)
	}
	// The PICTURE block header follows the VORBIS_COMMENT block and must not
	// carry isLast, since the padding block comes after it.
	commentLen := int(trailer[1])<<16 | int(trailer[2])<<8 | int(trailer[3])
	pictureHeader := trailer[4+commentLen]
	if pictureHeader&0x7F != blockTypePicture {
		t.Fatalf("got block type %d after VORBIS_COMMENT, want PICTURE", pictureHeader&0x7F)
	}
	if pictureHeader>>7 == 1 {
		t.Fatal("expected the PICTURE block not to carry isLast when padding follows")
	}
	// The final 4+12=16 bytes should be the padding block header+body.
	paddingHeader := trailer[len(trailer)-16 : len(trailer)-12]
	isLast := paddingHeader[0]>>7 == 1
	if !isLast {
		t.Fatal("expected the trailing PADDING block to carry isLast")
	}
}
