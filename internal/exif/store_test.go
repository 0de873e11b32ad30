package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goexif "github.com/rwcarlsen/goexif/exif"
)

const (
	testTagMake         = 0x010F
	testTagExifIFD      = 0x8769
	testTagExposureTime = 0x829A
	testTagFNumber      = 0x829D
	testTagISO          = 0x8827
	testTagThumbOffset  = 0x0201
	testTagThumbLength  = 0x0202

	testTypeASCII    = 2
	testTypeShort    = 3
	testTypeLong     = 4
	testTypeRational = 5
)

// appendEntry encodes one 12-byte little-endian IFD entry. value holds
// either the inline value or the offset of the externally stored one.
func appendEntry(b []byte, tag, typ uint16, count, value uint32) []byte {
	b = binary.LittleEndian.AppendUint16(b, tag)
	b = binary.LittleEndian.AppendUint16(b, typ)
	b = binary.LittleEndian.AppendUint32(b, count)
	return binary.LittleEndian.AppendUint32(b, value)
}

// buildTestTIFF assembles a little-endian TIFF block with IFD0 (Make +
// EXIF pointer), an EXIF sub-IFD (FNumber 4/1, ExposureTime 1/125,
// ISO 400) and a thumbnail IFD (offset 256, length 1024).
func buildTestTIFF() []byte {
	makeVal := []byte("TestMake\x00")

	ifd0Offset := uint32(8)
	ifd0Size := uint32(2 + 2*12 + 4)
	exifOffset := ifd0Offset + ifd0Size
	exifSize := uint32(2 + 3*12 + 4)
	ifd1Offset := exifOffset + exifSize
	ifd1Size := uint32(2 + 2*12 + 4)
	makeOffset := ifd1Offset + ifd1Size
	fnumberOffset := makeOffset + uint32(len(makeVal))
	exposureOffset := fnumberOffset + 8

	tiff := []byte{'I', 'I', 42, 0}
	tiff = binary.LittleEndian.AppendUint32(tiff, ifd0Offset)

	// IFD0
	tiff = binary.LittleEndian.AppendUint16(tiff, 2)
	tiff = appendEntry(tiff, testTagMake, testTypeASCII, uint32(len(makeVal)), makeOffset)
	tiff = appendEntry(tiff, testTagExifIFD, testTypeLong, 1, exifOffset)
	tiff = binary.LittleEndian.AppendUint32(tiff, ifd1Offset) // next IFD

	// EXIF sub-IFD
	tiff = binary.LittleEndian.AppendUint16(tiff, 3)
	tiff = appendEntry(tiff, testTagExposureTime, testTypeRational, 1, exposureOffset)
	tiff = appendEntry(tiff, testTagFNumber, testTypeRational, 1, fnumberOffset)
	tiff = appendEntry(tiff, testTagISO, testTypeShort, 1, 400)
	tiff = binary.LittleEndian.AppendUint32(tiff, 0)

	// IFD1 (thumbnail)
	tiff = binary.LittleEndian.AppendUint16(tiff, 2)
	tiff = appendEntry(tiff, testTagThumbOffset, testTypeLong, 1, 256)
	tiff = appendEntry(tiff, testTagThumbLength, testTypeLong, 1, 1024)
	tiff = binary.LittleEndian.AppendUint32(tiff, 0)

	// data area
	tiff = append(tiff, makeVal...)
	tiff = binary.LittleEndian.AppendUint32(tiff, 4) // FNumber 4/1
	tiff = binary.LittleEndian.AppendUint32(tiff, 1)
	tiff = binary.LittleEndian.AppendUint32(tiff, 1) // ExposureTime 1/125
	tiff = binary.LittleEndian.AppendUint32(tiff, 125)

	return tiff
}

// buildExifJPEG wraps the test TIFF block in a minimal JPEG container.
// The TIFF header lands at file offset 12 (SOI + APP1 marker and length
// + "Exif\x00\x00").
func buildExifJPEG(t *testing.T) []byte {
	t.Helper()

	payload := append([]byte("Exif\x00\x00"), buildTestTIFF()...)
	length := len(payload) + 2
	if length > 0xFFFF {
		t.Fatalf("exif payload too large: %d", length)
	}

	jpeg := []byte{0xFF, jpegSOI}
	jpeg = append(jpeg, 0xFF, jpegAPP1, byte(length>>8), byte(length))
	jpeg = append(jpeg, payload...)
	jpeg = append(jpeg, 0xFF, 0xD9)
	return jpeg
}

func TestDecodeStoreJPEG(t *testing.T) {
	store, err := DecodeStore(bytes.NewReader(buildExifJPEG(t)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.BaseOffset(); got != 12 {
		t.Fatalf("BaseOffset() = %d, want 12", got)
	}

	if got, err := store.Text(goexif.Make); err != nil || got != "TestMake" {
		t.Fatalf("Text(Make) = %q, %v", got, err)
	}
	if got, err := store.Float(goexif.FNumber); err != nil || got != 4.0 {
		t.Fatalf("Float(FNumber) = %v, %v", got, err)
	}
	if got, err := store.Float(goexif.ExposureTime); err != nil || got != 1.0/125 {
		t.Fatalf("Float(ExposureTime) = %v, %v", got, err)
	}
	// SHORT recordings convert on float reads too.
	if got, err := store.Float(goexif.ISOSpeedRatings); err != nil || got != 400 {
		t.Fatalf("Float(ISOSpeedRatings) = %v, %v", got, err)
	}
	if got, err := store.Int(goexif.ISOSpeedRatings); err != nil || got != 400 {
		t.Fatalf("Int(ISOSpeedRatings) = %v, %v", got, err)
	}
}

func TestDecodeStoreTypedMismatchReadsAsAbsent(t *testing.T) {
	store, err := DecodeStore(bytes.NewReader(buildExifJPEG(t)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Int(goexif.Make); !IsTagNotFound(err) {
		t.Fatalf("Int(Make): expected TagNotFoundError, got %v", err)
	}
	if _, err := store.Float(goexif.BrightnessValue); !IsTagNotFound(err) {
		t.Fatalf("Float(BrightnessValue): expected TagNotFoundError, got %v", err)
	}
}

func TestDecodeStoreBareTIFF(t *testing.T) {
	store, err := DecodeStore(bytes.NewReader(buildTestTIFF()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.BaseOffset(); got != 0 {
		t.Fatalf("BaseOffset() = %d, want 0", got)
	}
	if got, err := store.Text(goexif.Make); err != nil || got != "TestMake" {
		t.Fatalf("Text(Make) = %q, %v", got, err)
	}
}

func TestThumbnailOffsetFromDecodedStore(t *testing.T) {
	store, err := DecodeStore(bytes.NewReader(buildExifJPEG(t)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := NewView(store).ThumbnailOffset()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 256+12 {
		t.Fatalf("ThumbnailOffset() = %d, want %d", got, 256+12)
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "fixture.jpg")
	if err := os.WriteFile(path, buildExifJPEG(t), 0o600); err != nil {
		t.Fatal(err)
	}

	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, err := store.Text(goexif.Make); err != nil || got != "TestMake" {
		t.Fatalf("Text(Make) = %q, %v", got, err)
	}
}

func TestOpenStoreImportError(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		data []byte
	}{
		{name: "no exif segment", path: filepath.Join(dir, "bare.jpg"), data: []byte{0xFF, 0xD8, 0xFF, 0xD9}},
		{name: "not an image", path: filepath.Join(dir, "junk.bin"), data: []byte("not an image at all")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(tt.path, tt.data, 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := OpenStore(tt.path)
			var importErr *ImportError
			if !errors.As(err, &importErr) {
				t.Fatalf("expected ImportError, got %v", err)
			}
			if importErr.Path != tt.path {
				t.Fatalf("ImportError.Path = %q, want %q", importErr.Path, tt.path)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenStore(filepath.Join(dir, "does-not-exist.jpg"))
		var importErr *ImportError
		if !errors.As(err, &importErr) {
			t.Fatalf("expected ImportError, got %v", err)
		}
	})
}
