package image

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/photomark/internal/logger"
)

// createTestImage creates a gradient so transformations stay visible.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8(255 * x / width)
			g := uint8(255 * y / height)
			img.Set(x, y, color.RGBA{R: r, G: g, B: 128, A: 255})
		}
	}

	return img
}

func createSolidColorImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	return img
}

func encodeTestJPEG(img image.Image, quality int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	return buf.Bytes()
}

func encodeTestPNG(img image.Image) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func createTestJPEG(width, height int) io.Reader {
	return bytes.NewReader(encodeTestJPEG(createTestImage(width, height), 85))
}

func createTestPNG(width, height int) io.Reader {
	return bytes.NewReader(encodeTestPNG(createTestImage(width, height)))
}

func createInvalidImage() io.Reader {
	return bytes.NewReader([]byte("this is not an image"))
}

// createCorruptedJPEG returns a JPEG header with no image data behind it.
func createCorruptedJPEG() io.Reader {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	return bytes.NewReader(data)
}

// writeTestFile writes data under dir and returns the full path.
func writeTestFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// withEXIF splices an APP1 segment carrying the given EXIF times into a
// JPEG. Empty strings leave the tag out.
func withEXIF(jpegData []byte, dateTimeOriginal, dateTime string) []byte {
	payload := append([]byte("Exif\x00\x00"), buildTIFF(dateTimeOriginal, dateTime)...)

	var out bytes.Buffer
	out.Write(jpegData[:2])
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(jpegData[2:])
	return out.Bytes()
}

func buildTIFF(original, generic string) []byte {
	le := binary.LittleEndian

	ifd0Entries := 0
	if generic != "" {
		ifd0Entries++
	}
	if original != "" {
		ifd0Entries++
	}
	exifIFDOffset := 8 + 2 + 12*ifd0Entries + 4
	dataOffset := exifIFDOffset
	if original != "" {
		dataOffset += 2 + 12 + 4
	}

	var buf, data bytes.Buffer
	writeEntry := func(tag, typ uint16, count, value int) {
		binary.Write(&buf, le, tag)
		binary.Write(&buf, le, typ)
		binary.Write(&buf, le, uint32(count))
		binary.Write(&buf, le, uint32(value))
	}

	buf.WriteString("II")
	binary.Write(&buf, le, uint16(42))
	binary.Write(&buf, le, uint32(8))

	binary.Write(&buf, le, uint16(ifd0Entries))
	if generic != "" {
		s := generic + "\x00"
		writeEntry(0x0132, 2, len(s), dataOffset+data.Len())
		data.WriteString(s)
	}
	if original != "" {
		writeEntry(0x8769, 4, 1, exifIFDOffset)
	}
	binary.Write(&buf, le, uint32(0))

	if original != "" {
		binary.Write(&buf, le, uint16(1))
		s := original + "\x00"
		writeEntry(0x9003, 2, len(s), dataOffset+data.Len())
		data.WriteString(s)
		binary.Write(&buf, le, uint32(0))
	}

	buf.Write(data.Bytes())
	return buf.Bytes()
}

func maxAlpha(img *image.NRGBA) uint8 {
	var m uint8
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > m {
			m = img.Pix[i]
		}
	}
	return m
}

func decodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img, format
}

func newTestLogger() *slog.Logger {
	return logger.NewTestLogger()
}

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
