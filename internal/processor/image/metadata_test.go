package image

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/photomark/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCaptureTime(t *testing.T) {
	dir := t.TempDir()
	plain := encodeTestJPEG(createTestImage(32, 32), 80)
	modTime := time.Date(2020, 3, 15, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name       string
		data       []byte
		wantSource CaptureSource
		wantLabel  string
	}{
		{
			name:       "original capture time",
			data:       withEXIF(plain, "2021:07:04 10:20:30", "2022:01:01 00:00:00"),
			wantSource: SourceEXIFOriginal,
			wantLabel:  "2021-07-04",
		},
		{
			name:       "generic exif time",
			data:       withEXIF(plain, "", "2019:12:31 23:59:59"),
			wantSource: SourceEXIFDateTime,
			wantLabel:  "2019-12-31",
		},
		{
			name:       "unparsable exif falls back to mod time",
			data:       withEXIF(plain, "yesterday", ""),
			wantSource: SourceModTime,
			wantLabel:  "2020-03-15",
		},
		{
			name:       "no metadata",
			data:       plain,
			wantSource: SourceModTime,
			wantLabel:  "2020-03-15",
		},
		{
			name:       "png",
			data:       encodeTestPNG(createTestImage(8, 8)),
			wantSource: SourceModTime,
			wantLabel:  "2020-03-15",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, dir, fmt.Sprintf("img%d.jpg", i), tt.data)
			require.NoError(t, os.Chtimes(path, modTime, modTime))

			ct, ok := ReadCaptureTime(context.Background(), path)
			require.True(t, ok)
			assert.Equal(t, tt.wantSource, ct.Source)
			assert.Equal(t, tt.wantLabel, ct.Label("2006-01-02"))
		})
	}
}

func TestReadCaptureTime_MissingFile(t *testing.T) {
	_, ok := ReadCaptureTime(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"))
	assert.False(t, ok)
}

func TestCaptureTime_Label(t *testing.T) {
	ct := CaptureTime{Time: time.Date(2023, 11, 5, 8, 9, 10, 0, time.UTC)}

	assert.Equal(t, "2023-11-05", ct.Label(""))
	assert.Equal(t, "2023/11/05", ct.Label("2006/01/02"))
	assert.Equal(t, "05.11.2023 08:09", ct.Label("02.01.2006 15:04"))
}

func TestMetadataProcessor_Process(t *testing.T) {
	p := NewMetadataProcessor(nil)
	assert.Equal(t, "metadata", p.Name())
	assert.Contains(t, p.SupportedTypes(), "image/jpeg")

	t.Run("exif jpeg", func(t *testing.T) {
		data := withEXIF(encodeTestJPEG(createTestImage(64, 48), 80), "2021:07:04 10:20:30", "")
		result, err := p.Process(context.Background(), &processor.Options{}, bytesReader(data))
		require.NoError(t, err)

		assert.Equal(t, "application/json", result.ContentType)
		assert.Equal(t, 64, result.Metadata.Width)
		assert.Equal(t, 48, result.Metadata.Height)
		assert.Equal(t, "jpeg", result.Metadata.Format)
		assert.Equal(t, string(SourceEXIFOriginal), result.Metadata.CaptureSource)

		raw, err := io.ReadAll(result.Data)
		require.NoError(t, err)
		var meta ImageMetadata
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.False(t, meta.HasAlpha)
		require.NotNil(t, meta.CapturedAt)
		assert.Equal(t, 2021, meta.CapturedAt.Year())
	})

	t.Run("mod time fallback", func(t *testing.T) {
		mod := time.Date(2018, 5, 6, 0, 0, 0, 0, time.UTC)
		result, err := p.Process(context.Background(), &processor.Options{ModTime: mod}, createTestPNG(10, 10))
		require.NoError(t, err)
		assert.Equal(t, "png", result.Metadata.Format)
		assert.Equal(t, string(SourceModTime), result.Metadata.CaptureSource)
		assert.True(t, result.Metadata.CapturedAt.Equal(mod))
	})

	t.Run("no capture time", func(t *testing.T) {
		result, err := p.Process(context.Background(), nil, createTestPNG(10, 10))
		require.NoError(t, err)
		assert.Empty(t, result.Metadata.CaptureSource)
	})

	t.Run("invalid image", func(t *testing.T) {
		_, err := p.Process(context.Background(), nil, createInvalidImage())
		assert.ErrorIs(t, err, processor.ErrCorruptedFile)
	})
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want string
	}{
		{"jpeg", encodeTestJPEG(createTestImage(4, 4), 80), "image/jpeg"},
		{"png", encodeTestPNG(createTestImage(4, 4)), "image/png"},
		{"tiff little endian", []byte("II*\x00\x08\x00\x00\x00"), "image/tiff"},
		{"tiff big endian", []byte("MM\x00*\x00\x00\x00\x08"), "image/tiff"},
		{"text", []byte("hello"), "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.head))
		})
	}
}
