// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/salon-go/internal/model"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngDataURL(t *testing.T, width, height int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, createTestImage(width, height)))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// pngHeaderDataURL returns a PNG that declares a width x height grayscale
// canvas but carries no pixel data.
func pngHeaderDataURL(width, height uint32) string {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth, color type 0 (grayscale)

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestNewProcessorDefaults(t *testing.T) {
	p := NewProcessor(0, -1)
	assert.Equal(t, int64(DefaultMaxBytes), p.MaxBytes)
	assert.Equal(t, DefaultMaxDimension, p.MaxDimension)
	assert.Equal(t, int64(DefaultMaxPixels), p.MaxPixels)
	assert.Equal(t, DefaultQuality, p.Quality)
}

func TestProcess_SmallImageKeepsSource(t *testing.T) {
	p := NewProcessor(1<<20, 100)
	src := pngDataURL(t, 40, 20)

	res, err := p.Process(src, "")
	require.NoError(t, err)
	assert.Equal(t, src, res.Src)
	assert.Equal(t, model.MediaImage, res.Type)
	assert.Equal(t, model.MimeTypePNG, res.MimeType)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, 20, res.Height)
}

func TestProcess_OversizedImageIsFitted(t *testing.T) {
	p := NewProcessor(1<<20, 50)
	src := pngDataURL(t, 200, 100)

	res, err := p.Process(src, model.MediaVideo)
	require.NoError(t, err)
	assert.NotEqual(t, src, res.Src)
	assert.True(t, strings.HasPrefix(res.Src, "data:image/png;base64,"))
	assert.Equal(t, model.MediaImage, res.Type, "declared MIME wins over the hint")
	assert.Equal(t, 50, res.Width)
	assert.Equal(t, 25, res.Height)

	// The re-encoded source decodes to the fitted dimensions.
	again, err := p.Process(res.Src, "")
	require.NoError(t, err)
	assert.Equal(t, res.Src, again.Src)
	assert.Equal(t, 50, again.Width)
}

func TestProcess_RejectsHugeCanvas(t *testing.T) {
	p := NewProcessor(1<<20, 1600)

	_, err := p.Process(pngHeaderDataURL(16000, 16000), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge), "got %v", err)
}

func TestProcess_PixelCap(t *testing.T) {
	p := NewProcessor(1<<20, 100)
	p.MaxPixels = 20 * 20

	_, err := p.Process(pngDataURL(t, 20, 20), "")
	require.NoError(t, err, "canvas at the cap is accepted")

	_, err = p.Process(pngDataURL(t, 21, 20), "")
	assert.True(t, errors.Is(err, ErrTooLarge), "got %v", err)
}

func TestProcess_VideoDataURLPassesThrough(t *testing.T) {
	p := NewProcessor(1024, 100)
	src := "data:video/mp4;base64," + base64.StdEncoding.EncodeToString([]byte("not really a movie"))

	res, err := p.Process(src, "")
	require.NoError(t, err)
	assert.Equal(t, src, res.Src)
	assert.Equal(t, model.MediaVideo, res.Type)
	assert.Equal(t, model.MimeTypeMP4, res.MimeType)
}

func TestProcess_SVGDataURLPassesThrough(t *testing.T) {
	p := NewProcessor(1024, 100)
	src := "data:image/svg+xml,%3Csvg%20xmlns%3D%22http%3A%2F%2Fwww.w3.org%2F2000%2Fsvg%22%2F%3E"

	res, err := p.Process(src, "")
	require.NoError(t, err)
	assert.Equal(t, src, res.Src)
	assert.Equal(t, model.MediaImage, res.Type)
}

func TestProcess_Errors(t *testing.T) {
	p := NewProcessor(16, 100)

	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"empty", "   ", ErrInvalidSource},
		{"missing comma", "data:image/png;base64", ErrInvalidSource},
		{"bad base64", "data:image/png;base64,@@@@", ErrInvalidSource},
		{"too large", "data:video/mp4;base64," + base64.StdEncoding.EncodeToString(make([]byte, 64)), ErrTooLarge},
		{"tiff declared", "data:image/tiff;base64," + base64.StdEncoding.EncodeToString([]byte("II*\x00")), ErrUnsupported},
		{"garbage image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("nope")), ErrUnsupported},
		{"pdf", "data:application/pdf;base64,JVBERi0=", ErrUnsupported},
		{"javascript", "javascript:alert(1)", ErrInvalidSource},
		{"protocol relative", "//evil.example.com/a.png", ErrInvalidSource},
		{"relative without slash", "images/a.png", ErrInvalidSource},
		{"ftp", "ftp://example.com/a.png", ErrInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Process(tt.src, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestProcess_Links(t *testing.T) {
	p := NewProcessor(0, 0)

	tests := []struct {
		name     string
		src      string
		hint     model.MediaType
		wantType model.MediaType
		wantMime string
	}{
		{"site image", "/placeholder.svg", "", model.MediaImage, model.MimeTypeSVG},
		{"site video", "/videos/salon.mp4", "", model.MediaVideo, model.MimeTypeMP4},
		{"remote jpeg", "https://cdn.example.com/hair.JPG?w=400", "", model.MediaImage, model.MimeTypeJPEG},
		{"no extension defaults to image", "https://images.example.com/photo-123", "", model.MediaImage, ""},
		{"hint wins", "/media/clip", model.MediaVideo, model.MediaVideo, ""},
		{"hint over extension", "/media/poster.png", model.MediaVideo, model.MediaVideo, model.MimeTypePNG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Process(tt.src, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.src, res.Src)
			assert.Equal(t, tt.wantType, res.Type)
			assert.Equal(t, tt.wantMime, res.MimeType)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatToMimeType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpeg", model.MimeTypeJPEG},
		{"jpg", model.MimeTypeJPEG},
		{"png", model.MimeTypePNG},
		{"gif", model.MimeTypeGIF},
		{"webp", model.MimeTypeWebP},
		{"unknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := formatToMimeType(tt.format); got != tt.want {
				t.Errorf("formatToMimeType(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestOutputFormat(t *testing.T) {
	assert.Equal(t, "jpeg", outputFormat("webp"))
	assert.Equal(t, "png", outputFormat("png"))
	assert.Equal(t, "gif", outputFormat("gif"))
}

func TestApplyOrientation(t *testing.T) {
	tests := []struct {
		orientation int
		wantW       int
		wantH       int
	}{
		{0, 10, 20},
		{1, 10, 20},
		{2, 10, 20},
		{3, 10, 20},
		{4, 10, 20},
		{5, 20, 10},
		{6, 20, 10},
		{7, 20, 10},
		{8, 20, 10},
		{9, 10, 20},
	}

	for _, tt := range tests {
		t.Run("orientation_"+string(rune('0'+tt.orientation)), func(t *testing.T) {
			result := applyOrientation(createTestImage(10, 20), tt.orientation)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantW, result.Bounds().Dx())
			assert.Equal(t, tt.wantH, result.Bounds().Dy())
		})
	}
}

func TestReadExifOrientation_NoExif(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, createTestImage(4, 4)))
	assert.Equal(t, 1, readExifOrientation(bytes.NewReader(buf.Bytes())))
}
