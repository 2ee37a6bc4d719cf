// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media normalizes the media sources attached to services and
// gallery items. Inline data URLs are size checked and images are decoded,
// oriented and fitted before being stored.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/salon-go/internal/model"
)

// Defaults used by NewProcessor when a limit is not configured.
const (
	DefaultMaxBytes     = 8 << 20
	DefaultMaxDimension = 1600
	DefaultMaxPixels    = 40_000_000
	DefaultQuality      = 85
)

// Errors returned by Process. Callers surface them as validation failures on src.
var (
	ErrInvalidSource = errors.New("media source must be a data URL, a site path or an http(s) URL")
	ErrUnsupported   = errors.New("unsupported media format")
	ErrTooLarge      = errors.New("media exceeds the maximum allowed size")
)

// Result is a normalized media source.
type Result struct {
	Src      string
	Type     model.MediaType
	MimeType string
	Width    int
	Height   int
}

// Processor validates and normalizes media sources using pure Go libraries.
type Processor struct {
	MaxBytes     int64
	MaxDimension int
	MaxPixels    int64 // declared width*height cap, checked before decoding
	Quality      int
}

// NewProcessor creates a processor. Non-positive limits fall back to defaults.
func NewProcessor(maxBytes int64, maxDimension int) *Processor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Processor{
		MaxBytes:     maxBytes,
		MaxDimension: maxDimension,
		MaxPixels:    DefaultMaxPixels,
		Quality:      DefaultQuality,
	}
}

// Process validates src and returns its normalized form.
// For data URLs the declared MIME type decides the media type. For links the
// hint wins, then the file extension, then image.
func (p *Processor) Process(src string, hint model.MediaType) (Result, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return Result{}, ErrInvalidSource
	}

	if strings.HasPrefix(strings.ToLower(src), "data:") {
		return p.processDataURL(src)
	}
	return processLink(src, hint)
}

func (p *Processor) processDataURL(src string) (Result, error) {
	mimeType, data, err := p.decodeDataURL(src)
	if err != nil {
		return Result{}, err
	}

	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return Result{Src: src, Type: model.MediaVideo, MimeType: mimeType}, nil
	case mimeType == model.MimeTypeSVG:
		// Vector icons are served as-is; there is nothing to rasterize.
		return Result{Src: src, Type: model.MediaImage, MimeType: mimeType}, nil
	case strings.HasPrefix(mimeType, "image/"):
		return p.processImage(src, data)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
}

// processImage decodes image data, applies EXIF orientation and fits it within
// MaxDimension. Images that need no change keep their original encoding.
func (p *Processor) processImage(src string, data []byte) (Result, error) {
	format := detectFormat(data)
	if format == "" {
		return Result{}, ErrUnsupported
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading image config: %v", ErrUnsupported, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Result{}, fmt.Errorf("%w: empty image", ErrUnsupported)
	}
	if int64(cfg.Width)*int64(cfg.Height) > p.maxPixels() {
		return Result{}, fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: decoding image: %v", ErrUnsupported, err)
	}

	orientation := 1
	if format == "jpeg" {
		orientation = readExifOrientation(bytes.NewReader(data))
	}

	bounds := img.Bounds()
	oversized := bounds.Dx() > p.MaxDimension || bounds.Dy() > p.MaxDimension
	if orientation == 1 && !oversized {
		return Result{
			Src:      src,
			Type:     model.MediaImage,
			MimeType: formatToMimeType(format),
			Width:    bounds.Dx(),
			Height:   bounds.Dy(),
		}, nil
	}

	img = applyOrientation(img, orientation)
	if oversized {
		img = imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
	}

	encoded, err := encodeImage(img, format, p.Quality)
	if err != nil {
		return Result{}, fmt.Errorf("encoding image: %w", err)
	}
	outFormat := outputFormat(format)
	mimeType := formatToMimeType(outFormat)

	return Result{
		Src:      "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(encoded),
		Type:     model.MediaImage,
		MimeType: mimeType,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
	}, nil
}

func (p *Processor) maxPixels() int64 {
	if p.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return p.MaxPixels
}

// decodeDataURL splits an RFC 2397 data URL into its MIME type and payload.
func (p *Processor) decodeDataURL(src string) (string, []byte, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return "", nil, ErrInvalidSource
	}
	header, payload := src[len("data:"):comma], src[comma+1:]

	params := strings.Split(header, ";")
	mimeType := strings.ToLower(strings.TrimSpace(params[0]))
	if mimeType == "" {
		mimeType = "text/plain"
	}
	isBase64 := false
	for _, param := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(param), "base64") {
			isBase64 = true
		}
	}

	if isBase64 {
		if int64(base64.StdEncoding.DecodedLen(len(payload))) > p.MaxBytes+2 {
			return "", nil, ErrTooLarge
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: bad base64 payload", ErrInvalidSource)
		}
		if int64(len(data)) > p.MaxBytes {
			return "", nil, ErrTooLarge
		}
		return mimeType, data, nil
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad percent encoding", ErrInvalidSource)
	}
	if int64(len(data)) > p.MaxBytes {
		return "", nil, ErrTooLarge
	}
	return mimeType, []byte(data), nil
}

// processLink accepts site-relative paths and absolute http(s) URLs.
func processLink(src string, hint model.MediaType) (Result, error) {
	if strings.HasPrefix(src, "//") || strings.ContainsAny(src, " \t\r\n\\") {
		return Result{}, ErrInvalidSource
	}

	u, err := url.Parse(src)
	if err != nil {
		return Result{}, ErrInvalidSource
	}
	switch {
	case u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/"):
	case (u.Scheme == "http" || u.Scheme == "https") && u.Host != "":
	default:
		return Result{}, ErrInvalidSource
	}

	mediaType := hint
	mimeType := mimeFromExtension(u.Path)
	if !mediaType.Valid() {
		mediaType = model.MediaImage
		if mimeType != "" {
			mediaType = model.MediaTypeForMime(mimeType)
		}
	}

	return Result{Src: src, Type: mediaType, MimeType: mimeType}, nil
}

func mimeFromExtension(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg":
		return model.MimeTypeJPEG
	case ".png":
		return model.MimeTypePNG
	case ".gif":
		return model.MimeTypeGIF
	case ".webp":
		return model.MimeTypeWebP
	case ".svg":
		return model.MimeTypeSVG
	case ".mp4", ".m4v":
		return model.MimeTypeMP4
	case ".webm":
		return model.MimeTypeWebM
	case ".ogv", ".ogg":
		return model.MimeTypeOgg
	case ".mov":
		return model.MimeTypeMOV
	default:
		return ""
	}
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Transpose
// 6: Rotate 90° CW
// 7: Transverse
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// outputFormat is the format an image is re-encoded to.
// There is no pure Go WebP encoder, so WebP becomes JPEG.
func outputFormat(format string) string {
	if format == "webp" {
		return "jpeg"
	}
	return format
}

// encodeImage encodes an image to bytes with the specified format and quality.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch outputFormat(format) {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// formatToMimeType converts format string to MIME type.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return model.MimeTypeJPEG
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	case "webp":
		return model.MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}
