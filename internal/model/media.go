// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// MediaType is the kind of media referenced by a service icon or gallery item.
type MediaType string

// Supported media types
const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypeSVG  = "image/svg+xml"
	MimeTypeMP4  = "video/mp4"
	MimeTypeWebM = "video/webm"
	MimeTypeOgg  = "video/ogg"
	MimeTypeMOV  = "video/quicktime"
)

// Valid reports whether t is a supported media type.
func (t MediaType) Valid() bool {
	return t == MediaImage || t == MediaVideo
}

// ParseMediaType parses a media type name. Unknown values return false.
func ParseMediaType(s string) (MediaType, bool) {
	t := MediaType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// MediaTypeForMime maps a MIME type to a media type.
// Anything that is not image/* is treated as video, matching the upload widgets.
func MediaTypeForMime(mime string) MediaType {
	if strings.HasPrefix(strings.ToLower(mime), "image/") {
		return MediaImage
	}
	return MediaVideo
}
