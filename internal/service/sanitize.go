// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	// textPolicy strips all markup from visitor and admin supplied plain text.
	textPolicy = bluemonday.StrictPolicy()

	// htmlSanitizer allows the safe subset of HTML produced by markdown rendering.
	htmlSanitizer = bluemonday.UGCPolicy()

	markdown = goldmark.New()
)

// plainText removes any HTML from s. Entities are decoded again because the
// result is served as JSON text, not HTML.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// renderDescription converts a markdown service description to sanitized HTML.
// Rendering failures fall back to the escaped plain text.
func renderDescription(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}
	return strings.TrimSpace(htmlSanitizer.Sanitize(buf.String()))
}
