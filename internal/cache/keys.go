// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "strconv"

// Cache keys for public content lists.
const (
	KeyServices   = "content:services"
	KeyGallery    = "content:gallery"
	PrefixReviews = "content:reviews:"
)

// ReviewsKey returns the key for the latest reviews list of the given size.
func ReviewsKey(limit int) string {
	return PrefixReviews + strconv.Itoa(limit)
}
