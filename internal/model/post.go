// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Post is a blog-style entry. Published only ever moves from false to true.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostAuthor is the public view of a post's author. It carries the display
// name only so public feeds never leak addresses.
type PostAuthor struct {
	Name string `json:"name"`
}

// FeedPost is a post as shown to readers: the public feed, or a single
// post page.
type FeedPost struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	HTML      string     `json:"html"`
	Published bool       `json:"published"`
	CreatedAt time.Time  `json:"createdAt"`
	Author    PostAuthor `json:"author"`
}

// Feed limits
const (
	DefaultFeedLimit = 6
	MaxFeedLimit     = 50
)

// ClampFeedLimit applies the feed default and upper bound.
func ClampFeedLimit(limit int) int {
	if limit < 1 {
		return DefaultFeedLimit
	}
	return min(limit, MaxFeedLimit)
}
