// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// SuspiciousItem is a stored record whose text matches a known attack pattern.
type SuspiciousItem struct {
	ID      int64  `json:"id"`
	Label   string `json:"label"`
	Preview string `json:"preview"`
}

// ScanReport groups suspicious records by collection.
type ScanReport struct {
	Posts        []SuspiciousItem `json:"posts"`
	Testimonies  []SuspiciousItem `json:"testimonies"`
	PrayerPoints []SuspiciousItem `json:"prayerPoints"`
}

// Total returns the number of suspicious records across collections.
func (r ScanReport) Total() int {
	return len(r.Posts) + len(r.Testimonies) + len(r.PrayerPoints)
}

// PreviewLen is the number of runes kept in SuspiciousItem.Preview.
const PreviewLen = 100

// Preview truncates s to PreviewLen runes.
func Preview(s string) string {
	r := []rune(s)
	if len(r) <= PreviewLen {
		return s
	}
	return string(r[:PreviewLen]) + "..."
}
