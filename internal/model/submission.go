// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// Kind identifies one of the two moderated submission collections.
type Kind string

const (
	KindTestimony   Kind = "testimony"
	KindPrayerPoint Kind = "prayer-point"
)

// Kinds lists every submission kind.
var Kinds = []Kind{KindTestimony, KindPrayerPoint}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindTestimony || k == KindPrayerPoint
}

// BodyField is the JSON field that carries the submission text.
func (k Kind) BodyField() string {
	if k == KindPrayerPoint {
		return "prayerPoint"
	}
	return "testimony"
}

// ListField is the JSON field that carries a list of submissions.
func (k Kind) ListField() string {
	if k == KindPrayerPoint {
		return "prayerPoints"
	}
	return "testimonies"
}

// Label is the human readable name used in response messages.
func (k Kind) Label() string {
	if k == KindPrayerPoint {
		return "Prayer point"
	}
	return "Testimony"
}

// Plural is the lower-case plural used in error messages.
func (k Kind) Plural() string {
	if k == KindPrayerPoint {
		return "prayer points"
	}
	return "testimonies"
}

// Submission is a testimony or prayer point. Approved is the only state:
// false means pending, true means publicly visible.
type Submission struct {
	Kind      Kind
	ID        int64
	Body      string
	Name      *string
	Email     *string
	Approved  bool
	Version   int64
	CreatedAt time.Time
	// HTML is the rendered body, set on public listings only.
	HTML string
}

// Public returns a copy without the submitter's email.
func (s Submission) Public() Submission {
	s.Email = nil
	return s
}

// MarshalJSON names the body field after the kind, so a prayer point
// serializes as {"prayerPoint": ...} and a testimony as {"testimony": ...}.
func (s Submission) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"id":        s.ID,
		"name":      s.Name,
		"approved":  s.Approved,
		"version":   s.Version,
		"createdAt": s.CreatedAt,
	}
	m[s.Kind.BodyField()] = s.Body
	if s.Email != nil {
		m["email"] = s.Email
	}
	if s.HTML != "" {
		m["html"] = s.HTML
	}
	return json.Marshal(m)
}
