// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

func TestKindFields(t *testing.T) {
	tests := []struct {
		kind      Kind
		bodyField string
		listField string
		label     string
	}{
		{KindTestimony, "testimony", "testimonies", "Testimony"},
		{KindPrayerPoint, "prayerPoint", "prayerPoints", "Prayer point"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if !tt.kind.Valid() {
				t.Errorf("Valid() = false")
			}
			if got := tt.kind.BodyField(); got != tt.bodyField {
				t.Errorf("BodyField() = %q, want %q", got, tt.bodyField)
			}
			if got := tt.kind.ListField(); got != tt.listField {
				t.Errorf("ListField() = %q, want %q", got, tt.listField)
			}
			if got := tt.kind.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
		})
	}

	if Kind("post").Valid() {
		t.Error(`Kind("post").Valid() = true, want false`)
	}
}

func TestSubmissionMarshalJSON(t *testing.T) {
	name := "Jo"
	email := "jo@example.com"
	s := Submission{
		Kind:  KindPrayerPoint,
		ID:    7,
		Body:  "Pray for healing",
		Name:  &name,
		Email: &email,
	}

	var got map[string]any
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got["prayerPoint"] != "Pray for healing" {
		t.Errorf("prayerPoint = %v, want %q", got["prayerPoint"], "Pray for healing")
	}
	if _, ok := got["testimony"]; ok {
		t.Error("prayer point must not carry a testimony field")
	}
	if got["email"] != email {
		t.Errorf("email = %v, want %q", got["email"], email)
	}
	if _, ok := got["html"]; ok {
		t.Error("html should be omitted when empty")
	}

	data, err = json.Marshal(s.Public())
	if err != nil {
		t.Fatalf("Marshal(Public): %v", err)
	}
	got = nil
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := got["email"]; ok {
		t.Error("public submission must not expose email")
	}
	if s.Email == nil {
		t.Error("Public() must not modify the receiver")
	}
}
