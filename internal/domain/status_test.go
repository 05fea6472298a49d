package domain

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"", StatusDraft},
		{"  Published ", StatusPublished},
		{"PENDING_REVIEW", StatusPendingReview},
		{"scheduled", StatusScheduled},
	}
	for _, tc := range cases {
		if got := NormalizeStatus(tc.in); got != tc.want {
			t.Errorf("NormalizeStatus(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range Statuses() {
		if !IsValidStatus(string(status)) {
			t.Errorf("IsValidStatus(%s) = false", status)
		}
	}
	if IsValidStatus("archived") {
		t.Error("archived should not be a known status")
	}
	if IsValidStatus("") {
		t.Error("empty string should not be a known status")
	}
}
