package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestGradeBuckets(t *testing.T) {
	cases := map[float64]string{
		100:  "Excellent",
		75:   "Excellent",
		74.9: "Good",
		50:   "Good",
		40:   "Good",
		39.9: "Poor / Needs to Improve",
		0:    "Poor / Needs to Improve",
	}
	for pct, want := range cases {
		if got := Grade(pct); got != want {
			t.Fatalf("Grade(%v) = %q, want %q", pct, got, want)
		}
	}
}

func TestScheduledOnComparesCalendarDay(t *testing.T) {
	a := Assignment{TestDate: time.Date(2026, 10, 17, 0, 0, 0, 0, time.Local)}
	if !a.ScheduledOn(time.Date(2026, 10, 17, 23, 59, 59, 0, time.Local)) {
		t.Fatalf("last second of the day should match")
	}
	if a.ScheduledOn(time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("next day should not match")
	}
	if a.ScheduledOn(time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)) {
		t.Fatalf("previous day should not match")
	}
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", ErrQuizNotFound)
	if !errors.Is(wrapped, ErrNotFound) || Message(wrapped) != "quiz not found" {
		t.Fatalf("kind lost through wrapping: %v", wrapped)
	}
	if !errors.Is(ErrAlreadySubmitted, ErrForbidden) || errors.Is(ErrAlreadySubmitted, ErrNotFound) {
		t.Fatalf("unexpected kind for ErrAlreadySubmitted")
	}
	if !Permanent(Invalid("bad")) || Permanent(errors.New("timeout")) || Permanent(ErrStore) {
		t.Fatalf("unexpected Permanent classification")
	}
	if Message(errors.New("raw")) != "" {
		t.Fatalf("plain errors carry no message")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleTeacher, RoleStudent} {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("guest").Valid() || Role("").Valid() {
		t.Fatalf("unknown roles must be invalid")
	}
}
