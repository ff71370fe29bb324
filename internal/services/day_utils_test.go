package services

import (
	"testing"
	"time"
)

func TestDateAtLocationTruncatesToLocalMidnight(t *testing.T) {
	location, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 23:30 UTC on Mar 1 is already Mar 2 in Shanghai.
	raw := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	day := DateAtLocation(raw, location)

	if day.Year() != 2026 || day.Month() != time.March || day.Day() != 2 {
		t.Fatalf("expected 2026-03-02, got %s", day.Format("2006-01-02"))
	}
	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 {
		t.Fatalf("expected midnight, got %s", day.Format(time.RFC3339))
	}
}

func TestDayRangeIsHalfOpen(t *testing.T) {
	raw := time.Date(2026, 2, 1, 19, 35, 10, 0, time.UTC)
	start, end := DayRange(raw, time.UTC)

	if !start.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %s", start.Format(time.RFC3339))
	}
	if !end.Equal(start.AddDate(0, 0, 1)) {
		t.Fatalf("expected next-day end, got %s", end.Format(time.RFC3339))
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "same day different hours",
			a:    time.Date(2026, 1, 5, 1, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "adjacent days",
			a:    time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC),
			b:    time.Date(2026, 1, 6, 0, 1, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "reversed order is negative",
			a:    time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC),
			want: -3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b, time.UTC); got != tt.want {
				t.Fatalf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysBetweenAcrossDSTTransition(t *testing.T) {
	location, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// Spring-forward night: Mar 29 is only 23 real hours long in Berlin.
	before := time.Date(2026, 3, 28, 12, 0, 0, 0, location)
	after := time.Date(2026, 3, 29, 12, 0, 0, 0, location)

	if got := DaysBetween(before, after, location); got != 1 {
		t.Fatalf("expected 1 day across DST boundary, got %d", got)
	}
	if !IsConsecutiveDay(before, after, location) {
		t.Fatal("expected consecutive days across DST boundary")
	}
}

func TestSameDayRespectsLocation(t *testing.T) {
	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 03:00 UTC and 23:00 UTC the previous day share a New York date.
	a := time.Date(2026, 6, 2, 3, 0, 0, 0, time.UTC)
	b := time.Date(2026, 6, 1, 23, 0, 0, 0, time.UTC)

	if !SameDay(a, b, location) {
		t.Fatal("expected same New York day")
	}
	if SameDay(a, b, time.UTC) {
		t.Fatal("expected different UTC days")
	}
}
