package app

import (
	"encoding/json"
	"testing"
)

func TestParseHHMM(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 9 * 60, false},
		{"00:00", 0, false},
		{"23:59", 23*60 + 59, false},
		{"09:00:00.000000", 9 * 60, false},
		{"9:00", 0, true},
		{"", 0, true},
		{"25:00", 0, true},
	}
	for _, tc := range cases {
		got, err := parseHHMM(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseHHMM(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseHHMM(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseHHMM(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSessionDuration(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"09:00", "17:00", 480},
		{"22:00", "02:00", 240}, // crosses midnight
		{"10:00", "10:00", 1440},
		{"23:30", "00:30", 60},
	}
	for _, tc := range cases {
		startMin, err := parseHHMM(tc.start)
		if err != nil {
			t.Fatalf("parseHHMM(%q): %v", tc.start, err)
		}
		endMin, err := parseHHMM(tc.end)
		if err != nil {
			t.Fatalf("parseHHMM(%q): %v", tc.end, err)
		}
		if got := sessionDuration(startMin, endMin); got != tc.want {
			t.Errorf("sessionDuration(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestArrivalTimeEvenSpread(t *testing.T) {
	// 09:00-17:00 with 4 patients spreads arrivals 120 minutes apart
	want := []string{"09:00", "11:00", "13:00", "15:00"}
	for i, w := range want {
		got, err := arrivalTime("09:00", "17:00", 4, i)
		if err != nil {
			t.Fatalf("arrivalTime index %d: %v", i, err)
		}
		if got != w {
			t.Errorf("arrivalTime index %d = %s, want %s", i, got, w)
		}
	}
}

func TestArrivalTimeMidnightSession(t *testing.T) {
	// 22:00-02:00 is a 240 minute session; the second of two patients
	// arrives at midnight on the next day
	got, err := arrivalTime("22:00", "02:00", 2, 1)
	if err != nil {
		t.Fatalf("arrivalTime: %v", err)
	}
	if got != "00:00" {
		t.Errorf("arrivalTime = %s, want 00:00", got)
	}
}

func TestArrivalTimeFloorsPerPatient(t *testing.T) {
	// 90 minutes / 4 patients = 22 minutes each, remainder dropped
	got, err := arrivalTime("10:00", "11:30", 4, 3)
	if err != nil {
		t.Fatalf("arrivalTime: %v", err)
	}
	if got != "11:06" {
		t.Errorf("arrivalTime = %s, want 11:06", got)
	}
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"partial overlap", "10:00", "11:00", "10:30", "11:30", true},
		{"contained", "10:00", "12:00", "10:30", "11:00", true},
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"adjacent", "10:00", "11:00", "11:00", "12:00", false},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
	}
	for _, tc := range cases {
		aStart, _ := parseHHMM(tc.aStart)
		aEnd, _ := parseHHMM(tc.aEnd)
		bStart, _ := parseHHMM(tc.bStart)
		bEnd, _ := parseHHMM(tc.bEnd)
		if got := rangesOverlap(aStart, aEnd, bStart, bEnd); got != tc.want {
			t.Errorf("%s: rangesOverlap = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	d, err := normalizeDate("2025-03-10")
	if err != nil {
		t.Fatalf("normalizeDate: %v", err)
	}
	if d.Hour() != 0 || d.Minute() != 0 || d.Day() != 10 {
		t.Errorf("normalizeDate = %v, want midnight on the 10th", d)
	}

	// RFC3339 input collapses to the same UTC day
	d2, err := normalizeDate("2025-03-10T15:30:00Z")
	if err != nil {
		t.Fatalf("normalizeDate rfc3339: %v", err)
	}
	if !d2.Equal(d) {
		t.Errorf("normalizeDate rfc3339 = %v, want %v", d2, d)
	}

	if _, err := normalizeDate("10/03/2025"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestParseDayOfWeek(t *testing.T) {
	cases := []struct {
		in      string
		want    DayOfWeek
		wantErr bool
	}{
		{"Monday", Monday, false},
		{"Sunday", Sunday, false},
		{"0", Sunday, false},
		{"6", Saturday, false},
		{"7", "", true},
		{"-1", "", true},
		{"monday", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseDayOfWeek(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDayOfWeek(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDayOfWeek(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDayOfWeek(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDayOfWeekUnmarshalJSON(t *testing.T) {
	var payload struct {
		Day DayOfWeek `json:"day"`
	}

	if err := json.Unmarshal([]byte(`{"day":"Wednesday"}`), &payload); err != nil {
		t.Fatalf("unmarshal name: %v", err)
	}
	if payload.Day != Wednesday {
		t.Errorf("day = %q, want Wednesday", payload.Day)
	}

	if err := json.Unmarshal([]byte(`{"day":3}`), &payload); err != nil {
		t.Fatalf("unmarshal index: %v", err)
	}
	if payload.Day != Wednesday {
		t.Errorf("day = %q, want Wednesday", payload.Day)
	}

	if err := json.Unmarshal([]byte(`{"day":9}`), &payload); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if err := json.Unmarshal([]byte(`{"day":true}`), &payload); err == nil {
		t.Error("expected error for non string/number day")
	}
}
