package app

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// parseHHMM converts an "HH:mm" string to minutes since midnight.
// Longer strings ("09:00:00") are truncated to their HH:mm prefix.
func parseHHMM(s string) (int, error) {
	if len(s) < 5 {
		return 0, fmt.Errorf("invalid time string: %q", s)
	}
	t, err := time.Parse("15:04", s[:5])
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatHHMM(minutes int) string {
	minutes %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// rangesOverlap reports whether two half-open time-of-day intervals
// intersect: newStart < existingEnd && newEnd > existingStart.
func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// sessionDuration returns the length of a slot session in minutes.
// A session whose end does not come after its start crosses midnight
// and ends on the next calendar day.
func sessionDuration(startMin, endMin int) int {
	if endMin <= startMin {
		endMin += minutesPerDay
	}
	return endMin - startMin
}

// arrivalTime spreads patients evenly across the session window:
// floor(duration/maxPatients) minutes apart, with patientIndex picking
// the caller's position. The result is an "HH:mm" wall-clock string;
// positions past midnight wrap onto the next day.
func arrivalTime(startTime, endTime string, maxPatients, patientIndex int) (string, error) {
	startMin, err := parseHHMM(startTime)
	if err != nil {
		return "", err
	}
	endMin, err := parseHHMM(endTime)
	if err != nil {
		return "", err
	}
	perPatient := sessionDuration(startMin, endMin) / maxPatients
	return formatHHMM(startMin + patientIndex*perPatient), nil
}

// normalizeDate reduces a date input to UTC midnight so bookings on
// the same calendar day always compare equal. Accepts "2006-01-02" or
// a full RFC3339 timestamp.
func normalizeDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
