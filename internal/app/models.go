package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DayOfWeek is the canonical weekday enum. The API accepts either the
// name ("Monday") or a numeric index (Sun=0..Sat=6); both are
// normalized at the boundary and only the name is stored.
type DayOfWeek string

const (
	Sunday    DayOfWeek = "Sunday"
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
)

var dayNames = [7]DayOfWeek{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// ParseDayOfWeek normalizes a weekday name or a "0".."6" index.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return "", fmt.Errorf("day of week index out of range: %d", n)
		}
		return dayNames[n], nil
	}
	for _, d := range dayNames {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid day of week: %q", s)
}

func (d *DayOfWeek) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		day, err := ParseDayOfWeek(v)
		if err != nil {
			return err
		}
		*d = day
		return nil
	case float64:
		n := int(v)
		if n < 0 || n > 6 {
			return fmt.Errorf("day of week index out of range: %d", n)
		}
		*d = dayNames[n]
		return nil
	default:
		return fmt.Errorf("day of week must be a name or a 0-6 index")
	}
}

func (d DayOfWeek) Valid() bool {
	for _, day := range dayNames {
		if day == d {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

type Doctor struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	FullName          string     `json:"full_name"`
	Phone             string     `json:"phone"`
	Bio               *string    `json:"bio,omitempty"`
	YearsOfExperience *int       `json:"yearsOfExperience,omitempty"`
	ProfilePic        *string    `json:"profilePic,omitempty"`
	Specialization    string     `json:"specialization"`
	Email             string     `json:"email,omitempty"`
	Locations         []Location `json:"locations"`
}

type Patient struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Location struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

type TimeSlot struct {
	ID          string    `json:"id"`
	DoctorID    string    `json:"doctorId"`
	LocationID  string    `json:"locationId"`
	DayOfWeek   DayOfWeek `json:"dayOfWeek"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	MaxPatients int       `json:"maxPatients"`
}

type Booking struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patientId"`
	TimeSlotID string    `json:"doctorTimeSlotId"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
}
