package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type bookSlotReq struct {
	DoctorID   string    `json:"doctorId" binding:"required"`
	LocationID string    `json:"locationId" binding:"required"`
	DayOfWeek  DayOfWeek `json:"dayOfWeek" binding:"required"`
	StartTime  string    `json:"startTime" binding:"required"`
	EndTime    string    `json:"endTime" binding:"required"`
	Date       string    `json:"date" binding:"required"`
}

type bookingResult struct {
	BookingID   string
	ArrivalTime string
}

// bookSlot reserves one occurrence of a weekly slot for the caller.
// The capacity and duplicate checks and the insert run in one
// transaction with the slot row locked, so two concurrent bookings of
// the same slot serialize instead of overselling max_patients.
//
// The arrival index is the booking count read before the insert: the
// new patient takes the next evenly spaced position in the session
// window. Reschedule derives its index differently (see reschedule).
func (a *App) bookSlot(ctx context.Context, userID string, req bookSlotReq) (*bookingResult, error) {
	if _, err := uuid.Parse(req.DoctorID); err != nil {
		return nil, errNotFound("Time slot not found")
	}
	if _, err := uuid.Parse(req.LocationID); err != nil {
		return nil, errNotFound("Time slot not found")
	}

	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, errInvalid(err.Error())
	}

	patient, err := a.patientByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var slot TimeSlot
	err = tx.QueryRow(ctx,
		`SELECT id, start_time, end_time, max_patients FROM doctor_time_slots
		 WHERE doctor_id=$1 AND location_id=$2 AND day_of_week=$3 AND start_time=$4 AND end_time=$5
		 FOR UPDATE`,
		req.DoctorID, req.LocationID, req.DayOfWeek, req.StartTime, req.EndTime,
	).Scan(&slot.ID, &slot.StartTime, &slot.EndTime, &slot.MaxPatients)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errNotFound("Time slot not found")
	}
	if err != nil {
		return nil, err
	}

	existing, err := bookingsForSlotDate(ctx, tx, slot.ID, date)
	if err != nil {
		return nil, err
	}
	if len(existing) >= slot.MaxPatients {
		return nil, errCapacity("This slot is fully booked for this date")
	}
	for _, b := range existing {
		if b.PatientID == patient.ID {
			return nil, errDuplicate("You have already booked this slot for this date")
		}
	}

	bookingID := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, patient_id, doctor_time_slot_id, date) VALUES ($1,$2,$3,$4)`,
		bookingID, patient.ID, slot.ID, date)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	arrival, err := arrivalTime(slot.StartTime, slot.EndTime, slot.MaxPatients, len(existing))
	if err != nil {
		return nil, err
	}

	a.Log.Info().
		Str("booking_id", bookingID).
		Str("slot_id", slot.ID).
		Str("arrival", arrival).
		Msg("slot booked")
	return &bookingResult{BookingID: bookingID, ArrivalTime: arrival}, nil
}

func bookingsForSlotDate(ctx context.Context, tx pgx.Tx, slotID string, date time.Time) ([]Booking, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, patient_id, created_at FROM bookings
		 WHERE doctor_time_slot_id=$1 AND date=$2
		 ORDER BY created_at ASC`, slotID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.PatientID, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ownedBooking loads a booking plus the owning patient's user id and
// the booking's current slot coordinates.
type ownedBooking struct {
	ID          string
	PatientID   string
	OwnerUserID string
	DoctorID    string
	LocationID  string
}

func (a *App) ownedBooking(ctx context.Context, bookingID string) (*ownedBooking, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, errNotFound("Booking not found")
	}
	b := &ownedBooking{}
	err := a.DB.QueryRow(ctx,
		`SELECT b.id, b.patient_id, p.user_id, s.doctor_id, s.location_id
		 FROM bookings b
		 JOIN patients p ON p.id = b.patient_id
		 JOIN doctor_time_slots s ON s.id = b.doctor_time_slot_id
		 WHERE b.id=$1`, bookingID,
	).Scan(&b.ID, &b.PatientID, &b.OwnerUserID, &b.DoctorID, &b.LocationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errNotFound("Booking not found")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (a *App) cancelAppointment(ctx context.Context, userID, bookingID string) error {
	booking, err := a.ownedBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.OwnerUserID != userID {
		return errForbidden("You can only cancel your own appointments")
	}
	_, err = a.DB.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, bookingID)
	return err
}

type rescheduleReq struct {
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	DayOfWeek DayOfWeek `json:"dayOfWeek"`
}

type rescheduleResult struct {
	ArrivalTime string
	Date        time.Time
}

// rescheduleAppointment moves an existing booking to another slot
// occurrence at the same location. Unlike bookSlot, the arrival index
// here is the booking's position within the post-update occupant list
// ordered by creation time: the moved booking already exists in the
// set it is being placed into. The two derivations are intentionally
// different and must stay that way, or observable arrival times change.
func (a *App) rescheduleAppointment(ctx context.Context, userID, bookingID string, req rescheduleReq) (*rescheduleResult, error) {
	if req.StartTime == "" || req.EndTime == "" || req.DayOfWeek == "" {
		return nil, errInvalid("No time slot selected. Please select a valid slot.")
	}
	if !req.DayOfWeek.Valid() {
		return nil, errInvalid("No time slot selected. Please select a valid slot.")
	}

	booking, err := a.ownedBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerUserID != userID {
		return nil, errForbidden("You can only reschedule your own appointments")
	}

	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, errInvalid(err.Error())
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// the location is pinned to the booking's current slot; reschedule
	// can move time and day, never the practice
	var slot TimeSlot
	err = tx.QueryRow(ctx,
		`SELECT id, start_time, end_time, max_patients FROM doctor_time_slots
		 WHERE doctor_id=$1 AND location_id=$2 AND day_of_week=$3 AND start_time=$4 AND end_time=$5
		 FOR UPDATE`,
		booking.DoctorID, booking.LocationID, req.DayOfWeek, req.StartTime, req.EndTime,
	).Scan(&slot.ID, &slot.StartTime, &slot.EndTime, &slot.MaxPatients)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errNotFound("Time slot not found")
	}
	if err != nil {
		return nil, err
	}

	existing, err := bookingsForSlotDate(ctx, tx, slot.ID, date)
	if err != nil {
		return nil, err
	}
	if len(existing) >= slot.MaxPatients {
		return nil, errCapacity("This slot is fully booked for this date")
	}
	for _, b := range existing {
		if b.PatientID == booking.PatientID && b.ID != booking.ID {
			return nil, errDuplicate("You have already booked this slot for this date")
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET doctor_time_slot_id=$1, date=$2 WHERE id=$3`,
		slot.ID, date, bookingID)
	if err != nil {
		return nil, err
	}

	occupants, err := bookingsForSlotDate(ctx, tx, slot.ID, date)
	if err != nil {
		return nil, err
	}
	patientIndex := 0
	for i, b := range occupants {
		if b.ID == bookingID {
			patientIndex = i
			break
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	arrival, err := arrivalTime(slot.StartTime, slot.EndTime, slot.MaxPatients, patientIndex)
	if err != nil {
		return nil, err
	}

	a.Log.Info().
		Str("booking_id", bookingID).
		Str("slot_id", slot.ID).
		Str("arrival", arrival).
		Msg("booking rescheduled")
	return &rescheduleResult{ArrivalTime: arrival, Date: date}, nil
}

type patientSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type doctorBookingView struct {
	ID        string         `json:"id"`
	Patient   patientSummary `json:"patient"`
	Location  Location       `json:"location"`
	Date      time.Time      `json:"date"`
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
}

func (a *App) doctorBookings(ctx context.Context, doctorID string) ([]doctorBookingView, error) {
	if _, err := uuid.Parse(doctorID); err != nil {
		return nil, errNotFound("Doctor not found")
	}
	var exists bool
	if err := a.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM doctors WHERE id=$1)`, doctorID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, errNotFound("Doctor not found")
	}

	rows, err := a.DB.Query(ctx,
		`SELECT b.id, b.date, s.start_time, s.end_time,
		        p.id, p.full_name, p.email, p.phone,
		        l.id, l.name, l.address, l.city, l.state, l.country, l.postal_code
		 FROM bookings b
		 JOIN doctor_time_slots s ON s.id = b.doctor_time_slot_id
		 JOIN patients p ON p.id = b.patient_id
		 JOIN locations l ON l.id = s.location_id
		 WHERE s.doctor_id=$1
		 ORDER BY b.created_at DESC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []doctorBookingView{}
	for rows.Next() {
		var v doctorBookingView
		if err := rows.Scan(&v.ID, &v.Date, &v.StartTime, &v.EndTime,
			&v.Patient.ID, &v.Patient.FullName, &v.Patient.Email, &v.Patient.Phone,
			&v.Location.ID, &v.Location.Name, &v.Location.Address, &v.Location.City,
			&v.Location.State, &v.Location.Country, &v.Location.PostalCode); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
