package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type appointmentView struct {
	BookingID string    `json:"bookingId"`
	CreatedAt time.Time `json:"createdAt"`
	Date      time.Time `json:"date"`
	TimeSlot  TimeSlot  `json:"doctorTimeSlot"`
	Doctor    *Doctor   `json:"doctor"`
	Location  *Location `json:"location"`
}

func (a *App) patientAppointments(ctx context.Context, patientID string) ([]appointmentView, error) {
	rows, err := a.DB.Query(ctx,
		`SELECT b.id, b.created_at, b.date,
		        s.id, s.doctor_id, s.location_id, s.day_of_week, s.start_time, s.end_time, s.max_patients,
		        d.id, d.user_id, d.full_name, d.specialization, d.years_of_experience, d.phone, d.bio, d.profile_pic,
		        l.id, l.name, l.address, l.city, l.state, l.country, l.postal_code
		 FROM bookings b
		 JOIN doctor_time_slots s ON s.id = b.doctor_time_slot_id
		 JOIN doctors d ON d.id = s.doctor_id
		 JOIN locations l ON l.id = s.location_id
		 WHERE b.patient_id=$1
		 ORDER BY b.created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []appointmentView{}
	for rows.Next() {
		var v appointmentView
		var d Doctor
		var l Location
		if err := rows.Scan(&v.BookingID, &v.CreatedAt, &v.Date,
			&v.TimeSlot.ID, &v.TimeSlot.DoctorID, &v.TimeSlot.LocationID, &v.TimeSlot.DayOfWeek,
			&v.TimeSlot.StartTime, &v.TimeSlot.EndTime, &v.TimeSlot.MaxPatients,
			&d.ID, &d.UserID, &d.FullName, &d.Specialization, &d.YearsOfExperience, &d.Phone, &d.Bio, &d.ProfilePic,
			&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.Country, &l.PostalCode); err != nil {
			return nil, err
		}
		d.Locations = []Location{}
		v.Doctor = &d
		v.Location = &l
		out = append(out, v)
	}
	return out, rows.Err()
}

// GET /api/patients/profile
func (a *App) PatientProfileHandler(c *gin.Context) {
	ctx := c.Request.Context()

	patient, err := a.patientByUserID(ctx, callerID(c))
	if err != nil {
		a.respondError(c, err)
		return
	}

	appointments, err := a.patientAppointments(ctx, patient.ID)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":      patient,
		"appointments": appointments,
	})
}
