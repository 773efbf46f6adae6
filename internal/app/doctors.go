package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (a *App) doctorByID(ctx context.Context, id string) (*Doctor, error) {
	d := &Doctor{}
	err := a.DB.QueryRow(ctx,
		`SELECT d.id, d.user_id, d.full_name, d.phone, d.bio, d.years_of_experience,
		        d.profile_pic, d.specialization, u.email
		 FROM doctors d JOIN users u ON u.id = d.user_id
		 WHERE d.id=$1`, id,
	).Scan(&d.ID, &d.UserID, &d.FullName, &d.Phone, &d.Bio, &d.YearsOfExperience,
		&d.ProfilePic, &d.Specialization, &d.Email)
	if err != nil {
		return nil, err
	}
	d.Locations, err = a.doctorLocations(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (a *App) doctorByUserID(ctx context.Context, userID string) (*Doctor, error) {
	d := &Doctor{}
	err := a.DB.QueryRow(ctx,
		`SELECT id, user_id, full_name, phone, bio, years_of_experience,
		        profile_pic, specialization
		 FROM doctors WHERE user_id=$1`, userID,
	).Scan(&d.ID, &d.UserID, &d.FullName, &d.Phone, &d.Bio, &d.YearsOfExperience,
		&d.ProfilePic, &d.Specialization)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (a *App) doctorLocations(ctx context.Context, doctorID string) ([]Location, error) {
	rows, err := a.DB.Query(ctx,
		`SELECT l.id, l.name, l.address, l.city, l.state, l.country, l.postal_code
		 FROM doctor_locations dl JOIN locations l ON l.id = dl.location_id
		 WHERE dl.doctor_id=$1 ORDER BY l.name`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Location{}
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.Country, &l.PostalCode); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (a *App) listDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := a.DB.Query(ctx,
		`SELECT d.id, d.user_id, d.full_name, d.phone, d.bio, d.years_of_experience,
		        d.profile_pic, d.specialization, u.email
		 FROM doctors d JOIN users u ON u.id = d.user_id
		 ORDER BY d.full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := []Doctor{}
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.UserID, &d.FullName, &d.Phone, &d.Bio,
			&d.YearsOfExperience, &d.ProfilePic, &d.Specialization, &d.Email); err != nil {
			return nil, err
		}
		d.Locations = []Location{}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// one pass over the join table instead of a query per doctor
	locRows, err := a.DB.Query(ctx,
		`SELECT dl.doctor_id, l.id, l.name, l.address, l.city, l.state, l.country, l.postal_code
		 FROM doctor_locations dl JOIN locations l ON l.id = dl.location_id`)
	if err != nil {
		return nil, err
	}
	defer locRows.Close()

	byDoctor := make(map[string][]Location)
	for locRows.Next() {
		var doctorID string
		var l Location
		if err := locRows.Scan(&doctorID, &l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.Country, &l.PostalCode); err != nil {
			return nil, err
		}
		byDoctor[doctorID] = append(byDoctor[doctorID], l)
	}
	if err := locRows.Err(); err != nil {
		return nil, err
	}

	for i := range doctors {
		if locs, ok := byDoctor[doctors[i].ID]; ok {
			doctors[i].Locations = locs
		}
	}
	return doctors, nil
}

// GET /api/doctors
func (a *App) ListDoctorsHandler(c *gin.Context) {
	doctors, err := a.listDoctors(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

// GET /api/doctors/:id
// A missing doctor answers 200 with a message body; existing frontend
// clients key off the message field rather than the status.
func (a *App) GetDoctorHandler(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Doctor not found"})
		return
	}
	doctor, err := a.doctorByID(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusOK, gin.H{"message": "Doctor not found"})
		return
	}
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doctor)
}
