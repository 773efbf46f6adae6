package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type locationInput struct {
	Name       string `json:"name" binding:"required"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	Country    string `json:"country" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
}

type registerDoctorReq struct {
	Email             string          `json:"email" binding:"required,email"`
	Password          string          `json:"password" binding:"required,min=6"`
	FullName          string          `json:"fullName" binding:"required"`
	Phone             string          `json:"phone" binding:"required"`
	Bio               *string         `json:"bio"`
	YearsOfExperience *int            `json:"yearsOfExperience"`
	ProfilePic        *string         `json:"profilePic"`
	Specialization    string          `json:"specialization" binding:"required"`
	Locations         []locationInput `json:"locations"`
}

// POST /api/auth/register-doctor
func (a *App) RegisterDoctorHandler(c *gin.Context) {
	var req registerDoctorReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	inUse, err := a.emailInUse(ctx, req.Email)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if inUse {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already in use"})
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		a.respondError(c, err)
		return
	}
	defer tx.Rollback(ctx)

	userID := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role) VALUES ($1,$2,$3,'doctor')`,
		userID, req.Email, hash)
	if err != nil {
		a.respondError(c, err)
		return
	}

	doctorID := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO doctors (id, user_id, full_name, phone, bio, years_of_experience, profile_pic, specialization)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		doctorID, userID, req.FullName, req.Phone, req.Bio, req.YearsOfExperience,
		req.ProfilePic, req.Specialization)
	if err != nil {
		a.respondError(c, err)
		return
	}

	locations, err := insertDoctorLocations(ctx, tx, doctorID, req.Locations)
	if err != nil {
		a.respondError(c, err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		a.respondError(c, err)
		return
	}

	a.Log.Info().Str("doctor_id", doctorID).Msg("doctor registered")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Doctor registered successfully",
		"doctor": Doctor{
			ID:                doctorID,
			UserID:            userID,
			FullName:          req.FullName,
			Phone:             req.Phone,
			Bio:               req.Bio,
			YearsOfExperience: req.YearsOfExperience,
			ProfilePic:        req.ProfilePic,
			Specialization:    req.Specialization,
			Email:             req.Email,
			Locations:         locations,
		},
	})
}

func insertDoctorLocations(ctx context.Context, tx pgx.Tx, doctorID string, inputs []locationInput) ([]Location, error) {
	locations := []Location{}
	for _, loc := range inputs {
		locID := uuid.New().String()
		_, err := tx.Exec(ctx,
			`INSERT INTO locations (id, name, address, city, state, country, postal_code)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			locID, loc.Name, loc.Address, loc.City, loc.State, loc.Country, loc.PostalCode)
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO doctor_locations (doctor_id, location_id) VALUES ($1,$2)`,
			doctorID, locID)
		if err != nil {
			return nil, err
		}
		locations = append(locations, Location{
			ID: locID, Name: loc.Name, Address: loc.Address, City: loc.City,
			State: loc.State, Country: loc.Country, PostalCode: loc.PostalCode,
		})
	}
	return locations, nil
}

type registerPatientReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

// POST /api/auth/register-patient
func (a *App) RegisterPatientHandler(c *gin.Context) {
	var req registerPatientReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	inUse, err := a.emailInUse(ctx, req.Email)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if inUse {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already in use"})
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		a.respondError(c, err)
		return
	}
	defer tx.Rollback(ctx)

	userID := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role) VALUES ($1,$2,$3,'patient')`,
		userID, req.Email, hash)
	if err != nil {
		a.respondError(c, err)
		return
	}

	patientID := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO patients (id, user_id, full_name, email, phone) VALUES ($1,$2,$3,$4,$5)`,
		patientID, userID, req.FullName, req.Email, req.Phone)
	if err != nil {
		a.respondError(c, err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		a.respondError(c, err)
		return
	}

	a.Log.Info().Str("patient_id", patientID).Msg("patient registered")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Patient registered",
		"patient": gin.H{"id": patientID, "email": req.Email, "full_name": req.FullName},
	})
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (a *App) LoginHandler(c *gin.Context) {
	var req loginReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	user, err := a.userByEmail(ctx, req.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if err != nil {
		a.respondError(c, err)
		return
	}
	if !checkPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	var profile any
	switch user.Role {
	case "doctor":
		if d, err := a.doctorByUserID(ctx, user.ID); err == nil {
			d.Locations, _ = a.doctorLocations(ctx, d.ID)
			profile = d
		}
	case "patient":
		if p, err := a.patientByUserID(ctx, user.ID); err == nil {
			profile = p
		}
	}

	token, err := a.signToken(user.ID, user.Role, user.Email)
	if err != nil {
		a.respondError(c, err)
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"user":    gin.H{"id": user.ID, "email": user.Email, "role": user.Role},
		"profile": profile,
	})
}

// POST /api/auth/logout
func (a *App) LogoutHandler(c *gin.Context) {
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

type addLocationsReq struct {
	DoctorID  string          `json:"doctorId" binding:"required"`
	Locations []locationInput `json:"locations" binding:"required,min=1"`
}

// PUT /api/auth/doctor/locations
func (a *App) AddDoctorLocationsHandler(c *gin.Context) {
	var req addLocationsReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	if _, err := uuid.Parse(req.DoctorID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Doctor not found"})
		return
	}
	doctor, err := a.doctorByID(ctx, req.DoctorID)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Doctor not found"})
		return
	}
	if err != nil {
		a.respondError(c, err)
		return
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		a.respondError(c, err)
		return
	}
	defer tx.Rollback(ctx)

	added, err := insertDoctorLocations(ctx, tx, doctor.ID, req.Locations)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		a.respondError(c, err)
		return
	}

	doctor.Locations = append(doctor.Locations, added...)
	c.JSON(http.StatusOK, gin.H{"message": "Locations added successfully", "doctor": doctor})
}
