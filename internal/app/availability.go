package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type timeSlotInput struct {
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime" binding:"required"`
	MaxPatients int    `json:"maxPatients" binding:"required,min=1"`
}

type submitAvailabilityReq struct {
	LocationID string          `json:"locationId" binding:"required"`
	DayOfWeek  DayOfWeek       `json:"dayOfWeek" binding:"required"`
	TimeSlots  []timeSlotInput `json:"timeSlots" binding:"required,min=1,dive"`
}

func slotKey(start, end string) string { return start + "-" + end }

// submitWeeklyAvailability replaces the doctor's slot set for one
// location+day. The cross-location overlap check runs strictly before
// any write; the reconciliation itself (prune absent keys with their
// bookings, update kept keys in place, insert new keys) runs in a
// single transaction so an interrupted submit cannot leave the set
// half-pruned.
func (a *App) submitWeeklyAvailability(ctx context.Context, doctorID string, req submitAvailabilityReq) ([]timeSlotInput, error) {
	for _, s := range req.TimeSlots {
		if _, err := parseHHMM(s.StartTime); err != nil {
			return nil, errInvalid(err.Error())
		}
		if _, err := parseHHMM(s.EndTime); err != nil {
			return nil, errInvalid(err.Error())
		}
	}

	// every slot for this doctor+day, all locations
	existing, err := a.slotsForDoctorDay(ctx, doctorID, req.DayOfWeek)
	if err != nil {
		return nil, err
	}

	for _, newSlot := range req.TimeSlots {
		newStart, _ := parseHHMM(newSlot.StartTime)
		newEnd, _ := parseHHMM(newSlot.EndTime)

		for _, slot := range existing {
			// same-location overlaps are deliberately not checked
			if slot.LocationID == req.LocationID {
				continue
			}
			existingStart, err := parseHHMM(slot.StartTime)
			if err != nil {
				return nil, err
			}
			existingEnd, err := parseHHMM(slot.EndTime)
			if err != nil {
				return nil, err
			}
			if rangesOverlap(newStart, newEnd, existingStart, existingEnd) {
				return nil, errOverlap(fmt.Sprintf(
					"Overlapping slot: %s–%s overlaps with existing %s–%s in another location (%s).",
					newSlot.StartTime, newSlot.EndTime, slot.StartTime, slot.EndTime, slot.LocationID))
			}
		}
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO doctor_availability (doctor_id, location_id, day_of_week)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (doctor_id, location_id, day_of_week) DO NOTHING`,
		doctorID, req.LocationID, req.DayOfWeek)
	if err != nil {
		return nil, err
	}

	incoming := make(map[string]timeSlotInput, len(req.TimeSlots))
	for _, s := range req.TimeSlots {
		incoming[slotKey(s.StartTime, s.EndTime)] = s
	}

	rows, err := tx.Query(ctx,
		`SELECT id, start_time, end_time FROM doctor_time_slots
		 WHERE doctor_id=$1 AND location_id=$2 AND day_of_week=$3`,
		doctorID, req.LocationID, req.DayOfWeek)
	if err != nil {
		return nil, err
	}
	type current struct{ id, start, end string }
	var currents []current
	for rows.Next() {
		var cur current
		if err := rows.Scan(&cur.id, &cur.start, &cur.end); err != nil {
			rows.Close()
			return nil, err
		}
		currents = append(currents, cur)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	kept := make(map[string]bool)
	for _, cur := range currents {
		key := slotKey(cur.start, cur.end)
		if _, ok := incoming[key]; !ok {
			// bookings first, slot second
			if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE doctor_time_slot_id=$1`, cur.id); err != nil {
				return nil, err
			}
			if _, err := tx.Exec(ctx, `DELETE FROM doctor_time_slots WHERE id=$1`, cur.id); err != nil {
				return nil, err
			}
			continue
		}
		kept[key] = true
		// keep the slot id and its bookings, refresh capacity only
		_, err := tx.Exec(ctx,
			`UPDATE doctor_time_slots SET max_patients=$1, updated_at=now() WHERE id=$2`,
			incoming[key].MaxPatients, cur.id)
		if err != nil {
			return nil, err
		}
	}

	for key, s := range incoming {
		if kept[key] {
			continue
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO doctor_time_slots (doctor_id, location_id, day_of_week, start_time, end_time, max_patients)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			doctorID, req.LocationID, req.DayOfWeek, s.StartTime, s.EndTime, s.MaxPatients)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return req.TimeSlots, nil
}

func (a *App) slotsForDoctorDay(ctx context.Context, doctorID string, day DayOfWeek) ([]TimeSlot, error) {
	rows, err := a.DB.Query(ctx,
		`SELECT id, doctor_id, location_id, day_of_week, start_time, end_time, max_patients
		 FROM doctor_time_slots WHERE doctor_id=$1 AND day_of_week=$2`,
		doctorID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimeSlot
	for rows.Next() {
		var s TimeSlot
		if err := rows.Scan(&s.ID, &s.DoctorID, &s.LocationID, &s.DayOfWeek,
			&s.StartTime, &s.EndTime, &s.MaxPatients); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// POST /api/availability/doctor
func (a *App) SubmitAvailabilityHandler(c *gin.Context) {
	var req submitAvailabilityReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	doctor, err := a.doctorByUserID(ctx, callerID(c))
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Doctor profile not found for this user."})
		return
	}
	if err != nil {
		a.respondError(c, err)
		return
	}

	slots, err := a.submitWeeklyAvailability(ctx, doctor.ID, req)
	if err != nil {
		var de *DomainError
		if errors.As(err, &de) && de.Kind == KindOverlap {
			// overlap rejections answer 200 with success:false; the
			// frontend treats this as a form error, not a failure
			c.JSON(http.StatusOK, gin.H{"success": false, "message": de.Message})
			return
		}
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Availability updated successfully",
		"slots":   slots,
	})
}

type availabilityGroup struct {
	ID        string          `json:"id"`
	Location  Location        `json:"location"`
	DayOfWeek DayOfWeek       `json:"dayOfWeek"`
	TimeSlots []timeSlotInput `json:"timeSlots"`
}

// GET /api/availability/doctor/:id
func (a *App) GetAvailabilityHandler(c *gin.Context) {
	doctorID := c.Param("id")
	if _, err := uuid.Parse(doctorID); err != nil {
		c.JSON(http.StatusOK, []availabilityGroup{})
		return
	}
	ctx := c.Request.Context()

	rows, err := a.DB.Query(ctx,
		`SELECT da.location_id, da.day_of_week,
		        l.name, l.address, l.city, l.state, l.country, l.postal_code
		 FROM doctor_availability da JOIN locations l ON l.id = da.location_id
		 WHERE da.doctor_id=$1
		 ORDER BY l.name, da.day_of_week`, doctorID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	defer rows.Close()

	groups := []availabilityGroup{}
	for rows.Next() {
		var g availabilityGroup
		g.Location = Location{}
		if err := rows.Scan(&g.Location.ID, &g.DayOfWeek, &g.Location.Name, &g.Location.Address,
			&g.Location.City, &g.Location.State, &g.Location.Country, &g.Location.PostalCode); err != nil {
			a.respondError(c, err)
			return
		}
		g.ID = fmt.Sprintf("%s_%s_%s", doctorID, g.Location.ID, g.DayOfWeek)
		g.TimeSlots = []timeSlotInput{}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		a.respondError(c, err)
		return
	}

	for i := range groups {
		slotRows, err := a.DB.Query(ctx,
			`SELECT start_time, end_time, max_patients FROM doctor_time_slots
			 WHERE doctor_id=$1 AND location_id=$2 AND day_of_week=$3
			 ORDER BY start_time`,
			doctorID, groups[i].Location.ID, groups[i].DayOfWeek)
		if err != nil {
			a.respondError(c, err)
			return
		}
		for slotRows.Next() {
			var s timeSlotInput
			if err := slotRows.Scan(&s.StartTime, &s.EndTime, &s.MaxPatients); err != nil {
				slotRows.Close()
				a.respondError(c, err)
				return
			}
			groups[i].TimeSlots = append(groups[i].TimeSlots, s)
		}
		slotRows.Close()
		if err := slotRows.Err(); err != nil {
			a.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, groups)
}
