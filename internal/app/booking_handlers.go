package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// POST /api/appointments
func (a *App) BookSlotHandler(c *gin.Context) {
	var req bookSlotReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := a.bookSlot(c.Request.Context(), callerID(c), req)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Booking successful",
		"bookingId":   result.BookingID,
		"arrivalTime": result.ArrivalTime,
	})
}

// GET /api/appointments/doctor/:doctorId
func (a *App) DoctorBookingsHandler(c *gin.Context) {
	bookings, err := a.doctorBookings(c.Request.Context(), c.Param("doctorId"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// DELETE /api/appointments/:id
func (a *App) CancelAppointmentHandler(c *gin.Context) {
	if err := a.cancelAppointment(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment canceled"})
}

// PATCH /api/appointments/:id/reschedule
func (a *App) RescheduleAppointmentHandler(c *gin.Context) {
	var req rescheduleReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := a.rescheduleAppointment(c.Request.Context(), callerID(c), c.Param("id"), req)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Appointment rescheduled",
		"arrivalTime": result.ArrivalTime,
		"date":        result.Date,
	})
}
