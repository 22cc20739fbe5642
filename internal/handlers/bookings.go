package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/Vishwajit-29/AgroRent/internal/services"
	"github.com/gin-gonic/gin"
)

// CreateBooking handles a borrower's booking request
func CreateBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			EquipmentID uint      `json:"equipmentId" binding:"required"`
			StartTime   time.Time `json:"startTime" binding:"required"`
			EndTime     time.Time `json:"endTime" binding:"required"`
			Notes       string    `json:"notes"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := bookings.Create(c.Request.Context(), userId, services.CreateBookingInput{
			EquipmentID: input.EquipmentID,
			StartTime:   input.StartTime,
			EndTime:     input.EndTime,
			Notes:       input.Notes,
		})
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(201, booking)
	}
}

// GetBooking retrieves a booking for one of its participants
func GetBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		id, ok := bookingID(c)
		if !ok {
			return
		}

		booking, err := bookings.GetForParticipant(c.Request.Context(), userId, id)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, booking)
	}
}

// GetMyBookings lists the bookings the user requested as a borrower
func GetMyBookings(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		list, err := bookings.ListForBorrower(c.Request.Context(), userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, list)
	}
}

// GetRenterBookings lists the bookings filed against equipment the user owns
func GetRenterBookings(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		list, err := bookings.ListForOwner(c.Request.Context(), userId, false)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, list)
	}
}

// GetPendingBookingRequests lists requests still awaiting the owner's decision
func GetPendingBookingRequests(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		list, err := bookings.ListForOwner(c.Request.Context(), userId, true)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, list)
	}
}

// ApproveBooking confirms a pending request. The conflict check runs again
// here: the slot may have been taken by a different approval since the
// request was filed.
func ApproveBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		id, ok := bookingID(c)
		if !ok {
			return
		}

		booking, err := bookings.Approve(c.Request.Context(), userId, id)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, booking)
	}
}

// RejectBooking declines a pending request with an optional reason
func RejectBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		id, ok := bookingID(c)
		if !ok {
			return
		}

		var input struct {
			Reason string `json:"reason"`
		}
		// Body is optional for reject
		c.ShouldBindJSON(&input)

		booking, err := bookings.Reject(c.Request.Context(), userId, id, input.Reason)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, booking)
	}
}

// StartBooking marks an approved rental as handed over and running
func StartBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		id, ok := bookingID(c)
		if !ok {
			return
		}

		booking, err := bookings.Start(c.Request.Context(), userId, id)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, booking)
	}
}

// CompleteBooking closes out an active rental
func CompleteBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		id, ok := bookingID(c)
		if !ok {
			return
		}

		booking, err := bookings.Complete(c.Request.Context(), userId, id)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, booking)
	}
}

// CancelBooking lets the borrower withdraw a pending or approved request
func CancelBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		id, ok := bookingID(c)
		if !ok {
			return
		}

		booking, err := bookings.Cancel(c.Request.Context(), userId, id)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, booking)
	}
}

type ratingInput struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review"`
}

// RateAsBorrower lets the borrower score the equipment after completion
func RateAsBorrower(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		id, ok := bookingID(c)
		if !ok {
			return
		}

		var input ratingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := bookings.RateByBorrower(c.Request.Context(), userId, id, input.Rating, input.Review)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, booking)
	}
}

// RateAsOwner lets the owner score the borrower after completion
func RateAsOwner(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		id, ok := bookingID(c)
		if !ok {
			return
		}

		var input ratingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := bookings.RateByOwner(c.Request.Context(), userId, id, input.Rating, input.Review)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, booking)
	}
}

func bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid booking id"})
		return 0, false
	}
	return uint(id), true
}

// bookingErrorStatus maps service errors to HTTP status codes. Every booking
// error is recoverable by the caller.
func bookingErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return 404
	case errors.Is(err, services.ErrUnauthorized):
		return 403
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrSlotConflict),
		errors.Is(err, services.ErrAlreadyRated),
		errors.Is(err, services.ErrEquipmentInUse):
		return 409
	case errors.Is(err, services.ErrInvalidInterval),
		errors.Is(err, services.ErrNoApplicableRate),
		errors.Is(err, services.ErrUnavailable),
		errors.Is(err, services.ErrSelfBooking),
		errors.Is(err, services.ErrInvalidRating):
		return 400
	default:
		return 500
	}
}
