package services

import (
	"errors"

	"github.com/Vishwajit-29/AgroRent/pkg/utils"
)

// Every error here is recoverable by the caller: handlers map each one to an
// HTTP status and a message the user can act on.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("not allowed to perform this action")
	ErrInvalidTransition = errors.New("booking status does not allow this action")
	ErrInvalidInterval   = errors.New("invalid booking interval")
	ErrSlotConflict      = errors.New("equipment is already booked for the selected dates")
	ErrNoApplicableRate  = utils.ErrNoApplicableRate
	ErrUnavailable       = errors.New("equipment is not available for booking")
	ErrSelfBooking       = errors.New("cannot book your own equipment")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrAlreadyRated      = errors.New("booking has already been rated")
	ErrEquipmentInUse    = errors.New("equipment has bookings in progress")
)
