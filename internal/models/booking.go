package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether a booking in this status can never change again.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCompleted || s == BookingStatusCancelled
}

// PricingType records which rate table entry produced the locked total cost.
type PricingType string

const (
	PricingHourly PricingType = "hourly"
	PricingDaily  PricingType = "daily"
	PricingWeekly PricingType = "weekly"
)

type Booking struct {
	gorm.Model
	EquipmentID uint       `json:"equipmentId" gorm:"column:equipment_id;not null;index"`
	Equipment   *Equipment `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`
	OwnerID     uint       `json:"ownerId" gorm:"column:owner_id;not null;index"`
	Owner       *User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	BorrowerID  uint       `json:"borrowerId" gorm:"column:borrower_id;not null;index"`
	Borrower    *User      `json:"borrower,omitempty" gorm:"foreignKey:BorrowerID"`

	StartTime time.Time     `json:"startTime" gorm:"column:start_time;not null"`
	EndTime   time.Time     `json:"endTime" gorm:"column:end_time;not null"`
	Status    BookingStatus `json:"status" gorm:"column:status;not null;default:'pending';index"`

	// Locked at creation, immutable afterwards
	TotalCost   float64     `json:"totalCost" gorm:"column:total_cost;not null"`
	PricingType PricingType `json:"pricingType" gorm:"column:pricing_type"`

	Notes           string `json:"notes,omitempty" gorm:"column:notes"`
	RejectionReason string `json:"rejectionReason,omitempty" gorm:"column:rejection_reason"`

	// Post-completion ratings, 1..5, with optional free-text reviews
	RatingByOwner    *int   `json:"ratingByOwner,omitempty" gorm:"column:rating_by_owner"`
	RatingByBorrower *int   `json:"ratingByBorrower,omitempty" gorm:"column:rating_by_borrower"`
	ReviewByOwner    string `json:"reviewByOwner,omitempty" gorm:"column:review_by_owner"`
	ReviewByBorrower string `json:"reviewByBorrower,omitempty" gorm:"column:review_by_borrower"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

// Overlaps reports whether the booking's half-open interval [start, end)
// intersects the given one. Back-to-back bookings do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}
