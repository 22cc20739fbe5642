package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/Vishwajit-29/AgroRent/internal/models"
	"github.com/Vishwajit-29/AgroRent/pkg/utils"
	"gorm.io/gorm"
)

// Action names an operation that moves a booking through its lifecycle.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
)

type transitionRule struct {
	from    map[models.BookingStatus]bool
	to      models.BookingStatus
	byOwner bool // owner-only action; otherwise borrower-only
}

// transitionTable is the single source of truth for the booking state
// machine. Any (status, action) pair not listed here is rejected with
// ErrInvalidTransition.
var transitionTable = map[Action]transitionRule{
	ActionApprove: {
		from:    map[models.BookingStatus]bool{models.BookingStatusPending: true},
		to:      models.BookingStatusApproved,
		byOwner: true,
	},
	ActionReject: {
		from:    map[models.BookingStatus]bool{models.BookingStatusPending: true},
		to:      models.BookingStatusRejected,
		byOwner: true,
	},
	ActionCancel: {
		from: map[models.BookingStatus]bool{
			models.BookingStatusPending:  true,
			models.BookingStatusApproved: true,
		},
		to:      models.BookingStatusCancelled,
		byOwner: false,
	},
	ActionStart: {
		from:    map[models.BookingStatus]bool{models.BookingStatusApproved: true},
		to:      models.BookingStatusActive,
		byOwner: true,
	},
	ActionComplete: {
		from:    map[models.BookingStatus]bool{models.BookingStatusActive: true},
		to:      models.BookingStatusCompleted,
		byOwner: true,
	},
}

// conflictStatuses are the statuses that allocate the equipment's calendar.
// Pending requests may overlap each other freely; the owner adjudicates by
// approving at most one of them.
var conflictStatuses = []models.BookingStatus{
	models.BookingStatusApproved,
	models.BookingStatusActive,
}

// BookingService owns the booking lifecycle: creation with conflict and price
// checks, the status state machine, and post-completion ratings.
type BookingService struct {
	db    *gorm.DB
	locks sync.Map // equipment id -> *sync.Mutex
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// lockEquipment serializes createBooking and approve per equipment id. The
// conflict check reads the booking set and the subsequent write must see no
// interleaved approval for the same equipment; unrelated equipment stays
// uncontended.
func (s *BookingService) lockEquipment(equipmentID uint) func() {
	v, _ := s.locks.LoadOrStore(equipmentID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CreateBookingInput carries a borrower's booking request.
type CreateBookingInput struct {
	EquipmentID uint
	StartTime   time.Time
	EndTime     time.Time
	Notes       string
}

// Create validates the request, checks the slot against approved and active
// bookings, locks the total cost from the equipment's rate table and persists
// the booking in pending status.
func (s *BookingService) Create(ctx context.Context, borrowerID uint, in CreateBookingInput) (*models.Booking, error) {
	var equipment models.Equipment
	if err := s.db.WithContext(ctx).First(&equipment, in.EquipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !equipment.Available {
		return nil, ErrUnavailable
	}
	if equipment.OwnerID == borrowerID {
		return nil, ErrSelfBooking
	}
	if !in.EndTime.After(in.StartTime) || in.StartTime.Before(time.Now()) {
		return nil, ErrInvalidInterval
	}

	cost, err := utils.CalculateRentalCost(utils.RateTable{
		PerHour: equipment.PricePerHour,
		PerDay:  equipment.PricePerDay,
		PerWeek: equipment.PricePerWeek,
	}, in.StartTime, in.EndTime)
	if err != nil {
		if errors.Is(err, utils.ErrNoApplicableRate) {
			return nil, ErrNoApplicableRate
		}
		return nil, err
	}

	unlock := s.lockEquipment(equipment.ID)
	defer unlock()

	conflict, err := s.HasConflict(ctx, equipment.ID, in.StartTime, in.EndTime, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotConflict
	}

	booking := &models.Booking{
		EquipmentID: equipment.ID,
		OwnerID:     equipment.OwnerID,
		BorrowerID:  borrowerID,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      models.BookingStatusPending,
		TotalCost:   cost.TotalCost,
		PricingType: models.PricingType(cost.PricingType),
		Notes:       in.Notes,
	}

	if err := s.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

// HasConflict reports whether the half-open interval [start, end) collides
// with an approved or active booking for the equipment. excludeID skips the
// booking under evaluation when an existing booking is re-checked at approval
// time.
func (s *BookingService) HasConflict(ctx context.Context, equipmentID uint, start, end time.Time, excludeID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("equipment_id = ? AND status IN ?", equipmentID, conflictStatuses).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *BookingService) Approve(ctx context.Context, ownerID, bookingID uint) (*models.Booking, error) {
	return s.transition(ctx, ActionApprove, ownerID, bookingID, "")
}

func (s *BookingService) Reject(ctx context.Context, ownerID, bookingID uint, reason string) (*models.Booking, error) {
	return s.transition(ctx, ActionReject, ownerID, bookingID, reason)
}

func (s *BookingService) Cancel(ctx context.Context, borrowerID, bookingID uint) (*models.Booking, error) {
	return s.transition(ctx, ActionCancel, borrowerID, bookingID, "")
}

func (s *BookingService) Start(ctx context.Context, ownerID, bookingID uint) (*models.Booking, error) {
	return s.transition(ctx, ActionStart, ownerID, bookingID, "")
}

func (s *BookingService) Complete(ctx context.Context, ownerID, bookingID uint) (*models.Booking, error) {
	return s.transition(ctx, ActionComplete, ownerID, bookingID, "")
}

func (s *BookingService) transition(ctx context.Context, action Action, actorID, bookingID uint, reason string) (*models.Booking, error) {
	rule, ok := transitionTable[action]
	if !ok {
		return nil, ErrInvalidTransition
	}

	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if rule.byOwner && booking.OwnerID != actorID {
		return nil, ErrUnauthorized
	}
	if !rule.byOwner && booking.BorrowerID != actorID {
		return nil, ErrUnauthorized
	}

	if action == ActionApprove {
		unlock := s.lockEquipment(booking.EquipmentID)
		defer unlock()

		// Reload under the lock; a concurrent approval may have advanced it.
		if booking, err = s.GetByID(ctx, bookingID); err != nil {
			return nil, err
		}
	}

	if !rule.from[booking.Status] {
		return nil, ErrInvalidTransition
	}

	if action == ActionApprove {
		// The slot may have been taken by a different approval since this
		// request was filed, so the conflict check runs again here.
		conflict, err := s.HasConflict(ctx, booking.EquipmentID, booking.StartTime, booking.EndTime, booking.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrSlotConflict
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": rule.to}
		if action == ActionReject {
			updates["rejection_reason"] = reason
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(updates).Error; err != nil {
			return err
		}
		if action == ActionStart {
			return tx.Model(&models.Equipment{}).Where("id = ?", booking.EquipmentID).
				UpdateColumn("times_rented", gorm.Expr("times_rented + 1")).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Status = rule.to
	if action == ActionReject {
		booking.RejectionReason = reason
	}
	return booking, nil
}

// RateByBorrower stores the borrower's post-completion score and optional
// review, and refreshes the equipment's running average rating.
func (s *BookingService) RateByBorrower(ctx context.Context, borrowerID, bookingID uint, rating int, review string) (*models.Booking, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BorrowerID != borrowerID {
		return nil, ErrUnauthorized
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, ErrInvalidTransition
	}
	if booking.RatingByBorrower != nil {
		return nil, ErrAlreadyRated
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"rating_by_borrower": rating,
				"review_by_borrower": review,
			}).Error; err != nil {
			return err
		}

		avg, count, err := ratingStats(tx, "rating_by_borrower", "equipment_id", booking.EquipmentID)
		if err != nil {
			return err
		}
		return tx.Model(&models.Equipment{}).Where("id = ?", booking.EquipmentID).
			Updates(map[string]interface{}{"rating": avg, "total_ratings": count}).Error
	})
	if err != nil {
		return nil, err
	}

	booking.RatingByBorrower = &rating
	booking.ReviewByBorrower = review
	return booking, nil
}

// RateByOwner stores the owner's post-completion score and optional review
// for the borrower, and refreshes the borrower's running average rating.
func (s *BookingService) RateByOwner(ctx context.Context, ownerID, bookingID uint, rating int, review string) (*models.Booking, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, ErrInvalidTransition
	}
	if booking.RatingByOwner != nil {
		return nil, ErrAlreadyRated
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"rating_by_owner": rating,
				"review_by_owner": review,
			}).Error; err != nil {
			return err
		}

		avg, count, err := ratingStats(tx, "rating_by_owner", "borrower_id", booking.BorrowerID)
		if err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", booking.BorrowerID).
			Updates(map[string]interface{}{"rating": avg, "total_ratings": count}).Error
	})
	if err != nil {
		return nil, err
	}

	booking.RatingByOwner = &rating
	booking.ReviewByOwner = review
	return booking, nil
}

// ratingStats averages the given rating column over completed bookings
// matching refColumn = refID. The average is rounded to one decimal place.
func ratingStats(tx *gorm.DB, ratingColumn, refColumn string, refID uint) (float64, int64, error) {
	var stats struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Booking{}).
		Select("COALESCE(AVG("+ratingColumn+"), 0) as avg, COUNT(*) as count").
		Where(refColumn+" = ? AND status = ? AND "+ratingColumn+" IS NOT NULL",
			refID, models.BookingStatusCompleted).
		Scan(&stats).Error
	if err != nil {
		return 0, 0, err
	}
	return math.Round(stats.Avg*10) / 10, stats.Count, nil
}

// GetByID fetches a booking or ErrNotFound.
func (s *BookingService) GetByID(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// GetForParticipant fetches a booking only if the user is its owner or its
// borrower.
func (s *BookingService) GetForParticipant(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Equipment").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if booking.OwnerID != userID && booking.BorrowerID != userID {
		return nil, ErrUnauthorized
	}
	return &booking, nil
}

// ListForBorrower returns the bookings a user has requested, newest first.
func (s *BookingService) ListForBorrower(ctx context.Context, borrowerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).Preload("Equipment").
		Where("borrower_id = ?", borrowerID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// ListForOwner returns the bookings filed against a user's equipment,
// newest first. When pendingOnly is set, only requests awaiting adjudication
// are returned.
func (s *BookingService) ListForOwner(ctx context.Context, ownerID uint, pendingOnly bool) ([]models.Booking, error) {
	q := s.db.WithContext(ctx).Preload("Equipment").Preload("Borrower").
		Where("owner_id = ?", ownerID)
	if pendingOnly {
		q = q.Where("status = ?", models.BookingStatusPending)
	}
	var bookings []models.Booking
	err := q.Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// CountLiveForEquipment counts bookings in a non-terminal status for the
// equipment. Used to forbid deleting equipment that is still referenced.
func (s *BookingService) CountLiveForEquipment(ctx context.Context, equipmentID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("equipment_id = ? AND status IN ?", equipmentID, []models.BookingStatus{
			models.BookingStatusPending,
			models.BookingStatusApproved,
			models.BookingStatusActive,
		}).
		Count(&count).Error
	return count, err
}
