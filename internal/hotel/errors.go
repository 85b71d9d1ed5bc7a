package hotel

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("invalid request")
	ErrCheckInPast       = fmt.Errorf("%w: check-in is in the past", ErrValidation)
	ErrInvalidDates      = fmt.Errorf("%w: check-out must be after check-in", ErrValidation)
	ErrInvalidGuests     = fmt.Errorf("%w: guests must be at least 1", ErrValidation)
	ErrCapacityExceeded  = fmt.Errorf("%w: guests exceed room capacity", ErrValidation)
	ErrInvalidMonth      = fmt.Errorf("%w: month out of range", ErrValidation)
	ErrRoomMaintenance   = fmt.Errorf("%w: room is under maintenance", ErrValidation)
	ErrInvalidTransition = errors.New("invalid reservation status transition")

	ErrNotFound         = errors.New("not found")
	ErrRoomNotFound     = fmt.Errorf("room %w", ErrNotFound)
	ErrRoomTypeNotFound = fmt.Errorf("room type %w", ErrNotFound)
	ErrTargetNotFound   = fmt.Errorf("room or room type %w", ErrNotFound)

	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)

	// ErrNoAvailability is an expected outcome, not a fault.
	ErrNoAvailability = errors.New("no rooms available for these dates")

	// ErrConflict means a concurrent write won; the caller may search again.
	ErrConflict = errors.New("reservation conflicts with a concurrent booking")

	ErrStorage = errors.New("storage failure")
)

func IsValidationError(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsNoAvailability(err error) bool  { return errors.Is(err, ErrNoAvailability) }
func IsConflict(err error) bool        { return errors.Is(err, ErrConflict) }
func IsStorageError(err error) bool    { return errors.Is(err, ErrStorage) }

// StorageError tags a lower-layer failure so callers can tell it from domain errors.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
