// Package errs holds the error kinds shared by the parking services.
// Callers attach context with fmt.Errorf("%w: ...") and match with errors.Is.
package errs

import "errors"

var (
	// ErrValidation marks malformed or missing input. Nothing is persisted.
	ErrValidation = errors.New("validation failed")
	// ErrSpotUnavailable means a check-in lost the race for its spot.
	ErrSpotUnavailable = errors.New("parking spot is not available")
	// ErrConflict is returned by conditional spot writes whose precondition no longer holds.
	ErrConflict = errors.New("conflicting update")
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means the operation is not legal for the entity's current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrIntegrity means stored data contradicts the spot and vehicle records.
	ErrIntegrity = errors.New("integrity violation")
	// ErrStoreUnavailable marks transport or store failures; the outcome is unknown.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Kind returns a short machine-readable name for the error's kind.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrSpotUnavailable):
		return "spot_unavailable"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrIntegrity):
		return "integrity_error"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	}
	return "internal_error"
}
