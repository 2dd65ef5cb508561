package store

import (
	"time"

	"valet-parking-backend/internal/model"
)

// Cond holds equality preconditions on columns for a conditional update.
// An update whose preconditions do not hold affects no rows.
type Cond map[string]any

// SpotFilter selects spots. Zero-valued fields are ignored. Label matches
// case-insensitively.
type SpotFilter struct {
	LotID  string
	Status model.SpotStatus
	Label  string
}

// VehicleFilter selects stay records. Zero-valued fields are ignored.
type VehicleFilter struct {
	Status        model.VehicleStatus
	LicensePlate  string
	CustomerID    string
	ParkingSpotID string
	CheckedInFrom time.Time
	CheckedInTo   time.Time
	NewestFirst   bool
	Limit         int
}
