package model

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// SpotStatus is the availability state of a parking spot.
type SpotStatus string

const (
	SpotAvailable   SpotStatus = "available"
	SpotOccupied    SpotStatus = "occupied"
	SpotReserved    SpotStatus = "reserved"
	SpotUnavailable SpotStatus = "unavailable"
)

// Valid reports whether s is one of the known spot states.
func (s SpotStatus) Valid() bool {
	switch s {
	case SpotAvailable, SpotOccupied, SpotReserved, SpotUnavailable:
		return true
	}
	return false
}

// ParkingSpot is a single physical space in a lot. Geometry is in designer
// coordinates and is carried along but never used by occupancy logic.
type ParkingSpot struct {
	ID     string  `gorm:"primaryKey;size:36" json:"id"`
	LotID  string  `gorm:"size:64;not null;uniqueIndex:idx_spot_lot_label;index:idx_spot_lot_status" json:"lotId"`
	Label  string  `gorm:"size:32;not null;uniqueIndex:idx_spot_lot_label" json:"label"`
	X      float64 `gorm:"not null" json:"x"`
	Y      float64 `gorm:"not null" json:"y"`
	Width  float64 `gorm:"not null" json:"width"`
	Height float64 `gorm:"not null" json:"height"`

	Status SpotStatus `gorm:"size:16;not null;index:idx_spot_lot_status" json:"status"`
	// Set only while Status is occupied.
	CurrentVehicleID null.String `gorm:"size:36" json:"currentVehicleId"`
	Notes            string      `gorm:"size:256" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
