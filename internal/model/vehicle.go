package model

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// VehicleStatus is the state of a single stay.
type VehicleStatus string

const (
	VehicleCheckedIn  VehicleStatus = "checked-in"
	VehicleCheckedOut VehicleStatus = "checked-out"
)

// Vehicle is one stay record, created at check-in and never deleted.
type Vehicle struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	CustomerID   string `gorm:"size:36;not null;index" json:"customerId"`
	Make         string `gorm:"size:64;not null" json:"make"`
	Model        string `gorm:"size:64;not null" json:"model"`
	Color        string `gorm:"size:32;not null" json:"color"`
	LicensePlate string `gorm:"size:32;not null;index:idx_vehicle_plate_status" json:"licensePlate"`

	ParkingSpotID string `gorm:"size:36;not null;index" json:"parkingSpotId"`
	// Snapshot of the spot label at check-in; survives relabeling and deletion.
	ParkingSpotLabel string `gorm:"size:32" json:"parkingSpotLabel"`
	ValetID          string `gorm:"size:64;not null" json:"valetId"`

	CheckInTime          time.Time     `gorm:"not null;index" json:"checkInTime"`
	ExpectedCheckOutTime time.Time     `gorm:"not null" json:"expectedCheckOutTime"`
	ActualCheckOutTime   null.Time     `json:"actualCheckOutTime"`
	Status               VehicleStatus `gorm:"size:16;not null;index:idx_vehicle_plate_status" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
