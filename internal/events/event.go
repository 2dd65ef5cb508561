// Package events delivers occupancy changes to live subscribers.
package events

import (
	"context"
	"time"
)

// Type names a kind of occupancy change. It doubles as the AMQP routing key.
type Type string

const (
	VehicleCheckedIn  Type = "vehicle.checked_in"
	VehicleCheckedOut Type = "vehicle.checked_out"
	LayoutChanged     Type = "layout.changed"
	SpotStatusChanged Type = "spot.status_changed"
)

// Event is a committed change to occupancy or layout.
type Event struct {
	Type         Type      `json:"type"`
	LotID        string    `json:"lotId,omitempty"`
	SpotID       string    `json:"spotId,omitempty"`
	SpotLabel    string    `json:"spotLabel,omitempty"`
	SpotStatus   string    `json:"spotStatus,omitempty"`
	VehicleID    string    `json:"vehicleId,omitempty"`
	LicensePlate string    `json:"licensePlate,omitempty"`
	Count        int       `json:"count,omitempty"`
	At           time.Time `json:"at"`
}

// Sink receives events from the worker pool.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Notifier accepts events for asynchronous delivery.
type Notifier interface {
	Dispatch(ev Event)
}

// Discard is a Notifier that drops every event.
type Discard struct{}

// Dispatch implements Notifier.
func (Discard) Dispatch(Event) {}
