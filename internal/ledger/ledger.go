// Package ledger records vehicle stays from check-in to check-out.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/model"
	"valet-parking-backend/internal/store"
)

// StayInput describes a new stay. ID may be left empty to have one assigned.
type StayInput struct {
	ID                   string
	CustomerID           string
	Make                 string
	Model                string
	Color                string
	LicensePlate         string
	ParkingSpotID        string
	ParkingSpotLabel     string
	ValetID              string
	CheckInTime          time.Time
	ExpectedCheckOutTime time.Time
}

// Ledger reads and writes stay records.
type Ledger struct {
	st  store.Store
	now func() time.Time
}

// New creates a Ledger on top of st. A nil clock defaults to time.Now in UTC.
func New(st store.Store, now func() time.Time) *Ledger {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Ledger{st: st, now: now}
}

// NormalizePlate trims and upper-cases a license plate.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// Create records a checked-in stay and returns its id.
func (l *Ledger) Create(ctx context.Context, in StayInput) (string, error) {
	in.LicensePlate = NormalizePlate(in.LicensePlate)
	if in.CheckInTime.IsZero() {
		in.CheckInTime = l.now()
	}
	if err := validate(in); err != nil {
		return "", err
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	v := &model.Vehicle{
		ID:                   in.ID,
		CustomerID:           strings.TrimSpace(in.CustomerID),
		Make:                 strings.TrimSpace(in.Make),
		Model:                strings.TrimSpace(in.Model),
		Color:                strings.TrimSpace(in.Color),
		LicensePlate:         in.LicensePlate,
		ParkingSpotID:        strings.TrimSpace(in.ParkingSpotID),
		ParkingSpotLabel:     in.ParkingSpotLabel,
		ValetID:              strings.TrimSpace(in.ValetID),
		CheckInTime:          in.CheckInTime,
		ExpectedCheckOutTime: in.ExpectedCheckOutTime,
		Status:               model.VehicleCheckedIn,
	}
	if err := l.st.CreateVehicle(ctx, v); err != nil {
		return "", err
	}
	return v.ID, nil
}

func validate(in StayInput) error {
	var problems []string
	required := []struct {
		name, value string
	}{
		{"licensePlate", in.LicensePlate},
		{"customerId", in.CustomerID},
		{"parkingSpotId", in.ParkingSpotID},
		{"valetId", in.ValetID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is required")
		}
	}
	if !in.ExpectedCheckOutTime.After(in.CheckInTime) {
		problems = append(problems, "expectedCheckOutTime must be after checkInTime")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errs.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Get returns a stay by id.
func (l *Ledger) Get(ctx context.Context, vehicleID string) (*model.Vehicle, error) {
	return l.st.GetVehicle(ctx, vehicleID)
}

// FindActiveByLicensePlate returns the checked-in stay for a plate. More than
// one match is reported as errs.ErrIntegrity and never resolved silently.
func (l *Ledger) FindActiveByLicensePlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	plate = NormalizePlate(plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: licensePlate is required", errs.ErrValidation)
	}

	found, err := l.st.ListVehicles(ctx, store.VehicleFilter{
		Status:       model.VehicleCheckedIn,
		LicensePlate: plate,
		Limit:        2,
	})
	if err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: no active vehicle with plate %s", errs.ErrNotFound, plate)
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("%w: plate %s has more than one checked-in stay", errs.ErrIntegrity, plate)
}

// Complete checks a stay out. A stay can be completed exactly once.
func (l *Ledger) Complete(ctx context.Context, vehicleID string) error {
	updated, err := l.st.UpdateVehicle(ctx, vehicleID,
		store.Cond{"status": model.VehicleCheckedIn},
		map[string]any{
			"status":                model.VehicleCheckedOut,
			"actual_check_out_time": null.TimeFrom(l.now()),
		},
	)
	if err != nil {
		return err
	}
	if updated {
		return nil
	}

	v, err := l.st.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: vehicle %s is already %s", errs.ErrInvalidState, v.LicensePlate, v.Status)
}

// ListActive returns checked-in stays, most recent check-in first.
func (l *Ledger) ListActive(ctx context.Context) ([]model.Vehicle, error) {
	return l.st.ListVehicles(ctx, store.VehicleFilter{
		Status:      model.VehicleCheckedIn,
		NewestFirst: true,
	})
}

// ListByCustomer returns a customer's stay history, most recent first.
func (l *Ledger) ListByCustomer(ctx context.Context, customerID string) ([]model.Vehicle, error) {
	return l.st.ListVehicles(ctx, store.VehicleFilter{
		CustomerID:  customerID,
		NewestFirst: true,
	})
}
