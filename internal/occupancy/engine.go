// Package occupancy coordinates spot and vehicle state. It is the only
// package that changes both in one operation, and it always does so inside
// a single store transaction.
package occupancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/events"
	"valet-parking-backend/internal/ledger"
	"valet-parking-backend/internal/model"
	"valet-parking-backend/internal/registry"
	"valet-parking-backend/internal/store"
)

// DefaultOperationTimeout bounds a single check-in or check-out round trip.
const DefaultOperationTimeout = 15 * time.Second

// Engine runs check-in and check-out.
type Engine struct {
	st        store.Store
	notifier  events.Notifier
	log       logrus.FieldLogger
	now       func() time.Time
	opTimeout time.Duration
}

// NewEngine creates an Engine. A nil notifier discards events.
func NewEngine(st store.Store, notifier events.Notifier, log logrus.FieldLogger) *Engine {
	if notifier == nil {
		notifier = events.Discard{}
	}
	return &Engine{
		st:        st,
		notifier:  notifier,
		log:       log.WithField("component", "occupancy"),
		now:       func() time.Time { return time.Now().UTC() },
		opTimeout: DefaultOperationTimeout,
	}
}

// errStayConflict marks a stay insert rejected by one of the active-stay
// unique indexes. The rolled-back transaction cannot be queried further.
var errStayConflict = errors.New("active stay conflict")

// resolveStayConflict names the rule a rejected stay insert broke: the plate
// is already parked somewhere, or another stay took the spot first.
func (e *Engine) resolveStayConflict(ctx context.Context, plate string, spot *model.ParkingSpot) error {
	active, err := ledger.New(e.st, e.now).FindActiveByLicensePlate(ctx, plate)
	switch {
	case err == nil:
		return fmt.Errorf("%w: vehicle %s is already checked in at %s",
			errs.ErrInvalidState, active.LicensePlate, active.ParkingSpotLabel)
	case errors.Is(err, errs.ErrNotFound):
		return fmt.Errorf("%w: spot %s was taken", errs.ErrSpotUnavailable, spot.Label)
	}
	return err
}

// operationContext detaches writes from caller cancellation. Once dispatched,
// a transaction runs to completion or fails on its own deadline.
func (e *Engine) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.opTimeout)
}

// CheckIn parks a vehicle in the requested spot and returns the new vehicle id.
func (e *Engine) CheckIn(ctx context.Context, req CheckInRequest) (string, error) {
	req = req.normalized()
	if err := req.validate(); err != nil {
		return "", err
	}

	ctx, cancel := e.operationContext(ctx)
	defer cancel()

	now := e.now()
	vehicleID := uuid.NewString()
	var spot *model.ParkingSpot

	err := e.st.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetCustomer(ctx, req.CustomerID); err != nil {
			return err
		}

		led := ledger.New(tx, e.now)
		active, err := led.FindActiveByLicensePlate(ctx, req.LicensePlate)
		switch {
		case err == nil:
			return fmt.Errorf("%w: vehicle %s is already checked in at %s",
				errs.ErrInvalidState, active.LicensePlate, active.ParkingSpotLabel)
		case !errors.Is(err, errs.ErrNotFound):
			return err
		}

		reg := registry.New(tx)
		spot, err = reg.Get(ctx, req.ParkingSpotID)
		if err != nil {
			return err
		}
		if spot.Status != model.SpotAvailable {
			return fmt.Errorf("%w: spot %s is %s", errs.ErrSpotUnavailable, spot.Label, spot.Status)
		}

		if err := reg.MarkOccupied(ctx, spot.ID, vehicleID); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				return fmt.Errorf("%w: spot %s was taken", errs.ErrSpotUnavailable, spot.Label)
			}
			return err
		}

		_, err = led.Create(ctx, ledger.StayInput{
			ID:                   vehicleID,
			CustomerID:           req.CustomerID,
			Make:                 req.Make,
			Model:                req.Model,
			Color:                req.Color,
			LicensePlate:         req.LicensePlate,
			ParkingSpotID:        spot.ID,
			ParkingSpotLabel:     spot.Label,
			ValetID:              req.ValetID,
			CheckInTime:          now,
			ExpectedCheckOutTime: now.Add(time.Duration(req.ExpectedHours) * time.Hour),
		})
		if errors.Is(err, errs.ErrConflict) {
			return errStayConflict
		}
		return err
	})
	if errors.Is(err, errStayConflict) {
		err = e.resolveStayConflict(ctx, req.LicensePlate, spot)
	}
	if err != nil {
		return "", err
	}

	e.log.WithFields(logrus.Fields{
		"vehicle_id": vehicleID,
		"spot_id":    spot.ID,
		"lot_id":     spot.LotID,
		"plate":      req.LicensePlate,
	}).Info("vehicle checked in")

	e.notifier.Dispatch(events.Event{
		Type:         events.VehicleCheckedIn,
		LotID:        spot.LotID,
		SpotID:       spot.ID,
		SpotLabel:    spot.Label,
		VehicleID:    vehicleID,
		LicensePlate: req.LicensePlate,
		At:           now,
	})
	return vehicleID, nil
}

// CheckOut completes a stay and frees its spot.
func (e *Engine) CheckOut(ctx context.Context, vehicleID string) error {
	ctx, cancel := e.operationContext(ctx)
	defer cancel()

	var (
		vehicle     *model.Vehicle
		lotID       string
		spotMissing bool
	)
	err := e.st.Transaction(ctx, func(tx store.Store) error {
		led := ledger.New(tx, e.now)
		v, err := led.Get(ctx, vehicleID)
		if err != nil {
			return err
		}
		if v.Status == model.VehicleCheckedOut {
			return fmt.Errorf("%w: vehicle %s is already checked out", errs.ErrInvalidState, v.LicensePlate)
		}
		if err := led.Complete(ctx, v.ID); err != nil {
			return err
		}
		vehicle = v

		reg := registry.New(tx)
		spot, err := reg.Get(ctx, v.ParkingSpotID)
		if errors.Is(err, errs.ErrNotFound) {
			spotMissing = true
			return nil
		}
		if err != nil {
			return err
		}
		if spot.Status != model.SpotOccupied || spot.CurrentVehicleID.String != v.ID {
			return fmt.Errorf("%w: spot %s is %s holding %q, expected vehicle %s",
				errs.ErrIntegrity, spot.Label, spot.Status, spot.CurrentVehicleID.String, v.ID)
		}
		lotID = spot.LotID
		return reg.MarkAvailable(ctx, spot.ID)
	})
	if err != nil {
		if errors.Is(err, errs.ErrIntegrity) {
			e.log.WithError(err).WithField("vehicle_id", vehicleID).Error("checkout refused, occupancy records disagree")
		}
		return err
	}

	log := e.log.WithFields(logrus.Fields{
		"vehicle_id": vehicle.ID,
		"spot_id":    vehicle.ParkingSpotID,
		"plate":      vehicle.LicensePlate,
	})
	if spotMissing {
		log.Warn("spot no longer exists, checked out vehicle without freeing a spot")
	} else {
		log.Info("vehicle checked out")
	}

	e.notifier.Dispatch(events.Event{
		Type:         events.VehicleCheckedOut,
		LotID:        lotID,
		SpotID:       vehicle.ParkingSpotID,
		SpotLabel:    vehicle.ParkingSpotLabel,
		VehicleID:    vehicle.ID,
		LicensePlate: vehicle.LicensePlate,
		At:           e.now(),
	})
	return nil
}

// CheckOutByPlate checks out the active stay for a plate and returns its vehicle id.
func (e *Engine) CheckOutByPlate(ctx context.Context, plate string) (string, error) {
	v, err := e.FindActiveVehicle(ctx, plate)
	if err != nil {
		return "", err
	}
	if err := e.CheckOut(ctx, v.ID); err != nil {
		return "", err
	}
	return v.ID, nil
}

// FindActiveVehicle returns the checked-in stay for a plate in any letter case.
func (e *Engine) FindActiveVehicle(ctx context.Context, plate string) (*model.Vehicle, error) {
	return ledger.New(e.st, e.now).FindActiveByLicensePlate(ctx, plate)
}

// ListActiveVehicles returns every checked-in stay, most recent first.
func (e *Engine) ListActiveVehicles(ctx context.Context) ([]model.Vehicle, error) {
	return ledger.New(e.st, e.now).ListActive(ctx)
}

// GetVehicle returns one stay by id.
func (e *Engine) GetVehicle(ctx context.Context, vehicleID string) (*model.Vehicle, error) {
	return ledger.New(e.st, e.now).Get(ctx, vehicleID)
}

// ListAvailableSpots returns the available spots of a lot.
func (e *Engine) ListAvailableSpots(ctx context.Context, lotID string) ([]model.ParkingSpot, error) {
	if lotID == "" {
		return nil, fmt.Errorf("%w: lotId is required", errs.ErrValidation)
	}
	return registry.New(e.st).ListAvailable(ctx, lotID)
}

// GetSpot returns one spot by id.
func (e *Engine) GetSpot(ctx context.Context, spotID string) (*model.ParkingSpot, error) {
	return registry.New(e.st).Get(ctx, spotID)
}

// SetSpotStatus reserves, blocks or releases a spot that is not occupied.
func (e *Engine) SetSpotStatus(ctx context.Context, spotID string, status model.SpotStatus) (*model.ParkingSpot, error) {
	var (
		spot    *model.ParkingSpot
		changed bool
	)
	err := e.st.Transaction(ctx, func(tx store.Store) error {
		reg := registry.New(tx)
		before, err := reg.Get(ctx, spotID)
		if err != nil {
			return err
		}
		spot, err = reg.SetStatus(ctx, spotID, status)
		if err != nil {
			return err
		}
		changed = before.Status != spot.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		e.log.WithFields(logrus.Fields{"spot_id": spot.ID, "status": spot.Status}).Info("spot status changed")
		e.notifier.Dispatch(events.Event{
			Type:       events.SpotStatusChanged,
			LotID:      spot.LotID,
			SpotID:     spot.ID,
			SpotLabel:  spot.Label,
			SpotStatus: string(spot.Status),
			At:         e.now(),
		})
	}
	return spot, nil
}
