// Package registry is the source of truth for parking spot availability.
//
// MarkOccupied and MarkAvailable are only meaningful when the Registry is
// built on a transaction-bound store.Store that also carries the paired
// vehicle ledger write; see the occupancy package.
package registry

import (
	"context"
	"fmt"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/model"
	"valet-parking-backend/internal/store"
)

// Registry reads and mutates spot availability.
type Registry struct {
	st store.Store
}

// New creates a Registry on top of st.
func New(st store.Store) *Registry {
	return &Registry{st: st}
}

// ListAvailable returns the available spots of a lot.
func (r *Registry) ListAvailable(ctx context.Context, lotID string) ([]model.ParkingSpot, error) {
	return r.st.ListSpots(ctx, store.SpotFilter{LotID: lotID, Status: model.SpotAvailable})
}

// ListLot returns every spot of a lot regardless of status.
func (r *Registry) ListLot(ctx context.Context, lotID string) ([]model.ParkingSpot, error) {
	return r.st.ListSpots(ctx, store.SpotFilter{LotID: lotID})
}

// Get returns a spot by id.
func (r *Registry) Get(ctx context.Context, spotID string) (*model.ParkingSpot, error) {
	return r.st.GetSpot(ctx, spotID)
}

// MarkOccupied moves a spot from available to occupied by vehicleID. The
// transition is a compare-and-set: it fails with errs.ErrConflict unless the
// spot is available at write time.
func (r *Registry) MarkOccupied(ctx context.Context, spotID, vehicleID string) error {
	updated, err := r.st.UpdateSpot(ctx, spotID,
		store.Cond{"status": model.SpotAvailable},
		map[string]any{"status": model.SpotOccupied, "current_vehicle_id": vehicleID},
	)
	if err != nil {
		return err
	}
	if updated {
		return nil
	}

	spot, err := r.st.GetSpot(ctx, spotID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: spot %s is %s", errs.ErrConflict, spot.Label, spot.Status)
}

// MarkAvailable frees a spot. Freeing an already available spot succeeds.
func (r *Registry) MarkAvailable(ctx context.Context, spotID string) error {
	updated, err := r.st.UpdateSpot(ctx, spotID, nil,
		map[string]any{"status": model.SpotAvailable, "current_vehicle_id": nil},
	)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: parking spot %s", errs.ErrNotFound, spotID)
	}
	return nil
}

// SetStatus changes an unoccupied spot between available, reserved and
// unavailable. Occupancy itself only changes through check-in and check-out.
func (r *Registry) SetStatus(ctx context.Context, spotID string, status model.SpotStatus) (*model.ParkingSpot, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown spot status %q", errs.ErrValidation, status)
	}
	if status == model.SpotOccupied {
		return nil, fmt.Errorf("%w: spots become occupied only through check-in", errs.ErrValidation)
	}

	spot, err := r.st.GetSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot.Status == model.SpotOccupied {
		return nil, fmt.Errorf("%w: spot %s is occupied", errs.ErrInvalidState, spot.Label)
	}
	if spot.Status == status {
		return spot, nil
	}

	updated, err := r.st.UpdateSpot(ctx, spotID,
		store.Cond{"status": spot.Status},
		map[string]any{"status": status},
	)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: spot %s changed concurrently", errs.ErrConflict, spot.Label)
	}
	spot.Status = status
	return spot, nil
}

