package occupancy

import (
	"context"
	"fmt"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/model"
	"valet-parking-backend/internal/store"
)

// Violation is a spot whose status disagrees with the stays that reference it.
type Violation struct {
	SpotID           string           `json:"spotId"`
	SpotLabel        string           `json:"spotLabel"`
	Status           model.SpotStatus `json:"status"`
	CurrentVehicleID string           `json:"currentVehicleId,omitempty"`
	ActiveVehicleIDs []string         `json:"activeVehicleIds"`
	Reason           string           `json:"reason"`
}

// Audit checks every spot of a lot: a spot is occupied exactly when one
// checked-in stay references it, and that stay is the spot's current vehicle.
// Violations are reported, never repaired.
func (e *Engine) Audit(ctx context.Context, lotID string) ([]Violation, error) {
	if lotID == "" {
		return nil, fmt.Errorf("%w: lotId is required", errs.ErrValidation)
	}

	var (
		spots  []model.ParkingSpot
		active []model.Vehicle
	)
	err := e.st.Transaction(ctx, func(tx store.Store) error {
		var err error
		if spots, err = tx.ListSpots(ctx, store.SpotFilter{LotID: lotID}); err != nil {
			return err
		}
		active, err = tx.ListVehicles(ctx, store.VehicleFilter{Status: model.VehicleCheckedIn})
		return err
	})
	if err != nil {
		return nil, err
	}

	bySpot := make(map[string][]string, len(active))
	for _, v := range active {
		bySpot[v.ParkingSpotID] = append(bySpot[v.ParkingSpotID], v.ID)
	}

	violations := []Violation{}
	for _, s := range spots {
		ids := bySpot[s.ID]
		var reason string
		switch {
		case len(ids) > 1:
			reason = "more than one checked-in vehicle"
		case s.Status == model.SpotOccupied && len(ids) == 0:
			reason = "occupied without a checked-in vehicle"
		case s.Status != model.SpotOccupied && len(ids) == 1:
			reason = "checked-in vehicle on a spot that is not occupied"
		case s.Status == model.SpotOccupied && s.CurrentVehicleID.String != ids[0]:
			reason = "current vehicle does not match the checked-in vehicle"
		default:
			continue
		}
		if ids == nil {
			ids = []string{}
		}
		violations = append(violations, Violation{
			SpotID:           s.ID,
			SpotLabel:        s.Label,
			Status:           s.Status,
			CurrentVehicleID: s.CurrentVehicleID.String,
			ActiveVehicleIDs: ids,
			Reason:           reason,
		})
	}

	if len(violations) > 0 {
		e.log.WithField("lot_id", lotID).WithField("violations", len(violations)).Error("occupancy audit found violations")
	}
	return violations, nil
}
