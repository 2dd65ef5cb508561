// Package layout populates and edits the spots of a lot, either from a bulk
// layout file or through the grid designer.
package layout

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/events"
	"valet-parking-backend/internal/model"
	"valet-parking-backend/internal/store"
)

// ImportResult summarizes a committed import or designer batch.
type ImportResult struct {
	LotID       string              `json:"lotId"`
	Created     int                 `json:"created"`
	NothingToDo bool                `json:"nothingToDo,omitempty"`
	Spots       []model.ParkingSpot `json:"spots"`
}

// SpotEdit moves and/or relabels a spot. Nil fields are left unchanged.
type SpotEdit struct {
	Label *string  `json:"label"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

// Service writes lot layouts.
type Service struct {
	st       store.Store
	notifier events.Notifier
	log      logrus.FieldLogger
	maxSpots int
	now      func() time.Time
}

// NewService creates a layout Service. maxSpots caps a single import or designer batch.
func NewService(st store.Store, notifier events.Notifier, log logrus.FieldLogger, maxSpots int) *Service {
	if notifier == nil {
		notifier = events.Discard{}
	}
	return &Service{
		st:       st,
		notifier: notifier,
		log:      log.WithField("component", "layout"),
		maxSpots: maxSpots,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListLayout returns every spot of a lot ordered by label.
func (s *Service) ListLayout(ctx context.Context, lotID string) ([]model.ParkingSpot, error) {
	if lotID == "" {
		return nil, fmt.Errorf("%w: lotId is required", errs.ErrValidation)
	}
	return s.st.ListSpots(ctx, store.SpotFilter{LotID: lotID})
}

// Import adds the spots of a layout file to a lot. Either every spot is
// written or none is. An empty file succeeds with nothing to do.
func (s *Service) Import(ctx context.Context, lotID string, raw []byte) (*ImportResult, error) {
	if lotID == "" {
		return nil, fmt.Errorf("%w: lotId is required", errs.ErrValidation)
	}
	descs, err := ParseDescriptors(raw, s.maxSpots)
	if err != nil {
		return nil, err
	}
	if len(descs) == 0 {
		return &ImportResult{LotID: lotID, NothingToDo: true, Spots: []model.ParkingSpot{}}, nil
	}

	var spots []model.ParkingSpot
	err = s.st.Transaction(ctx, func(tx store.Store) error {
		existing, err := tx.ListSpots(ctx, store.SpotFilter{LotID: lotID})
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(existing))
		for _, sp := range existing {
			taken[strings.ToUpper(sp.Label)] = true
		}
		for _, d := range descs {
			if taken[strings.ToUpper(d.Label)] {
				return fmt.Errorf("%w: label %s already exists in lot %s", errs.ErrValidation, d.Label, lotID)
			}
		}

		spots = s.newSpots(lotID, descs)
		return tx.CreateSpots(ctx, spots)
	})
	if err != nil {
		return nil, err
	}

	s.committed(lotID, len(spots), "layout imported")
	return &ImportResult{LotID: lotID, Created: len(spots), Spots: spots}, nil
}

// AddColumn generates count spots in a column of the designer grid.
func (s *Service) AddColumn(ctx context.Context, lotID string, count int, column string) (*ImportResult, error) {
	return s.design(ctx, lotID, count, func(d *Designer) ([]Descriptor, error) {
		return d.AddColumn(count, column)
	})
}

// AddRow generates count spots in a row of the designer grid.
func (s *Service) AddRow(ctx context.Context, lotID string, count, row int) (*ImportResult, error) {
	return s.design(ctx, lotID, count, func(d *Designer) ([]Descriptor, error) {
		return d.AddRow(count, row)
	})
}

func (s *Service) design(ctx context.Context, lotID string, count int, gen func(*Designer) ([]Descriptor, error)) (*ImportResult, error) {
	if lotID == "" {
		return nil, fmt.Errorf("%w: lotId is required", errs.ErrValidation)
	}
	if count > s.maxSpots {
		return nil, fmt.Errorf("%w: at most %d spots can be added at once", errs.ErrValidation, s.maxSpots)
	}

	var spots []model.ParkingSpot
	err := s.st.Transaction(ctx, func(tx store.Store) error {
		existing, err := tx.ListSpots(ctx, store.SpotFilter{LotID: lotID})
		if err != nil {
			return err
		}
		labels := make([]string, 0, len(existing))
		for _, sp := range existing {
			labels = append(labels, sp.Label)
		}

		descs, err := gen(NewDesigner(labels))
		if err != nil {
			return err
		}
		spots = s.newSpots(lotID, descs)
		return tx.CreateSpots(ctx, spots)
	})
	if err != nil {
		return nil, err
	}

	s.committed(lotID, len(spots), "designer spots added")
	return &ImportResult{LotID: lotID, Created: len(spots), Spots: spots}, nil
}

// UpdateSpot moves or relabels a spot. Stay records keep the label they were
// checked in under.
func (s *Service) UpdateSpot(ctx context.Context, spotID string, edit SpotEdit) (*model.ParkingSpot, error) {
	if edit.Label == nil && edit.X == nil && edit.Y == nil {
		return nil, fmt.Errorf("%w: nothing to change", errs.ErrValidation)
	}

	var spot *model.ParkingSpot
	err := s.st.Transaction(ctx, func(tx store.Store) error {
		var err error
		spot, err = tx.GetSpot(ctx, spotID)
		if err != nil {
			return err
		}

		changes := map[string]any{}
		if edit.Label != nil {
			label := strings.TrimSpace(*edit.Label)
			if label == "" {
				return fmt.Errorf("%w: label must not be empty", errs.ErrValidation)
			}
			if label != spot.Label {
				clash, err := tx.ListSpots(ctx, store.SpotFilter{LotID: spot.LotID, Label: label})
				if err != nil {
					return err
				}
				if slices.ContainsFunc(clash, func(c model.ParkingSpot) bool { return c.ID != spot.ID }) {
					return fmt.Errorf("%w: label %s already exists in lot %s", errs.ErrValidation, label, spot.LotID)
				}
				changes["label"] = label
				spot.Label = label
			}
		}
		if edit.X != nil {
			changes["x"] = *edit.X
			spot.X = *edit.X
		}
		if edit.Y != nil {
			changes["y"] = *edit.Y
			spot.Y = *edit.Y
		}
		if len(changes) == 0 {
			return nil
		}

		updated, err := tx.UpdateSpot(ctx, spotID, nil, changes)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("%w: parking spot %s", errs.ErrNotFound, spotID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"spot_id": spot.ID, "label": spot.Label}).Info("spot updated")
	s.notifier.Dispatch(events.Event{
		Type:      events.LayoutChanged,
		LotID:     spot.LotID,
		SpotID:    spot.ID,
		SpotLabel: spot.Label,
		Count:     1,
		At:        s.now(),
	})
	return spot, nil
}

func (s *Service) newSpots(lotID string, descs []Descriptor) []model.ParkingSpot {
	spots := make([]model.ParkingSpot, 0, len(descs))
	for _, d := range descs {
		spots = append(spots, model.ParkingSpot{
			ID:     uuid.NewString(),
			LotID:  lotID,
			Label:  d.Label,
			X:      d.X,
			Y:      d.Y,
			Width:  d.Width,
			Height: d.Height,
			Status: model.SpotAvailable,
		})
	}
	return spots
}

func (s *Service) committed(lotID string, n int, msg string) {
	s.log.WithFields(logrus.Fields{"lot_id": lotID, "spots": n}).Info(msg)
	s.notifier.Dispatch(events.Event{
		Type:  events.LayoutChanged,
		LotID: lotID,
		Count: n,
		At:    s.now(),
	})
}
