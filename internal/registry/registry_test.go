package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/model"
	"valet-parking-backend/internal/store"
	"valet-parking-backend/internal/testutil"
)

func seed(t *testing.T, st store.Store, spots ...model.ParkingSpot) {
	t.Helper()
	for i := range spots {
		if spots[i].ID == "" {
			spots[i].ID = uuid.NewString()
		}
		if spots[i].Status == "" {
			spots[i].Status = model.SpotAvailable
		}
	}
	require.NoError(t, st.CreateSpots(context.Background(), spots))
}

func TestRegistry_ListAvailable(t *testing.T) {
	ctx := context.Background()
	st := store.NewGormStore(testutil.NewDB(t))
	seed(t, st,
		model.ParkingSpot{LotID: "lot1", Label: "A1"},
		model.ParkingSpot{LotID: "lot1", Label: "A2", Status: model.SpotReserved},
		model.ParkingSpot{LotID: "lot1", Label: "A3"},
		model.ParkingSpot{LotID: "lot2", Label: "A1"},
	)
	reg := New(st)

	spots, err := reg.ListAvailable(ctx, "lot1")
	require.NoError(t, err)
	labels := make([]string, 0, len(spots))
	for _, s := range spots {
		assert.Equal(t, "lot1", s.LotID)
		assert.Equal(t, model.SpotAvailable, s.Status)
		labels = append(labels, s.Label)
	}
	assert.ElementsMatch(t, []string{"A1", "A3"}, labels)

	all, err := reg.ListLot(ctx, "lot1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRegistry_MarkOccupied(t *testing.T) {
	ctx := context.Background()
	st := store.NewGormStore(testutil.NewDB(t))
	spot := model.ParkingSpot{ID: uuid.NewString(), LotID: "lot1", Label: "A1"}
	seed(t, st, spot)
	reg := New(st)

	require.NoError(t, reg.MarkOccupied(ctx, spot.ID, "vehicle-1"))

	got, err := reg.Get(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SpotOccupied, got.Status)
	assert.Equal(t, "vehicle-1", got.CurrentVehicleID.String)

	err = reg.MarkOccupied(ctx, spot.ID, "vehicle-2")
	assert.ErrorIs(t, err, errs.ErrConflict)

	got, err = reg.Get(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, "vehicle-1", got.CurrentVehicleID.String, "loser must not overwrite the occupant")

	err = reg.MarkOccupied(ctx, "missing", "vehicle-3")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRegistry_MarkAvailableIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewGormStore(testutil.NewDB(t))
	spot := model.ParkingSpot{ID: uuid.NewString(), LotID: "lot1", Label: "A1"}
	seed(t, st, spot)
	reg := New(st)

	require.NoError(t, reg.MarkOccupied(ctx, spot.ID, "vehicle-1"))
	require.NoError(t, reg.MarkAvailable(ctx, spot.ID))
	require.NoError(t, reg.MarkAvailable(ctx, spot.ID))

	got, err := reg.Get(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SpotAvailable, got.Status)
	assert.False(t, got.CurrentVehicleID.Valid)

	assert.ErrorIs(t, reg.MarkAvailable(ctx, "missing"), errs.ErrNotFound)
}

func TestRegistry_SetStatus(t *testing.T) {
	ctx := context.Background()
	st := store.NewGormStore(testutil.NewDB(t))
	free := model.ParkingSpot{ID: uuid.NewString(), LotID: "lot1", Label: "A1"}
	taken := model.ParkingSpot{ID: uuid.NewString(), LotID: "lot1", Label: "A2"}
	seed(t, st, free, taken)
	reg := New(st)
	require.NoError(t, reg.MarkOccupied(ctx, taken.ID, "vehicle-1"))

	spot, err := reg.SetStatus(ctx, free.ID, model.SpotReserved)
	require.NoError(t, err)
	assert.Equal(t, model.SpotReserved, spot.Status)

	_, err = reg.SetStatus(ctx, free.ID, model.SpotOccupied)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = reg.SetStatus(ctx, free.ID, "broken")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = reg.SetStatus(ctx, taken.ID, model.SpotUnavailable)
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	spot, err = reg.SetStatus(ctx, free.ID, model.SpotAvailable)
	require.NoError(t, err)
	assert.Equal(t, model.SpotAvailable, spot.Status)
}
