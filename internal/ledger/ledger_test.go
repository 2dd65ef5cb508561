package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/model"
	"valet-parking-backend/internal/store"
	"valet-parking-backend/internal/testutil"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (*Ledger, store.Store, *time.Time) {
	t.Helper()
	st := store.NewGormStore(testutil.NewDB(t))
	clock := base
	return New(st, func() time.Time { return clock }), st, &clock
}

func stay(plate string) StayInput {
	return StayInput{
		CustomerID:           "cust-1",
		Make:                 "Toyota",
		Model:                "Corolla",
		Color:                "Blue",
		LicensePlate:         plate,
		ParkingSpotID:        "spot-1",
		ParkingSpotLabel:     "A1",
		ValetID:              "valet-7",
		CheckInTime:          base,
		ExpectedCheckOutTime: base.Add(2 * time.Hour),
	}
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizePlate("  abc123 "))
	assert.Equal(t, "", NormalizePlate("   "))
}

func TestLedger_Create(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newLedger(t)

	id, err := l.Create(ctx, stay(" abc123"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	v, err := l.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", v.LicensePlate)
	assert.Equal(t, model.VehicleCheckedIn, v.Status)
	assert.Equal(t, "A1", v.ParkingSpotLabel)
	assert.False(t, v.ActualCheckOutTime.Valid)
}

func TestLedger_CreateValidation(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newLedger(t)

	cases := map[string]func(*StayInput){
		"empty plate":     func(in *StayInput) { in.LicensePlate = "  " },
		"missing valet":   func(in *StayInput) { in.ValetID = "" },
		"missing spot":    func(in *StayInput) { in.ParkingSpotID = "" },
		"missing owner":   func(in *StayInput) { in.CustomerID = "" },
		"expected before": func(in *StayInput) { in.ExpectedCheckOutTime = base.Add(-time.Minute) },
		"expected equal":  func(in *StayInput) { in.ExpectedCheckOutTime = base },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := stay("ABC123")
			mutate(&in)
			_, err := l.Create(ctx, in)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}

	active, err := l.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestLedger_FindActiveByLicensePlate(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newLedger(t)

	_, err := l.FindActiveByLicensePlate(ctx, "ABC123")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = l.FindActiveByLicensePlate(ctx, " ")
	assert.ErrorIs(t, err, errs.ErrValidation)

	id, err := l.Create(ctx, stay("ABC123"))
	require.NoError(t, err)

	v, err := l.FindActiveByLicensePlate(ctx, "abc123 ")
	require.NoError(t, err)
	assert.Equal(t, id, v.ID)

	require.NoError(t, l.Complete(ctx, id))
	_, err = l.FindActiveByLicensePlate(ctx, "ABC123")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLedger_CreateRejectsSecondActiveStayForPlate(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newLedger(t)

	_, err := l.Create(ctx, stay("DUP1"))
	require.NoError(t, err)

	second := stay("dup1")
	second.ParkingSpotID = "spot-2"
	_, err = l.Create(ctx, second)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestLedger_FindActiveDuplicateIsIntegrityError(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	// rows written before the plate index existed
	require.NoError(t, gormDB.Exec("DROP INDEX idx_vehicle_active_plate").Error)
	l := New(store.NewGormStore(gormDB), func() time.Time { return base })

	first := stay("DUP1")
	second := stay("DUP1")
	second.ParkingSpotID = "spot-2"
	_, err := l.Create(ctx, first)
	require.NoError(t, err)
	_, err = l.Create(ctx, second)
	require.NoError(t, err)

	_, err = l.FindActiveByLicensePlate(ctx, "DUP1")
	assert.ErrorIs(t, err, errs.ErrIntegrity)
}

func TestLedger_CompleteOnce(t *testing.T) {
	ctx := context.Background()
	l, _, clock := newLedger(t)

	id, err := l.Create(ctx, stay("XYZ9"))
	require.NoError(t, err)

	*clock = base.Add(90 * time.Minute)
	require.NoError(t, l.Complete(ctx, id))

	v, err := l.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleCheckedOut, v.Status)
	require.True(t, v.ActualCheckOutTime.Valid)
	assert.True(t, v.ActualCheckOutTime.Time.Equal(base.Add(90*time.Minute)))

	err = l.Complete(ctx, id)
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	err = l.Complete(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLedger_ListActiveNewestFirst(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newLedger(t)

	older := stay("OLD1")
	newer := stay("NEW1")
	newer.ParkingSpotID = "spot-2"
	newer.CheckInTime = base.Add(time.Hour)
	newer.ExpectedCheckOutTime = base.Add(3 * time.Hour)

	_, err := l.Create(ctx, older)
	require.NoError(t, err)
	_, err = l.Create(ctx, newer)
	require.NoError(t, err)

	active, err := l.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "NEW1", active[0].LicensePlate)
	assert.Equal(t, "OLD1", active[1].LicensePlate)

	history, err := l.ListByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
