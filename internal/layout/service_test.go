package layout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valet-parking-backend/config"
	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/events"
	"valet-parking-backend/internal/model"
	"valet-parking-backend/internal/store"
	"valet-parking-backend/internal/testutil"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Dispatch(ev events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func layoutJSON(n int) []byte {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{"label":"S%d","x":%d,"y":0,"width":60,"height":100}`, i+1, i*70))
	}
	return []byte("[" + strings.Join(items, ",") + "]")
}

func newService(t *testing.T) (*Service, store.Store, *recordingNotifier) {
	t.Helper()
	st := store.NewGormStore(testutil.NewDB(t))
	log, _ := test.NewNullLogger()
	n := &recordingNotifier{}
	return NewService(st, n, log, config.ImportCeiling), st, n
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService(t)

	res, err := svc.Import(ctx, "lot1", layoutJSON(3))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.False(t, res.NothingToDo)

	spots, err := svc.ListLayout(ctx, "lot1")
	require.NoError(t, err)
	require.Len(t, spots, 3)
	for _, s := range spots {
		assert.Equal(t, model.SpotAvailable, s.Status)
		assert.Equal(t, "lot1", s.LotID)
		assert.NotEmpty(t, s.ID)
	}
	assert.Equal(t, 1, n.count())
}

func TestService_ImportOverCeilingWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService(t)

	_, err := svc.Import(ctx, "lot1", layoutJSON(config.ImportCeiling+1))
	require.ErrorIs(t, err, errs.ErrValidation)

	spots, err := svc.ListLayout(ctx, "lot1")
	require.NoError(t, err)
	assert.Empty(t, spots)
	assert.Zero(t, n.count())
}

func TestService_ImportAtCeiling(t *testing.T) {
	svc, _, _ := newService(t)
	res, err := svc.Import(context.Background(), "lot1", layoutJSON(config.ImportCeiling))
	require.NoError(t, err)
	assert.Equal(t, config.ImportCeiling, res.Created)
}

func TestService_ImportEmptyIsNothingToDo(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService(t)

	res, err := svc.Import(ctx, "lot1", []byte("[]"))
	require.NoError(t, err)
	assert.True(t, res.NothingToDo)
	assert.Zero(t, res.Created)

	spots, err := svc.ListLayout(ctx, "lot1")
	require.NoError(t, err)
	assert.Empty(t, spots)
	assert.Zero(t, n.count())
}

func TestService_ImportIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Import(ctx, "lot1", []byte(`[
		{"label": "A1", "x": 0, "y": 0, "width": 60, "height": 100},
		{"label": "A2", "x": 0, "y": "110", "width": 60, "height": 100}
	]`))
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.Import(ctx, "lot1", layoutJSON(2))
	require.NoError(t, err)
	_, err = svc.Import(ctx, "lot1", []byte(`[
		{"label": "S9", "x": 0, "y": 0, "width": 60, "height": 100},
		{"label": "S2", "x": 0, "y": 0, "width": 60, "height": 100}
	]`))
	require.ErrorIs(t, err, errs.ErrValidation)

	spots, err := svc.ListLayout(ctx, "lot1")
	require.NoError(t, err)
	assert.Len(t, spots, 2)

	// same labels are fine in another lot
	_, err = svc.Import(ctx, "lot2", layoutJSON(2))
	require.NoError(t, err)
}

func TestService_AddColumnAndRow(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService(t)

	res, err := svc.AddColumn(ctx, "lot1", 2, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	res, err = svc.AddColumn(ctx, "lot1", 1, "A")
	require.NoError(t, err)
	assert.Equal(t, "A3", res.Spots[0].Label)

	res, err = svc.AddRow(ctx, "lot1", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "B1", res.Spots[0].Label)
	assert.Equal(t, "C1", res.Spots[1].Label)

	_, err = svc.AddColumn(ctx, "lot1", config.ImportCeiling+1, "D")
	assert.ErrorIs(t, err, errs.ErrValidation)

	spots, err := svc.ListLayout(ctx, "lot1")
	require.NoError(t, err)
	assert.Len(t, spots, 5)
	assert.Equal(t, 3, n.count())
}

func TestService_UpdateSpot(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newService(t)

	res, err := svc.AddColumn(ctx, "lot1", 2, "A")
	require.NoError(t, err)
	a1 := res.Spots[0]

	label := "VIP1"
	x := 500.0
	spot, err := svc.UpdateSpot(ctx, a1.ID, SpotEdit{Label: &label, X: &x})
	require.NoError(t, err)
	assert.Equal(t, "VIP1", spot.Label)

	stored, err := st.GetSpot(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, "VIP1", stored.Label)
	assert.Equal(t, 500.0, stored.X)
	assert.Equal(t, 0.0, stored.Y)

	taken := "A2"
	_, err = svc.UpdateSpot(ctx, a1.ID, SpotEdit{Label: &taken})
	assert.ErrorIs(t, err, errs.ErrValidation)

	blank := " "
	_, err = svc.UpdateSpot(ctx, a1.ID, SpotEdit{Label: &blank})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.UpdateSpot(ctx, a1.ID, SpotEdit{})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.UpdateSpot(ctx, "missing", SpotEdit{X: &x})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestService_UpdateSpotLabelClashIgnoresCase(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newService(t)

	res, err := svc.Import(ctx, "lot1", []byte(`[
		{"label":"A1","x":0,"y":0,"width":60,"height":100},
		{"label":"B1","x":70,"y":0,"width":60,"height":100}
	]`))
	require.NoError(t, err)
	var a1, b1 model.ParkingSpot
	for _, sp := range res.Spots {
		if sp.Label == "A1" {
			a1 = sp
		} else {
			b1 = sp
		}
	}

	lower := "a1"
	_, err = svc.UpdateSpot(ctx, b1.ID, SpotEdit{Label: &lower})
	assert.ErrorIs(t, err, errs.ErrValidation)

	stored, err := st.GetSpot(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, "B1", stored.Label)

	// a spot may change the case of its own label
	spot, err := svc.UpdateSpot(ctx, a1.ID, SpotEdit{Label: &lower})
	require.NoError(t, err)
	assert.Equal(t, "a1", spot.Label)
}
