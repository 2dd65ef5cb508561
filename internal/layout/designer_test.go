package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valet-parking-backend/internal/errs"
)

func labelsOf(descs []Descriptor) []string {
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.Label)
	}
	return out
}

func TestDesigner_AddColumnEmptyLot(t *testing.T) {
	d := NewDesigner(nil)
	descs, err := d.AddColumn(3, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3"}, labelsOf(descs))
	assert.Equal(t, Descriptor{Label: "A3", X: 0, Y: 220, Width: 60, Height: 100}, descs[2])
}

func TestDesigner_AddColumnContinuesNumbering(t *testing.T) {
	d := NewDesigner([]string{"A1", "A2", "B1", "VIP"})

	descs, err := d.AddColumn(2, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"A3", "A4"}, labelsOf(descs))
	assert.Equal(t, float64(220), descs[0].Y)

	descs, err = d.AddColumn(1, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1"}, labelsOf(descs))
	assert.Equal(t, float64(140), descs[0].X)
}

func TestDesigner_AddColumnErrors(t *testing.T) {
	d := NewDesigner([]string{"Z1"})

	_, err := d.AddColumn(1, "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = d.AddColumn(0, "A")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = d.AddColumn(1, "AA")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestDesigner_AddRow(t *testing.T) {
	d := NewDesigner([]string{"A1", "B1", "A2"})

	descs, err := d.AddRow(2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "D1"}, labelsOf(descs))
	assert.Equal(t, Descriptor{Label: "C1", X: 140, Y: 0, Width: 60, Height: 100}, descs[0])

	descs, err = d.AddRow(2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A3", "B3"}, labelsOf(descs))
	assert.Equal(t, float64(220), descs[1].Y)
}

func TestDesigner_AddRowOutOfLetters(t *testing.T) {
	d := NewDesigner([]string{"Y4"})
	_, err := d.AddRow(3, 4)
	require.ErrorIs(t, err, errs.ErrValidation)

	descs, err := d.AddRow(1, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z4"}, labelsOf(descs))
}

func TestDesigner_RejectsCollision(t *testing.T) {
	d := NewDesigner([]string{"A1"})
	_, err := d.claim([]Descriptor{{Label: "B1"}, {Label: "a1"}})
	require.ErrorIs(t, err, errs.ErrValidation)

	// a rejected batch claims nothing
	descs, err := d.AddColumn(1, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, labelsOf(descs))
}
