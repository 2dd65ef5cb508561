package layout

import (
	"fmt"
	"strings"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/parse"
)

// Designer grid geometry, in designer units.
const (
	SpotWidth  = 60
	SpotHeight = 100
	SpotMargin = 10

	columnPitch = SpotWidth + SpotMargin
	rowPitch    = SpotHeight + SpotMargin
)

// Designer generates labelled spots on a letter-by-number grid, continuing
// from the labels a lot already has.
type Designer struct {
	taken  map[string]bool
	parsed []parse.ParsedLabel
}

// NewDesigner seeds a Designer with a lot's current labels. Labels that are
// not of the letter-number form still block collisions but do not affect
// sequencing.
func NewDesigner(labels []string) *Designer {
	d := &Designer{taken: make(map[string]bool, len(labels))}
	for _, l := range labels {
		d.taken[strings.ToUpper(strings.TrimSpace(l))] = true
		if p, err := parse.ParseLabel(l); err == nil {
			if _, err := parse.ColumnIndex(p.Column); err == nil {
				d.parsed = append(d.parsed, p)
			}
		}
	}
	return d
}

// AddColumn appends count spots to a column, numbering on from the column's
// highest number. An empty column starts the letter after the highest one in use.
func (d *Designer) AddColumn(count int, column string) ([]Descriptor, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", errs.ErrValidation)
	}

	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		next := 0
		for _, p := range d.parsed {
			idx, _ := parse.ColumnIndex(p.Column)
			if idx+1 > next {
				next = idx + 1
			}
		}
		letter, err := parse.ColumnLetter(next)
		if err != nil {
			return nil, fmt.Errorf("%w: no column letters left", errs.ErrValidation)
		}
		column = letter
	}
	colIdx, err := parse.ColumnIndex(column)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}

	start := 1
	for _, p := range d.parsed {
		if p.Column == column && p.Number >= start {
			start = p.Number + 1
		}
	}

	out := make([]Descriptor, 0, count)
	for n := start; n < start+count; n++ {
		out = append(out, Descriptor{
			Label:  parse.ParsedLabel{Column: column, Number: n}.String(),
			X:      float64(colIdx * columnPitch),
			Y:      float64((n - 1) * rowPitch),
			Width:  SpotWidth,
			Height: SpotHeight,
		})
	}
	return d.claim(out)
}

// AddRow appends count spots to a row, lettering on from the row's highest
// letter. Row 0 starts the row after the highest number in use.
func (d *Designer) AddRow(count, row int) ([]Descriptor, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", errs.ErrValidation)
	}
	if row < 0 {
		return nil, fmt.Errorf("%w: row must be positive", errs.ErrValidation)
	}
	if row == 0 {
		for _, p := range d.parsed {
			if p.Number > row {
				row = p.Number
			}
		}
		row++
	}

	start := 0
	for _, p := range d.parsed {
		if p.Number != row {
			continue
		}
		if idx, _ := parse.ColumnIndex(p.Column); idx+1 > start {
			start = idx + 1
		}
	}
	if start+count > 26 {
		return nil, fmt.Errorf("%w: row %d has room for %d more spots", errs.ErrValidation, row, 26-start)
	}

	out := make([]Descriptor, 0, count)
	for idx := start; idx < start+count; idx++ {
		letter, _ := parse.ColumnLetter(idx)
		out = append(out, Descriptor{
			Label:  parse.ParsedLabel{Column: letter, Number: row}.String(),
			X:      float64(idx * columnPitch),
			Y:      float64((row - 1) * rowPitch),
			Width:  SpotWidth,
			Height: SpotHeight,
		})
	}
	return d.claim(out)
}

// claim rejects the batch if any label is taken, otherwise records it.
func (d *Designer) claim(batch []Descriptor) ([]Descriptor, error) {
	for _, desc := range batch {
		if d.taken[strings.ToUpper(desc.Label)] {
			return nil, fmt.Errorf("%w: label %s already exists in this lot", errs.ErrValidation, desc.Label)
		}
	}
	for _, desc := range batch {
		d.taken[strings.ToUpper(desc.Label)] = true
		p, _ := parse.ParseLabel(desc.Label)
		d.parsed = append(d.parsed, p)
	}
	return batch, nil
}
