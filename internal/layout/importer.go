package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"valet-parking-backend/internal/errs"
)

// Descriptor is one spot of a layout file or designer batch.
type Descriptor struct {
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// rawDescriptor keeps pointers so missing fields can be told apart from zeros.
type rawDescriptor struct {
	Label  *string  `json:"label"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// ParseDescriptors validates a layout file. The root must be a JSON array of
// at most max objects, each carrying a string label and numeric x, y, width
// and height. Any bad element rejects the whole file.
func ParseDescriptors(raw []byte, max int) ([]Descriptor, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: layout must be a JSON array of spots", errs.ErrValidation)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: malformed layout: %v", errs.ErrValidation, err)
	}
	if len(items) > max {
		return nil, fmt.Errorf("%w: layout has %d spots, at most %d are allowed", errs.ErrValidation, len(items), max)
	}

	out := make([]Descriptor, 0, len(items))
	seen := make(map[string]int, len(items))
	for i, item := range items {
		d, err := parseDescriptor(item)
		if err != nil {
			return nil, fmt.Errorf("%w: spot %d: %s", errs.ErrValidation, i, err)
		}
		key := strings.ToUpper(d.Label)
		if first, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: spot %d: label %q repeats spot %d", errs.ErrValidation, i, d.Label, first)
		}
		seen[key] = i
		out = append(out, d)
	}
	return out, nil
}

func parseDescriptor(item json.RawMessage) (Descriptor, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] != '{' {
		return Descriptor{}, errors.New("must be an object")
	}

	var r rawDescriptor
	if err := json.Unmarshal(item, &r); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Descriptor{}, fmt.Errorf("%s must be a %s", typeErr.Field, expectedType(typeErr.Field))
		}
		return Descriptor{}, err
	}

	var missing []string
	if r.Label == nil {
		missing = append(missing, "label")
	}
	if r.X == nil {
		missing = append(missing, "x")
	}
	if r.Y == nil {
		missing = append(missing, "y")
	}
	if r.Width == nil {
		missing = append(missing, "width")
	}
	if r.Height == nil {
		missing = append(missing, "height")
	}
	if len(missing) > 0 {
		return Descriptor{}, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}

	d := Descriptor{
		Label:  strings.TrimSpace(*r.Label),
		X:      *r.X,
		Y:      *r.Y,
		Width:  *r.Width,
		Height: *r.Height,
	}
	if d.Label == "" {
		return Descriptor{}, errors.New("label must not be empty")
	}
	if d.Width <= 0 || d.Height <= 0 {
		return Descriptor{}, errors.New("width and height must be positive")
	}
	return d, nil
}

func expectedType(field string) string {
	if field == "label" {
		return "string"
	}
	return "number"
}
