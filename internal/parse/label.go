package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var labelRe = regexp.MustCompile(`^([A-Za-z]+)\s*-?\s*(\d+)$`)

// ParsedLabel holds the column letters and row number of a designer label.
type ParsedLabel struct {
	Column string
	Number int
}

// String renders the canonical label form, e.g. "A3".
func (p ParsedLabel) String() string {
	return fmt.Sprintf("%s%d", p.Column, p.Number)
}

// ParseLabel splits a spot label such as "A3", "b12" or "C-4" into its
// column letters (upper-cased) and numeric suffix.
func ParseLabel(raw string) (ParsedLabel, error) {
	s := strings.TrimSpace(raw)
	m := labelRe.FindStringSubmatch(s)
	if m == nil {
		return ParsedLabel{}, fmt.Errorf("unable to parse spot label: %q", raw)
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return ParsedLabel{}, fmt.Errorf("unable to parse number in spot label %q: %w", raw, err)
	}
	return ParsedLabel{Column: strings.ToUpper(m[1]), Number: n}, nil
}

// ColumnIndex returns the zero-based index of a single-letter column, A=0.
func ColumnIndex(column string) (int, error) {
	if len(column) != 1 || column[0] < 'A' || column[0] > 'Z' {
		return 0, fmt.Errorf("column must be a single letter A-Z, got %q", column)
	}
	return int(column[0] - 'A'), nil
}

// ColumnLetter is the inverse of ColumnIndex.
func ColumnLetter(index int) (string, error) {
	if index < 0 || index > 25 {
		return "", fmt.Errorf("column index %d is outside A-Z", index)
	}
	return string(rune('A' + index)), nil
}
