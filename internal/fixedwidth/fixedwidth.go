// Package fixedwidth implements the FORTRAN-style numeric table codec
// described in spec.md §4.4: fixed-column parsing/formatting of the
// tables embedded in HEC-RAS plan, geometry, and unsteady-flow text
// files, plus the backup helper every mutating caller in
// internal/textfile and internal/planregistry relies on.
package fixedwidth

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

// Defaults per §4.4.
const (
	DefaultWidth     = 8
	DefaultPerLine   = 10
	DefaultPrecision = 2
)

// MissingSentinel is the conventional "missing value" marker (§4.4
// edge cases); preserved unchanged by Parse/Format.
const MissingSentinel = -9999

// Parse reads count numeric values from lines[startIndex:], W columns
// wide, and returns them as float64s plus the index of the first line
// not consumed. Each line is cut into consecutive W-character columns,
// so a value wider than W is read as parts of two columns, not rejected.
func Parse(lines []string, startIndex int, count int, width int) ([]float64, int, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	values := make([]float64, 0, count)
	lineIdx := startIndex
	for len(values) < count {
		if lineIdx >= len(lines) {
			return nil, lineIdx, herr.New(herr.ParseError, fmt.Sprintf("unexpected end of file: expected %d values, got %d", count, len(values))).WithLine(lineIdx+1, "")
		}
		line := lines[lineIdx]
		parsed, err := parseLine(line, width)
		if err != nil {
			return nil, lineIdx, herr.Wrap(herr.ParseError, "malformed fixed-width line", err).WithLine(lineIdx+1, line)
		}
		remaining := count - len(values)
		if len(parsed) > remaining {
			parsed = parsed[:remaining]
		}
		values = append(values, parsed...)
		lineIdx++
	}
	return values, lineIdx, nil
}

func parseLine(line string, width int) ([]float64, error) {
	var values []float64
	for i := 0; i < len(line); i += width {
		end := i + width
		if end > len(line) {
			end = len(line)
		}
		field := strings.TrimSpace(line[i:end])
		if field == "" {
			continue
		}
		if strings.ContainsAny(field, "eEdD") && !isAllDigitsSign(field) {
			// scientific/FORTRAN-D notation disallowed per §4.4.
			return nil, fmt.Errorf("scientific notation not allowed: %q", field)
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric value %q: %w", field, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func isAllDigitsSign(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '-' && r != '+' && r != '.' {
			return false
		}
	}
	return true
}

// Format renders values into fixed-width lines: W columns wide, V
// values per line, P decimal places, right-justified and space-padded.
// The last line may be partial. Values exceeding W characters once
// formatted are rejected (ValueError in the spec's terms).
func Format(values []float64, width, perLine, precision int) ([]string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if perLine <= 0 {
		perLine = DefaultPerLine
	}
	if precision < 0 {
		precision = DefaultPrecision
	}

	var lines []string
	var b strings.Builder
	for i, v := range values {
		field, err := formatValue(v, width, precision)
		if err != nil {
			return nil, herr.Wrap(herr.FormatViolation, fmt.Sprintf("value %v exceeds column width %d", v, width), err)
		}
		b.WriteString(field)
		if (i+1)%perLine == 0 {
			lines = append(lines, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		lines = append(lines, b.String())
	}
	return lines, nil
}

func formatValue(v float64, width, precision int) (string, error) {
	var s string
	if v == MissingSentinel {
		s = strconv.Itoa(MissingSentinel)
	} else {
		s = strconv.FormatFloat(v, 'f', precision, 64)
	}
	if len(s) > width {
		return "", fmt.Errorf("formatted value %q exceeds width %d", s, width)
	}
	return fmt.Sprintf("%*s", width, s), nil
}

// pairCountKeywords lists the table keywords whose declared count is a
// count of (station, elevation) pairs rather than raw values (§4.4).
var pairCountKeywords = map[string]bool{
	"Station Elevation":           true,
	"XS GIS Cut Line Station Elev": true,
	"Mann Station Elev":            true,
}

// InterpretCount resolves a table's declared count into the number of
// raw scalar values to read, accounting for tables whose count is a
// count of (x, y) pairs.
func InterpretCount(keyword string, rawCount int) int {
	if pairCountKeywords[keyword] {
		return rawCount * 2
	}
	return rawCount
}

// CreateBackup copies path to path+".bak", overwriting any existing
// backup. Used by every atomic text mutation in internal/textfile and
// internal/planregistry so they share one backup contract.
func CreateBackup(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return herr.Wrap(herr.IoError, "open file for backup", err).WithPath(path)
	}
	defer src.Close()

	dst, err := os.Create(path + ".bak")
	if err != nil {
		return herr.Wrap(herr.IoError, "create backup file", err).WithPath(path + ".bak")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return herr.Wrap(herr.IoError, "copy to backup file", err).WithPath(path + ".bak")
	}
	return nil
}
