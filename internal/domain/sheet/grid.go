// Package sheet provides the comma/newline grid codec used as the content
// encoding of sheet-type virtual files.
package sheet

import (
	"strings"
)

// Display dimensions the grid is padded to for presentation. Padding is
// virtual: it never grows the persisted content until a padded cell is edited.
const (
	DisplayRows = 50
	DisplayCols = 20
)

// Grid is the decoded form of a sheet file's content: newline-separated
// rows of comma-separated cells.
type Grid struct {
	rows [][]string
}

// Decode parses sheet content into a grid. Empty content decodes to an
// empty grid.
func Decode(content string) *Grid {
	g := &Grid{}
	if content == "" {
		return g
	}
	for _, line := range strings.Split(content, "\n") {
		g.rows = append(g.rows, strings.Split(line, ","))
	}
	return g
}

// Encode serializes the persisted grid back to file content.
func (g *Grid) Encode() string {
	lines := make([]string, len(g.rows))
	for i, row := range g.rows {
		lines[i] = strings.Join(row, ",")
	}
	return strings.Join(lines, "\n")
}

// Rows returns the persisted row count.
func (g *Grid) Rows() int {
	return len(g.rows)
}

// Cols returns the widest persisted row's cell count.
func (g *Grid) Cols() int {
	max := 0
	for _, row := range g.rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Cell returns the persisted value at (row, col), or empty for cells in the
// virtual padding region.
func (g *Grid) Cell(row, col int) string {
	if row < 0 || col < 0 || row >= len(g.rows) || col >= len(g.rows[row]) {
		return ""
	}
	return g.rows[row][col]
}

// SetCell writes a value at (row, col), growing the persisted grid to cover
// the edited cell. Existing content is never shrunk, so row and column
// counts are non-decreasing across edits.
func (g *Grid) SetCell(row, col int, value string) {
	if row < 0 || col < 0 {
		return
	}
	for len(g.rows) <= row {
		g.rows = append(g.rows, []string{})
	}
	for i := range g.rows {
		need := col + 1
		if i != row {
			// Only the edited row is forced out to the edited column;
			// other rows keep their width.
			continue
		}
		for len(g.rows[i]) < need {
			g.rows[i] = append(g.rows[i], "")
		}
	}
	g.rows[row][col] = value
}

// DisplaySize returns the padded dimensions used for presentation: at least
// DisplayRows by DisplayCols, larger when the persisted grid exceeds them.
func (g *Grid) DisplaySize() (rows, cols int) {
	rows, cols = DisplayRows, DisplayCols
	if r := g.Rows(); r > rows {
		rows = r
	}
	if c := g.Cols(); c > cols {
		cols = c
	}
	return rows, cols
}
