package yomidoc

import (
	"math"
	"sort"
	"strings"
)

// Alignment bucket sizes for table detection: words whose edges agree
// within these tolerances are treated as sharing a column or row.
const (
	tableXBucket = 5.0
	tableYBucket = 3.0
)

// TableRegion is a detected table: its bounding box plus the cell grid
// in row-major order.
type TableRegion struct {
	X0     float64
	Top    float64
	X1     float64
	Bottom float64
	Rows   [][]string
}

// Contains reports whether a word's center falls inside the region.
func (t TableRegion) Contains(w WordBox) bool {
	cx, cy := w.CenterX(), w.MidY()
	return cx >= t.X0 && cx <= t.X1 && cy >= t.Top && cy <= t.Bottom
}

// TableDetector finds grid-aligned word clusters. A cluster only counts
// as a table when it has enough rows, columns, and populated cells;
// ordinary justified paragraphs align on the left edge but fail the
// column minimum.
type TableDetector struct {
	MinRows  int
	MinCols  int
	MinCells int
}

// NewTableDetector creates a detector with default minimums.
func NewTableDetector() *TableDetector {
	return &TableDetector{MinRows: 3, MinCols: 3, MinCells: 9}
}

// Detect returns the table regions found on one page's words.
func (td *TableDetector) Detect(words []WordBox) []TableRegion {
	if len(words) < td.MinCells {
		return nil
	}

	rows := bucketBy(words, func(w WordBox) float64 { return w.Top }, tableYBucket)
	if len(rows) < td.MinRows {
		return nil
	}

	// Count distinct X-aligned columns across the candidate rows.
	xKeys := make(map[int][]WordBox)
	for _, row := range rows {
		for _, w := range row {
			key := int(math.Round(w.X0 / tableXBucket))
			xKeys[key] = append(xKeys[key], w)
		}
	}

	// A column must repeat across rows to count as table structure.
	alignedCols := 0
	for _, col := range xKeys {
		if len(col) >= td.MinRows {
			alignedCols++
		}
	}
	if alignedCols < td.MinCols {
		return nil
	}

	// Keep only rows participating in the aligned grid.
	var gridRows [][]WordBox
	for _, row := range rows {
		aligned := 0
		for _, w := range row {
			key := int(math.Round(w.X0 / tableXBucket))
			if len(xKeys[key]) >= td.MinRows {
				aligned++
			}
		}
		if aligned >= td.MinCols {
			gridRows = append(gridRows, row)
		}
	}
	if len(gridRows) < td.MinRows {
		return nil
	}

	cells := 0
	for _, row := range gridRows {
		cells += len(row)
	}
	if cells < td.MinCells {
		return nil
	}

	region := TableRegion{
		X0:     math.Inf(1),
		Top:    math.Inf(1),
		X1:     math.Inf(-1),
		Bottom: math.Inf(-1),
	}
	for _, row := range gridRows {
		cellTexts := make([]string, 0, len(row))
		for _, w := range row {
			cellTexts = append(cellTexts, w.Text)
			region.X0 = math.Min(region.X0, w.X0)
			region.Top = math.Min(region.Top, w.Top)
			region.X1 = math.Max(region.X1, w.X1)
			region.Bottom = math.Max(region.Bottom, w.Bottom)
		}
		region.Rows = append(region.Rows, cellTexts)
	}
	return []TableRegion{region}
}

// ExcludeTables returns the words whose centers fall outside every
// region, so table content is not extracted twice.
func ExcludeTables(words []WordBox, regions []TableRegion) []WordBox {
	if len(regions) == 0 {
		return words
	}
	kept := make([]WordBox, 0, len(words))
	for _, w := range words {
		inside := false
		for _, r := range regions {
			if r.Contains(w) {
				inside = true
				break
			}
		}
		if !inside {
			kept = append(kept, w)
		}
	}
	return kept
}

// FormatTable renders a region as a bracketed block with pipe-joined
// cells.
func FormatTable(t TableRegion) string {
	var b strings.Builder
	b.WriteString("[TABLE:\n")
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteByte('\n')
	}
	b.WriteString("[TABLE END]")
	return b.String()
}

// bucketBy groups words by a coordinate within a tolerance, returning
// groups ordered by the coordinate.
func bucketBy(words []WordBox, coord func(WordBox) float64, tolerance float64) [][]WordBox {
	sorted := make([]WordBox, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return coord(sorted[i]) < coord(sorted[j]) })

	var groups [][]WordBox
	var cur []WordBox
	var ref float64
	for _, w := range sorted {
		if len(cur) > 0 && coord(w)-ref > tolerance {
			groups = append(groups, cur)
			cur = nil
		}
		if len(cur) == 0 {
			ref = coord(w)
		}
		cur = append(cur, w)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].X0 < g[j].X0 })
	}
	return groups
}
