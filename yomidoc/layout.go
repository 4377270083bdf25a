package yomidoc

import (
	"sort"
	"strings"
)

// Reconstructor rebuilds linear reading order from word boxes: columns by
// horizontal gap, lines by vertical proximity, words joined with
// language-aware spacing.
type Reconstructor struct {
	// ColumnGap is the horizontal gap that starts a new column.
	ColumnGap float64
	// LineHeight is the vertical distance that starts a new line.
	LineHeight float64
}

// NewReconstructor creates a Reconstructor with default thresholds.
func NewReconstructor() *Reconstructor {
	return &Reconstructor{
		ColumnGap:  50.0,
		LineHeight: 15.0,
	}
}

// Reconstruct produces the page's linear text: columns left to right,
// lines top to bottom within each column, columns separated by a blank
// line. An empty word list yields an empty string.
func (r *Reconstructor) Reconstruct(words []WordBox) string {
	if len(words) == 0 {
		return ""
	}

	columns := r.splitColumns(words)

	var parts []string
	for _, col := range columns {
		lines := r.groupLines(col)
		var colText []string
		for _, line := range lines {
			colText = append(colText, r.joinLine(line))
		}
		parts = append(parts, strings.Join(colText, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// splitColumns sorts boxes by left edge and starts a new column whenever
// the horizontal gap between consecutive boxes exceeds ColumnGap. The
// result is independent of the input ordering.
func (r *Reconstructor) splitColumns(words []WordBox) [][]WordBox {
	sorted := make([]WordBox, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].X0 != sorted[j].X0 {
			return sorted[i].X0 < sorted[j].X0
		}
		return sorted[i].Top < sorted[j].Top
	})

	var columns [][]WordBox
	var cur []WordBox
	var curRight float64
	for _, w := range sorted {
		if len(cur) > 0 && w.X0-curRight > r.ColumnGap {
			columns = append(columns, cur)
			cur = nil
		}
		cur = append(cur, w)
		if w.X1 > curRight {
			curRight = w.X1
		}
	}
	if len(cur) > 0 {
		columns = append(columns, cur)
	}
	return columns
}

// groupLines sorts one column's boxes by (top, left) and groups them into
// lines using the LineHeight tolerance against each line's reference y.
func (r *Reconstructor) groupLines(words []WordBox) [][]WordBox {
	sorted := make([]WordBox, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines [][]WordBox
	var cur []WordBox
	var refY float64
	for _, w := range sorted {
		if len(cur) > 0 && w.Top-refY > r.LineHeight {
			lines = append(lines, cur)
			cur = nil
		}
		if len(cur) == 0 {
			refY = w.Top
		}
		cur = append(cur, w)
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X0 < line[j].X0 })
	}
	return lines
}

// joinLine concatenates one line's boxes, inserting spaces per
// shouldAddSpace.
func (r *Reconstructor) joinLine(line []WordBox) string {
	var b strings.Builder
	for i, w := range line {
		if i > 0 && shouldAddSpace(line[i-1], w) {
			b.WriteByte(' ')
		}
		b.WriteString(w.Text)
	}
	return b.String()
}

// Punctuation that suppresses an inserted space on either side of a
// word boundary.
const (
	closePunct = "。、！？）】」』：；,.!?)]>\"'"
	openPunct  = "。、！？（【「『：；,.!?([<\"'"
)

// shouldAddSpace decides whether a space belongs between two adjacent
// boxes on a line. Japanese text is joined tightly; spaces only appear
// across real gaps between alphanumeric runs.
func shouldAddSpace(prev, next WordBox) bool {
	gap := next.X0 - prev.X1
	if gap < 2.0 {
		return false
	}

	last := lastRune(prev.Text)
	first := firstRune(next.Text)

	if isCJKRune(last) && isCJKRune(first) {
		return gap > 10.0
	}
	if last != 0 && strings.ContainsRune(closePunct, last) {
		return false
	}
	if first != 0 && strings.ContainsRune(openPunct, first) {
		return false
	}
	return gap > 3.0
}

// isCJKRune reports whether r falls in the Hiragana, Katakana, CJK
// Unified, or CJK Extension A blocks.
func isCJKRune(r rune) bool {
	switch {
	case r >= 0x3040 && r <= 0x309F: // Hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // Katakana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
		return true
	}
	return false
}

// hasCJK reports whether any rune of s is CJK.
func hasCJK(s string) bool {
	for _, r := range s {
		if isCJKRune(r) {
			return true
		}
	}
	return false
}
