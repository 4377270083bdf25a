package yomidoc

import (
	"fmt"
	"strings"
	"testing"
)

// gridWords lays out a rows x cols grid of single-cell words.
func gridWords(rows, cols int) []WordBox {
	var words []WordBox
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := 100 + float64(c)*80
			y := 200 + float64(r)*20
			words = append(words, WordBox{
				Text: fmt.Sprintf("セル%d%d", r, c),
				X0:   x, Top: y, X1: x + 40, Bottom: y + 12,
				FontSize: 10,
			})
		}
	}
	return words
}

func TestTableDetector_Grid(t *testing.T) {
	td := NewTableDetector()

	regions := td.Detect(gridWords(3, 3))
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if len(regions[0].Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(regions[0].Rows))
	}
	if regions[0].Rows[0][0] != "セル00" {
		t.Errorf("first cell = %q", regions[0].Rows[0][0])
	}
	if regions[0].X0 != 100 || regions[0].Top != 200 {
		t.Errorf("bbox origin = (%v, %v)", regions[0].X0, regions[0].Top)
	}
}

func TestTableDetector_RejectsSmallClusters(t *testing.T) {
	td := NewTableDetector()

	tests := []struct {
		name  string
		words []WordBox
	}{
		{"two rows", gridWords(2, 3)},
		{"two columns", gridWords(3, 2)},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := td.Detect(tt.words); got != nil {
				t.Errorf("Detect() = %v, want nil", got)
			}
		})
	}
}

func TestTableDetector_ParagraphNotATable(t *testing.T) {
	// Left-justified prose: rows share one X origin, nothing else.
	var words []WordBox
	for r := 0; r < 5; r++ {
		y := 200 + float64(r)*20
		words = append(words, WordBox{Text: "行頭", X0: 100, Top: y, X1: 140, Bottom: y + 12, FontSize: 10})
		// Continuation words drift with the text, never aligning.
		words = append(words, WordBox{Text: "続き", X0: 145 + float64(r)*17, Top: y, X1: 185 + float64(r)*17, Bottom: y + 12, FontSize: 10})
	}

	if got := NewTableDetector().Detect(words); got != nil {
		t.Errorf("prose detected as table: %v", got)
	}
}

func TestExcludeTables(t *testing.T) {
	words := gridWords(3, 3)
	outside := WordBox{Text: "本文", X0: 100, Top: 500, X1: 140, Bottom: 512, FontSize: 10}
	all := append(append([]WordBox{}, words...), outside)

	regions := NewTableDetector().Detect(words)
	kept := ExcludeTables(all, regions)
	if len(kept) != 1 || kept[0].Text != "本文" {
		t.Errorf("kept = %v, want only the outside word", kept)
	}

	// No regions: words pass through untouched.
	if got := ExcludeTables(all, nil); len(got) != len(all) {
		t.Errorf("nil regions changed the word list")
	}
}

func TestFormatTable(t *testing.T) {
	region := TableRegion{Rows: [][]string{
		{"品名", "数量", "単価"},
		{"鉛筆", "10", "50"},
	}}

	got := FormatTable(region)
	if !strings.HasPrefix(got, "[TABLE:\n") {
		t.Errorf("missing opening marker: %q", got)
	}
	if !strings.HasSuffix(got, "[TABLE END]") {
		t.Errorf("missing closing marker: %q", got)
	}
	if !strings.Contains(got, "品名 | 数量 | 単価") {
		t.Errorf("missing joined row: %q", got)
	}
}
