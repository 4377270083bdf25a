// Package yomidoc reconstructs linear Japanese text from positioned PDF
// word boxes: reading-order recovery, super/subscript attachment, footnote
// matching, and inventory-based verification of the extracted output.
package yomidoc

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// WordBox is a positioned text token. Coordinates are measured from the
// top-left corner of the page: Top < Bottom, X0 < X1.
type WordBox struct {
	Text     string
	X0       float64
	Top      float64
	X1       float64
	Bottom   float64
	FontSize float64
	FontName string
}

// Width returns the horizontal extent of the box.
func (w WordBox) Width() float64 { return w.X1 - w.X0 }

// Height returns the vertical extent of the box.
func (w WordBox) Height() float64 { return w.Bottom - w.Top }

// MidY returns the vertical midpoint of the box.
func (w WordBox) MidY() float64 { return (w.Top + w.Bottom) / 2 }

// CenterX returns the horizontal midpoint of the box.
func (w WordBox) CenterX() float64 { return (w.X0 + w.X1) / 2 }

// Size returns the font size, estimated from box height when size
// metadata is absent.
func (w WordBox) Size() float64 {
	if w.FontSize > 0 {
		return w.FontSize
	}
	return w.Height()
}

// Page holds one page's word boxes plus its dimensions.
type Page struct {
	Number int
	Width  float64
	Height float64
	Words  []WordBox
}

// PageSource supplies pages of word boxes. The PDF-backed implementation
// is PDFSource; tests use synthetic sources.
type PageSource interface {
	NumPages() int
	Page(n int) (Page, error)
	Close() error
}

// MemSource is a PageSource over in-memory pages. Pages are returned
// as-is; callers own the page numbering.
type MemSource struct {
	Pages []Page
}

func (m *MemSource) NumPages() int { return len(m.Pages) }

func (m *MemSource) Page(n int) (Page, error) {
	if n < 1 || n > len(m.Pages) {
		return Page{}, fmt.Errorf("page %d out of range (1-%d)", n, len(m.Pages))
	}
	return m.Pages[n-1], nil
}

func (m *MemSource) Close() error { return nil }

// Default page dimensions (A4 points) used when the PDF does not carry a
// usable MediaBox.
const (
	defaultPageWidth  = 595.0
	defaultPageHeight = 842.0
)

// PDFSource adapts a PDF file into pages of word boxes. Glyph runs
// reported by the reader are merged into words using an adaptive spacing
// threshold derived from the median glyph gap on each line.
type PDFSource struct {
	f      *os.File
	reader *pdf.Reader

	// WordGapFactor scales the median glyph gap when deciding whether
	// two adjacent glyph runs belong to the same word.
	WordGapFactor float64
}

// OpenPDF opens a PDF file for word extraction.
func OpenPDF(path string) (*PDFSource, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPDFOpen, path, err)
	}
	return &PDFSource{f: f, reader: reader, WordGapFactor: 5.0}, nil
}

func (s *PDFSource) NumPages() int { return s.reader.NumPage() }

func (s *PDFSource) Close() error { return s.f.Close() }

// Page extracts the word boxes for page n (1-based).
func (s *PDFSource) Page(n int) (Page, error) {
	if n < 1 || n > s.reader.NumPage() {
		return Page{}, fmt.Errorf("page %d out of range (1-%d)", n, s.reader.NumPage())
	}
	p := s.reader.Page(n)
	if p.V.IsNull() {
		return Page{Number: n, Width: defaultPageWidth, Height: defaultPageHeight}, nil
	}

	width, height := pageDimensions(p)
	content := p.Content()

	texts := make([]pdf.Text, 0, len(content.Text))
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) != "" {
			texts = append(texts, t)
		}
	}

	words := s.mergeGlyphRuns(texts, height)
	return Page{Number: n, Width: width, Height: height, Words: words}, nil
}

// pageDimensions reads the MediaBox, falling back to A4 when missing.
func pageDimensions(p pdf.Page) (width, height float64) {
	box := p.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return defaultPageWidth, defaultPageHeight
	}
	x0 := box.Index(0).Float64()
	y0 := box.Index(1).Float64()
	x1 := box.Index(2).Float64()
	y1 := box.Index(3).Float64()
	width = math.Abs(x1 - x0)
	height = math.Abs(y1 - y0)
	if width <= 0 || height <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return width, height
}

// mergeGlyphRuns converts baseline-origin glyph runs into top-origin
// WordBoxes, merging runs on the same baseline whose gap falls below an
// adaptive threshold.
func (s *PDFSource) mergeGlyphRuns(texts []pdf.Text, pageHeight float64) []WordBox {
	if len(texts) == 0 {
		return nil
	}

	// Group by baseline first.
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > 2.0 {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]pdf.Text
	var cur []pdf.Text
	curY := sorted[0].Y
	for _, t := range sorted {
		if len(cur) > 0 && math.Abs(t.Y-curY) > 2.0 {
			lines = append(lines, cur)
			cur = nil
		}
		if len(cur) == 0 {
			curY = t.Y
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}

	var words []WordBox
	for _, line := range lines {
		threshold := s.lineGapThreshold(line)
		var w *WordBox
		for _, t := range line {
			top := pageHeight - (t.Y + t.FontSize)
			bottom := pageHeight - t.Y
			if w != nil && t.X-w.X1 < threshold && sameScript(lastRune(w.Text), firstRune(t.S)) {
				w.Text += t.S
				if t.X+t.W > w.X1 {
					w.X1 = t.X + t.W
				}
				if top < w.Top {
					w.Top = top
				}
				if bottom > w.Bottom {
					w.Bottom = bottom
				}
				continue
			}
			if w != nil {
				words = append(words, *w)
			}
			w = &WordBox{
				Text:     t.S,
				X0:       t.X,
				Top:      top,
				X1:       t.X + t.W,
				Bottom:   bottom,
				FontSize: t.FontSize,
				FontName: t.Font,
			}
		}
		if w != nil {
			words = append(words, *w)
		}
	}
	return words
}

// lineGapThreshold computes the word-break gap for one baseline from the
// median inter-glyph gap, clamped to a sane range.
func (s *PDFSource) lineGapThreshold(line []pdf.Text) float64 {
	factor := s.WordGapFactor
	if factor <= 0 {
		factor = 5.0
	}
	gaps := make([]float64, 0, len(line))
	for i := 1; i < len(line); i++ {
		gap := line[i].X - (line[i-1].X + line[i-1].W)
		if gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) == 0 {
		return 2.0
	}
	sort.Float64s(gaps)
	median := gaps[len(gaps)/2]
	threshold := median * factor
	if threshold < 1.0 {
		threshold = 1.0
	}
	if threshold > 12.0 {
		threshold = 12.0
	}
	return threshold
}

// sameScript reports whether two runes should be merged into one word:
// CJK glyphs always merge with CJK, Latin with Latin, everything else is
// kept together conservatively.
func sameScript(a, b rune) bool {
	if a == 0 || b == 0 {
		return true
	}
	return isCJKRune(a) == isCJKRune(b)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}
