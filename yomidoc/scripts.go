package yomidoc

import (
	"sort"
	"strings"
)

// Script attachment thresholds. A box counts as script-sized when its
// font size falls below smallSizeRatio of the page average, and attaches
// to the preceding normal-sized box when the horizontal gap stays under
// scriptGapMax.
const (
	smallSizeRatio = 0.7
	scriptGapMax   = 5.0
	bandTolerance  = 15.0
)

var superscriptRunes = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'n': 'ⁿ', 'i': 'ⁱ',
}

var subscriptRunes = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎',
	'a': 'ₐ', 'e': 'ₑ', 'o': 'ₒ', 'x': 'ₓ',
}

// AttachScripts merges superscript and subscript boxes into their base
// box. The input is left untouched; the result is a new slice with
// consumed script boxes removed and base texts extended. Must run on the
// raw page words before any filtering so later stages see merged tokens.
func AttachScripts(words []WordBox) []WordBox {
	if len(words) < 2 {
		out := make([]WordBox, len(words))
		copy(out, words)
		return out
	}

	avg := trimmedMeanSize(words)
	if avg <= 0 {
		out := make([]WordBox, len(words))
		copy(out, words)
		return out
	}

	bands := groupIntoBands(words, bandTolerance)

	var out []WordBox
	for _, band := range bands {
		sort.SliceStable(band, func(i, j int) bool { return band[i].X0 < band[j].X0 })

		consumed := make([]bool, len(band))
		for i := 0; i < len(band); i++ {
			if consumed[i] {
				continue
			}
			base := band[i]
			if base.Size() < smallSizeRatio*avg {
				out = append(out, base)
				continue
			}
			for j := i + 1; j < len(band); j++ {
				if consumed[j] {
					continue
				}
				next := band[j]
				if next.Size() >= smallSizeRatio*avg {
					break
				}
				if next.X0-base.X1 >= scriptGapMax {
					break
				}
				switch {
				case next.Bottom < base.MidY():
					base.Text += mapScript(next.Text, superscriptRunes)
				case next.Top > base.MidY():
					base.Text += mapScript(next.Text, subscriptRunes)
				default:
					base.Text += next.Text
				}
				if next.X1 > base.X1 {
					base.X1 = next.X1
				}
				consumed[j] = true
			}
			out = append(out, base)
		}
	}
	return out
}

// trimmedMeanSize averages font sizes with the top and bottom 10%
// dropped when there are enough samples, falling back to the raw mean.
func trimmedMeanSize(words []WordBox) float64 {
	sizes := make([]float64, 0, len(words))
	for _, w := range words {
		if s := w.Size(); s > 0 {
			sizes = append(sizes, s)
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	lo, hi := 0, len(sizes)
	if len(sizes) >= 10 {
		trim := len(sizes) / 10
		lo, hi = trim, len(sizes)-trim
	}
	var sum float64
	for _, s := range sizes[lo:hi] {
		sum += s
	}
	return sum / float64(hi-lo)
}

// groupIntoBands buckets words into horizontal bands by vertical
// midpoint. Bands are returned top to bottom.
func groupIntoBands(words []WordBox, tolerance float64) [][]WordBox {
	sorted := make([]WordBox, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MidY() < sorted[j].MidY() })

	var bands [][]WordBox
	var cur []WordBox
	var curY float64
	for _, w := range sorted {
		if len(cur) > 0 && w.MidY()-curY > tolerance {
			bands = append(bands, cur)
			cur = nil
		}
		if len(cur) == 0 {
			curY = w.MidY()
		}
		cur = append(cur, w)
	}
	if len(cur) > 0 {
		bands = append(bands, cur)
	}
	return bands
}

// mapScript converts text through a script rune map; unmapped runes pass
// through unchanged.
func mapScript(text string, m map[rune]rune) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if mapped, ok := m[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
