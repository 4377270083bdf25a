package yomidoc

import (
	"math"
	"regexp"
)

// Section-numbering patterns that always survive filtering. A page-number
// lookalike matching one of these is content, not furniture.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\d+`),                 // 1.2 style numbering
	regexp.MustCompile(`^\(\d+\)`),                  // (1)
	regexp.MustCompile(`^[①-⑳]`),                    // circled numbers
	regexp.MustCompile(`^\d+[)）]`),                  // 1) or 1）
	regexp.MustCompile(`^第?\d+[章条項節款目]`),           // 第3章, 5条
	regexp.MustCompile(`^\d+\.`),                    // 1.
	regexp.MustCompile(`^[一二三四五六七八九十]+[、.]`), // ordinal kanji
}

// Strict page-number patterns: exact match only, dropped on sight.
var pageNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page\s*\d+$`),
	regexp.MustCompile(`^ページ\s*\d+$`),
	regexp.MustCompile(`^-\s*\d+\s*-$`),
	regexp.MustCompile(`^\d+\s*/\s*\d+$`),
	regexp.MustCompile(`(?i)^p\.\s*\d+$`),
}

var bareDigitsPattern = regexp.MustCompile(`^\d{1,3}$`)

// Margins for the page-number heuristic, fractions of page dimensions.
const (
	marginBand     = 0.10 // top/bottom band where page numbers live
	centerBand     = 0.20 // distance from page center counting as "centered"
	cornerBand     = 0.20 // left/right fraction counting as a corner
	neighborRadius = 50.0 // Euclidean distance for "nearby content"
	minNeighbors   = 2    // fewer than this many neighbors = isolated
)

// MetadataFilter drops page numbers and repeating headers/footers while
// keeping everything that could plausibly be content. The bias is
// deliberate: a kept page number costs a stray digit, a dropped section
// heading loses real text.
type MetadataFilter struct {
	// RepeatingText holds exact strings detected as repeating
	// headers/footers across the sampled pages.
	RepeatingText map[string]bool
	// RemoveRepeating drops matches against RepeatingText.
	RemoveRepeating bool
	// RemovePageNumbers drops strict page-number patterns and isolated
	// marginal digit runs.
	RemovePageNumbers bool
}

// NewMetadataFilter builds a filter with headers/footers detected from a
// sample of the given pages. Both removal classes are enabled.
func NewMetadataFilter(pages []Page) *MetadataFilter {
	return &MetadataFilter{
		RepeatingText:     detectRepeatingText(pages),
		RemoveRepeating:   true,
		RemovePageNumbers: true,
	}
}

// Filter returns the page's words with metadata boxes removed.
func (f *MetadataFilter) Filter(page Page) []WordBox {
	kept := make([]WordBox, 0, len(page.Words))
	for i, w := range page.Words {
		if f.Keep(w, page, i) {
			kept = append(kept, w)
		}
	}
	return kept
}

// Keep decides whether one box survives, first match wins:
// section pattern -> keep, footnote marker -> keep, strict page number ->
// drop, repeating header/footer -> drop, isolated marginal digits ->
// drop, anything else -> keep.
func (f *MetadataFilter) Keep(w WordBox, page Page, index int) bool {
	text := w.Text

	for _, p := range sectionPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	if matchMarker(text) != nil {
		return true
	}
	if f.RemovePageNumbers {
		for _, p := range pageNumberPatterns {
			if p.MatchString(text) {
				return false
			}
		}
	}
	if f.RemoveRepeating && f.RepeatingText[text] {
		return false
	}
	if f.RemovePageNumbers && bareDigitsPattern.MatchString(text) {
		return !isPageNumberNotContent(w, page, index)
	}
	return true
}

// isPageNumberNotContent classifies a bare digit run as a page number
// only when every signal agrees: marginal vertical band, no nearby
// content, and centered or cornered horizontally.
func isPageNumberNotContent(w WordBox, page Page, index int) bool {
	if page.Height <= 0 || page.Width <= 0 {
		return false
	}

	inTopBand := w.Top < page.Height*marginBand
	inBottomBand := w.Bottom > page.Height*(1-marginBand)
	if !inTopBand && !inBottomBand {
		return false
	}

	neighbors := 0
	for i, other := range page.Words {
		if i == index {
			continue
		}
		dx := other.CenterX() - w.CenterX()
		dy := other.MidY() - w.MidY()
		if math.Hypot(dx, dy) < neighborRadius {
			neighbors++
			if neighbors >= minNeighbors {
				return false
			}
		}
	}

	cx := w.CenterX()
	pageCenter := page.Width / 2
	centered := math.Abs(cx-pageCenter) < page.Width*centerBand
	inCorner := cx < page.Width*cornerBand || cx > page.Width*(1-cornerBand)
	return centered || inCorner
}

// Header/footer detection parameters.
const (
	headerSamplePages = 5
	headerMinOccurPct = 0.80
)

// detectRepeatingText samples up to headerSamplePages pages and collects
// top/bottom band strings that repeat on at least headerMinOccurPct of
// them.
func detectRepeatingText(pages []Page) map[string]bool {
	sample := len(pages)
	if sample > headerSamplePages {
		sample = headerSamplePages
	}
	if sample == 0 {
		return map[string]bool{}
	}

	counts := make(map[string]int)
	for _, page := range pages[:sample] {
		seen := make(map[string]bool)
		for _, w := range page.Words {
			if page.Height <= 0 {
				continue
			}
			inTop := w.Top < page.Height*marginBand
			inBottom := w.Bottom > page.Height*(1-marginBand)
			if (inTop || inBottom) && !seen[w.Text] {
				seen[w.Text] = true
				counts[w.Text]++
			}
		}
	}

	repeating := make(map[string]bool)
	need := int(math.Ceil(headerMinOccurPct * float64(sample)))
	if need < 2 {
		// A single page cannot establish repetition.
		return repeating
	}
	for text, c := range counts {
		if c >= need {
			repeating[text] = true
		}
	}
	return repeating
}
