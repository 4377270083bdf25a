package yomidoc

import (
	"regexp"
	"sort"
	"strings"
)

// MarkerFamily names the notation style of a footnote marker. Family
// agreement between a marker and a definition raises match confidence.
type MarkerFamily string

const (
	FamilyAsterisk      MarkerFamily = "asterisk"
	FamilyKome          MarkerFamily = "kome"
	FamilyChu           MarkerFamily = "chu"
	FamilyDagger        MarkerFamily = "dagger"
	FamilyDoubleDagger  MarkerFamily = "double_dagger"
	FamilyBracketed     MarkerFamily = "bracketed"
	FamilyParenthesized MarkerFamily = "parenthesized"
	FamilyUnicodeSuper  MarkerFamily = "unicode_super"
)

type markerPattern struct {
	re     *regexp.Regexp
	family MarkerFamily
}

// Marker patterns in priority order. The numbered asterisk form is tried
// before the bare asterisk so `*12` never matches as `*`.
var markerPatterns = []markerPattern{
	{regexp.MustCompile(`\*\d+`), FamilyAsterisk},
	{regexp.MustCompile(`\*`), FamilyAsterisk},
	{regexp.MustCompile(`※\d*`), FamilyKome},
	{regexp.MustCompile(`注\d*`), FamilyChu},
	{regexp.MustCompile(`†`), FamilyDagger},
	{regexp.MustCompile(`‡`), FamilyDoubleDagger},
	{regexp.MustCompile(`\[\d+\]`), FamilyBracketed},
	{regexp.MustCompile(`\(\d+\)`), FamilyParenthesized},
	{regexp.MustCompile(`[¹²³⁴⁵⁶⁷⁸⁹⁰]+`), FamilyUnicodeSuper},
}

// Definition patterns: same marker forms anchored to the line start and
// followed by a space or colon.
var definitionPatterns = []markerPattern{
	{regexp.MustCompile(`^(\*\d+)[\s:：]`), FamilyAsterisk},
	{regexp.MustCompile(`^(\*)[\s:：]`), FamilyAsterisk},
	{regexp.MustCompile(`^(※\d*)[\s:：]`), FamilyKome},
	{regexp.MustCompile(`^(注\d*)[\s:：]`), FamilyChu},
	{regexp.MustCompile(`^(†)[\s:：]`), FamilyDagger},
	{regexp.MustCompile(`^(‡)[\s:：]`), FamilyDoubleDagger},
	{regexp.MustCompile(`^(\[\d+\])[\s:：]`), FamilyBracketed},
	{regexp.MustCompile(`^(\(\d+\))[\s:：]`), FamilyParenthesized},
	{regexp.MustCompile(`^([¹²³⁴⁵⁶⁷⁸⁹⁰]+)[\s:：]`), FamilyUnicodeSuper},
}

type markerHit struct {
	text   string
	family MarkerFamily
}

// matchMarker returns the first marker found in text, or nil.
func matchMarker(text string) *markerHit {
	for _, mp := range markerPatterns {
		if m := mp.re.FindString(text); m != "" {
			return &markerHit{text: m, family: mp.family}
		}
	}
	return nil
}

// FootnoteMarker is an in-text reference mark found in the main content
// region, with a few words of surrounding context.
type FootnoteMarker struct {
	Text    string       `json:"text"`
	Family  MarkerFamily `json:"family"`
	Page    int          `json:"page"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Context string       `json:"context"`
}

// FootnoteDefinition is a definition block reconstructed from the
// bottom-of-page region.
type FootnoteDefinition struct {
	Marker string       `json:"marker"`
	Family MarkerFamily `json:"family"`
	Page   int          `json:"page"`
	Text   string       `json:"text"`
}

// FootnoteMatch pairs a marker with the definition it most plausibly
// refers to.
type FootnoteMatch struct {
	Marker     FootnoteMarker     `json:"marker"`
	Definition FootnoteDefinition `json:"definition"`
	Confidence float64            `json:"confidence"`
}

// FootnoteStatus summarizes footnote completeness.
type FootnoteStatus string

const (
	FootnotesComplete FootnoteStatus = "COMPLETE"
	FootnotesPartial  FootnoteStatus = "PARTIAL"
	FootnotesPoor     FootnoteStatus = "POOR"
)

// FootnoteReport is the result of the footnote matching pass.
type FootnoteReport struct {
	Markers              []FootnoteMarker     `json:"markers"`
	Definitions          []FootnoteDefinition `json:"definitions"`
	Matches              []FootnoteMatch      `json:"matches"`
	UnmatchedMarkers     []FootnoteMarker     `json:"unmatched_markers"`
	UnmatchedDefinitions []FootnoteDefinition `json:"unmatched_definitions"`
	MatchRate            float64              `json:"match_rate"`
	Status               FootnoteStatus       `json:"status"`
}

// FootnoteMatcher scans pages for footnote markers and definitions and
// pairs them greedily by confidence.
type FootnoteMatcher struct {
	// RegionBoundary is the fraction of page height where the footnote
	// region begins.
	RegionBoundary float64
	// LineTolerance groups footnote-region words into lines.
	LineTolerance float64
	// ContextWords is the number of words captured on each side of a
	// marker.
	ContextWords int
	// AcceptThreshold is the minimum confidence for a match.
	AcceptThreshold float64
}

// NewFootnoteMatcher creates a matcher with default thresholds.
func NewFootnoteMatcher() *FootnoteMatcher {
	return &FootnoteMatcher{
		RegionBoundary:  0.80,
		LineTolerance:   5.0,
		ContextWords:    3,
		AcceptThreshold: 0.5,
	}
}

// Match runs the full footnote pass over the given pages.
func (fm *FootnoteMatcher) Match(pages []Page) FootnoteReport {
	var markers []FootnoteMarker
	var defs []FootnoteDefinition
	for _, page := range pages {
		markers = append(markers, fm.findMarkers(page)...)
		defs = append(defs, fm.findDefinitions(page)...)
	}
	return fm.pair(markers, defs)
}

// findMarkers scans the main region word-by-word for marker patterns.
func (fm *FootnoteMatcher) findMarkers(page Page) []FootnoteMarker {
	boundary := page.Height * fm.RegionBoundary
	var main []WordBox
	for _, w := range page.Words {
		if w.Top < boundary {
			main = append(main, w)
		}
	}

	var markers []FootnoteMarker
	for i, w := range main {
		hit := matchMarker(w.Text)
		if hit == nil {
			continue
		}
		markers = append(markers, FootnoteMarker{
			Text:    hit.text,
			Family:  hit.family,
			Page:    page.Number,
			X:       w.X0,
			Y:       w.Top,
			Context: wordContext(main, i, fm.ContextWords),
		})
	}
	return markers
}

// wordContext joins the words around index i, n on each side.
func wordContext(words []WordBox, i, n int) string {
	lo := i - n
	if lo < 0 {
		lo = 0
	}
	hi := i + n + 1
	if hi > len(words) {
		hi = len(words)
	}
	parts := make([]string, 0, hi-lo)
	for _, w := range words[lo:hi] {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// findDefinitions groups footnote-region words into lines, then
// accumulates definition bodies: a line starting with a marker followed
// by a space or colon opens a definition, subsequent lines extend it
// until the next definition start.
func (fm *FootnoteMatcher) findDefinitions(page Page) []FootnoteDefinition {
	boundary := page.Height * fm.RegionBoundary
	var region []WordBox
	for _, w := range page.Words {
		if w.Top >= boundary {
			region = append(region, w)
		}
	}
	if len(region) == 0 {
		return nil
	}

	lines := groupRegionLines(region, fm.LineTolerance)

	var defs []FootnoteDefinition
	var cur *FootnoteDefinition
	for _, line := range lines {
		text := joinRegionLine(line)
		started := false
		for _, dp := range definitionPatterns {
			m := dp.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if cur != nil {
				defs = append(defs, *cur)
			}
			body := strings.TrimLeft(text[len(m[0]):], " :：")
			cur = &FootnoteDefinition{
				Marker: m[1],
				Family: dp.family,
				Page:   page.Number,
				Text:   body,
			}
			started = true
			break
		}
		if !started && cur != nil {
			if cur.Text != "" {
				cur.Text += " "
			}
			cur.Text += text
		}
	}
	if cur != nil {
		defs = append(defs, *cur)
	}
	return defs
}

func groupRegionLines(words []WordBox, tolerance float64) [][]WordBox {
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
		if len(cur) > 0 && w.Top-refY > tolerance {
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

func joinRegionLine(line []WordBox) string {
	parts := make([]string, 0, len(line))
	for _, w := range line {
		parts = append(parts, w.Text)
	}
	if len(parts) > 0 && hasCJK(parts[0]) {
		return strings.Join(parts, "")
	}
	return strings.Join(parts, " ")
}

// pair matches markers to definitions greedily. Each definition can be
// consumed at most once; markers may remain unmatched.
func (fm *FootnoteMatcher) pair(markers []FootnoteMarker, defs []FootnoteDefinition) FootnoteReport {
	report := FootnoteReport{Markers: markers, Definitions: defs}

	consumed := make([]bool, len(defs))
	for _, marker := range markers {
		bestIdx := -1
		bestConf := 0.0
		for i, def := range defs {
			if consumed[i] {
				continue
			}
			conf := matchConfidence(marker, def)
			if conf > bestConf {
				bestConf = conf
				bestIdx = i
			}
		}
		if bestIdx >= 0 && bestConf > fm.AcceptThreshold {
			consumed[bestIdx] = true
			report.Matches = append(report.Matches, FootnoteMatch{
				Marker:     marker,
				Definition: defs[bestIdx],
				Confidence: bestConf,
			})
		} else {
			report.UnmatchedMarkers = append(report.UnmatchedMarkers, marker)
		}
	}
	for i, def := range defs {
		if !consumed[i] {
			report.UnmatchedDefinitions = append(report.UnmatchedDefinitions, def)
		}
	}

	if len(markers) == 0 {
		report.MatchRate = 1.0
	} else {
		report.MatchRate = float64(len(report.Matches)) / float64(len(markers))
	}
	switch {
	case report.MatchRate >= 1.0:
		report.Status = FootnotesComplete
	case report.MatchRate >= 0.8:
		report.Status = FootnotesPartial
	default:
		report.Status = FootnotesPoor
	}
	return report
}

// matchConfidence scores one marker/definition pairing: exact marker
// equality 1.0, normalized equality 0.95, plus 0.3 for same page and 0.2
// for same family, capped at 1.0.
func matchConfidence(marker FootnoteMarker, def FootnoteDefinition) float64 {
	conf := 0.0
	switch {
	case marker.Text == def.Marker:
		conf = 1.0
	case normalizeMarker(marker.Text) == normalizeMarker(def.Marker):
		conf = 0.95
	}
	if marker.Page == def.Page {
		conf += 0.3
	}
	if marker.Family == def.Family {
		conf += 0.2
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

func normalizeMarker(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ':', '：':
			return -1
		}
		return r
	}, s)
}
