package yomidoc

import (
	"fmt"
	"regexp"
	"strings"
)

// VerificationResult is the anti-hallucination report: pattern findings
// plus the two inventory-derived ratios. Never mutated after
// construction.
type VerificationResult struct {
	Passed              bool     `json:"passed"`
	Issues              []string `json:"issues"`
	Warnings            []string `json:"warnings"`
	SuspiciousContent   []string `json:"suspicious_content"`
	ElementMatchRate    float64  `json:"element_match_rate"`
	PositionConsistency float64  `json:"position_consistency"`
}

// Pass thresholds for the verifier.
const (
	passMinMatchRate   = 0.70
	passMinConsistency = 0.80
)

// AI-boilerplate headers that extraction cannot produce from source
// glyphs alone: standalone structural headings in either language.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*(目次|概要|はじめに|結論|まとめ)\s*$`),
	regexp.MustCompile(`(?mi)^\s*(table of contents|summary|introduction|conclusion)\s*$`),
}

// Explanatory phrases typical of generated prose.
var explanatoryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bas shown\b`),
	regexp.MustCompile(`(?i)\bnote that\b`),
	regexp.MustCompile(`(?i)\bit should be noted\b`),
	regexp.MustCompile(`(?i)\bin summary\b`),
	regexp.MustCompile(`以下に示す`),
	regexp.MustCompile(`ご覧のように`),
}

// Markdown and HTML signatures. Emphasis markup cannot occur in
// extracted PDF characters, so any hit is an issue, not a warning.
var (
	boldPattern       = regexp.MustCompile(`\*\*[^*]+\*\*`)
	underscoreBold    = regexp.MustCompile(`__[^_]+__`)
	emphasisPattern   = regexp.MustCompile(`\*[^*\s][^*]*\*`)
	underscoreEmph    = regexp.MustCompile(`_[^_\s][^_]*_`)
	htmlTagPattern    = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	footnoteRefInText = regexp.MustCompile(`\*(\d+)`)
	footnoteMarkAny   = regexp.MustCompile(`[※注*†‡]\d*`)
	pageStartPattern  = regexp.MustCompile(`--- PAGE (\d+) START ---`)
	pageEndPattern    = regexp.MustCompile(`--- PAGE (\d+) END ---`)
)

// Verifier cross-checks extracted text against the pre-extraction
// inventory and scans for hallucination signatures.
type Verifier struct{}

// NewVerifier creates a Verifier.
func NewVerifier() *Verifier { return &Verifier{} }

// Verify runs all checks. pageCount is the declared number of pages in
// the source document; pass zero to skip the page-marker symmetry check.
func (v *Verifier) Verify(text string, inv *Inventory, pageCount int) VerificationResult {
	result := VerificationResult{
		ElementMatchRate:    1.0,
		PositionConsistency: 1.0,
	}

	v.checkElementCounts(text, inv, &result)
	v.checkPositionConsistency(text, inv, &result)
	v.checkHallucinationSignatures(text, &result)
	v.checkFootnoteCompleteness(text, &result)
	v.checkPageMarkers(text, pageCount, &result)

	result.Passed = len(result.Issues) == 0 &&
		result.ElementMatchRate >= passMinMatchRate &&
		result.PositionConsistency >= passMinConsistency
	return result
}

// checkElementCounts computes the element match rate, capped at 1.0.
// Severe loss is an issue; moderate loss and likely duplication are
// warnings.
func (v *Verifier) checkElementCounts(text string, inv *Inventory, result *VerificationResult) {
	if inv == nil || inv.Total == 0 {
		result.ElementMatchRate = 1.0
		return
	}
	extracted := len(strings.Fields(text))
	ratio := float64(extracted) / float64(inv.Total)

	switch {
	case ratio < 0.5:
		result.Issues = append(result.Issues,
			fmt.Sprintf("severe content loss: %d of %d expected elements extracted", extracted, inv.Total))
	case ratio < 0.7:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("moderate content loss: %d of %d expected elements extracted", extracted, inv.Total))
	case ratio > 1.5:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("extracted element count %d far exceeds expected %d, possible duplication", extracted, inv.Total))
	}

	if ratio > 1.0 {
		ratio = 1.0
	}
	result.ElementMatchRate = ratio
}

// checkPositionConsistency is a coarse heuristic: bottom-region elements
// in the inventory usually mean footnotes, so their marks should appear
// somewhere in the output.
func (v *Verifier) checkPositionConsistency(text string, inv *Inventory, result *VerificationResult) {
	if inv == nil || inv.ByRegion["bottom"] == 0 {
		return
	}
	if !footnoteMarkAny.MatchString(text) {
		result.Warnings = append(result.Warnings,
			"bottom-region elements expected but no footnote marks found in output")
		result.PositionConsistency = 0.8
	}
}

// checkHallucinationSignatures scans for content that extraction cannot
// produce. Markdown and HTML escalate to issues; boilerplate headers and
// explanatory phrases stay warnings.
func (v *Verifier) checkHallucinationSignatures(text string, result *VerificationResult) {
	for _, p := range boilerplatePatterns {
		for _, m := range p.FindAllString(text, -1) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("possible generated heading: %q", strings.TrimSpace(m)))
			result.SuspiciousContent = append(result.SuspiciousContent, m)
		}
	}
	for _, p := range explanatoryPatterns {
		for _, m := range p.FindAllString(text, -1) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("explanatory phrase not typical of source text: %q", m))
			result.SuspiciousContent = append(result.SuspiciousContent, m)
		}
	}

	for _, m := range boldPattern.FindAllString(text, -1) {
		result.Issues = append(result.Issues, fmt.Sprintf("markdown bold markup in output: %q", m))
		result.SuspiciousContent = append(result.SuspiciousContent, m)
	}
	for _, m := range underscoreBold.FindAllString(text, -1) {
		result.Issues = append(result.Issues, fmt.Sprintf("markdown bold markup in output: %q", m))
		result.SuspiciousContent = append(result.SuspiciousContent, m)
	}
	for _, m := range findEmphasis(text) {
		result.Issues = append(result.Issues, fmt.Sprintf("markdown emphasis markup in output: %q", m))
		result.SuspiciousContent = append(result.SuspiciousContent, m)
	}
	for _, m := range htmlTagPattern.FindAllString(text, -1) {
		result.Issues = append(result.Issues, fmt.Sprintf("HTML tag in output: %q", m))
		result.SuspiciousContent = append(result.SuspiciousContent, m)
	}
}

// findEmphasis matches single-asterisk emphasis while skipping footnote
// forms like *1 text *2: an emphasis hit directly followed by a digit is
// a marker pair, not markup. Hits inside bold runs are also skipped.
func findEmphasis(text string) []string {
	stripped := boldPattern.ReplaceAllString(text, "")
	var out []string
	for _, loc := range emphasisPattern.FindAllStringIndex(stripped, -1) {
		if loc[1] < len(stripped) {
			next := stripped[loc[1]]
			if next >= '0' && next <= '9' {
				continue
			}
		}
		inner := stripped[loc[0]+1 : loc[1]-1]
		if allDigits(inner) {
			continue
		}
		out = append(out, stripped[loc[0]:loc[1]])
	}
	for _, m := range underscoreEmph.FindAllString(stripped, -1) {
		out = append(out, m)
	}
	return out
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// checkFootnoteCompleteness warns when an in-text numbered asterisk
// marker has no matching definition form anywhere in the text.
func (v *Verifier) checkFootnoteCompleteness(text string, result *VerificationResult) {
	seen := make(map[string]bool)
	for _, m := range footnoteRefInText.FindAllStringSubmatch(text, -1) {
		num := m[1]
		if seen[num] {
			continue
		}
		seen[num] = true
		defPattern := regexp.MustCompile(`\*` + regexp.QuoteMeta(num) + `[\s:：]`)
		if !defPattern.MatchString(text) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("footnote marker *%s has no definition in output", num))
		}
	}
}

// checkPageMarkers verifies START/END symmetry against the declared page
// count. Skipped when the text carries no markers at all, since marker
// emission is a formatting option.
func (v *Verifier) checkPageMarkers(text string, pageCount int, result *VerificationResult) {
	starts := pageStartPattern.FindAllString(text, -1)
	ends := pageEndPattern.FindAllString(text, -1)
	if len(starts) == 0 && len(ends) == 0 {
		return
	}
	if len(starts) != len(ends) {
		result.Issues = append(result.Issues,
			fmt.Sprintf("page marker mismatch: %d START vs %d END", len(starts), len(ends)))
	}
	if pageCount > 0 && len(starts) != pageCount {
		result.Issues = append(result.Issues,
			fmt.Sprintf("page marker count %d does not match declared page count %d", len(starts), pageCount))
	}
}

// RemoveSuspiciousContent strips markdown emphasis and HTML tags from
// text. It is a separate opt-in utility: the default pipeline reports
// findings without altering the output.
func RemoveSuspiciousContent(text string) string {
	text = boldPattern.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Trim(m, "*")
	})
	text = underscoreBold.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Trim(m, "_")
	})
	text = htmlTagPattern.ReplaceAllString(text, "")
	return text
}
