package yomidoc

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Sentinel errors surfaced to callers.
var (
	ErrPDFOpen = errors.New("cannot open PDF")
	ErrNoPages = errors.New("PDF has no pages")
)

// ErrorType classifies a detected extraction hazard.
type ErrorType string

const (
	ErrorRotation   ErrorType = "ROTATION"
	ErrorEncoding   ErrorType = "ENCODING"
	ErrorCorruption ErrorType = "CORRUPTION"
	ErrorZOrder     ErrorType = "Z_ORDER"
	ErrorScanned    ErrorType = "SCANNED"
	ErrorEmptyPage  ErrorType = "EMPTY_PAGE"
	ErrorMalformed  ErrorType = "MALFORMED"
	ErrorTimeout    ErrorType = "TIMEOUT"
	ErrorMemory     ErrorType = "MEMORY"
	ErrorUnknown    ErrorType = "UNKNOWN"
)

// Severity ranks a detected issue.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// PageIssue is one detected hazard on one page. Page 0 means the whole
// document.
type PageIssue struct {
	Page     int       `json:"page"`
	Type     ErrorType `json:"type"`
	Severity Severity  `json:"severity"`
	Detail   string    `json:"detail"`
}

// ErrorReport collects the pre-pass findings and any per-page recovery
// outcomes. Detection never interrupts extraction; it informs which
// degraded strategy to use per page.
type ErrorReport struct {
	Issues     []PageIssue `json:"issues"`
	Recovered  []int       `json:"recovered_pages"`
	FailedTier []int       `json:"failed_pages"`
}

// HasIssue reports whether a page carries an issue of the given type.
func (r *ErrorReport) HasIssue(page int, t ErrorType) bool {
	for _, iss := range r.Issues {
		if iss.Page == page && iss.Type == t {
			return true
		}
	}
	return false
}

// Pre-pass detection thresholds.
const (
	scannedWordMax      = 10
	overlapAreaFraction = 0.5
	encodingErrorRatio  = 0.05
)

// AnalyzeDocument reads every page and runs the detection pre-pass over
// them. It never fails: a page that cannot be read is recorded as
// MALFORMED and replaced by an empty substitute, so the returned slice
// always covers the full page range.
func AnalyzeDocument(src PageSource) ([]Page, *ErrorReport) {
	total := src.NumPages()
	pages := make([]Page, 0, total)
	var unreadable []PageIssue
	for n := 1; n <= total; n++ {
		page, err := src.Page(n)
		if err != nil {
			unreadable = append(unreadable, PageIssue{
				Page: n, Type: ErrorMalformed, Severity: SeverityError,
				Detail: fmt.Sprintf("page unreadable: %v", err),
			})
			page = Page{Number: n, Width: defaultPageWidth, Height: defaultPageHeight}
		}
		pages = append(pages, page)
	}

	report := AnalyzePages(pages)
	report.Issues = append(report.Issues, unreadable...)
	return pages, report
}

// AnalyzePages runs the same pre-pass over pages already in memory.
func AnalyzePages(pages []Page) *ErrorReport {
	report := &ErrorReport{}
	if len(pages) == 0 {
		report.Issues = append(report.Issues, PageIssue{
			Type: ErrorEmptyPage, Severity: SeverityCritical, Detail: "document has no pages",
		})
		return report
	}
	for _, page := range pages {
		analyzePage(page, report)
	}
	return report
}

func analyzePage(page Page, report *ErrorReport) {
	if len(page.Words) == 0 {
		report.Issues = append(report.Issues, PageIssue{
			Page: page.Number, Type: ErrorEmptyPage, Severity: SeverityInfo,
			Detail: "no text elements",
		})
		return
	}
	if len(page.Words) < scannedWordMax {
		report.Issues = append(report.Issues, PageIssue{
			Page: page.Number, Type: ErrorScanned, Severity: SeverityWarning,
			Detail: fmt.Sprintf("only %d words, likely an image-only page", len(page.Words)),
		})
	}
	if ratio := encodingErrorRate(page.Words); ratio > encodingErrorRatio {
		report.Issues = append(report.Issues, PageIssue{
			Page: page.Number, Type: ErrorEncoding, Severity: SeverityWarning,
			Detail: fmt.Sprintf("%.1f%% replacement or invalid runes", ratio*100),
		})
	}
	if overlaps := countOverlaps(page.Words); overlaps > 0 {
		report.Issues = append(report.Issues, PageIssue{
			Page: page.Number, Type: ErrorZOrder, Severity: SeverityWarning,
			Detail: fmt.Sprintf("%d overlapping text boxes", overlaps),
		})
	}
}

func encodingErrorRate(words []WordBox) float64 {
	var bad, total int
	for _, w := range words {
		for _, r := range w.Text {
			total++
			if r == utf8.RuneError || r == '�' {
				bad++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(bad) / float64(total)
}

// countOverlaps counts box pairs whose intersection exceeds half the
// smaller box's area. Overlap is flagged, never auto-resolved.
func countOverlaps(words []WordBox) int {
	count := 0
	for i := 0; i < len(words); i++ {
		for j := i + 1; j < len(words); j++ {
			a, b := words[i], words[j]
			ix := math.Min(a.X1, b.X1) - math.Max(a.X0, b.X0)
			iy := math.Min(a.Bottom, b.Bottom) - math.Max(a.Top, b.Top)
			if ix <= 0 || iy <= 0 {
				continue
			}
			inter := ix * iy
			minArea := math.Min(a.Width()*a.Height(), b.Width()*b.Height())
			if minArea > 0 && inter > overlapAreaFraction*minArea {
				count++
			}
		}
	}
	return count
}

// RecoveryStrategy is one fallible page-extraction attempt.
type RecoveryStrategy struct {
	Name string
	Run  func() (string, error)
}

// RecoveryOutcome records which strategy produced the page text.
type RecoveryOutcome struct {
	Strategy string
	Text     string
	Failed   bool
}

// RunRecovery tries strategies in order, first success wins. When every
// strategy fails, the page degrades to a literal error marker rather
// than aborting the document.
func RunRecovery(page int, strategies []RecoveryStrategy) RecoveryOutcome {
	for _, s := range strategies {
		text, err := s.Run()
		if err == nil && strings.TrimSpace(text) != "" {
			return RecoveryOutcome{Strategy: s.Name, Text: text}
		}
	}
	return RecoveryOutcome{
		Strategy: "none",
		Text:     fmt.Sprintf("[EXTRACTION ERROR: Page %d]", page),
		Failed:   true,
	}
}

// DeduplicateOverlapping removes boxes that repeat the same text at the
// same rounded position. Opt-in: legitimate repeated tokens can be lost,
// so the default pipeline leaves duplicates for review.
func DeduplicateOverlapping(words []WordBox) []WordBox {
	type key struct {
		x, y int
		text string
	}
	seen := make(map[key]bool, len(words))
	kept := make([]WordBox, 0, len(words))
	for _, w := range words {
		k := key{
			x:    int(math.Round(w.X0 * 10)),
			y:    int(math.Round(w.Top * 10)),
			text: w.Text,
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, w)
	}
	return kept
}
