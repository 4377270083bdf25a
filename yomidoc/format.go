package yomidoc

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Page marker line width. Labels are centered in a dash field so the
// markers stand out when the output is read raw.
const markerWidth = 60

// FormattedPage is one page's contribution to the final document.
type FormattedPage struct {
	Number    int
	Text      string
	Tables    []TableRegion
	Footnotes []FootnoteMatch
}

// Formatter assembles the final output document.
type Formatter struct {
	// IncludeHeader controls the [DOCUMENT FILENAME: ...] line.
	IncludeHeader bool
	// PageMarkers controls the PAGE N START/END marker lines.
	PageMarkers bool
	// Statistics controls the document statistics footer.
	Statistics bool
}

// NewFormatter creates a formatter with all sections enabled.
func NewFormatter() *Formatter {
	return &Formatter{IncludeHeader: true, PageMarkers: true, Statistics: true}
}

// Format renders pages into the final document string.
func (f *Formatter) Format(filename string, pages []FormattedPage) string {
	var b strings.Builder

	if f.IncludeHeader && filename != "" {
		fmt.Fprintf(&b, "[DOCUMENT FILENAME: %s]\n\n", filename)
	}

	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if f.PageMarkers {
			b.WriteString(markerLine(page.Number, "START"))
			b.WriteByte('\n')
		}
		b.WriteString(strings.TrimSpace(page.Text))
		for _, table := range page.Tables {
			b.WriteString("\n\n")
			b.WriteString(FormatTable(table))
		}
		if len(page.Footnotes) > 0 {
			b.WriteString("\n\n")
			b.WriteString(strings.Repeat("=", 40))
			b.WriteString("\nFOOTNOTES:\n")
			for _, m := range page.Footnotes {
				fmt.Fprintf(&b, "%s: %s\n", m.Definition.Marker, m.Definition.Text)
			}
		}
		if f.PageMarkers {
			b.WriteByte('\n')
			b.WriteString(markerLine(page.Number, "END"))
		}
	}

	if f.Statistics {
		text := b.String()
		words := len(strings.Fields(text))
		fmt.Fprintf(&b, "\n\n%s\nSTATISTICS: %d pages, %d words, %d characters\n",
			strings.Repeat("=", 40), len(pages), words, len([]rune(text)))
	}
	return b.String()
}

// markerLine centers " PAGE N START " in a field of dashes.
func markerLine(page int, kind string) string {
	label := fmt.Sprintf(" PAGE %d %s ", page, kind)
	pad := markerWidth - len(label)
	if pad < 6 {
		pad = 6
	}
	left := pad / 2
	right := pad - left
	return strings.Repeat("-", left) + label + strings.Repeat("-", right)
}

var (
	markerLinePattern = regexp.MustCompile(`(?m)^-+ PAGE (\d+) (START|END) -+$`)
	statsFooterStart  = regexp.MustCompile(`(?m)^=+\nSTATISTICS: .*$`)
	headerLinePattern = regexp.MustCompile(`(?m)^\[DOCUMENT FILENAME: [^\]]*\]$`)
	qualityMarkers    = []string{"[illegible]", "[?]", "[unclear]"}
)

// SplitByPages recovers per-page texts from formatted output. Page
// bodies are trimmed of leading and trailing whitespace. Content outside
// any START/END pair is discarded.
func SplitByPages(text string) map[int]string {
	pages := make(map[int]string)

	matches := markerLinePattern.FindAllStringSubmatchIndex(text, -1)
	var openPage int
	var openEnd int
	open := false
	for _, m := range matches {
		num := 0
		fmt.Sscanf(text[m[2]:m[3]], "%d", &num)
		kind := text[m[4]:m[5]]
		switch kind {
		case "START":
			openPage = num
			openEnd = m[1]
			open = true
		case "END":
			if open && num == openPage {
				pages[num] = strings.TrimSpace(text[openEnd:m[0]])
				open = false
			}
		}
	}
	return pages
}

// PageNumbers returns the sorted page numbers present in a split result.
func PageNumbers(pages map[int]string) []int {
	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// RemoveMarkers strips the filename header, page markers, and the
// statistics footer, leaving only content.
func RemoveMarkers(text string) string {
	text = statsFooterStart.ReplaceAllString(text, "")
	text = markerLinePattern.ReplaceAllString(text, "")
	text = headerLinePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// StripQualityMarkers removes inline extraction-quality annotations.
func StripQualityMarkers(text string) string {
	for _, m := range qualityMarkers {
		text = strings.ReplaceAll(text, m, "")
	}
	return text
}
