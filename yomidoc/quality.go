package yomidoc

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// Dimension weights. They sum to 1.0; completeness dominates because a
// missing page hurts more than awkward spacing.
const (
	weightCompleteness = 0.30
	weightStructure    = 0.25
	weightAccuracy     = 0.20
	weightFootnotes    = 0.15
	weightReadability  = 0.10
)

// Grade thresholds.
var gradeThresholds = []struct {
	min   float64
	grade string
}{
	{90, "A"},
	{80, "B"},
	{70, "C"},
	{60, "D"},
	{0, "F"},
}

// QualityReport aggregates the five dimension scores into an overall
// 0-100 score, a letter grade, and a confidence value that drops when
// the dimensions disagree.
type QualityReport struct {
	Dimensions   map[string]float64 `json:"dimensions"`
	OverallScore float64            `json:"overall_score"`
	Grade        string             `json:"grade"`
	Confidence   float64            `json:"confidence"`
}

// QualityScorer computes a QualityReport from the extracted text and the
// other pipeline reports.
type QualityScorer struct {
	// WordsPerPage is the expected word yield used when no coverage
	// report is available.
	WordsPerPage int
}

// NewQualityScorer creates a scorer with defaults.
func NewQualityScorer() *QualityScorer {
	return &QualityScorer{WordsPerPage: 300}
}

var (
	sectionNumberAnywhere = regexp.MustCompile(`\d+\.\d+`)
	blankLineRuns         = regexp.MustCompile(`\n{5,}`)
	garblePatterns        = []*regexp.Regexp{
		regexp.MustCompile(`[a-z][0-9][a-z]`),
		regexp.MustCompile(`\?{3,}`),
		regexp.MustCompile(`□+`),
	}
)

// Score computes the weighted quality report. coverage and footnotes may
// be nil when the corresponding pass did not run.
func (qs *QualityScorer) Score(text string, pageCount int, coverage *CoverageReport, footnotes *FootnoteReport) QualityReport {
	dims := map[string]float64{
		"completeness": qs.scoreCompleteness(text, pageCount, coverage),
		"structure":    qs.scoreStructure(text, pageCount),
		"accuracy":     qs.scoreAccuracy(text),
		"footnotes":    qs.scoreFootnotes(footnotes),
		"readability":  qs.scoreReadability(text),
	}

	overall := dims["completeness"]*weightCompleteness +
		dims["structure"]*weightStructure +
		dims["accuracy"]*weightAccuracy +
		dims["footnotes"]*weightFootnotes +
		dims["readability"]*weightReadability

	return QualityReport{
		Dimensions:   dims,
		OverallScore: overall,
		Grade:        gradeFor(overall),
		Confidence:   confidenceFor(dims),
	}
}

func gradeFor(score float64) string {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return t.grade
		}
	}
	return "F"
}

// confidenceFor penalizes disagreement between dimensions: high variance
// means at least one signal is unreliable.
func confidenceFor(dims map[string]float64) float64 {
	var sum float64
	for _, v := range dims {
		sum += v
	}
	mean := sum / float64(len(dims))
	var variance float64
	for _, v := range dims {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(dims))

	penalty := variance / 1000
	if penalty > 0.5 {
		penalty = 0.5
	}
	conf := 1.0 - penalty
	if conf < 0.3 {
		conf = 0.3
	}
	return conf
}

func (qs *QualityScorer) scoreCompleteness(text string, pageCount int, coverage *CoverageReport) float64 {
	if coverage != nil {
		pct := coverage.CoveragePercent
		if pct > 100 {
			pct = 100
		}
		return pct
	}
	if pageCount <= 0 {
		return 100
	}
	expected := pageCount * qs.WordsPerPage
	if expected == 0 {
		return 100
	}
	pct := float64(len(strings.Fields(text))) / float64(expected) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (qs *QualityScorer) scoreStructure(text string, pageCount int) float64 {
	score := 100.0
	if !pageStartPattern.MatchString(text) {
		score -= 10
	}
	if pageCount > 3 && !sectionNumberAnywhere.MatchString(text) {
		score -= 10
	}
	hasTables := strings.Contains(text, "[TABLE")
	if hasTables {
		score += 5
	} else if pageCount > 5 {
		score -= 5
	}
	if blankLineRuns.MatchString(text) {
		score -= 5
	}
	return clampScore(score)
}

func (qs *QualityScorer) scoreAccuracy(text string) float64 {
	score := 100.0
	garbles := 0
	for _, p := range garblePatterns {
		garbles += len(p.FindAllString(text, -1))
	}
	if garbles > 5 {
		score -= 10
	}
	replacements := strings.Count(text, "�")
	if replacements > 20 {
		replacements = 20
	}
	score -= float64(replacements)
	return clampScore(score)
}

func (qs *QualityScorer) scoreFootnotes(report *FootnoteReport) float64 {
	if report == nil {
		return 80
	}
	if len(report.Markers) == 0 {
		return 100
	}
	return clampScore(report.MatchRate * 100)
}

func (qs *QualityScorer) scoreReadability(text string) float64 {
	score := 100.0
	lines := strings.Split(text, "\n")
	var nonEmpty, longLines, totalLen int
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmpty++
		totalLen += len([]rune(line))
		if len([]rune(line)) > 200 {
			longLines++
		}
	}
	if nonEmpty > 0 {
		avg := float64(totalLen) / float64(nonEmpty)
		if avg < 20 {
			score -= 10
		}
		if float64(longLines)/float64(nonEmpty) > 0.10 {
			score -= 5
		}
	}
	if chunkDuplication(text) {
		score -= 15
	}
	if strings.Contains(text, "[DOCUMENT FILENAME:") {
		score += 5
	}
	return clampScore(score)
}

// chunkDuplication reports whether fewer than half of the text's
// 100-rune chunks are unique, a cheap proxy for repeated extraction of
// the same region.
func chunkDuplication(text string) bool {
	runes := []rune(text)
	if len(runes) < 200 {
		return false
	}
	total := 0
	unique := make(map[string]bool)
	for i := 0; i+100 <= len(runes); i += 100 {
		chunk := string(runes[i : i+100])
		unique[chunk] = true
		total++
	}
	return total > 0 && float64(len(unique))/float64(total) < 0.5
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// PrintTo writes a human-readable summary of the report.
func (r QualityReport) PrintTo(w io.Writer) {
	fmt.Fprintf(w, "Quality: %.1f/100 (grade %s, confidence %.2f)\n", r.OverallScore, r.Grade, r.Confidence)
	names := make([]string, 0, len(r.Dimensions))
	for name := range r.Dimensions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-13s %.1f\n", name, r.Dimensions[name])
	}
}
