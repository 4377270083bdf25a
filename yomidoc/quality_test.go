package yomidoc

import (
	"strings"
	"testing"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "A"},
		{90, "A"},
		{85, "B"},
		{75, "C"},
		{65, "D"},
		{30, "F"},
	}
	for _, tt := range tests {
		if got := gradeFor(tt.score); got != tt.want {
			t.Errorf("gradeFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScoreFootnotes(t *testing.T) {
	qs := NewQualityScorer()

	if got := qs.scoreFootnotes(nil); got != 80 {
		t.Errorf("no footnote data should score neutral 80, got %v", got)
	}
	if got := qs.scoreFootnotes(&FootnoteReport{}); got != 100 {
		t.Errorf("no markers should score 100, got %v", got)
	}
	report := &FootnoteReport{
		Markers:   make([]FootnoteMarker, 4),
		MatchRate: 0.75,
	}
	if got := qs.scoreFootnotes(report); got != 75 {
		t.Errorf("match rate 0.75 should score 75, got %v", got)
	}
}

func TestScoreAccuracy_ReplacementChars(t *testing.T) {
	qs := NewQualityScorer()

	clean := qs.scoreAccuracy("普通のきれいなテキストです")
	if clean != 100 {
		t.Errorf("clean text should score 100, got %v", clean)
	}

	garbled := qs.scoreAccuracy("text " + strings.Repeat("�", 30))
	if garbled != 80 {
		t.Errorf("replacement chars penalty caps at 20, got %v", garbled)
	}
}

func TestScoreStructure(t *testing.T) {
	qs := NewQualityScorer()

	withMarkers := markerLine(1, "START") + "\n1.1 概要\n" + markerLine(1, "END")
	plain := "本文だけのテキスト"

	if a, b := qs.scoreStructure(withMarkers, 4), qs.scoreStructure(plain, 4); a <= b {
		t.Errorf("marked and sectioned text should outscore plain text: %v vs %v", a, b)
	}
}

func TestConfidence_VariancePenalty(t *testing.T) {
	uniform := map[string]float64{"a": 90, "b": 90, "c": 90, "d": 90, "e": 90}
	if got := confidenceFor(uniform); got != 1.0 {
		t.Errorf("uniform dimensions should give confidence 1.0, got %v", got)
	}

	spread := map[string]float64{"a": 100, "b": 0, "c": 100, "d": 0, "e": 50}
	if got := confidenceFor(spread); got != 0.5 {
		t.Errorf("high variance should floor the penalty at 0.5, got %v", got)
	}
}

func TestScore_Weighting(t *testing.T) {
	qs := NewQualityScorer()
	coverage := &CoverageReport{CoveragePercent: 100}
	footnotes := &FootnoteReport{MatchRate: 1.0}

	text := markerLine(1, "START") + "\n1.1 これは十分に長い本文の行です、読みやすさも問題ありません\n" + markerLine(1, "END")
	report := qs.Score(text, 1, coverage, footnotes)

	if report.OverallScore < 90 {
		t.Errorf("clean complete extraction should grade A, got %v (%s)", report.OverallScore, report.Grade)
	}
	if report.Grade != "A" {
		t.Errorf("expected grade A, got %s", report.Grade)
	}
	if len(report.Dimensions) != 5 {
		t.Errorf("expected 5 dimensions, got %d", len(report.Dimensions))
	}
}
