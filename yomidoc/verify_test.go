package yomidoc

import (
	"strings"
	"testing"
)

func inventoryWithTotal(total, bottom int) *Inventory {
	return &Inventory{
		Total:    total,
		ByRegion: map[string]int{"top": 0, "middle": total - bottom, "bottom": bottom},
		BySize:   map[string]int{},
	}
}

func TestVerify_MarkdownIsIssue(t *testing.T) {
	v := NewVerifier()
	text := "これは本文です **強調された文** 続きです"

	result := v.Verify(text, inventoryWithTotal(4, 0), 0)

	if len(result.Issues) == 0 {
		t.Fatal("markdown bold must be an issue, not a warning")
	}
	if result.Passed {
		t.Error("verification must fail on markdown markup")
	}
}

func TestVerify_HTMLIsIssue(t *testing.T) {
	v := NewVerifier()
	result := v.Verify("text with <div class=\"x\"> tag", inventoryWithTotal(5, 0), 0)

	if len(result.Issues) == 0 {
		t.Error("HTML tags must be issues")
	}
}

func TestVerify_ElementMatchRate(t *testing.T) {
	v := NewVerifier()
	tests := []struct {
		name      string
		words     int
		expected  int
		wantRate  float64
		wantIssue bool
		wantWarn  bool
	}{
		{"severe loss", 4, 10, 0.4, true, false},
		{"moderate loss", 6, 10, 0.6, false, true},
		{"healthy", 9, 10, 0.9, false, false},
		{"duplication capped", 16, 10, 1.0, false, true},
		{"zero expected", 5, 0, 1.0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.TrimSpace(strings.Repeat("word ", tt.words))
			result := v.Verify(text, inventoryWithTotal(tt.expected, 0), 0)

			if result.ElementMatchRate != tt.wantRate {
				t.Errorf("rate = %v, want %v", result.ElementMatchRate, tt.wantRate)
			}
			if (len(result.Issues) > 0) != tt.wantIssue {
				t.Errorf("issues = %v, wantIssue %v", result.Issues, tt.wantIssue)
			}
			if (len(result.Warnings) > 0) != tt.wantWarn {
				t.Errorf("warnings = %v, wantWarn %v", result.Warnings, tt.wantWarn)
			}
		})
	}
}

func TestVerify_RateCapOnHeavyDuplication(t *testing.T) {
	v := NewVerifier()
	// More than 50% over the expected count.
	text := strings.Repeat("dup ", 40)

	result := v.Verify(text, inventoryWithTotal(10, 0), 0)

	if result.ElementMatchRate != 1.0 {
		t.Errorf("element match rate must cap at 1.0, got %v", result.ElementMatchRate)
	}
}

func TestVerify_PositionConsistency(t *testing.T) {
	v := NewVerifier()

	// Bottom elements expected, no footnote marks anywhere.
	noMarks := v.Verify("plain content without marks", inventoryWithTotal(4, 2), 0)
	if noMarks.PositionConsistency != 0.8 {
		t.Errorf("expected consistency 0.8, got %v", noMarks.PositionConsistency)
	}
	if len(noMarks.Warnings) == 0 {
		t.Error("missing footnote marks should warn")
	}

	// Same inventory, marks present.
	withMarks := v.Verify("content ※1 with a mark", inventoryWithTotal(4, 2), 0)
	if withMarks.PositionConsistency != 1.0 {
		t.Errorf("expected consistency 1.0, got %v", withMarks.PositionConsistency)
	}
}

func TestVerify_FootnoteCompleteness(t *testing.T) {
	v := NewVerifier()

	missing := v.Verify("語句*1を参照", inventoryWithTotal(1, 1), 0)
	found := false
	for _, w := range missing.Warnings {
		if strings.Contains(w, "*1") {
			found = true
		}
	}
	if !found {
		t.Error("marker without definition should warn")
	}

	complete := v.Verify("本文 *1 の参照\n*1: 定義です", inventoryWithTotal(5, 1), 0)
	for _, w := range complete.Warnings {
		if strings.Contains(w, "no definition") {
			t.Errorf("definition present, unexpected warning %q", w)
		}
	}
}

func TestVerify_PageMarkerSymmetry(t *testing.T) {
	v := NewVerifier()

	balanced := markerLine(1, "START") + "\nbody text here now\n" + markerLine(1, "END")
	result := v.Verify(balanced, inventoryWithTotal(4, 0), 1)
	for _, issue := range result.Issues {
		if strings.Contains(issue, "marker") {
			t.Errorf("balanced markers flagged: %q", issue)
		}
	}

	unbalanced := markerLine(1, "START") + "\nbody\n" + markerLine(1, "END") + "\n" + markerLine(2, "START")
	result = v.Verify(unbalanced, inventoryWithTotal(2, 0), 2)
	if len(result.Issues) == 0 {
		t.Error("unbalanced markers must be an issue")
	}

	wrongCount := markerLine(1, "START") + "\nbody\n" + markerLine(1, "END")
	result = v.Verify(wrongCount, inventoryWithTotal(1, 0), 3)
	if len(result.Issues) == 0 {
		t.Error("marker count differing from page count must be an issue")
	}
}

func TestVerify_BoilerplateIsWarning(t *testing.T) {
	v := NewVerifier()
	result := v.Verify("目次\n本文はこちらです", inventoryWithTotal(2, 0), 0)

	if len(result.Issues) != 0 {
		t.Errorf("boilerplate headings are warnings, got issues %v", result.Issues)
	}
	if len(result.Warnings) == 0 {
		t.Error("boilerplate heading should warn")
	}
}

func TestRemoveSuspiciousContent(t *testing.T) {
	in := "keep **bold** and <b>tagged</b> text"
	out := RemoveSuspiciousContent(in)

	if strings.Contains(out, "**") || strings.Contains(out, "<b>") {
		t.Errorf("markup should be stripped, got %q", out)
	}
	if !strings.Contains(out, "bold") || !strings.Contains(out, "tagged") {
		t.Errorf("inner text must survive, got %q", out)
	}
}
