package yomidoc

import (
	"errors"
	"strings"
	"testing"
)

func TestAnalyzePages_Scanned(t *testing.T) {
	page := Page{
		Number: 1, Width: 600, Height: 800,
		Words: []WordBox{
			{Text: "少し", X0: 50, Top: 100, X1: 80, Bottom: 112},
		},
	}

	report := AnalyzePages([]Page{page})

	if !report.HasIssue(1, ErrorScanned) {
		t.Error("page with too few words should be flagged SCANNED")
	}
}

// flakySource fails on a chosen page number.
type flakySource struct {
	MemSource
	badPage int
}

func (f *flakySource) Page(n int) (Page, error) {
	if n == f.badPage {
		return Page{}, errors.New("stream decode error")
	}
	return f.MemSource.Page(n)
}

func TestAnalyzeDocument_UnreadablePageSubstituted(t *testing.T) {
	src := &flakySource{
		MemSource: MemSource{Pages: []Page{
			{Number: 1, Width: 600, Height: 800, Words: []WordBox{
				{Text: "本文", X0: 50, Top: 100, X1: 80, Bottom: 112},
			}},
			{Number: 2, Width: 600, Height: 800},
		}},
		badPage: 2,
	}

	pages, report := AnalyzeDocument(src)

	if len(pages) != 2 {
		t.Fatalf("expected a substitute for every page, got %d pages", len(pages))
	}
	if pages[1].Number != 2 || len(pages[1].Words) != 0 {
		t.Errorf("substitute page = %+v", pages[1])
	}
	if !report.HasIssue(2, ErrorMalformed) {
		t.Error("unreadable page should be flagged MALFORMED")
	}
	if !report.HasIssue(2, ErrorEmptyPage) {
		t.Error("substituted page should also be flagged EMPTY_PAGE")
	}
}

func TestAnalyzePages_Empty(t *testing.T) {
	report := AnalyzePages([]Page{{Number: 1, Width: 600, Height: 800}})
	if !report.HasIssue(1, ErrorEmptyPage) {
		t.Error("page without words should be flagged EMPTY_PAGE")
	}
}

func TestAnalyzePages_Overlap(t *testing.T) {
	page := Page{
		Number: 1, Width: 600, Height: 800,
		Words: []WordBox{
			{Text: "重なり", X0: 50, Top: 100, X1: 100, Bottom: 112},
			{Text: "重なり", X0: 52, Top: 101, X1: 102, Bottom: 113},
		},
	}

	report := AnalyzePages([]Page{page})

	if !report.HasIssue(1, ErrorZOrder) {
		t.Error("heavily overlapping boxes should be flagged Z_ORDER")
	}
}

func TestRunRecovery_FirstSuccessWins(t *testing.T) {
	calls := []string{}
	outcome := RunRecovery(1, []RecoveryStrategy{
		{Name: "first", Run: func() (string, error) {
			calls = append(calls, "first")
			return "", errors.New("boom")
		}},
		{Name: "second", Run: func() (string, error) {
			calls = append(calls, "second")
			return "recovered text", nil
		}},
		{Name: "third", Run: func() (string, error) {
			calls = append(calls, "third")
			return "never", nil
		}},
	})

	if outcome.Strategy != "second" || outcome.Text != "recovered text" {
		t.Errorf("unexpected outcome %+v", outcome)
	}
	if outcome.Failed {
		t.Error("successful recovery must not be marked failed")
	}
	if len(calls) != 2 {
		t.Errorf("third strategy should not run, calls: %v", calls)
	}
}

func TestRunRecovery_AllFail(t *testing.T) {
	outcome := RunRecovery(7, []RecoveryStrategy{
		{Name: "only", Run: func() (string, error) { return "", errors.New("x") }},
	})

	if !outcome.Failed {
		t.Error("exhausted cascade must be marked failed")
	}
	if !strings.Contains(outcome.Text, "[EXTRACTION ERROR: Page 7]") {
		t.Errorf("expected error marker, got %q", outcome.Text)
	}
}

func TestRunRecovery_BlankCountsAsFailure(t *testing.T) {
	outcome := RunRecovery(1, []RecoveryStrategy{
		{Name: "blank", Run: func() (string, error) { return "   ", nil }},
		{Name: "real", Run: func() (string, error) { return "text", nil }},
	})

	if outcome.Strategy != "real" {
		t.Errorf("blank output should fall through, got %q", outcome.Strategy)
	}
}

func TestDeduplicateOverlapping(t *testing.T) {
	words := []WordBox{
		{Text: "同じ", X0: 50.01, Top: 100.02, X1: 80, Bottom: 112},
		{Text: "同じ", X0: 50.02, Top: 100.01, X1: 80, Bottom: 112},
		{Text: "同じ", X0: 300, Top: 100, X1: 330, Bottom: 112},
		{Text: "違う", X0: 50.01, Top: 100.02, X1: 80, Bottom: 112},
	}

	out := DeduplicateOverlapping(words)

	if len(out) != 3 {
		t.Errorf("expected 3 boxes after dedupe, got %d", len(out))
	}
}

func TestEncodingErrorRate(t *testing.T) {
	words := []WordBox{{Text: "ab��"}}
	if rate := encodingErrorRate(words); rate != 0.5 {
		t.Errorf("expected 0.5, got %v", rate)
	}
}
