package yomidoc

import (
	"strings"
	"testing"
)

func TestFormat_SplitRoundTrip(t *testing.T) {
	f := NewFormatter()
	pages := []FormattedPage{
		{Number: 1, Text: "一ページ目の本文\n二行目"},
		{Number: 2, Text: "二ページ目の本文"},
		{Number: 3, Text: ""},
	}

	doc := f.Format("test.pdf", pages)
	split := SplitByPages(doc)

	if len(split) != 3 {
		t.Fatalf("expected 3 pages, got %d (%v)", len(split), PageNumbers(split))
	}
	for _, page := range pages {
		if split[page.Number] != strings.TrimSpace(page.Text) {
			t.Errorf("page %d round trip: want %q, got %q",
				page.Number, strings.TrimSpace(page.Text), split[page.Number])
		}
	}
}

func TestFormat_Header(t *testing.T) {
	f := NewFormatter()
	doc := f.Format("report.pdf", []FormattedPage{{Number: 1, Text: "x"}})

	if !strings.HasPrefix(doc, "[DOCUMENT FILENAME: report.pdf]") {
		t.Errorf("missing filename header: %q", doc[:40])
	}

	f.IncludeHeader = false
	doc = f.Format("report.pdf", []FormattedPage{{Number: 1, Text: "x"}})
	if strings.Contains(doc, "[DOCUMENT FILENAME") {
		t.Error("header should be omitted when disabled")
	}
}

func TestFormat_FootnoteBlock(t *testing.T) {
	f := &Formatter{PageMarkers: true}
	pages := []FormattedPage{{
		Number: 1,
		Text:   "本文*1",
		Footnotes: []FootnoteMatch{{
			Definition: FootnoteDefinition{Marker: "*1", Text: "説明文"},
			Confidence: 1.0,
		}},
	}}

	doc := f.Format("", pages)

	if !strings.Contains(doc, "FOOTNOTES:") {
		t.Error("missing FOOTNOTES block")
	}
	if !strings.Contains(doc, "*1: 説明文") {
		t.Errorf("missing footnote line in %q", doc)
	}
}

func TestFormat_TableBlock(t *testing.T) {
	f := &Formatter{PageMarkers: false}
	pages := []FormattedPage{{
		Number: 1,
		Text:   "前文",
		Tables: []TableRegion{{Rows: [][]string{{"a", "b"}, {"c", "d"}}}},
	}}

	doc := f.Format("", pages)

	if !strings.Contains(doc, "[TABLE:") || !strings.Contains(doc, "[TABLE END]") {
		t.Errorf("missing table block in %q", doc)
	}
	if !strings.Contains(doc, "a | b") {
		t.Errorf("cells should be pipe joined, got %q", doc)
	}
}

func TestMarkerLine(t *testing.T) {
	line := markerLine(7, "START")
	if len(line) != markerWidth {
		t.Errorf("marker line should be %d chars, got %d", markerWidth, len(line))
	}
	if !strings.Contains(line, " PAGE 7 START ") {
		t.Errorf("marker label missing: %q", line)
	}
	if !markerLinePattern.MatchString(line) {
		t.Errorf("marker line must match its own pattern: %q", line)
	}
}

func TestRemoveMarkers(t *testing.T) {
	f := NewFormatter()
	doc := f.Format("x.pdf", []FormattedPage{
		{Number: 1, Text: "中身のテキスト"},
	})

	clean := RemoveMarkers(doc)

	if strings.Contains(clean, "PAGE 1 START") || strings.Contains(clean, "[DOCUMENT FILENAME") {
		t.Errorf("markers should be stripped: %q", clean)
	}
	if !strings.Contains(clean, "中身のテキスト") {
		t.Errorf("content must survive: %q", clean)
	}
}

func TestStripQualityMarkers(t *testing.T) {
	in := "読める部分[illegible]続き[?]終わり"
	out := StripQualityMarkers(in)
	if out != "読める部分続き終わり" {
		t.Errorf("got %q", out)
	}
}
