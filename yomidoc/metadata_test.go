package yomidoc

import (
	"testing"
)

func testPage(height, width float64, words ...WordBox) Page {
	return Page{Number: 1, Width: width, Height: height, Words: words}
}

func TestMetadataFilter_Keep(t *testing.T) {
	filter := &MetadataFilter{
		RepeatingText:     map[string]bool{"社外秘資料": true},
		RemoveRepeating:   true,
		RemovePageNumbers: true,
	}
	page := testPage(800, 600)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"decimal section numbering", "1.2", true},
		{"parenthesized number", "(3)", true},
		{"circled number", "①はじめ", true},
		{"kanji chapter", "第3章", true},
		{"ordinal kanji", "一、", true},
		{"footnote marker", "※1", true},
		{"strict page pattern", "Page 12", false},
		{"japanese page pattern", "ページ 3", false},
		{"dashed page number", "- 4 -", false},
		{"fraction page number", "3/10", false},
		{"repeating header", "社外秘資料", false},
		{"ordinary content", "これは本文です", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WordBox{Text: tt.text, X0: 100, Top: 400, X1: 150, Bottom: 412}
			pg := page
			pg.Words = []WordBox{w}
			if got := filter.Keep(w, pg, 0); got != tt.want {
				t.Errorf("Keep(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsolatedMarginalDigit_Dropped(t *testing.T) {
	filter := NewMetadataFilter(nil)

	// Lone centered "5" at 98% of page height, nothing nearby.
	five := WordBox{Text: "5", X0: 295, Top: 784, X1: 305, Bottom: 792}
	page := testPage(800, 600, five)

	if filter.Keep(five, page, 0) {
		t.Error("isolated centered marginal digit should be dropped")
	}
}

func TestDenseMarginalDigit_Kept(t *testing.T) {
	filter := NewMetadataFilter(nil)

	five := WordBox{Text: "5", X0: 295, Top: 784, X1: 305, Bottom: 792}
	neighbors := []WordBox{
		{Text: "合計", X0: 260, Top: 780, X1: 285, Bottom: 792},
		{Text: "件", X0: 310, Top: 780, X1: 322, Bottom: 792},
		{Text: "中", X0: 325, Top: 780, X1: 337, Bottom: 792},
	}
	page := testPage(800, 600, append([]WordBox{five}, neighbors...)...)

	if !filter.Keep(five, page, 0) {
		t.Error("digit with nearby content must be kept")
	}
}

func TestMidPageDigit_Kept(t *testing.T) {
	filter := NewMetadataFilter(nil)

	digit := WordBox{Text: "7", X0: 295, Top: 400, X1: 305, Bottom: 412}
	page := testPage(800, 600, digit)

	if !filter.Keep(digit, page, 0) {
		t.Error("digit outside the marginal bands must be kept")
	}
}

func TestDetectRepeatingText(t *testing.T) {
	header := WordBox{Text: "機密文書", X0: 200, Top: 20, X1: 260, Bottom: 32}
	body := WordBox{Text: "本文", X0: 100, Top: 400, X1: 130, Bottom: 412}

	var pages []Page
	for i := 0; i < 5; i++ {
		pages = append(pages, Page{
			Number: i + 1, Width: 600, Height: 800,
			Words: []WordBox{header, body},
		})
	}

	repeating := detectRepeatingText(pages)

	if !repeating["機密文書"] {
		t.Error("header present on all sampled pages should be detected")
	}
	if repeating["本文"] {
		t.Error("mid-page text must not be detected as a header")
	}
}

func TestDetectRepeatingText_SinglePage(t *testing.T) {
	pages := []Page{{
		Number: 1, Width: 600, Height: 800,
		Words: []WordBox{{Text: "タイトル", X0: 200, Top: 20, X1: 260, Bottom: 32}},
	}}

	if repeating := detectRepeatingText(pages); len(repeating) != 0 {
		t.Errorf("one page cannot establish repetition, got %v", repeating)
	}
}

func TestFilter_TogglesOff(t *testing.T) {
	filter := &MetadataFilter{
		RepeatingText:     map[string]bool{"ヘッダー": true},
		RemoveRepeating:   false,
		RemovePageNumbers: false,
	}
	page := testPage(800, 600)

	w := WordBox{Text: "Page 3", X0: 100, Top: 20, X1: 140, Bottom: 32}
	if !filter.Keep(w, page, 0) {
		t.Error("page numbers must survive when removal is disabled")
	}
	h := WordBox{Text: "ヘッダー", X0: 100, Top: 20, X1: 140, Bottom: 32}
	if !filter.Keep(h, page, 0) {
		t.Error("repeating headers must survive when removal is disabled")
	}
}
