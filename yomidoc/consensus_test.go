package yomidoc

import (
	"errors"
	"testing"
)

func TestConsensus_AgreementWins(t *testing.T) {
	results := []EngineResult{
		{Name: "a", Text: "これは同じ抽出結果です"},
		{Name: "b", Text: "これは同じ抽出結果です"},
		{Name: "c", Text: "全然違う何かのテキスト"},
	}

	consensus := Consensus(results)

	if consensus.Winner != "a" && consensus.Winner != "b" {
		t.Errorf("an agreeing engine should win, got %s", consensus.Winner)
	}
	if consensus.Agreement <= 0.3 {
		t.Errorf("agreement should reflect the matching pair, got %v", consensus.Agreement)
	}
}

func TestConsensus_SkipsFailures(t *testing.T) {
	results := []EngineResult{
		{Name: "broken", Err: errors.New("boom")},
		{Name: "empty", Text: "   "},
		{Name: "ok", Text: "有効な結果"},
	}

	consensus := Consensus(results)

	if consensus.Winner != "ok" {
		t.Errorf("failed engines must be skipped, got winner %q", consensus.Winner)
	}
	if consensus.Agreement != 1.0 {
		t.Errorf("single usable result has agreement 1.0, got %v", consensus.Agreement)
	}
}

func TestConsensus_NoUsableResults(t *testing.T) {
	consensus := Consensus([]EngineResult{{Name: "x", Err: errors.New("boom")}})
	if consensus.Winner != "" {
		t.Errorf("expected empty consensus, got %+v", consensus)
	}
}

func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "同じテキスト", "同じテキスト", 1.0, 1.0},
		{"disjoint", "あいうえお", "xyzzy", 0.0, 0.0},
		{"partial", "日本語のテキスト処理", "日本語のテキスト解析", 0.5, 0.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := textSimilarity(tt.a, tt.b)
			if sim < tt.min || sim > tt.max {
				t.Errorf("similarity %v outside [%v, %v]", sim, tt.min, tt.max)
			}
		})
	}
}
