package yomidoc

import (
	"context"
	"strings"
)

// Engine is one extraction backend participating in consensus.
type Engine interface {
	Name() string
	Extract(ctx context.Context, path string) (string, error)
}

// EngineResult is an engine's output in the common shape consensus
// operates on.
type EngineResult struct {
	Name string
	Text string
	Err  error
}

// ConsensusResult names the winning engine and how strongly the others
// agree with it.
type ConsensusResult struct {
	Winner    string
	Text      string
	Agreement float64
	Pairwise  map[string]float64
}

// Consensus picks the result with the highest mean pairwise similarity
// to the others. It is a pure function over the result list; failed
// engines are skipped. With a single usable result the agreement is 1.
func Consensus(results []EngineResult) ConsensusResult {
	usable := make([]EngineResult, 0, len(results))
	for _, r := range results {
		if r.Err == nil && strings.TrimSpace(r.Text) != "" {
			usable = append(usable, r)
		}
	}
	if len(usable) == 0 {
		return ConsensusResult{}
	}
	if len(usable) == 1 {
		return ConsensusResult{
			Winner:    usable[0].Name,
			Text:      usable[0].Text,
			Agreement: 1.0,
			Pairwise:  map[string]float64{},
		}
	}

	pairwise := make(map[string]float64)
	bestIdx := 0
	bestMean := -1.0
	for i := range usable {
		var sum float64
		for j := range usable {
			if i == j {
				continue
			}
			sim := textSimilarity(usable[i].Text, usable[j].Text)
			pairwise[usable[i].Name+"/"+usable[j].Name] = sim
			sum += sim
		}
		mean := sum / float64(len(usable)-1)
		if mean > bestMean {
			bestMean = mean
			bestIdx = i
		}
	}
	return ConsensusResult{
		Winner:    usable[bestIdx].Name,
		Text:      usable[bestIdx].Text,
		Agreement: bestMean,
		Pairwise:  pairwise,
	}
}

// textSimilarity is the Dice coefficient over rune bigrams: cheap,
// order-sensitive enough for extraction comparison, and symmetric.
func textSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ba := runeBigrams(a)
	bb := runeBigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	var common int
	for bg, ca := range ba {
		if cb, ok := bb[bg]; ok {
			if ca < cb {
				common += ca
			} else {
				common += cb
			}
		}
	}
	var total int
	for _, c := range ba {
		total += c
	}
	for _, c := range bb {
		total += c
	}
	return 2 * float64(common) / float64(total)
}

func runeBigrams(s string) map[string]int {
	runes := []rune(s)
	grams := make(map[string]int)
	for i := 0; i+2 <= len(runes); i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}
