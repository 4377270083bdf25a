package yomidoc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Correction is the collaborator's answer for one suspect span.
type Correction struct {
	Text        string  `json:"corrected_text"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Corrector reviews a suspect text span with surrounding context and
// proposes a correction. Implementations must be safe for concurrent
// use.
type Corrector interface {
	Correct(ctx context.Context, span, contextText string) (Correction, error)
}

// Context radius handed to the corrector around each suspect span.
const correctionContextRunes = 150

// SpanContext returns up to correctionContextRunes characters on each
// side of the span's position in text.
func SpanContext(text string, start, end int) string {
	runes := []rune(text)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	lo := start - correctionContextRunes
	if lo < 0 {
		lo = 0
	}
	hi := end + correctionContextRunes
	if hi > len(runes) {
		hi = len(runes)
	}
	return string(runes[lo:hi])
}

// Fixed garble repairs applied by the deterministic fallback.
var patternRepairs = []struct {
	from, to string
}{
	{"???", ""},
	{"�", ""},
	{"□", ""},
}

// PatternCorrector is the deterministic local fallback: fixed
// replacements only, so offline runs and tests behave identically
// across invocations.
type PatternCorrector struct{}

func (PatternCorrector) Correct(ctx context.Context, span, _ string) (Correction, error) {
	corrected := span
	for _, r := range patternRepairs {
		corrected = strings.ReplaceAll(corrected, r.from, r.to)
	}
	conf := 0.5
	if corrected == span {
		conf = 0.9
	}
	return Correction{
		Text:        corrected,
		Confidence:  conf,
		Explanation: "pattern-based local correction",
	}, nil
}

// HTTPCorrector posts suspect spans to a configured endpoint using the
// JSON request/response contract. Calls are rate limited.
type HTTPCorrector struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewHTTPCorrector creates a corrector for the given endpoint with the
// given request rate.
func NewHTTPCorrector(endpoint string, rps float64) *HTTPCorrector {
	if rps <= 0 {
		rps = 2.0
	}
	return &HTTPCorrector{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type correctionRequest struct {
	Span    string `json:"span"`
	Context string `json:"context"`
}

func (c *HTTPCorrector) Correct(ctx context.Context, span, contextText string) (Correction, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Correction{}, err
	}

	body, err := json.Marshal(correctionRequest{Span: span, Context: contextText})
	if err != nil {
		return Correction{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Correction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Correction{}, fmt.Errorf("correction request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Correction{}, fmt.Errorf("correction request failed: status %d", resp.StatusCode)
	}

	var correction Correction
	if err := json.NewDecoder(resp.Body).Decode(&correction); err != nil {
		return Correction{}, fmt.Errorf("invalid correction response: %w", err)
	}
	return correction, nil
}

// NewCorrector selects the HTTP corrector when an endpoint is
// configured, otherwise the deterministic fallback.
func NewCorrector(cfg Config) Corrector {
	if cfg.LLMEndpoint != "" {
		return NewHTTPCorrector(cfg.LLMEndpoint, cfg.LLMRateRPS)
	}
	return PatternCorrector{}
}
