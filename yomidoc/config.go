package yomidoc

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config enumerates every pipeline toggle and threshold. It is built
// once and passed by value into the extractor; components never read
// ambient global state.
type Config struct {
	// Layout thresholds.
	ColumnGap  float64 `yaml:"column_gap" json:"column_gap"`
	LineHeight float64 `yaml:"line_height" json:"line_height"`

	// Footnote region boundary as a fraction of page height.
	FootnoteRegion float64 `yaml:"footnote_region" json:"footnote_region"`

	// Cleanup toggles. NormalizeCharacters stays off by default to
	// preserve source fidelity.
	NormalizeCharacters bool `yaml:"normalize_characters" json:"normalize_characters"`
	FixSpacing          bool `yaml:"fix_spacing" json:"fix_spacing"`
	JoinLines           bool `yaml:"join_lines" json:"join_lines"`
	FixPunctuation      bool `yaml:"fix_punctuation" json:"fix_punctuation"`

	// Filtering toggles.
	RemoveHeadersFooters bool `yaml:"remove_headers_footers" json:"remove_headers_footers"`
	RemovePageNumbers    bool `yaml:"remove_page_numbers" json:"remove_page_numbers"`

	// Feature toggles.
	DetectTables    bool `yaml:"detect_tables" json:"detect_tables"`
	MatchFootnotes  bool `yaml:"match_footnotes" json:"match_footnotes"`
	VerifyOutput    bool `yaml:"verify_output" json:"verify_output"`
	ScoreQuality    bool `yaml:"score_quality" json:"score_quality"`
	AttachScripts   bool `yaml:"attach_scripts" json:"attach_scripts"`
	LLMVerification bool `yaml:"llm_verification" json:"llm_verification"`

	// Table detection minimums.
	TableMinRows  int `yaml:"table_min_rows" json:"table_min_rows"`
	TableMinCols  int `yaml:"table_min_cols" json:"table_min_cols"`
	TableMinCells int `yaml:"table_min_cells" json:"table_min_cells"`

	// OCR fallback trigger: pages with fewer words than this are sent
	// to the OCR collaborator.
	OCRTriggerWords int `yaml:"ocr_trigger_words" json:"ocr_trigger_words"`

	// Output formatting.
	IncludeHeader bool `yaml:"include_header" json:"include_header"`
	PageMarkers   bool `yaml:"page_markers" json:"page_markers"`
	Statistics    bool `yaml:"statistics" json:"statistics"`

	// Checkpointing for large documents. Empty dir disables it.
	CheckpointDir   string `yaml:"checkpoint_dir" json:"checkpoint_dir"`
	CheckpointEvery int    `yaml:"checkpoint_every" json:"checkpoint_every"`

	// LLM collaborator endpoint; empty selects the deterministic
	// pattern-based fallback.
	LLMEndpoint string  `yaml:"llm_endpoint" json:"llm_endpoint"`
	LLMRateRPS  float64 `yaml:"llm_rate_rps" json:"llm_rate_rps"`

	// Batch execution. Patterns are doublestar globs matched against
	// paths relative to the batch folder; exclusion wins.
	BatchWorkers int      `yaml:"batch_workers" json:"batch_workers"`
	BatchInclude []string `yaml:"batch_include" json:"batch_include"`
	BatchExclude []string `yaml:"batch_exclude" json:"batch_exclude"`
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		ColumnGap:            50.0,
		LineHeight:           15.0,
		FootnoteRegion:       0.80,
		NormalizeCharacters:  false,
		FixSpacing:           true,
		JoinLines:            true,
		FixPunctuation:       true,
		RemoveHeadersFooters: true,
		RemovePageNumbers:    true,
		DetectTables:         true,
		MatchFootnotes:       true,
		VerifyOutput:         true,
		ScoreQuality:         true,
		AttachScripts:        true,
		LLMVerification:      false,
		TableMinRows:         3,
		TableMinCols:         3,
		TableMinCells:        9,
		OCRTriggerWords:      10,
		IncludeHeader:        true,
		PageMarkers:          true,
		Statistics:           true,
		CheckpointEvery:      50,
		LLMRateRPS:           2.0,
		BatchWorkers:         4,
		BatchInclude:         []string{"**/*.pdf"},
	}
}

// LoadConfig reads a YAML config file, layering it over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot work with.
func (c Config) Validate() error {
	if c.ColumnGap <= 0 {
		return fmt.Errorf("column_gap must be positive, got %v", c.ColumnGap)
	}
	if c.LineHeight <= 0 {
		return fmt.Errorf("line_height must be positive, got %v", c.LineHeight)
	}
	if c.FootnoteRegion <= 0 || c.FootnoteRegion >= 1 {
		return fmt.Errorf("footnote_region must be in (0,1), got %v", c.FootnoteRegion)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("batch_workers must be at least 1, got %d", c.BatchWorkers)
	}
	for _, pattern := range append(append([]string{}, c.BatchInclude...), c.BatchExclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid batch glob pattern %q", pattern)
		}
	}
	return nil
}
