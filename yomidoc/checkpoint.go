package yomidoc

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Checkpoint is an idempotent snapshot of a partially extracted
// document. A rerun over the same file resumes from the recorded pages.
type Checkpoint struct {
	RunID      string         `json:"run_id"`
	Document   string         `json:"document"`
	TotalPages int            `json:"total_pages"`
	PageTexts  map[int]string `json:"page_texts"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Checkpointer persists checkpoints for one document under a directory.
// The file name is derived from the document path, so concurrent runs
// over different documents never collide.
type Checkpointer struct {
	dir   string
	path  string
	runID string
}

// NewCheckpointer creates a checkpointer for the given document.
func NewCheckpointer(dir, document string) (*Checkpointer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint dir: %w", err)
	}
	sum := sha256.Sum256([]byte(document))
	name := hex.EncodeToString(sum[:8]) + ".checkpoint.json"
	return &Checkpointer{
		dir:   dir,
		path:  filepath.Join(dir, name),
		runID: uuid.NewString(),
	}, nil
}

// Save writes the snapshot atomically: write to a temp file, then
// rename.
func (c *Checkpointer) Save(document string, totalPages int, pageTexts map[int]string) error {
	cp := Checkpoint{
		RunID:      c.runID,
		Document:   document,
		TotalPages: totalPages,
		PageTexts:  pageTexts,
		UpdatedAt:  time.Now().UTC(),
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// Resume loads a previous checkpoint for this document. A missing file
// is not an error; ok is false.
func (c *Checkpointer) Resume(document string) (Checkpoint, bool, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("corrupt checkpoint %s: %w", c.path, err)
	}
	if cp.Document != document {
		return Checkpoint{}, false, nil
	}
	return cp, true, nil
}

// Clear removes the checkpoint after a successful run.
func (c *Checkpointer) Clear() error {
	err := os.Remove(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
