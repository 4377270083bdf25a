package yomidoc

import "context"

// OCRResult is the outcome of an OCR attempt on one page.
type OCRResult struct {
	Text       string
	Confidence float64
	Success    bool
}

// OCREngine recognizes text on pages where word extraction yields too
// little. Implementations are external collaborators; the core only
// depends on this interface.
type OCREngine interface {
	Recognize(ctx context.Context, page Page) (OCRResult, error)
}

// NoopOCR is the default engine: it always reports failure, so pages
// fall through to the recovery cascade.
type NoopOCR struct{}

func (NoopOCR) Recognize(ctx context.Context, page Page) (OCRResult, error) {
	return OCRResult{}, nil
}
