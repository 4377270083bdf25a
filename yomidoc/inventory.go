package yomidoc

import (
	"strings"
)

// Region and size bucket boundaries for the inventory. The inventory is
// taken from the raw word boxes before any filtering so it can serve as
// the expected baseline during verification.
const (
	regionTopPct    = 0.15
	regionBottomPct = 0.85

	sizeLargeMin    = 18.0
	sizeStandardMin = 10.0
	sizeSmallMin    = 6.0
)

// PageInventory holds one page's element counts by region and size
// class.
type PageInventory struct {
	Page     int            `json:"page"`
	Total    int            `json:"total"`
	ByRegion map[string]int `json:"by_region"`
	BySize   map[string]int `json:"by_size"`
}

// Inventory is the pre-extraction element census of a whole document.
// It is created once and never mutated afterward.
type Inventory struct {
	Pages    []PageInventory `json:"pages"`
	Total    int             `json:"total"`
	ByRegion map[string]int  `json:"by_region"`
	BySize   map[string]int  `json:"by_size"`
}

// CoverageStatus classifies a coverage report.
type CoverageStatus string

const (
	CoverageGood    CoverageStatus = "GOOD"
	CoverageWarning CoverageStatus = "WARNING"
	CoveragePoor    CoverageStatus = "POOR"
)

// CoverageReport compares extracted output against the inventory.
type CoverageReport struct {
	TotalExpected   int            `json:"total_expected"`
	TotalExtracted  int            `json:"total_extracted"`
	CoveragePercent float64        `json:"coverage_percent"`
	ByRegion        map[string]int `json:"by_region"`
	BySize          map[string]int `json:"by_size"`
	Status          CoverageStatus `json:"status"`
}

// TakeInventory counts every raw word box per page, bucketed by vertical
// region (top/middle/bottom) and font-size class (large/standard/small/
// tiny, height-estimated when size metadata is absent).
func TakeInventory(pages []Page) *Inventory {
	inv := &Inventory{
		ByRegion: map[string]int{"top": 0, "middle": 0, "bottom": 0},
		BySize:   map[string]int{"large": 0, "standard": 0, "small": 0, "tiny": 0},
	}
	for _, page := range pages {
		pi := PageInventory{
			Page:     page.Number,
			ByRegion: map[string]int{"top": 0, "middle": 0, "bottom": 0},
			BySize:   map[string]int{"large": 0, "standard": 0, "small": 0, "tiny": 0},
		}
		for _, w := range page.Words {
			pi.Total++
			pi.ByRegion[regionOf(w, page.Height)]++
			pi.BySize[sizeClassOf(w)]++
		}
		inv.Pages = append(inv.Pages, pi)
		inv.Total += pi.Total
		for k, v := range pi.ByRegion {
			inv.ByRegion[k] += v
		}
		for k, v := range pi.BySize {
			inv.BySize[k] += v
		}
	}
	return inv
}

func regionOf(w WordBox, pageHeight float64) string {
	if pageHeight <= 0 {
		return "middle"
	}
	switch {
	case w.Top < pageHeight*regionTopPct:
		return "top"
	case w.Top > pageHeight*regionBottomPct:
		return "bottom"
	}
	return "middle"
}

func sizeClassOf(w WordBox) string {
	size := w.Size()
	switch {
	case size > sizeLargeMin:
		return "large"
	case size >= sizeStandardMin:
		return "standard"
	case size >= sizeSmallMin:
		return "small"
	}
	return "tiny"
}

// VerifyExtraction reports how much of the inventoried content made it
// into the extracted text. Extracted elements are approximated by the
// whitespace word count.
func (inv *Inventory) VerifyExtraction(text string) CoverageReport {
	extracted := len(strings.Fields(text))
	report := CoverageReport{
		TotalExpected:  inv.Total,
		TotalExtracted: extracted,
		ByRegion:       inv.ByRegion,
		BySize:         inv.BySize,
	}
	if inv.Total > 0 {
		report.CoveragePercent = float64(extracted) / float64(inv.Total) * 100
	} else {
		report.CoveragePercent = 100
	}
	switch {
	case report.CoveragePercent >= 85:
		report.Status = CoverageGood
	case report.CoveragePercent >= 70:
		report.Status = CoverageWarning
	default:
		report.Status = CoveragePoor
	}
	return report
}
