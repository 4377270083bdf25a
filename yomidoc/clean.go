package yomidoc

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Japanese particles that indicate a line was broken mid-sentence: a
// line ending on one of these almost always continues on the next.
var joinParticles = []string{"は", "が", "を", "に", "で", "と", "の", "へ", "から", "も", "や", "、"}

var (
	multiSpace     = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforeCJK = regexp.MustCompile(` ([。、！？）」』】])`)
	cjkSpaceCJK    = regexp.MustCompile(`([\x{3040}-\x{30FF}\x{4E00}-\x{9FFF}]) ([\x{3040}-\x{30FF}\x{4E00}-\x{9FFF}])`)
)

// Cleaner applies the post-reconstruction text fixes. Every step is an
// explicit toggle; NormalizeWidth defaults off to preserve source
// fidelity.
type Cleaner struct {
	FixSpacing     bool
	JoinLines      bool
	FixPunctuation bool
	NormalizeWidth bool
}

// NewCleaner creates a cleaner with the default toggles: spacing, line
// joining, and punctuation fixes on, width normalization off.
func NewCleaner() *Cleaner {
	return &Cleaner{
		FixSpacing:     true,
		JoinLines:      true,
		FixPunctuation: true,
	}
}

// Clean applies the enabled fixes in a fixed order.
func (c *Cleaner) Clean(text string) string {
	if c.FixSpacing {
		text = c.fixSpacing(text)
	}
	if c.JoinLines {
		text = c.joinBrokenLines(text)
	}
	if c.FixPunctuation {
		text = c.fixPunctuation(text)
	}
	if c.NormalizeWidth {
		text = width.Narrow.String(text)
	}
	return text
}

// fixSpacing collapses space runs and removes stray spaces wedged
// between CJK characters.
func (c *Cleaner) fixSpacing(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	// Applied twice: a replacement can create a new adjacent pair.
	text = cjkSpaceCJK.ReplaceAllString(text, "$1$2")
	text = cjkSpaceCJK.ReplaceAllString(text, "$1$2")
	return text
}

// joinBrokenLines merges a line into the next when it ends with a
// particle or comma. Blank lines are preserved as paragraph breaks.
func (c *Cleaner) joinBrokenLines(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		for i+1 < len(lines) && endsWithParticle(line) && strings.TrimSpace(lines[i+1]) != "" {
			line += strings.TrimSpace(lines[i+1])
			i++
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func endsWithParticle(line string) bool {
	trimmed := strings.TrimRight(line, " ")
	if trimmed == "" {
		return false
	}
	for _, p := range joinParticles {
		if strings.HasSuffix(trimmed, p) {
			return true
		}
	}
	return false
}

// fixPunctuation removes spaces before closing punctuation.
func (c *Cleaner) fixPunctuation(text string) string {
	return spaceBeforeCJK.ReplaceAllString(text, "$1")
}
