package ingest

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DocumentSource supplies page-by-page plain text from a report. The
// selector performs no layout analysis, OCR, or table recovery; it only
// consumes whatever text the source extracts.
type DocumentSource interface {
	PageCount() int
	PageText(i int) (string, error)
}

// Config holds the page selector configuration
type Config struct {
	// PrimaryKeywords are section titles and regulatory note references
	// that signal a related-party disclosure page. A hit scores 3.
	PrimaryKeywords []string

	// SecondaryKeywords are role and entity terms that add context. A hit
	// scores 1 and can never qualify a page on its own.
	SecondaryKeywords []string

	// ScoreThreshold is the minimum page score for inclusion.
	ScoreThreshold int

	// FallbackPages is how many pages are taken from the document head
	// when no page qualifies.
	FallbackPages int

	// MaxSectionLen bounds the focused section to keep prompts affordable.
	MaxSectionLen int
}

// DefaultConfig returns the selector configuration tuned for Indian annual
// reports under SEBI LODR and the Companies Act.
func DefaultConfig() Config {
	return Config{
		PrimaryKeywords:   []string{"Related Party Disclosures", "Note 32", "Section 188"},
		SecondaryKeywords: []string{"Key Management Personnel", "KMP", "Subsidiary", "Associate", "Joint Venture"},
		ScoreThreshold:    3,
		FallbackPages:     10,
		MaxSectionLen:     30000,
	}
}

// Selector scores report pages against the keyword sets and assembles the
// focused related-party section for the auditor.
type Selector struct {
	cfg    Config
	logger *zap.Logger
}

// NewSelector creates a new page selector
func NewSelector(cfg Config, logger *zap.Logger) *Selector {
	return &Selector{
		cfg:    cfg,
		logger: logger,
	}
}

// FocusedSection scans the document and returns the concatenated text of
// every qualifying page, each wrapped in a "--- PAGE n ---" block, in
// original page order. When nothing qualifies it degrades to the first
// min(FallbackPages, pageCount) pages on the assumption that the executive
// summary still supports a coarse analysis. The result is truncated to
// MaxSectionLen.
func (s *Selector) FocusedSection(src DocumentSource) string {
	pageCount := src.PageCount()

	var blocks []string
	for i := 0; i < pageCount; i++ {
		text, err := src.PageText(i)
		if err != nil {
			s.logger.Warn("failed to extract page text",
				zap.Int("page", i),
				zap.Error(err))
			continue
		}
		if s.scorePage(text) >= s.cfg.ScoreThreshold {
			blocks = append(blocks, fmt.Sprintf("--- PAGE %d ---\n%s", i, text))
		}
	}

	section := strings.Join(blocks, "\n")

	if section == "" {
		s.logger.Warn("no related-party section found, using start of document",
			zap.Int("page_count", pageCount),
			zap.Int("fallback_pages", s.cfg.FallbackPages))

		var b strings.Builder
		for i := 0; i < pageCount && i < s.cfg.FallbackPages; i++ {
			text, err := src.PageText(i)
			if err != nil {
				s.logger.Warn("failed to extract page text",
					zap.Int("page", i),
					zap.Error(err))
				continue
			}
			b.WriteString(text)
		}
		section = b.String()
	}

	if len(section) > s.cfg.MaxSectionLen {
		section = section[:s.cfg.MaxSectionLen]
	}

	s.logger.Info("focused section assembled",
		zap.Int("pages_matched", len(blocks)),
		zap.Int("section_len", len(section)))

	return section
}

// scorePage computes the relevance score for a single page: 3 for any
// primary keyword, plus 1 for any secondary keyword, case-insensitive.
func (s *Selector) scorePage(text string) int {
	lower := strings.ToLower(text)

	score := 0
	if containsAny(lower, s.cfg.PrimaryKeywords) {
		score += 3
	}
	if containsAny(lower, s.cfg.SecondaryKeywords) {
		score++
	}
	return score
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
