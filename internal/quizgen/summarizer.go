package quizgen

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"pdfquiz/internal/llm"
)

// DefaultThreshold is the text length, in characters, above which text is summarized.
const DefaultThreshold = 2000

const (
	summaryMaxTokens   = 500
	summaryTemperature = 0.5
)

// Summarizer condenses long text before quiz generation. It is best effort:
// any failure returns the input unchanged.
type Summarizer struct {
	llm       llm.Completer
	threshold int
}

// NewSummarizer creates a summarizer. A non-positive threshold uses DefaultThreshold.
func NewSummarizer(completer llm.Completer, threshold int) *Summarizer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Summarizer{llm: completer, threshold: threshold}
}

// Threshold returns the configured length threshold.
func (s *Summarizer) Threshold() int {
	return s.threshold
}

// Exceeds reports whether text is long enough to be summarized.
func (s *Summarizer) Exceeds(text string) bool {
	return utf8.RuneCountInString(text) > s.threshold
}

// Summarize returns a condensed version of text, or text itself when it is short
// enough or the remote call fails.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	if !s.Exceeds(text) {
		return text
	}

	summary, err := s.llm.Complete(ctx, llm.Request{
		Prompt:      "Summarize the following text:\n\n" + text,
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		log.Printf("WARN: Summarization failed, using original text (%d chars): %v", utf8.RuneCountInString(text), err)
		return text
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		log.Printf("WARN: Summarization returned no text, using original text")
		return text
	}
	log.Printf("INFO: Summarized %d chars down to %d chars", utf8.RuneCountInString(text), utf8.RuneCountInString(summary))
	return summary
}
