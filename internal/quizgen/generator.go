// Package quizgen builds multiple-choice quizzes from document text with a remote model.
package quizgen

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pdfquiz/internal/llm"
	"pdfquiz/internal/models"
)

const (
	// MinQuestions and MaxQuestions bound the requested question count.
	MinQuestions = 1
	MaxQuestions = 10
	// DefaultQuestions is the count used when the user does not choose one.
	DefaultQuestions = 5

	quizMaxTokens   = 1500
	quizTemperature = 0.7
)

var (
	// ErrQuestionCount is returned for a count outside [MinQuestions, MaxQuestions].
	ErrQuestionCount = fmt.Errorf("number of questions must be between %d and %d", MinQuestions, MaxQuestions)
	// ErrGeneration wraps every failure of a generation call: transport, auth,
	// non-JSON output and schema violations alike.
	ErrGeneration = errors.New("quiz generation failed")
)

// quizPrompt is formatted with the question count and the source text.
const quizPrompt = `
Generate %d multiple-choice questions based on the following text.
Each question should have:
- Four options.
- Indicate the correct answer.

The output format should be JSON with the following structure:
[
    {
        "question": "Question text",
        "options": ["Option A", "Option B", "Option C", "Option D"],
        "answer": "Option A"
    },
    ...
]

Ensure the output is valid JSON and does not include any additional text.

Text: %s
`

// Generator turns text into a Quiz.
type Generator struct {
	llm        llm.Completer
	summarizer *Summarizer
}

// NewGenerator creates a generator that summarizes long input with summarizer.
// A nil summarizer uses the default threshold against the same model.
func NewGenerator(completer llm.Completer, summarizer *Summarizer) *Generator {
	if summarizer == nil {
		summarizer = NewSummarizer(completer, DefaultThreshold)
	}
	return &Generator{llm: completer, summarizer: summarizer}
}

// BuildPrompt returns the generation prompt for n questions over text.
func BuildPrompt(text string, n int) string {
	return fmt.Sprintf(quizPrompt, n, text)
}

// Generate asks the model for n questions about text. On any failure it returns
// an empty quiz and an error wrapping ErrGeneration.
func (g *Generator) Generate(ctx context.Context, text string, n int) (models.Quiz, error) {
	if n < MinQuestions || n > MaxQuestions {
		return nil, ErrQuestionCount
	}

	if g.summarizer.Exceeds(text) {
		text = g.summarizer.Summarize(ctx, text)
	}

	raw, err := g.llm.Complete(ctx, llm.Request{
		Prompt:      BuildPrompt(text, n),
		MaxTokens:   quizMaxTokens,
		Temperature: quizTemperature,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	quiz, err := ParseQuiz(raw)
	if err != nil {
		log.Printf("DEBUG: Raw model output rejected: %q", raw)
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if len(quiz) != n {
		log.Printf("WARN: Requested %d questions, model returned %d", n, len(quiz))
	}
	log.Printf("INFO: Generated quiz with %d questions", len(quiz))
	return quiz, nil
}
