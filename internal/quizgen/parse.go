package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"pdfquiz/internal/models"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrMalformed is returned when the model output is not a single JSON array.
	ErrMalformed = errors.New("model output is not valid quiz JSON")
	// ErrSchema is returned when the JSON parses but violates the question schema.
	ErrSchema = errors.New("model output does not match the quiz schema")
)

// quizSchemaJSON is the shape the prompt asks the model to produce.
const quizSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "additionalProperties": false,
    "required": ["question", "options", "answer"],
    "properties": {
      "question": {"type": "string", "minLength": 1},
      "options": {
        "type": "array",
        "minItems": 4,
        "maxItems": 4,
        "uniqueItems": true,
        "items": {"type": "string", "minLength": 1}
      },
      "answer": {"type": "string", "minLength": 1}
    }
  }
}`

var quizSchema = jsonschema.MustCompileString("quiz.schema.json", quizSchemaJSON)

// ParseQuiz decodes model output into a Quiz. The output must be exactly one JSON
// array of question objects, optionally wrapped in a single markdown code fence.
// Unknown keys and trailing content are rejected and every question is validated.
func ParseQuiz(raw string) (models.Quiz, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, fmt.Errorf("%w: empty output", ErrMalformed)
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.DisallowUnknownFields()

	var quiz models.Quiz
	if err := decoder.Decode(&quiz); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// Anything after the array, prose included, is a failure.
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected content after JSON array", ErrMalformed)
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := quizSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	if err := Validate(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Validate checks every question against the schema: a non-empty prompt, exactly
// four distinct non-empty options and an answer equal to one of them.
func Validate(quiz models.Quiz) error {
	if len(quiz) == 0 {
		return fmt.Errorf("%w: no questions", ErrSchema)
	}
	for i, q := range quiz {
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrSchema, i+1)
		}
		if len(q.Options) != models.OptionsPerQuestion {
			return fmt.Errorf("%w: question %d has %d options, want %d", ErrSchema, i+1, len(q.Options), models.OptionsPerQuestion)
		}
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if strings.TrimSpace(o) == "" {
				return fmt.Errorf("%w: question %d has an empty option", ErrSchema, i+1)
			}
			if o == models.Placeholder {
				return fmt.Errorf("%w: question %d uses the reserved option %q", ErrSchema, i+1, o)
			}
			if seen[o] {
				return fmt.Errorf("%w: question %d repeats option %q", ErrSchema, i+1, o)
			}
			seen[o] = true
		}
		if !q.HasOption(q.Answer) {
			return fmt.Errorf("%w: question %d answer %q is not one of its options", ErrSchema, i+1, q.Answer)
		}
	}
	return nil
}

// stripCodeFence removes one markdown code fence enclosing the whole text.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	inner := text[3 : len(text)-3]
	// Drop the language tag line, e.g. ```json
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(inner[:nl]); tag == "" || !strings.ContainsAny(tag, "[{") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}
