package models

import (
	"time"

	"github.com/google/uuid"
)

// Placeholder is the "no selection" entry shown ahead of every question's options.
const Placeholder = "Select an answer"

// OptionsPerQuestion is the number of options every generated question must carry.
const OptionsPerQuestion = 4

// Question is a single multiple-choice question as produced by the model.
type Question struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// HasOption reports whether option is one of the question's options.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Quiz is the ordered question set for one generation cycle.
type Quiz []Question

// Clone returns a deep copy of the quiz.
func (q Quiz) Clone() Quiz {
	if q == nil {
		return nil
	}
	out := make(Quiz, len(q))
	for i, question := range q {
		question.Options = append([]string(nil), question.Options...)
		out[i] = question
	}
	return out
}

// AnswerMap maps a 0-based question index to the selected option.
// A missing key means the question has no selection.
type AnswerMap map[int]string

// Clone returns a copy of the map. A nil map clones to an empty one.
func (a AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Upload describes the document a quiz was generated from.
type Upload struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	FileSize int64     `json:"file_size"`
	URL      string    `json:"url,omitempty"` // archive URL when uploads are archived
}

// QuizRecord is a generated quiz as stored in the history tables.
type QuizRecord struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	FileName  string    `json:"file_name"`
	Questions Quiz      `json:"questions"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultRecord is a submitted quiz result as stored in the history tables.
type ResultRecord struct {
	ID          uuid.UUID `json:"id"`
	QuizID      uuid.UUID `json:"quiz_id"`
	FileName    string    `json:"file_name"`
	Correct     int       `json:"correct"`
	Total       int       `json:"total"`
	Unanswered  int       `json:"unanswered"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
