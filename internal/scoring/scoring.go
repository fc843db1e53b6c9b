// Package scoring grades a submitted quiz against its answer key.
package scoring

import (
	"fmt"

	"pdfquiz/internal/models"
)

// Outcome is the grade of a single question.
type Outcome string

const (
	Correct    Outcome = "correct"
	Incorrect  Outcome = "incorrect"
	Unanswered Outcome = "unanswered"
)

// Item is the per-question feedback shown after submission.
type Item struct {
	Index         int      `json:"index"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	Selected      string   `json:"selected,omitempty"`
	CorrectOption string   `json:"correct_answer"`
	Outcome       Outcome  `json:"outcome"`
}

// Number is the 1-based question number used in the UI.
func (i Item) Number() int { return i.Index + 1 }

// Result is the outcome of one submission.
type Result struct {
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Unanswered int    `json:"unanswered"`
	Items      []Item `json:"items"`
}

// Summary is the headline shown above the per-question feedback.
func (r Result) Summary() string {
	return fmt.Sprintf("You got %d out of %d questions correct.", r.Correct, r.Total)
}

// UnansweredWarning returns the warning for skipped questions, or "" when every
// question was answered.
func (r Result) UnansweredWarning() string {
	if r.Unanswered == 0 {
		return ""
	}
	return fmt.Sprintf("You did not answer %d question(s).", r.Unanswered)
}

// Score grades answers against quiz. A missing entry or the placeholder counts as
// unanswered; anything else is compared to the answer key by exact string equality.
func Score(quiz models.Quiz, answers models.AnswerMap) Result {
	result := Result{Total: len(quiz), Items: make([]Item, 0, len(quiz))}
	for i, q := range quiz {
		item := Item{
			Index:         i,
			Prompt:        q.Prompt,
			Options:       append([]string(nil), q.Options...),
			CorrectOption: q.Answer,
		}

		selected, ok := answers[i]
		switch {
		case !ok || selected == models.Placeholder:
			item.Outcome = Unanswered
			result.Unanswered++
		case selected == q.Answer:
			item.Selected = selected
			item.Outcome = Correct
			result.Correct++
		default:
			item.Selected = selected
			item.Outcome = Incorrect
		}
		result.Items = append(result.Items, item)
	}
	return result
}
