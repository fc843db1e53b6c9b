package scoring

import (
	"testing"

	"pdfquiz/internal/models"
)

func sampleQuiz() models.Quiz {
	return models.Quiz{
		{Prompt: "2+2?", Options: []string{"3", "4", "5", "6"}, Answer: "4"},
		{Prompt: "Capital of France?", Options: []string{"Paris", "Rome", "Berlin", "Madrid"}, Answer: "Paris"},
	}
}

// TestScoreOneCorrectOneUnanswered verifies the reference example: one correct, one skipped.
func TestScoreOneCorrectOneUnanswered(t *testing.T) {
	result := Score(sampleQuiz(), models.AnswerMap{0: "4"})

	if result.Correct != 1 || result.Unanswered != 1 || result.Total != 2 {
		t.Fatalf("unexpected tallies %+v", result)
	}
	if result.Items[0].Outcome != Correct || result.Items[1].Outcome != Unanswered {
		t.Fatalf("unexpected outcomes %+v", result.Items)
	}
	if result.Items[1].CorrectOption != "Paris" {
		t.Fatalf("unanswered item should still carry the correct answer")
	}
	if got := result.Summary(); got != "You got 1 out of 2 questions correct." {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := result.UnansweredWarning(); got != "You did not answer 1 question(s)." {
		t.Fatalf("unexpected warning %q", got)
	}
}

// TestScoreExactMatchOnly verifies no trimming or case folding is applied.
func TestScoreExactMatchOnly(t *testing.T) {
	result := Score(sampleQuiz(), models.AnswerMap{0: " 4", 1: "paris"})

	if result.Correct != 0 || result.Unanswered != 0 {
		t.Fatalf("unexpected tallies %+v", result)
	}
	for _, item := range result.Items {
		if item.Outcome != Incorrect {
			t.Fatalf("expected incorrect, got %s", item.Outcome)
		}
	}
	if result.UnansweredWarning() != "" {
		t.Fatalf("expected no warning when everything was answered")
	}
}

// TestScorePlaceholderIsUnanswered verifies the placeholder entry never counts as an answer.
func TestScorePlaceholderIsUnanswered(t *testing.T) {
	result := Score(sampleQuiz(), models.AnswerMap{0: models.Placeholder, 1: "Paris"})

	if result.Correct != 1 || result.Unanswered != 1 {
		t.Fatalf("unexpected tallies %+v", result)
	}
	if result.Items[0].Selected != "" {
		t.Fatalf("placeholder should not be reported as a selection")
	}
}

// TestScoreEmptyQuiz verifies an empty quiz scores zero out of zero.
func TestScoreEmptyQuiz(t *testing.T) {
	result := Score(nil, nil)
	if result.Total != 0 || result.Correct != 0 || len(result.Items) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}
