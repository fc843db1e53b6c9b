package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"pdfquiz/internal/llm"
	"pdfquiz/internal/models"
)

// fakeModel records requests and answers from a queue of replies.
type fakeModel struct {
	requests []llm.Request
	replies  []reply
}

type reply struct {
	text string
	err  error
}

func (f *fakeModel) Complete(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if len(f.replies) == 0 {
		return "", errors.New("unexpected call")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.text, r.err
}

func quizJSON(t *testing.T, n int) string {
	t.Helper()
	quiz := make(models.Quiz, n)
	for i := range quiz {
		opts := []string{
			fmt.Sprintf("A%d", i), fmt.Sprintf("B%d", i), fmt.Sprintf("C%d", i), fmt.Sprintf("D%d", i),
		}
		quiz[i] = models.Question{Prompt: fmt.Sprintf("Question %d?", i), Options: opts, Answer: opts[i%4]}
	}
	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	return string(data)
}

// TestSummarizerThreshold verifies non-positive thresholds fall back to the default.
func TestSummarizerThreshold(t *testing.T) {
	for in, want := range map[int]int{0: DefaultThreshold, -5: DefaultThreshold, 300: 300} {
		if got := NewSummarizer(&fakeModel{}, in).Threshold(); got != want {
			t.Fatalf("threshold %d: expected %d, got %d", in, want, got)
		}
	}
}

// TestSummarizeShortTextSkipsModel verifies text at or under the threshold is returned unchanged.
func TestSummarizeShortTextSkipsModel(t *testing.T) {
	model := &fakeModel{}
	s := NewSummarizer(model, 0)

	for _, text := range []string{"", "short", strings.Repeat("x", DefaultThreshold), strings.Repeat("é", DefaultThreshold)} {
		if got := s.Summarize(context.Background(), text); got != text {
			t.Fatalf("expected passthrough for %d chars", len(text))
		}
	}
	if len(model.requests) != 0 {
		t.Fatalf("expected no model calls, got %d", len(model.requests))
	}
}

// TestSummarizeLongTextTrimsCompletion verifies long text is summarized with the fixed prompt.
func TestSummarizeLongTextTrimsCompletion(t *testing.T) {
	long := strings.Repeat("y", DefaultThreshold+1)
	model := &fakeModel{replies: []reply{{text: "\n  the gist \n"}}}

	got := NewSummarizer(model, 0).Summarize(context.Background(), long)
	if got != "the gist" {
		t.Fatalf("unexpected summary %q", got)
	}
	if len(model.requests) != 1 {
		t.Fatalf("expected one call, got %d", len(model.requests))
	}
	req := model.requests[0]
	if req.Prompt != "Summarize the following text:\n\n"+long {
		t.Fatalf("unexpected prompt prefix %q", req.Prompt[:40])
	}
	if req.MaxTokens != 500 || req.Temperature != 0.5 || req.JSON {
		t.Fatalf("unexpected request settings %+v", req)
	}
}

// TestSummarizeFailureReturnsOriginal verifies failures and empty completions fall back to the input.
func TestSummarizeFailureReturnsOriginal(t *testing.T) {
	long := strings.Repeat("z", DefaultThreshold+10)
	model := &fakeModel{replies: []reply{{err: errors.New("401 unauthorized")}, {text: "   "}}}
	s := NewSummarizer(model, 0)

	if got := s.Summarize(context.Background(), long); got != long {
		t.Fatalf("expected original text after error")
	}
	if got := s.Summarize(context.Background(), long); got != long {
		t.Fatalf("expected original text after empty completion")
	}
}

// TestGenerateReturnsRequestedQuestions verifies a compliant response yields n valid questions.
func TestGenerateReturnsRequestedQuestions(t *testing.T) {
	model := &fakeModel{replies: []reply{{text: "  " + quizJSON(t, 3) + "\n"}}}
	g := NewGenerator(model, nil)

	quiz, err := g.Generate(context.Background(), "Photosynthesis converts light.", 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(quiz) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(quiz))
	}
	for i, q := range quiz {
		if !q.HasOption(q.Answer) {
			t.Fatalf("question %d answer not in options", i)
		}
	}

	if len(model.requests) != 1 {
		t.Fatalf("expected a single model call for short text, got %d", len(model.requests))
	}
	req := model.requests[0]
	for _, want := range []string{"Generate 3 multiple-choice questions", `"answer": "Option A"`, "does not include any additional text", "Text: Photosynthesis converts light."} {
		if !strings.Contains(req.Prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if req.MaxTokens != 1500 || req.Temperature != 0.7 || !req.JSON {
		t.Fatalf("unexpected request settings %+v", req)
	}
}

// TestGenerateSummarizesLongText verifies long text is summarized before the quiz prompt is built.
func TestGenerateSummarizesLongText(t *testing.T) {
	model := &fakeModel{replies: []reply{{text: "SUMMARY"}, {text: quizJSON(t, 2)}}}
	g := NewGenerator(model, NewSummarizer(model, 10))

	if _, err := g.Generate(context.Background(), strings.Repeat("w", 11), 2); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(model.requests) != 2 {
		t.Fatalf("expected summary and quiz calls, got %d", len(model.requests))
	}
	if !strings.HasPrefix(model.requests[0].Prompt, "Summarize the following text:") {
		t.Fatalf("first call was not the summary")
	}
	if !strings.Contains(model.requests[1].Prompt, "Text: SUMMARY") {
		t.Fatalf("quiz prompt does not use the summary")
	}
}

// TestGenerateFailuresWrapErrGeneration verifies every failure class maps to ErrGeneration and an empty quiz.
func TestGenerateFailuresWrapErrGeneration(t *testing.T) {
	valid := quizJSON(t, 1)
	cases := map[string]reply{
		"network":        {err: errors.New("dial tcp: connection refused")},
		"prose":          {text: "Here is your quiz: " + valid},
		"trailing prose": {text: valid + "\nHope this helps!"},
		"object":         {text: `{"questions": []}`},
		"empty array":    {text: `[]`},
		"three options":  {text: `[{"question":"q","options":["a","b","c"],"answer":"a"}]`},
		"answer missing": {text: `[{"question":"q","options":["a","b","c","d"],"answer":"e"}]`},
		"unknown key":    {text: `[{"question":"q","options":["a","b","c","d"],"answer":"a","topic":"t"}]`},
		"empty question": {text: `[{"question":" ","options":["a","b","c","d"],"answer":"a"}]`},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(&fakeModel{replies: []reply{r}}, nil)
			quiz, err := g.Generate(context.Background(), "text", 1)
			if !errors.Is(err, ErrGeneration) {
				t.Fatalf("expected ErrGeneration, got %v", err)
			}
			if len(quiz) != 0 {
				t.Fatalf("expected empty quiz, got %d questions", len(quiz))
			}
		})
	}
}

// TestGenerateRejectsQuestionCount verifies counts outside [1,10] never reach the model.
func TestGenerateRejectsQuestionCount(t *testing.T) {
	model := &fakeModel{}
	g := NewGenerator(model, nil)
	for _, n := range []int{0, 11, -1} {
		if _, err := g.Generate(context.Background(), "text", n); !errors.Is(err, ErrQuestionCount) {
			t.Fatalf("n=%d: expected ErrQuestionCount, got %v", n, err)
		}
	}
	if len(model.requests) != 0 {
		t.Fatalf("expected no model calls")
	}
}

// TestParseQuizAcceptsCodeFence verifies a single enclosing markdown fence is tolerated.
func TestParseQuizAcceptsCodeFence(t *testing.T) {
	raw := "```json\n" + `[{"question":"2+2?","options":["3","4","5","6"],"answer":"4"}]` + "\n```"
	quiz, err := ParseQuiz(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(quiz) != 1 || quiz[0].Answer != "4" || quiz[0].Prompt != "2+2?" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
}

// TestValidateRejectsDuplicateOptions verifies repeated options are a schema error.
func TestValidateRejectsDuplicateOptions(t *testing.T) {
	quiz := models.Quiz{{Prompt: "q", Options: []string{"a", "a", "b", "c"}, Answer: "a"}}
	if err := Validate(quiz); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

// TestParseQuizSchemaErrors verifies structural problems are reported as ErrSchema.
func TestParseQuizSchemaErrors(t *testing.T) {
	cases := map[string]string{
		"missing answer":    `[{"question":"q","options":["a","b","c","d"]}]`,
		"null options":      `[{"question":"q","options":null,"answer":"a"}]`,
		"repeated option":   `[{"question":"q","options":["a","b","c","c"],"answer":"a"}]`,
		"five options":      `[{"question":"q","options":["a","b","c","d","e"],"answer":"a"}]`,
		"placeholder value": `[{"question":"q","options":["a","b","c","Select an answer"],"answer":"a"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseQuiz(raw); !errors.Is(err, ErrSchema) {
				t.Fatalf("expected ErrSchema, got %v", err)
			}
		})
	}
}
