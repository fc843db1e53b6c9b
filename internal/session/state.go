// Package session holds the per-browser quiz state machine.
//
//	Idle --Start--> Active --Select--> Active --Submit--> Locked --Start--> Active
//
// Submit is accepted once per quiz; selections are frozen once locked.
package session

import (
	"errors"

	"pdfquiz/internal/models"
	"pdfquiz/internal/scoring"

	"github.com/google/uuid"
)

// Status is the current state of the quiz session.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusActive Status = "active"
	StatusLocked Status = "locked"
)

var (
	ErrEmptyQuiz     = errors.New("no questions were generated")
	ErrNoQuiz        = errors.New("no quiz is active")
	ErrLocked        = errors.New("quiz has already been submitted")
	ErrQuestionIndex = errors.New("question index out of range")
	ErrUnknownOption = errors.New("option does not belong to the question")
)

// State is the persisted quiz context of one browser session.
type State struct {
	Quiz    models.Quiz
	Answers models.AnswerMap
	Locked  bool
	Result  *scoring.Result

	// QuizID links the active quiz to its history record, when one exists.
	QuizID   uuid.UUID
	FileName string
}

// Status derives the state machine position from the stored fields.
func (s *State) Status() Status {
	switch {
	case len(s.Quiz) == 0:
		return StatusIdle
	case s.Locked:
		return StatusLocked
	default:
		return StatusActive
	}
}

// Start replaces the current cycle with quiz. An empty quiz leaves the state untouched.
func (s *State) Start(quiz models.Quiz, quizID uuid.UUID, fileName string) error {
	if len(quiz) == 0 {
		return ErrEmptyQuiz
	}
	s.Quiz = quiz.Clone()
	s.Answers = models.AnswerMap{}
	s.Locked = false
	s.Result = nil
	s.QuizID = quizID
	s.FileName = fileName
	return nil
}

// Select records option as the answer to question i. The placeholder or an empty
// option clears the entry.
func (s *State) Select(i int, option string) error {
	switch s.Status() {
	case StatusIdle:
		return ErrNoQuiz
	case StatusLocked:
		return ErrLocked
	}
	if i < 0 || i >= len(s.Quiz) {
		return ErrQuestionIndex
	}
	if s.Answers == nil {
		s.Answers = models.AnswerMap{}
	}
	if option == "" || option == models.Placeholder {
		delete(s.Answers, i)
		return nil
	}
	if !s.Quiz[i].HasOption(option) {
		return ErrUnknownOption
	}
	s.Answers[i] = option
	return nil
}

// Submit locks the quiz and scores it. The first call returns the fresh result and
// true; later calls return the stored result and false without rescoring.
func (s *State) Submit() (scoring.Result, bool, error) {
	switch s.Status() {
	case StatusIdle:
		return scoring.Result{}, false, ErrNoQuiz
	case StatusLocked:
		if s.Result == nil {
			// Locked states always carry a result; rebuild it if a store dropped it.
			r := scoring.Score(s.Quiz, s.Answers)
			s.Result = &r
		}
		return *s.Result, false, nil
	}

	result := scoring.Score(s.Quiz, s.Answers)
	s.Locked = true
	s.Result = &result
	return result, true, nil
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	out := *s
	out.Quiz = s.Quiz.Clone()
	out.Answers = s.Answers.Clone()
	if s.Result != nil {
		r := *s.Result
		r.Items = append([]scoring.Item(nil), s.Result.Items...)
		out.Result = &r
	}
	return &out
}
