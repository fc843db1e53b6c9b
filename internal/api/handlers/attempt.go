package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"pdfquiz/internal/db"
	"pdfquiz/internal/models"
	"pdfquiz/internal/notify"
	"pdfquiz/internal/scoring"
	"pdfquiz/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// historyLimit caps the number of results returned by the history endpoint.
const historyLimit = 20

// ResponseQuestion is a question as exposed over the JSON API. Answer is only
// set once the quiz is locked.
type ResponseQuestion struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer,omitempty"`
}

// ResponseQuiz is the session quiz as exposed over the JSON API.
type ResponseQuiz struct {
	Status    session.Status     `json:"status"`
	FileName  string             `json:"file_name,omitempty"`
	Questions []ResponseQuestion `json:"questions"`
	Answers   models.AnswerMap   `json:"answers"`
	Locked    bool               `json:"locked"`
	Result    *scoring.Result    `json:"result,omitempty"`
}

func newQuizResponse(st *session.State) ResponseQuiz {
	resp := ResponseQuiz{
		Status:    st.Status(),
		FileName:  st.FileName,
		Questions: make([]ResponseQuestion, 0, len(st.Quiz)),
		Answers:   st.Answers.Clone(),
		Locked:    st.Locked,
	}
	for i, q := range st.Quiz {
		rq := ResponseQuestion{
			Index:    i,
			Question: q.Prompt,
			Options:  append([]string(nil), q.Options...),
		}
		if st.Locked {
			rq.Answer = q.Answer
		}
		resp.Questions = append(resp.Questions, rq)
	}
	if st.Locked && st.Result != nil {
		r := *st.Result
		resp.Result = &r
	}
	return resp
}

// SelectAnswerRequest is the body of an answer update.
type SelectAnswerRequest struct {
	Option string `json:"option"`
}

// selectFailure maps a selection error to a response.
func selectFailure(err error) *failure {
	f := &failure{action: "Select Answer", message: err.Error(), err: err}
	switch {
	case errors.Is(err, session.ErrNoQuiz):
		f.status = http.StatusNotFound
	case errors.Is(err, session.ErrLocked):
		f.status = http.StatusConflict
	default:
		f.status = http.StatusBadRequest
	}
	return f
}

// submit locks the session quiz and records the result the first time.
func (h *Handler) submit(c *gin.Context, st *session.State) (scoring.Result, bool, error) {
	result, fresh, err := st.Submit()
	if err != nil || !fresh {
		return result, fresh, err
	}

	log.Printf("INFO: Quiz %s submitted: %d/%d correct, %d unanswered", st.FileName, result.Correct, result.Total, result.Unanswered)
	if h.History != nil && st.QuizID != uuid.Nil {
		if err := h.History.SaveResult(c.Request.Context(), st.QuizID, result.Correct, result.Total, result.Unanswered); err != nil {
			log.Printf("WARN: Failed to record result for quiz %s: %v", st.QuizID, err)
		}
	}
	h.notify(notify.QuizSubmittedEmbed(st.FileName, result.Correct, result.Total, result.Unanswered))
	return result, true, nil
}

// HandleSubmit applies the form selections and submits the quiz.
func (h *Handler) HandleSubmit(c *gin.Context) {
	s := sessions.Default(c)
	sessionID := session.ID(s)
	st := session.Load(s)

	if st.Status() == session.StatusActive {
		for i := range st.Quiz {
			option, ok := c.GetPostForm(fmt.Sprintf("q%d", i))
			if !ok {
				continue
			}
			if err := st.Select(i, option); err != nil {
				log.Printf("WARN: Ignoring selection %q for question %d: %v (Session: %s)", option, i+1, err, sessionID)
			}
		}
	}

	_, fresh, err := h.submit(c, st)
	switch {
	case errors.Is(err, session.ErrNoQuiz):
		session.AddNotice(s, session.LevelInfo, "Please upload a PDF file and click 'Generate Quiz' to get started.")
		h.redirectHome(c, s)
		return
	case err != nil:
		h.handleErrorAndFlash(c, s, sessionID, &failure{
			status:  http.StatusInternalServerError,
			action:  "Submit Quiz",
			message: "The quiz could not be submitted.",
			err:     err,
		})
		return
	}
	if !fresh {
		session.AddNotice(s, session.LevelInfo, "This quiz has already been submitted. Generate a new quiz to try again.")
	}

	if err := session.Save(s, st); err != nil {
		h.handleErrorAndFlash(c, s, sessionID, &failure{
			status:  http.StatusInternalServerError,
			action:  "Save Session",
			message: "The quiz could not be submitted.",
			err:     err,
		})
		return
	}
	h.redirectHome(c, s)
}

// HandleGetQuiz returns the session quiz.
func (h *Handler) HandleGetQuiz(c *gin.Context) {
	st := session.Load(sessions.Default(c))
	c.JSON(http.StatusOK, newQuizResponse(st))
}

// HandleSelectAnswer records the option chosen for one question.
func (h *Handler) HandleSelectAnswer(c *gin.Context) {
	s := sessions.Default(c)
	sessionID := session.ID(s)

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.handleErrorAndNotify(c, sessionID, &failure{
			status:  http.StatusBadRequest,
			action:  "Parse Question Index",
			message: "Question index must be a number.",
			err:     err,
		})
		return
	}

	var req SelectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, sessionID, &failure{
			status:  http.StatusBadRequest,
			action:  "Bind Answer Request",
			message: "Request body must be {\"option\": \"...\"}.",
			err:     err,
		})
		return
	}

	st := session.Load(s)
	if err := st.Select(index, req.Option); err != nil {
		h.handleErrorAndNotify(c, sessionID, selectFailure(err))
		return
	}
	if err := session.Save(s, st); err != nil {
		h.handleErrorAndNotify(c, sessionID, &failure{
			status:  http.StatusInternalServerError,
			action:  "Save Session",
			message: "The answer could not be saved.",
			err:     err,
		})
		return
	}
	c.JSON(http.StatusOK, newQuizResponse(st))
}

// HandleSubmitQuiz locks the quiz and returns its result.
func (h *Handler) HandleSubmitQuiz(c *gin.Context) {
	s := sessions.Default(c)
	sessionID := session.ID(s)
	st := session.Load(s)

	result, fresh, err := h.submit(c, st)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrNoQuiz) {
			status = http.StatusNotFound
		}
		h.handleErrorAndNotify(c, sessionID, &failure{status: status, action: "Submit Quiz", message: err.Error(), err: err})
		return
	}
	if err := session.Save(s, st); err != nil {
		h.handleErrorAndNotify(c, sessionID, &failure{
			status:  http.StatusInternalServerError,
			action:  "Save Session",
			message: "The quiz could not be submitted.",
			err:     err,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":           result,
		"first_submission": fresh,
	})
}

// HandleListHistory lists recent results recorded for the session.
func (h *Handler) HandleListHistory(c *gin.Context) {
	s := sessions.Default(c)
	sessionID := session.ID(s)

	if h.History == nil {
		h.handleErrorAndNotify(c, sessionID, &failure{
			status:  http.StatusServiceUnavailable,
			action:  "List History",
			message: "History is not available without a database.",
			err:     errors.New("no history store configured"),
		})
		return
	}

	items, err := h.History.RecentResults(c.Request.Context(), sessionID, historyLimit)
	if err != nil {
		h.handleErrorAndNotify(c, sessionID, &failure{
			status:  http.StatusInternalServerError,
			action:  "List History",
			message: "History could not be loaded.",
			err:     err,
		})
		return
	}
	if err := s.Save(); err != nil {
		log.Printf("ERROR: Failed to save session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

// HandleGetHistoryQuiz returns a submitted quiz of the session with its answer key.
func (h *Handler) HandleGetHistoryQuiz(c *gin.Context) {
	s := sessions.Default(c)
	sessionID := session.ID(s)

	if h.History == nil {
		h.handleErrorAndNotify(c, sessionID, &failure{
			status:  http.StatusServiceUnavailable,
			action:  "Get History Quiz",
			message: "History is not available without a database.",
			err:     errors.New("no history store configured"),
		})
		return
	}

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.handleErrorAndNotify(c, sessionID, &failure{
			status:  http.StatusBadRequest,
			action:  "Parse Quiz ID",
			message: "Quiz id must be a UUID.",
			err:     err,
		})
		return
	}

	rec, err := h.History.SubmittedQuiz(c.Request.Context(), sessionID, quizID)
	if err != nil {
		f := &failure{
			status:  http.StatusInternalServerError,
			action:  "Get History Quiz",
			message: "The quiz could not be loaded.",
			err:     err,
		}
		if errors.Is(err, db.ErrQuizNotFound) {
			f.status = http.StatusNotFound
			f.message = "Quiz not found."
		}
		h.handleErrorAndNotify(c, sessionID, f)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": rec})
}
