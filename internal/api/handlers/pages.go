package handlers

import (
	"fmt"
	"log"
	"net/http"

	"pdfquiz/internal/models"
	"pdfquiz/internal/quizgen"
	"pdfquiz/internal/scoring"
	"pdfquiz/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type optionView struct {
	Value   string
	Checked bool
}

type questionView struct {
	Number  int
	Field   string
	Prompt  string
	Options []optionView
	Item    *scoring.Item
}

type pageView struct {
	Notices          []session.Notice
	Status           session.Status
	FileName         string
	Questions        []questionView
	Locked           bool
	Result           *scoring.Result
	Summary          string
	Warning          string
	MinQuestions     int
	MaxQuestions     int
	DefaultQuestions int
	MaxUploadMB      int
}

func newPageView(st *session.State, notices []session.Notice) pageView {
	view := pageView{
		Notices:          notices,
		Status:           st.Status(),
		FileName:         st.FileName,
		Locked:           st.Locked,
		MinQuestions:     quizgen.MinQuestions,
		MaxQuestions:     quizgen.MaxQuestions,
		DefaultQuestions: quizgen.DefaultQuestions,
		MaxUploadMB:      MaxUploadBytes >> 20,
	}
	if st.Locked && st.Result != nil {
		view.Result = st.Result
		view.Summary = st.Result.Summary()
		view.Warning = st.Result.UnansweredWarning()
	}

	for i, q := range st.Quiz {
		selected, answered := st.Answers[i]
		qv := questionView{
			Number: i + 1,
			Field:  fmt.Sprintf("q%d", i),
			Prompt: q.Prompt,
		}
		// The placeholder leads every group and is checked when nothing is selected.
		qv.Options = append(qv.Options, optionView{Value: models.Placeholder, Checked: !answered})
		for _, o := range q.Options {
			qv.Options = append(qv.Options, optionView{Value: o, Checked: answered && o == selected})
		}
		if view.Result != nil && i < len(view.Result.Items) {
			item := view.Result.Items[i]
			qv.Item = &item
		}
		view.Questions = append(view.Questions, qv)
	}

	if view.Status == session.StatusIdle && len(notices) == 0 {
		view.Notices = []session.Notice{{
			Level:   session.LevelInfo,
			Message: "Please upload a PDF file and click 'Generate Quiz' to get started.",
		}}
	}
	return view
}

// HandleIndex renders the page from the session state and drains pending notices.
func (h *Handler) HandleIndex(c *gin.Context) {
	s := sessions.Default(c)
	st := session.Load(s)
	notices := session.Notices(s)
	if len(notices) > 0 {
		if err := s.Save(); err != nil {
			log.Printf("ERROR: Failed to save session after reading notices: %v", err)
		}
	}
	c.HTML(http.StatusOK, "index.html", newPageView(st, notices))
}
