package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"pdfquiz/internal/extract"
	"pdfquiz/internal/models"
	"pdfquiz/internal/notify"
	"pdfquiz/internal/quizgen"
	"pdfquiz/internal/session"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadBytes is the largest document accepted for generation.
const MaxUploadBytes = 1 << 20

// multipartSlack leaves room for the form fields around the file part.
const multipartSlack = 64 << 10

const pdfMIME = "application/pdf"

// upload is a validated document read from the request.
type upload struct {
	name string
	data []byte
	n    int
}

// readUpload validates the multipart request and reads the document. The size
// limit is enforced before anything is handed to the extractor.
func readUpload(c *gin.Context) (*upload, *failure) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+multipartSlack)
	if err := c.Request.ParseMultipartForm(MaxUploadBytes + multipartSlack); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || c.Request.ContentLength > MaxUploadBytes+multipartSlack {
			return nil, tooLargeFailure(err)
		}
		return nil, &failure{
			status:  http.StatusBadRequest,
			action:  "Parse Upload Form",
			message: "Please upload a PDF file.",
			err:     err,
		}
	}

	n, f := parseQuestionCount(c.PostForm("num_questions"))
	if f != nil {
		return nil, f
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, &failure{
			status:  http.StatusBadRequest,
			action:  "Read Upload",
			message: "Please upload a PDF file.",
			err:     err,
		}
	}
	if fileHeader.Size > MaxUploadBytes {
		return nil, tooLargeFailure(fmt.Errorf("file %q is %d bytes", fileHeader.Filename, fileHeader.Size))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, &failure{
			status:  http.StatusInternalServerError,
			action:  "Open Upload",
			message: "The uploaded file could not be read.",
			err:     err,
		}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return nil, &failure{
			status:  http.StatusInternalServerError,
			action:  "Read Upload",
			message: "The uploaded file could not be read.",
			err:     err,
		}
	}
	if len(data) > MaxUploadBytes {
		return nil, tooLargeFailure(fmt.Errorf("file %q exceeds %d bytes", fileHeader.Filename, MaxUploadBytes))
	}

	if mt := mimetype.Detect(data); !mt.Is(pdfMIME) {
		return nil, &failure{
			status:  http.StatusUnsupportedMediaType,
			action:  "Check Upload Type",
			message: "Only PDF files are supported.",
			err:     fmt.Errorf("file %q detected as %s", fileHeader.Filename, mt.String()),
		}
	}

	return &upload{name: fileHeader.Filename, data: data, n: n}, nil
}

func tooLargeFailure(err error) *failure {
	return &failure{
		status:  http.StatusRequestEntityTooLarge,
		action:  "Check Upload Size",
		message: fmt.Sprintf("The uploaded file is larger than %d MB.", MaxUploadBytes>>20),
		err:     err,
	}
}

// parseQuestionCount reads num_questions, defaulting when it is absent.
func parseQuestionCount(raw string) (int, *failure) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return quizgen.DefaultQuestions, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < quizgen.MinQuestions || n > quizgen.MaxQuestions {
		if err == nil {
			err = quizgen.ErrQuestionCount
		}
		return 0, &failure{
			status:  http.StatusBadRequest,
			action:  "Parse Question Count",
			message: fmt.Sprintf("Number of questions must be between %d and %d.", quizgen.MinQuestions, quizgen.MaxQuestions),
			err:     err,
		}
	}
	return n, nil
}

// generate runs one generation cycle and starts it on st. On failure st is untouched.
func (h *Handler) generate(c *gin.Context, st *session.State, sessionID uuid.UUID) *failure {
	startTime := time.Now()
	ctx := c.Request.Context()

	up, f := readUpload(c)
	if f != nil {
		return f
	}
	log.Printf("INFO: Processing %s (%d bytes, %d questions) for session %s", up.name, len(up.data), up.n, sessionID)

	text, err := h.Extractor.Extract(up.data)
	if err == nil {
		err = extract.Require(text)
	}
	if err != nil {
		msg := "The uploaded PDF could not be read."
		if errors.Is(err, extract.ErrNoText) {
			msg = "The uploaded PDF contains no extractable text."
		}
		return &failure{
			status:  http.StatusUnprocessableEntity,
			action:  "Extract PDF Text",
			message: msg,
			err:     err,
		}
	}

	quiz, err := h.Generator.Generate(ctx, text, up.n)
	if err != nil {
		if errors.Is(err, quizgen.ErrQuestionCount) {
			return &failure{status: http.StatusBadRequest, action: "Generate Quiz", message: err.Error(), err: err}
		}
		return &failure{
			status:  http.StatusBadGateway,
			action:  "Generate Quiz",
			message: fmt.Sprintf("Error generating questions: %v", err),
			err:     err,
		}
	}
	if len(quiz) == 0 {
		return &failure{
			status:  http.StatusBadGateway,
			action:  "Generate Quiz",
			message: "No questions were generated. Please try again.",
			err:     session.ErrEmptyQuiz,
		}
	}

	meta := models.Upload{ID: uuid.New(), FileName: up.name, FileSize: int64(len(up.data))}
	if h.Archive != nil {
		url, err := h.Archive.UploadFile(ctx, sessionID, meta.ID, up.name, bytes.NewReader(up.data))
		if err != nil {
			log.Printf("WARN: Failed to archive upload %s: %v", up.name, err)
		} else {
			meta.URL = url
		}
	}

	quizID := uuid.Nil
	if h.History != nil {
		id, err := h.History.SaveQuiz(ctx, sessionID, quiz, meta)
		if err != nil {
			log.Printf("WARN: Failed to record quiz history for session %s: %v", sessionID, err)
		} else {
			quizID = id
		}
	}

	if err := st.Start(quiz, quizID, up.name); err != nil {
		return &failure{
			status:  http.StatusBadGateway,
			action:  "Start Quiz",
			message: "No questions were generated. Please try again.",
			err:     err,
		}
	}

	log.Printf("INFO: Generated %d questions from %s for session %s in %s", len(quiz), up.name, sessionID, time.Since(startTime))
	h.notify(notify.QuizGeneratedEmbed(up.name, len(quiz), utf8.RuneCountInString(text)))
	return nil
}

// HandleGenerate handles the upload form and redirects back to the page.
func (h *Handler) HandleGenerate(c *gin.Context) {
	s := sessions.Default(c)
	sessionID := session.ID(s)
	st := session.Load(s)

	if f := h.generate(c, st, sessionID); f != nil {
		h.handleErrorAndFlash(c, s, sessionID, f)
		return
	}
	if err := session.Save(s, st); err != nil {
		h.handleErrorAndFlash(c, s, sessionID, &failure{
			status:  http.StatusInternalServerError,
			action:  "Save Session",
			message: "The quiz could not be saved. Please try again.",
			err:     err,
		})
		return
	}
	session.AddNotice(s, session.LevelSuccess, "Quiz generated!")
	h.redirectHome(c, s)
}

// HandleGenerateQuiz is the JSON variant of HandleGenerate.
func (h *Handler) HandleGenerateQuiz(c *gin.Context) {
	s := sessions.Default(c)
	sessionID := session.ID(s)
	st := session.Load(s)

	if f := h.generate(c, st, sessionID); f != nil {
		if err := s.Save(); err != nil {
			log.Printf("ERROR: Failed to save session: %v", err)
		}
		h.handleErrorAndNotify(c, sessionID, f)
		return
	}
	if err := session.Save(s, st); err != nil {
		h.handleErrorAndNotify(c, sessionID, &failure{
			status:  http.StatusInternalServerError,
			action:  "Save Session",
			message: "The quiz could not be saved. Please try again.",
			err:     err,
		})
		return
	}

	view := newQuizResponse(st)
	c.JSON(http.StatusOK, gin.H{
		"status":    view.Status,
		"questions": view.Questions,
		"total":     len(view.Questions),
	})
}
