package handlers

import (
	"context"
	"io"
	"log"
	"net/http"

	"pdfquiz/internal/models"
	"pdfquiz/internal/notify"
	"pdfquiz/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// QuizGenerator produces n questions from document text.
type QuizGenerator interface {
	Generate(ctx context.Context, text string, n int) (models.Quiz, error)
}

// HistoryStore persists generated quizzes and their results.
type HistoryStore interface {
	SaveQuiz(ctx context.Context, sessionID uuid.UUID, quiz models.Quiz, upload models.Upload) (uuid.UUID, error)
	SaveResult(ctx context.Context, quizID uuid.UUID, correct, total, unanswered int) error
	RecentResults(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ResultRecord, error)
	SubmittedQuiz(ctx context.Context, sessionID, quizID uuid.UUID) (models.QuizRecord, error)
}

// Archiver stores the uploaded document and returns where it can be fetched.
type Archiver interface {
	UploadFile(ctx context.Context, sessionID, uploadID uuid.UUID, filename string, content io.Reader) (string, error)
}

// Notifier receives operational events.
type Notifier interface {
	Notify(embed notify.Embed)
}

// Handler contains the HTTP handler dependencies. History, Archive and
// Notifier are optional and may be nil.
type Handler struct {
	Extractor TextExtractor
	Generator QuizGenerator
	History   HistoryStore
	Archive   Archiver
	Notifier  Notifier
}

// NewHandler creates a new Handler
func NewHandler(extractor TextExtractor, generator QuizGenerator) *Handler {
	return &Handler{
		Extractor: extractor,
		Generator: generator,
	}
}

// failure is a request error together with the message shown to the user.
type failure struct {
	status  int
	action  string
	message string
	err     error
}

// report logs a failure and notifies on server-side errors.
func (h *Handler) report(c *gin.Context, sessionID uuid.UUID, f *failure) {
	if f.status >= http.StatusInternalServerError && f.status != http.StatusServiceUnavailable {
		log.Printf("ERROR: %s: %v (Session: %s)", f.action, f.err, sessionID)
		h.notify(notify.ErrorEmbed(f.action, f.status, c.Request.URL.Path, f.err))
		return
	}
	log.Printf("WARN: %s: %v (Session: %s)", f.action, f.err, sessionID)
}

// handleErrorAndNotify reports a failure and aborts the request with a JSON error.
func (h *Handler) handleErrorAndNotify(c *gin.Context, sessionID uuid.UUID, f *failure) {
	h.report(c, sessionID, f)
	c.AbortWithStatusJSON(f.status, models.ErrorResponse{Error: f.message})
}

// handleErrorAndFlash reports a failure, queues it as a notice and redirects home.
func (h *Handler) handleErrorAndFlash(c *gin.Context, s sessions.Session, sessionID uuid.UUID, f *failure) {
	h.report(c, sessionID, f)
	session.AddNotice(s, session.LevelError, f.message)
	h.redirectHome(c, s)
}

// redirectHome saves the session and sends the browser back to the page.
func (h *Handler) redirectHome(c *gin.Context, s sessions.Session) {
	if err := s.Save(); err != nil {
		log.Printf("ERROR: Failed to save session: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) notify(embed notify.Embed) {
	if h.Notifier != nil {
		h.Notifier.Notify(embed)
	}
}

// HandleHealth reports that the server is up.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
