package session

import (
	"database/sql"
	"encoding/gob"
	"fmt"
	"log"

	"pdfquiz/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/postgres"
	"github.com/google/uuid"
)

const (
	stateKey     = "quiz_state"
	sessionIDKey = "session_id"
)

// MaxEncodedLength bounds the encoded session values. A locked ten question quiz
// with its graded result is well over the 4096 byte securecookie default.
const MaxEncodedLength = 64 << 10

// Notice levels mirror the four kinds of user-facing messages.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Notice is a transient message shown once on the next page render.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func init() {
	// Values are gob encoded by the postgres and cookie stores.
	gob.Register(State{})
	gob.Register(Notice{})
}

// NewPostgresStore returns a session store backed by db with the encoded size
// limit raised to MaxEncodedLength.
func NewPostgresStore(db *sql.DB, keyPairs ...[]byte) (sessions.Store, error) {
	store, err := postgres.NewStore(db, keyPairs...)
	if err != nil {
		return nil, err
	}
	if !setMaxLength(store, MaxEncodedLength) {
		return nil, fmt.Errorf("session store %T has no length limit to configure", store)
	}
	return store, nil
}

// setMaxLength applies n to stores whose codecs enforce a length limit.
func setMaxLength(store any, n int) bool {
	limited, ok := store.(interface{ MaxLength(int) })
	if !ok {
		return false
	}
	limited.MaxLength(n)
	return true
}

// Load returns a private copy of the state stored in s, or an Idle state.
func Load(s sessions.Session) *State {
	switch v := s.Get(stateKey).(type) {
	case State:
		return v.Clone()
	case *State:
		return v.Clone()
	case nil:
	default:
		log.Printf("WARN: Discarding session value of unexpected type %T under %q", v, stateKey)
	}
	return &State{Answers: models.AnswerMap{}}
}

// Save writes st into s and persists the session.
func Save(s sessions.Session, st *State) error {
	s.Set(stateKey, *st.Clone())
	if err := s.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ID returns the session's stable identifier, assigning one on first use.
// The caller is responsible for saving the session.
func ID(s sessions.Session) uuid.UUID {
	if v, ok := s.Get(sessionIDKey).(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			return id
		}
	}
	id := uuid.New()
	s.Set(sessionIDKey, id.String())
	return id
}

// AddNotice queues a notice for the next render. The caller saves the session.
func AddNotice(s sessions.Session, level, message string) {
	s.AddFlash(Notice{Level: level, Message: message})
}

// Notices drains the queued notices. The caller saves the session.
func Notices(s sessions.Session) []Notice {
	var out []Notice
	for _, f := range s.Flashes() {
		if n, ok := f.(Notice); ok {
			out = append(out, n)
		}
	}
	return out
}
