package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pdfquiz/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrQuizNotFound is returned when a quiz id has no stored record.
var ErrQuizNotFound = errors.New("quiz not found")

type CreateQuizParams struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	FileName  string
	Questions models.Quiz
}

const createQuiz = `
INSERT INTO quizzes (id, session_id, file_name, questions)
VALUES ($1, $2, $3, $4)
RETURNING id, session_id, file_name, questions, created_at`

func (q *Queries) CreateQuiz(ctx context.Context, arg CreateQuizParams) (models.QuizRecord, error) {
	questions, err := json.Marshal(arg.Questions)
	if err != nil {
		return models.QuizRecord{}, fmt.Errorf("failed to encode questions: %w", err)
	}
	return scanQuiz(q.db.QueryRow(ctx, createQuiz, arg.ID, arg.SessionID, arg.FileName, questions))
}

const getQuiz = `
SELECT id, session_id, file_name, questions, created_at
FROM quizzes
WHERE id = $1`

func (q *Queries) GetQuiz(ctx context.Context, id uuid.UUID) (models.QuizRecord, error) {
	rec, err := scanQuiz(q.db.QueryRow(ctx, getQuiz, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.QuizRecord{}, ErrQuizNotFound
	}
	return rec, err
}

func scanQuiz(row pgx.Row) (models.QuizRecord, error) {
	var (
		rec       models.QuizRecord
		questions []byte
	)
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.FileName, &questions, &rec.CreatedAt); err != nil {
		return models.QuizRecord{}, err
	}
	if err := json.Unmarshal(questions, &rec.Questions); err != nil {
		return models.QuizRecord{}, fmt.Errorf("failed to decode questions: %w", err)
	}
	return rec, nil
}

type CreateUploadParams struct {
	ID       uuid.UUID
	QuizID   uuid.UUID
	FileName string
	FileSize int64
	URL      string
}

const createUpload = `
INSERT INTO uploads (id, quiz_id, file_name, file_size, url)
VALUES ($1, $2, $3, $4, $5)`

func (q *Queries) CreateUpload(ctx context.Context, arg CreateUploadParams) error {
	_, err := q.db.Exec(ctx, createUpload, arg.ID, arg.QuizID, arg.FileName, arg.FileSize, arg.URL)
	return err
}

type CreateResultParams struct {
	ID         uuid.UUID
	QuizID     uuid.UUID
	Correct    int
	Total      int
	Unanswered int
}

// A quiz is scored once; a second insert for the same quiz is ignored.
const createResult = `
INSERT INTO quiz_results (id, quiz_id, correct, total, unanswered)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (quiz_id) DO NOTHING`

func (q *Queries) CreateResult(ctx context.Context, arg CreateResultParams) error {
	_, err := q.db.Exec(ctx, createResult, arg.ID, arg.QuizID, arg.Correct, arg.Total, arg.Unanswered)
	return err
}

const resultExists = `
SELECT EXISTS (SELECT 1 FROM quiz_results WHERE quiz_id = $1)`

func (q *Queries) ResultExists(ctx context.Context, quizID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, resultExists, quizID).Scan(&exists)
	return exists, err
}

const listResultsBySession = `
SELECT r.id, r.quiz_id, q.file_name, r.correct, r.total, r.unanswered, r.submitted_at
FROM quiz_results r
JOIN quizzes q ON q.id = r.quiz_id
WHERE q.session_id = $1
ORDER BY r.submitted_at DESC
LIMIT $2`

func (q *Queries) ListResultsBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ResultRecord, error) {
	rows, err := q.db.Query(ctx, listResultsBySession, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ResultRecord{}
	for rows.Next() {
		var r models.ResultRecord
		if err := rows.Scan(&r.ID, &r.QuizID, &r.FileName, &r.Correct, &r.Total, &r.Unanswered, &r.SubmittedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// SaveQuiz stores a generated quiz and its upload metadata in one transaction.
func (db *DB) SaveQuiz(ctx context.Context, sessionID uuid.UUID, quiz models.Quiz, upload models.Upload) (uuid.UUID, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	qtx := db.Queries.WithTx(tx)
	rec, err := qtx.CreateQuiz(ctx, CreateQuizParams{
		ID:        uuid.New(),
		SessionID: sessionID,
		FileName:  upload.FileName,
		Questions: quiz,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	uploadID := upload.ID
	if uploadID == uuid.Nil {
		uploadID = uuid.New()
	}
	if err := qtx.CreateUpload(ctx, CreateUploadParams{
		ID:       uploadID,
		QuizID:   rec.ID,
		FileName: upload.FileName,
		FileSize: upload.FileSize,
		URL:      upload.URL,
	}); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create upload: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rec.ID, nil
}

// SaveResult records the score of a submitted quiz.
func (db *DB) SaveResult(ctx context.Context, quizID uuid.UUID, correct, total, unanswered int) error {
	if err := db.Queries.CreateResult(ctx, CreateResultParams{
		ID:         uuid.New(),
		QuizID:     quizID,
		Correct:    correct,
		Total:      total,
		Unanswered: unanswered,
	}); err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}
	return nil
}

// SubmittedQuiz returns a quiz of the session that already has a result. Quizzes of
// other sessions and quizzes still being answered are reported as ErrQuizNotFound.
func (db *DB) SubmittedQuiz(ctx context.Context, sessionID, quizID uuid.UUID) (models.QuizRecord, error) {
	rec, err := db.Queries.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, ErrQuizNotFound) {
			return models.QuizRecord{}, err
		}
		return models.QuizRecord{}, fmt.Errorf("failed to get quiz: %w", err)
	}
	if rec.SessionID != sessionID {
		return models.QuizRecord{}, ErrQuizNotFound
	}
	submitted, err := db.Queries.ResultExists(ctx, quizID)
	if err != nil {
		return models.QuizRecord{}, fmt.Errorf("failed to check result: %w", err)
	}
	if !submitted {
		return models.QuizRecord{}, ErrQuizNotFound
	}
	return rec, nil
}

// RecentResults lists the latest results recorded for a session.
func (db *DB) RecentResults(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ResultRecord, error) {
	items, err := db.Queries.ListResultsBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return items, nil
}
