package db

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS quizzes (
    id          UUID PRIMARY KEY,
    session_id  UUID NOT NULL,
    file_name   TEXT NOT NULL,
    questions   JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS quizzes_session_id_idx ON quizzes (session_id);

CREATE TABLE IF NOT EXISTS uploads (
    id          UUID PRIMARY KEY,
    quiz_id     UUID NOT NULL REFERENCES quizzes (id) ON DELETE CASCADE,
    file_name   TEXT NOT NULL,
    file_size   BIGINT NOT NULL,
    url         TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quiz_results (
    id            UUID PRIMARY KEY,
    quiz_id       UUID NOT NULL REFERENCES quizzes (id) ON DELETE CASCADE,
    correct       INTEGER NOT NULL,
    total         INTEGER NOT NULL,
    unanswered    INTEGER NOT NULL,
    submitted_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS quiz_results_quiz_id_idx ON quiz_results (quiz_id);
`

// Migrate creates the history tables when they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
