package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codequest/internal/domain/model"
)

type ProgressRepository interface {
	// MarkSolved flips the solved flag and credits points to the user's stats in one
	// transaction. It reports false when the problem was already solved.
	MarkSolved(ctx context.Context, userID string, problemID int64, points int, at time.Time) (bool, error)
	// UnmarkSolved reverses MarkSolved. It reports false when the problem was not solved.
	UnmarkSolved(ctx context.Context, userID string, problemID int64, points int) (bool, error)
	SetRevision(ctx context.Context, userID string, problemID int64, revision bool) error
	ListForTrack(ctx context.Context, userID, trackID string) ([]model.ProblemProgress, error)
	ListSolveTimes(ctx context.Context, userID string) ([]time.Time, error)
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

func (r *pgProgressRepository) MarkSolved(ctx context.Context, userID string, problemID int64, points int, at time.Time) (bool, error) {
	changed := false
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO problem_progress (user_id, problem_id, solved, solved_at)
			 VALUES ($1, $2, TRUE, $3)
			 ON CONFLICT (user_id, problem_id)
			 DO UPDATE SET solved = TRUE, solved_at = EXCLUDED.solved_at
			 WHERE problem_progress.solved = FALSE
			 RETURNING user_id`,
			userID, problemID, at,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE user_stats
			 SET total_points = total_points + $1, problems_solved = problems_solved + 1, updated_at = CURRENT_TIMESTAMP
			 WHERE user_id = $2`, points, userID)
		if err != nil {
			return fmt.Errorf("credit stats: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("pgProgressRepository.MarkSolved: %w", err)
	}
	return changed, nil
}

func (r *pgProgressRepository) UnmarkSolved(ctx context.Context, userID string, problemID int64, points int) (bool, error) {
	changed := false
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE problem_progress SET solved = FALSE, solved_at = NULL
			 WHERE user_id = $1 AND problem_id = $2 AND solved = TRUE`, userID, problemID)
		if err != nil {
			return fmt.Errorf("clear progress: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE user_stats
			 SET total_points = GREATEST(total_points - $1, 0),
			     problems_solved = GREATEST(problems_solved - 1, 0),
			     updated_at = CURRENT_TIMESTAMP
			 WHERE user_id = $2`, points, userID)
		if err != nil {
			return fmt.Errorf("debit stats: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("pgProgressRepository.UnmarkSolved: %w", err)
	}
	return changed, nil
}

func (r *pgProgressRepository) SetRevision(ctx context.Context, userID string, problemID int64, revision bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO problem_progress (user_id, problem_id, revision)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, problem_id) DO UPDATE SET revision = EXCLUDED.revision`,
		userID, problemID, revision)
	if err != nil {
		return fmt.Errorf("pgProgressRepository.SetRevision: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) ListForTrack(ctx context.Context, userID, trackID string) ([]model.ProblemProgress, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT pp.user_id, pp.problem_id, pp.solved, pp.revision, pp.solved_at
		 FROM problem_progress pp
		 JOIN track_problems p ON p.id = pp.problem_id
		 WHERE pp.user_id = $1 AND p.track_id = $2`, userID, trackID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListForTrack query: %w", err)
	}
	defer rows.Close()

	out := []model.ProblemProgress{}
	for rows.Next() {
		var pp model.ProblemProgress
		if err := rows.Scan(&pp.UserID, &pp.ProblemID, &pp.Solved, &pp.Revision, &pp.SolvedAt); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.ListForTrack scan: %w", err)
		}
		out = append(out, pp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListForTrack rows.Err: %w", err)
	}
	return out, nil
}

func (r *pgProgressRepository) ListSolveTimes(ctx context.Context, userID string) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT solved_at FROM problem_progress
		 WHERE user_id = $1 AND solved = TRUE AND solved_at IS NOT NULL
		 ORDER BY solved_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListSolveTimes query: %w", err)
	}
	defer rows.Close()

	times := []time.Time{}
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.ListSolveTimes scan: %w", err)
		}
		times = append(times, at)
	}
	return times, rows.Err()
}
