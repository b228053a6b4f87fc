package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codequest/internal/common"
	"codequest/internal/domain/model"

	"github.com/Masterminds/squirrel"
)

type BattleRepository interface {
	// CreateWithCreator inserts the battle and its creator as the first participant atomically.
	CreateWithCreator(ctx context.Context, battle *model.Battle, creator *model.BattleParticipant) error
	FindByID(ctx context.Context, id string) (*model.Battle, error)
	List(ctx context.Context, status model.BattleStatus, limit int) ([]model.Battle, error)

	ListParticipants(ctx context.Context, battleID string) ([]model.BattleParticipant, error)
	FindParticipant(ctx context.Context, battleID, userID string) (*model.BattleParticipant, error)
	// AddParticipant joins a waiting battle, holding the battle row lock while counting seats.
	AddParticipant(ctx context.Context, p *model.BattleParticipant) error

	// StartIfWaiting flips waiting -> in_progress only for the creator and only with at
	// least minParticipants joined. Returns common.ErrNotFound when no row qualified.
	StartIfWaiting(ctx context.Context, battleID, creatorID string, minParticipants int, at time.Time) (*model.Battle, error)
	// CompleteIfExpired flips in_progress -> completed once the deadline has passed.
	CompleteIfExpired(ctx context.Context, battleID string, now time.Time) (bool, error)

	// RecordSubmission logs one attempt and, when solved, credits the participant in the
	// same transaction. Duplicate (battle, user, problem) attempts yield common.ErrAlreadySubmitted.
	RecordSubmission(ctx context.Context, sub *model.BattleSubmission, now time.Time) (*model.BattleParticipant, error)
	ListSubmissions(ctx context.Context, battleID string) ([]model.BattleSubmission, error)
}

type pgBattleRepository struct {
	db *sql.DB
}

func NewPgBattleRepository(db *sql.DB) BattleRepository {
	return &pgBattleRepository{db: db}
}

const battleColumns = `id, title, description, battle_type, problem_ids, max_participants,
	duration_minutes, created_by, status, started_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBattle(row rowScanner) (*model.Battle, error) {
	b := &model.Battle{}
	err := row.Scan(&b.ID, &b.Title, &b.Description, &b.BattleType, int64Array(&b.ProblemIDs),
		&b.MaxParticipants, &b.DurationMinutes, &b.CreatedBy, &b.Status, &b.StartedAt, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.ProblemIDs = nonNilInt64s(b.ProblemIDs)
	return b, nil
}

const participantColumns = `p.id, p.battle_id, p.user_id, COALESCE(u.username, ''), p.score, p.problems_solved, p.joined_at`

func scanParticipant(row rowScanner) (*model.BattleParticipant, error) {
	p := &model.BattleParticipant{}
	err := row.Scan(&p.ID, &p.BattleID, &p.UserID, &p.Username, &p.Score, int64Array(&p.ProblemsSolved), &p.JoinedAt)
	if err != nil {
		return nil, err
	}
	p.ProblemsSolved = nonNilInt64s(p.ProblemsSolved)
	return p, nil
}

func insertParticipant(ctx context.Context, q queryer, p *model.BattleParticipant) error {
	return q.QueryRowContext(ctx,
		`INSERT INTO battle_participants (id, battle_id, user_id, score, problems_solved)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING joined_at`,
		p.ID, p.BattleID, p.UserID, p.Score, nonNilInt64s(p.ProblemsSolved),
	).Scan(&p.JoinedAt)
}

func (r *pgBattleRepository) CreateWithCreator(ctx context.Context, b *model.Battle, creator *model.BattleParticipant) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO battles (id, title, description, battle_type, problem_ids, max_participants, duration_minutes, created_by, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING created_at`,
			b.ID, b.Title, b.Description, b.BattleType, b.ProblemIDs, b.MaxParticipants, b.DurationMinutes, b.CreatedBy, b.Status,
		).Scan(&b.CreatedAt)
		if err != nil {
			return err
		}
		return insertParticipant(ctx, tx, creator)
	})
	if err != nil {
		return fmt.Errorf("pgBattleRepository.CreateWithCreator: %w", err)
	}
	return nil
}

func (r *pgBattleRepository) FindByID(ctx context.Context, id string) (*model.Battle, error) {
	b, err := scanBattle(r.db.QueryRowContext(ctx, `SELECT `+battleColumns+` FROM battles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrBattleNotFound
		}
		return nil, fmt.Errorf("pgBattleRepository.FindByID: %w", err)
	}
	return b, nil
}

func (r *pgBattleRepository) List(ctx context.Context, status model.BattleStatus, limit int) ([]model.Battle, error) {
	query := sqlBuilder.Select(battleColumns).From("battles").OrderBy("created_at DESC")
	if status != "" {
		query = query.Where(squirrel.Eq{"status": status})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("pgBattleRepository.List build: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("pgBattleRepository.List query: %w", err)
	}
	defer rows.Close()

	battles := []model.Battle{}
	for rows.Next() {
		b, err := scanBattle(rows)
		if err != nil {
			return nil, fmt.Errorf("pgBattleRepository.List scan: %w", err)
		}
		battles = append(battles, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgBattleRepository.List rows.Err: %w", err)
	}
	return battles, nil
}

func (r *pgBattleRepository) ListParticipants(ctx context.Context, battleID string) ([]model.BattleParticipant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+participantColumns+`
		 FROM battle_participants p
		 LEFT JOIN users u ON u.id = p.user_id
		 WHERE p.battle_id = $1
		 ORDER BY p.score DESC, p.joined_at ASC`, battleID)
	if err != nil {
		return nil, fmt.Errorf("pgBattleRepository.ListParticipants query: %w", err)
	}
	defer rows.Close()

	participants := []model.BattleParticipant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("pgBattleRepository.ListParticipants scan: %w", err)
		}
		participants = append(participants, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgBattleRepository.ListParticipants rows.Err: %w", err)
	}
	return participants, nil
}

func (r *pgBattleRepository) FindParticipant(ctx context.Context, battleID, userID string) (*model.BattleParticipant, error) {
	p, err := scanParticipant(r.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+`
		 FROM battle_participants p
		 LEFT JOIN users u ON u.id = p.user_id
		 WHERE p.battle_id = $1 AND p.user_id = $2`, battleID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotParticipant
		}
		return nil, fmt.Errorf("pgBattleRepository.FindParticipant: %w", err)
	}
	return p, nil
}

func (r *pgBattleRepository) AddParticipant(ctx context.Context, p *model.BattleParticipant) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var status model.BattleStatus
		var maxParticipants int
		err := tx.QueryRowContext(ctx,
			`SELECT status, max_participants FROM battles WHERE id = $1 FOR UPDATE`, p.BattleID,
		).Scan(&status, &maxParticipants)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrBattleNotFound
			}
			return fmt.Errorf("pgBattleRepository.AddParticipant lock: %w", err)
		}
		if status != model.BattleStatusWaiting {
			return common.ErrBattleNotWaiting
		}

		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM battle_participants WHERE battle_id = $1`, p.BattleID,
		).Scan(&count); err != nil {
			return fmt.Errorf("pgBattleRepository.AddParticipant count: %w", err)
		}
		if count >= maxParticipants {
			return common.ErrBattleFull
		}

		if err := insertParticipant(ctx, tx, p); err != nil {
			if isUniqueViolation(err) {
				return common.ErrAlreadyJoined
			}
			return fmt.Errorf("pgBattleRepository.AddParticipant insert: %w", err)
		}
		return nil
	})
}

func (r *pgBattleRepository) StartIfWaiting(ctx context.Context, battleID, creatorID string, minParticipants int, at time.Time) (*model.Battle, error) {
	b, err := scanBattle(r.db.QueryRowContext(ctx,
		`UPDATE battles SET status = $1, started_at = $2
		 WHERE id = $3 AND created_by = $4 AND status = $5
		   AND (SELECT COUNT(*) FROM battle_participants WHERE battle_id = $3) >= $6
		 RETURNING `+battleColumns,
		model.BattleStatusInProgress, at, battleID, creatorID, model.BattleStatusWaiting, minParticipants))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBattleRepository.StartIfWaiting: %w", err)
	}
	return b, nil
}

func (r *pgBattleRepository) CompleteIfExpired(ctx context.Context, battleID string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE battles SET status = $1
		 WHERE id = $2 AND status = $3
		   AND started_at + make_interval(mins => duration_minutes) <= $4`,
		model.BattleStatusCompleted, battleID, model.BattleStatusInProgress, now)
	if err != nil {
		return false, fmt.Errorf("pgBattleRepository.CompleteIfExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgBattleRepository.CompleteIfExpired rows: %w", err)
	}
	return n > 0, nil
}

func (r *pgBattleRepository) RecordSubmission(ctx context.Context, sub *model.BattleSubmission, now time.Time) (*model.BattleParticipant, error) {
	var participant *model.BattleParticipant
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var status model.BattleStatus
		var startedAt *time.Time
		var duration int
		err := tx.QueryRowContext(ctx,
			`SELECT status, started_at, duration_minutes FROM battles WHERE id = $1 FOR SHARE`, sub.BattleID,
		).Scan(&status, &startedAt, &duration)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrBattleNotFound
			}
			return fmt.Errorf("lock battle: %w", err)
		}
		b := model.Battle{Status: status, StartedAt: startedAt, DurationMinutes: duration}
		if status != model.BattleStatusInProgress || b.Expired(now) {
			return common.ErrBattleNotInProgress
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO battle_submissions (id, battle_id, user_id, problem_id, solved, time_taken_seconds, score_gained)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (battle_id, user_id, problem_id) DO NOTHING
			 RETURNING submitted_at`,
			sub.ID, sub.BattleID, sub.UserID, sub.ProblemID, sub.Solved, sub.TimeTakenSeconds, sub.ScoreGained,
		).Scan(&sub.SubmittedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrAlreadySubmitted
			}
			return fmt.Errorf("insert submission: %w", err)
		}

		if sub.Solved {
			_, err = tx.ExecContext(ctx,
				`UPDATE battle_participants
				 SET score = score + $1, problems_solved = array_append(problems_solved, $2)
				 WHERE battle_id = $3 AND user_id = $4`,
				sub.ScoreGained, sub.ProblemID, sub.BattleID, sub.UserID)
			if err != nil {
				return fmt.Errorf("credit participant: %w", err)
			}
		}

		participant, err = scanParticipant(tx.QueryRowContext(ctx,
			`SELECT `+participantColumns+`
			 FROM battle_participants p
			 LEFT JOIN users u ON u.id = p.user_id
			 WHERE p.battle_id = $1 AND p.user_id = $2`, sub.BattleID, sub.UserID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrNotParticipant
			}
			return fmt.Errorf("reload participant: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *common.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("pgBattleRepository.RecordSubmission: %w", err)
	}
	return participant, nil
}

func (r *pgBattleRepository) ListSubmissions(ctx context.Context, battleID string) ([]model.BattleSubmission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, battle_id, user_id, problem_id, solved, time_taken_seconds, score_gained, submitted_at
		 FROM battle_submissions WHERE battle_id = $1 ORDER BY submitted_at ASC`, battleID)
	if err != nil {
		return nil, fmt.Errorf("pgBattleRepository.ListSubmissions query: %w", err)
	}
	defer rows.Close()

	subs := []model.BattleSubmission{}
	for rows.Next() {
		var s model.BattleSubmission
		if err := rows.Scan(&s.ID, &s.BattleID, &s.UserID, &s.ProblemID, &s.Solved, &s.TimeTakenSeconds, &s.ScoreGained, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgBattleRepository.ListSubmissions scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgBattleRepository.ListSubmissions rows.Err: %w", err)
	}
	return subs, nil
}
