package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codequest/internal/common"
	"codequest/internal/domain/model"
)

type TrackRepository interface {
	// Create inserts the track and its problems in one transaction, filling problem ids.
	Create(ctx context.Context, track *model.Track) error
	List(ctx context.Context) ([]model.Track, error)
	FindBySlug(ctx context.Context, slug string) (*model.Track, error)
	FindProblemByID(ctx context.Context, id int64) (*model.TrackProblem, error)
}

type pgTrackRepository struct {
	db *sql.DB
}

func NewPgTrackRepository(db *sql.DB) TrackRepository {
	return &pgTrackRepository{db: db}
}

func (r *pgTrackRepository) Create(ctx context.Context, t *model.Track) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO tracks (id, title, slug, description, created_by)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING created_at`,
			t.ID, t.Title, t.Slug, t.Description, t.CreatedBy,
		).Scan(&t.CreatedAt)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO track_problems (track_id, title, url, difficulty, points, position)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`)
		if err != nil {
			return fmt.Errorf("prepare problem insert: %w", err)
		}
		defer stmt.Close()

		for i := range t.Problems {
			p := &t.Problems[i]
			p.TrackID = t.ID
			p.Position = i + 1
			if err := stmt.QueryRowContext(ctx, p.TrackID, p.Title, p.URL, p.Difficulty, p.Points, p.Position).Scan(&p.ID); err != nil {
				return fmt.Errorf("insert problem %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return common.E(common.ErrConflict, "A track with this slug already exists")
		}
		return fmt.Errorf("pgTrackRepository.Create: %w", err)
	}
	t.ProblemCount = len(t.Problems)
	return nil
}

func (r *pgTrackRepository) List(ctx context.Context) ([]model.Track, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.title, t.slug, t.description, t.created_by, t.created_at, COUNT(p.id)
		 FROM tracks t
		 LEFT JOIN track_problems p ON p.track_id = t.id
		 GROUP BY t.id
		 ORDER BY t.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("pgTrackRepository.List query: %w", err)
	}
	defer rows.Close()

	tracks := []model.Track{}
	for rows.Next() {
		var t model.Track
		if err := rows.Scan(&t.ID, &t.Title, &t.Slug, &t.Description, &t.CreatedBy, &t.CreatedAt, &t.ProblemCount); err != nil {
			return nil, fmt.Errorf("pgTrackRepository.List scan: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTrackRepository.List rows.Err: %w", err)
	}
	return tracks, nil
}

func (r *pgTrackRepository) FindBySlug(ctx context.Context, slug string) (*model.Track, error) {
	t := &model.Track{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, slug, description, created_by, created_at FROM tracks WHERE slug = $1`, slug,
	).Scan(&t.ID, &t.Title, &t.Slug, &t.Description, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.E(common.ErrNotFound, "Track not found")
		}
		return nil, fmt.Errorf("pgTrackRepository.FindBySlug: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, track_id, title, url, difficulty, points, position
		 FROM track_problems WHERE track_id = $1 ORDER BY position ASC`, t.ID)
	if err != nil {
		return nil, fmt.Errorf("pgTrackRepository.FindBySlug problems: %w", err)
	}
	defer rows.Close()

	t.Problems = []model.TrackProblem{}
	for rows.Next() {
		var p model.TrackProblem
		if err := rows.Scan(&p.ID, &p.TrackID, &p.Title, &p.URL, &p.Difficulty, &p.Points, &p.Position); err != nil {
			return nil, fmt.Errorf("pgTrackRepository.FindBySlug scan: %w", err)
		}
		t.Problems = append(t.Problems, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTrackRepository.FindBySlug rows.Err: %w", err)
	}
	t.ProblemCount = len(t.Problems)
	return t, nil
}

func (r *pgTrackRepository) FindProblemByID(ctx context.Context, id int64) (*model.TrackProblem, error) {
	p := &model.TrackProblem{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, track_id, title, url, difficulty, points, position FROM track_problems WHERE id = $1`, id,
	).Scan(&p.ID, &p.TrackID, &p.Title, &p.URL, &p.Difficulty, &p.Points, &p.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.E(common.ErrNotFound, "Problem not found")
		}
		return nil, fmt.Errorf("pgTrackRepository.FindProblemByID: %w", err)
	}
	return p, nil
}
