package repository

import (
	"context"
	"database/sql"
	"fmt"

	"codequest/internal/common"
	"codequest/internal/domain/model"
)

type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]model.UserSummary, error)
	ListFollowing(ctx context.Context, userID string) ([]model.UserSummary, error)
	Counts(ctx context.Context, userID string) (followers int, following int, err error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}

type pgFollowRepository struct {
	db *sql.DB
}

func NewPgFollowRepository(db *sql.DB) FollowRepository {
	return &pgFollowRepository{db: db}
}

func (r *pgFollowRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("pgFollowRepository.Follow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrAlreadyFollowing
	}
	return nil
}

func (r *pgFollowRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("pgFollowRepository.Unfollow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFollowing
	}
	return nil
}

func (r *pgFollowRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pgFollowRepository.IsFollowing: %w", err)
	}
	return exists, nil
}

func (r *pgFollowRepository) listUsers(ctx context.Context, query, userID, op string) ([]model.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgFollowRepository.%s query: %w", op, err)
	}
	defer rows.Close()

	users := []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.TotalPoints); err != nil {
			return nil, fmt.Errorf("pgFollowRepository.%s scan: %w", op, err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgFollowRepository.%s rows.Err: %w", op, err)
	}
	return users, nil
}

func (r *pgFollowRepository) ListFollowers(ctx context.Context, userID string) ([]model.UserSummary, error) {
	return r.listUsers(ctx,
		`SELECT u.id, u.username, COALESCE(us.total_points, 0)
		 FROM follows f
		 JOIN users u ON u.id = f.follower_id
		 LEFT JOIN user_stats us ON us.user_id = u.id
		 WHERE f.followee_id = $1
		 ORDER BY f.created_at DESC`, userID, "ListFollowers")
}

func (r *pgFollowRepository) ListFollowing(ctx context.Context, userID string) ([]model.UserSummary, error) {
	return r.listUsers(ctx,
		`SELECT u.id, u.username, COALESCE(us.total_points, 0)
		 FROM follows f
		 JOIN users u ON u.id = f.followee_id
		 LEFT JOIN user_stats us ON us.user_id = u.id
		 WHERE f.follower_id = $1
		 ORDER BY f.created_at DESC`, userID, "ListFollowing")
}

func (r *pgFollowRepository) Counts(ctx context.Context, userID string) (int, int, error) {
	var followers, following int
	err := r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)`, userID,
	).Scan(&followers, &following)
	if err != nil {
		return 0, 0, fmt.Errorf("pgFollowRepository.Counts: %w", err)
	}
	return followers, following, nil
}

func (r *pgFollowRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT followee_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgFollowRepository.FollowingIDs query: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgFollowRepository.FollowingIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
