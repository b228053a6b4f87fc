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

// LeetCodeCounts are the solved totals reported by the external stats API.
type LeetCodeCounts struct {
	Easy   int
	Medium int
	Hard   int
	Total  int
}

type StatsRepository interface {
	Get(ctx context.Context, userID string) (*model.UserStats, error)
	// UpdateStreaks stores freshly computed streaks; longest never decreases.
	UpdateStreaks(ctx context.Context, userID string, current, longest, weekly int, lastSolvedOn *time.Time) error
	UpdateLeetCodeStats(ctx context.Context, userID string, counts LeetCodeCounts, syncedAt time.Time) error
	// Leaderboard ranks users by points. A non-nil userIDs restricts the ranking to those users.
	Leaderboard(ctx context.Context, limit int, userIDs []string) ([]model.LeaderboardEntry, error)
	TeamLeaderboard(ctx context.Context, limit int) ([]model.TeamLeaderboardEntry, error)
}

type pgStatsRepository struct {
	db *sql.DB
}

func NewPgStatsRepository(db *sql.DB) StatsRepository {
	return &pgStatsRepository{db: db}
}

func (r *pgStatsRepository) Get(ctx context.Context, userID string) (*model.UserStats, error) {
	s := &model.UserStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, total_points, problems_solved, current_streak, longest_streak, weekly_streak,
		        last_solved_on, leetcode_easy, leetcode_medium, leetcode_hard, leetcode_total,
		        leetcode_synced_at, updated_at
		 FROM user_stats WHERE user_id = $1`, userID,
	).Scan(&s.UserID, &s.TotalPoints, &s.ProblemsSolved, &s.CurrentStreak, &s.LongestStreak, &s.WeeklyStreak,
		&s.LastSolvedOn, &s.LeetCodeEasy, &s.LeetCodeMedium, &s.LeetCodeHard, &s.LeetCodeTotal,
		&s.LeetCodeSyncedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgStatsRepository.Get: %w", err)
	}
	return s, nil
}

func (r *pgStatsRepository) UpdateStreaks(ctx context.Context, userID string, current, longest, weekly int, lastSolvedOn *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_stats
		 SET current_streak = $1, longest_streak = GREATEST(longest_streak, $2), weekly_streak = $3,
		     last_solved_on = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = $5`,
		current, longest, weekly, lastSolvedOn, userID)
	if err != nil {
		return fmt.Errorf("pgStatsRepository.UpdateStreaks: %w", err)
	}
	return nil
}

func (r *pgStatsRepository) UpdateLeetCodeStats(ctx context.Context, userID string, c LeetCodeCounts, syncedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_stats
		 SET leetcode_easy = $1, leetcode_medium = $2, leetcode_hard = $3, leetcode_total = $4,
		     leetcode_synced_at = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = $6`,
		c.Easy, c.Medium, c.Hard, c.Total, syncedAt, userID)
	if err != nil {
		return fmt.Errorf("pgStatsRepository.UpdateLeetCodeStats: %w", err)
	}
	return nil
}

func (r *pgStatsRepository) Leaderboard(ctx context.Context, limit int, userIDs []string) ([]model.LeaderboardEntry, error) {
	query := sqlBuilder.
		Select("u.id", "u.username", "s.total_points", "s.problems_solved", "s.current_streak", "s.last_solved_on").
		From("user_stats s").
		Join("users u ON u.id = s.user_id").
		OrderBy("s.total_points DESC", "s.problems_solved DESC", "u.username ASC")
	if userIDs != nil {
		query = query.Where(squirrel.Eq{"u.id": userIDs})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.Leaderboard build: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.Leaderboard query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		e := model.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.UserID, &e.Username, &e.TotalPoints, &e.ProblemsSolved, &e.CurrentStreak, &e.LastSolvedOn); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.Leaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatsRepository.Leaderboard rows.Err: %w", err)
	}
	return entries, nil
}

func (r *pgStatsRepository) TeamLeaderboard(ctx context.Context, limit int) ([]model.TeamLeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, COUNT(tm.user_id), COALESCE(SUM(s.total_points), 0) AS points
		 FROM teams t
		 LEFT JOIN team_members tm ON tm.team_id = t.id
		 LEFT JOIN user_stats s ON s.user_id = tm.user_id
		 GROUP BY t.id
		 ORDER BY points DESC, t.name ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.TeamLeaderboard query: %w", err)
	}
	defer rows.Close()

	entries := []model.TeamLeaderboardEntry{}
	for rows.Next() {
		e := model.TeamLeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.TeamID, &e.Name, &e.MemberCount, &e.TotalPoints); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.TeamLeaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatsRepository.TeamLeaderboard rows.Err: %w", err)
	}
	return entries, nil
}
