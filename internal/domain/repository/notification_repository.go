package repository

import (
	"context"
	"database/sql"
	"fmt"

	"codequest/internal/common"
	"codequest/internal/domain/model"

	"github.com/Masterminds/squirrel"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID string, filter model.NotificationFilter) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	// MarkRead and Delete only touch rows owned by userID; a row owned by someone else is ErrForbidden.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

type pgNotificationRepository struct {
	db *sql.DB
}

func NewPgNotificationRepository(db *sql.DB) NotificationRepository {
	return &pgNotificationRepository{db: db}
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO notifications (id, user_id, actor_id, type, entity_id, message)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING is_read, created_at`,
		n.ID, n.UserID, n.ActorID, n.Type, n.EntityID, n.Message,
	).Scan(&n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) List(ctx context.Context, userID string, filter model.NotificationFilter) ([]model.Notification, error) {
	query := sqlBuilder.
		Select("id", "user_id", "actor_id", "type", "entity_id", "message", "is_read", "created_at").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if filter.UnreadOnly {
		query = query.Where(squirrel.Eq{"is_read": false})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.List build: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.List query: %w", err)
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ActorID, &n.Type, &n.EntityID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgNotificationRepository.List scan: %w", err)
		}
		out = append(out, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.List rows.Err: %w", err)
	}
	return out, nil
}

func (r *pgNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgNotificationRepository.CountUnread: %w", err)
	}
	return n, nil
}

// classifyMiss tells a missing notification apart from one owned by another user.
func (r *pgNotificationRepository) classifyMiss(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("pgNotificationRepository.classifyMiss: %w", err)
	}
	if exists {
		return common.E(common.ErrForbidden, "Not your notification")
	}
	return common.E(common.ErrNotFound, "Notification not found")
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.MarkRead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

func (r *pgNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("pgNotificationRepository.MarkAllRead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgNotificationRepository.MarkAllRead rows: %w", err)
	}
	return n, nil
}

func (r *pgNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}
