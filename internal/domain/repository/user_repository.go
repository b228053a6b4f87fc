package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codequest/internal/common"
	"codequest/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateLeetCodeUsername(ctx context.Context, id string, leetcodeUsername *string) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, hashed_password, role, leetcode_username, created_at, updated_at`

// Create inserts the user together with an empty stats row.
func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO users (id, username, email, hashed_password, role)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING created_at, updated_at`,
			user.ID, user.Username, user.Email, user.HashedPassword, user.Role,
		).Scan(&user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO user_stats (user_id) VALUES ($1)`, user.ID)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with given username or email already exists: %w",
				common.E(common.ErrConflict, "Username or email already taken"))
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) findOne(ctx context.Context, where string, arg any, op string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = $1`, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.Role,
		&user.LeetCodeUsername, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email, "FindByEmail")
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username", username, "FindByUsername")
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id", id, "FindByID")
}

func (r *pgUserRepository) UpdateLeetCodeUsername(ctx context.Context, id string, leetcodeUsername *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET leetcode_username = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		leetcodeUsername, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateLeetCodeUsername: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}
