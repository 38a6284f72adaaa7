package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
)

const userColumns = `id, telegram_id, username, first_name, last_name, language_code, created_at`

type UserRepository struct {
	q querier
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ts := now()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO users (telegram_id, username, first_name, last_name, language_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.TelegramID, user.Username, user.FirstName, user.LastName, user.LanguageCode, ts,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	user.ID, user.CreatedAt = id, ts
	return nil
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := r.get(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = ?`, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET username = ?, first_name = ?, last_name = ?, language_code = ?
		WHERE id = ?`,
		user.Username, user.FirstName, user.LastName, user.LanguageCode, user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if !ok {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (r *UserRepository) get(ctx context.Context, query string, arg int64) (*model.User, error) {
	var user model.User
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.LanguageCode,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
