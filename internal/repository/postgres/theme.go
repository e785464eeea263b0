package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/knoguchi/themefather/internal/repository"
)

// ThemeRepo implements repository.ThemeRepository
type ThemeRepo struct {
	db *DB
}

// NewThemeRepo creates a new theme repository
func NewThemeRepo(db *DB) *ThemeRepo {
	return &ThemeRepo{db: db}
}

// Save inserts a generated theme
func (r *ThemeRepo) Save(ctx context.Context, rec *repository.ThemeRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO themes (id, user_id, chat_id, platform, description, theme, partial, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		rec.ID, rec.UserID, rec.ChatID, rec.Platform, rec.Description,
		rec.Theme, rec.Partial, rec.DurationMS, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent themes
func (r *ThemeRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*repository.ThemeRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, user_id, chat_id, platform, description, theme, partial, duration_ms, created_at
		FROM themes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	defer rows.Close()

	var records []*repository.ThemeRecord
	for rows.Next() {
		var rec repository.ThemeRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.ChatID, &rec.Platform, &rec.Description,
			&rec.Theme, &rec.Partial, &rec.DurationMS, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate themes: %w", err)
	}

	return records, nil
}

var _ repository.ThemeRepository = (*ThemeRepo)(nil)
