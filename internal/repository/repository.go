// Package repository defines the theme archive model and its data access interface.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ThemeRecord is a generated theme kept for later reference.
type ThemeRecord struct {
	ID          uuid.UUID
	UserID      int64
	ChatID      int64
	Platform    string
	Description string
	Theme       string
	Partial     bool
	DurationMS  int64
	CreatedAt   time.Time
}

// ThemeRepository stores generated themes.
type ThemeRepository interface {
	// Save inserts a record. A zero CreatedAt is set to the current time.
	Save(ctx context.Context, rec *ThemeRecord) error

	// ListByUser returns the user's most recent themes, newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*ThemeRecord, error)
}
