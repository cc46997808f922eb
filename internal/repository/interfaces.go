package repository

import (
	"context"
	"errors"

	"github.com/vytor/studycards/internal/models"
)

// ErrNotFound is returned when a card id or backup name does not exist.
var ErrNotFound = errors.New("not found")

// CardRepository handles card data access. List is ordered by creation time
// ascending; the store assigns ids, creation stamps and a zero wrong_count on insert.
type CardRepository interface {
	List(ctx context.Context) ([]models.Card, error)
	Insert(ctx context.Context, in models.CardInput) (models.Card, error)
	Update(ctx context.Context, id string, in models.CardInput) error
	Delete(ctx context.Context, id string) error
	DeleteByCategory(ctx context.Context, category string) (int64, error)
	// DeleteByIDs removes the given ids in bounded batches.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	UpdateWrongCount(ctx context.Context, id string, value int) error
	UpdateCategory(ctx context.Context, from, to string) (int64, error)
	// BulkInsert stores cards in bounded batches, one transaction per batch, and
	// returns how many were written before any failure.
	BulkInsert(ctx context.Context, cards []models.Card) (int, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
	Ping(ctx context.Context) error
}

// BackupStore is the bucket holding JSON backups of the card set.
type BackupStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	// List returns backup names, newest first.
	List(ctx context.Context) ([]string, error)
	Download(ctx context.Context, name string) ([]byte, error)
}
