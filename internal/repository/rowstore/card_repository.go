package rowstore

import (
	"context"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/studycards/internal/logger"
	"github.com/vytor/studycards/internal/models"
	"github.com/vytor/studycards/internal/repository"
)

// DefaultBatchSize bounds the rows touched by one bulk statement.
const DefaultBatchSize = 200

var cardColumns = []string{"id", "category", "front", "back", "front_image", "back_image", "wrong_count", "created_at"}

type cardRepository struct {
	db        *sqlx.DB
	sb        squirrel.StatementBuilderType
	batchSize int

	clockMu   sync.Mutex
	now       func() time.Time
	lastStamp time.Time
}

// Option configures the card repository.
type Option func(*cardRepository)

// WithBatchSize sets the bulk batch size; values below 1 keep the default.
func WithBatchSize(n int) Option {
	return func(r *cardRepository) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithClock replaces the clock used for creation stamps.
func WithClock(now func() time.Time) Option {
	return func(r *cardRepository) {
		r.now = now
	}
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sqlx.DB, opts ...Option) repository.CardRepository {
	r := &cardRepository{
		db:        db,
		sb:        builderFor(db),
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// stamp returns a strictly increasing creation time so that listing by created_at
// reproduces insertion order even for cards written in the same instant.
func (r *cardRepository) stamp() time.Time {
	r.clockMu.Lock()
	defer r.clockMu.Unlock()
	t := r.now().UTC().Truncate(time.Microsecond)
	if !t.After(r.lastStamp) {
		t = r.lastStamp.Add(time.Microsecond)
	}
	r.lastStamp = t
	return t
}

func (r *cardRepository) List(ctx context.Context) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query, args, err := r.sb.Select(cardColumns...).From("cards").OrderBy("created_at ASC", "id ASC").ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	cards := []models.Card{}
	if err := sqlx.SelectContext(ctx, r.db, &cards, query, args...); err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	log.Debug("listed %d cards", len(cards))
	return cards, nil
}

func (r *cardRepository) Insert(ctx context.Context, in models.CardInput) (models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	card := models.Card{
		ID:         uuid.NewString(),
		Category:   in.Category,
		Front:      in.Front,
		Back:       in.Back,
		FrontImage: in.FrontImage,
		BackImage:  in.BackImage,
		WrongCount: 0,
		CreatedAt:  r.stamp(),
	}
	log.Debug("inserting card: id=%s, category=%s", card.ID, card.Category)

	query, args, err := r.sb.Insert("cards").Columns(cardColumns...).Values(cardValues(card)...).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return models.Card{}, err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert card: %v", err)
		return models.Card{}, err
	}
	return card, nil
}

func (r *cardRepository) Update(ctx context.Context, id string, in models.CardInput) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card: id=%s", id)

	return r.execAffectingOne(ctx, r.sb.Update("cards").
		Set("category", in.Category).
		Set("front", in.Front).
		Set("back", in.Back).
		Set("front_image", in.FrontImage).
		Set("back_image", in.BackImage).
		Where(squirrel.Eq{"id": id}))
}

func (r *cardRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: id=%s", id)

	return r.execAffectingOne(ctx, r.sb.Delete("cards").Where(squirrel.Eq{"id": id}))
}

func (r *cardRepository) UpdateWrongCount(ctx context.Context, id string, value int) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating wrong_count: id=%s, value=%d", id, value)

	return r.execAffectingOne(ctx, r.sb.Update("cards").Set("wrong_count", value).Where(squirrel.Eq{"id": id}))
}

func (r *cardRepository) DeleteByCategory(ctx context.Context, category string) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting cards in category: %s", category)

	return r.exec(ctx, r.sb.Delete("cards").Where(squirrel.Eq{"category": category}))
}

func (r *cardRepository) UpdateCategory(ctx context.Context, from, to string) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("moving cards from category %q to %q", from, to)

	return r.exec(ctx, r.sb.Update("cards").Set("category", to).Where(squirrel.Eq{"category": from}))
}

func (r *cardRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting %d cards in batches of %d", len(ids), r.batchSize)

	var total int64
	for _, batch := range chunk(ids, r.batchSize) {
		n, err := r.exec(ctx, r.sb.Delete("cards").Where(squirrel.Eq{"id": batch}))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *cardRepository) BulkInsert(ctx context.Context, cards []models.Card) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("bulk inserting %d cards in batches of %d", len(cards), r.batchSize)

	inserted := 0
	for _, batch := range chunk(cards, r.batchSize) {
		err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
			q := r.sb.Insert("cards").Columns(cardColumns...)
			for _, c := range batch {
				if c.ID == "" {
					c.ID = uuid.NewString()
				}
				if c.CreatedAt.IsZero() {
					c.CreatedAt = r.stamp()
				}
				q = q.Values(cardValues(c)...)
			}
			query, args, err := q.ToSql()
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, query, args...)
			return err
		})
		if err != nil {
			log.Error("bulk insert stopped after %d cards: %v", inserted, err)
			return inserted, err
		}
		inserted += len(batch)
	}
	log.Debug("bulk insert completed, %d cards inserted", inserted)
	return inserted, nil
}

func (r *cardRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query, args, err := r.sb.Select("category", "COUNT(*) AS count").
		From("cards").
		GroupBy("category").
		OrderBy("category ASC").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	counts := []models.CategoryCount{}
	if err := sqlx.SelectContext(ctx, r.db, &counts, query, args...); err != nil {
		log.Error("failed to count categories: %v", err)
		return nil, err
	}
	return counts, nil
}

func (r *cardRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *cardRepository) exec(ctx context.Context, b squirrel.Sqlizer) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query, args, err := b.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("statement failed: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *cardRepository) execAffectingOne(ctx context.Context, b squirrel.Sqlizer) error {
	n, err := r.exec(ctx, b)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func cardValues(c models.Card) []any {
	return []any{c.ID, c.Category, c.Front, c.Back, c.FrontImage, c.BackImage, c.WrongCount, c.CreatedAt}
}
