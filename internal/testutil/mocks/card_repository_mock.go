package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studycards/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) List(ctx context.Context) ([]models.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) Insert(ctx context.Context, in models.CardInput) (models.Card, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.Card), args.Error(1)
}

func (m *MockCardRepository) Update(ctx context.Context, id string, in models.CardInput) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

func (m *MockCardRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCardRepository) DeleteByCategory(ctx context.Context, category string) (int64, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) UpdateWrongCount(ctx context.Context, id string, value int) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

func (m *MockCardRepository) UpdateCategory(ctx context.Context, from, to string) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) BulkInsert(ctx context.Context, cards []models.Card) (int, error) {
	args := m.Called(ctx, cards)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategoryCount), args.Error(1)
}

func (m *MockCardRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
