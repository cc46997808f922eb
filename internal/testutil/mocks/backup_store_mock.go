package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockBackupStore is a mock implementation of repository.BackupStore
type MockBackupStore struct {
	mock.Mock
}

func (m *MockBackupStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	args := m.Called(ctx, name, data, contentType)
	return args.Error(0)
}

func (m *MockBackupStore) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBackupStore) Download(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockAuditor is a mock implementation of services.Auditor
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Audit(ctx context.Context, reason string) error {
	args := m.Called(ctx, reason)
	return args.Error(0)
}
