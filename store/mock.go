package store

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
)

// MockStore mocks the interfaces.RegistryStore interface for tests.
type MockStore struct {
	mock.Mock
}

// ResolveActiveTarget mocks the ResolveActiveTarget method.
func (m *MockStore) ResolveActiveTarget(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// ReadValue mocks the ReadValue method.
func (m *MockStore) ReadValue(ctx context.Context, target, name string) (interfaces.RawValue, error) {
	args := m.Called(ctx, target, name)
	return args.Get(0).(interfaces.RawValue), args.Error(1)
}

// WriteValue mocks the WriteValue method.
func (m *MockStore) WriteValue(ctx context.Context, target, name, encoded string) error {
	args := m.Called(ctx, target, name, encoded)
	return args.Error(0)
}
