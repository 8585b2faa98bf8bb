package restart

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
)

// MockSignaler mocks the interfaces.RestartSignaler interface for tests.
type MockSignaler struct {
	mock.Mock
}

// RequestRestart mocks the RequestRestart method.
func (m *MockSignaler) RequestRestart(ctx context.Context, service string) (interfaces.RestartOutcome, error) {
	args := m.Called(ctx, service)
	return args.Get(0).(interfaces.RestartOutcome), args.Error(1)
}
