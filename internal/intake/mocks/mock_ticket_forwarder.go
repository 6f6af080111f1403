package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/revops/intake-service/internal/tracker"
)

// MockTicketForwarder is a mock implementation of TicketForwarder
type MockTicketForwarder struct {
	mock.Mock
}

func (m *MockTicketForwarder) CreateTicket(ctx context.Context, issue tracker.Issue) tracker.Result {
	args := m.Called(ctx, issue)
	return args.Get(0).(tracker.Result)
}

func (m *MockTicketForwarder) AttachFile(ctx context.Context, key, filename string, content io.Reader) error {
	args := m.Called(ctx, key, filename, content)
	return args.Error(0)
}
