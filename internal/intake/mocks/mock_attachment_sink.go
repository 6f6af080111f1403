package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
)

// MockAttachmentSink is a mock implementation of AttachmentSink
type MockAttachmentSink struct {
	mock.Mock
}

func (m *MockAttachmentSink) Put(recordID, filename string, content io.Reader) (string, error) {
	args := m.Called(recordID, filename, content)
	return args.String(0), args.Error(1)
}

func (m *MockAttachmentSink) Open(key string) (io.ReadCloser, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
