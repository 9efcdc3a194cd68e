// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTaskScheduler is a mock implementation of protocol.TaskScheduler.
type MockTaskScheduler struct {
	mock.Mock
}

func (m *MockTaskScheduler) ScheduleCreateIndex(ctx context.Context, documentID string, indexTypes []string, taskContext map[string]int64) error {
	args := m.Called(ctx, documentID, indexTypes, taskContext)

	return args.Error(0)
}

func (m *MockTaskScheduler) ScheduleUpdateIndex(ctx context.Context, documentID string, indexTypes []string, taskContext map[string]int64) error {
	args := m.Called(ctx, documentID, indexTypes, taskContext)

	return args.Error(0)
}

func (m *MockTaskScheduler) ScheduleDeleteIndex(ctx context.Context, documentID string, indexTypes []string) error {
	args := m.Called(ctx, documentID, indexTypes)

	return args.Error(0)
}
