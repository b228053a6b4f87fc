package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of queue.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Push(ctx context.Context, payload string) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockJobQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	args := m.Called(ctx, timeout)
	return args.String(0), args.Error(1)
}

func (m *MockJobQueue) Requeue(ctx context.Context, payload string) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockLocker is a mock implementation of queue.Locker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLocker) Release(ctx context.Context, key, token string) (bool, error) {
	args := m.Called(ctx, key, token)
	return args.Bool(0), args.Error(1)
}
