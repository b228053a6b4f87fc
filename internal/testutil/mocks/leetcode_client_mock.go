package mocks

import (
	"context"

	"codequest/internal/leetcode"

	"github.com/stretchr/testify/mock"
)

// MockLeetCodeClient is a mock implementation of leetcode.ClientInterface
type MockLeetCodeClient struct {
	mock.Mock
}

func (m *MockLeetCodeClient) FetchSolvedStats(ctx context.Context, username string) (*leetcode.SolvedStats, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leetcode.SolvedStats), args.Error(1)
}
