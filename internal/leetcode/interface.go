package leetcode

import "context"

// ClientInterface is the part of the stats API the sync worker depends on.
type ClientInterface interface {
	FetchSolvedStats(ctx context.Context, username string) (*SolvedStats, error)
}

var _ ClientInterface = (*Client)(nil)
