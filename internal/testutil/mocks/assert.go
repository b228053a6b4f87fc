package mocks

import (
	"codequest/internal/domain/repository"
	"codequest/internal/leetcode"
	"codequest/internal/platform/cache"
	"codequest/internal/platform/queue"
)

var (
	_ repository.BattleRepository       = (*MockBattleRepository)(nil)
	_ repository.UserRepository         = (*MockUserRepository)(nil)
	_ repository.TeamRepository         = (*MockTeamRepository)(nil)
	_ repository.FollowRepository       = (*MockFollowRepository)(nil)
	_ repository.NotificationRepository = (*MockNotificationRepository)(nil)
	_ repository.TrackRepository        = (*MockTrackRepository)(nil)
	_ repository.ProgressRepository     = (*MockProgressRepository)(nil)
	_ repository.StatsRepository        = (*MockStatsRepository)(nil)
	_ leetcode.ClientInterface          = (*MockLeetCodeClient)(nil)
	_ queue.JobQueue                    = (*MockJobQueue)(nil)
	_ queue.Locker                      = (*MockLocker)(nil)
	_ cache.Cache                       = (*MemoryCache)(nil)
)
