package service

import (
	"context"
	"errors"
	"testing"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/realtime"
	"codequest/internal/testutil/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotify_StoresAndPublishesToRecipient(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	broker := realtime.NewMemoryBroker(4)
	svc := NewNotificationService(repo, broker)
	ctx := context.Background()

	sub, err := broker.Subscribe(ctx, realtime.UserTopic("bob"))
	require.NoError(t, err)
	defer sub.Close()

	repo.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == "bob" && *n.ActorID == "alice" && *n.EntityID == "team-1" && n.Type == model.NotificationTeamInvite
	})).Return(nil).Once()

	svc.Notify(ctx, "bob", "alice", model.NotificationTeamInvite, "team-1", "alice invited you")

	ev := <-sub.Events()
	assert.Equal(t, realtime.EventNotification, ev.Type)
	assert.Contains(t, string(ev.Data), "alice invited you")
	repo.AssertExpectations(t)
}

func TestNotify_SkipsSelf(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	svc := NewNotificationService(repo, realtime.NewMemoryBroker(1))

	svc.Notify(context.Background(), "alice", "alice", model.NotificationFollow, "", "hi")

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotify_StoreFailureIsSwallowed(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	broker := realtime.NewMemoryBroker(1)
	svc := NewNotificationService(repo, broker)
	ctx := context.Background()

	sub, err := broker.Subscribe(ctx, realtime.UserTopic("bob"))
	require.NoError(t, err)
	defer sub.Close()

	repo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

	assert.NotPanics(t, func() {
		svc.Notify(ctx, "bob", "", model.NotificationFollow, "", "hi")
	})
	assert.Len(t, sub.Events(), 0)
}

func TestParseNotificationFilter(t *testing.T) {
	f, err := ParseNotificationFilter("", "")
	require.NoError(t, err)
	assert.Equal(t, model.NotificationFilter{Limit: defaultNotificationLimit}, f)

	f, err = ParseNotificationFilter("true", "5000")
	require.NoError(t, err)
	assert.True(t, f.UnreadOnly)
	assert.Equal(t, maxNotificationLimit, f.Limit)

	_, err = ParseNotificationFilter("maybe", "")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = ParseNotificationFilter("", "-1")
	assert.ErrorIs(t, err, common.ErrValidation)
}
