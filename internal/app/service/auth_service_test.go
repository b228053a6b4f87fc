package service

import (
	"context"
	"net/http"
	"testing"

	"codequest/internal/common"
	"codequest/internal/common/security"
	"codequest/internal/domain/model"
	"codequest/internal/testutil/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSignup_HashesPasswordAndIssuesToken(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewAuthService(users)
	ctx := context.Background()

	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Username == "alice" && u.Email == "alice@example.com" &&
			u.Role == model.RoleUser && security.CheckPasswordHash("hunter22!", u.HashedPassword)
	})).Return(nil).Once()

	resp, err := svc.Signup(ctx, SignupRequest{Username: " alice ", Email: "Alice@Example.com", Password: "hunter22!"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.HashedPassword)
	users.AssertExpectations(t)
}

func TestSignup_Validation(t *testing.T) {
	svc := NewAuthService(new(mocks.MockUserRepository))
	tests := []SignupRequest{
		{Username: "", Email: "a@b.co", Password: "longenough"},
		{Username: "a", Email: "not-an-email", Password: "longenough"},
		{Username: "a", Email: "a@b.co", Password: "short"},
	}
	for _, req := range tests {
		_, err := svc.Signup(context.Background(), req)
		assert.ErrorIs(t, err, common.ErrValidation)
	}
}

func TestSignup_DuplicateIsConflict(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewAuthService(users)
	users.On("Create", mock.Anything, mock.Anything).
		Return(common.E(common.ErrConflict, "Username or email already taken")).Once()

	_, err := svc.Signup(context.Background(), SignupRequest{Username: "alice", Email: "a@b.co", Password: "longenough"})
	assert.Equal(t, http.StatusConflict, common.HTTPStatusFromError(err))
	assert.Equal(t, "Username or email already taken", common.PublicMessage(err))
}

func TestLogin_FallsBackToUsername(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewAuthService(users)
	ctx := context.Background()
	hash, err := security.HashPassword("longenough")
	require.NoError(t, err)

	users.On("FindByEmail", ctx, "alice").Return(nil, common.ErrNotFound).Once()
	users.On("FindByUsername", ctx, "alice").
		Return(&model.User{ID: "u1", Username: "alice", Role: model.RoleUser, HashedPassword: hash}, nil).Once()

	resp, err := svc.Login(ctx, LoginRequest{LoginField: "alice", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Empty(t, resp.User.HashedPassword)
}

func TestLogin_WrongPasswordIsUnauthorized(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewAuthService(users)
	hash, err := security.HashPassword("longenough")
	require.NoError(t, err)

	users.On("FindByEmail", mock.Anything, "a@b.co").Return(&model.User{ID: "u1", HashedPassword: hash}, nil).Once()

	_, err = svc.Login(context.Background(), LoginRequest{LoginField: "a@b.co", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, common.HTTPStatusFromError(err))
}

func TestLogin_UnknownUserIsUnauthorized(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewAuthService(users)

	users.On("FindByEmail", mock.Anything, "ghost").Return(nil, common.ErrNotFound).Once()
	users.On("FindByUsername", mock.Anything, "ghost").Return(nil, common.ErrNotFound).Once()

	_, err := svc.Login(context.Background(), LoginRequest{LoginField: "ghost", Password: "whatever1"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
