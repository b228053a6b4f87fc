package leetcode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"codequest/internal/leetcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSolvedStats_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alice", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"retrieved","totalSolved":42,"easySolved":20,"mediumSolved":17,"hardSolved":5}`))
	}))
	defer srv.Close()

	stats, err := leetcode.New(srv.URL+"/").FetchSolvedStats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalSolved)
	assert.Equal(t, 20, stats.EasySolved)
	assert.Equal(t, 17, stats.MediumSolved)
	assert.Equal(t, 5, stats.HardSolved)
}

func TestFetchSolvedStats_UnknownUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"user does not exist"}`))
	}))
	defer srv.Close()

	_, err := leetcode.New(srv.URL).FetchSolvedStats(context.Background(), "ghost")
	assert.ErrorIs(t, err, leetcode.ErrUserNotFound)
}

func TestFetchSolvedStats_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := leetcode.New(srv.URL).FetchSolvedStats(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
