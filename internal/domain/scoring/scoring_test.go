package scoring

import (
	"testing"
	"time"

	"codequest/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestScoreGained(t *testing.T) {
	tests := []struct {
		seconds int
		want    int
	}{
		{0, 150},
		{59, 150},
		{60, 149},
		{90, 149},
		{3000, 100},
		{2999, 101},
		{6000, 100},
		{-30, 150},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreGained(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestScoreGained_NeverBelowBase(t *testing.T) {
	prev := ScoreGained(0)
	for s := 0; s <= 10000; s += 37 {
		got := ScoreGained(s)
		assert.GreaterOrEqual(t, got, BattleBasePoints)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
}

func TestProblemPoints(t *testing.T) {
	assert.Equal(t, 10, ProblemPoints(model.DifficultyEasy, 0))
	assert.Equal(t, 20, ProblemPoints(model.DifficultyMedium, 0))
	assert.Equal(t, 30, ProblemPoints(model.DifficultyHard, 0))
	assert.Equal(t, 42, ProblemPoints(model.DifficultyHard, 42))
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestComputeStreaks_Empty(t *testing.T) {
	assert.Equal(t, Streaks{}, ComputeStreaks(nil, time.Now()))
}

func TestComputeStreaks_CurrentRun(t *testing.T) {
	// Wednesday 2026-10-14 .. Friday 2026-10-16, two solves on the 15th.
	solves := []time.Time{
		day(2026, 10, 14, 9),
		day(2026, 10, 15, 8),
		day(2026, 10, 15, 22),
		day(2026, 10, 16, 1),
	}

	s := ComputeStreaks(solves, day(2026, 10, 16, 20))
	assert.Equal(t, 3, s.Current)
	assert.Equal(t, 3, s.Longest)
	assert.Equal(t, 1, s.Weekly)

	// Still alive the following day.
	s = ComputeStreaks(solves, day(2026, 10, 17, 12))
	assert.Equal(t, 3, s.Current)

	// Broken two days later, longest survives.
	s = ComputeStreaks(solves, day(2026, 10, 18, 12))
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, 3, s.Longest)
}

func TestComputeStreaks_LongestInPast(t *testing.T) {
	solves := []time.Time{
		day(2026, 9, 1, 10), day(2026, 9, 2, 10), day(2026, 9, 3, 10), day(2026, 9, 4, 10),
		day(2026, 10, 19, 10),
	}
	s := ComputeStreaks(solves, day(2026, 10, 19, 12))
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 4, s.Longest)
}

func TestComputeStreaks_Weekly(t *testing.T) {
	// Mondays/Sundays across three consecutive ISO weeks, then checked the week after.
	solves := []time.Time{
		day(2026, 9, 28, 10),  // Mon, week of 28 Sep
		day(2026, 10, 11, 23), // Sun, week of 5 Oct
		day(2026, 10, 12, 0),  // Mon, week of 12 Oct
	}

	s := ComputeStreaks(solves, day(2026, 10, 14, 12))
	assert.Equal(t, 3, s.Weekly)

	// Next week with no solves yet: streak still alive.
	s = ComputeStreaks(solves, day(2026, 10, 21, 12))
	assert.Equal(t, 3, s.Weekly)

	// Two weeks later: gone.
	s = ComputeStreaks(solves, day(2026, 10, 28, 12))
	assert.Equal(t, 0, s.Weekly)
}

func TestActiveStreaks(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) // Monday
	day := func(y, m, d int) *time.Time {
		v := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	tests := []struct {
		name        string
		last        *time.Time
		wantCurrent int
		wantWeekly  int
	}{
		{"never solved", nil, 0, 0},
		{"solved today", day(2026, 10, 19), 5, 3},
		{"solved yesterday, previous week", day(2026, 10, 18), 5, 3},
		{"two days ago keeps weekly", day(2026, 10, 17), 0, 3},
		{"ten days ago", day(2026, 10, 9), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, weekly := ActiveStreaks(5, 3, tt.last, now)
			assert.Equal(t, tt.wantCurrent, current)
			assert.Equal(t, tt.wantWeekly, weekly)
		})
	}
}
