// Package scoring holds the point and streak arithmetic shared by battles,
// tracks and leaderboards.
package scoring

import (
	"sort"
	"time"

	"codequest/internal/domain/model"
)

const (
	BattleBasePoints    = 100
	BattleMaxTimeBonus  = 50
	defaultEasyPoints   = 10
	defaultMediumPoints = 20
	defaultHardPoints   = 30
)

// ScoreGained is the score for one accepted battle submission: a fixed base plus
// one bonus point for every full minute under fifty.
func ScoreGained(timeTakenSeconds int) int {
	if timeTakenSeconds < 0 {
		timeTakenSeconds = 0
	}
	bonus := BattleMaxTimeBonus - timeTakenSeconds/60
	if bonus < 0 {
		bonus = 0
	}
	return BattleBasePoints + bonus
}

// ProblemPoints returns the points a track problem is worth. An explicit value wins.
func ProblemPoints(difficulty model.ProblemDifficulty, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	switch difficulty {
	case model.DifficultyMedium:
		return defaultMediumPoints
	case model.DifficultyHard:
		return defaultHardPoints
	default:
		return defaultEasyPoints
	}
}

// Streaks summarizes consecutive solving activity.
type Streaks struct {
	Current int
	Longest int
	Weekly  int
}

// ComputeStreaks buckets solve timestamps into UTC days and ISO weeks.
// A daily streak survives until the end of the day after the last solve; a
// weekly streak survives until the end of the week after the last active week.
func ComputeStreaks(solvedAt []time.Time, now time.Time) Streaks {
	if len(solvedAt) == 0 {
		return Streaks{}
	}

	days := uniqueDays(solvedAt)
	today := truncateDay(now)

	var s Streaks
	run := 1
	s.Longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > s.Longest {
			s.Longest = run
		}
	}

	last := days[len(days)-1]
	if gap := today.Sub(last); gap <= 24*time.Hour && gap >= 0 {
		s.Current = run
	}

	s.Weekly = weeklyStreak(days, today)
	return s
}

// ActiveStreaks zeroes stored counters whose run has lapsed by now. Stored streaks are
// only rewritten when a solve is toggled, so every read goes through this.
func ActiveStreaks(current, weekly int, lastSolvedOn *time.Time, now time.Time) (int, int) {
	if lastSolvedOn == nil {
		return 0, 0
	}
	today := truncateDay(now)
	last := truncateDay(*lastSolvedOn)
	if today.Sub(last) > 24*time.Hour {
		current = 0
	}
	if weekStart(today).Sub(weekStart(last)) > 7*24*time.Hour {
		weekly = 0
	}
	return current, weekly
}

func weeklyStreak(days []time.Time, today time.Time) int {
	weeks := make([]time.Time, 0, len(days))
	seen := make(map[time.Time]bool)
	for _, d := range days {
		w := weekStart(d)
		if !seen[w] {
			seen[w] = true
			weeks = append(weeks, w)
		}
	}

	thisWeek := weekStart(today)
	last := weeks[len(weeks)-1]
	if thisWeek.Sub(last) > 7*24*time.Hour {
		return 0
	}

	streak := 1
	for i := len(weeks) - 1; i > 0; i-- {
		if weeks[i].Sub(weeks[i-1]) != 7*24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

func uniqueDays(ts []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(ts))
	out := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		d := truncateDay(t)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekStart returns the Monday that opens t's ISO week.
func weekStart(t time.Time) time.Time {
	d := truncateDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
