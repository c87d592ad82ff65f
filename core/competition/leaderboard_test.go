package competition

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildLeaderboardRanking(t *testing.T) {
	ev := newScoredEvent()
	ev.Ledger = []ScoreEntry{
		entry("j1", "teamA", "accuracy", 8, scorerNow),
		entry("j1", "teamA", "creativity", 4, scorerNow),
		entry("j1", "teamB", "accuracy", 10, scorerNow),
	}

	board := BuildLeaderboard(ev)

	want := []LeaderboardEntry{
		{Rank: 1, TeamID: "teamB", Name: "Team B", Members: []string{"linus"}, FinalScore: 100},
		{Rank: 2, TeamID: "teamA", Name: "Team A", Members: []string{"ada", "grace"}, FinalScore: 80},
		{Rank: 3, TeamID: "teamC", Name: "Team C", FinalScore: 0},
	}
	if !reflect.DeepEqual(board, want) {
		t.Errorf("leaderboard = %+v; want %+v", board, want)
	}
}

func TestBuildLeaderboardTieBreakByTeamID(t *testing.T) {
	ev := Event{
		Rubric: []Criterion{{ID: "c1", MaxScore: 10, Weight: 1}},
		Judges: []Judge{{ID: "j1", Status: JudgeStatusApproved}},
		Teams:  []Team{{ID: "zulu", Name: "Zulu"}, {ID: "alpha", Name: "Alpha"}},
		Ledger: []ScoreEntry{
			entry("j1", "zulu", "c1", 7, scorerNow),
			entry("j1", "alpha", "c1", 7, scorerNow),
		},
	}

	board := BuildLeaderboard(ev)
	if board[0].TeamID != "alpha" || board[0].Rank != 1 {
		t.Errorf("first = %+v; want alpha at rank 1", board[0])
	}
	if board[1].TeamID != "zulu" || board[1].Rank != 2 {
		t.Errorf("second = %+v; want zulu at rank 2", board[1])
	}
}

func TestBuildLeaderboardRoundsToTwoDecimals(t *testing.T) {
	ev := Event{
		Rubric: []Criterion{{ID: "c1", MaxScore: 3, Weight: 1}},
		Judges: []Judge{{ID: "j1", Status: JudgeStatusApproved}},
		Teams:  []Team{{ID: "t1", Name: "T1"}},
		Ledger: []ScoreEntry{entry("j1", "t1", "c1", 1, scorerNow)}, // 1/3 -> 33.333...
	}

	board := BuildLeaderboard(ev)
	if board[0].FinalScore != 33.33 {
		t.Errorf("final = %v; want 33.33", board[0].FinalScore)
	}
}

func TestBuildLeaderboardIdempotent(t *testing.T) {
	ev := newScoredEvent()
	ev.Ledger = []ScoreEntry{
		entry("j1", "teamA", "accuracy", 8, scorerNow),
		entry("j2", "teamB", "accuracy", 8, scorerNow.Add(time.Second)),
	}

	first := BuildLeaderboard(ev)
	second := BuildLeaderboard(ev)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("rebuild over unchanged ledger differs: %+v vs %+v", first, second)
	}
}

func TestBuildTeamTotalsOrdering(t *testing.T) {
	ev := newScoredEvent()
	ev.Ledger = []ScoreEntry{
		entry("j1", "teamA", "accuracy", 3, scorerNow),
		entry("j1", "teamB", "accuracy", 9, scorerNow),
		entry("j2", "teamB", "creativity", 1, scorerNow),
	}

	view := BuildTeamTotals(ev)
	if len(view) != 3 {
		t.Fatalf("len = %d; want 3", len(view))
	}
	if view[0].TeamID != "teamB" || view[0].Total != 10 {
		t.Errorf("first = %+v; want teamB total 10", view[0])
	}
	if view[1].TeamID != "teamA" || view[1].Total != 3 {
		t.Errorf("second = %+v; want teamA total 3", view[1])
	}
	if view[2].TeamID != "teamC" || view[2].Total != 0 {
		t.Errorf("third = %+v; want teamC total 0", view[2])
	}
}
