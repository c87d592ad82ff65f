package competition

import (
	"math"
	"sort"
)

// BuildLeaderboard ranks every roster team by final score, descending.
// Equal scores are ordered by team ID ascending so that repeated builds
// over an unchanged ledger yield identical output; ranks are 1-based and
// positional (tied teams do not share a rank). Teams with no scores appear
// with a final score of 0. Final scores are rounded to 2 decimal places
// here, at the presentation boundary.
func BuildLeaderboard(ev Event) []LeaderboardEntry {
	finals := FinalScores(ev)

	entries := make([]LeaderboardEntry, 0, len(ev.Teams))
	for _, t := range ev.Teams {
		entries = append(entries, LeaderboardEntry{
			TeamID:     t.ID,
			Name:       t.Name,
			Members:    t.Members,
			FinalScore: finals[t.ID],
		})
	}

	// sort on unrounded scores
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FinalScore != entries[j].FinalScore {
			return entries[i].FinalScore > entries[j].FinalScore
		}
		return entries[i].TeamID < entries[j].TeamID
	})

	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].FinalScore = round2(entries[i].FinalScore)
	}
	return entries
}

// BuildTeamTotals produces the teams-with-totals monitoring view, ordered
// by raw total descending with ties broken by team ID.
func BuildTeamTotals(ev Event) []TeamTotal {
	totals := RawTotals(ev)

	view := make([]TeamTotal, 0, len(ev.Teams))
	for _, t := range ev.Teams {
		view = append(view, TeamTotal{
			TeamID:  t.ID,
			Name:    t.Name,
			Members: t.Members,
			Total:   totals[t.ID],
		})
	}
	sort.Slice(view, func(i, j int) bool {
		if view[i].Total != view[j].Total {
			return view[i].Total > view[j].Total
		}
		return view[i].TeamID < view[j].TeamID
	})
	return view
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
