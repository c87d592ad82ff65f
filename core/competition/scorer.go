package competition

// The scorer derives "current" scores from the append-only ledger.
// Per (judge, team, criterion), only the most recently timestamped entry is
// authoritative; older entries from the same judge are superseded, never
// removed. All entries of one submission batch share a single timestamp, so
// a multi-criterion batch can never partially supersede itself.

type tupleKey struct {
	judgeID     string
	teamID      string
	criterionID string
}

// currentEntries resolves latest-wins over the full ledger.
// When two entries for the same tuple carry an identical timestamp, the one
// at the later ledger position wins; across processes that order is
// undefined and callers must not rely on it.
func currentEntries(ev Event) map[tupleKey]ScoreEntry {
	current := make(map[tupleKey]ScoreEntry, len(ev.Ledger))
	for _, e := range ev.Ledger {
		key := tupleKey{e.JudgeID, e.TeamID, e.CriterionID}
		if cur, ok := current[key]; ok && e.SubmittedAt.Before(cur.SubmittedAt) {
			continue
		}
		current[key] = e
	}
	return current
}

// FinalScores computes every roster team's weighted final score on a 0-100
// scale. Each surviving ledger entry contributes its criterion-normalized
// fraction (score/max) times the criterion weight; the total is divided by
// the sum of contributing weights. Criteria nobody scored contribute
// neither numerator nor denominator. A team with no surviving entries
// scores 0. Values are not rounded here; rounding happens at the
// presentation boundary only.
func FinalScores(ev Event) map[string]float64 {
	finals := make(map[string]float64, len(ev.Teams))
	for _, t := range ev.Teams {
		finals[t.ID] = 0
	}

	type acc struct {
		weightedSum float64
		totalWeight float64
	}
	accs := make(map[string]*acc, len(ev.Teams))

	for _, e := range currentEntries(ev) {
		crit, ok := ev.Criterion(e.CriterionID)
		if !ok {
			// entry references a criterion no longer in the rubric; skip
			continue
		}
		if _, ok := finals[e.TeamID]; !ok {
			continue
		}
		a := accs[e.TeamID]
		if a == nil {
			a = &acc{}
			accs[e.TeamID] = a
		}
		a.weightedSum += (e.Score / crit.MaxScore) * crit.Weight
		a.totalWeight += crit.Weight
	}

	for teamID, a := range accs {
		if a.totalWeight > 0 {
			finals[teamID] = a.weightedSum / a.totalWeight * 100
		}
	}
	return finals
}

// RawTotals sums every ledger entry per team, superseded entries included
// and weights ignored. This is the crude activity view, deliberately
// distinct from FinalScores.
func RawTotals(ev Event) map[string]float64 {
	totals := make(map[string]float64, len(ev.Teams))
	for _, t := range ev.Teams {
		totals[t.ID] = 0
	}
	for _, e := range ev.Ledger {
		if _, ok := totals[e.TeamID]; !ok {
			continue
		}
		totals[e.TeamID] += e.Score
	}
	return totals
}
