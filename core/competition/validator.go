package competition

import (
	"math"

	"github.com/pkg/errors"
)

// ValidateSubmission checks a score batch from one judge for one team
// against the event's roster and rubric. It is a pure check: nothing is
// written, and validation stops at the first violation found.
//
// Checks, in order:
//  1. the judge exists in the roster;
//  2. the judge is approved;
//  3. the team exists in the roster;
//  4. the batch is non-empty;
//  5. per pair: the criterion exists, the score is a non-negative finite
//     number, and the score does not exceed the criterion's maximum.
func ValidateSubmission(ev Event, judgeID, teamID string, pairs []ScorePair) error {
	judge, ok := ev.Judge(judgeID)
	if !ok {
		return ErrJudgeNotFound
	}
	if judge.Status != JudgeStatusApproved {
		return ErrJudgeNotApproved
	}
	if _, ok := ev.Team(teamID); !ok {
		return ErrTeamNotFound
	}
	if len(pairs) == 0 {
		return ErrEmptySubmission
	}

	for _, pair := range pairs {
		crit, ok := ev.Criterion(pair.CriterionID)
		if !ok {
			return errors.Wrapf(ErrCriterionNotFound, "criterion %q", pair.CriterionID)
		}
		if math.IsNaN(pair.Score) || math.IsInf(pair.Score, 0) || pair.Score < 0 {
			return errors.Wrapf(ErrInvalidScore, "criterion %q", pair.CriterionID)
		}
		if pair.Score > crit.MaxScore {
			return &ScoreMaxError{CriterionID: crit.ID, MaxScore: crit.MaxScore, Score: pair.Score}
		}
	}
	return nil
}
