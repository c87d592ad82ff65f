package competition

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrJudgeNotFound     = errors.New("judge not found in event roster")
	ErrJudgeNotApproved  = errors.New("judge is not approved for scoring")
	ErrTeamNotFound      = errors.New("team not found in event roster")
	ErrCriterionNotFound = errors.New("criterion not found in event rubric")
	ErrEmptySubmission   = errors.New("submission contains no scores")
	ErrInvalidScore      = errors.New("score must be a non-negative finite number")
)

// ScoreMaxError reports a score above its criterion's maximum, naming the
// criterion and the maximum so the caller can correct and resubmit.
type ScoreMaxError struct {
	CriterionID string
	MaxScore    float64
	Score       float64
}

func (e *ScoreMaxError) Error() string {
	return fmt.Sprintf("score %v exceeds maximum %v for criterion %q", e.Score, e.MaxScore, e.CriterionID)
}
