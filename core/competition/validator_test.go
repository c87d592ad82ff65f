package competition

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestValidateSubmission(t *testing.T) {
	ev := newScoredEvent()
	ev.Judges = append(ev.Judges, Judge{ID: "j3", Name: "J3", Status: JudgeStatusPending})

	valid := []ScorePair{{CriterionID: "accuracy", Score: 8}, {CriterionID: "creativity", Score: 4}}

	tests := []struct {
		name    string
		judgeID string
		teamID  string
		pairs   []ScorePair
		wantErr error
	}{
		{name: "ok", judgeID: "j1", teamID: "teamA", pairs: valid},
		{name: "unknown judge", judgeID: "nope", teamID: "teamA", pairs: valid, wantErr: ErrJudgeNotFound},
		{name: "pending judge", judgeID: "j3", teamID: "teamA", pairs: valid, wantErr: ErrJudgeNotApproved},
		{name: "unknown team", judgeID: "j1", teamID: "nope", pairs: valid, wantErr: ErrTeamNotFound},
		{name: "empty batch", judgeID: "j1", teamID: "teamA", wantErr: ErrEmptySubmission},
		{
			name: "unknown criterion", judgeID: "j1", teamID: "teamA",
			pairs:   []ScorePair{{CriterionID: "style", Score: 1}},
			wantErr: ErrCriterionNotFound,
		},
		{
			name: "negative score", judgeID: "j1", teamID: "teamA",
			pairs:   []ScorePair{{CriterionID: "accuracy", Score: -1}},
			wantErr: ErrInvalidScore,
		},
		{
			name: "NaN score", judgeID: "j1", teamID: "teamA",
			pairs:   []ScorePair{{CriterionID: "accuracy", Score: math.NaN()}},
			wantErr: ErrInvalidScore,
		},
		{
			name: "infinite score", judgeID: "j1", teamID: "teamA",
			pairs:   []ScorePair{{CriterionID: "accuracy", Score: math.Inf(1)}},
			wantErr: ErrInvalidScore,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission(ev, tt.judgeID, tt.teamID, tt.pairs)
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("ValidateSubmission() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSubmissionScoreAboveMaximum(t *testing.T) {
	ev := newScoredEvent()

	err := ValidateSubmission(ev, "j1", "teamA", []ScorePair{{CriterionID: "creativity", Score: 6}})

	var maxErr *ScoreMaxError
	if !errors.As(err, &maxErr) {
		t.Fatalf("ValidateSubmission() error = %v, want *ScoreMaxError", err)
	}
	if maxErr.CriterionID != "creativity" || maxErr.MaxScore != 5 || maxErr.Score != 6 {
		t.Errorf("ScoreMaxError = %+v; want criterion creativity, max 5, score 6", maxErr)
	}
}

func TestValidateSubmissionStopsAtFirstViolation(t *testing.T) {
	ev := newScoredEvent()

	// the batch mixes an unknown criterion with an over-max score;
	// the first pair's violation is reported
	err := ValidateSubmission(ev, "j1", "teamA", []ScorePair{
		{CriterionID: "style", Score: 1},
		{CriterionID: "creativity", Score: 99},
	})
	if errors.Cause(err) != ErrCriterionNotFound {
		t.Errorf("ValidateSubmission() error = %v, want ErrCriterionNotFound", err)
	}
}
