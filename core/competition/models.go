package competition

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tujenge/shindano/core"
)

// JudgeStatus is a judge's approval state on an event roster.
// Only approved judges may submit scores.
type JudgeStatus string

const (
	JudgeStatusPending  JudgeStatus = "pending"
	JudgeStatusApproved JudgeStatus = "approved"
	JudgeStatusRejected JudgeStatus = "rejected"
)

func (s JudgeStatus) Valid() bool {
	switch s {
	case JudgeStatusPending, JudgeStatusApproved, JudgeStatusRejected:
		return true
	}
	return false
}

type (
	// Criterion is a single scored dimension of an event's rubric.
	// Weights are relative; they need not sum to any particular total.
	Criterion struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		MaxScore float64 `json:"max_score"`
		Weight   float64 `json:"weight"`
	}

	Judge struct {
		ID        string      `json:"id"`
		Name      string      `json:"name"`
		Status    JudgeStatus `json:"status"`
		CreatedAt time.Time   `json:"created_at"` // UTC
	}

	Team struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Members   []string  `json:"members"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// ScoreEntry is one record of the append-only score ledger.
	// Entries are never updated or deleted; corrections are new entries.
	ScoreEntry struct {
		JudgeID     string    `json:"judge_id"`
		TeamID      string    `json:"team_id"`
		CriterionID string    `json:"criterion_id"`
		Score       float64   `json:"score"`
		SubmittedAt time.Time `json:"submitted_at"` // UTC
	}

	// Event is the aggregate root: rubric, roster and ledger all live inside it.
	Event struct {
		ID        string       `json:"id"`
		Name      string       `json:"name"`
		Rubric    []Criterion  `json:"rubric"`
		Judges    []Judge      `json:"judges"`
		Teams     []Team       `json:"teams"`
		Ledger    []ScoreEntry `json:"ledger"`
		CreatedAt time.Time    `json:"created_at"` // UTC
		UpdatedAt time.Time    `json:"updated_at"` // UTC
	}
)

func (ev *Event) Criterion(id string) (Criterion, bool) {
	for _, c := range ev.Rubric {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

func (ev *Event) Judge(id string) (Judge, bool) {
	for _, j := range ev.Judges {
		if j.ID == id {
			return j, true
		}
	}
	return Judge{}, false
}

func (ev *Event) Team(id string) (Team, bool) {
	for _, t := range ev.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// ScoringStarted reports whether any scores have been recorded.
// The rubric is immutable from this point on.
func (ev *Event) ScoringStarted() bool {
	return len(ev.Ledger) > 0
}

// NewCriterion contains information needed to add a Criterion to a new event's rubric.
type NewCriterion struct {
	Name     string  `json:"name" validate:"required"`
	MaxScore float64 `json:"max_score" validate:"required,gt=0"`
	Weight   float64 `json:"weight" validate:"gte=0"`
}

// NewEvent contains information needed to create a new Event.
type NewEvent struct {
	Name   string         `json:"name" validate:"required"`
	Rubric []NewCriterion `json:"rubric" validate:"required,min=1,dive"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	for i := range ne.Rubric {
		ne.Rubric[i].Name = core.CleanString(ne.Rubric[i].Name)
	}
	return validate.Struct(ne)
}

type NewTeam struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members" validate:"omitempty,dive,required"`
}

func (nt *NewTeam) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	for i := range nt.Members {
		nt.Members[i] = core.CleanString(nt.Members[i])
	}
	return validate.Struct(nt)
}

type NewJudge struct {
	Name string `json:"name" validate:"required"`
}

func (nj *NewJudge) Validate(validate *validator.Validate) error {
	nj.Name = core.CleanString(nj.Name)
	return validate.Struct(nj)
}

// ScorePair is one (criterion, value) element of a submission batch.
type ScorePair struct {
	CriterionID string  `json:"criterion_id" validate:"required"`
	Score       float64 `json:"score"`
}

// ScoreSubmission is a batch of scores from one judge for one team.
type ScoreSubmission struct {
	JudgeID string      `json:"judge_id" validate:"required"`
	TeamID  string      `json:"team_id" validate:"required"`
	Scores  []ScorePair `json:"scores"`
}

func (ss *ScoreSubmission) Validate(validate *validator.Validate) error {
	ss.JudgeID = core.CleanString(ss.JudgeID)
	ss.TeamID = core.CleanString(ss.TeamID)
	for i := range ss.Scores {
		ss.Scores[i].CriterionID = core.CleanString(ss.Scores[i].CriterionID)
	}
	return validate.Struct(ss)
}

type UpdateJudgeStatus struct {
	Status JudgeStatus `json:"status" validate:"required,judgestatus"`
}

func (us *UpdateJudgeStatus) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

// TeamTotal is the in-progress monitoring view: the raw, unweighted sum of
// every ledger entry for a team, superseded entries included. It answers
// "how much scoring activity has this team received", not "what is this
// team's adjudicated final score"; the leaderboard answers the latter.
type TeamTotal struct {
	TeamID  string   `json:"team_id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
	Total   float64  `json:"total"`
}

// LeaderboardEntry is one ranked row of an event's leaderboard.
type LeaderboardEntry struct {
	Rank       int      `json:"rank"`
	TeamID     string   `json:"team_id"`
	Name       string   `json:"name"`
	Members    []string `json:"members"`
	FinalScore float64  `json:"final_score"`
}
