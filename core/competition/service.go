package competition

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tujenge/shindano/core"
)

var NowFunc = time.Now // mockable

type (
	// Repository persists event aggregates. AppendScoreEntries must be
	// atomic per batch: either every entry is recorded or none is, and
	// concurrent batches for the same event must both survive.
	Repository interface {
		CreateEvent(ctx context.Context, ev Event) (Event, error)
		GetEvent(ctx context.Context, id string) (Event, error)
		QueryAllEvents(ctx context.Context) ([]Event, error)
		AddTeam(ctx context.Context, eventID string, team Team) error
		AddJudge(ctx context.Context, eventID string, judge Judge) error
		SetJudgeStatus(ctx context.Context, eventID, judgeID string, status JudgeStatus) error
		AppendScoreEntries(ctx context.Context, eventID string, entries []ScoreEntry) error
	}

	Service interface {
		Create(ctx context.Context, ne NewEvent) (Event, error)
		GetByID(ctx context.Context, id string) (Event, error)
		QueryAll(ctx context.Context) ([]Event, error)
		RegisterTeam(ctx context.Context, eventID string, nt NewTeam) (Event, error)
		RegisterJudge(ctx context.Context, eventID string, nj NewJudge) (Event, error)
		SetJudgeStatus(ctx context.Context, eventID, judgeID string, status JudgeStatus) (Event, error)
		SubmitScores(ctx context.Context, eventID string, sub ScoreSubmission) (Event, error)
		Leaderboard(ctx context.Context, eventID string) ([]LeaderboardEntry, error)
		TeamTotals(ctx context.Context, eventID string) ([]TeamTotal, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ne NewEvent) (Event, error) {
	now := NowFunc().UTC()
	ev := Event{
		ID:        uuid.New().String(),
		Name:      ne.Name,
		Rubric:    make([]Criterion, 0, len(ne.Rubric)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, nc := range ne.Rubric {
		ev.Rubric = append(ev.Rubric, Criterion{
			ID:       uuid.New().String(),
			Name:     nc.Name,
			MaxScore: nc.MaxScore,
			Weight:   nc.Weight,
		})
	}
	return svc.repo.CreateEvent(ctx, ev)
}

func (svc *service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEvent(ctx, id)
}

func (svc *service) QueryAll(ctx context.Context) ([]Event, error) {
	return svc.repo.QueryAllEvents(ctx)
}

func (svc *service) RegisterTeam(ctx context.Context, eventID string, nt NewTeam) (Event, error) {
	team := Team{
		ID:        uuid.New().String(),
		Name:      nt.Name,
		Members:   nt.Members,
		CreatedAt: NowFunc().UTC(),
	}
	if err := svc.repo.AddTeam(ctx, eventID, team); err != nil {
		return Event{}, err
	}
	return svc.repo.GetEvent(ctx, eventID)
}

func (svc *service) RegisterJudge(ctx context.Context, eventID string, nj NewJudge) (Event, error) {
	judge := Judge{
		ID:        uuid.New().String(),
		Name:      nj.Name,
		Status:    JudgeStatusPending,
		CreatedAt: NowFunc().UTC(),
	}
	if err := svc.repo.AddJudge(ctx, eventID, judge); err != nil {
		return Event{}, err
	}
	return svc.repo.GetEvent(ctx, eventID)
}

func (svc *service) SetJudgeStatus(ctx context.Context, eventID, judgeID string, status JudgeStatus) (Event, error) {
	ev, err := svc.repo.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	if _, ok := ev.Judge(judgeID); !ok {
		return Event{}, core.NewValidationError(ErrJudgeNotFound,
			core.FieldError{Field: "judge_id", Error: ErrJudgeNotFound.Error()})
	}
	if err := svc.repo.SetJudgeStatus(ctx, eventID, judgeID, status); err != nil {
		return Event{}, err
	}
	return svc.repo.GetEvent(ctx, eventID)
}

// SubmitScores validates a batch and appends it to the event's ledger.
// All entries of the batch share one submission timestamp, captured once,
// so the batch is atomic with respect to latest-wins resolution. On any
// validation failure nothing is appended.
func (svc *service) SubmitScores(ctx context.Context, eventID string, sub ScoreSubmission) (Event, error) {
	ev, err := svc.repo.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, err
	}

	if err := ValidateSubmission(ev, sub.JudgeID, sub.TeamID, sub.Scores); err != nil {
		return Event{}, asValidationError(err)
	}

	submittedAt := NowFunc().UTC()
	entries := make([]ScoreEntry, 0, len(sub.Scores))
	for _, pair := range sub.Scores {
		entries = append(entries, ScoreEntry{
			JudgeID:     sub.JudgeID,
			TeamID:      sub.TeamID,
			CriterionID: pair.CriterionID,
			Score:       pair.Score,
			SubmittedAt: submittedAt,
		})
	}
	if err := svc.repo.AppendScoreEntries(ctx, eventID, entries); err != nil {
		return Event{}, errors.Wrap(err, "appending score entries")
	}
	return svc.repo.GetEvent(ctx, eventID)
}

func (svc *service) Leaderboard(ctx context.Context, eventID string) ([]LeaderboardEntry, error) {
	ev, err := svc.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(ev), nil
}

func (svc *service) TeamTotals(ctx context.Context, eventID string) ([]TeamTotal, error) {
	ev, err := svc.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return BuildTeamTotals(ev), nil
}

// asValidationError maps submission rejections to a core.ValidationError
// with the offending request field, so the API layer can surface them as
// bad-request responses.
func asValidationError(err error) error {
	var field string
	switch errors.Cause(err) {
	case ErrJudgeNotFound, ErrJudgeNotApproved:
		field = "judge_id"
	case ErrTeamNotFound:
		field = "team_id"
	case ErrCriterionNotFound, ErrInvalidScore, ErrEmptySubmission:
		field = "scores"
	default:
		if _, ok := err.(*ScoreMaxError); ok {
			field = "scores"
		} else {
			return err
		}
	}
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}
