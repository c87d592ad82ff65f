package competition_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/tujenge/shindano/core"
	"github.com/tujenge/shindano/core/competition"
	inmemdb "github.com/tujenge/shindano/storage/database/inmem"
)

func setup(t *testing.T) (competition.Service, competition.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewCompetitionRepository(db)
	return competition.NewService(repo), repo
}

func createEvent(t *testing.T, svc competition.Service) competition.Event {
	t.Helper()
	ev, err := svc.Create(context.Background(), competition.NewEvent{
		Name: "Inter-School Hackathon",
		Rubric: []competition.NewCriterion{
			{Name: "Accuracy", MaxScore: 10, Weight: 2},
			{Name: "Creativity", MaxScore: 5, Weight: 1},
		},
	})
	if err != nil {
		t.Fatalf("createEvent() failed: %v", err)
	}
	return ev
}

func addApprovedJudge(t *testing.T, svc competition.Service, eventID string) competition.Judge {
	t.Helper()
	ctx := context.Background()
	ev, err := svc.RegisterJudge(ctx, eventID, competition.NewJudge{Name: "Judge Dee"})
	if err != nil {
		t.Fatalf("addApprovedJudge() failed: %v", err)
	}
	judge := ev.Judges[len(ev.Judges)-1]
	if judge.Status != competition.JudgeStatusPending {
		t.Fatalf("new judge status = %s; want pending", judge.Status)
	}
	if _, err = svc.SetJudgeStatus(ctx, eventID, judge.ID, competition.JudgeStatusApproved); err != nil {
		t.Fatalf("addApprovedJudge() failed: %v", err)
	}
	judge.Status = competition.JudgeStatusApproved
	return judge
}

func addTeam(t *testing.T, svc competition.Service, eventID, name string, members ...string) competition.Team {
	t.Helper()
	ev, err := svc.RegisterTeam(context.Background(), eventID, competition.NewTeam{Name: name, Members: members})
	if err != nil {
		t.Fatalf("addTeam() failed: %v", err)
	}
	return ev.Teams[len(ev.Teams)-1]
}

func TestServiceSubmitScores(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	ev := createEvent(t, svc)
	judge := addApprovedJudge(t, svc, ev.ID)
	team := addTeam(t, svc, ev.ID, "Team A", "ada", "grace")

	updated, err := svc.SubmitScores(ctx, ev.ID, competition.ScoreSubmission{
		JudgeID: judge.ID,
		TeamID:  team.ID,
		Scores: []competition.ScorePair{
			{CriterionID: ev.Rubric[0].ID, Score: 8},
			{CriterionID: ev.Rubric[1].ID, Score: 4},
		},
	})
	if err != nil {
		t.Fatalf("SubmitScores() failed: %v", err)
	}
	if len(updated.Ledger) != 2 {
		t.Fatalf("ledger len = %d; want 2", len(updated.Ledger))
	}
	// the whole batch shares one timestamp
	if !updated.Ledger[0].SubmittedAt.Equal(updated.Ledger[1].SubmittedAt) {
		t.Errorf("batch timestamps differ: %v vs %v",
			updated.Ledger[0].SubmittedAt, updated.Ledger[1].SubmittedAt)
	}

	board, err := svc.Leaderboard(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if len(board) != 1 || board[0].FinalScore != 80.00 || board[0].Rank != 1 {
		t.Errorf("leaderboard = %+v; want Team A rank 1 with 80.00", board)
	}
}

func TestServiceSubmitScoresRejectionIsAtomic(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	ev := createEvent(t, svc)
	judge := addApprovedJudge(t, svc, ev.ID)
	team := addTeam(t, svc, ev.ID, "Team A")

	// one invalid pair among valid ones: nothing may be appended
	_, err := svc.SubmitScores(ctx, ev.ID, competition.ScoreSubmission{
		JudgeID: judge.ID,
		TeamID:  team.ID,
		Scores: []competition.ScorePair{
			{CriterionID: ev.Rubric[0].ID, Score: 8},
			{CriterionID: "does-not-exist", Score: 1},
		},
	})
	if err == nil {
		t.Fatal("SubmitScores() succeeded; want rejection")
	}
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("SubmitScores() error = %v; want *core.ValidationError", err)
	}

	stored, err := repo.GetEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetEvent() failed: %v", err)
	}
	if len(stored.Ledger) != 0 {
		t.Errorf("ledger len = %d after rejected batch; want 0", len(stored.Ledger))
	}
}

func TestServiceSubmitScoresUnknownTeam(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	ev := createEvent(t, svc)
	judge := addApprovedJudge(t, svc, ev.ID)

	_, err := svc.SubmitScores(ctx, ev.ID, competition.ScoreSubmission{
		JudgeID: judge.ID,
		TeamID:  "ghost-team",
		Scores:  []competition.ScorePair{{CriterionID: ev.Rubric[0].ID, Score: 5}},
	})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) || errors.Cause(vErr.Err) != competition.ErrTeamNotFound {
		t.Fatalf("SubmitScores() error = %v; want TeamNotFound rejection", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "team_id" {
		t.Errorf("rejection fields = %+v; want team_id", vErr.Fields)
	}

	stored, _ := repo.GetEvent(ctx, ev.ID)
	if len(stored.Ledger) != 0 {
		t.Errorf("ledger len = %d; want 0", len(stored.Ledger))
	}
}

func TestServiceSubmitScoresUnknownEvent(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.SubmitScores(context.Background(), "no-such-event", competition.ScoreSubmission{
		JudgeID: "j", TeamID: "t",
		Scores: []competition.ScorePair{{CriterionID: "c", Score: 1}},
	})
	if errors.Cause(err) != competition.ErrEventNotFound {
		t.Errorf("SubmitScores() error = %v; want ErrEventNotFound", err)
	}
}

func TestServiceLatestSubmissionWins(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	ev := createEvent(t, svc)
	judge := addApprovedJudge(t, svc, ev.ID)
	team := addTeam(t, svc, ev.ID, "Team A")

	base := time.Date(2021, time.March, 6, 12, 0, 0, 0, time.UTC)
	competition.NowFunc = func() time.Time { return base }
	defer func() { competition.NowFunc = time.Now }()

	submit := func(score float64) {
		t.Helper()
		_, err := svc.SubmitScores(ctx, ev.ID, competition.ScoreSubmission{
			JudgeID: judge.ID,
			TeamID:  team.ID,
			Scores:  []competition.ScorePair{{CriterionID: ev.Rubric[0].ID, Score: score}},
		})
		if err != nil {
			t.Fatalf("SubmitScores() failed: %v", err)
		}
	}

	submit(2)
	competition.NowFunc = func() time.Time { return base.Add(time.Minute) }
	submit(9)

	board, err := svc.Leaderboard(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	// only the revision counts: (0.9*2)/2*100 = 90
	if board[0].FinalScore != 90.00 {
		t.Errorf("final = %v; want 90.00", board[0].FinalScore)
	}

	totals, err := svc.TeamTotals(ctx, ev.ID)
	if err != nil {
		t.Fatalf("TeamTotals() failed: %v", err)
	}
	// the raw view keeps counting superseded entries
	if totals[0].Total != 11 {
		t.Errorf("raw total = %v; want 11", totals[0].Total)
	}
}

func TestServiceSetJudgeStatusUnknownJudge(t *testing.T) {
	svc, _ := setup(t)
	ev := createEvent(t, svc)

	_, err := svc.SetJudgeStatus(context.Background(), ev.ID, "ghost", competition.JudgeStatusApproved)
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("SetJudgeStatus() error = %v; want validation rejection", err)
	}
}
