package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tujenge/shindano/core/competition"
	"github.com/tujenge/shindano/core/user"
)

func decodeEvent(t *testing.T, data []byte) competition.Event {
	t.Helper()
	var ev competition.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decodeEvent() failed: %v", err)
	}
	return ev
}

// drives the whole scoring flow through the API: event creation, roster
// registration, judge approval, score submission and the leaderboard.
func TestCompetitionScoringFlow(t *testing.T) {
	app, usrRepo, _ := setup(t)
	organizer := createTestUser(t, usrRepo, "organizer", []string{user.RoleOrganizer}, "LeopardsOfKin13")
	mentor := createTestUser(t, usrRepo, "mentoro", []string{user.RoleMentor}, "LeopardsOfKin13")
	orgToken := getToken(t, organizer)
	mentorToken := getToken(t, mentor)

	// create event
	body := marchallObj(t, competition.NewEvent{
		Name: "Kinshasa Robotics Cup",
		Rubric: []competition.NewCriterion{
			{Name: "Accuracy", MaxScore: 10, Weight: 2},
			{Name: "Creativity", MaxScore: 5, Weight: 1},
		},
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/events", orgToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating event: code = %v; body = %s", rec.Code, rec.Body.String())
	}
	ev := decodeEvent(t, rec.Body.Bytes())
	if len(ev.Rubric) != 2 {
		t.Fatalf("rubric len = %d; want 2", len(ev.Rubric))
	}

	// register teams
	for _, name := range []string{"Team Alpha", "Team Zulu"} {
		body = marchallObj(t, competition.NewTeam{Name: name, Members: []string{"ada", "grace"}})
		req, rec = newAuthRequest(http.MethodPost, "/v1/events/"+ev.ID+"/teams", orgToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("registering team: code = %v; body = %s", rec.Code, rec.Body.String())
		}
		ev = decodeEvent(t, rec.Body.Bytes())
	}

	// register a judge; status starts out pending
	body = marchallObj(t, competition.NewJudge{Name: "Judge Dee"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/events/"+ev.ID+"/judges", mentorToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registering judge: code = %v; body = %s", rec.Code, rec.Body.String())
	}
	ev = decodeEvent(t, rec.Body.Bytes())
	judge := ev.Judges[0]
	if judge.Status != competition.JudgeStatusPending {
		t.Fatalf("judge status = %s; want pending", judge.Status)
	}

	// a pending judge may not score
	sub := competition.ScoreSubmission{
		JudgeID: judge.ID,
		TeamID:  ev.Teams[0].ID,
		Scores: []competition.ScorePair{
			{CriterionID: ev.Rubric[0].ID, Score: 8},
			{CriterionID: ev.Rubric[1].ID, Score: 4},
		},
	}
	req, rec = newAuthRequest(http.MethodPost, "/v1/events/"+ev.ID+"/scores", mentorToken, marchallObj(t, sub))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("pending judge scoring: code = %v; want 400", rec.Code)
	}

	// approve the judge
	body = marchallObj(t, competition.UpdateJudgeStatus{Status: competition.JudgeStatusApproved})
	req, rec = newAuthRequest(http.MethodPut, "/v1/events/"+ev.ID+"/judges/"+judge.ID+"/status", orgToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("approving judge: code = %v; body = %s", rec.Code, rec.Body.String())
	}

	// now the submission goes through
	req, rec = newAuthRequest(http.MethodPost, "/v1/events/"+ev.ID+"/scores", mentorToken, marchallObj(t, sub))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submitting scores: code = %v; body = %s", rec.Code, rec.Body.String())
	}
	ev = decodeEvent(t, rec.Body.Bytes())
	if len(ev.Ledger) != 2 {
		t.Fatalf("ledger len = %d; want 2", len(ev.Ledger))
	}

	// leaderboard: Team Alpha scored 80.00, Team Zulu unscored at 0
	req, rec = newRequest(http.MethodGet, "/v1/events/"+ev.ID+"/leaderboard")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var board []competition.LeaderboardEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decoding leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("leaderboard len = %d; want 2", len(board))
	}
	if board[0].Name != "Team Alpha" || board[0].FinalScore != 80.00 || board[0].Rank != 1 {
		t.Errorf("first row = %+v; want Team Alpha rank 1 with 80.00", board[0])
	}
	if board[1].Name != "Team Zulu" || board[1].FinalScore != 0 || board[1].Rank != 2 {
		t.Errorf("second row = %+v; want Team Zulu rank 2 with 0", board[1])
	}

	// raw totals keep every ledger entry
	req, rec = newRequest(http.MethodGet, "/v1/events/"+ev.ID+"/teams")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("team totals: code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var totals []competition.TeamTotal
	if err := json.Unmarshal(rec.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decoding totals: %v", err)
	}
	if totals[0].Total != 12 {
		t.Errorf("raw total = %v; want 12", totals[0].Total)
	}
}

func TestCompetitionSubmitScoresRejections(t *testing.T) {
	app, usrRepo, compRepo := setup(t)
	organizer := createTestUser(t, usrRepo, "organizer", []string{user.RoleOrganizer}, "LeopardsOfKin13")
	orgToken := getToken(t, organizer)

	body := marchallObj(t, competition.NewEvent{
		Name:   "Debate Night",
		Rubric: []competition.NewCriterion{{Name: "Rhetoric", MaxScore: 10, Weight: 1}},
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/events", orgToken, body)
	app.ServeHTTP(rec, req)
	ev := decodeEvent(t, rec.Body.Bytes())

	body = marchallObj(t, competition.NewJudge{Name: "Judge Dee"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/events/"+ev.ID+"/judges", orgToken, body)
	app.ServeHTTP(rec, req)
	ev = decodeEvent(t, rec.Body.Bytes())
	judge := ev.Judges[0]

	body = marchallObj(t, competition.UpdateJudgeStatus{Status: competition.JudgeStatusApproved})
	req, rec = newAuthRequest(http.MethodPut, "/v1/events/"+ev.ID+"/judges/"+judge.ID+"/status", orgToken, body)
	app.ServeHTTP(rec, req)

	tests := []httpTest{
		{
			name: "unknown team",
			body: marchallObj(t, competition.ScoreSubmission{
				JudgeID: judge.ID,
				TeamID:  "ghost-team",
				Scores:  []competition.ScorePair{{CriterionID: ev.Rubric[0].ID, Score: 5}},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"team_id": competition.ErrTeamNotFound.Error()}),
		},
		{
			name: "unknown judge",
			body: marchallObj(t, competition.ScoreSubmission{
				JudgeID: "ghost-judge",
				TeamID:  "ghost-team",
				Scores:  []competition.ScorePair{{CriterionID: ev.Rubric[0].ID, Score: 5}},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"judge_id": competition.ErrJudgeNotFound.Error()}),
		},
		{
			name: "empty submission",
			body: marchallObj(t, competition.ScoreSubmission{
				JudgeID: judge.ID,
				TeamID:  "ghost-team",
			}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/events/"+ev.ID+"/scores", orgToken, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}

	// nothing was appended by the rejected batches
	stored, err := compRepo.GetEvent(req.Context(), ev.ID)
	if err != nil {
		t.Fatalf("GetEvent() failed: %v", err)
	}
	if len(stored.Ledger) != 0 {
		t.Errorf("ledger len = %d; want 0", len(stored.Ledger))
	}
}

func TestCompetitionEventNotFound(t *testing.T) {
	app, _, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/v1/events/no-such-event/leaderboard")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "not found"}),
	}, rec)
}

func TestCompetitionCreateRequiresOrganizer(t *testing.T) {
	app, usrRepo, _ := setup(t)
	student := createTestUser(t, usrRepo, "makeda", []string{user.RoleStudent}, "LeopardsOfKin13")

	body := marchallObj(t, competition.NewEvent{
		Name:   "Side Event",
		Rubric: []competition.NewCriterion{{Name: "Vibes", MaxScore: 10, Weight: 1}},
	})

	// no token
	req, rec := newRequest(http.MethodPost, "/v1/events", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusUnauthorized)
	}

	// student token
	req, rec = newAuthRequest(http.MethodPost, "/v1/events", getToken(t, student), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
	}
}
