package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tujenge/shindano/core/competition"
)

type (
	eventRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	criterionRow struct {
		ID       string  `db:"id"`
		EventID  string  `db:"event_id"`
		Name     string  `db:"name"`
		MaxScore float64 `db:"max_score"`
		Weight   float64 `db:"weight"`
		Position int     `db:"position"`
	}

	judgeRow struct {
		ID        string    `db:"id"`
		EventID   string    `db:"event_id"`
		Name      string    `db:"name"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
	}

	teamRow struct {
		ID        string         `db:"id"`
		EventID   string         `db:"event_id"`
		Name      string         `db:"name"`
		Members   pq.StringArray `db:"members"`
		CreatedAt time.Time      `db:"created_at"`
	}

	scoreEntryRow struct {
		ID          int64     `db:"id"`
		EventID     string    `db:"event_id"`
		JudgeID     string    `db:"judge_id"`
		TeamID      string    `db:"team_id"`
		CriterionID string    `db:"criterion_id"`
		Score       float64   `db:"score"`
		SubmittedAt time.Time `db:"submitted_at"`
	}
)

type competitionRepository struct {
	db *sqlx.DB
}

var _ competition.Repository = (*competitionRepository)(nil)

func NewCompetitionRepository(db *sqlx.DB) competition.Repository {
	return &competitionRepository{db: db}
}

func (repo *competitionRepository) CreateEvent(ctx context.Context, ev competition.Event) (competition.Event, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return competition.Event{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO event (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		ev.ID, ev.Name, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return competition.Event{}, errors.Wrap(err, "inserting event")
	}
	for i, crit := range ev.Rubric {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO criterion (id, event_id, name, max_score, weight, position) VALUES ($1, $2, $3, $4, $5, $6)`,
			crit.ID, ev.ID, crit.Name, crit.MaxScore, crit.Weight, i,
		)
		if err != nil {
			return competition.Event{}, errors.Wrap(err, "inserting criterion")
		}
	}

	if err = tx.Commit(); err != nil {
		return competition.Event{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetEvent(ctx, ev.ID)
}

func (repo *competitionRepository) GetEvent(ctx context.Context, id string) (competition.Event, error) {
	var row eventRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM event WHERE id = $1`, id)
	if err != nil {
		return competition.Event{}, trapNoRowsErr(err, competition.ErrEventNotFound, "getting event")
	}
	return repo.loadAggregate(ctx, row)
}

func (repo *competitionRepository) QueryAllEvents(ctx context.Context) ([]competition.Event, error) {
	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM event ORDER BY created_at, id`); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	events := make([]competition.Event, 0, len(rows))
	for _, row := range rows {
		ev, err := repo.loadAggregate(ctx, row)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// loadAggregate assembles the full event from its child tables. Ledger rows
// come back in insertion order so tie-breaking on equal timestamps is stable.
func (repo *competitionRepository) loadAggregate(ctx context.Context, row eventRow) (competition.Event, error) {
	ev := competition.Event{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}

	var crits []criterionRow
	err := repo.db.SelectContext(ctx, &crits, `SELECT * FROM criterion WHERE event_id = $1 ORDER BY position`, ev.ID)
	if err != nil {
		return competition.Event{}, errors.Wrap(err, "loading rubric")
	}
	ev.Rubric = make([]competition.Criterion, 0, len(crits))
	for _, c := range crits {
		ev.Rubric = append(ev.Rubric, competition.Criterion{
			ID: c.ID, Name: c.Name, MaxScore: c.MaxScore, Weight: c.Weight,
		})
	}

	var judges []judgeRow
	err = repo.db.SelectContext(ctx, &judges, `SELECT * FROM judge WHERE event_id = $1 ORDER BY created_at, id`, ev.ID)
	if err != nil {
		return competition.Event{}, errors.Wrap(err, "loading judges")
	}
	ev.Judges = make([]competition.Judge, 0, len(judges))
	for _, j := range judges {
		ev.Judges = append(ev.Judges, competition.Judge{
			ID: j.ID, Name: j.Name, Status: competition.JudgeStatus(j.Status), CreatedAt: j.CreatedAt.UTC(),
		})
	}

	var teams []teamRow
	err = repo.db.SelectContext(ctx, &teams, `SELECT * FROM team WHERE event_id = $1 ORDER BY created_at, id`, ev.ID)
	if err != nil {
		return competition.Event{}, errors.Wrap(err, "loading teams")
	}
	ev.Teams = make([]competition.Team, 0, len(teams))
	for _, t := range teams {
		ev.Teams = append(ev.Teams, competition.Team{
			ID: t.ID, Name: t.Name, Members: t.Members, CreatedAt: t.CreatedAt.UTC(),
		})
	}

	var entries []scoreEntryRow
	err = repo.db.SelectContext(ctx, &entries, `SELECT * FROM score_entry WHERE event_id = $1 ORDER BY id`, ev.ID)
	if err != nil {
		return competition.Event{}, errors.Wrap(err, "loading ledger")
	}
	ev.Ledger = make([]competition.ScoreEntry, 0, len(entries))
	for _, e := range entries {
		ev.Ledger = append(ev.Ledger, competition.ScoreEntry{
			JudgeID:     e.JudgeID,
			TeamID:      e.TeamID,
			CriterionID: e.CriterionID,
			Score:       e.Score,
			SubmittedAt: e.SubmittedAt.UTC(),
		})
	}
	return ev, nil
}

func (repo *competitionRepository) eventExists(ctx context.Context, eventID string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM event WHERE id = $1)`, eventID)
	if err != nil {
		return errors.Wrap(err, "checking event")
	}
	if !exists {
		return competition.ErrEventNotFound
	}
	return nil
}

func (repo *competitionRepository) AddTeam(ctx context.Context, eventID string, team competition.Team) error {
	if err := repo.eventExists(ctx, eventID); err != nil {
		return err
	}
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO team (id, event_id, name, members, created_at) VALUES ($1, $2, $3, $4, $5)`,
		team.ID, eventID, team.Name, pq.StringArray(team.Members), team.CreatedAt,
	)
	return errors.Wrap(err, "adding team")
}

func (repo *competitionRepository) AddJudge(ctx context.Context, eventID string, judge competition.Judge) error {
	if err := repo.eventExists(ctx, eventID); err != nil {
		return err
	}
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO judge (id, event_id, name, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		judge.ID, eventID, judge.Name, string(judge.Status), judge.CreatedAt,
	)
	return errors.Wrap(err, "adding judge")
}

func (repo *competitionRepository) SetJudgeStatus(ctx context.Context, eventID, judgeID string, status competition.JudgeStatus) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE judge SET status = $1 WHERE id = $2 AND event_id = $3`,
		string(status), judgeID, eventID,
	)
	if err != nil {
		return errors.Wrap(err, "updating judge status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return competition.ErrJudgeNotFound
	}
	return nil
}

// AppendScoreEntries inserts the whole batch in one transaction so a half
// written batch can never be observed.
func (repo *competitionRepository) AppendScoreEntries(ctx context.Context, eventID string, entries []competition.ScoreEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := repo.eventExists(ctx, eventID); err != nil {
		return err
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range entries {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO score_entry (event_id, judge_id, team_id, criterion_id, score, submitted_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			eventID, e.JudgeID, e.TeamID, e.CriterionID, e.Score, e.SubmittedAt,
		)
		if err != nil {
			return errors.Wrap(err, "appending score entry")
		}
	}
	return errors.Wrap(tx.Commit(), "committing tx")
}
