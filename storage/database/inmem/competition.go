package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/tujenge/shindano/core/competition"
)

type competitionRepository struct {
	db *eventTable
}

var _ competition.Repository = (*competitionRepository)(nil)

func NewCompetitionRepository(db *DB) competition.Repository {
	return &competitionRepository{db: db.event}
}

// copyEvent returns a deep copy so callers can never alias table state.
func copyEvent(ev *competition.Event) competition.Event {
	out := *ev
	out.Rubric = append([]competition.Criterion(nil), ev.Rubric...)
	out.Judges = append([]competition.Judge(nil), ev.Judges...)
	out.Teams = make([]competition.Team, 0, len(ev.Teams))
	for _, t := range ev.Teams {
		t.Members = append([]string(nil), t.Members...)
		out.Teams = append(out.Teams, t)
	}
	out.Ledger = append([]competition.ScoreEntry(nil), ev.Ledger...)
	return out
}

func (repo *competitionRepository) CreateEvent(ctx context.Context, ev competition.Event) (competition.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := copyEvent(&ev)
	repo.db.table[ev.ID] = &stored
	return ev, nil
}

func (repo *competitionRepository) GetEvent(ctx context.Context, id string) (competition.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ev, ok := repo.db.table[id]; ok {
		return copyEvent(ev), nil
	}
	return competition.Event{}, competition.ErrEventNotFound
}

func (repo *competitionRepository) QueryAllEvents(ctx context.Context) ([]competition.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	events := make([]competition.Event, 0, len(repo.db.table))
	for _, ev := range repo.db.table {
		events = append(events, copyEvent(ev))
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (repo *competitionRepository) AddTeam(ctx context.Context, eventID string, team competition.Team) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ev, ok := repo.db.table[eventID]
	if !ok {
		return competition.ErrEventNotFound
	}
	ev.Teams = append(ev.Teams, team)
	ev.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *competitionRepository) AddJudge(ctx context.Context, eventID string, judge competition.Judge) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ev, ok := repo.db.table[eventID]
	if !ok {
		return competition.ErrEventNotFound
	}
	ev.Judges = append(ev.Judges, judge)
	ev.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *competitionRepository) SetJudgeStatus(ctx context.Context, eventID, judgeID string, status competition.JudgeStatus) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ev, ok := repo.db.table[eventID]
	if !ok {
		return competition.ErrEventNotFound
	}
	for i := range ev.Judges {
		if ev.Judges[i].ID == judgeID {
			ev.Judges[i].Status = status
			ev.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return competition.ErrJudgeNotFound
}

// AppendScoreEntries appends the whole batch under the table's write lock:
// either all entries land or none do, and concurrent batches for the same
// event cannot drop each other's entries.
func (repo *competitionRepository) AppendScoreEntries(ctx context.Context, eventID string, entries []competition.ScoreEntry) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ev, ok := repo.db.table[eventID]
	if !ok {
		return competition.ErrEventNotFound
	}
	ev.Ledger = append(ev.Ledger, entries...)
	ev.UpdatedAt = time.Now().UTC()
	return nil
}
