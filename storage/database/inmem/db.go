package inmemdb

import (
	"sync"

	"github.com/tujenge/shindano/core/competition"
	"github.com/tujenge/shindano/core/user"
)

// DB is an in-memory stand-in for the real database, used by tests and as
// a DEV fallback. Each table guards itself with its own RWMutex; the event
// table's write lock serializes read-modify-write cycles per process, which
// is the consistency contract the score ledger relies on.
type DB struct {
	user  *userTable
	event *eventTable
}

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	eventTable struct {
		mutex sync.RWMutex
		table map[string]*competition.Event
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:  &userTable{table: make(map[string]*user.User)},
		event: &eventTable{table: make(map[string]*competition.Event)},
	}
	return db, nil
}
