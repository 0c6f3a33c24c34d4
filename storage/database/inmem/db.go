package inmemdb

import (
	"sync"

	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/track"
	"github.com/trezcool/maendeleo/core/user"
)

type (
	DB struct {
		mutex sync.RWMutex

		users          map[string]*user.User
		units          map[int64]*lu.LearningUnit
		subjects       map[string]*lu.Subject
		mentorSubjects map[string][]string // mentor ID -> subject IDs
		progress       map[progressKey]*track.Progress
		activity       []track.Activity
	}

	progressKey struct {
		userID string
		luID   int64
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:          make(map[string]*user.User),
		units:          make(map[int64]*lu.LearningUnit),
		subjects:       make(map[string]*lu.Subject),
		mentorSubjects: make(map[string][]string),
		progress:       make(map[progressKey]*track.Progress),
	}
	return db, nil
}

// AddSubject seeds a subject; test fixture helper.
func (db *DB) AddSubject(subject lu.Subject) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.subjects[subject.ID] = &subject
}

// AssignMentor links a mentor to a subject; test fixture helper.
func (db *DB) AssignMentor(mentorID, subjectID string) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	for _, id := range db.mentorSubjects[mentorID] {
		if id == subjectID {
			return
		}
	}
	db.mentorSubjects[mentorID] = append(db.mentorSubjects[mentorID], subjectID)
}
