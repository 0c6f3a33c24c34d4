package track_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/track"
	"github.com/trezcool/maendeleo/core/user"
	inmemdb "github.com/trezcool/maendeleo/storage/database/inmem"
	testutil "github.com/trezcool/maendeleo/tests"
)

type fixture struct {
	db        *inmemdb.DB
	usrRepo   user.Repository
	luRepo    lu.Repository
	trackRepo track.Repository
	svc       track.Service
}

func newFixture(t *testing.T) fixture {
	db, err := inmemdb.Open()
	require.NoError(t, err)

	f := fixture{
		db:        db,
		usrRepo:   inmemdb.NewUserRepository(db),
		luRepo:    inmemdb.NewLURepository(db),
		trackRepo: inmemdb.NewTrackRepository(db),
	}
	f.svc = track.NewService(f.trackRepo, f.luRepo, f.usrRepo)
	return f
}

func TestAssignIsIdempotent(t *testing.T) {
	f := newFixture(t)
	student := testutil.CreateUser(t, f.usrRepo, "Student", "stud@test.cd", "pwd123", user.RoleStudent)
	unit := testutil.CreateLU(t, f.luRepo, 1, "Intro", lu.StatusPublished, "")

	require.NoError(t, f.svc.Assign(unit.ID, []string{student.ID}))

	require.NoError(t, f.svc.SetStatus(student.ID, unit.ID, track.StatusInProgress))

	// re-assigning must not reset existing progress
	require.NoError(t, f.svc.Assign(unit.ID, []string{student.ID}))

	p, err := f.trackRepo.GetProgress(student.ID, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, track.StatusInProgress, p.Status)
}

func TestAssignUnknownUnit(t *testing.T) {
	f := newFixture(t)
	student := testutil.CreateUser(t, f.usrRepo, "Student", "stud@test.cd", "pwd123", user.RoleStudent)

	err := f.svc.Assign(404, []string{student.ID})
	assert.Equal(t, lu.ErrNotFound, err)
}

func TestSetStatusAppendsActivity(t *testing.T) {
	f := newFixture(t)
	student := testutil.CreateUser(t, f.usrRepo, "Student", "stud@test.cd", "pwd123", user.RoleStudent)
	unit := testutil.CreateLU(t, f.luRepo, 1, "Intro", lu.StatusPublished, "")
	require.NoError(t, f.svc.Assign(unit.ID, []string{student.ID}))

	require.NoError(t, f.svc.SetStatus(student.ID, unit.ID, track.StatusInProgress))
	require.NoError(t, f.svc.SetStatus(student.ID, unit.ID, track.StatusCompleted))

	// every status change appends, duplicates included
	raw, err := f.trackRepo.QueryActivityDates(student.ID)
	require.NoError(t, err)
	assert.Len(t, raw, 2)

	// deduplicated for consumers
	dates, err := f.svc.ActivityDates(student.ID)
	require.NoError(t, err)
	today := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, []string{today}, dates)
}

func TestSetStatusValidation(t *testing.T) {
	f := newFixture(t)
	student := testutil.CreateUser(t, f.usrRepo, "Student", "stud@test.cd", "pwd123", user.RoleStudent)
	unit := testutil.CreateLU(t, f.luRepo, 1, "Intro", lu.StatusPublished, "")
	require.NoError(t, f.svc.Assign(unit.ID, []string{student.ID}))

	assert.Equal(t, track.ErrUnknownStatus, f.svc.SetStatus(student.ID, unit.ID, "Done"))
	assert.Equal(t, track.ErrNotFound, f.svc.SetStatus(student.ID, 404, track.StatusCompleted))
}

func TestSetGradeLeavesStatusAndActivity(t *testing.T) {
	f := newFixture(t)
	student := testutil.CreateUser(t, f.usrRepo, "Student", "stud@test.cd", "pwd123", user.RoleStudent)
	unit := testutil.CreateLU(t, f.luRepo, 1, "Intro", lu.StatusPublished, "")
	require.NoError(t, f.svc.Assign(unit.ID, []string{student.ID}))

	require.NoError(t, f.svc.SetGrade(student.ID, unit.ID, "Good work", "A"))

	p, err := f.trackRepo.GetProgress(student.ID, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, track.StatusToDo, p.Status)
	assert.Equal(t, "Good work", p.Feedback)
	assert.Equal(t, "A", p.Grade)

	raw, err := f.trackRepo.QueryActivityDates(student.ID)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestStudentBoardHidesDrafts(t *testing.T) {
	f := newFixture(t)
	student := testutil.CreateUser(t, f.usrRepo, "Student", "stud@test.cd", "pwd123", user.RoleStudent)
	published := testutil.CreateLU(t, f.luRepo, 1, "Intro", lu.StatusPublished, "")
	draft := testutil.CreateLU(t, f.luRepo, 2, "WIP", lu.StatusDraft, "")
	legacy := testutil.CreateLU(t, f.luRepo, 3, "Old", "", "") // empty status is published

	require.NoError(t, f.svc.Assign(published.ID, []string{student.ID}))
	require.NoError(t, f.svc.Assign(draft.ID, []string{student.ID}))
	require.NoError(t, f.svc.Assign(legacy.ID, []string{student.ID}))

	board, err := f.svc.StudentBoard(student.ID)
	require.NoError(t, err)

	ids := make([]int64, len(board))
	for i, item := range board {
		ids[i] = item.ID
	}
	assert.ElementsMatch(t, []int64{published.ID, legacy.ID}, ids)
}

func TestClassRoster(t *testing.T) {
	f := newFixture(t)
	s1 := testutil.CreateUser(t, f.usrRepo, "One", "one@test.cd", "pwd123", user.RoleStudent)
	s2 := testutil.CreateUser(t, f.usrRepo, "Two", "two@test.cd", "pwd123", user.RoleStudent)
	testutil.CreateUser(t, f.usrRepo, "Teach", "teach@test.cd", "pwd123", user.RoleTeacher)
	unit := testutil.CreateLU(t, f.luRepo, 1, "Intro", lu.StatusPublished, "")

	require.NoError(t, f.svc.Assign(unit.ID, []string{s1.ID}))
	require.NoError(t, f.svc.SetStatus(s1.ID, unit.ID, track.StatusCompleted))
	require.NoError(t, f.svc.SetGrade(s1.ID, unit.ID, "Nice", "B"))

	roster, err := f.svc.ClassRoster()
	require.NoError(t, err)
	require.Len(t, roster, 2) // teachers excluded

	byID := make(map[string]int, len(roster))
	for i, entry := range roster {
		byID[entry.ID] = i
	}

	e1 := roster[byID[s1.ID]]
	require.Contains(t, e1.Progress, unit.ID)
	assert.Equal(t, track.StatusCompleted, e1.Progress[unit.ID].Status)
	assert.Equal(t, "B", e1.Progress[unit.ID].Grade)
	assert.Len(t, e1.LearningActivity, 1)

	e2 := roster[byID[s2.ID]]
	assert.Empty(t, e2.Progress)
	assert.Empty(t, e2.LearningActivity)
}

func TestSubjectStudents(t *testing.T) {
	f := newFixture(t)
	f.db.AddSubject(lu.Subject{ID: "go", Name: "Go"})
	s1 := testutil.CreateUser(t, f.usrRepo, "One", "one@test.cd", "pwd123", user.RoleStudent)
	s2 := testutil.CreateUser(t, f.usrRepo, "Two", "two@test.cd", "pwd123", user.RoleStudent)
	inSubject := testutil.CreateLU(t, f.luRepo, 1, "Intro", lu.StatusPublished, "go")
	outside := testutil.CreateLU(t, f.luRepo, 2, "Other", lu.StatusPublished, "")

	require.NoError(t, f.svc.Assign(inSubject.ID, []string{s1.ID}))
	require.NoError(t, f.svc.Assign(outside.ID, []string{s2.ID}))

	students, err := f.svc.SubjectStudents("go")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, s1.ID, students[0].ID)
}
