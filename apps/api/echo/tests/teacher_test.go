package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/maendeleo/apps/api/echo"
	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/track"
	"github.com/trezcool/maendeleo/core/user"
	testutil "github.com/trezcool/maendeleo/tests"
)

func Test_teacherApi_roleGate(t *testing.T) {
	env := setup(t)
	student := testutil.CreateUser(t, env.usrRepo, "Student", "stud@test.cd", "pwd123", user.RoleStudent)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{name: "roster", method: http.MethodGet, path: "/api/teacher/students"},
		{name: "query units", method: http.MethodGet, path: "/api/lus"},
		{name: "create unit", method: http.MethodPost, path: "/api/lus"},
		{name: "grade", method: http.MethodPut, path: "/api/teacher/grade/x/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, studentToken)
			env.app.ServeHTTP(rec, req)
			tt.wantCode = http.StatusForbidden
			tt.wantData = marchallObj(t, errForbidden)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_teacherApi_createAndQuery(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teach", "teach@test.cd", "pwd123", user.RoleTeacher)
	s1 := testutil.CreateUser(t, env.usrRepo, "One", "one@test.cd", "pwd123", user.RoleStudent)
	s2 := testutil.CreateUser(t, env.usrRepo, "Two", "two@test.cd", "pwd123", user.RoleStudent)
	token := getToken(t, teacher)

	var created lu.LearningUnit

	t.Run("create with assignment fan-out", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/lus", token, marchallObj(t, map[string]interface{}{
			"title":     "Goroutines 101",
			"module":    "Concurrency",
			"tags":      []string{"go", "channels"},
			"assignees": []string{s1.ID, s2.ID},
		}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, lu.StatusPublished, created.Status) // defaulted
		assert.Equal(t, []string{"go", "channels"}, created.Tags)

		for _, s := range []user.User{s1, s2} {
			p, err := env.trackRepo.GetProgress(s.ID, created.ID)
			require.NoError(t, err)
			assert.Equal(t, track.StatusToDo, p.Status)
		}

		events := env.broadcaster.Events()
		require.Len(t, events, 1)
		assert.Equal(t, core.EventNewLU, events[0].Type)
		assert.Equal(t, created.ID, events[0].LUID)
	})

	t.Run("draft creation does not broadcast", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/lus", token, marchallObj(t, map[string]interface{}{
			"title":  "Secret draft",
			"status": "Draft",
		}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, env.broadcaster.Events(), 1) // unchanged
	})

	t.Run("comma-separated tags payload", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/lus", token, marchallObj(t, map[string]interface{}{
			"title": "Tags as string",
			"tags":  "go, testing",
		}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var unit lu.LearningUnit
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unit))
		assert.Equal(t, []string{"go", "testing"}, unit.Tags)
	})

	t.Run("query with assignees", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/lus", token)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var units []LUWithAssignees
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &units))
		require.Len(t, units, 3)

		byID := make(map[int64]LUWithAssignees, len(units))
		for _, u := range units {
			byID[u.ID] = u
		}
		assert.ElementsMatch(t, []string{s1.ID, s2.ID}, byID[created.ID].Assignees)
	})
}

func Test_teacherApi_updateAndDelete(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teach", "teach@test.cd", "pwd123", user.RoleTeacher)
	student := testutil.CreateUser(t, env.usrRepo, "Stud", "stud@test.cd", "pwd123", user.RoleStudent)
	unit := testutil.CreateLU(t, env.luRepo, 1, "Old title", lu.StatusPublished, "")
	require.NoError(t, env.trackSvc.Assign(unit.ID, []string{student.ID}))
	token := getToken(t, teacher)

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/lus/%d", unit.ID), token,
			marchallObj(t, map[string]interface{}{"title": "New title", "status": "Draft"}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		stored, err := env.luRepo.GetLearningUnitByID(unit.ID)
		require.NoError(t, err)
		assert.Equal(t, "New title", stored.Title)
		assert.Equal(t, lu.StatusDraft, stored.Status)
	})

	t.Run("update unknown unit", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}
		req, rec := newAuthRequest(http.MethodPut, "/api/lus/404404", token,
			marchallObj(t, map[string]interface{}{"title": "whatever"}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("delete cascades to progress", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/lus/%d", unit.ID), token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := env.luRepo.GetLearningUnitByID(unit.ID)
		assert.Equal(t, lu.ErrNotFound, err)
		_, err = env.trackRepo.GetProgress(student.ID, unit.ID)
		assert.Equal(t, track.ErrNotFound, err)
	})
}

func Test_teacherApi_grade(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teach", "teach@test.cd", "pwd123", user.RoleTeacher)
	student := testutil.CreateUser(t, env.usrRepo, "Stud", "stud@test.cd", "pwd123", user.RoleStudent)
	unit := testutil.CreateLU(t, env.luRepo, 1, "Intro", lu.StatusPublished, "")
	require.NoError(t, env.trackSvc.Assign(unit.ID, []string{student.ID}))
	require.NoError(t, env.trackSvc.SetStatus(student.ID, unit.ID, track.StatusCompleted))
	token := getToken(t, teacher)

	t.Run("success leaves status untouched", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/teacher/grade/%s/%d", student.ID, unit.ID), token,
			marchallObj(t, map[string]string{"feedback": "Solid work", "grade": "A"}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		p, err := env.trackRepo.GetProgress(student.ID, unit.ID)
		require.NoError(t, err)
		assert.Equal(t, track.StatusCompleted, p.Status)
		assert.Equal(t, "Solid work", p.Feedback)
		assert.Equal(t, "A", p.Grade)
	})

	t.Run("unassigned pair", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/teacher/grade/%s/404404", student.ID), token,
			marchallObj(t, map[string]string{"grade": "F"}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_teacherApi_roster(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teach", "teach@test.cd", "pwd123", user.RoleTeacher)
	student := testutil.CreateUser(t, env.usrRepo, "Stud", "stud@test.cd", "pwd123", user.RoleStudent)
	unit := testutil.CreateLU(t, env.luRepo, 1, "Intro", lu.StatusPublished, "")
	require.NoError(t, env.trackSvc.Assign(unit.ID, []string{student.ID}))
	require.NoError(t, env.trackSvc.SetStatus(student.ID, unit.ID, track.StatusInProgress))

	req, rec := newAuthRequest(http.MethodGet, "/api/teacher/students", getToken(t, teacher))
	env.app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var roster []track.RosterEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roster))
	require.Len(t, roster, 1) // the teacher is not on their own roster

	entry := roster[0]
	assert.Equal(t, student.ID, entry.ID)
	require.Contains(t, entry.Progress, unit.ID)
	assert.Equal(t, track.StatusInProgress, entry.Progress[unit.ID].Status)
	require.Len(t, entry.LearningActivity, 1)
}
