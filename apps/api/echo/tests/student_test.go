package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/track"
	"github.com/trezcool/maendeleo/core/user"
	testutil "github.com/trezcool/maendeleo/tests"
)

func Test_studentApi_board(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teach", "teach@test.cd", "pwd123", user.RoleTeacher)
	student := testutil.CreateUser(t, env.usrRepo, "Stud", "stud@test.cd", "pwd123", user.RoleStudent)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other@test.cd", "pwd123", user.RoleStudent)

	published := testutil.CreateLU(t, env.luRepo, 1, "Published", lu.StatusPublished, "")
	draft := testutil.CreateLU(t, env.luRepo, 2, "Draft", lu.StatusDraft, "")
	testutil.CreateLU(t, env.luRepo, 3, "Unassigned", lu.StatusPublished, "")
	require.NoError(t, env.trackSvc.Assign(published.ID, []string{student.ID}))
	require.NoError(t, env.trackSvc.Assign(draft.ID, []string{student.ID}))

	path := fmt.Sprintf("/api/student/%s/lus", student.ID)

	t.Run("only published assigned units", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, student))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var board []track.BoardItem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
		require.Len(t, board, 1)
		assert.Equal(t, published.ID, board[0].ID)
		assert.Equal(t, track.StatusToDo, board[0].Status)
	})

	t.Run("teacher may read any student's board", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, teacher))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("another student may not", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, other))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_studentApi_updateStatus(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teach", "teach@test.cd", "pwd123", user.RoleTeacher)
	student := testutil.CreateUser(t, env.usrRepo, "Stud", "stud@test.cd", "pwd123", user.RoleStudent)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other@test.cd", "pwd123", user.RoleStudent)
	unit := testutil.CreateLU(t, env.luRepo, 1, "Intro", lu.StatusPublished, "")
	require.NoError(t, env.trackSvc.Assign(unit.ID, []string{student.ID}))

	path := fmt.Sprintf("/api/student/%s/lus/%d", student.ID, unit.ID)

	t.Run("success appends activity and broadcasts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, student),
			marchallObj(t, map[string]string{"status": track.StatusInProgress}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		p, err := env.trackRepo.GetProgress(student.ID, unit.ID)
		require.NoError(t, err)
		assert.Equal(t, track.StatusInProgress, p.Status)

		raw, err := env.trackRepo.QueryActivityDates(student.ID)
		require.NoError(t, err)
		assert.Len(t, raw, 1)

		events := env.broadcaster.Events()
		require.Len(t, events, 1)
		assert.Equal(t, core.EventStatusUpdated, events[0].Type)
		assert.Equal(t, student.ID, events[0].UserID)
		assert.Equal(t, unit.ID, events[0].LUID)
	})

	t.Run("writes are self-only, even for teachers", func(t *testing.T) {
		for _, usr := range []user.User{other, teacher} {
			tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
			req, rec := newAuthRequest(http.MethodPut, path, getToken(t, usr),
				marchallObj(t, map[string]string{"status": track.StatusCompleted}))
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		}

		// the row is unchanged
		p, err := env.trackRepo.GetProgress(student.ID, unit.ID)
		require.NoError(t, err)
		assert.Equal(t, track.StatusInProgress, p.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "this value is not allowed"}),
		}
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, student),
			marchallObj(t, map[string]string{"status": "Done-ish"}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unassigned unit", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/student/%s/lus/404404", student.ID), getToken(t, student),
			marchallObj(t, map[string]string{"status": track.StatusCompleted}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_profileApi(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teach", "teach@test.cd", "pwd123", user.RoleTeacher)
	student := testutil.CreateUser(t, env.usrRepo, "Stud", "stud@test.cd", "pwd123", user.RoleStudent)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other@test.cd", "pwd123", user.RoleStudent)
	unit := testutil.CreateLU(t, env.luRepo, 1, "Intro", lu.StatusPublished, "")
	require.NoError(t, env.trackSvc.Assign(unit.ID, []string{student.ID}))
	require.NoError(t, env.trackSvc.SetStatus(student.ID, unit.ID, track.StatusInProgress))

	path := "/api/profile/" + student.ID

	t.Run("retrieve includes activity", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, student))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var res struct {
			user.User
			LearningActivity []string `json:"learningActivity"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, student.ID, res.ID)
		assert.Len(t, res.LearningActivity, 1)
	})

	t.Run("teacher may read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, teacher))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("update is self-only", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, other),
			marchallObj(t, map[string]string{"bio": "hacked"}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, student),
			marchallObj(t, map[string]string{"bio": "Gopher in training"}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		stored, err := env.usrRepo.GetUserByID(student.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gopher in training", stored.Bio)
		assert.Equal(t, student.Name, stored.Name) // blank fields fall back
	})

	t.Run("update with taken email", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		}
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, student),
			marchallObj(t, map[string]string{"email": other.Email}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_studentApi_streaks(t *testing.T) {
	env := setup(t)
	student := testutil.CreateUser(t, env.usrRepo, "Stud", "stud@test.cd", "pwd123", user.RoleStudent)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other@test.cd", "pwd123", user.RoleStudent)

	today := time.Now().UTC()
	for _, d := range []string{
		today.Format("2006-01-02"),
		today.Format("2006-01-02"), // same-day duplicate
		today.AddDate(0, 0, -1).Format("2006-01-02"),
	} {
		require.NoError(t, env.trackRepo.AppendActivity(student.ID, d))
	}

	path := fmt.Sprintf("/api/student/%s/streaks", student.ID)

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, student))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var streaks track.Streaks
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &streaks))
		assert.Equal(t, track.Streaks{Current: 2, Best: 2, Total: 3}, streaks)
	})

	t.Run("another student may not", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, other))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
