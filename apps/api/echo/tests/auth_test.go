package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/maendeleo/apps/api/echo"
	"github.com/trezcool/maendeleo/core/user"
	testutil "github.com/trezcool/maendeleo/tests"
)

func Test_authApi_login(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.usrRepo, "Hero", "hero@test.cd", "Sup3rS3cret", user.RoleStudent)

	t.Run("success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/login",
			marchallObj(t, map[string]string{"email": "hero@test.cd", "password": "Sup3rS3cret"}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var res LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, usr.ID, res.User.ID)
		assert.Equal(t, usr.Email, res.User.Email)
		assert.NotEmpty(t, res.Token)
		// password digest never leaves the server
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("email is case-insensitive", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/login",
			marchallObj(t, map[string]string{"email": "HERO@Test.CD", "password": "Sup3rS3cret"}))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	wantInvalid := marchallObj(t, httpErr{Error: "Invalid credentials"})
	tests := []httpTest{
		{
			name: "wrong password", body: marchallObj(t, map[string]string{"email": "hero@test.cd", "password": "nope"}),
			wantCode: http.StatusUnauthorized, wantData: wantInvalid,
		},
		{
			name: "unknown email", body: marchallObj(t, map[string]string{"email": "ghost@test.cd", "password": "Sup3rS3cret"}),
			wantCode: http.StatusUnauthorized, wantData: wantInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/login", tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_loginMigratesLegacyPassword(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateLegacyUser(t, env.usrRepo, "Oldtimer", "old@test.cd", "plaintext-pwd")

	req, rec := newRequest(http.MethodPost, "/api/login",
		marchallObj(t, map[string]string{"email": "old@test.cd", "password": "plaintext-pwd"}))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Token)

	// the stored credential is now a bcrypt digest
	stored, err := env.usrRepo.GetUserByID(usr.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Password, "$2"))
	assert.False(t, stored.HasLegacyPassword())
	assert.NoError(t, stored.CheckPassword("plaintext-pwd"))

	// wrong plaintext never migrates
	req, rec = newRequest(http.MethodPost, "/api/login",
		marchallObj(t, map[string]string{"email": "old@test.cd", "password": "wrong"}))
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_authApi_register(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Taken", "taken@test.cd", "pwd123", user.RoleStudent)

	t.Run("success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/register",
			marchallObj(t, map[string]string{"name": "Newbie", "email": "new@test.cd", "password": "pwd123"}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var res LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.User.ID)
		assert.Equal(t, user.RoleStudent, res.User.Role) // defaulted
		assert.NotEmpty(t, res.Token)

		events := env.broadcaster.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "registration", events[0].Type)
	})

	tests := []httpTest{
		{
			name: "duplicate email", body: marchallObj(t, map[string]string{"name": "Copy", "email": "taken@test.cd", "password": "pwd123"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "password too short", body: marchallObj(t, map[string]string{"name": "Shorty", "email": "short@test.cd", "password": "123"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must be at least 6 characters in length"}),
		},
		{
			name: "unknown role", body: marchallObj(t, map[string]string{"name": "Root", "email": "root@test.cd", "password": "pwd123", "role": "admin"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "this value is not allowed"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/register", tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_tokenGate(t *testing.T) {
	env := setup(t)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teach", "teach@test.cd", "pwd123", user.RoleTeacher)

	tests := []httpTest{
		{name: "no token", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "garbage token", token: "not.a.jwt", wantCode: http.StatusForbidden, wantData: marchallObj(t, errInvalidToken)},
		{name: "valid token", token: getToken(t, teacher), wantCode: http.StatusOK, wantData: []byte(`[]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/lus", tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_passwordReset(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.usrRepo, "Forgetful", "fgt@test.cd", "Old-Passw0rd", user.RoleStudent)

	t.Run("forgot-password is neutral", func(t *testing.T) {
		for _, email := range []string{"fgt@test.cd", "ghost@test.cd"} {
			req, rec := newRequest(http.MethodPost, "/api/forgot-password", marchallObj(t, map[string]string{"email": email}))
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("reset with valid token", func(t *testing.T) {
		token, err := user.MakeToken(usr, env.conf)
		require.NoError(t, err)

		req, rec := newRequest(http.MethodPost, "/api/reset-password", marchallObj(t, map[string]string{
			"uid":              user.EncodeUID(usr),
			"token":            token,
			"password":         "New-Passw0rd",
			"password_confirm": "New-Passw0rd",
		}))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		stored, err := env.usrRepo.GetUserByID(usr.ID)
		require.NoError(t, err)
		assert.NoError(t, stored.CheckPassword("New-Passw0rd"))
		assert.Error(t, stored.CheckPassword("Old-Passw0rd"))
	})

	t.Run("reset with bad token", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/reset-password", marchallObj(t, map[string]string{
			"uid":              user.EncodeUID(usr),
			"token":            "bad-token",
			"password":         "Whatever1",
			"password_confirm": "Whatever1",
		}))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
