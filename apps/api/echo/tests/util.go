package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/maendeleo/apps/api/echo"
	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/track"
	"github.com/trezcool/maendeleo/core/user"
	emailsvc "github.com/trezcool/maendeleo/services/email"
	inmemdb "github.com/trezcool/maendeleo/storage/database/inmem"
	testutil "github.com/trezcool/maendeleo/tests"
)

var (
	errMissingToken = httpErr{Error: "Access denied. Token missing."}
	errInvalidToken = httpErr{Error: "Invalid or expired token."}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

type testEnv struct {
	app  Server
	conf *core.Config
	db   *inmemdb.DB

	usrRepo   user.Repository
	luRepo    lu.Repository
	trackRepo track.Repository

	usrSvc   user.Service
	luSvc    lu.Service
	trackSvc track.Service

	broadcaster *testutil.RecordingBroadcaster
}

func setup(t *testing.T) *testEnv {
	conf := testutil.NewConfig(t)

	// successive creates within the same millisecond must not collide
	origNewID := lu.NewID
	nextID := time.Now().UnixMilli()
	lu.NewID = func() int64 {
		nextID++
		return nextID
	}
	t.Cleanup(func() { lu.NewID = origNewID })

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	env := &testEnv{
		conf:        conf,
		db:          db,
		usrRepo:     inmemdb.NewUserRepository(db),
		luRepo:      inmemdb.NewLURepository(db),
		trackRepo:   inmemdb.NewTrackRepository(db),
		broadcaster: &testutil.RecordingBroadcaster{},
	}

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	env.usrSvc = user.NewServiceMock(env.usrRepo, mailSvc, conf)
	env.luSvc = lu.NewService(env.luRepo)
	env.trackSvc = track.NewService(env.trackRepo, env.luRepo, env.usrRepo)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// set up server
	env.app = NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         testutil.NopLogger{},
			UserSvc:        env.usrSvc,
			LUSvc:          env.luSvc,
			TrackSvc:       env.trackSvc,
			Broadcaster:    env.broadcaster,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)
	return env
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
