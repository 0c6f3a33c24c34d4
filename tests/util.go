package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/user"
)

func NewConfig(t *testing.T) *core.Config {
	conf, err := core.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	conf.Debug = false
	conf.TestMode = true
	return conf
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateLegacyUser stores a plaintext credential, bypassing hashing.
func CreateLegacyUser(t *testing.T, repo user.Repository, name, email, pwd string) user.User {
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  pwd,
		Role:      user.RoleStudent,
		CreatedAt: time.Now().UTC(),
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateLegacyUser() failed: %v", err)
	}
	return usr
}

func CreateLU(
	t *testing.T,
	repo lu.Repository,
	id int64,
	title, status, subjectID string,
	tags ...string,
) lu.LearningUnit {
	if tags == nil {
		tags = []string{}
	}
	unit := lu.LearningUnit{
		ID:        id,
		Title:     title,
		Status:    status,
		Tags:      tags,
		SubjectID: subjectID,
		CreatedAt: time.Now().UTC(),
	}
	unit, err := repo.CreateLearningUnit(unit)
	if err != nil {
		t.Fatalf("CreateLU() failed: %v", err)
	}
	return unit
}

// RecordingBroadcaster captures published events for assertions.
type RecordingBroadcaster struct {
	mu     sync.Mutex
	events []core.Event
}

var _ core.Broadcaster = (*RecordingBroadcaster)(nil)

func (b *RecordingBroadcaster) Broadcast(evt core.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
}

func (b *RecordingBroadcaster) Events() []core.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Event, len(b.events))
	copy(out, b.events)
	return out
}

// NopLogger discards all entries.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}
