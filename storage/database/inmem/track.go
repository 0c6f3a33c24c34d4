package inmemdb

import "github.com/trezcool/maendeleo/core/track"

type trackRepository struct {
	db *DB
}

var _ track.Repository = (*trackRepository)(nil)

func NewTrackRepository(db *DB) track.Repository {
	return &trackRepository{db: db}
}

func (r *trackRepository) CreateAssignment(userID string, luID int64) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	key := progressKey{userID: userID, luID: luID}
	if _, ok := r.db.progress[key]; ok {
		return nil
	}
	r.db.progress[key] = &track.Progress{
		UserID: userID,
		LUID:   luID,
		Status: track.StatusToDo,
	}
	return nil
}

func (r *trackRepository) GetProgress(userID string, luID int64) (track.Progress, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if p, ok := r.db.progress[progressKey{userID: userID, luID: luID}]; ok {
		return *p, nil
	}
	return track.Progress{}, track.ErrNotFound
}

func (r *trackRepository) QueryProgressByUser(userID string) ([]track.Progress, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var progress []track.Progress
	for key, p := range r.db.progress {
		if key.userID == userID {
			progress = append(progress, *p)
		}
	}
	return progress, nil
}

func (r *trackRepository) QueryAllProgress() ([]track.Progress, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	progress := make([]track.Progress, 0, len(r.db.progress))
	for _, p := range r.db.progress {
		progress = append(progress, *p)
	}
	return progress, nil
}

func (r *trackRepository) SetStatus(userID string, luID int64, status string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	p, ok := r.db.progress[progressKey{userID: userID, luID: luID}]
	if !ok {
		return track.ErrNotFound
	}
	p.Status = status
	return nil
}

func (r *trackRepository) SetGrade(userID string, luID int64, feedback, grade string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	p, ok := r.db.progress[progressKey{userID: userID, luID: luID}]
	if !ok {
		return track.ErrNotFound
	}
	p.Feedback = feedback
	p.Grade = grade
	return nil
}

func (r *trackRepository) AppendActivity(userID, date string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.activity = append(r.db.activity, track.Activity{UserID: userID, Date: date})
	return nil
}

func (r *trackRepository) QueryActivityDates(userID string) ([]string, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var dates []string
	for _, a := range r.db.activity {
		if a.UserID == userID {
			dates = append(dates, a.Date)
		}
	}
	return dates, nil
}

func (r *trackRepository) QueryAllActivity() ([]track.Activity, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	activity := make([]track.Activity, len(r.db.activity))
	copy(activity, r.db.activity)
	return activity, nil
}
