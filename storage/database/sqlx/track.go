package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/track"
)

type progressRow struct {
	UserID   string         `db:"user_id"`
	LUID     int64          `db:"lu_id"`
	Status   string         `db:"status"`
	Feedback sql.NullString `db:"feedback"`
	Grade    sql.NullString `db:"grade"`
}

func (r progressRow) toProgress() track.Progress {
	return track.Progress{
		UserID:   r.UserID,
		LUID:     r.LUID,
		Status:   r.Status,
		Feedback: r.Feedback.String,
		Grade:    r.Grade.String,
	}
}

type trackRepository struct {
	db *sqlx.DB
}

var _ track.Repository = (*trackRepository)(nil)

func NewTrackRepository(db *sqlx.DB) track.Repository {
	return &trackRepository{db: db}
}

func (repo *trackRepository) CreateAssignment(userID string, luID int64) error {
	query := `
		INSERT INTO user_progress (user_id, lu_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, lu_id) DO NOTHING`
	if _, err := repo.db.Exec(query, userID, luID, track.StatusToDo); err != nil {
		return core.NewStorageError(errors.Wrap(err, "creating assignment"))
	}
	return nil
}

func (repo *trackRepository) GetProgress(userID string, luID int64) (track.Progress, error) {
	var row progressRow
	query := `
		SELECT user_id, lu_id, status, feedback, grade
		FROM user_progress
		WHERE user_id = $1 AND lu_id = $2`
	if err := repo.db.Get(&row, query, userID, luID); err != nil {
		if err == sql.ErrNoRows {
			return track.Progress{}, track.ErrNotFound
		}
		return track.Progress{}, core.NewStorageError(errors.Wrap(err, "getting progress"))
	}
	return row.toProgress(), nil
}

func (repo *trackRepository) QueryProgressByUser(userID string) ([]track.Progress, error) {
	var rows []progressRow
	query := `
		SELECT user_id, lu_id, status, feedback, grade
		FROM user_progress
		WHERE user_id = $1`
	if err := repo.db.Select(&rows, query, userID); err != nil {
		return nil, core.NewStorageError(errors.Wrap(err, "querying progress"))
	}
	progress := make([]track.Progress, len(rows))
	for i, row := range rows {
		progress[i] = row.toProgress()
	}
	return progress, nil
}

func (repo *trackRepository) QueryAllProgress() ([]track.Progress, error) {
	var rows []progressRow
	query := `SELECT user_id, lu_id, status, feedback, grade FROM user_progress`
	if err := repo.db.Select(&rows, query); err != nil {
		return nil, core.NewStorageError(errors.Wrap(err, "querying progress"))
	}
	progress := make([]track.Progress, len(rows))
	for i, row := range rows {
		progress[i] = row.toProgress()
	}
	return progress, nil
}

func (repo *trackRepository) SetStatus(userID string, luID int64, status string) error {
	query := `UPDATE user_progress SET status = $3 WHERE user_id = $1 AND lu_id = $2`
	res, err := repo.db.Exec(query, userID, luID, status)
	if err != nil {
		return core.NewStorageError(errors.Wrap(err, "updating status"))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return track.ErrNotFound
	}
	return nil
}

func (repo *trackRepository) SetGrade(userID string, luID int64, feedback, grade string) error {
	query := `UPDATE user_progress SET feedback = $3, grade = $4 WHERE user_id = $1 AND lu_id = $2`
	res, err := repo.db.Exec(query, userID, luID, nullString(feedback), nullString(grade))
	if err != nil {
		return core.NewStorageError(errors.Wrap(err, "updating grade"))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return track.ErrNotFound
	}
	return nil
}

func (repo *trackRepository) AppendActivity(userID, date string) error {
	query := `INSERT INTO user_activity (user_id, activity_date) VALUES ($1, $2)`
	if _, err := repo.db.Exec(query, userID, date); err != nil {
		return core.NewStorageError(errors.Wrap(err, "recording activity"))
	}
	return nil
}

func (repo *trackRepository) QueryActivityDates(userID string) ([]string, error) {
	var dates []string
	query := `SELECT to_char(activity_date, 'YYYY-MM-DD') FROM user_activity WHERE user_id = $1 ORDER BY id`
	if err := repo.db.Select(&dates, query, userID); err != nil {
		return nil, core.NewStorageError(errors.Wrap(err, "querying activity"))
	}
	return dates, nil
}

func (repo *trackRepository) QueryAllActivity() ([]track.Activity, error) {
	type activityRow struct {
		UserID string `db:"user_id"`
		Date   string `db:"date"`
	}
	var rows []activityRow
	query := `SELECT user_id, to_char(activity_date, 'YYYY-MM-DD') AS date FROM user_activity ORDER BY id`
	if err := repo.db.Select(&rows, query); err != nil {
		return nil, core.NewStorageError(errors.Wrap(err, "querying activity"))
	}
	activity := make([]track.Activity, len(rows))
	for i, row := range rows {
		activity[i] = track.Activity{UserID: row.UserID, Date: row.Date}
	}
	return activity, nil
}
