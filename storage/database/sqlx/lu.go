package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/lu"
)

type luRow struct {
	ID        int64          `db:"id"`
	Title     string         `db:"title"`
	Module    sql.NullString `db:"module"`
	DueDate   sql.NullString `db:"due_date"`
	Status    sql.NullString `db:"status"`
	Tags      pq.StringArray `db:"tags"`
	SubjectID sql.NullString `db:"subject_id"`
	CreatedAt sql.NullTime   `db:"created_at"`
}

func (r luRow) toUnit() lu.LearningUnit {
	unit := lu.LearningUnit{
		ID:        r.ID,
		Title:     r.Title,
		Module:    r.Module.String,
		DueDate:   r.DueDate.String,
		Status:    r.Status.String,
		Tags:      []string(r.Tags),
		SubjectID: r.SubjectID.String,
	}
	if unit.Tags == nil {
		unit.Tags = []string{}
	}
	if r.CreatedAt.Valid {
		unit.CreatedAt = r.CreatedAt.Time
	}
	return unit
}

type luRepository struct {
	db *sqlx.DB
}

var _ lu.Repository = (*luRepository)(nil)

func NewLURepository(db *sqlx.DB) lu.Repository {
	return &luRepository{db: db}
}

func (repo *luRepository) CreateLearningUnit(unit lu.LearningUnit) (lu.LearningUnit, error) {
	query := `
		INSERT INTO learning_units (id, title, module, due_date, status, tags, subject_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.Exec(query,
		unit.ID, unit.Title,
		nullString(unit.Module), nullString(unit.DueDate), nullString(unit.Status),
		pq.StringArray(unit.Tags), nullString(unit.SubjectID), unit.CreatedAt,
	)
	if err != nil {
		return lu.LearningUnit{}, core.NewStorageError(errors.Wrap(err, "creating learning unit"))
	}
	return unit, nil
}

func (repo *luRepository) GetLearningUnitByID(id int64) (lu.LearningUnit, error) {
	var row luRow
	err := repo.db.Get(&row, `SELECT id, title, module, to_char(due_date, 'YYYY-MM-DD') AS due_date, status, tags, subject_id, created_at FROM learning_units WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return lu.LearningUnit{}, lu.ErrNotFound
		}
		return lu.LearningUnit{}, core.NewStorageError(errors.Wrap(err, "getting learning unit"))
	}
	return row.toUnit(), nil
}

func (repo *luRepository) QueryAllLearningUnits() ([]lu.LearningUnit, error) {
	var rows []luRow
	if err := repo.db.Select(&rows, `SELECT id, title, module, to_char(due_date, 'YYYY-MM-DD') AS due_date, status, tags, subject_id, created_at FROM learning_units`); err != nil {
		return nil, core.NewStorageError(errors.Wrap(err, "querying learning units"))
	}
	units := make([]lu.LearningUnit, len(rows))
	for i, row := range rows {
		units[i] = row.toUnit()
	}
	return units, nil
}

func (repo *luRepository) QueryLearningUnitsBySubject(subjectID string) ([]lu.LearningUnit, error) {
	var rows []luRow
	err := repo.db.Select(&rows, `SELECT id, title, module, to_char(due_date, 'YYYY-MM-DD') AS due_date, status, tags, subject_id, created_at FROM learning_units WHERE subject_id = $1`, subjectID)
	if err != nil {
		return nil, core.NewStorageError(errors.Wrap(err, "querying learning units by subject"))
	}
	units := make([]lu.LearningUnit, len(rows))
	for i, row := range rows {
		units[i] = row.toUnit()
	}
	return units, nil
}

func (repo *luRepository) UpdateLearningUnit(unit lu.LearningUnit) (lu.LearningUnit, error) {
	query := `
		UPDATE learning_units
		SET title = $2, module = $3, due_date = $4, status = $5, tags = $6
		WHERE id = $1`
	res, err := repo.db.Exec(query,
		unit.ID, unit.Title,
		nullString(unit.Module), nullString(unit.DueDate), nullString(unit.Status),
		pq.StringArray(unit.Tags),
	)
	if err != nil {
		return lu.LearningUnit{}, core.NewStorageError(errors.Wrap(err, "updating learning unit"))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return lu.LearningUnit{}, lu.ErrNotFound
	}
	return unit, nil
}

func (repo *luRepository) DeleteLearningUnit(id int64) error {
	// user_progress rows cascade at the schema level
	if _, err := repo.db.Exec(`DELETE FROM learning_units WHERE id = $1`, id); err != nil {
		return core.NewStorageError(errors.Wrap(err, "deleting learning unit"))
	}
	return nil
}

func (repo *luRepository) QuerySubjectsByMentor(mentorID string) ([]lu.Subject, error) {
	type subjectRow struct {
		ID          string         `db:"id"`
		Name        string         `db:"name"`
		Description sql.NullString `db:"description"`
	}
	var rows []subjectRow
	query := `
		SELECT s.id, s.name, s.description
		FROM subjects s
		JOIN mentor_subjects ms ON ms.subject_id = s.id
		WHERE ms.mentor_id = $1`
	if err := repo.db.Select(&rows, query, mentorID); err != nil {
		return nil, core.NewStorageError(errors.Wrap(err, "querying mentor subjects"))
	}
	subjects := make([]lu.Subject, len(rows))
	for i, row := range rows {
		subjects[i] = lu.Subject{ID: row.ID, Name: row.Name, Description: row.Description.String}
	}
	return subjects, nil
}

func (repo *luRepository) MentorTeaches(mentorID, subjectID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM mentor_subjects WHERE mentor_id = $1 AND subject_id = $2`
	if err := repo.db.Get(&count, query, mentorID, subjectID); err != nil {
		return false, core.NewStorageError(errors.Wrap(err, "checking mentor subject"))
	}
	return count > 0, nil
}
