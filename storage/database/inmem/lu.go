package inmemdb

import "github.com/trezcool/maendeleo/core/lu"

type luRepository struct {
	db *DB
}

var _ lu.Repository = (*luRepository)(nil)

func NewLURepository(db *DB) lu.Repository {
	return &luRepository{db: db}
}

func (r *luRepository) CreateLearningUnit(unit lu.LearningUnit) (lu.LearningUnit, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.units[unit.ID] = &unit
	return unit, nil
}

func (r *luRepository) GetLearningUnitByID(id int64) (lu.LearningUnit, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if unit, ok := r.db.units[id]; ok {
		return *unit, nil
	}
	return lu.LearningUnit{}, lu.ErrNotFound
}

func (r *luRepository) QueryAllLearningUnits() ([]lu.LearningUnit, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	units := make([]lu.LearningUnit, 0, len(r.db.units))
	for _, unit := range r.db.units {
		units = append(units, *unit)
	}
	return units, nil
}

func (r *luRepository) QueryLearningUnitsBySubject(subjectID string) ([]lu.LearningUnit, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var units []lu.LearningUnit
	for _, unit := range r.db.units {
		if unit.SubjectID == subjectID {
			units = append(units, *unit)
		}
	}
	return units, nil
}

func (r *luRepository) UpdateLearningUnit(unit lu.LearningUnit) (lu.LearningUnit, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.units[unit.ID]; !ok {
		return lu.LearningUnit{}, lu.ErrNotFound
	}
	r.db.units[unit.ID] = &unit
	return unit, nil
}

func (r *luRepository) DeleteLearningUnit(id int64) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	delete(r.db.units, id)
	// cascade: drop progress rows for the unit
	for key := range r.db.progress {
		if key.luID == id {
			delete(r.db.progress, key)
		}
	}
	return nil
}

func (r *luRepository) QuerySubjectsByMentor(mentorID string) ([]lu.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var subjects []lu.Subject
	for _, subjectID := range r.db.mentorSubjects[mentorID] {
		if subject, ok := r.db.subjects[subjectID]; ok {
			subjects = append(subjects, *subject)
		}
	}
	return subjects, nil
}

func (r *luRepository) MentorTeaches(mentorID, subjectID string) (bool, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, id := range r.db.mentorSubjects[mentorID] {
		if id == subjectID {
			return true, nil
		}
	}
	return false, nil
}
