package lu

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound    = errors.New("learning unit not found")
	ErrNotTeaching = errors.New("mentor does not teach this subject")

	// NewID derives a LearningUnit ID from the clock; mockable.
	NewID = func() int64 { return time.Now().UnixMilli() }
)

type (
	Repository interface {
		CreateLearningUnit(unit LearningUnit) (LearningUnit, error)
		GetLearningUnitByID(id int64) (LearningUnit, error)
		QueryAllLearningUnits() ([]LearningUnit, error)
		QueryLearningUnitsBySubject(subjectID string) ([]LearningUnit, error)
		UpdateLearningUnit(unit LearningUnit) (LearningUnit, error)
		// DeleteLearningUnit removes the unit; progress rows cascade.
		DeleteLearningUnit(id int64) error
		QuerySubjectsByMentor(mentorID string) ([]Subject, error)
		MentorTeaches(mentorID, subjectID string) (bool, error)
	}

	Service interface {
		Create(nu NewLearningUnit) (LearningUnit, error)
		GetByID(id int64) (LearningUnit, error)
		QueryAll() ([]LearningUnit, error)
		Update(id int64, uu UpdateLearningUnit) (LearningUnit, error)
		Delete(id int64) error

		// mentor operations; all fail with ErrNotTeaching unless a
		// mentor_subjects row links the mentor to the subject.
		MentorSubjects(mentorID string) ([]Subject, error)
		SubjectUnits(mentorID, subjectID string) ([]LearningUnit, error)
		CreateForSubject(mentorID, subjectID string, nu NewLearningUnit) (LearningUnit, error)
		UpdateAsMentor(mentorID string, id int64, uu UpdateLearningUnit) (LearningUnit, error)
		DeleteAsMentor(mentorID string, id int64) error
		EnsureMentorTeaches(mentorID, subjectID string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(nu NewLearningUnit) (LearningUnit, error) {
	unit := LearningUnit{
		ID:        NewID(),
		Title:     nu.Title,
		Module:    nu.Module,
		DueDate:   nu.DueDate,
		Status:    nu.Status,
		Tags:      nu.TagList(),
		SubjectID: nu.SubjectID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateLearningUnit(unit)
}

func (svc *service) GetByID(id int64) (LearningUnit, error) {
	return svc.repo.GetLearningUnitByID(id)
}

func (svc *service) QueryAll() ([]LearningUnit, error) {
	return svc.repo.QueryAllLearningUnits()
}

func (svc *service) Update(id int64, uu UpdateLearningUnit) (LearningUnit, error) {
	unit, err := svc.repo.GetLearningUnitByID(id)
	if err != nil {
		return LearningUnit{}, err
	}
	unit.Title = uu.Title
	unit.Module = uu.Module
	unit.DueDate = uu.DueDate
	unit.Status = uu.Status
	unit.Tags = uu.TagList()
	return svc.repo.UpdateLearningUnit(unit)
}

func (svc *service) Delete(id int64) error {
	if _, err := svc.repo.GetLearningUnitByID(id); err != nil {
		return err
	}
	return svc.repo.DeleteLearningUnit(id)
}

func (svc *service) MentorSubjects(mentorID string) ([]Subject, error) {
	return svc.repo.QuerySubjectsByMentor(mentorID)
}

func (svc *service) EnsureMentorTeaches(mentorID, subjectID string) error {
	teaches, err := svc.repo.MentorTeaches(mentorID, subjectID)
	if err != nil {
		return errors.Wrap(err, "checking mentor subject")
	}
	if !teaches {
		return ErrNotTeaching
	}
	return nil
}

func (svc *service) SubjectUnits(mentorID, subjectID string) ([]LearningUnit, error) {
	if err := svc.EnsureMentorTeaches(mentorID, subjectID); err != nil {
		return nil, err
	}
	return svc.repo.QueryLearningUnitsBySubject(subjectID)
}

func (svc *service) CreateForSubject(mentorID, subjectID string, nu NewLearningUnit) (LearningUnit, error) {
	if err := svc.EnsureMentorTeaches(mentorID, subjectID); err != nil {
		return LearningUnit{}, err
	}
	nu.SubjectID = subjectID
	return svc.Create(nu)
}

func (svc *service) UpdateAsMentor(mentorID string, id int64, uu UpdateLearningUnit) (LearningUnit, error) {
	unit, err := svc.repo.GetLearningUnitByID(id)
	if err != nil {
		return LearningUnit{}, err
	}
	if err = svc.EnsureMentorTeaches(mentorID, unit.SubjectID); err != nil {
		return LearningUnit{}, err
	}
	return svc.Update(id, uu)
}

func (svc *service) DeleteAsMentor(mentorID string, id int64) error {
	unit, err := svc.repo.GetLearningUnitByID(id)
	if err != nil {
		return err
	}
	if err = svc.EnsureMentorTeaches(mentorID, unit.SubjectID); err != nil {
		return err
	}
	return svc.repo.DeleteLearningUnit(id)
}
