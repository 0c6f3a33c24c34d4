package track

import (
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("progress not found")
	ErrUnknownStatus = errors.New("unknown status")
)

type (
	Repository interface {
		// CreateAssignment inserts a To Do progress row for the pair unless
		// one already exists (conflict-ignore; idempotent).
		CreateAssignment(userID string, luID int64) error
		GetProgress(userID string, luID int64) (Progress, error)
		QueryProgressByUser(userID string) ([]Progress, error)
		QueryAllProgress() ([]Progress, error)
		SetStatus(userID string, luID int64, status string) error
		SetGrade(userID string, luID int64, feedback, grade string) error
		// AppendActivity records an engagement date; duplicates allowed.
		AppendActivity(userID, date string) error
		// QueryActivityDates returns the raw (non-deduplicated) dates.
		QueryActivityDates(userID string) ([]string, error)
		QueryAllActivity() ([]Activity, error)
	}

	Service interface {
		// StudentBoard returns the student's assigned, published units with
		// their progress fields attached. No ordering contract.
		StudentBoard(studentID string) ([]BoardItem, error)
		// ClassRoster joins students, progress and activity; recomputed from
		// current state on every call.
		ClassRoster() ([]RosterEntry, error)
		// Assign fans out one progress row per student; duplicates are
		// silently absorbed. Per-student inserts are independent: a failure
		// mid-loop leaves earlier assignments in place.
		Assign(luID int64, studentIDs []string) error
		// SetStatus updates the status field only and appends one activity
		// entry for today, on every call.
		SetStatus(studentID string, luID int64, status string) error
		// SetGrade updates feedback/grade only; no activity is recorded.
		SetGrade(studentID string, luID int64, feedback, grade string) error
		// Assignees maps each assigned unit to the IDs of its assignees.
		Assignees() (map[int64][]string, error)
		// SubjectStudents returns the students assigned to any of the
		// subject's units.
		SubjectStudents(subjectID string) ([]user.User, error)
		// ActivityDates returns the student's deduplicated activity dates.
		ActivityDates(userID string) ([]string, error)
		Streaks(userID string) (Streaks, error)
	}

	service struct {
		repo     Repository
		luRepo   lu.Repository
		userRepo user.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, luRepo lu.Repository, userRepo user.Repository) Service {
	return &service{
		repo:     repo,
		luRepo:   luRepo,
		userRepo: userRepo,
	}
}

func (svc *service) StudentBoard(studentID string) ([]BoardItem, error) {
	rows, err := svc.repo.QueryProgressByUser(studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	byLU := make(map[int64]Progress, len(rows))
	for _, p := range rows {
		byLU[p.LUID] = p
	}

	board := make([]BoardItem, 0, len(rows))
	for luID, p := range byLU {
		unit, err := svc.luRepo.GetLearningUnitByID(luID)
		if err != nil {
			if errors.Cause(err) == lu.ErrNotFound {
				continue
			}
			return nil, errors.Wrap(err, "loading learning unit")
		}
		if !unit.IsPublished() {
			continue
		}
		board = append(board, BoardItem{
			LearningUnit: unit,
			Status:       p.Status,
			Feedback:     p.Feedback,
			Grade:        p.Grade,
		})
	}
	return board, nil
}

func (svc *service) ClassRoster() ([]RosterEntry, error) {
	students, err := svc.userRepo.QueryStudents()
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	progress, err := svc.repo.QueryAllProgress()
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	activity, err := svc.repo.QueryAllActivity()
	if err != nil {
		return nil, errors.Wrap(err, "querying activity")
	}

	progByUser := make(map[string]map[int64]ProgressInfo, len(students))
	for _, p := range progress {
		m, ok := progByUser[p.UserID]
		if !ok {
			m = make(map[int64]ProgressInfo)
			progByUser[p.UserID] = m
		}
		m[p.LUID] = ProgressInfo{Status: p.Status, Feedback: p.Feedback, Grade: p.Grade}
	}
	datesByUser := make(map[string][]string)
	for _, a := range activity {
		datesByUser[a.UserID] = append(datesByUser[a.UserID], a.Date)
	}

	roster := make([]RosterEntry, 0, len(students))
	for _, student := range students {
		entry := RosterEntry{
			User:             student,
			Progress:         progByUser[student.ID],
			LearningActivity: DedupDates(datesByUser[student.ID]),
		}
		if entry.Progress == nil {
			entry.Progress = map[int64]ProgressInfo{}
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

func (svc *service) Assign(luID int64, studentIDs []string) error {
	if _, err := svc.luRepo.GetLearningUnitByID(luID); err != nil {
		return err
	}
	for _, studentID := range studentIDs {
		if err := svc.repo.CreateAssignment(studentID, luID); err != nil {
			return errors.Wrapf(err, "assigning unit to %s", studentID)
		}
	}
	return nil
}

func (svc *service) SetStatus(studentID string, luID int64, status string) error {
	if !validStatus(status) {
		return ErrUnknownStatus
	}
	if _, err := svc.repo.GetProgress(studentID, luID); err != nil {
		return err
	}
	if err := svc.repo.SetStatus(studentID, luID, status); err != nil {
		return errors.Wrap(err, "updating status")
	}
	today := NowFunc().UTC().Format(dateLayout)
	if err := svc.repo.AppendActivity(studentID, today); err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return nil
}

func (svc *service) SetGrade(studentID string, luID int64, feedback, grade string) error {
	if _, err := svc.repo.GetProgress(studentID, luID); err != nil {
		return err
	}
	return svc.repo.SetGrade(studentID, luID, feedback, grade)
}

func (svc *service) Assignees() (map[int64][]string, error) {
	progress, err := svc.repo.QueryAllProgress()
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	assignees := make(map[int64][]string)
	for _, p := range progress {
		assignees[p.LUID] = append(assignees[p.LUID], p.UserID)
	}
	return assignees, nil
}

func (svc *service) SubjectStudents(subjectID string) ([]user.User, error) {
	units, err := svc.luRepo.QueryLearningUnitsBySubject(subjectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying learning units")
	}
	unitSet := make(map[int64]struct{}, len(units))
	for _, unit := range units {
		unitSet[unit.ID] = struct{}{}
	}

	progress, err := svc.repo.QueryAllProgress()
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	seen := make(map[string]struct{})
	var students []user.User
	for _, p := range progress {
		if _, ok := unitSet[p.LUID]; !ok {
			continue
		}
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		usr, err := svc.userRepo.GetUserByID(p.UserID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				continue
			}
			return nil, errors.Wrap(err, "loading student")
		}
		students = append(students, usr)
	}
	return students, nil
}

func (svc *service) ActivityDates(userID string) ([]string, error) {
	dates, err := svc.repo.QueryActivityDates(userID)
	if err != nil {
		return nil, err
	}
	return DedupDates(dates), nil
}

func (svc *service) Streaks(userID string) (Streaks, error) {
	dates, err := svc.repo.QueryActivityDates(userID)
	if err != nil {
		return Streaks{}, err
	}
	return ComputeStreaks(dates), nil
}

func validStatus(status string) bool {
	for _, s := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}
