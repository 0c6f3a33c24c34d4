package inmemdb

import "github.com/trezcool/maendeleo/core/user"

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (r *userRepository) query() []user.User {
	res := make([]user.User, 0, len(r.db.users))
	for _, usr := range r.db.users {
		res = append(res, *usr)
	}
	return res
}

func (r *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = struct{}{}
	}
	for _, usr := range r.query() {
		if _, ok := excluded[usr.ID]; ok {
			continue
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (r *userRepository) CreateUser(usr user.User) (user.User, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.users[usr.ID] = &usr
	return usr, nil
}

func (r *userRepository) GetUserByID(id string) (user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if usr, ok := r.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) GetUserByEmail(email string) (user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, usr := range r.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) QueryStudents() ([]user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var students []user.User
	for _, usr := range r.query() {
		if usr.IsStudent() {
			students = append(students, usr)
		}
	}
	return students, nil
}

func (r *userRepository) UpdateUser(usr user.User) (user.User, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	orig, ok := r.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.Password = orig.Password
	usr.Role = orig.Role
	usr.CreatedAt = orig.CreatedAt
	r.db.users[usr.ID] = &usr
	return usr, nil
}

func (r *userRepository) SetUserPassword(id, hash string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	usr, ok := r.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.Password = hash
	return nil
}
