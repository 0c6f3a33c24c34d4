package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/user"
)

type userRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Email       string         `db:"email"`
	Password    string         `db:"password"`
	Role        string         `db:"role"`
	Batch       sql.NullString `db:"batch"`
	Bio         sql.NullString `db:"bio"`
	LinkedIn    sql.NullString `db:"linkedin"`
	Description sql.NullString `db:"description"`
	CreatedAt   sql.NullTime   `db:"created_at"`
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Password:    r.Password,
		Role:        r.Role,
		Batch:       r.Batch.String,
		Bio:         r.Bio.String,
		LinkedIn:    r.LinkedIn.String,
		Description: r.Description.String,
	}
	if r.CreatedAt.Valid {
		usr.CreatedAt = r.CreatedAt.Time
	}
	return usr
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	query := `SELECT COUNT(*) FROM users WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		q, inArgs, err := sqlx.In(`SELECT COUNT(*) FROM users WHERE email = ? AND id NOT IN (?)`, email, ids)
		if err != nil {
			return core.NewStorageError(errors.Wrap(err, "building email query"))
		}
		query = repo.db.Rebind(q)
		args = inArgs
	}

	var count int
	if err := repo.db.Get(&count, query, args...); err != nil {
		return core.NewStorageError(errors.Wrap(err, "checking email uniqueness"))
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	query := `
		INSERT INTO users (id, name, email, password, role, batch, bio, linkedin, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.Exec(query,
		usr.ID, usr.Name, usr.Email, usr.Password, usr.Role,
		nullString(usr.Batch), nullString(usr.Bio), nullString(usr.LinkedIn), nullString(usr.Description),
		usr.CreatedAt,
	)
	if err != nil {
		return user.User{}, core.NewStorageError(errors.Wrap(err, "creating user"))
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	var row userRow
	err := repo.db.Get(&row, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, core.NewStorageError(errors.Wrap(err, "getting user by ID"))
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	var row userRow
	err := repo.db.Get(&row, `SELECT * FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, core.NewStorageError(errors.Wrap(err, "getting user by email"))
	}
	return row.toUser(), nil
}

func (repo *userRepository) QueryStudents() ([]user.User, error) {
	var rows []userRow
	err := repo.db.Select(&rows, `SELECT * FROM users WHERE role = $1`, user.RoleStudent)
	if err != nil {
		return nil, core.NewStorageError(errors.Wrap(err, "querying students"))
	}
	students := make([]user.User, len(rows))
	for i, row := range rows {
		students[i] = row.toUser()
	}
	return students, nil
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	query := `
		UPDATE users
		SET name = $2, email = $3, batch = $4, bio = $5, linkedin = $6, description = $7
		WHERE id = $1`
	res, err := repo.db.Exec(query,
		usr.ID, usr.Name, usr.Email,
		nullString(usr.Batch), nullString(usr.Bio), nullString(usr.LinkedIn), nullString(usr.Description),
	)
	if err != nil {
		return user.User{}, core.NewStorageError(errors.Wrap(err, "updating user"))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) SetUserPassword(id, hash string) error {
	res, err := repo.db.Exec(`UPDATE users SET password = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return core.NewStorageError(errors.Wrap(err, "setting password"))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
