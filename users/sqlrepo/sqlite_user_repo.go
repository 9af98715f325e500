// Package sqlrepo persists user credentials in SQLite via database/sql.
package sqlrepo

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/aspekts/musictracker/users"
)

var _ users.UserRepo = (*UserRepo)(nil)

// UserRepo implements [users.UserRepo] on top of a SQLite database.
type UserRepo struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the
// schema exists.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlrepo.Open] sql.Open")
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the users table when it does not exist yet.
func Migrate(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			display_name  TEXT,
			email         TEXT UNIQUE,
			access_token  TEXT NOT NULL,
			refresh_token TEXT,
			expires_at    INTEGER NOT NULL,
			created_at    TIMESTAMP NOT NULL,
			last_login    TIMESTAMP NOT NULL,
			is_admin      BOOLEAN NOT NULL DEFAULT 0
		)
	`
	if _, err := db.Exec(query); err != nil {
		return errors.Wrap(err, "[sqlrepo.Migrate] create users table")
	}
	return nil
}

// NewUserRepo creates a new UserRepo with the given database connection.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Upsert inserts the user on first sight of its ID and updates the mutable
// columns afterwards. The Spotify ID and created_at never change.
func (r *UserRepo) Upsert(user *users.User) error {
	if user.ID == "" {
		return errors.New("[UserRepo.Upsert] missing user id")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (id, display_name, email, access_token, refresh_token, expires_at, created_at, last_login, is_admin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name  = excluded.display_name,
			email         = excluded.email,
			access_token  = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token != '' THEN excluded.refresh_token ELSE users.refresh_token END,
			expires_at    = excluded.expires_at,
			last_login    = excluded.last_login
	`

	_, err := r.db.Exec(query,
		user.ID,
		user.DisplayName,
		user.Email,
		user.AccessToken,
		user.RefreshToken,
		user.ExpiresAt,
		user.CreatedAt,
		user.LastLoginAt,
		user.IsAdmin,
	)
	if err != nil {
		return errors.Wrap(err, "[UserRepo.Upsert] exec")
	}
	return nil
}

func (r *UserRepo) GetByID(id string) (*users.User, error) {
	return r.getWhere("id = ?", id)
}

func (r *UserRepo) GetByEmail(email string) (*users.User, error) {
	return r.getWhere("email = ?", email)
}

func (r *UserRepo) getWhere(where string, arg any) (*users.User, error) {
	query := `
		SELECT id, display_name, email, access_token, refresh_token, expires_at, created_at, last_login, is_admin
		FROM users
		WHERE ` + where

	var (
		user         users.User
		displayName  sql.NullString
		email        sql.NullString
		refreshToken sql.NullString
	)

	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&displayName,
		&email,
		&user.AccessToken,
		&refreshToken,
		&user.ExpiresAt,
		&user.CreatedAt,
		&user.LastLoginAt,
		&user.IsAdmin,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New("not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "[UserRepo.Get] scan")
	}

	user.DisplayName = displayName.String
	user.Email = email.String
	user.RefreshToken = refreshToken.String
	return &user, nil
}

// UpdateTokens overwrites access token and expiry in one statement. An empty
// refreshToken keeps the previously stored value.
func (r *UserRepo) UpdateTokens(id, accessToken, refreshToken string, expiresAt int64) error {
	query := `
		UPDATE users
		SET access_token  = ?,
		    refresh_token = CASE WHEN ? != '' THEN ? ELSE refresh_token END,
		    expires_at    = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, accessToken, refreshToken, refreshToken, expiresAt, id)
	if err != nil {
		return errors.Wrap(err, "[UserRepo.UpdateTokens] exec")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[UserRepo.UpdateTokens] rows affected")
	}
	if rows == 0 {
		return errors.New("not found")
	}
	return nil
}

func (r *UserRepo) List(offset, limit int) ([]*users.User, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, display_name, email, access_token, refresh_token, expires_at, created_at, last_login, is_admin
		FROM users
		ORDER BY created_at
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "[UserRepo.List] query")
	}
	defer rows.Close()

	var list []*users.User
	for rows.Next() {
		var (
			user         users.User
			displayName  sql.NullString
			email        sql.NullString
			refreshToken sql.NullString
		)
		if err := rows.Scan(
			&user.ID,
			&displayName,
			&email,
			&user.AccessToken,
			&refreshToken,
			&user.ExpiresAt,
			&user.CreatedAt,
			&user.LastLoginAt,
			&user.IsAdmin,
		); err != nil {
			return nil, errors.Wrap(err, "[UserRepo.List] scan")
		}
		user.DisplayName = displayName.String
		user.Email = email.String
		user.RefreshToken = refreshToken.String
		list = append(list, &user)
	}
	return list, rows.Err()
}

func (r *UserRepo) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "[UserRepo.Delete] exec")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[UserRepo.Delete] rows affected")
	}
	if rows == 0 {
		return errors.New("not found")
	}
	return nil
}
