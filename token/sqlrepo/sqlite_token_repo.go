// Package sqlrepo persists session refresh tokens in SQLite.
package sqlrepo

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/aspekts/musictracker/token"
)

var _ token.RefreshTokenRepo = (*RefreshTokenRepo)(nil)

// RefreshTokenRepo implements [token.RefreshTokenRepo] on top of a SQLite
// database, sharing the connection with the user credential store.
type RefreshTokenRepo struct {
	db *sql.DB
}

// Migrate creates the refresh_tokens table when it does not exist yet.
func Migrate(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			token   TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			iat     TIMESTAMP NOT NULL
		)
	`
	if _, err := db.Exec(query); err != nil {
		return errors.Wrap(err, "[sqlrepo.Migrate] create refresh_tokens table")
	}
	return nil
}

// NewRefreshTokenRepo creates a new RefreshTokenRepo with the given
// database connection.
func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

func (r *RefreshTokenRepo) Upsert(rt *token.RefreshToken) error {
	if rt.Token == "" {
		return errors.New("[RefreshTokenRepo.Upsert] missing token")
	}

	query := `
		INSERT INTO refresh_tokens (token, user_id, iat)
		VALUES (?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			user_id = excluded.user_id,
			iat     = excluded.iat
	`
	if _, err := r.db.Exec(query, rt.Token, rt.UserID, rt.Iat); err != nil {
		return errors.Wrap(err, "[RefreshTokenRepo.Upsert] exec")
	}
	return nil
}

func (r *RefreshTokenRepo) Delete(rawToken string) error {
	result, err := r.db.Exec(`DELETE FROM refresh_tokens WHERE token = ?`, rawToken)
	if err != nil {
		return errors.Wrap(err, "[RefreshTokenRepo.Delete] exec")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[RefreshTokenRepo.Delete] rows affected")
	}
	if rows == 0 {
		return errors.New("not found")
	}
	return nil
}

func (r *RefreshTokenRepo) Get(rawToken string) (*token.RefreshToken, error) {
	return r.getWhere("token = ?", rawToken)
}

func (r *RefreshTokenRepo) GetByUserID(userID string) (*token.RefreshToken, error) {
	return r.getWhere("user_id = ?", userID)
}

func (r *RefreshTokenRepo) getWhere(where string, arg any) (*token.RefreshToken, error) {
	query := `SELECT token, user_id, iat FROM refresh_tokens WHERE ` + where

	var rt token.RefreshToken
	err := r.db.QueryRow(query, arg).Scan(&rt.Token, &rt.UserID, &rt.Iat)
	if err == sql.ErrNoRows {
		return nil, errors.New("not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "[RefreshTokenRepo.Get] scan")
	}
	return &rt, nil
}

func (r *RefreshTokenRepo) List(offset, limit int) ([]*token.RefreshToken, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT token, user_id, iat FROM refresh_tokens ORDER BY iat LIMIT ? OFFSET ?`
	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "[RefreshTokenRepo.List] query")
	}
	defer rows.Close()

	var list []*token.RefreshToken
	for rows.Next() {
		var rt token.RefreshToken
		if err := rows.Scan(&rt.Token, &rt.UserID, &rt.Iat); err != nil {
			return nil, errors.Wrap(err, "[RefreshTokenRepo.List] scan")
		}
		list = append(list, &rt)
	}
	return list, rows.Err()
}
