package users

type UserRepo interface {
	Upsert(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)

	// UpdateTokens overwrites the access token and its expiry in a single
	// write so the two can never be observed out of sync. An empty
	// refreshToken retains the previously stored value, since upstream
	// refresh-token rotation is optional.
	UpdateTokens(id, accessToken, refreshToken string, expiresAt int64) error

	List(offset, limit int) ([]*User, error)
	Delete(id string) error
}
