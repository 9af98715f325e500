package fakeuserrepo

import (
	"errors"
	"sort"
	"sync"

	"github.com/aspekts/musictracker/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		return errors.New("missing user id")
	}
	copied := *user
	ur.users[user.ID] = &copied
	if user.Email != "" {
		ur.emailIds[user.Email] = user.ID
	}
	return nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *user
	return &copied, nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *ur.users[id]
	return &copied, nil
}

func (ur *FakeUserRepo) UpdateTokens(id, accessToken, refreshToken string, expiresAt int64) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.New("not found")
	}
	user.AccessToken = accessToken
	user.ExpiresAt = expiresAt
	if refreshToken != "" {
		user.RefreshToken = refreshToken
	}
	return nil
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]*users.User, 0, len(ur.users))
	for _, u := range ur.users {
		copied := *u
		list = append(list, &copied)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	if offset >= len(list) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (ur *FakeUserRepo) Delete(id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.New("not found")
	}
	delete(ur.emailIds, user.Email)
	delete(ur.users, id)
	return nil
}
