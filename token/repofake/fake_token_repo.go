package tokenfakerepo

import (
	"errors"
	"sort"
	"sync"

	"github.com/aspekts/musictracker/token"
)

var _ token.RefreshTokenRepo = (*FakeTokenRepo)(nil)

type FakeTokenRepo struct {
	tokens  map[string]*token.RefreshToken
	userIDs map[string]string // user ID to token ID
	lock    sync.RWMutex
}

func NewFakeTokensRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		tokens:  make(map[string]*token.RefreshToken),
		userIDs: make(map[string]string),
	}
}

func (tr *FakeTokenRepo) Upsert(refreshToken *token.RefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.tokens[refreshToken.Token] = refreshToken
	tr.userIDs[refreshToken.UserID] = refreshToken.Token
	return nil
}

func (tr *FakeTokenRepo) Delete(rawToken string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	rt, ok := tr.tokens[rawToken]
	if !ok {
		return errors.New("not found")
	}
	delete(tr.userIDs, rt.UserID)
	delete(tr.tokens, rawToken)
	return nil
}

func (tr *FakeTokenRepo) Get(rawToken string) (*token.RefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	rt, ok := tr.tokens[rawToken]
	if !ok {
		return nil, errors.New("not found")
	}
	return rt, nil
}

func (tr *FakeTokenRepo) GetByUserID(userID string) (*token.RefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	tokenID, ok := tr.userIDs[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	return tr.tokens[tokenID], nil
}

func (tr *FakeTokenRepo) List(offset, limit int) ([]*token.RefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	tokens := make([]*token.RefreshToken, 0, len(tr.tokens))
	for _, v := range tr.tokens {
		tokens = append(tokens, v)
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Iat.Before(tokens[j].Iat)
	})

	if offset >= len(tokens) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(tokens) {
		end = len(tokens)
	}
	return tokens[offset:end], nil
}
