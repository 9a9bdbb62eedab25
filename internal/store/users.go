package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/seriesd/internal/domain"
)

// CreateUser stores a new user. Logins are unique, ignoring case.
func (s *BadgerStore) CreateUser(ctx context.Context, user *domain.User) error {
	return s.users.Create(ctx, user.ID, user)
}

// GetUser retrieves a user by ID.
func (s *BadgerStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.Get(ctx, id)
}

// GetUserByLogin retrieves a user by login, ignoring case.
func (s *BadgerStore) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	return s.users.GetByIndex(ctx, "login", login)
}

// CreatePseud stores a new pseud for an existing user.
func (s *BadgerStore) CreatePseud(ctx context.Context, pseud *domain.Pseud) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(func(txn *badger.Txn) error {
		ok, err := s.users.existsTxn(txn, pseud.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("create pseud %s: %w", pseud.ID, ErrUserNotFound)
		}
		return s.pseuds.createTxn(txn, pseud.ID, pseud)
	})
}

// GetPseud retrieves a pseud by ID.
func (s *BadgerStore) GetPseud(ctx context.Context, id string) (*domain.Pseud, error) {
	return s.pseuds.Get(ctx, id)
}

// ListPseudsByUser returns a user's pseuds ordered by id.
func (s *BadgerStore) ListPseudsByUser(ctx context.Context, userID string) ([]domain.Pseud, error) {
	return s.pseudsByIndex(ctx, "user", userID)
}

// FindPseudsByName returns every pseud whose name matches, ignoring case.
func (s *BadgerStore) FindPseudsByName(ctx context.Context, name string) ([]domain.Pseud, error) {
	return s.pseudsByIndex(ctx, "name", name)
}

func (s *BadgerStore) pseudsByIndex(ctx context.Context, index, value string) ([]domain.Pseud, error) {
	found, err := s.pseuds.ListByIndex(ctx, index, value)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Pseud, len(found))
	for i, p := range found {
		out[i] = *p
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateTag stores a new tag.
func (s *BadgerStore) CreateTag(ctx context.Context, tag *domain.Tag) error {
	return s.tags.Create(ctx, tag.ID, tag)
}
