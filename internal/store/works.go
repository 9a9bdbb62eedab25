package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/seriesd/internal/domain"
)

func (s *BadgerStore) checkWorkRefsTxn(txn *badger.Txn, w *workRecord) error {
	for _, id := range w.AuthorIDs {
		ok, err := s.pseuds.existsTxn(txn, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("work %s author %s: %w", w.ID, id, ErrPseudNotFound)
		}
	}
	for _, id := range w.TagIDs {
		ok, err := s.tags.existsTxn(txn, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("work %s tag %s: %w", w.ID, id, ErrTagNotFound)
		}
	}
	return nil
}

// CreateWork stores a new work. Its authors and tags must already exist.
func (s *BadgerStore) CreateWork(ctx context.Context, work *domain.Work) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := newWorkRecord(work)
	return s.update(func(txn *badger.Txn) error {
		if err := s.checkWorkRefsTxn(txn, rec); err != nil {
			return err
		}
		return s.works.createTxn(txn, rec.ID, rec)
	})
}

// GetWork retrieves a work with its authors and tags.
func (s *BadgerStore) GetWork(ctx context.Context, id string) (*domain.Work, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var work *domain.Work
	err := s.db.View(func(txn *badger.Txn) error {
		rec, err := s.works.getTxn(txn, id)
		if err != nil {
			return err
		}
		work, err = s.hydrateWorkTxn(txn, rec)
		return err
	})
	return work, err
}

// UpdateWork replaces a work, including its author and tag lists.
func (s *BadgerStore) UpdateWork(ctx context.Context, work *domain.Work) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := newWorkRecord(work)
	return s.update(func(txn *badger.Txn) error {
		if err := s.checkWorkRefsTxn(txn, rec); err != nil {
			return err
		}
		return s.works.updateTxn(txn, rec.ID, rec)
	})
}
