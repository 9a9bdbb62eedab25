package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

// Apply executes mutations inside one Badger transaction. Any failure
// discards the whole transaction.
func (s *BadgerStore) Apply(ctx context.Context, mutations ...domain.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(mutations) == 0 {
		return nil
	}
	now := time.Now()
	return s.update(func(txn *badger.Txn) error {
		for _, mut := range mutations {
			if err := s.applyTxn(txn, mut, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) applyTxn(txn *badger.Txn, mut domain.Mutation, now time.Time) error {
	switch m := mut.(type) {
	case domain.SetSeriesAuthors:
		return s.setSeriesAuthorsTxn(txn, m, now)
	case domain.RemoveWorkAuthors:
		return s.removeWorkAuthorsTxn(txn, m, now)
	case domain.SetMembershipPositions:
		return s.setPositionsTxn(txn, m, now)
	case domain.SetSeriesRestricted:
		return s.patchSeriesTxn(txn, m.SeriesID, now, func(r *seriesRecord) { r.Restricted = m.Restricted })
	case domain.SetSeriesHidden:
		return s.patchSeriesTxn(txn, m.SeriesID, now, func(r *seriesRecord) { r.HiddenByAdmin = m.Hidden })
	default:
		return fmt.Errorf("unsupported mutation %T", mut)
	}
}

func (s *BadgerStore) patchSeriesTxn(txn *badger.Txn, seriesID string, now time.Time, patch func(*seriesRecord)) error {
	rec, err := s.series.getTxn(txn, seriesID)
	if err != nil {
		return fmt.Errorf("series %s: %w", seriesID, err)
	}
	patch(rec)
	rec.UpdatedAt = now
	return s.series.updateTxn(txn, rec.ID, rec)
}

func (s *BadgerStore) setSeriesAuthorsTxn(txn *badger.Txn, m domain.SetSeriesAuthors, now time.Time) error {
	if len(m.PseudIDs) == 0 {
		return domainerrors.LastAuthorf("series %s must keep at least one author", m.SeriesID)
	}
	for _, pid := range m.PseudIDs {
		ok, err := s.pseuds.existsTxn(txn, pid)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("pseud %s: %w", pid, ErrPseudNotFound)
		}
	}
	return s.patchSeriesTxn(txn, m.SeriesID, now, func(r *seriesRecord) {
		r.AuthorIDs = append([]string(nil), m.PseudIDs...)
	})
}

func (s *BadgerStore) removeWorkAuthorsTxn(txn *badger.Txn, m domain.RemoveWorkAuthors, now time.Time) error {
	rec, err := s.works.getTxn(txn, m.WorkID)
	if err != nil {
		return fmt.Errorf("work %s: %w", m.WorkID, err)
	}
	remove := make(map[string]bool, len(m.PseudIDs))
	for _, pid := range m.PseudIDs {
		remove[pid] = true
	}
	remaining := make([]string, 0, len(rec.AuthorIDs))
	for _, pid := range rec.AuthorIDs {
		if !remove[pid] {
			remaining = append(remaining, pid)
		}
	}
	if len(remaining) == len(rec.AuthorIDs) {
		return nil
	}
	if len(remaining) == 0 {
		return domainerrors.LastAuthorf("work %s would be left without an author", m.WorkID)
	}
	rec.AuthorIDs = remaining
	rec.UpdatedAt = now
	return s.works.updateTxn(txn, rec.ID, rec)
}

func (s *BadgerStore) setPositionsTxn(txn *badger.Txn, m domain.SetMembershipPositions, now time.Time) error {
	current, err := s.membershipsTxn(txn, m.SeriesID)
	if err != nil {
		return err
	}
	byID := make(map[string]domain.SeriesMembership, len(current))
	for _, sm := range current {
		byID[sm.ID] = sm
	}
	for mid := range m.Positions {
		if _, ok := byID[mid]; !ok {
			return fmt.Errorf("membership %s in series %s: %w", mid, m.SeriesID, ErrMembershipNotFound)
		}
	}

	taken := make(map[int]string, len(current))
	for _, sm := range current {
		pos := sm.Position
		if p, ok := m.Positions[sm.ID]; ok {
			pos = p
		}
		if other, dup := taken[pos]; dup {
			return domainerrors.InvalidPermutationf("memberships %s and %s would share position %d", other, sm.ID, pos)
		}
		taken[pos] = sm.ID
	}

	for mid, pos := range m.Positions {
		sm := byID[mid]
		if sm.Position == pos {
			continue
		}
		sm.Position = pos
		if err := s.memberships.updateTxn(txn, mid, &sm); err != nil {
			return err
		}
	}
	return s.patchSeriesTxn(txn, m.SeriesID, now, func(*seriesRecord) {})
}
