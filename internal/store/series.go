package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/seriesd/internal/domain"
	"github.com/listenupapp/seriesd/internal/id"
)

// CreateSeries stores a new series with its authors and initial memberships.
// Memberships without an id get one, and their SeriesID is set.
func (s *BadgerStore) CreateSeries(ctx context.Context, series *domain.Series) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := range series.Memberships {
		m := &series.Memberships[i]
		m.SeriesID = series.ID
		if m.ID == "" {
			mid, err := id.Generate(id.PrefixMembership)
			if err != nil {
				return err
			}
			m.ID = mid
		}
	}

	return s.update(func(txn *badger.Txn) error {
		for _, p := range series.Authors {
			ok, err := s.pseuds.existsTxn(txn, p.ID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("series %s author %s: %w", series.ID, p.ID, ErrPseudNotFound)
			}
		}
		if err := s.series.createTxn(txn, series.ID, newSeriesRecord(series)); err != nil {
			return err
		}

		works := make(map[string]bool)
		positions := make(map[int]bool)
		for i := range series.Memberships {
			m := series.Memberships[i]
			if works[m.WorkID] {
				return fmt.Errorf("work %s: %w", m.WorkID, ErrMembershipExists)
			}
			if positions[m.Position] {
				return fmt.Errorf("position %d used twice: %w", m.Position, ErrAlreadyExists)
			}
			works[m.WorkID] = true
			positions[m.Position] = true

			ok, err := s.works.existsTxn(txn, m.WorkID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("series %s member %s: %w", series.ID, m.WorkID, ErrWorkNotFound)
			}
			m.Work = nil
			if err := s.memberships.createTxn(txn, m.ID, &m); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSeries retrieves a series with authors and hydrated memberships in
// position order.
func (s *BadgerStore) GetSeries(ctx context.Context, id string) (*domain.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var series *domain.Series
	err := s.db.View(func(txn *badger.Txn) error {
		rec, err := s.series.getTxn(txn, id)
		if err != nil {
			return err
		}
		series, err = s.hydrateSeriesTxn(txn, rec)
		return err
	})
	return series, err
}

// UpdateSeries writes title, summary, notes, the two flags and UpdatedAt.
func (s *BadgerStore) UpdateSeries(ctx context.Context, series *domain.Series) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(func(txn *badger.Txn) error {
		rec, err := s.series.getTxn(txn, series.ID)
		if err != nil {
			return err
		}
		rec.Title = series.Title
		rec.Summary = series.Summary
		rec.Notes = series.Notes
		rec.Restricted = series.Restricted
		rec.HiddenByAdmin = series.HiddenByAdmin
		rec.UpdatedAt = series.UpdatedAt
		return s.series.updateTxn(txn, rec.ID, rec)
	})
}

// DeleteSeries removes a series and all of its memberships.
func (s *BadgerStore) DeleteSeries(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(func(txn *badger.Txn) error {
		ok, err := s.series.existsTxn(txn, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSeriesNotFound
		}
		ids, err := s.memberships.idsByIndexTxn(txn, "series", id)
		if err != nil {
			return err
		}
		for _, mid := range ids {
			if err := s.memberships.deleteTxn(txn, mid); err != nil {
				return err
			}
		}
		return s.series.deleteTxn(txn, id)
	})
}

// ListSeriesIDs returns every series id in ascending order.
func (s *BadgerStore) ListSeriesIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for rec, err := range s.series.List(ctx) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, rec.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListSeriesIDsByWork returns the ids of every series containing workID.
func (s *BadgerStore) ListSeriesIDsByWork(ctx context.Context, workID string) ([]string, error) {
	found, err := s.memberships.ListByIndex(ctx, "work", workID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(found))
	for _, m := range found {
		ids = append(ids, m.SeriesID)
	}
	sort.Strings(ids)
	return ids, nil
}

// AddWorkToSeries appends workID after the series' current last position
// and recomputes the series' restricted flag in the same transaction.
func (s *BadgerStore) AddWorkToSeries(ctx context.Context, seriesID, workID string) (*domain.SeriesMembership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mid, err := id.Generate(id.PrefixMembership)
	if err != nil {
		return nil, err
	}

	var added *domain.SeriesMembership
	err = s.update(func(txn *badger.Txn) error {
		rec, err := s.series.getTxn(txn, seriesID)
		if err != nil {
			return err
		}
		ok, err := s.works.existsTxn(txn, workID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrWorkNotFound
		}

		current, err := s.membershipsTxn(txn, seriesID)
		if err != nil {
			return err
		}
		maxPos := 0
		workIDs := []string{workID}
		for _, m := range current {
			if m.WorkID == workID {
				return ErrMembershipExists
			}
			maxPos = max(maxPos, m.Position)
			workIDs = append(workIDs, m.WorkID)
		}

		added = &domain.SeriesMembership{
			ID:       mid,
			SeriesID: seriesID,
			WorkID:   workID,
			Position: maxPos + 1,
		}
		if err := s.memberships.createTxn(txn, mid, added); err != nil {
			return err
		}
		if rec.Restricted, err = s.allRestrictedTxn(txn, workIDs); err != nil {
			return err
		}
		rec.UpdatedAt = time.Now()
		return s.series.updateTxn(txn, rec.ID, rec)
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveWorkFromSeries deletes the membership joining workID to seriesID
// and recomputes the series' restricted flag in the same transaction.
func (s *BadgerStore) RemoveWorkFromSeries(ctx context.Context, seriesID, workID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(func(txn *badger.Txn) error {
		rec, err := s.series.getTxn(txn, seriesID)
		if err != nil {
			return err
		}
		current, err := s.membershipsTxn(txn, seriesID)
		if err != nil {
			return err
		}
		var removed *domain.SeriesMembership
		remaining := make([]string, 0, len(current))
		for i := range current {
			if current[i].WorkID == workID {
				removed = &current[i]
				continue
			}
			remaining = append(remaining, current[i].WorkID)
		}
		if removed == nil {
			return ErrMembershipNotFound
		}
		if err := s.memberships.deleteTxn(txn, removed.ID); err != nil {
			return err
		}
		if rec.Restricted, err = s.allRestrictedTxn(txn, remaining); err != nil {
			return err
		}
		rec.UpdatedAt = time.Now()
		return s.series.updateTxn(txn, rec.ID, rec)
	})
}
