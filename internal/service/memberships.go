package service

import (
	"context"
	"fmt"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

// AddWork appends a work to the end of the series. The store updates the
// restricted flag in the same transaction. Non-admins must author the work.
func (s *SeriesService) AddWork(ctx context.Context, actor domain.Viewer, seriesID, workID string) (series *domain.Series, err error) {
	defer func() { s.metrics.Operation("add_work", err) }()

	before, err := s.loadForEdit(ctx, actor, seriesID)
	if err != nil {
		return nil, err
	}
	work, err := s.store.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	if err := authorizeWork(actor, work); err != nil {
		return nil, err
	}

	m, err := s.store.AddWorkToSeries(ctx, seriesID, workID)
	if err != nil {
		return nil, fmt.Errorf("add work: %w", err)
	}
	s.logger.WithSeries(seriesID).Info("work added to series",
		"work_id", workID,
		"position", m.Position,
		"user_id", actor.UserID,
	)
	return s.reload(ctx, before)
}

// RemoveWork drops a work from the series. The store updates the restricted
// flag in the same transaction.
func (s *SeriesService) RemoveWork(ctx context.Context, actor domain.Viewer, seriesID, workID string) (series *domain.Series, err error) {
	defer func() { s.metrics.Operation("remove_work", err) }()

	before, err := s.loadForEdit(ctx, actor, seriesID)
	if err != nil {
		return nil, err
	}
	if err := s.store.RemoveWorkFromSeries(ctx, seriesID, workID); err != nil {
		return nil, fmt.Errorf("remove work: %w", err)
	}
	s.logger.WithSeries(seriesID).Info("work removed from series",
		"work_id", workID,
		"user_id", actor.UserID,
	)
	return s.reload(ctx, before)
}

// Reorder sets the position of every membership to its index in
// membershipIDs, which must be a permutation of the current memberships.
func (s *SeriesService) Reorder(ctx context.Context, actor domain.Viewer, seriesID string, membershipIDs []string) (series *domain.Series, err error) {
	defer func() { s.metrics.Operation("reorder", err) }()

	series, err = s.loadForEdit(ctx, actor, seriesID)
	if err != nil {
		return nil, err
	}
	mutation, err := series.Reorder(membershipIDs)
	if err != nil {
		return nil, err
	}
	if err := s.store.Apply(ctx, mutation); err != nil {
		return nil, fmt.Errorf("reorder: %w", err)
	}
	s.logger.WithSeries(seriesID).Info("series reordered",
		"works", len(membershipIDs),
		"user_id", actor.UserID,
	)
	return series, nil
}

// SetHiddenByAdmin hides or unhides a series. Admins only.
func (s *SeriesService) SetHiddenByAdmin(ctx context.Context, actor domain.Viewer, seriesID string, hidden bool) (series *domain.Series, err error) {
	defer func() { s.metrics.Operation("set_hidden", err) }()

	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("only admins can hide a series")
	}
	series, err = s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if series.HiddenByAdmin == hidden {
		return series, nil
	}
	if err := s.store.Apply(ctx, domain.SetSeriesHidden{SeriesID: seriesID, Hidden: hidden}); err != nil {
		return nil, fmt.Errorf("set hidden: %w", err)
	}
	series.HiddenByAdmin = hidden
	series.Touch()

	s.logger.WithSeries(seriesID).Info("series visibility changed by admin",
		"hidden", hidden,
		"user_id", actor.UserID,
	)
	return series, nil
}
