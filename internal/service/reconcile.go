package service

import (
	"context"
	"fmt"

	"github.com/listenupapp/seriesd/internal/domain"
)

// ReconcileReport summarizes a sweep over many series.
type ReconcileReport struct {
	Checked int      `json:"checked"`
	Changed []string `json:"changed"`
}

// ReconcileRestricted recomputes the restricted flag of one series and
// persists it if it was out of sync.
func (s *SeriesService) ReconcileRestricted(ctx context.Context, seriesID string) (changed bool, err error) {
	defer func() { s.metrics.Operation("reconcile", err) }()

	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return false, err
	}
	return s.reconcileLoaded(ctx, series)
}

// ReconcileAll sweeps every series. It stops at the first failure and
// reports how far it got.
func (s *SeriesService) ReconcileAll(ctx context.Context) (*ReconcileReport, error) {
	ids, err := s.store.ListSeriesIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return s.reconcileIDs(ctx, ids)
}

// WorkChanged reconciles every series containing workID. Call it after a
// work's restricted flag changes.
func (s *SeriesService) WorkChanged(ctx context.Context, workID string) (*ReconcileReport, error) {
	ids, err := s.store.ListSeriesIDsByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("list series of work %s: %w", workID, err)
	}
	return s.reconcileIDs(ctx, ids)
}

func (s *SeriesService) reconcileIDs(ctx context.Context, ids []string) (*ReconcileReport, error) {
	report := &ReconcileReport{Changed: []string{}}
	for _, seriesID := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		changed, err := s.ReconcileRestricted(ctx, seriesID)
		if err != nil {
			return report, fmt.Errorf("reconcile %s: %w", seriesID, err)
		}
		report.Checked++
		if changed {
			report.Changed = append(report.Changed, seriesID)
		}
	}
	return report, nil
}

// reload fetches a series after a membership change. The store has already
// committed the new restricted flag; a flip is only counted and logged here.
func (s *SeriesService) reload(ctx context.Context, before *domain.Series) (*domain.Series, error) {
	series, err := s.store.GetSeries(ctx, before.ID)
	if err != nil {
		return nil, err
	}
	if series.Restricted != before.Restricted {
		s.metrics.RestrictedFlip(series.Restricted)
		s.logger.WithSeries(series.ID).Info("series restricted flag changed",
			"restricted", series.Restricted,
		)
	}
	return series, nil
}

// reconcileLoaded updates series in place and writes the flag if it moved.
func (s *SeriesService) reconcileLoaded(ctx context.Context, series *domain.Series) (bool, error) {
	if !series.ReconcileRestricted() {
		return false, nil
	}
	if err := s.store.Apply(ctx, domain.SetSeriesRestricted{SeriesID: series.ID, Restricted: series.Restricted}); err != nil {
		return false, fmt.Errorf("persist restricted flag: %w", err)
	}
	s.metrics.RestrictedFlip(series.Restricted)
	s.logger.WithSeries(series.ID).Info("series restricted flag reconciled",
		"restricted", series.Restricted,
	)
	return true, nil
}
