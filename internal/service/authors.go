package service

import (
	"context"
	"fmt"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

// AssignAuthors resolves input and merges the result into the series'
// authors: resolved pseuds are added and the actor's unchosen pseuds
// (ToRemove) are dropped. Other co-authors are kept. Unresolved byline names
// are returned as diagnostics on the assignment and do not stop the write.
func (s *SeriesService) AssignAuthors(ctx context.Context, actor domain.Viewer, seriesID string, input domain.AuthorInput) (assignment *domain.AuthorAssignment, err error) {
	defer func() { s.metrics.Operation("assign_authors", err) }()

	series, err := s.loadForEdit(ctx, actor, seriesID)
	if err != nil {
		return nil, err
	}
	assignment, err = domain.ResolveAuthors(ctx, s.store, s.byline, input, actor)
	if err != nil {
		return nil, err
	}

	final := mergeAuthors(series.Authors, assignment.Authors, assignment.ToRemove)
	if len(final) == 0 {
		return nil, domainerrors.LastAuthorf("series %s must keep at least one author", seriesID)
	}

	if err := s.store.Apply(ctx, domain.SetSeriesAuthors{SeriesID: seriesID, PseudIDs: domain.PseudIDs(final)}); err != nil {
		return nil, fmt.Errorf("assign authors: %w", err)
	}

	s.logger.WithSeries(seriesID).Info("series authors assigned",
		"user_id", actor.UserID,
		"authors", len(final),
		"removed", len(assignment.ToRemove),
		"invalid", len(assignment.Invalid),
		"ambiguous", len(assignment.Ambiguous),
	)
	return assignment, nil
}

// RemoveAuthor takes userID off the series and off every member work they
// co-authored, all in one transaction. A user credited only on member works
// leaves the series authors unchanged. Users may remove themselves; admins
// may remove anyone.
func (s *SeriesService) RemoveAuthor(ctx context.Context, actor domain.Viewer, seriesID, userID string) (plan *domain.AuthorRemovalPlan, err error) {
	defer func() { s.metrics.Operation("remove_author", err) }()

	if actor.IsGuest() {
		return nil, domainerrors.Unauthorized("sign in to change a series")
	}
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, domainerrors.Forbidden("you can only remove yourself as an author")
	}

	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	pseuds, err := s.store.ListPseudsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pseuds of %s: %w", userID, err)
	}
	pseudIDs := domain.PseudIDs(pseuds)
	if !series.IsAuthor(pseudIDs) {
		return nil, domainerrors.NotFoundf("user %s is not an author of series %s", userID, seriesID)
	}

	plan, err = domain.PlanAuthorRemoval(series, pseudIDs)
	if err != nil {
		s.logger.WithSeries(seriesID).Warn("author removal refused",
			"user_id", userID,
			"error", err,
		)
		return nil, err
	}
	if err := s.store.Apply(ctx, plan.Mutations...); err != nil {
		return nil, fmt.Errorf("remove author: %w", err)
	}

	s.logger.WithSeries(seriesID).Info("series author removed",
		"user_id", userID,
		"by", actor.UserID,
		"works", len(plan.AffectedWorks),
	)
	return plan, nil
}

// mergeAuthors returns current with added appended and removed dropped,
// de-duplicated in first-seen order.
func mergeAuthors(current, added, removed []domain.Pseud) []domain.Pseud {
	drop := make(map[string]bool, len(removed))
	for _, p := range removed {
		drop[p.ID] = true
	}
	seen := make(map[string]bool, len(current)+len(added))
	out := make([]domain.Pseud, 0, len(current)+len(added))
	for _, group := range [][]domain.Pseud{current, added} {
		for _, p := range group {
			if drop[p.ID] || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}
