// Package service orchestrates series operations: it loads aggregates from
// the store, applies the domain rules with the caller's viewer and persists
// the outcome.
package service

import (
	"context"
	"fmt"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/id"
	"github.com/listenupapp/seriesd/internal/logger"
	"github.com/listenupapp/seriesd/internal/metrics"
	"github.com/listenupapp/seriesd/internal/store"
	"github.com/listenupapp/seriesd/internal/validation"
)

// SeriesService owns every series use case.
type SeriesService struct {
	store     store.Store
	byline    domain.BylineParser
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewSeriesService creates a series service. parser and m may be nil.
func NewSeriesService(st store.Store, parser domain.BylineParser, v *validation.Validator, m *metrics.Metrics, log *logger.Logger) *SeriesService {
	if v == nil {
		v = validation.New()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &SeriesService{
		store:     st,
		byline:    parser,
		validator: v,
		metrics:   m,
		logger:    log.WithComponent("series"),
	}
}

// CreateSeriesInput is the data for a new series.
type CreateSeriesInput struct {
	Title   string             `json:"title"`
	Summary string             `json:"summary,omitempty"`
	Notes   string             `json:"notes,omitempty"`
	Authors domain.AuthorInput `json:"authors"`
	WorkIDs []string           `json:"work_ids,omitempty"`
}

// UpdateSeriesInput changes the text fields that are non-nil.
type UpdateSeriesInput struct {
	Title   *string `json:"title,omitempty"`
	Summary *string `json:"summary,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// CreateResult is the stored series plus what author resolution reported.
type CreateResult struct {
	Series     *domain.Series           `json:"series"`
	Assignment *domain.AuthorAssignment `json:"assignment"`
}

// ResolveViewer builds the viewer for userID. An empty userID is a guest.
func (s *SeriesService) ResolveViewer(ctx context.Context, userID string) (domain.Viewer, error) {
	if userID == "" {
		return domain.GuestViewer(), nil
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return domain.Viewer{}, fmt.Errorf("resolve viewer: %w", err)
	}
	pseuds, err := s.store.ListPseudsByUser(ctx, userID)
	if err != nil {
		return domain.Viewer{}, fmt.Errorf("resolve viewer pseuds: %w", err)
	}
	return domain.ViewerFor(user, pseuds), nil
}

// GetSeries returns the series if viewer may see it. An invisible series is
// reported as not found so its existence does not leak.
func (s *SeriesService) GetSeries(ctx context.Context, viewer domain.Viewer, seriesID string) (*domain.Series, error) {
	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	decision := domain.ResolveVisibility(series, viewer)
	if !decision.Visible {
		s.metrics.VisibilityDenied(decision.Class.String())
		s.logger.Debug("series hidden from viewer",
			"series_id", seriesID,
			"class", decision.Class.String(),
		)
		return nil, domainerrors.NotFoundf("series %s not found", seriesID)
	}
	return series, nil
}

// ListVisible returns every series viewer may see, in id order.
func (s *SeriesService) ListVisible(ctx context.Context, viewer domain.Viewer) ([]*domain.Series, error) {
	ids, err := s.store.ListSeriesIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	out := make([]*domain.Series, 0, len(ids))
	for _, seriesID := range ids {
		series, err := s.store.GetSeries(ctx, seriesID)
		if err != nil {
			return nil, fmt.Errorf("load series %s: %w", seriesID, err)
		}
		if series.VisibleTo(viewer) {
			out = append(out, series)
		}
	}
	return out, nil
}

// Create stores a new series authored by the resolved pseuds and holding
// workIDs in the given order. With no author input at all, the actor's
// pseuds author the series. Byline diagnostics do not block creation.
func (s *SeriesService) Create(ctx context.Context, actor domain.Viewer, in CreateSeriesInput) (result *CreateResult, err error) {
	defer func() { s.metrics.Operation("create", err) }()

	if actor.IsGuest() {
		return nil, domainerrors.Unauthorized("sign in to create a series")
	}
	if err := s.validator.Validate(validation.SeriesFields{Title: in.Title, Summary: in.Summary, Notes: in.Notes}); err != nil {
		return nil, err
	}

	input := in.Authors
	if len(input.ExplicitIDs) == 0 && len(input.AmbiguousIDs) == 0 && input.Byline == nil {
		input.ExplicitIDs = actor.PseudIDs
	}
	assignment, err := domain.ResolveAuthors(ctx, s.store, s.byline, input, actor)
	if err != nil {
		return nil, err
	}
	if len(assignment.Authors) == 0 {
		return nil, domainerrors.ValidationWithDetails("a series needs at least one author",
			map[string]string{"authors": "is required"})
	}
	if !actor.IsAdmin() && !containsAny(domain.PseudIDs(assignment.Authors), actor.PseudIDs) {
		return nil, domainerrors.Forbidden("you must be one of the series authors")
	}

	seriesID, err := id.Generate(id.PrefixSeries)
	if err != nil {
		return nil, fmt.Errorf("generate series ID: %w", err)
	}
	series := &domain.Series{
		Syncable: domain.Syncable{ID: seriesID},
		Title:    in.Title,
		Summary:  in.Summary,
		Notes:    in.Notes,
		Authors:  assignment.Authors,
	}
	series.InitTimestamps()

	listed := make(map[string]bool, len(in.WorkIDs))
	for i, workID := range in.WorkIDs {
		if listed[workID] {
			return nil, domainerrors.Validationf("work %s is listed more than once", workID)
		}
		listed[workID] = true
		work, err := s.store.GetWork(ctx, workID)
		if err != nil {
			return nil, fmt.Errorf("work %s: %w", workID, err)
		}
		if err := authorizeWork(actor, work); err != nil {
			return nil, err
		}
		series.Memberships = append(series.Memberships, domain.SeriesMembership{
			WorkID:   workID,
			Position: i + 1,
			Work:     work,
		})
	}
	series.Restricted = series.ShouldBeRestricted()

	if err := s.store.CreateSeries(ctx, series); err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}

	s.logger.Info("series created",
		"series_id", series.ID,
		"user_id", actor.UserID,
		"authors", len(series.Authors),
		"works", len(series.Memberships),
		"restricted", series.Restricted,
	)
	if assignment.HasDiagnostics() {
		s.logger.Debug("byline left unresolved names",
			"series_id", series.ID,
			"invalid", assignment.Invalid,
			"ambiguous", len(assignment.Ambiguous),
		)
	}

	stored, err := s.store.GetSeries(ctx, series.ID)
	if err != nil {
		return nil, err
	}
	return &CreateResult{Series: stored, Assignment: assignment}, nil
}

// Update changes the title, summary or notes of a series.
func (s *SeriesService) Update(ctx context.Context, actor domain.Viewer, seriesID string, in UpdateSeriesInput) (series *domain.Series, err error) {
	defer func() { s.metrics.Operation("update", err) }()

	series, err = s.loadForEdit(ctx, actor, seriesID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		series.Title = *in.Title
	}
	if in.Summary != nil {
		series.Summary = *in.Summary
	}
	if in.Notes != nil {
		series.Notes = *in.Notes
	}
	if err := s.validator.ValidateSeries(series); err != nil {
		return nil, err
	}
	series.Touch()

	if err := s.store.UpdateSeries(ctx, series); err != nil {
		return nil, fmt.Errorf("update series: %w", err)
	}
	s.logger.Info("series updated", "series_id", seriesID, "user_id", actor.UserID)
	return series, nil
}

// Delete removes a series and its memberships. Member works are untouched.
func (s *SeriesService) Delete(ctx context.Context, actor domain.Viewer, seriesID string) (err error) {
	defer func() { s.metrics.Operation("delete", err) }()

	if _, err := s.loadForEdit(ctx, actor, seriesID); err != nil {
		return err
	}
	if err := s.store.DeleteSeries(ctx, seriesID); err != nil {
		return fmt.Errorf("delete series: %w", err)
	}
	s.logger.Info("series deleted", "series_id", seriesID, "user_id", actor.UserID)
	return nil
}

// loadForEdit loads a series the actor may change: admins and series-level
// authors only.
func (s *SeriesService) loadForEdit(ctx context.Context, actor domain.Viewer, seriesID string) (*domain.Series, error) {
	if actor.IsGuest() {
		return nil, domainerrors.Unauthorized("sign in to change a series")
	}
	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || series.HasCreator(actor.PseudIDs) {
		return series, nil
	}
	// Do not reveal series the actor cannot even see.
	if !series.VisibleTo(actor) {
		return nil, domainerrors.NotFoundf("series %s not found", seriesID)
	}
	s.logger.Warn("series edit refused", "series_id", seriesID, "user_id", actor.UserID)
	return nil, domainerrors.Forbidden("only the series authors can change it")
}

// authorizeWork requires the actor to author work unless they are an admin.
func authorizeWork(actor domain.Viewer, work *domain.Work) error {
	if actor.IsAdmin() || containsAny(domain.PseudIDs(work.Authors), actor.PseudIDs) {
		return nil
	}
	return domainerrors.Forbidden(fmt.Sprintf("you are not an author of work %s", work.ID))
}

func containsAny(haystack, needles []string) bool {
	set := make(map[string]bool, len(haystack))
	for _, v := range haystack {
		set[v] = true
	}
	for _, v := range needles {
		if set[v] {
			return true
		}
	}
	return false
}
