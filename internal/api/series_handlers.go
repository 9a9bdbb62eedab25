package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/seriesd/internal/domain"
	"github.com/listenupapp/seriesd/internal/service"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (s *Server) registerSeriesRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSeries",
		Method:      http.MethodGet,
		Path:        "/api/v1/series",
		Summary:     "List series",
		Description: "Lists every series visible to the caller",
		Tags:        []string{"Series"},
	}, s.handleListSeries)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSeries",
		Method:      http.MethodGet,
		Path:        "/api/v1/series/{id}",
		Summary:     "Get series",
		Description: "Returns the series as seen by the caller",
		Tags:        []string{"Series"},
	}, s.handleGetSeries)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createSeries",
		Method:        http.MethodPost,
		Path:          "/api/v1/series",
		Summary:       "Create series",
		Description:   "Creates a series with authors and optional initial works",
		Tags:          []string{"Series"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, s.handleCreateSeries)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSeries",
		Method:      http.MethodPatch,
		Path:        "/api/v1/series/{id}",
		Summary:     "Update series",
		Description: "Changes the title, summary or notes",
		Tags:        []string{"Series"},
		Security:    bearer,
	}, s.handleUpdateSeries)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSeries",
		Method:        http.MethodDelete,
		Path:          "/api/v1/series/{id}",
		Summary:       "Delete series",
		Description:   "Deletes a series and its memberships. Works are untouched.",
		Tags:          []string{"Series"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearer,
	}, s.handleDeleteSeries)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSeriesTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/series/{id}/tags",
		Summary:     "Get series tags",
		Description: "Returns author tags and tags grouped by kind across visible works",
		Tags:        []string{"Series"},
	}, s.handleGetSeriesTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSeriesHidden",
		Method:      http.MethodPut,
		Path:        "/api/v1/series/{id}/hidden",
		Summary:     "Hide or unhide series",
		Description: "Admin only",
		Tags:        []string{"Series", "Admin"},
		Security:    bearer,
	}, s.handleSetHidden)
}

// SeriesIDInput addresses a single series.
type SeriesIDInput struct {
	ID string `path:"id" doc:"Series ID"`
}

// SeriesOutput wraps a viewer-scoped summary.
type SeriesOutput struct {
	Body *service.Summary
}

// ListSeriesResponse contains the visible series.
type ListSeriesResponse struct {
	Series []*service.Summary `json:"series" doc:"Visible series"`
}

// ListSeriesOutput wraps the list response for huma.
type ListSeriesOutput struct {
	Body ListSeriesResponse
}

// AuthorsRequest selects authors by id and/or free-text byline.
type AuthorsRequest struct {
	PseudIDs     []string `json:"pseud_ids,omitempty" doc:"Pseud IDs picked directly"`
	AmbiguousIDs []string `json:"ambiguous_ids,omitempty" doc:"Pseud IDs chosen to settle an ambiguous byline"`
	Byline       *string  `json:"byline,omitempty" maxLength:"1000" doc:"Comma-separated pseud names, optionally name (login)"`
}

func (r *AuthorsRequest) toInput() domain.AuthorInput {
	if r == nil {
		return domain.AuthorInput{}
	}
	return domain.AuthorInput{ExplicitIDs: r.PseudIDs, AmbiguousIDs: r.AmbiguousIDs, Byline: r.Byline}
}

// CreateSeriesRequest is the request body for creating a series.
type CreateSeriesRequest struct {
	Title   string          `json:"title" doc:"Series title"`
	Summary string          `json:"summary,omitempty" doc:"Series summary"`
	Notes   string          `json:"notes,omitempty" doc:"Series notes"`
	Authors *AuthorsRequest `json:"authors,omitempty" doc:"Authors; defaults to every pseud of the caller"`
	WorkIDs []string        `json:"work_ids,omitempty" doc:"Works to add in order"`
}

// CreateSeriesInput wraps the create request for huma.
type CreateSeriesInput struct {
	Body CreateSeriesRequest
}

// CreateSeriesResponse is the created series plus author diagnostics.
type CreateSeriesResponse struct {
	Series     *service.Summary         `json:"series" doc:"Created series"`
	Assignment *domain.AuthorAssignment `json:"assignment" doc:"Resolved authors and byline diagnostics"`
}

// CreateSeriesOutput wraps the create response for huma.
type CreateSeriesOutput struct {
	Body CreateSeriesResponse
}

// UpdateSeriesRequest changes the fields that are present.
type UpdateSeriesRequest struct {
	Title   *string `json:"title,omitempty" doc:"New title"`
	Summary *string `json:"summary,omitempty" doc:"New summary"`
	Notes   *string `json:"notes,omitempty" doc:"New notes"`
}

// UpdateSeriesInput wraps the update request for huma.
type UpdateSeriesInput struct {
	ID   string `path:"id" doc:"Series ID"`
	Body UpdateSeriesRequest
}

// TagsOutput wraps the tag summary.
type TagsOutput struct {
	Body *service.TagSummary
}

// SetHiddenRequest is the body for hiding a series.
type SetHiddenRequest struct {
	Hidden bool `json:"hidden" doc:"Whether the series is hidden by an admin"`
}

// SetHiddenInput wraps the hide request for huma.
type SetHiddenInput struct {
	ID   string `path:"id" doc:"Series ID"`
	Body SetHiddenRequest
}

func (s *Server) handleListSeries(ctx context.Context, _ *struct{}) (*ListSeriesOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.series.ListVisible(ctx, viewer)
	if err != nil {
		return nil, err
	}
	resp := ListSeriesResponse{Series: make([]*service.Summary, 0, len(list))}
	for _, series := range list {
		resp.Series = append(resp.Series, service.Summarize(series, viewer))
	}
	return &ListSeriesOutput{Body: resp}, nil
}

func (s *Server) handleGetSeries(ctx context.Context, input *SeriesIDInput) (*SeriesOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.series.GetSummary(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}
	return &SeriesOutput{Body: summary}, nil
}

func (s *Server) handleCreateSeries(ctx context.Context, input *CreateSeriesInput) (*CreateSeriesOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.series.Create(ctx, viewer, service.CreateSeriesInput{
		Title:   input.Body.Title,
		Summary: input.Body.Summary,
		Notes:   input.Body.Notes,
		Authors: input.Body.Authors.toInput(),
		WorkIDs: input.Body.WorkIDs,
	})
	if err != nil {
		return nil, err
	}
	return &CreateSeriesOutput{Body: CreateSeriesResponse{
		Series:     service.Summarize(result.Series, viewer),
		Assignment: result.Assignment,
	}}, nil
}

func (s *Server) handleUpdateSeries(ctx context.Context, input *UpdateSeriesInput) (*SeriesOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.series.Update(ctx, viewer, input.ID, service.UpdateSeriesInput{
		Title:   input.Body.Title,
		Summary: input.Body.Summary,
		Notes:   input.Body.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &SeriesOutput{Body: service.Summarize(series, viewer)}, nil
}

func (s *Server) handleDeleteSeries(ctx context.Context, input *SeriesIDInput) (*struct{}, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.series.Delete(ctx, viewer, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleGetSeriesTags(ctx context.Context, input *SeriesIDInput) (*TagsOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.series.GetTags(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagsOutput{Body: tags}, nil
}

func (s *Server) handleSetHidden(ctx context.Context, input *SetHiddenInput) (*SeriesOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.series.SetHiddenByAdmin(ctx, viewer, input.ID, input.Body.Hidden)
	if err != nil {
		return nil, err
	}
	return &SeriesOutput{Body: service.Summarize(series, viewer)}, nil
}
