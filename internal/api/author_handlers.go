package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/seriesd/internal/domain"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "assignSeriesAuthors",
		Method:      http.MethodPut,
		Path:        "/api/v1/series/{id}/authors",
		Summary:     "Assign authors",
		Description: "Adds authors by id or byline. Unresolved byline names are reported, not rejected.",
		Tags:        []string{"Authors"},
		Security:    bearer,
	}, s.handleAssignAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeSeriesAuthor",
		Method:      http.MethodDelete,
		Path:        "/api/v1/series/{id}/authors/{userID}",
		Summary:     "Remove author",
		Description: "Removes a user's pseuds from the series and from the member works they co-authored",
		Tags:        []string{"Authors"},
		Security:    bearer,
	}, s.handleRemoveAuthor)
}

// AssignAuthorsInput wraps the author selection for huma.
type AssignAuthorsInput struct {
	ID   string `path:"id" doc:"Series ID"`
	Body AuthorsRequest
}

// AssignAuthorsOutput returns the resolved authors and diagnostics.
type AssignAuthorsOutput struct {
	Body *domain.AuthorAssignment
}

// RemoveAuthorInput addresses one author of a series.
type RemoveAuthorInput struct {
	ID     string `path:"id" doc:"Series ID"`
	UserID string `path:"userID" doc:"User whose pseuds are removed"`
}

// RemoveAuthorResponse describes what the removal changed.
type RemoveAuthorResponse struct {
	Remaining     []domain.Pseud `json:"remaining" doc:"Series authors after removal"`
	AffectedWorks []string       `json:"affected_works" doc:"Member works the user was removed from"`
}

// RemoveAuthorOutput wraps the removal response for huma.
type RemoveAuthorOutput struct {
	Body RemoveAuthorResponse
}

func (s *Server) handleAssignAuthors(ctx context.Context, input *AssignAuthorsInput) (*AssignAuthorsOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	assignment, err := s.series.AssignAuthors(ctx, viewer, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &AssignAuthorsOutput{Body: assignment}, nil
}

func (s *Server) handleRemoveAuthor(ctx context.Context, input *RemoveAuthorInput) (*RemoveAuthorOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := s.series.RemoveAuthor(ctx, viewer, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	resp := RemoveAuthorResponse{Remaining: plan.Remaining, AffectedWorks: plan.AffectedWorks}
	if resp.AffectedWorks == nil {
		resp.AffectedWorks = []string{}
	}
	return &RemoveAuthorOutput{Body: resp}, nil
}
