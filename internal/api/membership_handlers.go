package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/seriesd/internal/service"
)

func (s *Server) registerMembershipRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "addSeriesWork",
		Method:        http.MethodPost,
		Path:          "/api/v1/series/{id}/works",
		Summary:       "Add work",
		Description:   "Appends a work at the end of the series",
		Tags:          []string{"Works"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, s.handleAddWork)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeSeriesWork",
		Method:      http.MethodDelete,
		Path:        "/api/v1/series/{id}/works/{workID}",
		Summary:     "Remove work",
		Description: "Removes a work from the series. Positions of the remaining works are left as they are; reorder to close gaps",
		Tags:        []string{"Works"},
		Security:    bearer,
	}, s.handleRemoveWork)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderSeries",
		Method:      http.MethodPut,
		Path:        "/api/v1/series/{id}/order",
		Summary:     "Reorder works",
		Description: "Sets positions from a permutation of the current membership ids",
		Tags:        []string{"Works"},
		Security:    bearer,
	}, s.handleReorder)
}

// AddWorkRequest names the work to append.
type AddWorkRequest struct {
	WorkID string `json:"work_id" minLength:"1" doc:"Work ID"`
}

// AddWorkInput wraps the add request for huma.
type AddWorkInput struct {
	ID   string `path:"id" doc:"Series ID"`
	Body AddWorkRequest
}

// RemoveWorkInput addresses one member work.
type RemoveWorkInput struct {
	ID     string `path:"id" doc:"Series ID"`
	WorkID string `path:"workID" doc:"Work ID"`
}

// ReorderRequest lists every membership id in the new order.
type ReorderRequest struct {
	MembershipIDs []string `json:"membership_ids" doc:"Membership IDs, first to last"`
}

// ReorderInput wraps the reorder request for huma.
type ReorderInput struct {
	ID   string `path:"id" doc:"Series ID"`
	Body ReorderRequest
}

func (s *Server) handleAddWork(ctx context.Context, input *AddWorkInput) (*SeriesOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.series.AddWork(ctx, viewer, input.ID, input.Body.WorkID)
	if err != nil {
		return nil, err
	}
	return &SeriesOutput{Body: service.Summarize(series, viewer)}, nil
}

func (s *Server) handleRemoveWork(ctx context.Context, input *RemoveWorkInput) (*SeriesOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.series.RemoveWork(ctx, viewer, input.ID, input.WorkID)
	if err != nil {
		return nil, err
	}
	return &SeriesOutput{Body: service.Summarize(series, viewer)}, nil
}

func (s *Server) handleReorder(ctx context.Context, input *ReorderInput) (*SeriesOutput, error) {
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.series.Reorder(ctx, viewer, input.ID, input.Body.MembershipIDs)
	if err != nil {
		return nil, err
	}
	return &SeriesOutput{Body: service.Summarize(series, viewer)}, nil
}
