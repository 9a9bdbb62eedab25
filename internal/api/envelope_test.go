package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{name: "success response", status: "200", input: map[string]string{"key": "value"}},
		{name: "created response", status: "201", input: map[string]string{"id": "123"}},
		{name: "no content response", status: "204", input: nil},
		{name: "bad request error", status: "400", input: errors.New("invalid input")},
		{
			name:   "conflict error with details",
			status: "409",
			input: &APIError{
				Code:    "LAST_AUTHOR",
				Message: "a series must keep at least one author",
				Details: map[string]string{"series_id": "series-1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			raw, err := json.Marshal(result)
			require.NoError(t, err)

			var out map[string]any
			require.NoError(t, json.Unmarshal(raw, &out))
			assert.InDelta(t, float64(EnvelopeVersion), out["v"], 0)
			assert.Contains(t, out, "success")
		})
	}
}

func TestEnvelopeTransformer_ErrorFields(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "409", &APIError{
		status:  http.StatusConflict,
		Code:    "LAST_AUTHOR",
		Message: "cannot remove the last author",
	})
	require.NoError(t, err)

	env, ok := result.(APIEnvelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Equal(t, "LAST_AUTHOR", env.Code)
	assert.Equal(t, "cannot remove the last author", env.Error)
	assert.Nil(t, env.Data)
}

func TestRegisterErrorHandler_MapsDomainErrors(t *testing.T) {
	RegisterErrorHandler()

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domainerrors.NotFound("series not found"), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("remove: %w", domainerrors.LastAuthor("last")), http.StatusConflict, "LAST_AUTHOR"},
		{domainerrors.InvalidPermutationf("bad ids"), http.StatusUnprocessableEntity, "INVALID_PERMUTATION"},
		{domainerrors.Forbidden("admin only"), http.StatusForbidden, "FORBIDDEN"},
		{domainerrors.Validation("bad title"), http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			statusErr := huma.NewError(http.StatusInternalServerError, "ignored", tt.err)
			assert.Equal(t, tt.wantStatus, statusErr.GetStatus())

			var apiErr *APIError
			require.ErrorAs(t, statusErr, &apiErr)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestRegisterErrorHandler_PlainErrors(t *testing.T) {
	RegisterErrorHandler()

	statusErr := huma.NewError(http.StatusUnprocessableEntity, "validation failed", errors.New("body.title: expected string"))

	var apiErr *APIError
	require.ErrorAs(t, statusErr, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.GetStatus())
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, []string{"body.title: expected string"}, apiErr.Details)
}
