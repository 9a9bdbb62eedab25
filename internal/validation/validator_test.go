package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/validation"
)

func TestValidateSeries(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		series    domain.Series
		wantField string
		wantMsg   string
	}{
		{name: "valid", series: domain.Series{Title: "A Title", Summary: "short"}},
		{name: "title at max", series: domain.Series{Title: strings.Repeat("é", validation.TitleMax)}},
		{name: "missing title", series: domain.Series{}, wantField: "title", wantMsg: "is required"},
		{name: "blank title", series: domain.Series{Title: "   "}, wantField: "title", wantMsg: "is required"},
		{name: "title too long", series: domain.Series{Title: strings.Repeat("x", validation.TitleMax+1)}, wantField: "title", wantMsg: "must not exceed 255 characters"},
		{name: "summary too long", series: domain.Series{Title: "ok", Summary: strings.Repeat("x", validation.SummaryMax+1)}, wantField: "summary", wantMsg: "must not exceed 1250 characters"},
		{name: "notes too long", series: domain.Series{Title: "ok", Notes: strings.Repeat("x", validation.NotesMax+1)}, wantField: "notes", wantMsg: "must not exceed 5000 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSeries(&tt.series)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidateTag(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(validation.TagFields{Name: "Fluff", Kind: domain.TagKindFreeform}))

	err := v.Validate(validation.TagFields{Name: "Fluff", Kind: "Genre"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Details.(map[string]string)["kind"], "must be one of")
}
