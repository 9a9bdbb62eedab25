package store_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/store"
)

func TestSentinels_MatchDomainCodes(t *testing.T) {
	notFound := []error{
		store.ErrNotFound,
		store.ErrSeriesNotFound,
		store.ErrWorkNotFound,
		store.ErrPseudNotFound,
		store.ErrUserNotFound,
		store.ErrTagNotFound,
		store.ErrMembershipNotFound,
	}
	for _, err := range notFound {
		assert.ErrorIs(t, err, domainerrors.ErrNotFound, err.Error())
	}

	assert.ErrorIs(t, store.ErrMembershipExists, domainerrors.ErrAlreadyExists)
	assert.ErrorIs(t, store.ErrConflict, domainerrors.ErrConflict)
	assert.NotErrorIs(t, store.ErrConflict, domainerrors.ErrNotFound)
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	err := fmt.Errorf("get series series-1: %w", store.ErrSeriesNotFound)

	assert.ErrorIs(t, err, store.ErrSeriesNotFound)
	assert.Equal(t, "get series series-1: series not found", err.Error())
}
