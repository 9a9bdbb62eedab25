package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

func TestAssignAuthors_AddsResolvedPseuds(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	assignment, err := env.svc.AssignAuthors(ctx, env.alice, env.f.Series.ID, domain.AuthorInput{
		ExplicitIDs: []string{"pseud-alice"},
		Byline:      strPtr("sam [alice]"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pseud-alice", "pseud-alice-alt"}, domain.PseudIDs(assignment.Authors))
	assert.Empty(t, assignment.ToRemove)

	s, err := env.store.GetSeries(ctx, env.f.Series.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pseud-alice", "pseud-bob", "pseud-alice-alt"}, domain.PseudIDs(s.Authors))
}

func TestAssignAuthors_DropsActorsUnchosenPseuds(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	assignment, err := env.svc.AssignAuthors(ctx, env.bob, env.f.Series.ID, domain.AuthorInput{
		ExplicitIDs: []string{"pseud-alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pseud-bob"}, domain.PseudIDs(assignment.ToRemove))

	s, err := env.store.GetSeries(ctx, env.f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pseud-alice"}, domain.PseudIDs(s.Authors))
}

func TestAssignAuthors_RefusesEmptyResult(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	res, err := env.svc.Create(ctx, env.alice, CreateSeriesInput{
		Title:   "Solo",
		Authors: domain.AuthorInput{ExplicitIDs: []string{"pseud-alice"}},
	})
	require.NoError(t, err)

	_, err = env.svc.AssignAuthors(ctx, env.alice, res.Series.ID, domain.AuthorInput{Byline: strPtr("Nobody")})
	assert.ErrorIs(t, err, domainerrors.ErrLastAuthor)

	s, err := env.store.GetSeries(ctx, res.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pseud-alice"}, domain.PseudIDs(s.Authors))
}

func TestAssignAuthors_NonAuthorForbidden(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.AssignAuthors(t.Context(), env.carol, env.f.Series.ID, domain.AuthorInput{
		ExplicitIDs: []string{"pseud-carol"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestRemoveAuthor_CascadesToSharedWorks(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	plan, err := env.svc.RemoveAuthor(ctx, env.bob, env.f.Series.ID, env.f.Bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{env.f.Shared.ID}, plan.AffectedWorks)

	s, err := env.store.GetSeries(ctx, env.f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pseud-alice"}, domain.PseudIDs(s.Authors))

	shared, err := env.store.GetWork(ctx, env.f.Shared.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pseud-alice"}, domain.PseudIDs(shared.Authors))

	// Alice is now the only author.
	_, err = env.svc.RemoveAuthor(ctx, env.alice, env.f.Series.ID, env.f.Alice.ID)
	assert.ErrorIs(t, err, domainerrors.ErrLastAuthor)
}

func TestRemoveAuthor_SoleWorkAuthorBlocksEverything(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	// Alice alone wrote AliceOnly, so she cannot leave even though Bob stays.
	_, err := env.svc.RemoveAuthor(ctx, env.alice, env.f.Series.ID, env.f.Alice.ID)
	assert.ErrorIs(t, err, domainerrors.ErrLastAuthor)

	s, err := env.store.GetSeries(ctx, env.f.Series.ID)
	require.NoError(t, err)
	assert.Len(t, s.Authors, 2)

	shared, err := env.store.GetWork(ctx, env.f.Shared.ID)
	require.NoError(t, err)
	assert.Len(t, shared.Authors, 2, "no work may change when the plan is refused")
}

func TestRemoveAuthor_WorkOnlyCoauthor(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()
	now := time.Now()

	// Carol co-wrote a member work but is not a series author.
	w := &domain.Work{
		Syncable: domain.Syncable{ID: "work-co", CreatedAt: now, UpdatedAt: now},
		Title:    "Co-written",
		Posted:   true,
		Authors:  []domain.Pseud{env.f.AlicePseud, {ID: "pseud-carol", UserID: "user-carol", Name: "Carol"}},
	}
	require.NoError(t, env.store.CreateWork(ctx, w))
	_, err := env.svc.AddWork(ctx, env.admin, env.f.Series.ID, w.ID)
	require.NoError(t, err)

	plan, err := env.svc.RemoveAuthor(ctx, env.carol, env.f.Series.ID, "user-carol")
	require.NoError(t, err)
	assert.Equal(t, []string{w.ID}, plan.AffectedWorks)

	stored, err := env.store.GetWork(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pseud-alice"}, domain.PseudIDs(stored.Authors))

	s, err := env.store.GetSeries(ctx, env.f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pseud-alice", "pseud-bob"}, domain.PseudIDs(s.Authors), "series authors are unchanged")

	// Carol is no longer credited anywhere in the series.
	_, err = env.svc.RemoveAuthor(ctx, env.carol, env.f.Series.ID, "user-carol")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRemoveAuthor_Permissions(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	_, err := env.svc.RemoveAuthor(ctx, env.guest, env.f.Series.ID, env.f.Bob.ID)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = env.svc.RemoveAuthor(ctx, env.carol, env.f.Series.ID, env.f.Bob.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = env.svc.RemoveAuthor(ctx, env.carol, env.f.Series.ID, "user-carol")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.svc.RemoveAuthor(ctx, env.admin, env.f.Series.ID, env.f.Bob.ID)
	assert.NoError(t, err)
}

func TestMergeAuthors(t *testing.T) {
	a := domain.Pseud{ID: "a"}
	b := domain.Pseud{ID: "b"}
	c := domain.Pseud{ID: "c"}

	got := mergeAuthors([]domain.Pseud{a, b}, []domain.Pseud{c, a}, []domain.Pseud{b})
	assert.Equal(t, []domain.Pseud{a, c}, got)
	assert.Empty(t, mergeAuthors([]domain.Pseud{a}, nil, []domain.Pseud{a}))
}
