package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/seriesd/internal/byline"
	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/logger"
	"github.com/listenupapp/seriesd/internal/metrics"
	"github.com/listenupapp/seriesd/internal/store"
	"github.com/listenupapp/seriesd/internal/store/storetest"
	"github.com/listenupapp/seriesd/internal/validation"
)

type testEnv struct {
	svc   *SeriesService
	store store.Store
	f     *storetest.Fixture

	guest, alice, bob, carol, admin domain.Viewer
}

func setupTestService(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.OpenBadger(filepath.Join(t.TempDir(), "badger"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	f := storetest.Seed(t, st)
	ctx := context.Background()
	now := time.Now()

	carol := &domain.User{Syncable: domain.Syncable{ID: "user-carol", CreatedAt: now, UpdatedAt: now}, Login: "carol", Role: domain.RoleMember}
	admin := &domain.User{Syncable: domain.Syncable{ID: "user-admin", CreatedAt: now, UpdatedAt: now}, Login: "root", Role: domain.RoleAdmin}
	require.NoError(t, st.CreateUser(ctx, carol))
	require.NoError(t, st.CreateUser(ctx, admin))
	require.NoError(t, st.CreatePseud(ctx, &domain.Pseud{ID: "pseud-carol", UserID: carol.ID, Name: "Carol"}))

	env := &testEnv{
		svc:   NewSeriesService(st, byline.New(st), validation.New(), metrics.New(), logger.Discard()),
		store: st,
		f:     f,
	}
	env.guest = env.viewer(t, "")
	env.alice = env.viewer(t, f.Alice.ID)
	env.bob = env.viewer(t, f.Bob.ID)
	env.carol = env.viewer(t, carol.ID)
	env.admin = env.viewer(t, admin.ID)
	return env
}

func (e *testEnv) viewer(t *testing.T, userID string) domain.Viewer {
	t.Helper()
	v, err := e.svc.ResolveViewer(context.Background(), userID)
	require.NoError(t, err)
	return v
}

func strPtr(s string) *string { return &s }

func TestResolveViewer(t *testing.T) {
	env := setupTestService(t)

	assert.True(t, env.guest.IsGuest())
	assert.Equal(t, domain.ViewerUser, env.alice.Kind)
	assert.Equal(t, []string{"pseud-alice", "pseud-alice-alt"}, env.alice.PseudIDs)
	assert.True(t, env.admin.IsAdmin())

	_, err := env.svc.ResolveViewer(t.Context(), "user-nobody")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestGetSeries_Visibility(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()
	seriesID := env.f.Series.ID

	for _, v := range []domain.Viewer{env.guest, env.alice, env.carol, env.admin} {
		_, err := env.svc.GetSeries(ctx, v, seriesID)
		assert.NoError(t, err, v.Kind.String())
	}

	_, err := env.svc.SetHiddenByAdmin(ctx, env.admin, seriesID, true)
	require.NoError(t, err)

	_, err = env.svc.GetSeries(ctx, env.guest, seriesID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = env.svc.GetSeries(ctx, env.carol, seriesID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = env.svc.GetSeries(ctx, env.bob, seriesID)
	assert.NoError(t, err, "authors still see a hidden series")
	_, err = env.svc.GetSeries(ctx, env.admin, seriesID)
	assert.NoError(t, err)
}

func TestGetSeries_RestrictedHidesFromGuestsOnly(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	res, err := env.svc.Create(ctx, env.alice, CreateSeriesInput{
		Title:   "Locked",
		WorkIDs: []string{env.f.AliceOnly.ID},
	})
	require.NoError(t, err)
	require.True(t, res.Series.Restricted)

	_, err = env.svc.GetSeries(ctx, env.guest, res.Series.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = env.svc.GetSeries(ctx, env.carol, res.Series.ID)
	assert.NoError(t, err)

	guestList, err := env.svc.ListVisible(ctx, env.guest)
	require.NoError(t, err)
	assert.Len(t, guestList, 1)

	memberList, err := env.svc.ListVisible(ctx, env.carol)
	require.NoError(t, err)
	assert.Len(t, memberList, 2)
}

func TestGetSummary_ScopedToViewer(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	guest, err := env.svc.GetSummary(ctx, env.guest, env.f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, "guest", guest.ViewerClass)
	assert.Equal(t, 1, guest.WorkCount)
	assert.Equal(t, 1200, guest.WordCount)
	require.Len(t, guest.Works, 1)
	assert.Equal(t, "sw-1", guest.Works[0].MembershipID)

	member, err := env.svc.GetSummary(ctx, env.carol, env.f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, "member", member.ViewerClass)
	assert.Equal(t, 2, member.WorkCount)
	assert.Equal(t, 2000, member.WordCount)
	assert.True(t, member.PublishedAt.Equal(env.f.Shared.PublishedAt))
	assert.True(t, member.RevisedAt.Equal(env.f.Shared.RevisedAt))

	author, err := env.svc.GetSummary(ctx, env.bob, env.f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", author.ViewerClass)
	assert.Equal(t, []domain.Tag{env.f.Zelda}, author.Fandoms)
	assert.Equal(t, []string{"pseud-alice", "pseud-bob"}, domain.PseudIDs(author.AllPseuds))

	tags, err := env.svc.GetTags(ctx, env.guest, env.f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{env.f.Fluff}, tags.AuthorTags)
	require.Len(t, tags.Groups, 2)
	assert.Equal(t, string(domain.TagKindFreeform), tags.Groups[0].Kind)
}

func TestCreate_DefaultsToActorPseuds(t *testing.T) {
	env := setupTestService(t)

	res, err := env.svc.Create(t.Context(), env.alice, CreateSeriesInput{
		Title:   "Mine",
		Summary: "short",
		WorkIDs: []string{env.f.AliceOnly.ID, env.f.Shared.ID},
	})
	require.NoError(t, err)

	s := res.Series
	assert.True(t, strings.HasPrefix(s.ID, "series-"))
	assert.ElementsMatch(t, env.alice.PseudIDs, domain.PseudIDs(s.Authors))
	assert.False(t, s.Restricted, "one member work is unrestricted")
	require.Len(t, s.Memberships, 2)
	assert.Equal(t, env.f.AliceOnly.ID, s.Memberships[0].WorkID)
	assert.Equal(t, 1, s.Memberships[0].Position)
	assert.Equal(t, 2, s.Memberships[1].Position)
	assert.Empty(t, res.Assignment.ToRemove)
}

func TestCreate_BylineDiagnosticsDoNotBlock(t *testing.T) {
	env := setupTestService(t)

	res, err := env.svc.Create(t.Context(), env.alice, CreateSeriesInput{
		Title: "With Byline",
		Authors: domain.AuthorInput{
			ExplicitIDs: []string{"pseud-alice"},
			Byline:      strPtr("Nobody, sam"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"pseud-alice"}, domain.PseudIDs(res.Series.Authors))
	assert.Equal(t, []string{"Nobody"}, res.Assignment.Invalid)
	assert.ElementsMatch(t, []string{"pseud-alice-alt", "pseud-bob"}, domain.PseudIDs(res.Assignment.Ambiguous))
	assert.Equal(t, []string{"pseud-alice-alt"}, domain.PseudIDs(res.Assignment.ToRemove))
	assert.True(t, res.Series.Restricted, "an empty series is restricted")
}

func TestCreate_Rejections(t *testing.T) {
	env := setupTestService(t)

	tests := []struct {
		name    string
		actor   func() domain.Viewer
		input   CreateSeriesInput
		wantErr error
	}{
		{
			name:    "guest",
			actor:   func() domain.Viewer { return env.guest },
			input:   CreateSeriesInput{Title: "x"},
			wantErr: domainerrors.ErrUnauthorized,
		},
		{
			name:    "blank title",
			actor:   func() domain.Viewer { return env.alice },
			input:   CreateSeriesInput{Title: "  "},
			wantErr: domainerrors.ErrValidation,
		},
		{
			name:    "unknown pseud",
			actor:   func() domain.Viewer { return env.alice },
			input:   CreateSeriesInput{Title: "x", Authors: domain.AuthorInput{ExplicitIDs: []string{"pseud-ghost"}}},
			wantErr: domainerrors.ErrNotFound,
		},
		{
			name:    "nothing resolved",
			actor:   func() domain.Viewer { return env.alice },
			input:   CreateSeriesInput{Title: "x", Authors: domain.AuthorInput{Byline: strPtr("Nobody")}},
			wantErr: domainerrors.ErrValidation,
		},
		{
			name:    "actor not an author",
			actor:   func() domain.Viewer { return env.carol },
			input:   CreateSeriesInput{Title: "x", Authors: domain.AuthorInput{ExplicitIDs: []string{"pseud-alice"}}},
			wantErr: domainerrors.ErrForbidden,
		},
		{
			name:    "someone else's work",
			actor:   func() domain.Viewer { return env.bob },
			input:   CreateSeriesInput{Title: "x", WorkIDs: []string{env.f.AliceOnly.ID}},
			wantErr: domainerrors.ErrForbidden,
		},
		{
			name:    "missing work",
			actor:   func() domain.Viewer { return env.bob },
			input:   CreateSeriesInput{Title: "x", WorkIDs: []string{"work-ghost"}},
			wantErr: domainerrors.ErrNotFound,
		},
		{
			name:    "duplicate work",
			actor:   func() domain.Viewer { return env.bob },
			input:   CreateSeriesInput{Title: "x", WorkIDs: []string{env.f.Shared.ID, env.f.Shared.ID}},
			wantErr: domainerrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Create(t.Context(), tt.actor(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	ids, err := env.store.ListSeriesIDs(t.Context())
	require.NoError(t, err)
	assert.Len(t, ids, 1, "no rejected create may write")
}

func TestUpdate(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()
	seriesID := env.f.Series.ID

	updated, err := env.svc.Update(ctx, env.bob, seriesID, UpdateSeriesInput{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "A summary", updated.Summary)

	stored, err := env.store.GetSeries(ctx, seriesID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)

	_, err = env.svc.Update(ctx, env.carol, seriesID, UpdateSeriesInput{Title: strPtr("Mine now")})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = env.svc.Update(ctx, env.guest, seriesID, UpdateSeriesInput{Title: strPtr("Mine now")})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = env.svc.Update(ctx, env.alice, seriesID, UpdateSeriesInput{Notes: strPtr(strings.Repeat("n", validation.NotesMax+1))})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestDelete(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	assert.ErrorIs(t, env.svc.Delete(ctx, env.carol, env.f.Series.ID), domainerrors.ErrForbidden)
	require.NoError(t, env.svc.Delete(ctx, env.bob, env.f.Series.ID))

	_, err := env.svc.GetSeries(ctx, env.admin, env.f.Series.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	work, err := env.store.GetWork(ctx, env.f.Shared.ID)
	require.NoError(t, err)
	assert.Len(t, work.Authors, 2, "member works survive")
}
