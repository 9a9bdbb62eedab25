// Package storetest is a contract suite every store.Store implementation
// must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/store"
)

// Factory returns a fresh, empty store. It should register cleanup on t.
type Factory func(t *testing.T) store.Store

// Fixture is the data Seed writes.
type Fixture struct {
	Alice, Bob           *domain.User
	AlicePseud, AliceAlt domain.Pseud
	BobPseud             domain.Pseud
	Fluff, Zelda         domain.Tag
	Shared, AliceOnly    *domain.Work
	Series               *domain.Series
}

// Seed writes two users, three pseuds, two tags, two works and a series
// holding both works and authored by Alice and Bob.
func Seed(t *testing.T, s store.Store) *Fixture {
	t.Helper()
	ctx := context.Background()
	when := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	f := &Fixture{
		Alice:      &domain.User{Syncable: domain.Syncable{ID: "user-alice", CreatedAt: when, UpdatedAt: when}, Login: "alice", Role: domain.RoleMember},
		Bob:        &domain.User{Syncable: domain.Syncable{ID: "user-bob", CreatedAt: when, UpdatedAt: when}, Login: "Bob", Role: domain.RoleMember},
		AlicePseud: domain.Pseud{ID: "pseud-alice", UserID: "user-alice", Name: "Alice"},
		AliceAlt:   domain.Pseud{ID: "pseud-alice-alt", UserID: "user-alice", Name: "Sam"},
		BobPseud:   domain.Pseud{ID: "pseud-bob", UserID: "user-bob", Name: "sam"},
		Fluff:      domain.Tag{ID: "tag-fluff", Name: "Fluff", Kind: domain.TagKindFreeform},
		Zelda:      domain.Tag{ID: "tag-zelda", Name: "Zelda", Kind: domain.TagKindFandom},
	}

	require.NoError(t, s.CreateUser(ctx, f.Alice))
	require.NoError(t, s.CreateUser(ctx, f.Bob))
	for _, p := range []domain.Pseud{f.AlicePseud, f.AliceAlt, f.BobPseud} {
		require.NoError(t, s.CreatePseud(ctx, &p))
	}
	require.NoError(t, s.CreateTag(ctx, &f.Fluff))
	require.NoError(t, s.CreateTag(ctx, &f.Zelda))

	f.Shared = &domain.Work{
		Syncable:    domain.Syncable{ID: "work-shared", CreatedAt: when, UpdatedAt: when},
		Title:       "Shared",
		Posted:      true,
		WordCount:   1200,
		PublishedAt: when,
		RevisedAt:   when.Add(48 * time.Hour),
		Authors:     []domain.Pseud{f.AlicePseud, f.BobPseud},
		Tags:        []domain.Tag{f.Fluff, f.Zelda},
	}
	f.AliceOnly = &domain.Work{
		Syncable:   domain.Syncable{ID: "work-alice", CreatedAt: when, UpdatedAt: when},
		Title:      "Alice Alone",
		Restricted: true,
		Posted:     true,
		WordCount:  800,
		Authors:    []domain.Pseud{f.AlicePseud},
		Tags:       []domain.Tag{f.Fluff},
	}
	require.NoError(t, s.CreateWork(ctx, f.Shared))
	require.NoError(t, s.CreateWork(ctx, f.AliceOnly))

	f.Series = &domain.Series{
		Syncable: domain.Syncable{ID: "series-1", CreatedAt: when, UpdatedAt: when},
		Title:    "The Series",
		Summary:  "A summary",
		Authors:  []domain.Pseud{f.AlicePseud, f.BobPseud},
		Memberships: []domain.SeriesMembership{
			{ID: "sw-1", WorkID: f.Shared.ID, Position: 1},
			{ID: "sw-2", WorkID: f.AliceOnly.ID, Position: 2},
		},
	}
	require.NoError(t, s.CreateSeries(ctx, f.Series))
	return f
}

// Run executes the contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Ping", testPing},
		{"UsersAndPseuds", testUsersAndPseuds},
		{"DuplicateIDs", testDuplicateIDs},
		{"WorkRoundTrip", testWorkRoundTrip},
		{"GetSeriesHydrated", testGetSeriesHydrated},
		{"CreateSeriesUnknownWork", testCreateSeriesUnknownWork},
		{"UpdateSeriesScalars", testUpdateSeriesScalars},
		{"AddAndRemoveWork", testAddAndRemoveWork},
		{"MembershipSyncsRestricted", testMembershipSyncsRestricted},
		{"DeleteSeriesCascades", testDeleteSeriesCascades},
		{"ListSeries", testListSeries},
		{"ApplyAuthorRemoval", testApplyAuthorRemoval},
		{"ApplyRollsBackOnFailure", testApplyRollsBackOnFailure},
		{"ApplyRefusesLastWorkAuthor", testApplyRefusesLastWorkAuthor},
		{"ApplyPositions", testApplyPositions},
		{"ApplyPositionCollision", testApplyPositionCollision},
		{"ApplyFlags", testApplyFlags},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func testPing(t *testing.T, s store.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}

func testUsersAndPseuds(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	u, err := s.GetUser(ctx, f.Alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Login)

	u, err = s.GetUserByLogin(ctx, "BOB")
	require.NoError(t, err)
	assert.Equal(t, f.Bob.ID, u.ID)

	_, err = s.GetUser(ctx, "user-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	pseuds, err := s.ListPseudsByUser(ctx, f.Alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Pseud{f.AlicePseud, f.AliceAlt}, pseuds)

	byName, err := s.FindPseudsByName(ctx, "SAM")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Pseud{f.AliceAlt, f.BobPseud}, byName)

	none, err := s.FindPseudsByName(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	orphan := domain.Pseud{ID: "pseud-orphan", UserID: "user-missing", Name: "Orphan"}
	assert.ErrorIs(t, s.CreatePseud(ctx, &orphan), domainerrors.ErrNotFound)
}

func testDuplicateIDs(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	assert.ErrorIs(t, s.CreateUser(ctx, f.Alice), domainerrors.ErrAlreadyExists)
	assert.ErrorIs(t, s.CreateTag(ctx, &f.Fluff), domainerrors.ErrAlreadyExists)
	assert.ErrorIs(t, s.CreateSeries(ctx, &domain.Series{
		Syncable: f.Series.Syncable,
		Title:    "Again",
		Authors:  []domain.Pseud{f.AlicePseud},
	}), domainerrors.ErrAlreadyExists)
}

func testWorkRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	w, err := s.GetWork(ctx, f.Shared.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shared", w.Title)
	assert.True(t, w.Posted)
	assert.Equal(t, 1200, w.WordCount)
	assert.True(t, f.Shared.PublishedAt.Equal(w.PublishedAt))
	assert.True(t, f.Shared.RevisedAt.Equal(w.RevisedAt))
	assert.Equal(t, []domain.Pseud{f.AlicePseud, f.BobPseud}, w.Authors)
	assert.ElementsMatch(t, []domain.Tag{f.Fluff, f.Zelda}, w.Tags)

	w2, err := s.GetWork(ctx, f.AliceOnly.ID)
	require.NoError(t, err)
	assert.True(t, w2.PublishedAt.IsZero())

	w.Restricted = true
	w.Authors = []domain.Pseud{f.BobPseud}
	require.NoError(t, s.UpdateWork(ctx, w))

	got, err := s.GetWork(ctx, f.Shared.ID)
	require.NoError(t, err)
	assert.True(t, got.Restricted)
	assert.Equal(t, []domain.Pseud{f.BobPseud}, got.Authors)

	_, err = s.GetWork(ctx, "work-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func testGetSeriesHydrated(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)

	assert.Equal(t, "The Series", got.Title)
	assert.Equal(t, "A summary", got.Summary)
	assert.Equal(t, []domain.Pseud{f.AlicePseud, f.BobPseud}, got.Authors)
	require.Len(t, got.Memberships, 2)
	assert.Equal(t, "sw-1", got.Memberships[0].ID)
	assert.Equal(t, f.Series.ID, got.Memberships[0].SeriesID)
	require.NotNil(t, got.Memberships[0].Work)
	assert.Equal(t, f.Shared.ID, got.Memberships[0].Work.ID)
	assert.Equal(t, []domain.Pseud{f.AlicePseud, f.BobPseud}, got.Memberships[0].Work.Authors)
	assert.Equal(t, f.AliceOnly.ID, got.Memberships[1].Work.ID)

	_, err = s.GetSeries(ctx, "series-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func testCreateSeriesUnknownWork(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	err := s.CreateSeries(ctx, &domain.Series{
		Syncable:    domain.Syncable{ID: "series-broken", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Title:       "Broken",
		Authors:     []domain.Pseud{f.AlicePseud},
		Memberships: []domain.SeriesMembership{{WorkID: "work-missing", Position: 1}},
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = s.GetSeries(ctx, "series-broken")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound, "nothing may be left behind")
}

func testUpdateSeriesScalars(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	series, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	series.Title = "Renamed"
	series.Notes = "Some notes"
	series.Restricted = true
	series.Touch()
	require.NoError(t, s.UpdateSeries(ctx, series))

	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "Some notes", got.Notes)
	assert.True(t, got.Restricted)
	assert.Len(t, got.Authors, 2)
	assert.Len(t, got.Memberships, 2)

	missing := &domain.Series{Syncable: domain.Syncable{ID: "series-missing"}, Title: "x"}
	assert.ErrorIs(t, s.UpdateSeries(ctx, missing), domainerrors.ErrNotFound)
}

func testAddAndRemoveWork(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	extra := &domain.Work{
		Syncable: domain.Syncable{ID: "work-extra", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Title:    "Extra",
		Authors:  []domain.Pseud{f.BobPseud},
	}
	require.NoError(t, s.CreateWork(ctx, extra))

	m, err := s.AddWorkToSeries(ctx, f.Series.ID, extra.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Position)
	assert.NotEmpty(t, m.ID)

	_, err = s.AddWorkToSeries(ctx, f.Series.ID, extra.ID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = s.AddWorkToSeries(ctx, f.Series.ID, "work-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	ids, err := s.ListSeriesIDsByWork(ctx, extra.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.Series.ID}, ids)

	require.NoError(t, s.RemoveWorkFromSeries(ctx, f.Series.ID, f.Shared.ID))
	assert.ErrorIs(t, s.RemoveWorkFromSeries(ctx, f.Series.ID, f.Shared.ID), domainerrors.ErrNotFound)

	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	require.Len(t, got.Memberships, 2)
	assert.Equal(t, f.AliceOnly.ID, got.Memberships[0].WorkID)
	assert.Equal(t, extra.ID, got.Memberships[1].WorkID)
	assert.Equal(t, []int{2, 3}, []int{got.Memberships[0].Position, got.Memberships[1].Position}, "removal leaves the gap")

	// The work itself survives removal from the series.
	_, err = s.GetWork(ctx, f.Shared.ID)
	assert.NoError(t, err)
}

func testMembershipSyncsRestricted(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	require.NoError(t, s.RemoveWorkFromSeries(ctx, f.Series.ID, f.Shared.ID))
	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.True(t, got.Restricted, "only restricted works remain")

	_, err = s.AddWorkToSeries(ctx, f.Series.ID, f.Shared.ID)
	require.NoError(t, err)
	got, err = s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.False(t, got.Restricted)

	require.NoError(t, s.RemoveWorkFromSeries(ctx, f.Series.ID, f.Shared.ID))
	require.NoError(t, s.RemoveWorkFromSeries(ctx, f.Series.ID, f.AliceOnly.ID))
	got, err = s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Memberships)
	assert.True(t, got.Restricted, "an empty series is restricted")
}

func testDeleteSeriesCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	require.NoError(t, s.DeleteSeries(ctx, f.Series.ID))

	_, err := s.GetSeries(ctx, f.Series.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	ids, err := s.ListSeriesIDsByWork(ctx, f.Shared.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = s.GetWork(ctx, f.Shared.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.DeleteSeries(ctx, f.Series.ID), domainerrors.ErrNotFound)
}

func testListSeries(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	second := &domain.Series{
		Syncable:    domain.Syncable{ID: "series-2", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Title:       "Second",
		Authors:     []domain.Pseud{f.AlicePseud},
		Memberships: []domain.SeriesMembership{{WorkID: f.Shared.ID, Position: 1}},
	}
	require.NoError(t, s.CreateSeries(ctx, second))
	assert.NotEmpty(t, second.Memberships[0].ID)

	ids, err := s.ListSeriesIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"series-1", "series-2"}, ids)

	byWork, err := s.ListSeriesIDsByWork(ctx, f.Shared.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"series-1", "series-2"}, byWork)

	byWork, err = s.ListSeriesIDsByWork(ctx, f.AliceOnly.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"series-1"}, byWork)
}

func testApplyAuthorRemoval(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	series, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)

	plan, err := domain.PlanAuthorRemoval(series, []string{f.BobPseud.ID})
	require.NoError(t, err)
	require.NoError(t, s.Apply(ctx, plan.Mutations...))

	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Pseud{f.AlicePseud}, got.Authors)

	shared, err := s.GetWork(ctx, f.Shared.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Pseud{f.AlicePseud}, shared.Authors)
}

func testApplyRollsBackOnFailure(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	err := s.Apply(ctx,
		domain.SetSeriesAuthors{SeriesID: f.Series.ID, PseudIDs: []string{f.AlicePseud.ID}},
		domain.RemoveWorkAuthors{WorkID: "work-missing", PseudIDs: []string{f.BobPseud.ID}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Pseud{f.AlicePseud, f.BobPseud}, got.Authors, "first mutation must be rolled back")
}

func testApplyRefusesLastWorkAuthor(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	err := s.Apply(ctx,
		domain.SetSeriesAuthors{SeriesID: f.Series.ID, PseudIDs: []string{f.BobPseud.ID}},
		domain.RemoveWorkAuthors{WorkID: f.Shared.ID, PseudIDs: []string{f.AlicePseud.ID}},
		domain.RemoveWorkAuthors{WorkID: f.AliceOnly.ID, PseudIDs: []string{f.AlicePseud.ID}},
	)
	assert.ErrorIs(t, err, domainerrors.ErrLastAuthor)

	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.Len(t, got.Authors, 2)
	assert.Equal(t, []domain.Pseud{f.AlicePseud, f.BobPseud}, got.Memberships[0].Work.Authors)

	assert.ErrorIs(t, s.Apply(ctx, domain.SetSeriesAuthors{SeriesID: f.Series.ID}), domainerrors.ErrLastAuthor)
}

func testApplyPositions(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	series, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)

	mut, err := series.Reorder([]string{"sw-2", "sw-1"})
	require.NoError(t, err)
	require.NoError(t, s.Apply(ctx, mut))

	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	require.Len(t, got.Memberships, 2)
	assert.Equal(t, "sw-2", got.Memberships[0].ID)
	assert.Equal(t, 1, got.Memberships[0].Position)
	assert.Equal(t, "sw-1", got.Memberships[1].ID)
	assert.Equal(t, 2, got.Memberships[1].Position)

	err = s.Apply(ctx, domain.SetMembershipPositions{
		SeriesID:  f.Series.ID,
		Positions: map[string]int{"sw-unknown": 1},
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func testApplyPositionCollision(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	err := s.Apply(ctx, domain.SetMembershipPositions{
		SeriesID:  f.Series.ID,
		Positions: map[string]int{"sw-1": 2},
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPermutation)

	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Memberships[0].Position)
	assert.Equal(t, 2, got.Memberships[1].Position)
}

func testApplyFlags(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	require.NoError(t, s.Apply(ctx,
		domain.SetSeriesRestricted{SeriesID: f.Series.ID, Restricted: true},
		domain.SetSeriesHidden{SeriesID: f.Series.ID, Hidden: true},
	))

	got, err := s.GetSeries(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.True(t, got.Restricted)
	assert.True(t, got.HiddenByAdmin)

	err = s.Apply(ctx, domain.SetSeriesHidden{SeriesID: "series-missing", Hidden: true})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.NoError(t, s.Apply(ctx))
}
