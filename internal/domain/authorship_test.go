package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

type fakeLookup map[string]Pseud

func (f fakeLookup) GetPseud(_ context.Context, id string) (*Pseud, error) {
	p, ok := f[id]
	if !ok {
		return nil, domainerrors.NotFoundf("pseud %s not found", id)
	}
	return &p, nil
}

type fakeParser struct {
	result BylineResult
	got    string
}

func (f *fakeParser) Parse(_ context.Context, text string) (BylineResult, error) {
	f.got = text
	return f.result, nil
}

func pseuds() fakeLookup {
	return fakeLookup{alice.ID: alice, alix.ID: alix, bob.ID: bob, carol.ID: carol}
}

func TestResolveAuthors_InvalidBylineIsDiagnostic(t *testing.T) {
	byline := "invalid_handle"
	parser := &fakeParser{result: BylineResult{Invalid: []string{"invalid_handle"}}}

	got, err := ResolveAuthors(context.Background(), pseuds(), parser, AuthorInput{
		ExplicitIDs: []string{alice.ID, bob.ID},
		Byline:      &byline,
	}, GuestViewer())
	require.NoError(t, err)

	assert.Equal(t, []Pseud{alice, bob}, got.Authors)
	assert.Equal(t, []string{"invalid_handle"}, got.Invalid)
	assert.Empty(t, got.Ambiguous)
	assert.True(t, got.HasDiagnostics())
	assert.Equal(t, "invalid_handle", parser.got)
}

func TestResolveAuthors_MergesSourcesAndDeduplicates(t *testing.T) {
	byline := "Carol, Alice"
	parser := &fakeParser{result: BylineResult{
		Pseuds:    []Pseud{carol, alice},
		Ambiguous: []Pseud{alix},
	}}

	got, err := ResolveAuthors(context.Background(), pseuds(), parser, AuthorInput{
		ExplicitIDs:  []string{alice.ID},
		AmbiguousIDs: []string{bob.ID, alice.ID},
		Byline:       &byline,
	}, GuestViewer())
	require.NoError(t, err)

	assert.Equal(t, []Pseud{alice, bob, carol}, got.Authors)
	assert.Equal(t, []Pseud{alix}, got.Ambiguous)
	assert.Empty(t, got.ToRemove, "guests never get a removal set")
}

func TestResolveAuthors_UnknownIDPropagates(t *testing.T) {
	_, err := ResolveAuthors(context.Background(), pseuds(), nil, AuthorInput{
		ExplicitIDs: []string{alice.ID, "pseud-missing"},
	}, GuestViewer())

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestResolveAuthors_ToRemoveIsActorPseudsNotChosen(t *testing.T) {
	actor := UserViewer("user-alice", []string{alice.ID, alix.ID})

	got, err := ResolveAuthors(context.Background(), pseuds(), nil, AuthorInput{
		ExplicitIDs: []string{alix.ID, bob.ID},
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, []Pseud{alix, bob}, got.Authors)
	assert.Equal(t, []Pseud{alice}, got.ToRemove)
	assert.False(t, got.HasDiagnostics())
}

func TestResolveAuthors_NoBylineSkipsParser(t *testing.T) {
	parser := &fakeParser{}
	_, err := ResolveAuthors(context.Background(), pseuds(), parser, AuthorInput{
		ExplicitIDs: []string{bob.ID},
	}, GuestViewer())
	require.NoError(t, err)
	assert.Empty(t, parser.got)
}

func TestResolveAuthors_BylineWithoutParserIsInvalid(t *testing.T) {
	byline := "  Carol, Alice "

	got, err := ResolveAuthors(context.Background(), pseuds(), nil, AuthorInput{
		ExplicitIDs: []string{bob.ID},
		Byline:      &byline,
	}, GuestViewer())
	require.NoError(t, err)

	assert.Equal(t, []Pseud{bob}, got.Authors)
	assert.Equal(t, []string{"Carol, Alice"}, got.Invalid)
	assert.True(t, got.HasDiagnostics())

	blank := "   "
	got, err = ResolveAuthors(context.Background(), pseuds(), nil, AuthorInput{
		ExplicitIDs: []string{bob.ID},
		Byline:      &blank,
	}, GuestViewer())
	require.NoError(t, err)
	assert.Empty(t, got.Invalid)
}
