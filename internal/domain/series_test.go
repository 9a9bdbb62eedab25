package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeries_OwnersAreDistinctUsers(t *testing.T) {
	s := newSeries([]Pseud{alice, bob, alix})
	assert.Equal(t, []string{"user-alice", "user-bob"}, s.Owners())
}

func TestSeries_AnonymousAndUnrevealed(t *testing.T) {
	plain := newWork("work-1", false, true, alice)
	anon := newWork("work-2", false, true, alice)
	anon.Anonymous = true

	s := newSeries([]Pseud{alice}, plain)
	assert.False(t, s.Anonymous())
	assert.False(t, s.Unrevealed())

	s = newSeries([]Pseud{alice}, plain, anon)
	assert.True(t, s.Anonymous())

	anon.Unrevealed = true
	assert.True(t, s.Unrevealed())
}

func TestSeries_WorksInPositionOrder(t *testing.T) {
	s := newSeries([]Pseud{alice},
		newWork("work-1", false, false, alice),
		newWork("work-2", false, true, alice),
	)
	s.Memberships[0].Position = 10
	s.Memberships[1].Position = 4

	works := s.Works()
	assert.Equal(t, "work-2", works[0].ID)
	assert.Equal(t, "work-1", works[1].ID)
	assert.Len(t, s.PostedWorks(), 1)
	assert.Equal(t, 10, s.MaxPosition())
	assert.True(t, s.HasWork("work-1"))
	assert.False(t, s.HasWork("work-9"))
}

func TestSeries_HasCreatorIgnoresWorkAuthors(t *testing.T) {
	s := newSeries([]Pseud{alice}, newWork("work-1", false, true, alice, bob))

	assert.True(t, s.HasCreator([]string{alice.ID}))
	assert.False(t, s.HasCreator([]string{bob.ID}))
	assert.True(t, s.IsAuthor([]string{bob.ID}))
	assert.False(t, s.HasCreator(nil))
}
