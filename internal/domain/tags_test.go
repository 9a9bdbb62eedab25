package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

func TestAuthorTags_KindOrder(t *testing.T) {
	w := newWork("work-1", false, true, alice)
	w.Tags = []Tag{
		{ID: "tag-1", Name: "fluff", Kind: TagKindFreeform},
		{ID: "tag-2", Name: "Zelda", Kind: TagKindCharacter},
		{ID: "tag-3", Name: "Link/Zelda", Kind: TagKindRelationship},
		{ID: "tag-4", Name: "angst", Kind: TagKindFreeform},
		{ID: "tag-5", Name: "General Audiences", Kind: TagKindRating},
		{ID: "tag-6", Name: "link", Kind: TagKindCharacter},
	}
	s := newSeries([]Pseud{alice}, w)

	assert.Equal(t, []string{"Link/Zelda", "link", "Zelda", "angst", "fluff"}, tagNames(s.AuthorTags()))
}

func TestAuthorTags_DeduplicatesAcrossWorks(t *testing.T) {
	fluff := Tag{ID: "tag-1", Name: "Fluff", Kind: TagKindFreeform}
	w1 := newWork("work-1", false, true, alice)
	w1.Tags = []Tag{fluff}
	w2 := newWork("work-2", false, true, alice)
	w2.Tags = []Tag{fluff}

	s := newSeries([]Pseud{alice}, w1, w2)
	assert.Equal(t, []Tag{fluff}, s.AuthorTags())
}

func TestTagGroups_FirstSeenOrder(t *testing.T) {
	w1 := newWork("work-1", false, true, alice)
	w1.Tags = []Tag{
		{ID: "tag-1", Name: "Zelda", Kind: TagKindFandom},
		{ID: "tag-2", Name: "fluff", Kind: TagKindFreeform},
	}
	w2 := newWork("work-2", false, true, alice)
	w2.Tags = []Tag{
		{ID: "tag-3", Name: "Metroid", Kind: TagKindFandom},
		{ID: "tag-4", Name: "Teen", Kind: TagKindRating},
	}

	groups := newSeries([]Pseud{alice}, w1, w2).TagGroups()

	if assert.Len(t, groups, 3) {
		assert.Equal(t, "Fandom", groups[0].Kind)
		assert.Equal(t, []string{"Zelda", "Metroid"}, tagNames(groups[0].Tags))
		assert.Equal(t, "Freeform", groups[1].Kind)
		assert.Equal(t, "Rating", groups[2].Kind)
	}
}

func TestAllFandomsAndPseuds(t *testing.T) {
	w1 := newWork("work-1", false, true, carol, alice)
	w1.Tags = []Tag{{ID: "tag-1", Name: "zelda", Kind: TagKindFandom}}
	w2 := newWork("work-2", false, true, bob, alice)
	w2.Tags = []Tag{
		{ID: "tag-2", Name: "Metroid", Kind: TagKindFandom},
		{ID: "tag-1", Name: "zelda", Kind: TagKindFandom},
	}

	s := newSeries([]Pseud{alice}, w1, w2)

	assert.Equal(t, []string{"Metroid", "zelda"}, tagNames(s.AllFandoms()))
	assert.Equal(t, []Pseud{alice, bob, carol}, s.AllPseuds())
}

func TestSortPseuds_TiesByID(t *testing.T) {
	a := Pseud{ID: "pseud-2", Name: "Sam"}
	b := Pseud{ID: "pseud-1", Name: "sam"}
	ps := []Pseud{a, b}
	SortPseuds(ps)
	assert.Equal(t, []Pseud{b, a}, ps)
}
