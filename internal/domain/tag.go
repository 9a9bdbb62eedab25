package domain

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TagKind classifies a tag.
type TagKind string

// Tag kinds known to the archive.
const (
	TagKindRelationship TagKind = "Relationship"
	TagKindCharacter    TagKind = "Character"
	TagKindFreeform     TagKind = "Freeform"
	TagKindFandom       TagKind = "Fandom"
	TagKindRating       TagKind = "Rating"
	TagKindWarning      TagKind = "Warning"
	TagKindCategory     TagKind = "Category"
)

// Valid reports whether k is one of the known tag kinds.
func (k TagKind) Valid() bool {
	switch k {
	case TagKindRelationship, TagKindCharacter, TagKindFreeform, TagKindFandom,
		TagKindRating, TagKindWarning, TagKindCategory:
		return true
	}
	return false
}

// Tag is a label attached to works.
type Tag struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Kind TagKind `json:"kind"`
}

// newCollator returns a case-insensitive collator. Collators keep internal
// buffers and are not safe for concurrent use, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

// SortTags sorts tags in natural order: collated name, ties broken by id.
func SortTags(tags []Tag) {
	c := newCollator()
	sort.SliceStable(tags, func(i, j int) bool {
		if r := c.CompareString(tags[i].Name, tags[j].Name); r != 0 {
			return r < 0
		}
		return tags[i].ID < tags[j].ID
	})
}

// SortPseuds sorts pseuds in natural order: collated name, ties broken by id.
func SortPseuds(pseuds []Pseud) {
	c := newCollator()
	sort.SliceStable(pseuds, func(i, j int) bool {
		if r := c.CompareString(pseuds[i].Name, pseuds[j].Name); r != 0 {
			return r < 0
		}
		return pseuds[i].ID < pseuds[j].ID
	})
}
