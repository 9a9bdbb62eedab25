package domain

// TagGroup is the tags of one kind, in first-seen order.
type TagGroup struct {
	Kind string `json:"kind"`
	Tags []Tag  `json:"tags"`
}

// workTags returns the union of member-work tags in first-seen order.
func (s *Series) workTags() []Tag {
	seen := make(map[string]bool)
	var tags []Tag
	for _, w := range s.Works() {
		for _, t := range w.Tags {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			tags = append(tags, t)
		}
	}
	return tags
}

func tagsOfKind(tags []Tag, kind TagKind) []Tag {
	var out []Tag
	for _, t := range tags {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	SortTags(out)
	return out
}

// AuthorTags returns relationship, then character, then freeform tags across
// member works, each group in natural order. Other kinds are left out.
func (s *Series) AuthorTags() []Tag {
	all := s.workTags()
	out := make([]Tag, 0, len(all))
	for _, kind := range []TagKind{TagKindRelationship, TagKindCharacter, TagKindFreeform} {
		out = append(out, tagsOfKind(all, kind)...)
	}
	return out
}

// TagGroups groups member-work tags by kind, kinds in first-seen order.
func (s *Series) TagGroups() []TagGroup {
	var groups []TagGroup
	index := make(map[TagKind]int)
	for _, t := range s.workTags() {
		i, ok := index[t.Kind]
		if !ok {
			i = len(groups)
			index[t.Kind] = i
			groups = append(groups, TagGroup{Kind: string(t.Kind)})
		}
		groups[i].Tags = append(groups[i].Tags, t)
	}
	return groups
}

// AllFandoms returns the fandom tags across member works in natural order.
func (s *Series) AllFandoms() []Tag {
	return tagsOfKind(s.workTags(), TagKindFandom)
}

// AllPseuds returns the pseuds credited on member works in natural order.
func (s *Series) AllPseuds() []Pseud {
	var pseuds []Pseud
	for _, w := range s.Works() {
		pseuds = append(pseuds, w.Authors...)
	}
	pseuds = uniquePseuds(pseuds)
	SortPseuds(pseuds)
	return pseuds
}
