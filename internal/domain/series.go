package domain

import "sort"

// Series is an ordered collection of works presented as a single authored
// unit. Authors holds the series-level creatorships; Memberships carry the
// works in their stored positions.
type Series struct {
	Syncable
	Title         string             `json:"title"`
	Summary       string             `json:"summary,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Restricted    bool               `json:"restricted"`
	HiddenByAdmin bool               `json:"hidden_by_admin"`
	Authors       []Pseud            `json:"authors"`
	Memberships   []SeriesMembership `json:"memberships"`
}

// SeriesMembership joins a work to a series at a position. Work is populated
// when the series is loaded with its members.
type SeriesMembership struct {
	ID       string `json:"id"`
	SeriesID string `json:"series_id"`
	WorkID   string `json:"work_id"`
	Position int    `json:"position"`
	Work     *Work  `json:"-"`
}

// SortedMemberships returns the memberships ordered by position, ties by id.
func (s *Series) SortedMemberships() []SeriesMembership {
	out := make([]SeriesMembership, len(s.Memberships))
	copy(out, s.Memberships)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Works returns the member works in position order.
func (s *Series) Works() []*Work {
	ms := s.SortedMemberships()
	works := make([]*Work, 0, len(ms))
	for _, m := range ms {
		if m.Work != nil {
			works = append(works, m.Work)
		}
	}
	return works
}

// PostedWorks returns the posted member works in position order.
func (s *Series) PostedWorks() []*Work {
	return filterWorks(s.Works(), func(w *Work) bool { return w.Posted })
}

// HasWork reports whether workID is a member of the series.
func (s *Series) HasWork(workID string) bool {
	for _, m := range s.Memberships {
		if m.WorkID == workID {
			return true
		}
	}
	return false
}

// MaxPosition returns the highest membership position, or 0 if empty.
func (s *Series) MaxPosition() int {
	maxPos := 0
	for _, m := range s.Memberships {
		maxPos = max(maxPos, m.Position)
	}
	return maxPos
}

// HasCreator reports whether any of pseudIDs is a series-level author.
func (s *Series) HasCreator(pseudIDs []string) bool {
	set := idSet(pseudIDs)
	for _, p := range s.Authors {
		if set[p.ID] {
			return true
		}
	}
	return false
}

// IsAuthor reports whether any of pseudIDs is credited on the series itself
// or on any of its member works.
func (s *Series) IsAuthor(pseudIDs []string) bool {
	if len(pseudIDs) == 0 {
		return false
	}
	if s.HasCreator(pseudIDs) {
		return true
	}
	set := idSet(pseudIDs)
	for _, w := range s.Works() {
		if w.HasAuthor(set) {
			return true
		}
	}
	return false
}

// Owners returns the distinct user ids behind the series-level authors, in
// first-seen order.
func (s *Series) Owners() []string {
	seen := make(map[string]bool)
	var owners []string
	for _, p := range s.Authors {
		if p.UserID == "" || seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		owners = append(owners, p.UserID)
	}
	return owners
}

// Anonymous reports whether any member work is anonymous.
func (s *Series) Anonymous() bool {
	for _, w := range s.Works() {
		if w.Anonymous {
			return true
		}
	}
	return false
}

// Unrevealed reports whether any member work is unrevealed.
func (s *Series) Unrevealed() bool {
	for _, w := range s.Works() {
		if w.Unrevealed {
			return true
		}
	}
	return false
}

func filterWorks(works []*Work, keep func(*Work) bool) []*Work {
	out := make([]*Work, 0, len(works))
	for _, w := range works {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}
