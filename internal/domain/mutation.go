package domain

// Mutation is a single write command against series or work state. A list of
// mutations is applied by the store as one unit: either all commit or none.
type Mutation interface {
	mutation()
}

// SetSeriesAuthors replaces the series-level authors.
type SetSeriesAuthors struct {
	SeriesID string
	PseudIDs []string
}

// RemoveWorkAuthors strips pseuds from a work's authors. The store refuses
// the whole unit if the work would be left without an author.
type RemoveWorkAuthors struct {
	WorkID   string
	PseudIDs []string
}

// SetMembershipPositions writes new positions keyed by membership id.
type SetMembershipPositions struct {
	SeriesID  string
	Positions map[string]int
}

// SetSeriesRestricted stores the restricted flag.
type SetSeriesRestricted struct {
	SeriesID   string
	Restricted bool
}

// SetSeriesHidden stores the hidden_by_admin flag.
type SetSeriesHidden struct {
	SeriesID string
	Hidden   bool
}

func (SetSeriesAuthors) mutation()       {}
func (RemoveWorkAuthors) mutation()      {}
func (SetMembershipPositions) mutation() {}
func (SetSeriesRestricted) mutation()    {}
func (SetSeriesHidden) mutation()        {}
