package domain

import domainerrors "github.com/listenupapp/seriesd/internal/errors"

// AuthorRemovalPlan is the validated set of writes that removes a user from a
// series. Applying it must be atomic.
type AuthorRemovalPlan struct {
	Remaining     []Pseud
	AffectedWorks []string
	Mutations     []Mutation
}

// PlanAuthorRemoval computes the writes that remove the owner of userPseudIDs
// from series s and from every member work they co-authored. Nothing is
// planned if the series would lose its last author, or if any affected work
// would. On success s and its works are updated in memory to match the plan.
func PlanAuthorRemoval(s *Series, userPseudIDs []string) (*AuthorRemovalPlan, error) {
	remove := idSet(userPseudIDs)
	remaining := subtractPseuds(s.Authors, remove)
	if len(remaining) == 0 {
		return nil, domainerrors.LastAuthorf("series %s must keep at least one author", s.ID)
	}

	// Check every work before touching any of them.
	var affected []*Work
	for _, w := range s.Works() {
		if !w.HasAuthor(remove) {
			continue
		}
		if len(subtractPseuds(w.Authors, remove)) == 0 {
			return nil, domainerrors.LastAuthorf("work %s in series %s would be left without an author", w.ID, s.ID)
		}
		affected = append(affected, w)
	}

	plan := &AuthorRemovalPlan{
		Remaining: remaining,
		Mutations: []Mutation{SetSeriesAuthors{SeriesID: s.ID, PseudIDs: PseudIDs(remaining)}},
	}
	for _, w := range affected {
		if err := w.RemoveAuthor(userPseudIDs); err != nil {
			return nil, err
		}
		plan.AffectedWorks = append(plan.AffectedWorks, w.ID)
		plan.Mutations = append(plan.Mutations, RemoveWorkAuthors{WorkID: w.ID, PseudIDs: userPseudIDs})
	}

	s.Authors = remaining
	s.Touch()
	return plan, nil
}
