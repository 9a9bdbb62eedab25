package domain

import domainerrors "github.com/listenupapp/seriesd/internal/errors"

// PlanReorder assigns positions 1..n to memberships in the order given by
// desired, which must be a permutation of their ids. The input slice is not
// modified; the returned slice is in desired order.
func PlanReorder(memberships []SeriesMembership, desired []string) ([]SeriesMembership, error) {
	if len(desired) != len(memberships) {
		return nil, domainerrors.InvalidPermutationf("expected %d membership ids, got %d", len(memberships), len(desired))
	}

	byID := make(map[string]SeriesMembership, len(memberships))
	for _, m := range memberships {
		byID[m.ID] = m
	}

	seen := make(map[string]bool, len(desired))
	out := make([]SeriesMembership, 0, len(desired))
	for i, membershipID := range desired {
		if seen[membershipID] {
			return nil, domainerrors.InvalidPermutationf("membership %s listed twice", membershipID)
		}
		m, ok := byID[membershipID]
		if !ok {
			return nil, domainerrors.InvalidPermutationf("membership %s is not part of the series", membershipID)
		}
		seen[membershipID] = true
		m.Position = i + 1
		out = append(out, m)
	}
	return out, nil
}

// Reorder validates desired against the series' memberships, updates their
// positions in memory and returns the mutation that persists them.
func (s *Series) Reorder(desired []string) (SetMembershipPositions, error) {
	ordered, err := PlanReorder(s.Memberships, desired)
	if err != nil {
		return SetMembershipPositions{}, err
	}
	positions := make(map[string]int, len(ordered))
	for _, m := range ordered {
		positions[m.ID] = m.Position
	}
	s.Memberships = ordered
	s.Touch()
	return SetMembershipPositions{SeriesID: s.ID, Positions: positions}, nil
}
