package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

func threeWorkSeries() *Series {
	return newSeries([]Pseud{alice},
		newWork("work-1", false, true, alice),
		newWork("work-2", false, true, alice),
		newWork("work-3", false, true, alice),
	)
}

func membershipIDs(s *Series) []string {
	var ids []string
	for _, m := range s.SortedMemberships() {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestReorder_EveryPermutation(t *testing.T) {
	perms := [][]string{
		{"sw-1", "sw-2", "sw-3"},
		{"sw-1", "sw-3", "sw-2"},
		{"sw-2", "sw-1", "sw-3"},
		{"sw-2", "sw-3", "sw-1"},
		{"sw-3", "sw-1", "sw-2"},
		{"sw-3", "sw-2", "sw-1"},
	}

	for _, p := range perms {
		s := threeWorkSeries()
		mut, err := s.Reorder(p)
		require.NoError(t, err)

		assert.Equal(t, p, membershipIDs(s))
		assert.Len(t, mut.Positions, 3)
		for i, id := range p {
			assert.Equal(t, i+1, mut.Positions[id])
		}
	}
}

func TestReorder_WorksFollowNewOrder(t *testing.T) {
	s := threeWorkSeries()
	_, err := s.Reorder([]string{"sw-3", "sw-1", "sw-2"})
	require.NoError(t, err)

	var got []string
	for _, w := range s.Works() {
		got = append(got, w.ID)
	}
	assert.Equal(t, []string{"work-3", "work-1", "work-2"}, got)
}

func TestReorder_RejectsNonPermutations(t *testing.T) {
	tests := []struct {
		name    string
		desired []string
	}{
		{"missing id", []string{"sw-1", "sw-2"}},
		{"extra id", []string{"sw-1", "sw-2", "sw-3", "sw-4"}},
		{"duplicate", []string{"sw-1", "sw-1", "sw-2"}},
		{"unknown", []string{"sw-1", "sw-2", "sw-9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := threeWorkSeries()
			_, err := s.Reorder(tt.desired)

			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidPermutation)
			assert.Equal(t, []string{"sw-1", "sw-2", "sw-3"}, membershipIDs(s), "no partial reorder")
		})
	}
}

func TestPlanReorder_DoesNotModifyInput(t *testing.T) {
	s := threeWorkSeries()
	_, err := PlanReorder(s.Memberships, []string{"sw-3", "sw-2", "sw-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Memberships[0].Position)
}
