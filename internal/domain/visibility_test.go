package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVisibility_AdminAndAuthorAlwaysSee(t *testing.T) {
	for _, restricted := range []bool{false, true} {
		for _, hidden := range []bool{false, true} {
			s := newSeries([]Pseud{alice}, newWork("work-1", true, false, alice))
			s.Restricted = restricted
			s.HiddenByAdmin = hidden

			admin := ResolveVisibility(s, AdminViewer("user-admin", nil))
			assert.True(t, admin.Visible)
			assert.Equal(t, ClassAdmin, admin.Class)

			author := ResolveVisibility(s, UserViewer("user-alice", []string{alice.ID}))
			assert.True(t, author.Visible)
			assert.Equal(t, ClassAuthor, author.Class)
		}
	}
}

func TestResolveVisibility_WorkAuthorCountsAsAuthor(t *testing.T) {
	s := newSeries([]Pseud{alice}, newWork("work-1", true, false, bob))
	s.HiddenByAdmin = true

	d := ResolveVisibility(s, UserViewer("user-bob", []string{bob.ID}))
	assert.True(t, d.Visible)
	assert.Equal(t, ClassAuthor, d.Class)
}

func TestResolveVisibility_RestrictedSeries(t *testing.T) {
	tests := []struct {
		name      string
		posted    bool
		wantGuest bool
		wantUser  bool
	}{
		{name: "with posted work", posted: true, wantGuest: false, wantUser: true},
		{name: "without posted work", posted: false, wantGuest: false, wantUser: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeries([]Pseud{alice}, newWork("work-1", true, tt.posted, alice))
			s.Restricted = true

			assert.Equal(t, tt.wantGuest, s.VisibleTo(GuestViewer()))

			member := ResolveVisibility(s, UserViewer("user-carol", []string{carol.ID}))
			assert.Equal(t, ClassMember, member.Class)
			assert.Equal(t, tt.wantUser, member.Visible)
		})
	}
}

func TestResolveVisibility_GuestIgnoresPostedState(t *testing.T) {
	s := newSeries([]Pseud{alice}, newWork("work-1", false, false, alice))

	assert.True(t, s.VisibleTo(GuestViewer()))
	assert.False(t, s.VisibleTo(UserViewer("user-carol", []string{carol.ID})))
}

func TestResolveVisibility_HiddenBlocksNonAuthors(t *testing.T) {
	s := newSeries([]Pseud{alice}, newWork("work-1", false, true, alice))
	s.HiddenByAdmin = true

	assert.False(t, s.VisibleTo(GuestViewer()))
	assert.False(t, s.VisibleTo(UserViewer("user-carol", []string{carol.ID})))
}

func TestClassifyViewer_UserWithoutPseuds(t *testing.T) {
	s := newSeries([]Pseud{alice})
	assert.Equal(t, ClassMember, ClassifyViewer(s, UserViewer("user-x", nil)))
	assert.Equal(t, ClassGuest, ClassifyViewer(s, GuestViewer()))
}

func TestViewerFor(t *testing.T) {
	admin := &User{Syncable: Syncable{ID: "user-admin"}, Role: RoleAdmin}
	member := &User{Syncable: Syncable{ID: "user-alice"}, Role: RoleMember}

	assert.Equal(t, ViewerGuest, ViewerFor(nil, nil).Kind)
	assert.Equal(t, ViewerAdmin, ViewerFor(admin, nil).Kind)

	v := ViewerFor(member, []Pseud{alice, alix})
	assert.Equal(t, ViewerUser, v.Kind)
	assert.Equal(t, []string{alice.ID, alix.ID}, v.PseudIDs)
}
