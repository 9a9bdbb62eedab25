package domain

// ViewerKind identifies who is asking.
type ViewerKind int

// Viewer kinds.
const (
	ViewerGuest ViewerKind = iota
	ViewerUser
	ViewerAdmin
)

// String returns the kind name used in logs and metrics labels.
func (k ViewerKind) String() string {
	switch k {
	case ViewerUser:
		return "user"
	case ViewerAdmin:
		return "admin"
	default:
		return "guest"
	}
}

// Viewer is the identity a read or write is evaluated against. It is always
// passed explicitly, never looked up from ambient state.
type Viewer struct {
	Kind     ViewerKind `json:"kind"`
	UserID   string     `json:"user_id,omitempty"`
	PseudIDs []string   `json:"pseud_ids,omitempty"`
}

// GuestViewer returns an unauthenticated viewer.
func GuestViewer() Viewer {
	return Viewer{Kind: ViewerGuest}
}

// UserViewer returns an authenticated viewer owning pseudIDs.
func UserViewer(userID string, pseudIDs []string) Viewer {
	return Viewer{Kind: ViewerUser, UserID: userID, PseudIDs: pseudIDs}
}

// AdminViewer returns an administrator viewer.
func AdminViewer(userID string, pseudIDs []string) Viewer {
	return Viewer{Kind: ViewerAdmin, UserID: userID, PseudIDs: pseudIDs}
}

// ViewerFor builds the viewer for a user and the pseuds it owns.
func ViewerFor(u *User, pseuds []Pseud) Viewer {
	if u == nil {
		return GuestViewer()
	}
	if u.IsAdmin() {
		return AdminViewer(u.ID, PseudIDs(pseuds))
	}
	return UserViewer(u.ID, PseudIDs(pseuds))
}

// IsGuest reports whether the viewer is unauthenticated.
func (v Viewer) IsGuest() bool {
	return v.Kind == ViewerGuest
}

// IsAdmin reports whether the viewer is an administrator.
func (v Viewer) IsAdmin() bool {
	return v.Kind == ViewerAdmin
}
