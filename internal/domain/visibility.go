package domain

// ViewerClass is the viewer's standing relative to one particular series.
type ViewerClass int

// Viewer classes, in precedence order.
const (
	ClassGuest ViewerClass = iota
	ClassMember
	ClassAuthor
	ClassAdmin
)

// String returns the class name used in logs and metrics labels.
func (c ViewerClass) String() string {
	switch c {
	case ClassAdmin:
		return "admin"
	case ClassAuthor:
		return "author"
	case ClassMember:
		return "member"
	default:
		return "guest"
	}
}

// VisibilityDecision is the outcome of ResolveVisibility.
type VisibilityDecision struct {
	Visible bool
	Class   ViewerClass
}

// ClassifyViewer places the viewer into a class for series s.
func ClassifyViewer(s *Series, v Viewer) ViewerClass {
	switch v.Kind {
	case ViewerAdmin:
		return ClassAdmin
	case ViewerUser:
		if s.IsAuthor(v.PseudIDs) {
			return ClassAuthor
		}
		return ClassMember
	default:
		return ClassGuest
	}
}

// ResolveVisibility decides whether v may see s.
//
// Admins and authors always see the series. Guests are blocked by either the
// restricted or the hidden flag. Authenticated non-authors ignore restricted
// but need the series to be unhidden and to hold at least one posted work.
func ResolveVisibility(s *Series, v Viewer) VisibilityDecision {
	class := ClassifyViewer(s, v)
	var visible bool
	switch class {
	case ClassAdmin, ClassAuthor:
		visible = true
	case ClassGuest:
		visible = !s.Restricted && !s.HiddenByAdmin
	case ClassMember:
		visible = !s.HiddenByAdmin && len(s.PostedWorks()) > 0
	}
	return VisibilityDecision{Visible: visible, Class: class}
}

// VisibleTo reports whether v may see the series.
func (s *Series) VisibleTo(v Viewer) bool {
	return ResolveVisibility(s, v).Visible
}
