package domain

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants administrative access, including hiding series.
	RoleAdmin Role = "admin"
	// RoleMember grants standard user access.
	RoleMember Role = "member"
)

// User is an account that owns one or more pseuds.
type User struct {
	Syncable
	Login string `json:"login"`
	Role  Role   `json:"role"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Pseud is a pen name. Every pseud belongs to exactly one user; works and
// series are credited to pseuds, never to users directly.
type Pseud struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// PseudIDs returns the ids of pseuds in order.
func PseudIDs(pseuds []Pseud) []string {
	ids := make([]string, len(pseuds))
	for i, p := range pseuds {
		ids[i] = p.ID
	}
	return ids
}

// uniquePseuds de-duplicates pseuds by id, keeping the first occurrence.
func uniquePseuds(pseuds []Pseud) []Pseud {
	seen := make(map[string]bool, len(pseuds))
	out := make([]Pseud, 0, len(pseuds))
	for _, p := range pseuds {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// subtractPseuds returns the pseuds in from whose id is not in remove.
func subtractPseuds(from []Pseud, remove map[string]bool) []Pseud {
	out := make([]Pseud, 0, len(from))
	for _, p := range from {
		if !remove[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// idSet builds a lookup set from ids.
func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
