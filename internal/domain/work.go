package domain

import (
	"time"

	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

// Work is a creative work that can be collected into series. The series core
// reads works; their lifecycle is owned elsewhere.
type Work struct {
	Syncable
	Title         string `json:"title"`
	Restricted    bool   `json:"restricted"`
	Anonymous     bool   `json:"anonymous"`
	Unrevealed    bool   `json:"unrevealed"`
	Posted        bool   `json:"posted"`
	HiddenByAdmin bool   `json:"hidden_by_admin"`
	WordCount     int    `json:"word_count"`

	// Zero means absent.
	PublishedAt time.Time `json:"published_at,omitzero"`
	RevisedAt   time.Time `json:"revised_at,omitzero"`

	Authors []Pseud `json:"authors"`
	Tags    []Tag   `json:"tags"`
}

// IsVisible reports whether the work is posted and not hidden by an admin.
func (w *Work) IsVisible() bool {
	return w.Posted && !w.HiddenByAdmin
}

// HasAuthor reports whether any of pseudIDs is credited on the work.
func (w *Work) HasAuthor(pseudIDs map[string]bool) bool {
	for _, p := range w.Authors {
		if pseudIDs[p.ID] {
			return true
		}
	}
	return false
}

// RemoveAuthor drops the given pseuds from the work's authors. It refuses,
// leaving the work untouched, when no author would remain.
func (w *Work) RemoveAuthor(pseudIDs []string) error {
	remaining := subtractPseuds(w.Authors, idSet(pseudIDs))
	if len(remaining) == len(w.Authors) {
		return nil
	}
	if len(remaining) == 0 {
		return domainerrors.LastAuthorf("work %s would be left without an author", w.ID)
	}
	w.Authors = remaining
	return nil
}
