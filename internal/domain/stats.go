package domain

import "time"

// VisibleWorks returns the member works v is shown, in position order: posted
// works, and for guests only the unrestricted ones.
func (s *Series) VisibleWorks(v Viewer) []*Work {
	return filterWorks(s.Works(), func(w *Work) bool {
		if !w.Posted {
			return false
		}
		return !v.IsGuest() || !w.Restricted
	})
}

// VisibleWorkCount returns the number of member works v is shown.
func (s *Series) VisibleWorkCount(v Viewer) int {
	return len(s.VisibleWorks(v))
}

// VisibleWordCount sums word counts over the works VisibleWorkCount counts.
func (s *Series) VisibleWordCount(v Viewer) int {
	total := 0
	for _, w := range s.VisibleWorks(v) {
		total += w.WordCount
	}
	return total
}

func (s *Series) visiblePostedWorks() []*Work {
	return filterWorks(s.Works(), (*Work).IsVisible)
}

// EarliestPublishedAt returns the earliest publication time among posted,
// visible member works, or the series' CreatedAt when there is none.
func (s *Series) EarliestPublishedAt() time.Time {
	var earliest time.Time
	for _, w := range s.visiblePostedWorks() {
		if w.PublishedAt.IsZero() {
			continue
		}
		if earliest.IsZero() || w.PublishedAt.Before(earliest) {
			earliest = w.PublishedAt
		}
	}
	if earliest.IsZero() {
		return s.CreatedAt
	}
	return earliest
}

// LatestRevisedAt returns the latest revision time among posted, visible
// member works, or the series' UpdatedAt when there is none.
func (s *Series) LatestRevisedAt() time.Time {
	var latest time.Time
	for _, w := range s.visiblePostedWorks() {
		if w.RevisedAt.After(latest) {
			latest = w.RevisedAt
		}
	}
	if latest.IsZero() {
		return s.UpdatedAt
	}
	return latest
}
