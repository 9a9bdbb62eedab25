package service

import (
	"context"
	"time"

	"github.com/listenupapp/seriesd/internal/domain"
)

// WorkEntry is one member work as shown to a particular viewer.
type WorkEntry struct {
	MembershipID string         `json:"membership_id"`
	Position     int            `json:"position"`
	WorkID       string         `json:"work_id"`
	Title        string         `json:"title"`
	WordCount    int            `json:"word_count"`
	Restricted   bool           `json:"restricted"`
	Authors      []domain.Pseud `json:"authors"`
}

// Summary is the viewer-scoped read model of a series.
type Summary struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Summary       string         `json:"summary,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Restricted    bool           `json:"restricted"`
	HiddenByAdmin bool           `json:"hidden_by_admin"`
	Anonymous     bool           `json:"anonymous"`
	Unrevealed    bool           `json:"unrevealed"`
	ViewerClass   string         `json:"viewer_class"`
	WorkCount     int            `json:"work_count"`
	WordCount     int            `json:"word_count"`
	PublishedAt   time.Time      `json:"published_at"`
	RevisedAt     time.Time      `json:"revised_at"`
	Authors       []domain.Pseud `json:"authors"`
	AllPseuds     []domain.Pseud `json:"all_pseuds"`
	Fandoms       []domain.Tag   `json:"fandoms"`
	Works         []WorkEntry    `json:"works"`
}

// TagSummary is the tag view of a series.
type TagSummary struct {
	AuthorTags []domain.Tag      `json:"author_tags"`
	Groups     []domain.TagGroup `json:"groups"`
}

// GetSummary returns the read model of a series for viewer: counts, dates and
// works are limited to what viewer may see.
func (s *SeriesService) GetSummary(ctx context.Context, viewer domain.Viewer, seriesID string) (*Summary, error) {
	series, err := s.GetSeries(ctx, viewer, seriesID)
	if err != nil {
		return nil, err
	}
	return Summarize(series, viewer), nil
}

// GetTags returns the author tags and tag groups of a visible series.
func (s *SeriesService) GetTags(ctx context.Context, viewer domain.Viewer, seriesID string) (*TagSummary, error) {
	series, err := s.GetSeries(ctx, viewer, seriesID)
	if err != nil {
		return nil, err
	}
	return &TagSummary{AuthorTags: series.AuthorTags(), Groups: series.TagGroups()}, nil
}

// Summarize builds the read model without touching the store.
func Summarize(series *domain.Series, viewer domain.Viewer) *Summary {
	visible := make(map[string]bool)
	for _, w := range series.VisibleWorks(viewer) {
		visible[w.ID] = true
	}

	works := []WorkEntry{}
	for _, m := range series.SortedMemberships() {
		if m.Work == nil || !visible[m.WorkID] {
			continue
		}
		works = append(works, WorkEntry{
			MembershipID: m.ID,
			Position:     m.Position,
			WorkID:       m.WorkID,
			Title:        m.Work.Title,
			WordCount:    m.Work.WordCount,
			Restricted:   m.Work.Restricted,
			Authors:      m.Work.Authors,
		})
	}

	return &Summary{
		ID:            series.ID,
		Title:         series.Title,
		Summary:       series.Summary,
		Notes:         series.Notes,
		Restricted:    series.Restricted,
		HiddenByAdmin: series.HiddenByAdmin,
		Anonymous:     series.Anonymous(),
		Unrevealed:    series.Unrevealed(),
		ViewerClass:   domain.ClassifyViewer(series, viewer).String(),
		WorkCount:     series.VisibleWorkCount(viewer),
		WordCount:     series.VisibleWordCount(viewer),
		PublishedAt:   series.EarliestPublishedAt(),
		RevisedAt:     series.LatestRevisedAt(),
		Authors:       series.Authors,
		AllPseuds:     series.AllPseuds(),
		Fandoms:       series.AllFandoms(),
		Works:         works,
	}
}
