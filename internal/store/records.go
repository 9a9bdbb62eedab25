package store

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/seriesd/internal/domain"
)

// workRecord is the stored form of a work; authors and tags are kept by id.
type workRecord struct {
	domain.Syncable
	Title         string    `json:"title"`
	Restricted    bool      `json:"restricted"`
	Anonymous     bool      `json:"anonymous"`
	Unrevealed    bool      `json:"unrevealed"`
	Posted        bool      `json:"posted"`
	HiddenByAdmin bool      `json:"hidden_by_admin"`
	WordCount     int       `json:"word_count"`
	PublishedAt   time.Time `json:"published_at,omitzero"`
	RevisedAt     time.Time `json:"revised_at,omitzero"`
	AuthorIDs     []string  `json:"author_ids"`
	TagIDs        []string  `json:"tag_ids"`
}

func newWorkRecord(w *domain.Work) *workRecord {
	tagIDs := make([]string, len(w.Tags))
	for i, t := range w.Tags {
		tagIDs[i] = t.ID
	}
	return &workRecord{
		Syncable:      w.Syncable,
		Title:         w.Title,
		Restricted:    w.Restricted,
		Anonymous:     w.Anonymous,
		Unrevealed:    w.Unrevealed,
		Posted:        w.Posted,
		HiddenByAdmin: w.HiddenByAdmin,
		WordCount:     w.WordCount,
		PublishedAt:   w.PublishedAt,
		RevisedAt:     w.RevisedAt,
		AuthorIDs:     domain.PseudIDs(w.Authors),
		TagIDs:        tagIDs,
	}
}

// seriesRecord is the stored form of a series. Memberships live under their
// own prefix.
type seriesRecord struct {
	domain.Syncable
	Title         string   `json:"title"`
	Summary       string   `json:"summary,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	Restricted    bool     `json:"restricted"`
	HiddenByAdmin bool     `json:"hidden_by_admin"`
	AuthorIDs     []string `json:"author_ids"`
}

func newSeriesRecord(s *domain.Series) *seriesRecord {
	return &seriesRecord{
		Syncable:      s.Syncable,
		Title:         s.Title,
		Summary:       s.Summary,
		Notes:         s.Notes,
		Restricted:    s.Restricted,
		HiddenByAdmin: s.HiddenByAdmin,
		AuthorIDs:     domain.PseudIDs(s.Authors),
	}
}

func (s *BadgerStore) pseudsTxn(txn *badger.Txn, ids []string) ([]domain.Pseud, error) {
	out := make([]domain.Pseud, 0, len(ids))
	for _, id := range ids {
		p, err := s.pseuds.getTxn(txn, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *BadgerStore) hydrateWorkTxn(txn *badger.Txn, r *workRecord) (*domain.Work, error) {
	authors, err := s.pseudsTxn(txn, r.AuthorIDs)
	if err != nil {
		return nil, err
	}
	tags := make([]domain.Tag, 0, len(r.TagIDs))
	for _, id := range r.TagIDs {
		t, err := s.tags.getTxn(txn, id)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return &domain.Work{
		Syncable:      r.Syncable,
		Title:         r.Title,
		Restricted:    r.Restricted,
		Anonymous:     r.Anonymous,
		Unrevealed:    r.Unrevealed,
		Posted:        r.Posted,
		HiddenByAdmin: r.HiddenByAdmin,
		WordCount:     r.WordCount,
		PublishedAt:   r.PublishedAt,
		RevisedAt:     r.RevisedAt,
		Authors:       authors,
		Tags:          tags,
	}, nil
}

func (s *BadgerStore) hydrateSeriesTxn(txn *badger.Txn, r *seriesRecord) (*domain.Series, error) {
	authors, err := s.pseudsTxn(txn, r.AuthorIDs)
	if err != nil {
		return nil, err
	}
	memberships, err := s.membershipsTxn(txn, r.ID)
	if err != nil {
		return nil, err
	}
	for i := range memberships {
		wr, err := s.works.getTxn(txn, memberships[i].WorkID)
		if err != nil {
			return nil, err
		}
		memberships[i].Work, err = s.hydrateWorkTxn(txn, wr)
		if err != nil {
			return nil, err
		}
	}

	series := &domain.Series{
		Syncable:      r.Syncable,
		Title:         r.Title,
		Summary:       r.Summary,
		Notes:         r.Notes,
		Restricted:    r.Restricted,
		HiddenByAdmin: r.HiddenByAdmin,
		Authors:       authors,
	}
	series.Memberships = memberships
	series.Memberships = series.SortedMemberships()
	return series, nil
}

// allRestrictedTxn reports whether every work in workIDs is restricted. An
// empty list is restricted.
func (s *BadgerStore) allRestrictedTxn(txn *badger.Txn, workIDs []string) (bool, error) {
	for _, workID := range workIDs {
		wr, err := s.works.getTxn(txn, workID)
		if err != nil {
			return false, fmt.Errorf("work %s: %w", workID, err)
		}
		if !wr.Restricted {
			return false, nil
		}
	}
	return true, nil
}

func (s *BadgerStore) membershipsTxn(txn *badger.Txn, seriesID string) ([]domain.SeriesMembership, error) {
	ids, err := s.memberships.idsByIndexTxn(txn, "series", seriesID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SeriesMembership, 0, len(ids))
	for _, id := range ids {
		m, err := s.memberships.getTxn(txn, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}
