package domain

import (
	"fmt"
	"time"
)

var (
	alice = Pseud{ID: "pseud-alice", UserID: "user-alice", Name: "Alice"}
	alix  = Pseud{ID: "pseud-alix", UserID: "user-alice", Name: "Alix"}
	bob   = Pseud{ID: "pseud-bob", UserID: "user-bob", Name: "bob"}
	carol = Pseud{ID: "pseud-carol", UserID: "user-carol", Name: "Carol"}
)

func newWork(id string, restricted, posted bool, authors ...Pseud) *Work {
	return &Work{
		Syncable:   Syncable{ID: id},
		Title:      "Work " + id,
		Restricted: restricted,
		Posted:     posted,
		Authors:    authors,
	}
}

func newSeries(authors []Pseud, works ...*Work) *Series {
	s := &Series{
		Syncable: Syncable{ID: "series-1"},
		Title:    "A Series",
		Authors:  authors,
	}
	s.InitTimestamps()
	for i, w := range works {
		s.Memberships = append(s.Memberships, SeriesMembership{
			ID:       fmt.Sprintf("sw-%d", i+1),
			SeriesID: s.ID,
			WorkID:   w.ID,
			Position: i + 1,
			Work:     w,
		})
	}
	return s
}

func at(day int) time.Time {
	return time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC)
}
