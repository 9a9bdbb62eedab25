package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/text/cases"

	"github.com/listenupapp/seriesd/internal/domain"
)

// Key prefixes.
const (
	prefixUser       = "user:"
	prefixPseud      = "pseud:"
	prefixTag        = "tag:"
	prefixWork       = "work:"
	prefixSeries     = "series:"
	prefixMembership = "sw:"
)

// BadgerStore implements Store on an embedded Badger database.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger

	users       *Entity[domain.User]
	pseuds      *Entity[domain.Pseud]
	tags        *Entity[domain.Tag]
	works       *Entity[workRecord]
	series      *Entity[seriesRecord]
	memberships *Entity[domain.SeriesMembership]
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens (or creates) a Badger database at path.
func OpenBadger(path string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &BadgerStore{db: db, logger: logger}
	s.initEntities()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}
	return s, nil
}

func (s *BadgerStore) initEntities() {
	s.users = NewEntity[domain.User](s, prefixUser, ErrUserNotFound).
		WithIndexTransform("login",
			func(u *domain.User) []string { return []string{FoldName(u.Login)} },
			FoldName,
		)
	s.pseuds = NewEntity[domain.Pseud](s, prefixPseud, ErrPseudNotFound).
		WithMultiIndex("user",
			func(p *domain.Pseud) []string { return []string{p.UserID} },
			nil,
		).
		WithMultiIndex("name",
			func(p *domain.Pseud) []string { return []string{FoldName(p.Name)} },
			FoldName,
		)
	s.tags = NewEntity[domain.Tag](s, prefixTag, ErrTagNotFound)
	s.works = NewEntity[workRecord](s, prefixWork, ErrWorkNotFound)
	s.series = NewEntity[seriesRecord](s, prefixSeries, ErrSeriesNotFound)
	s.memberships = NewEntity[domain.SeriesMembership](s, prefixMembership, ErrMembershipNotFound).
		WithMultiIndex("series",
			func(m *domain.SeriesMembership) []string { return []string{m.SeriesID} },
			nil,
		).
		WithMultiIndex("work",
			func(m *domain.SeriesMembership) []string { return []string{m.WorkID} },
			nil,
		)
}

// Close gracefully closes the database connection.
func (s *BadgerStore) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// update runs fn in a read-write transaction. Optimistic-concurrency
// conflicts surface as ErrConflict.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	err := s.db.Update(fn)
	if errors.Is(err, badger.ErrConflict) {
		return ErrConflict.WithCause(err)
	}
	return err
}

// FoldName normalizes names and logins for case-insensitive lookup. Every
// backend keys its name indexes with it.
func FoldName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
