// Package store defines the persistence interface for series and the records
// they reference, and provides the Badger-backed implementation.
package store

import (
	"context"

	"github.com/listenupapp/seriesd/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Multi-record writes are atomic: CreateSeries, DeleteSeries,
// AddWorkToSeries, RemoveWorkFromSeries and Apply commit everything or
// nothing.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)

	// Pseuds
	CreatePseud(ctx context.Context, pseud *domain.Pseud) error
	GetPseud(ctx context.Context, id string) (*domain.Pseud, error)
	ListPseudsByUser(ctx context.Context, userID string) ([]domain.Pseud, error)
	// FindPseudsByName matches names case-insensitively.
	FindPseudsByName(ctx context.Context, name string) ([]domain.Pseud, error)

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error

	// Works. Authors and Tags are stored by id and hydrated on read.
	CreateWork(ctx context.Context, work *domain.Work) error
	GetWork(ctx context.Context, id string) (*domain.Work, error)
	UpdateWork(ctx context.Context, work *domain.Work) error

	// Series. GetSeries returns the series with authors and memberships,
	// each membership carrying its hydrated work. UpdateSeries writes the
	// scalar fields only; authors and positions change through Apply.
	CreateSeries(ctx context.Context, series *domain.Series) error
	GetSeries(ctx context.Context, id string) (*domain.Series, error)
	UpdateSeries(ctx context.Context, series *domain.Series) error
	DeleteSeries(ctx context.Context, id string) error
	ListSeriesIDs(ctx context.Context) ([]string, error)
	ListSeriesIDsByWork(ctx context.Context, workID string) ([]string, error)

	// Memberships
	AddWorkToSeries(ctx context.Context, seriesID, workID string) (*domain.SeriesMembership, error)
	RemoveWorkFromSeries(ctx context.Context, seriesID, workID string) error

	// Apply commits mutations as a single unit of work.
	Apply(ctx context.Context, mutations ...domain.Mutation) error
}
