package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/listenupapp/seriesd/internal/domain"
	"github.com/listenupapp/seriesd/internal/id"
	"github.com/listenupapp/seriesd/internal/store"
)

// seriesColumns is the ordered list of columns selected in series queries.
// Must match the scan order in scanSeries.
const seriesColumns = `id, created_at, updated_at, title, summary, notes, restricted, hidden_by_admin`

func scanSeries(scanner interface{ Scan(dest ...any) error }) (*domain.Series, error) {
	var (
		s                    domain.Series
		createdAt, updatedAt string
		summary, notes       sql.NullString
	)
	err := scanner.Scan(
		&s.ID,
		&createdAt,
		&updatedAt,
		&s.Title,
		&summary,
		&notes,
		&s.Restricted,
		&s.HiddenByAdmin,
	)
	if err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	s.Summary = summary.String
	s.Notes = notes.String
	return &s, nil
}

// CreateSeries inserts a series, its authors and its initial memberships in
// one transaction. Memberships without an id get one, and their SeriesID is
// set.
func (s *Store) CreateSeries(ctx context.Context, series *domain.Series) error {
	for i := range series.Memberships {
		m := &series.Memberships[i]
		m.SeriesID = series.ID
		if m.ID == "" {
			mid, err := id.Generate(id.PrefixMembership)
			if err != nil {
				return err
			}
			m.ID = mid
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO series (`+seriesColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		series.ID,
		formatTime(series.CreatedAt),
		formatTime(series.UpdatedAt),
		series.Title,
		nullString(series.Summary),
		nullString(series.Notes),
		series.Restricted,
		series.HiddenByAdmin,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert series: %w", err)
	}

	if err := replaceSeriesAuthors(ctx, tx, series.ID, domain.PseudIDs(series.Authors)); err != nil {
		return err
	}

	for _, m := range series.Memberships {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO series_works (id, series_id, work_id, position) VALUES (?, ?, ?, ?)`,
			m.ID, series.ID, m.WorkID, m.Position)
		switch {
		case isForeignKeyViolation(err):
			return fmt.Errorf("series %s member %s: %w", series.ID, m.WorkID, store.ErrWorkNotFound)
		case isUniqueViolation(err):
			return fmt.Errorf("series %s member %s: %w", series.ID, m.WorkID, store.ErrMembershipExists)
		case err != nil:
			return fmt.Errorf("insert series_works: %w", err)
		}
	}
	return tx.Commit()
}

func replaceSeriesAuthors(ctx context.Context, tx *sql.Tx, seriesID string, pseudIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM series_pseuds WHERE series_id = ?`, seriesID); err != nil {
		return fmt.Errorf("delete series_pseuds: %w", err)
	}
	for i, pid := range pseudIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO series_pseuds (series_id, pseud_id, ordinal) VALUES (?, ?, ?)`, seriesID, pid, i)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("series %s author %s: %w", seriesID, pid, store.ErrPseudNotFound)
		}
		if err != nil {
			return fmt.Errorf("insert series_pseuds: %w", err)
		}
	}
	return nil
}

// GetSeries retrieves a series with authors and hydrated memberships in
// position order.
func (s *Store) GetSeries(ctx context.Context, seriesID string) (*domain.Series, error) {
	series, err := scanSeries(s.db.QueryRowContext(ctx,
		`SELECT `+seriesColumns+` FROM series WHERE id = ?`, seriesID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSeriesNotFound
	}
	if err != nil {
		return nil, err
	}

	series.Authors, err = queryPseuds(ctx, s.db, `
		SELECT p.id, p.user_id, p.name
		FROM series_pseuds sp JOIN pseuds p ON p.id = sp.pseud_id
		WHERE sp.series_id = ?
		ORDER BY sp.ordinal`, seriesID)
	if err != nil {
		return nil, err
	}

	series.Memberships, err = memberships(ctx, s.db, seriesID)
	if err != nil {
		return nil, err
	}
	for i := range series.Memberships {
		series.Memberships[i].Work, err = getWork(ctx, s.db, series.Memberships[i].WorkID)
		if err != nil {
			return nil, err
		}
	}
	return series, nil
}

func memberships(ctx context.Context, q queryer, seriesID string) ([]domain.SeriesMembership, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, series_id, work_id, position
		FROM series_works
		WHERE series_id = ?
		ORDER BY position, id`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("query series_works: %w", err)
	}
	defer rows.Close()

	out := []domain.SeriesMembership{}
	for rows.Next() {
		var m domain.SeriesMembership
		if err := rows.Scan(&m.ID, &m.SeriesID, &m.WorkID, &m.Position); err != nil {
			return nil, fmt.Errorf("scan series_works: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// UpdateSeries writes title, summary, notes, the two flags and updated_at.
func (s *Store) UpdateSeries(ctx context.Context, series *domain.Series) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE series SET
			updated_at = ?, title = ?, summary = ?, notes = ?, restricted = ?, hidden_by_admin = ?
		WHERE id = ?`,
		formatTime(series.UpdatedAt),
		series.Title,
		nullString(series.Summary),
		nullString(series.Notes),
		series.Restricted,
		series.HiddenByAdmin,
		series.ID,
	)
	if err != nil {
		return fmt.Errorf("update series: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrSeriesNotFound
	}
	return nil
}

// DeleteSeries removes a series; memberships and creatorships cascade.
func (s *Store) DeleteSeries(ctx context.Context, seriesID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM series WHERE id = ?`, seriesID)
	if err != nil {
		return fmt.Errorf("delete series: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrSeriesNotFound
	}
	return nil
}

// ListSeriesIDs returns every series id in ascending order.
func (s *Store) ListSeriesIDs(ctx context.Context) ([]string, error) {
	return queryIDs(ctx, s.db, `SELECT id FROM series ORDER BY id`)
}

// ListSeriesIDsByWork returns the ids of every series containing workID.
func (s *Store) ListSeriesIDsByWork(ctx context.Context, workID string) ([]string, error) {
	return queryIDs(ctx, s.db,
		`SELECT series_id FROM series_works WHERE work_id = ? ORDER BY series_id`, workID)
}

func queryIDs(ctx context.Context, q queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ids, nil
}

// AddWorkToSeries appends workID after the series' current last position
// and recomputes the series' restricted flag in the same transaction.
func (s *Store) AddWorkToSeries(ctx context.Context, seriesID, workID string) (*domain.SeriesMembership, error) {
	mid, err := id.Generate(id.PrefixMembership)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := touchSeries(ctx, tx, seriesID, time.Now()); err != nil {
		return nil, err
	}
	ok, err := exists(ctx, tx, `SELECT 1 FROM works WHERE id = ?`, workID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrWorkNotFound
	}

	var maxPos int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM series_works WHERE series_id = ?`, seriesID).Scan(&maxPos)
	if err != nil {
		return nil, fmt.Errorf("max position: %w", err)
	}

	m := &domain.SeriesMembership{ID: mid, SeriesID: seriesID, WorkID: workID, Position: maxPos + 1}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO series_works (id, series_id, work_id, position) VALUES (?, ?, ?, ?)`,
		m.ID, m.SeriesID, m.WorkID, m.Position)
	if isUniqueViolation(err) {
		return nil, store.ErrMembershipExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert series_works: %w", err)
	}
	if err := syncRestricted(ctx, tx, seriesID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveWorkFromSeries deletes the membership joining workID to seriesID
// and recomputes the series' restricted flag in the same transaction.
func (s *Store) RemoveWorkFromSeries(ctx context.Context, seriesID, workID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := touchSeries(ctx, tx, seriesID, time.Now()); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM series_works WHERE series_id = ? AND work_id = ?`, seriesID, workID)
	if err != nil {
		return fmt.Errorf("delete series_works: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrMembershipNotFound
	}
	if err := syncRestricted(ctx, tx, seriesID); err != nil {
		return err
	}
	return tx.Commit()
}

// syncRestricted sets the series' restricted flag from its member works: set
// unless some member is unrestricted.
func syncRestricted(ctx context.Context, q queryer, seriesID string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE series SET restricted = NOT EXISTS (
			SELECT 1 FROM series_works sw JOIN works w ON w.id = sw.work_id
			WHERE sw.series_id = ? AND w.restricted = 0
		) WHERE id = ?`, seriesID, seriesID)
	if err != nil {
		return fmt.Errorf("sync restricted: %w", err)
	}
	return nil
}

// touchSeries bumps updated_at, failing with ErrSeriesNotFound if the series
// does not exist.
func touchSeries(ctx context.Context, q queryer, seriesID string, now time.Time) error {
	res, err := q.ExecContext(ctx, `UPDATE series SET updated_at = ? WHERE id = ?`, formatTime(now), seriesID)
	if err != nil {
		return fmt.Errorf("touch series: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("series %s: %w", seriesID, store.ErrSeriesNotFound)
	}
	return nil
}
