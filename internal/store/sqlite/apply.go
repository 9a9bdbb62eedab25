package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/store"
)

// Apply executes mutations inside one SQLite transaction. Any failure rolls
// the whole transaction back.
func (s *Store) Apply(ctx context.Context, mutations ...domain.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, mut := range mutations {
		if err := applyTx(ctx, tx, mut, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func applyTx(ctx context.Context, tx *sql.Tx, mut domain.Mutation, now time.Time) error {
	switch m := mut.(type) {
	case domain.SetSeriesAuthors:
		if len(m.PseudIDs) == 0 {
			return domainerrors.LastAuthorf("series %s must keep at least one author", m.SeriesID)
		}
		if err := touchSeries(ctx, tx, m.SeriesID, now); err != nil {
			return err
		}
		return replaceSeriesAuthors(ctx, tx, m.SeriesID, m.PseudIDs)
	case domain.RemoveWorkAuthors:
		return removeWorkAuthors(ctx, tx, m, now)
	case domain.SetMembershipPositions:
		return setPositions(ctx, tx, m, now)
	case domain.SetSeriesRestricted:
		return setSeriesFlag(ctx, tx, m.SeriesID, "restricted", m.Restricted, now)
	case domain.SetSeriesHidden:
		return setSeriesFlag(ctx, tx, m.SeriesID, "hidden_by_admin", m.Hidden, now)
	default:
		return fmt.Errorf("unsupported mutation %T", mut)
	}
}

// setSeriesFlag updates one boolean column. column is never user input.
func setSeriesFlag(ctx context.Context, tx *sql.Tx, seriesID, column string, value bool, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE series SET `+column+` = ?, updated_at = ? WHERE id = ?`, value, formatTime(now), seriesID)
	if err != nil {
		return fmt.Errorf("update series %s: %w", column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("series %s: %w", seriesID, store.ErrSeriesNotFound)
	}
	return nil
}

func removeWorkAuthors(ctx context.Context, tx *sql.Tx, m domain.RemoveWorkAuthors, now time.Time) error {
	ok, err := exists(ctx, tx, `SELECT 1 FROM works WHERE id = ?`, m.WorkID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("work %s: %w", m.WorkID, store.ErrWorkNotFound)
	}
	if len(m.PseudIDs) == 0 {
		return nil
	}

	args := append([]any{m.WorkID}, stringArgs(m.PseudIDs)...)
	res, err := tx.ExecContext(ctx,
		`DELETE FROM work_pseuds WHERE work_id = ? AND pseud_id IN (`+placeholders(len(m.PseudIDs))+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete work_pseuds: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	var remaining int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_pseuds WHERE work_id = ?`, m.WorkID).Scan(&remaining); err != nil {
		return fmt.Errorf("count work_pseuds: %w", err)
	}
	if remaining == 0 {
		return domainerrors.LastAuthorf("work %s would be left without an author", m.WorkID)
	}

	_, err = tx.ExecContext(ctx, `UPDATE works SET updated_at = ? WHERE id = ?`, formatTime(now), m.WorkID)
	return err
}

// setPositions writes new positions in two passes: every position of the
// series is first negated, then the new values are written and untouched
// rows are flipped back. UNIQUE(series_id, position) never sees a transient
// collision, only a real one.
func setPositions(ctx context.Context, tx *sql.Tx, m domain.SetMembershipPositions, now time.Time) error {
	if err := touchSeries(ctx, tx, m.SeriesID, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE series_works SET position = -position WHERE series_id = ?`, m.SeriesID); err != nil {
		return fmt.Errorf("stage positions: %w", err)
	}

	for mid, pos := range m.Positions {
		res, err := tx.ExecContext(ctx,
			`UPDATE series_works SET position = ? WHERE id = ? AND series_id = ?`, pos, mid, m.SeriesID)
		if isUniqueViolation(err) {
			return domainerrors.InvalidPermutationf("position %d is already taken in series %s", pos, m.SeriesID)
		}
		if err != nil {
			return fmt.Errorf("update position: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("membership %s in series %s: %w", mid, m.SeriesID, store.ErrMembershipNotFound)
		}
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE series_works SET position = -position WHERE series_id = ? AND position < 0`, m.SeriesID)
	if isUniqueViolation(err) {
		return domainerrors.InvalidPermutationf("new positions collide with existing memberships of series %s", m.SeriesID)
	}
	if err != nil {
		return fmt.Errorf("restore positions: %w", err)
	}
	return nil
}
