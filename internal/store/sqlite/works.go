package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/seriesd/internal/domain"
	"github.com/listenupapp/seriesd/internal/store"
)

const workColumns = `id, created_at, updated_at, title, restricted, anonymous, unrevealed,
	posted, hidden_by_admin, word_count, published_at, revised_at`

func scanWork(scanner interface{ Scan(dest ...any) error }) (*domain.Work, error) {
	var (
		w                      domain.Work
		createdAt, updatedAt   string
		publishedAt, revisedAt sql.NullString
	)
	err := scanner.Scan(
		&w.ID,
		&createdAt,
		&updatedAt,
		&w.Title,
		&w.Restricted,
		&w.Anonymous,
		&w.Unrevealed,
		&w.Posted,
		&w.HiddenByAdmin,
		&w.WordCount,
		&publishedAt,
		&revisedAt,
	)
	if err != nil {
		return nil, err
	}
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if w.PublishedAt, err = parseNullTime(publishedAt); err != nil {
		return nil, err
	}
	if w.RevisedAt, err = parseNullTime(revisedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWork inserts a work with its authors and tags in one transaction.
func (s *Store) CreateWork(ctx context.Context, work *domain.Work) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO works (`+workColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		work.ID,
		formatTime(work.CreatedAt),
		formatTime(work.UpdatedAt),
		work.Title,
		work.Restricted,
		work.Anonymous,
		work.Unrevealed,
		work.Posted,
		work.HiddenByAdmin,
		work.WordCount,
		nullTime(work.PublishedAt),
		nullTime(work.RevisedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert work: %w", err)
	}

	if err := replaceWorkLinks(ctx, tx, work); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateWork replaces a work's fields, authors and tags.
func (s *Store) UpdateWork(ctx context.Context, work *domain.Work) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE works SET
			updated_at = ?, title = ?, restricted = ?, anonymous = ?, unrevealed = ?,
			posted = ?, hidden_by_admin = ?, word_count = ?, published_at = ?, revised_at = ?
		WHERE id = ?`,
		formatTime(work.UpdatedAt),
		work.Title,
		work.Restricted,
		work.Anonymous,
		work.Unrevealed,
		work.Posted,
		work.HiddenByAdmin,
		work.WordCount,
		nullTime(work.PublishedAt),
		nullTime(work.RevisedAt),
		work.ID,
	)
	if err != nil {
		return fmt.Errorf("update work: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrWorkNotFound
	}

	if err := replaceWorkLinks(ctx, tx, work); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceWorkLinks(ctx context.Context, tx *sql.Tx, work *domain.Work) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM work_pseuds WHERE work_id = ?`, work.ID); err != nil {
		return fmt.Errorf("delete work_pseuds: %w", err)
	}
	for i, p := range work.Authors {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO work_pseuds (work_id, pseud_id, ordinal) VALUES (?, ?, ?)`, work.ID, p.ID, i)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("work %s author %s: %w", work.ID, p.ID, store.ErrPseudNotFound)
		}
		if err != nil {
			return fmt.Errorf("insert work_pseuds: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM work_tags WHERE work_id = ?`, work.ID); err != nil {
		return fmt.Errorf("delete work_tags: %w", err)
	}
	for i, t := range work.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO work_tags (work_id, tag_id, ordinal) VALUES (?, ?, ?)`, work.ID, t.ID, i)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("work %s tag %s: %w", work.ID, t.ID, store.ErrTagNotFound)
		}
		if err != nil {
			return fmt.Errorf("insert work_tags: %w", err)
		}
	}
	return nil
}

// GetWork retrieves a work with its authors and tags.
func (s *Store) GetWork(ctx context.Context, id string) (*domain.Work, error) {
	return getWork(ctx, s.db, id)
}

func getWork(ctx context.Context, q queryer, id string) (*domain.Work, error) {
	w, err := scanWork(q.QueryRowContext(ctx, `SELECT `+workColumns+` FROM works WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrWorkNotFound
	}
	if err != nil {
		return nil, err
	}

	w.Authors, err = queryPseuds(ctx, q, `
		SELECT p.id, p.user_id, p.name
		FROM work_pseuds wp JOIN pseuds p ON p.id = wp.pseud_id
		WHERE wp.work_id = ?
		ORDER BY wp.ordinal`, id)
	if err != nil {
		return nil, err
	}

	w.Tags, err = workTags(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func workTags(ctx context.Context, q queryer, workID string) ([]domain.Tag, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.id, t.name, t.kind
		FROM work_tags wt JOIN tags t ON t.id = wt.tag_id
		WHERE wt.work_id = ?
		ORDER BY wt.ordinal`, workID)
	if err != nil {
		return nil, fmt.Errorf("query work_tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var (
			t    domain.Tag
			kind string
		)
		if err := rows.Scan(&t.ID, &t.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.Kind = domain.TagKind(kind)
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return tags, nil
}
