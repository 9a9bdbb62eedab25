package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/seriesd/internal/domain"
	"github.com/listenupapp/seriesd/internal/store"
)

// CreateUser inserts a new user. Logins are unique, ignoring case.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, login, role)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Login,
		string(user.Role),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt string
		role                 string
	)
	err := row.Scan(&u.ID, &createdAt, &updatedAt, &u.Login, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, login, role FROM users WHERE id = ?`, id))
}

// GetUserByLogin retrieves a user by login, ignoring case.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, login, role FROM users WHERE login = ? COLLATE NOCASE`, login))
}

// CreatePseud inserts a pseud for an existing user.
func (s *Store) CreatePseud(ctx context.Context, pseud *domain.Pseud) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pseuds (id, user_id, name, name_key) VALUES (?, ?, ?, ?)`,
		pseud.ID, pseud.UserID, pseud.Name, store.FoldName(pseud.Name))
	switch {
	case isUniqueViolation(err):
		return store.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return fmt.Errorf("create pseud %s: %w", pseud.ID, store.ErrUserNotFound)
	}
	return err
}

// GetPseud retrieves a pseud by ID.
func (s *Store) GetPseud(ctx context.Context, id string) (*domain.Pseud, error) {
	return getPseud(ctx, s.db, id)
}

func getPseud(ctx context.Context, q queryer, id string) (*domain.Pseud, error) {
	var p domain.Pseud
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, name FROM pseuds WHERE id = ?`, id).Scan(&p.ID, &p.UserID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrPseudNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPseudsByUser returns a user's pseuds ordered by id.
func (s *Store) ListPseudsByUser(ctx context.Context, userID string) ([]domain.Pseud, error) {
	return queryPseuds(ctx, s.db,
		`SELECT id, user_id, name FROM pseuds WHERE user_id = ? ORDER BY id`, userID)
}

// FindPseudsByName returns every pseud whose name matches, ignoring case.
func (s *Store) FindPseudsByName(ctx context.Context, name string) ([]domain.Pseud, error) {
	return queryPseuds(ctx, s.db,
		`SELECT id, user_id, name FROM pseuds WHERE name_key = ? ORDER BY id`, store.FoldName(name))
}

func queryPseuds(ctx context.Context, q queryer, query string, args ...any) ([]domain.Pseud, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pseuds: %w", err)
	}
	defer rows.Close()

	pseuds := []domain.Pseud{}
	for rows.Next() {
		var p domain.Pseud
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan pseud: %w", err)
		}
		pseuds = append(pseuds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return pseuds, nil
}

// CreateTag inserts a new tag.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, kind) VALUES (?, ?, ?)`, tag.ID, tag.Name, string(tag.Kind))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}
