package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/axi0m/ratatoskr/internal/domain/model"
	"github.com/axi0m/ratatoskr/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TrackerStore = (*TrackerRepo)(nil)

const timeLayout = "2006-01-02T15:04:05Z"

// TrackerRepo is the SQLite implementation of the TrackerStore port.
type TrackerRepo struct {
	db *DB
}

// NewTrackerRepo creates a TrackerRepo backed by the given DB.
func NewTrackerRepo(db *DB) *TrackerRepo {
	return &TrackerRepo{db: db}
}

// Insert adds a new tracked repository with no recorded release or commit.
// Returns ErrAlreadyTracked if a row with the same (owner, repo, website)
// tuple exists.
func (r *TrackerRepo) Insert(ctx context.Context, owner, name string, host model.Host, observedAt time.Time) error {
	const query = `INSERT INTO repo (owner, repo, last_updated, website) VALUES (?, ?, ?, ?)`

	_, err := r.db.handle.ExecContext(ctx, query, owner, name, observedAt.UTC().Format(timeLayout), string(host))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("insert %s/%s: %w", owner, name, driven.ErrAlreadyTracked)
		}
		return fmt.Errorf("insert %s/%s: %w", owner, name, err)
	}

	return nil
}

// Contains reports whether an owner/name pair is tracked under any provider.
// The host column is deliberately ignored to mirror the de-duplication lookup
// used when loading the watch-list.
func (r *TrackerRepo) Contains(ctx context.Context, owner, name string) (bool, error) {
	const query = `SELECT 1 FROM repo WHERE owner = ? AND repo = ? LIMIT 1`

	var one int
	err := r.db.handle.QueryRowContext(ctx, query, owner, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s/%s: %w", owner, name, err)
	}

	return true, nil
}

// Update overwrites the release, commit, and timestamp fields of the matching
// row. Empty release/commit values are stored as NULL. Returns ErrNotTracked
// when no row matches.
func (r *TrackerRepo) Update(ctx context.Context, repo model.TrackedRepository) error {
	const query = `UPDATE repo SET latest_release = ?, latest_commit = ?, last_updated = ? WHERE owner = ? AND repo = ? AND website = ?`

	result, err := r.db.handle.ExecContext(ctx, query,
		nullable(repo.LatestRelease),
		nullable(repo.LatestCommit),
		repo.LastUpdated.UTC().Format(timeLayout),
		repo.Owner, repo.Name, string(repo.Host),
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", repo.FullName(), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update %s: %w", repo.FullName(), driven.ErrNotTracked)
	}

	return nil
}

// Remove deletes every row matching the owner/name pair. It is a maintenance
// operation; the check cycle never deletes rows. Returns ErrNotTracked when
// nothing matched.
func (r *TrackerRepo) Remove(ctx context.Context, owner, name string) error {
	const query = `DELETE FROM repo WHERE owner = ? AND repo = ?`

	result, err := r.db.handle.ExecContext(ctx, query, owner, name)
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", owner, name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("remove %s/%s: %w", owner, name, driven.ErrNotTracked)
	}

	return nil
}

// ListAll returns every tracked repository ordered by owner then name, so one
// call iterates deterministically.
func (r *TrackerRepo) ListAll(ctx context.Context) ([]model.TrackedRepository, error) {
	const query = `SELECT owner, repo, latest_release, latest_commit, last_updated, website FROM repo ORDER BY owner, repo`

	rows, err := r.db.handle.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tracked repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.TrackedRepository
	for rows.Next() {
		repo, err := scanTracked(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tracked repository: %w", err)
		}
		repos = append(repos, *repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracked repositories: %w", err)
	}

	return repos, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTracked(s scanner) (*model.TrackedRepository, error) {
	var repo model.TrackedRepository
	var release, commit sql.NullString
	var lastUpdated, host string

	if err := s.Scan(&repo.Owner, &repo.Name, &release, &commit, &lastUpdated, &host); err != nil {
		return nil, err
	}

	repo.LatestRelease = release.String
	repo.LatestCommit = commit.String
	repo.Host = model.Host(host)

	var err error
	repo.LastUpdated, err = parseTime(lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("parse last_updated: %w", err)
	}

	return &repo, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		timeLayout,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
