package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/db"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert violates a uniqueness constraint.
	ErrConflict = errors.New("already exists")
)

// Store defines the interface for all database operations.
type Store interface {
	CreateUser(ctx context.Context, user *core.User) error
	GetUserByUsername(ctx context.Context, username string) (*core.User, error)
	SaveReview(ctx context.Context, review *core.Review) error
	GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Review, error)
}

type sqlStore struct {
	db *sqlx.DB
}

// NewStore creates a Store backed by a postgres or sqlite connection.
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

// CreateUser inserts a new user. A duplicate username yields ErrConflict.
func (s *sqlStore) CreateUser(ctx context.Context, user *core.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	query := s.db.Rebind(`INSERT INTO users (username, name, password_hash, github_token, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, user.Username, user.Name, user.PasswordHash, user.GitHubToken, user.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", user.Username, ErrConflict)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByUsername looks up a user by exact username.
func (s *sqlStore) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	query := s.db.Rebind(`SELECT username, name, password_hash, github_token, created_at FROM users WHERE username = ?`)

	var u core.User
	if err := s.db.GetContext(ctx, &u, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// SaveReview inserts a new review record and sets its ID.
func (s *sqlStore) SaveReview(ctx context.Context, review *core.Review) error {
	payload, err := json.Marshal(review.Reviews)
	if err != nil {
		return fmt.Errorf("failed to encode reviews: %w", err)
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	query := s.db.Rebind(`INSERT INTO reviews (repo_full_name, pr_number, head_sha, reviews_json, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id`)
	row := s.db.QueryRowxContext(ctx, query, review.RepoFullName, review.PRNumber, review.HeadSHA, string(payload), review.CreatedAt)
	if err := row.Scan(&review.ID); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

type reviewRow struct {
	core.Review
	ReviewsJSON []byte `db:"reviews_json"`
}

// GetLatestReviewForPR retrieves the most recent review for a given pull request.
func (s *sqlStore) GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Review, error) {
	query := s.db.Rebind(`
		SELECT id, repo_full_name, pr_number, head_sha, reviews_json, created_at
		FROM reviews
		WHERE repo_full_name = ? AND pr_number = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)

	var row reviewRow
	if err := s.db.GetContext(ctx, &row, query, repoFullName, prNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no previous review found for PR %s#%d: %w", repoFullName, prNumber, ErrNotFound)
		}
		return nil, err
	}

	r := row.Review
	if err := json.Unmarshal(row.ReviewsJSON, &r.Reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return &r, nil
}
