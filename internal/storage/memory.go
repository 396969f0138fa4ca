package storage

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/sevigo/code-review-api/internal/core"
)

type memoryStore struct {
	mu      sync.RWMutex
	users   map[string]core.User
	reviews []core.Review
	nextID  int64
}

// NewMemoryStore creates a process-local Store. Data is lost on exit.
func NewMemoryStore() Store {
	return &memoryStore{users: make(map[string]core.User)}
}

func (m *memoryStore) CreateUser(_ context.Context, user *core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Username]; ok {
		return fmt.Errorf("user %q: %w", user.Username, ErrConflict)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.users[user.Username] = *user
	return nil
}

func (m *memoryStore) GetUserByUsername(_ context.Context, username string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return &u, nil
}

func (m *memoryStore) SaveReview(_ context.Context, review *core.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	review.ID = m.nextID
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	stored := *review
	stored.Reviews = maps.Clone(review.Reviews)
	m.reviews = append(m.reviews, stored)
	return nil
}

func (m *memoryStore) GetLatestReviewForPR(_ context.Context, repoFullName string, prNumber int) (*core.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.reviews) - 1; i >= 0; i-- {
		r := m.reviews[i]
		if r.RepoFullName == repoFullName && r.PRNumber == prNumber {
			r.Reviews = maps.Clone(r.Reviews)
			return &r, nil
		}
	}
	return nil, fmt.Errorf("no previous review found for PR %s#%d: %w", repoFullName, prNumber, ErrNotFound)
}
