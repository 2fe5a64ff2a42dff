package userrepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yanqian/semantic-faq/internal/domain/auth"
)

// Editor is a configured account allowed to change the corpus.
type Editor struct {
	Email        string
	Name         string
	PasswordHash string
}

// MemoryRepository serves editor accounts from process memory.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[int64]auth.User
	emailIndex map[string]int64
}

// NewMemoryRepository seeds the repository with editors. Password hashes
// must be bcrypt hashes; emails are normalized.
func NewMemoryRepository(editors []Editor) (*MemoryRepository, error) {
	r := &MemoryRepository{
		users:      make(map[int64]auth.User, len(editors)),
		emailIndex: make(map[string]int64, len(editors)),
	}
	now := time.Now().UTC()
	for i, editor := range editors {
		email, err := auth.NormalizeEmail(editor.Email)
		if err != nil {
			return nil, fmt.Errorf("editor %d: invalid email: %w", i, err)
		}
		if _, err := bcrypt.Cost([]byte(editor.PasswordHash)); err != nil {
			return nil, fmt.Errorf("editor %s: invalid password hash: %w", email, err)
		}
		if _, exists := r.emailIndex[email]; exists {
			return nil, fmt.Errorf("editor %s: duplicate email", email)
		}
		name := editor.Name
		if name == "" {
			name = email
		}
		user := auth.User{
			ID:           int64(i + 1),
			Email:        email,
			Name:         name,
			PasswordHash: editor.PasswordHash,
			CreatedAt:    now,
		}
		r.users[user.ID] = user
		r.emailIndex[email] = user.ID
	}
	return r, nil
}

// GetByEmail returns a user by normalized email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.users[id], true, nil
	}
	return auth.User{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok, nil
}

// Len reports how many editors are configured.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

var _ auth.Repository = (*MemoryRepository)(nil)
