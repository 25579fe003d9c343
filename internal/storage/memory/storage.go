package memory

import (
	"context"
	"sync"

	"github.com/mcoot/cadastro/internal/model"
	"github.com/mcoot/cadastro/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts   map[model.AccountUID]*model.StoredAccount
	emailIndex map[string]model.AccountUID
	profiles   map[model.AccountUID]model.UserProfile
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:   make(map[model.AccountUID]*model.StoredAccount),
		emailIndex: make(map[string]model.AccountUID),
		profiles:   make(map[model.AccountUID]model.UserProfile),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.StoredAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emailIndex[account.Email]; ok {
		return model.ErrEmailTaken
	}
	if _, ok := s.accounts[account.UID]; ok {
		return model.ErrAccountExists
	}

	stored := *account
	s.accounts[account.UID] = &stored
	s.emailIndex[account.Email] = account.UID
	return nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.StoredAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop a stale index entry if the email changed
	if existing, ok := s.accounts[account.UID]; ok && existing.Email != account.Email {
		s.releaseEmail(existing.Email, account.UID)
	}

	stored := *account
	s.accounts[account.UID] = &stored
	s.emailIndex[account.Email] = account.UID
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, uid model.AccountUID) (*model.StoredAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[uid]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.StoredAccount, error) {
	s.mu.RLock()
	uid, ok := s.emailIndex[email]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return s.GetAccount(ctx, uid)
}

func (s *Storage) DeleteAccount(ctx context.Context, uid model.AccountUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account, ok := s.accounts[uid]; ok {
		s.releaseEmail(account.Email, uid)
		delete(s.accounts, uid)
	}
	return nil
}

// releaseEmail drops an index entry only while it still points at uid.
// Callers hold mu.
func (s *Storage) releaseEmail(email string, uid model.AccountUID) {
	if s.emailIndex[email] == uid {
		delete(s.emailIndex, email)
	}
}

// User profile operations

func (s *Storage) SaveUserProfile(ctx context.Context, profile *model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UID] = *profile
	return nil
}

func (s *Storage) GetUserProfile(ctx context.Context, uid model.AccountUID) (*model.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[uid]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return &profile, nil
}

func (s *Storage) DeleteUserProfile(ctx context.Context, uid model.AccountUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, uid)
	return nil
}
