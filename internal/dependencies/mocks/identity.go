package mocks

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/cadastro/internal/identity"
	"github.com/mcoot/cadastro/internal/model"
)

// MockIdentity is a scriptable identity.Provider for testing
type MockIdentity struct {
	mu sync.Mutex

	// Calls records method names in call order
	Calls []string
	// OnCall, if set, runs at the start of every method
	OnCall func(method string)

	// Errors to return from each method
	CreateErr error
	UpdateErr error
	DeleteErr error
	SignInErr error

	// Accounts holds accounts created or seeded, keyed by lowercase email
	Accounts map[string]*model.Account
	// Passwords holds the password for each seeded/created email
	Passwords map[string]string

	// Deleted records the uids passed to DeleteAccount
	Deleted []model.AccountUID

	nextUID int
}

// Ensure MockIdentity implements Provider
var _ identity.Provider = (*MockIdentity)(nil)

// NewMockIdentity creates an empty MockIdentity
func NewMockIdentity() *MockIdentity {
	return &MockIdentity{
		Accounts:  make(map[string]*model.Account),
		Passwords: make(map[string]string),
	}
}

func (m *MockIdentity) record(method string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, method)
	onCall := m.OnCall
	m.mu.Unlock()
	if onCall != nil {
		onCall(method)
	}
}

// CreateAccount returns CreateErr or a new account with a sequential uid.
// The returned email is lowercased, as real backends normalize it.
func (m *MockIdentity) CreateAccount(ctx context.Context, email, password string) (*model.Account, error) {
	m.record("CreateAccount")
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	normalized := strings.ToLower(strings.TrimSpace(email))
	if _, ok := m.Accounts[normalized]; ok {
		return nil, identity.NewError(identity.CodeEmailAlreadyInUse, "The email address is already in use by another account.")
	}

	m.nextUID++
	account := &model.Account{
		UID:       model.AccountUID("mock-uid-" + strconv.Itoa(m.nextUID)),
		Email:     normalized,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	m.Accounts[normalized] = account
	m.Passwords[normalized] = password

	copied := *account
	return &copied, nil
}

// UpdateDisplayName returns UpdateErr or stores the name
func (m *MockIdentity) UpdateDisplayName(ctx context.Context, account *model.Account, displayName string) error {
	m.record("UpdateDisplayName")
	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.Accounts[account.Email]; ok {
		stored.DisplayName = displayName
	}
	account.DisplayName = displayName
	return nil
}

// DeleteAccount returns DeleteErr or forgets the account
func (m *MockIdentity) DeleteAccount(ctx context.Context, account *model.Account) error {
	m.record("DeleteAccount")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, account.UID)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Accounts, account.Email)
	delete(m.Passwords, account.Email)
	return nil
}

// SignIn returns SignInErr or checks the stored password
func (m *MockIdentity) SignIn(ctx context.Context, email, password string) (*model.Account, error) {
	m.record("SignIn")
	if m.SignInErr != nil {
		return nil, m.SignInErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	normalized := strings.ToLower(strings.TrimSpace(email))
	account, ok := m.Accounts[normalized]
	if !ok || m.Passwords[normalized] != password {
		return nil, identity.NewError(identity.CodeInvalidCredential, "The supplied auth credential is incorrect.")
	}
	copied := *account
	return &copied, nil
}

// CallsSnapshot returns a copy of the recorded calls
func (m *MockIdentity) CallsSnapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

// MockProfileWriter records profile documents written
type MockProfileWriter struct {
	mu sync.Mutex

	// Profiles holds every document written, in order
	Profiles []model.UserProfile
	// Err is returned from SaveUserProfile when set
	Err error
	// OnCall, if set, runs at the start of SaveUserProfile
	OnCall func(method string)
}

// NewMockProfileWriter creates an empty MockProfileWriter
func NewMockProfileWriter() *MockProfileWriter {
	return &MockProfileWriter{}
}

// SaveUserProfile records the document or returns Err
func (w *MockProfileWriter) SaveUserProfile(ctx context.Context, profile *model.UserProfile) error {
	if w.OnCall != nil {
		w.OnCall("SaveUserProfile")
	}
	if w.Err != nil {
		return w.Err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Profiles = append(w.Profiles, *profile)
	return nil
}
