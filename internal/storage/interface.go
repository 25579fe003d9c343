package storage

import (
	"context"

	"github.com/mcoot/cadastro/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Account operations (local identity backend)
	// CreateAccount inserts a new account only if neither its uid nor its email
	// is registered, returning ErrAccountExists or ErrEmailTaken otherwise.
	CreateAccount(ctx context.Context, account *model.StoredAccount) error
	SaveAccount(ctx context.Context, account *model.StoredAccount) error
	GetAccount(ctx context.Context, uid model.AccountUID) (*model.StoredAccount, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.StoredAccount, error)
	DeleteAccount(ctx context.Context, uid model.AccountUID) error

	// User profile documents (collection "users", keyed by account uid)
	// SaveUserProfile overwrites any existing document; fields are never merged.
	SaveUserProfile(ctx context.Context, profile *model.UserProfile) error
	GetUserProfile(ctx context.Context, uid model.AccountUID) (*model.UserProfile, error)
	DeleteUserProfile(ctx context.Context, uid model.AccountUID) error
}
