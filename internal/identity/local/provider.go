// Package local is a self-hosted identity backend that keeps accounts in the
// application's own storage.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/cadastro/internal/dependencies/clock"
	"github.com/mcoot/cadastro/internal/dependencies/random"
	"github.com/mcoot/cadastro/internal/identity"
	"github.com/mcoot/cadastro/internal/model"
	"github.com/mcoot/cadastro/internal/storage"
)

const (
	// UIDLength is the length of generated account identifiers
	UIDLength = 28
	// UIDAlphabet is the characters used in account identifiers
	UIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// maxUIDAttempts bounds collision retries when generating identifiers
	maxUIDAttempts = 5
)

// Messages reported with each error code
const (
	msgEmailInUse        = "The email address is already in use by another account."
	msgInvalidEmail      = "The email address is badly formatted."
	msgWeakPassword      = "Password should be at least 6 characters"
	msgMissingPassword   = "A password is required."
	msgUserNotFound      = "There is no user record corresponding to this identifier."
	msgInvalidCredential = "The supplied auth credential is incorrect."
)

var errUIDExhausted = errors.New("could not generate a unique account id")

// Config holds configuration for the local provider
type Config struct {
	// BcryptCost is the bcrypt work factor; zero means bcrypt.DefaultCost
	BcryptCost int
}

// DefaultConfig returns default local provider configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Provider implements identity.Provider over storage.Storage
type Provider struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	cost    int
}

// Ensure Provider implements the identity contract
var _ identity.Provider = (*Provider)(nil)

// New creates a new local identity provider
func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Provider {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Provider{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
		cost:    cost,
	}
}

// CreateAccount registers a new account for the given credentials
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*model.Account, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if password == "" {
		return nil, identity.NewError(identity.CodeMissingPassword, msgMissingPassword)
	}
	if len([]rune(password)) < identity.MinPasswordLength {
		return nil, identity.NewError(identity.CodeWeakPassword, msgWeakPassword)
	}

	// Skip hashing for an address that is already registered. The insert
	// below is what enforces uniqueness.
	_, err = p.storage.GetAccountByEmail(ctx, normalized)
	if err == nil {
		return nil, identity.NewError(identity.CodeEmailAlreadyInUse, msgEmailInUse)
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, fmt.Errorf("look up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := p.clock.Now()
	stored := &model.StoredAccount{
		Email:        normalized,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for i := 0; i < maxUIDAttempts; i++ {
		uid := model.AccountUID(p.random.String(UIDLength, UIDAlphabet))
		if uid == "" {
			continue
		}
		stored.UID = uid

		err := p.storage.CreateAccount(ctx, stored)
		switch {
		case err == nil:
			p.logger.Info("account created", slog.String("uid", string(uid)))
			return stored.ToAccount(), nil
		case errors.Is(err, model.ErrEmailTaken):
			return nil, identity.NewError(identity.CodeEmailAlreadyInUse, msgEmailInUse)
		case errors.Is(err, model.ErrAccountExists):
			continue
		default:
			return nil, fmt.Errorf("create account: %w", err)
		}
	}
	return nil, errUIDExhausted
}

// UpdateDisplayName sets the account's display name
func (p *Provider) UpdateDisplayName(ctx context.Context, account *model.Account, displayName string) error {
	stored, err := p.storage.GetAccount(ctx, account.UID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return identity.NewError(identity.CodeUserNotFound, msgUserNotFound)
		}
		return fmt.Errorf("load account: %w", err)
	}

	stored.DisplayName = displayName
	stored.UpdatedAt = p.clock.Now()

	if err := p.storage.SaveAccount(ctx, stored); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	account.DisplayName = displayName
	return nil
}

// DeleteAccount removes the account
func (p *Provider) DeleteAccount(ctx context.Context, account *model.Account) error {
	if err := p.storage.DeleteAccount(ctx, account.UID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	p.logger.Info("account deleted", slog.String("uid", string(account.UID)))
	return nil
}

// SignIn verifies credentials and returns the matching account
func (p *Provider) SignIn(ctx context.Context, email, password string) (*model.Account, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, identity.NewError(identity.CodeMissingPassword, msgMissingPassword)
	}

	stored, err := p.storage.GetAccountByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, identity.NewError(identity.CodeInvalidCredential, msgInvalidCredential)
		}
		return nil, fmt.Errorf("look up email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)); err != nil {
		return nil, identity.NewError(identity.CodeInvalidCredential, msgInvalidCredential)
	}

	return stored.ToAccount(), nil
}

// normalizeEmail trims and lowercases an address, rejecting malformed input
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed || !strings.Contains(trimmed[strings.LastIndex(trimmed, "@")+1:], ".") {
		return "", identity.NewError(identity.CodeInvalidEmail, msgInvalidEmail)
	}
	return trimmed, nil
}
