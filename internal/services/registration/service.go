package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/cadastro/internal/dependencies/clock"
	"github.com/mcoot/cadastro/internal/identity"
	"github.com/mcoot/cadastro/internal/model"
)

// Errors
var (
	ErrPasswordMismatch    = errors.New("password and confirmation do not match")
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrSubmitInProgress    = errors.New("a submission is already in progress")
	ErrProfileWriteFailed  = errors.New("failed to write user profile")
)

// ProfileWriter persists the users/{uid} document with overwrite semantics
type ProfileWriter interface {
	SaveUserProfile(ctx context.Context, profile *model.UserProfile) error
}

// Config holds configuration for the registration service
type Config struct {
	// RollbackOnFailure deletes a freshly created account when a later step
	// of the registration sequence fails
	RollbackOnFailure bool
}

// DefaultConfig returns default registration configuration
func DefaultConfig() Config {
	return Config{
		RollbackOnFailure: true,
	}
}

// Result describes a completed registration
type Result struct {
	Account *model.Account
	Profile *model.UserProfile
}

// Service runs the registration sequence against the identity service and
// the document store. It holds no per-screen state; see Controller.
type Service struct {
	accounts identity.AccountCreator
	profiles identity.ProfileUpdater
	deleter  identity.AccountDeleter
	docs     ProfileWriter
	clock    clock.Clock
	cfg      Config
	logger   *slog.Logger
}

// New creates a new registration Service
func New(provider identity.Provider, docs ProfileWriter, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		accounts: provider,
		profiles: provider,
		deleter:  provider,
		docs:     docs,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// NewController creates a controller for one registration screen
func (s *Service) NewController(opts ...ControllerOption) *Controller {
	c := &Controller{service: s}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register submits a single form through a fresh controller and returns the
// alert the screen would show
func (s *Service) Register(ctx context.Context, form Form) (*Result, Alert, error) {
	c := s.NewController(WithForm(form))
	result, err := c.Submit(ctx)

	alert := errorAlert(MsgFailed)
	if a := c.Alert(); a != nil {
		alert = *a
	}
	return result, alert, err
}

// register runs create account -> update display name -> write profile.
// Each step starts only after the previous one succeeded.
func (s *Service) register(ctx context.Context, email, password, displayName string) (*Result, error) {
	// Step 1: Create the account
	account, err := s.accounts.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	// Step 2: Set the display name on the new account
	if err := s.profiles.UpdateDisplayName(ctx, account, displayName); err != nil {
		s.rollback(ctx, account, err)
		return nil, fmt.Errorf("update display name: %w", err)
	}

	// Step 3: Write the profile document. The email comes from the identity
	// service, which may have normalized what was typed.
	profile := &model.UserProfile{
		UID:         account.UID,
		Email:       account.Email,
		DisplayName: displayName,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.docs.SaveUserProfile(ctx, profile); err != nil {
		s.rollback(ctx, account, err)
		return nil, fmt.Errorf("%w: %w", ErrProfileWriteFailed, err)
	}

	s.logger.Info("user registered",
		slog.String("uid", string(account.UID)),
		slog.String("display_name", displayName),
	)

	return &Result{Account: account, Profile: profile}, nil
}

// rollback removes an account whose registration could not be completed
func (s *Service) rollback(ctx context.Context, account *model.Account, cause error) {
	s.logger.Warn("registration incomplete",
		slog.String("uid", string(account.UID)),
		slog.String("error", cause.Error()),
		slog.Bool("rollback", s.cfg.RollbackOnFailure),
	)

	if !s.cfg.RollbackOnFailure || s.deleter == nil {
		return
	}

	// The request may already be cancelled; the cleanup should still run
	if err := s.deleter.DeleteAccount(context.WithoutCancel(ctx), account); err != nil {
		s.logger.Error("account rollback failed",
			slog.String("uid", string(account.UID)),
			slog.String("error", err.Error()),
		)
	}
}

// alertFor maps a failed registration to the alert shown to the user
func (s *Service) alertFor(err error) Alert {
	if ie, ok := identity.AsError(err); ok {
		return identityAlert(ie)
	}

	s.logger.Error("registration failed", slog.String("error", err.Error()))
	return errorAlert(MsgFailed)
}
