package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/cadastro/internal/dependencies/clock"
	"github.com/mcoot/cadastro/internal/identity"
	"github.com/mcoot/cadastro/internal/model"
)

// Errors
var (
	ErrInvalidSession = errors.New("invalid or expired session")
)

// User-facing messages (pt-BR)
const (
	MsgInvalidCredentials = "E-mail ou senha inválidos"
	MsgMissingFields      = "Informe e-mail e senha"
	MsgLoginFailed        = "Erro ao entrar"
)

// ProfileReader loads users/{uid} documents
type ProfileReader interface {
	GetUserProfile(ctx context.Context, uid model.AccountUID) (*model.UserProfile, error)
}

// Session represents an authenticated session
type Session struct {
	Token     string
	Account   model.Account
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service signs users in through the identity service and tracks sessions
type Service struct {
	authenticator identity.Authenticator
	profiles      ProfileReader
	clock         clock.Clock
	logger        *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new AuthService
func New(authenticator identity.Authenticator, profiles ProfileReader, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		authenticator:   authenticator,
		profiles:        profiles,
		clock:           clock,
		logger:          logger,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// Login authenticates with the identity service and creates a session
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.authenticator.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s.logger.Info("user signed in", slog.String("uid", string(account.UID)))

	return s.createSession(account), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetProfile returns the profile document of the session's account
func (s *Service) GetProfile(ctx context.Context, session *Session) (*model.UserProfile, error) {
	return s.profiles.GetUserProfile(ctx, session.Account.UID)
}

// MessageFor maps a login failure to the message shown to the user
func MessageFor(err error) string {
	ie, ok := identity.AsError(err)
	if !ok {
		return MsgLoginFailed
	}
	switch ie.Code {
	case identity.CodeInvalidCredential, identity.CodeWrongPassword, identity.CodeUserNotFound:
		return MsgInvalidCredentials
	case identity.CodeInvalidEmail:
		return "E-mail inválido"
	case identity.CodeMissingPassword:
		return MsgMissingFields
	default:
		return ie.Message
	}
}

// createSession creates a new session for an account
func (s *Service) createSession(account *model.Account) *Session {
	token := s.generateToken()
	now := s.clock.Now()

	acct := *account
	acct.IDToken = ""

	session := &Session{
		Token:     token,
		Account:   acct,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session
}

// generateToken generates a random session token
func (s *Service) generateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}
