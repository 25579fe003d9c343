// Package toolkit is an identity backend that talks to an Identity
// Toolkit-compatible REST service (the protocol behind hosted email/password
// auth products and their local emulators).
package toolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcoot/cadastro/internal/dependencies/clock"
	"github.com/mcoot/cadastro/internal/identity"
	"github.com/mcoot/cadastro/internal/model"
)

// Client implements identity.Provider over HTTP
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	clock      clock.Clock
	logger     *slog.Logger
}

// Ensure Client implements the identity contract
var _ identity.Provider = (*Client)(nil)

// New creates a new Identity Toolkit client
func New(cfg Config, clock clock.Clock, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		clock:  clock,
		logger: logger,
	}
}

type signUpRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type deleteRequest struct {
	IDToken string `json:"idToken"`
}

// CreateAccount handles accounts:signUp
func (c *Client) CreateAccount(ctx context.Context, email, password string) (*model.Account, error) {
	var resp accountResponse
	req := signUpRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.call(ctx, "accounts:signUp", req, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("account created", slog.String("uid", resp.LocalID))

	return &model.Account{
		UID:       model.AccountUID(resp.LocalID),
		Email:     resp.Email,
		CreatedAt: c.clock.Now(),
		IDToken:   resp.IDToken,
	}, nil
}

// UpdateDisplayName handles accounts:update
func (c *Client) UpdateDisplayName(ctx context.Context, account *model.Account, displayName string) error {
	var resp accountResponse
	req := updateRequest{IDToken: account.IDToken, DisplayName: displayName}
	if err := c.call(ctx, "accounts:update", req, &resp); err != nil {
		return err
	}

	account.DisplayName = displayName
	return nil
}

// DeleteAccount handles accounts:delete
func (c *Client) DeleteAccount(ctx context.Context, account *model.Account) error {
	if err := c.call(ctx, "accounts:delete", deleteRequest{IDToken: account.IDToken}, nil); err != nil {
		return err
	}
	c.logger.Info("account deleted", slog.String("uid", string(account.UID)))
	return nil
}

// SignIn handles accounts:signInWithPassword
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Account, error) {
	var resp accountResponse
	req := signUpRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.call(ctx, "accounts:signInWithPassword", req, &resp); err != nil {
		return nil, err
	}

	return &model.Account{
		UID:         model.AccountUID(resp.LocalID),
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		IDToken:     resp.IDToken,
	}, nil
}

// call POSTs a JSON body to {base}/v1/{method}?key={apiKey}
func (c *Client) call(ctx context.Context, method string, body, result any) error {
	endpoint := c.baseURL + "/v1/" + method
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("identity request failed", slog.String("method", method), slog.String("error", err.Error()))
		return identity.NewError(identity.CodeNetworkRequest, "A network error has occurred.")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp errorBody
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return toIdentityError(errResp.Error.Message)
		}
		return identity.NewError(identity.CodeInternalError, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody)))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
