package local

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/cadastro/internal/dependencies/mocks"
	"github.com/mcoot/cadastro/internal/dependencies/random"
	"github.com/mcoot/cadastro/internal/identity"
	"github.com/mcoot/cadastro/internal/model"
	"github.com/mcoot/cadastro/internal/storage/memory"
	"github.com/mcoot/cadastro/internal/testutil"
)

type ProviderSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	provider *Provider
	ctx      context.Context
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderSuite))
}

func (s *ProviderSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.random.QueueString("uid0000000000000000000000001", "uid0000000000000000000000002")
	s.provider = New(s.storage, s.clock, s.random, Config{BcryptCost: bcrypt.MinCost}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ProviderSuite) requireCode(err error, code string) {
	s.T().Helper()
	ie, ok := identity.AsError(err)
	s.Require().True(ok, "expected identity error, got %v", err)
	s.Equal(code, ie.Code)
}

// CreateAccount tests

func (s *ProviderSuite) TestCreateAccountSucceeds() {
	account, err := s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")
	s.Require().NoError(err)

	s.Equal(model.AccountUID("uid0000000000000000000000001"), account.UID)
	s.Equal("alice@example.com", account.Email)
	s.Empty(account.DisplayName)
	s.Equal(s.clock.Now(), account.CreatedAt)
}

func (s *ProviderSuite) TestCreateAccountNormalizesEmail() {
	account, err := s.provider.CreateAccount(s.ctx, "  Alice@Example.COM ", "secret1")
	s.Require().NoError(err)
	s.Equal("alice@example.com", account.Email)
}

func (s *ProviderSuite) TestCreateAccountHashesPassword() {
	account, _ := s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")

	stored, err := s.storage.GetAccount(s.ctx, account.UID)
	s.Require().NoError(err)
	s.NotEqual("secret1", stored.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func (s *ProviderSuite) TestCreateAccountRejectsDuplicateEmail() {
	_, _ = s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")

	_, err := s.provider.CreateAccount(s.ctx, "ALICE@example.com", "another1")
	s.requireCode(err, identity.CodeEmailAlreadyInUse)
}

// slowLookupStorage delays email lookups like a networked backend would,
// so concurrent registrations all pass the lookup before any insert lands
type slowLookupStorage struct {
	*memory.Storage
}

func (st slowLookupStorage) GetAccountByEmail(ctx context.Context, email string) (*model.StoredAccount, error) {
	time.Sleep(time.Millisecond)
	return st.Storage.GetAccountByEmail(ctx, email)
}

func (s *ProviderSuite) TestCreateAccountConcurrentSameEmail() {
	provider := New(slowLookupStorage{s.storage}, s.clock, random.New(), Config{BcryptCost: bcrypt.MinCost}, testutil.NopLogger())

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = provider.CreateAccount(s.ctx, "alice@example.com", "secret1")
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		s.requireCode(err, identity.CodeEmailAlreadyInUse)
	}
	s.Equal(1, created)

	stored, err := s.storage.GetAccountByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal("alice@example.com", stored.Email)
}

func (s *ProviderSuite) TestCreateAccountRejectsMalformedEmail() {
	for _, email := range []string{"", "alice", "alice@", "Alice <alice@example.com>", "alice@localhost", "a b@example.com"} {
		_, err := s.provider.CreateAccount(s.ctx, email, "secret1")
		s.requireCode(err, identity.CodeInvalidEmail)
	}
}

func (s *ProviderSuite) TestCreateAccountRejectsWeakPassword() {
	_, err := s.provider.CreateAccount(s.ctx, "alice@example.com", "12345")
	s.requireCode(err, identity.CodeWeakPassword)
}

func (s *ProviderSuite) TestCreateAccountRejectsMissingPassword() {
	_, err := s.provider.CreateAccount(s.ctx, "alice@example.com", "")
	s.requireCode(err, identity.CodeMissingPassword)
}

func (s *ProviderSuite) TestCreateAccountRetriesOnUIDCollision() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid0000000000000000000000001", Email: "taken@example.com"})

	account, err := s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")
	s.Require().NoError(err)
	s.Equal(model.AccountUID("uid0000000000000000000000002"), account.UID)
}

func (s *ProviderSuite) TestCreateAccountFailsWhenIDsExhausted() {
	s.random.Reset()

	_, err := s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")
	s.True(errors.Is(err, errUIDExhausted))
	_, ok := identity.AsError(err)
	s.False(ok)
}

// UpdateDisplayName tests

func (s *ProviderSuite) TestUpdateDisplayNameSucceeds() {
	account, _ := s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")
	s.clock.Advance(time.Minute)

	err := s.provider.UpdateDisplayName(s.ctx, account, "Alice")
	s.Require().NoError(err)
	s.Equal("Alice", account.DisplayName)

	stored, _ := s.storage.GetAccount(s.ctx, account.UID)
	s.Equal("Alice", stored.DisplayName)
	s.Equal(s.clock.Now(), stored.UpdatedAt)
}

func (s *ProviderSuite) TestUpdateDisplayNameUnknownAccount() {
	err := s.provider.UpdateDisplayName(s.ctx, &model.Account{UID: "missing"}, "Alice")
	s.requireCode(err, identity.CodeUserNotFound)
}

// DeleteAccount tests

func (s *ProviderSuite) TestDeleteAccountFreesEmail() {
	account, _ := s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")

	s.Require().NoError(s.provider.DeleteAccount(s.ctx, account))

	_, err := s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")
	s.NoError(err)
}

// SignIn tests

func (s *ProviderSuite) TestSignInSucceeds() {
	created, _ := s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")
	_ = s.provider.UpdateDisplayName(s.ctx, created, "Alice")

	account, err := s.provider.SignIn(s.ctx, "Alice@Example.com", "secret1")
	s.Require().NoError(err)
	s.Equal(created.UID, account.UID)
	s.Equal("Alice", account.DisplayName)
}

func (s *ProviderSuite) TestSignInWrongPassword() {
	_, _ = s.provider.CreateAccount(s.ctx, "alice@example.com", "secret1")

	_, err := s.provider.SignIn(s.ctx, "alice@example.com", "wrong-password")
	s.requireCode(err, identity.CodeInvalidCredential)
}

func (s *ProviderSuite) TestSignInUnknownEmail() {
	_, err := s.provider.SignIn(s.ctx, "nobody@example.com", "secret1")
	s.requireCode(err, identity.CodeInvalidCredential)
}
