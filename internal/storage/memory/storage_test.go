package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mcoot/cadastro/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Account tests

func (s *StorageSuite) TestSaveAndGetAccount() {
	account := &model.StoredAccount{
		UID:          "uid-1",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}

	err := s.storage.SaveAccount(s.ctx, account)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAccount(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal(account.UID, retrieved.UID)
	s.Equal(account.Email, retrieved.Email)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestGetAccountByEmail() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"})

	retrieved, err := s.storage.GetAccountByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.AccountUID("uid-1"), retrieved.UID)
}

func (s *StorageSuite) TestGetAccountByEmailNotFound() {
	_, err := s.storage.GetAccountByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestSaveAccountMovesEmailIndex() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "old@example.com"})
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "new@example.com"})

	_, err := s.storage.GetAccountByEmail(s.ctx, "old@example.com")
	s.ErrorIs(err, model.ErrAccountNotFound)

	retrieved, err := s.storage.GetAccountByEmail(s.ctx, "new@example.com")
	s.Require().NoError(err)
	s.Equal(model.AccountUID("uid-1"), retrieved.UID)
}

func (s *StorageSuite) TestGetAccountReturnsCopy() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", DisplayName: "Alice"})

	retrieved, _ := s.storage.GetAccount(s.ctx, "uid-1")
	retrieved.DisplayName = "Mallory"

	again, _ := s.storage.GetAccount(s.ctx, "uid-1")
	s.Equal("Alice", again.DisplayName)
}

func (s *StorageSuite) TestDeleteAccount() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"})

	err := s.storage.DeleteAccount(s.ctx, "uid-1")
	s.Require().NoError(err)

	_, err = s.storage.GetAccount(s.ctx, "uid-1")
	s.ErrorIs(err, model.ErrAccountNotFound)
	_, err = s.storage.GetAccountByEmail(s.ctx, "alice@example.com")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestCreateAccount() {
	err := s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"})
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAccountByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.AccountUID("uid-1"), retrieved.UID)
}

func (s *StorageSuite) TestCreateAccountRejectsTakenEmail() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"}))

	err := s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-2", Email: "alice@example.com"})
	s.ErrorIs(err, model.ErrEmailTaken)

	_, err = s.storage.GetAccount(s.ctx, "uid-2")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestCreateAccountRejectsExistingUID() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"}))

	err := s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "bob@example.com"})
	s.ErrorIs(err, model.ErrAccountExists)

	_, err = s.storage.GetAccountByEmail(s.ctx, "bob@example.com")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestCreateAccountConcurrentSameEmail() {
	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.storage.CreateAccount(s.ctx, &model.StoredAccount{
				UID:   model.AccountUID(fmt.Sprintf("uid-%d", i)),
				Email: "alice@example.com",
			})
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		s.ErrorIs(err, model.ErrEmailTaken)
	}
	s.Equal(1, created)
	s.Len(s.storage.accounts, 1)
}

func (s *StorageSuite) TestDeleteAccountKeepsIndexOwnedByAnotherAccount() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"})
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-2", Email: "alice@example.com"})

	s.Require().NoError(s.storage.DeleteAccount(s.ctx, "uid-1"))

	retrieved, err := s.storage.GetAccountByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.AccountUID("uid-2"), retrieved.UID)
}

// User profile tests

func (s *StorageSuite) TestSaveAndGetUserProfile() {
	profile := &model.UserProfile{
		UID:         "uid-1",
		Email:       "alice@example.com",
		DisplayName: "Alice",
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	err := s.storage.SaveUserProfile(s.ctx, profile)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUserProfile(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal(*profile, *retrieved)
}

func (s *StorageSuite) TestSaveUserProfileOverwrites() {
	_ = s.storage.SaveUserProfile(s.ctx, &model.UserProfile{UID: "uid-1", Email: "a@example.com", DisplayName: "Alice"})
	_ = s.storage.SaveUserProfile(s.ctx, &model.UserProfile{UID: "uid-1", DisplayName: "Bob"})

	retrieved, err := s.storage.GetUserProfile(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal("Bob", retrieved.DisplayName)
	s.Empty(retrieved.Email)
}

func (s *StorageSuite) TestGetUserProfileNotFound() {
	_, err := s.storage.GetUserProfile(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestDeleteUserProfile() {
	_ = s.storage.SaveUserProfile(s.ctx, &model.UserProfile{UID: "uid-1"})

	err := s.storage.DeleteUserProfile(s.ctx, "uid-1")
	s.Require().NoError(err)

	_, err = s.storage.GetUserProfile(s.ctx, "uid-1")
	s.ErrorIs(err, model.ErrProfileNotFound)
}
