package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cadastro/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Account tests

func (s *StorageSuite) TestSaveAndGetAccount() {
	account := &model.StoredAccount{
		UID:          "uid-1",
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	err := s.storage.SaveAccount(s.ctx, account)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAccount(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal(account.Email, retrieved.Email)
	s.Equal(account.PasswordHash, retrieved.PasswordHash)
	s.True(account.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestSaveAccountWritesEmailIndex() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"})

	s.True(s.mini.Exists("cadastro:idx:email:alice@example.com"))
	uid, err := s.mini.Get("cadastro:idx:email:alice@example.com")
	s.Require().NoError(err)
	s.Equal("uid-1", uid)

	retrieved, err := s.storage.GetAccountByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.AccountUID("uid-1"), retrieved.UID)
}

func (s *StorageSuite) TestSaveAccountMovesEmailIndex() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "old@example.com"})
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "new@example.com"})

	s.False(s.mini.Exists("cadastro:idx:email:old@example.com"))
	_, err := s.storage.GetAccountByEmail(s.ctx, "new@example.com")
	s.Require().NoError(err)
}

func (s *StorageSuite) TestGetAccountByEmailNotFound() {
	_, err := s.storage.GetAccountByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestDeleteAccountRemovesIndex() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"})

	err := s.storage.DeleteAccount(s.ctx, "uid-1")
	s.Require().NoError(err)

	s.False(s.mini.Exists("cadastro:account:uid-1"))
	s.False(s.mini.Exists("cadastro:idx:email:alice@example.com"))
}

func (s *StorageSuite) TestDeleteMissingAccountIsNoop() {
	s.NoError(s.storage.DeleteAccount(s.ctx, "nonexistent"))
}

func (s *StorageSuite) TestCreateAccount() {
	err := s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"})
	s.Require().NoError(err)

	s.True(s.mini.Exists("cadastro:account:uid-1"))
	owner, err := s.mini.Get("cadastro:idx:email:alice@example.com")
	s.Require().NoError(err)
	s.Equal("uid-1", owner)
}

func (s *StorageSuite) TestCreateAccountRejectsTakenEmail() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"}))

	err := s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-2", Email: "alice@example.com"})
	s.ErrorIs(err, model.ErrEmailTaken)
	s.False(s.mini.Exists("cadastro:account:uid-2"))

	owner, _ := s.mini.Get("cadastro:idx:email:alice@example.com")
	s.Equal("uid-1", owner)
}

func (s *StorageSuite) TestCreateAccountRejectsExistingUIDAndReleasesEmail() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"}))

	err := s.storage.CreateAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "bob@example.com"})
	s.ErrorIs(err, model.ErrAccountExists)
	s.False(s.mini.Exists("cadastro:idx:email:bob@example.com"))

	retrieved, err := s.storage.GetAccount(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal("alice@example.com", retrieved.Email)
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
	s.Len(s.mini.Keys(), 2)
}

func (s *StorageSuite) TestDeleteAccountKeepsIndexOwnedByAnotherAccount() {
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-1", Email: "alice@example.com"})
	_ = s.storage.SaveAccount(s.ctx, &model.StoredAccount{UID: "uid-2", Email: "alice@example.com"})

	s.Require().NoError(s.storage.DeleteAccount(s.ctx, "uid-1"))

	s.False(s.mini.Exists("cadastro:account:uid-1"))
	owner, err := s.mini.Get("cadastro:idx:email:alice@example.com")
	s.Require().NoError(err)
	s.Equal("uid-2", owner)
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
	s.Equal(profile.UID, retrieved.UID)
	s.Equal(profile.Email, retrieved.Email)
	s.Equal(profile.DisplayName, retrieved.DisplayName)
	s.True(profile.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestUserProfileDocumentShape() {
	_ = s.storage.SaveUserProfile(s.ctx, &model.UserProfile{
		UID:         "uid-1",
		Email:       "alice@example.com",
		DisplayName: "Alice",
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	})

	raw, err := s.mini.Get("cadastro:users:uid-1")
	s.Require().NoError(err)

	var doc map[string]any
	s.Require().NoError(json.Unmarshal([]byte(raw), &doc))
	s.Len(doc, 3)
	s.Equal("alice@example.com", doc["email"])
	s.Equal("Alice", doc["displayName"])
	s.Equal("2024-01-01T12:00:00Z", doc["createdAt"])
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

func (s *StorageSuite) TestNewWithURL() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	store, err := New(cfg)
	s.Require().NoError(err)
	defer func() { _ = store.Close() }()

	s.Require().NoError(store.SaveUserProfile(s.ctx, &model.UserProfile{UID: "uid-2", DisplayName: "Carol"}))
	retrieved, err := s.storage.GetUserProfile(s.ctx, "uid-2")
	s.Require().NoError(err)
	s.Equal("Carol", retrieved.DisplayName)
}

func (s *StorageSuite) TestNewFailsOnBadURL() {
	cfg := DefaultConfig()
	cfg.URL = "not-a-url"

	_, err := New(cfg)
	s.Error(err)
}
