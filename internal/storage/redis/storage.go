package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/cadastro/internal/model"
	"github.com/mcoot/cadastro/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = DefaultConfig().DialTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

// CreateAccount claims the email index with SETNX before writing the account,
// so only one of several concurrent registrations for an address succeeds
func (s *Storage) CreateAccount(ctx context.Context, account *model.StoredAccount) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	claimed, err := s.client.SetNX(ctx, emailIndexKey(account.Email), string(account.UID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailTaken
	}

	created, err := s.client.SetNX(ctx, accountKey(account.UID), data, 0).Result()
	if err == nil && !created {
		err = model.ErrAccountExists
	}
	if err != nil {
		if releaseErr := s.releaseEmail(ctx, account.Email, account.UID); releaseErr != nil {
			return errors.Join(err, releaseErr)
		}
		return err
	}
	return nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.StoredAccount) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	previous, err := s.GetAccount(ctx, account.UID)
	if err != nil && !errors.Is(err, model.ErrAccountNotFound) {
		return err
	}

	// Use pipeline for save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, accountKey(account.UID), data, 0)
	pipe.Set(ctx, emailIndexKey(account.Email), string(account.UID), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if previous != nil && previous.Email != account.Email {
		return s.releaseEmail(ctx, previous.Email, account.UID)
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, uid model.AccountUID) (*model.StoredAccount, error) {
	data, err := s.client.Get(ctx, accountKey(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.StoredAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.StoredAccount, error) {
	// Look up uid from email index
	uid, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	return s.GetAccount(ctx, model.AccountUID(uid))
}

func (s *Storage) DeleteAccount(ctx context.Context, uid model.AccountUID) error {
	account, err := s.GetAccount(ctx, uid)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil
		}
		return err
	}

	if err := s.client.Del(ctx, accountKey(uid)).Err(); err != nil {
		return err
	}
	return s.releaseEmail(ctx, account.Email, uid)
}

// releaseEmail deletes the email index entry only while it still points at
// uid. A concurrent change to the key aborts the transaction, which means the
// entry is no longer ours to delete.
func (s *Storage) releaseEmail(ctx context.Context, email string, uid model.AccountUID) error {
	key := emailIndexKey(email)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		owner, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if owner != string(uid) {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// User profile operations

func (s *Storage) SaveUserProfile(ctx context.Context, profile *model.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	// SET replaces the whole value, which gives overwrite (not merge) semantics
	return s.client.Set(ctx, userProfileKey(profile.UID), data, 0).Err()
}

func (s *Storage) GetUserProfile(ctx context.Context, uid model.AccountUID) (*model.UserProfile, error) {
	data, err := s.client.Get(ctx, userProfileKey(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}

	var profile model.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	profile.UID = uid
	return &profile, nil
}

func (s *Storage) DeleteUserProfile(ctx context.Context, uid model.AccountUID) error {
	return s.client.Del(ctx, userProfileKey(uid)).Err()
}
