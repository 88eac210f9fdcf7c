//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"messenger/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, email, hashedPassword string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the repository representation of an account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUser persists the user in BadgerDB and returns the newly generated user ID.
// Two concurrent signups for the same email conflict at commit time and the
// loser gets ErrUserAlreadyExists.
func (u UserRepository) CreateUser(ctx context.Context, email, hashedPassword string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	newID := uuid.New().String()
	data, err := json.Marshal(User{
		ID:           newID,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(email)
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return errors.ErrUserAlreadyExists
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, data)
	})
	switch {
	case err == nil:
		return newID, nil
	case stderrors.Is(err, errors.ErrUserAlreadyExists), stderrors.Is(err, badger.ErrConflict):
		return "", errors.ErrUserAlreadyExists
	default:
		return "", fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
}

// GetUserByEmail returns ErrNotFound when no account exists for email.
func (u UserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	switch {
	case err == nil:
		return user, nil
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return User{}, errors.ErrNotFound
	default:
		return User{}, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
}

func userKey(email string) []byte {
	return []byte("user:" + email)
}
