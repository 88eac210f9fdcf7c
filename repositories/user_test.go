package repositories

import (
	"context"
	"messenger/errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateThenGet(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewUserRepository(openBadger(t))

	id, err := repository.CreateUser(ctx, "alice@example.com", "hash")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repository.GetUserByEmail(ctx, "alice@example.com")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("hash", user.PasswordHash)
	req.Equal([]string{"user"}, user.Roles)
}

func TestUserRepository_Duplicate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewUserRepository(openBadger(t))

	_, err := repository.CreateUser(ctx, "alice@example.com", "hash")
	req.NoError(err)
	_, err = repository.CreateUser(ctx, "alice@example.com", "other")

	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_ConcurrentSignupsCreateOneUser(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewUserRepository(openBadger(t))

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repository.CreateUser(ctx, "race@example.com", "hash"); err == nil {
				created.Add(1)
			} else {
				req.ErrorIs(err, errors.ErrUserAlreadyExists)
			}
		}()
	}
	wg.Wait()

	req.Equal(int32(1), created.Load())
}

func TestUserRepository_NotFound(t *testing.T) {
	repository := NewUserRepository(openBadger(t))

	_, err := repository.GetUserByEmail(context.Background(), "ghost@example.com")

	require.ErrorIs(t, err, errors.ErrNotFound)
}
