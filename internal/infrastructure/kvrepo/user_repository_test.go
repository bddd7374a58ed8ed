package kvrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kvrepo"
)

func TestUserRepository_CreateYBuscarPorEmail(t *testing.T) {
	ctx := context.Background()
	repo := kvrepo.NewUserRepository(kv.NewMemoryStore())
	u := &entity.User{ID: "u1", Email: "Ana@Ferreteria.pe", Name: "Ana", Role: entity.RoleAdmin, PasswordHash: "x", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByEmail(ctx, "ana@ferreteria.pe")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.True(t, got.IsAdmin())

	none, err := repo.GetByEmail(ctx, "otro@ferreteria.pe")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserRepository_EmailDuplicado(t *testing.T) {
	ctx := context.Background()
	repo := kvrepo.NewUserRepository(kv.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Email: "a@b.pe"}))

	err := repo.Create(ctx, &entity.User{ID: "u2", Email: "A@B.pe"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	got, err := repo.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_CreateConcurrenteMismoEmail(t *testing.T) {
	ctx := context.Background()
	repo := kvrepo.NewUserRepository(kv.NewMemoryStore())

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &entity.User{ID: string(rune('a' + i)), Email: "dup@b.pe"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
		}
	}
	assert.Equal(t, 1, ok)
}
