package kvrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository directorio de usuarios: user:<id> y el índice user-email:<email>.
type UserRepository struct {
	store kv.Store
}

func NewUserRepository(store kv.Store) *UserRepository {
	return &UserRepository{store: store}
}

type userEmailIndex struct {
	UserID string `json:"userId"`
}

// Create reserva el email y guarda el usuario en una misma transacción.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	emailKey, userKey := UserEmailKey(u.Email), UserKey(u.ID)
	userRaw, err := encode(userKey, u)
	if err != nil {
		return err
	}
	idxRaw, err := encode(emailKey, userEmailIndex{UserID: u.ID})
	if err != nil {
		return err
	}
	return r.store.RunTx(ctx, []string{emailKey}, func(tx kv.Querier) error {
		_, err := tx.Get(ctx, emailKey)
		if err == nil {
			return domain.ErrEmailAlreadyExists
		}
		if !errors.Is(err, kv.ErrNotFound) {
			return fmt.Errorf("verificar email: %w", err)
		}
		if err := tx.MSet(ctx, []kv.Entry{{Key: userKey, Value: userRaw}, {Key: emailKey, Value: idxRaw}}); err != nil {
			return fmt.Errorf("guardar usuario: %w", err)
		}
		return nil
	})
}

// GetByID devuelve (nil, nil) si el usuario no existe.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	key := UserKey(id)
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer usuario: %w", err)
	}
	return decode[entity.User](key, raw)
}

// GetByEmail devuelve (nil, nil) si no hay usuario con ese email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	key := UserEmailKey(email)
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer índice de email: %w", err)
	}
	idx, err := decode[userEmailIndex](key, raw)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, idx.UserID)
}
