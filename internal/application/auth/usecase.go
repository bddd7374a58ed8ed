// Package auth registro, login y resolución de identidad a partir del token.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/pkg/jwt"
)

// Longitud mínima de contraseña.
const MinPasswordLength = 6

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	cost     int
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, cost: bcrypt.DefaultCost}
}

// WithBcryptCost ajusta el costo de bcrypt (tests usan bcrypt.MinCost).
func (uc *AuthUseCase) WithBcryptCost(cost int) *AuthUseCase {
	uc.cost = cost
	return uc
}

// Signup crea un usuario. caller es la identidad que hace la petición (nil si es anónima):
// solo un admin puede crear otro admin. Devuelve ErrEmailAlreadyExists si el email existe.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest, caller *entity.User) (*dto.UserResponse, error) {
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	if role == entity.RoleAdmin && (caller == nil || !caller.IsAdmin()) {
		return nil, fmt.Errorf("%w: solo un administrador puede crear administradores", domain.ErrForbidden)
	}
	user, err := uc.register(ctx, in.Email, in.Password, in.Name, role)
	if err != nil {
		return nil, err
	}
	return dto.FromUser(user), nil
}

// CreateAdmin crea un administrador sin verificar al llamador (CLI de administración).
func (uc *AuthUseCase) CreateAdmin(ctx context.Context, email, password, name string) (*dto.UserResponse, error) {
	user, err := uc.register(ctx, email, password, name, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return dto.FromUser(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email desconocido y contraseña incorrecta devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Success: true, Token: token, User: *dto.FromUser(user)}, nil
}

// Authenticate valida el token y carga el usuario. Token inválido o usuario
// inexistente devuelven ErrUnauthorized.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario inexistente", domain.ErrUnauthorized)
	}
	return user, nil
}

func (uc *AuthUseCase) register(ctx context.Context, email, password, name, role string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("email", "formato inválido")
	}
	if len(password) < MinPasswordLength {
		return nil, domain.NewValidationError("password", fmt.Sprintf("debe tener al menos %d caracteres", MinPasswordLength))
	}
	if name == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	if role != entity.RoleAdmin && role != entity.RoleUser {
		return nil, domain.NewValidationError("role", "debe ser admin o user")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
