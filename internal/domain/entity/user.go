package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User cuenta de la tienda (clave user:<id>, índice user-email:<email>).
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`         // admin, user
	PasswordHash string    `json:"passwordHash"` // bcrypt; nunca sale por HTTP
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin indica si el usuario tiene rol administrador.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
