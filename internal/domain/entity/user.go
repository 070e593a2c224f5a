package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User representa un usuario del storefront (cliente o administrador de inventario).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, customer
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
