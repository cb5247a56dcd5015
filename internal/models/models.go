package models

import (
	"time"

	"github.com/fgomezproyectos/gestor-gastos/internal/money"
)

// Expense is one ledger row. Owner is the username of the only user allowed
// to see or modify it.
type Expense struct {
	ID          int64        `json:"id"`
	Description string       `json:"descripcion"`
	Amount      money.Amount `json:"monto"`
	CreatedAt   time.Time    `json:"fecha_creacion"`
	Owner       string       `json:"-"`
}

// User is a registered account.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
