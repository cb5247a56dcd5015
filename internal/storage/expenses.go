package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fgomezproyectos/gestor-gastos/internal/models"
	"github.com/fgomezproyectos/gestor-gastos/internal/money"
)

// AddExpense inserts a new expense for owner, stamped with the current time,
// and returns the new row's id.
func (db *DB) AddExpense(ctx context.Context, owner, description string, amount money.Amount) (int64, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return 0, ErrEmptyDescription
	}

	res, err := db.conn.ExecContext(ctx,
		"INSERT INTO gastos (descripcion, amount_cents, created_at, owner) VALUES (?, ?, ?, ?)",
		description, amount.Cents(), time.Now().UTC(), owner,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListByOwner retrieves all of owner's expenses, newest first (ties by
// descending id). Rows of other owners never appear.
func (db *DB) ListByOwner(ctx context.Context, owner string) ([]models.Expense, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, descripcion, amount_cents, created_at, owner FROM gastos WHERE owner = ? ORDER BY created_at DESC, id DESC",
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var cents int64
		if err := rows.Scan(&e.ID, &e.Description, &cents, &e.CreatedAt, &e.Owner); err != nil {
			return nil, err
		}
		e.Amount = money.FromCents(cents)
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// GetExpense retrieves a single expense by id, scoped to owner. A row that
// exists but belongs to someone else is reported as ErrNotFound, same as a
// missing row.
func (db *DB) GetExpense(ctx context.Context, id int64, owner string) (*models.Expense, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, descripcion, amount_cents, created_at, owner FROM gastos WHERE id = ? AND owner = ?",
		id, owner,
	)

	var e models.Expense
	var cents int64
	if err := row.Scan(&e.ID, &e.Description, &cents, &e.CreatedAt, &e.Owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e.Amount = money.FromCents(cents)
	return &e, nil
}

// UpdateExpense overwrites description and amount of owner's expense in a
// single conditional statement. A non-nil createdAt also moves the expense's
// timestamp. Id and owner are immutable. Returns ErrNotFound when the row is
// absent or not owned.
func (db *DB) UpdateExpense(ctx context.Context, id int64, owner, description string, amount money.Amount, createdAt *time.Time) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrEmptyDescription
	}

	var ts interface{}
	if createdAt != nil {
		ts = createdAt.UTC()
	}
	res, err := db.conn.ExecContext(ctx,
		"UPDATE gastos SET descripcion = ?, amount_cents = ?, created_at = COALESCE(?, created_at) WHERE id = ? AND owner = ?",
		description, amount.Cents(), ts, id, owner,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpense removes owner's expense. Deleting a missing or non-owned id
// is a silent no-op, so the operation is idempotent.
func (db *DB) DeleteExpense(ctx context.Context, id int64, owner string) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM gastos WHERE id = ? AND owner = ?",
		id, owner,
	)
	return err
}

// TotalFor sums owner's expenses in exact cents; zero for an empty ledger.
func (db *DB) TotalFor(ctx context.Context, owner string) (money.Amount, error) {
	var cents int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM gastos WHERE owner = ?",
		owner,
	).Scan(&cents)
	if err != nil {
		return 0, err
	}
	return money.FromCents(cents), nil
}
