package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/model"
)

// CustomerRepo encapsulates all database queries related to customers.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo constructs a CustomerRepo with the provided DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// Exists reports whether a customer row with this id is present.
func (r *CustomerRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	const q = "SELECT EXISTS(SELECT 1 FROM customers WHERE id = ?)"
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ExistsByName reports whether the natural key is already taken.
func (r *CustomerRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	const q = "SELECT EXISTS(SELECT 1 FROM customers WHERE name = ?)"
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// FindByID fetches a customer by id, or (nil, nil) when absent.
func (r *CustomerRepo) FindByID(ctx context.Context, id uint64) (*model.Customer, error) {
	const q = `SELECT id, name, password_hash, created_at, updated_at
	           FROM customers WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// FindByName fetches a customer by its unique name, or (nil, nil).
func (r *CustomerRepo) FindByName(ctx context.Context, name string) (*model.Customer, error) {
	const q = `SELECT id, name, password_hash, created_at, updated_at
	           FROM customers WHERE name = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, name))
}

func (r *CustomerRepo) scanOne(row *sql.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAll returns every customer ordered by id.
func (r *CustomerRepo) FindAll(ctx context.Context) ([]*model.Customer, error) {
	const q = `SELECT id, name, password_hash, created_at, updated_at
	           FROM customers ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Customer
	for rows.Next() {
		c := new(model.Customer)
		if err := rows.Scan(&c.ID, &c.Name, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save inserts the customer when its id is zero and overwrites the
// stored row otherwise.
func (r *CustomerRepo) Save(ctx context.Context, c *model.Customer) error {
	if c.ID == 0 {
		const q = "INSERT INTO customers (name, password_hash) VALUES (?, ?)"
		res, err := r.db.ExecContext(ctx, q, c.Name, c.PasswordHash)
		if isDuplicateEntry(err) {
			return domain.ErrDuplicateKey
		}
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		c.ID = uint64(id)
		return nil
	}
	const q = `INSERT INTO customers (id, name, password_hash) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE name = VALUES(name), password_hash = VALUES(password_hash),
	           updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.PasswordHash)
	if isDuplicateEntry(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

// Delete removes a customer and their purchase records in one
// transaction. The purchased coupons themselves are untouched.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM purchases WHERE customer_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
