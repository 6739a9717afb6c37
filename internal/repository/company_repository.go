package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/model"
)

// CompanyRepo encapsulates all database queries related to companies.
// It depends on a sql.DB connection which is configured at startup.
type CompanyRepo struct {
	db *sql.DB
}

// NewCompanyRepo constructs a CompanyRepo with the provided DB handle,
// allowing injection of the database in tests and at startup.
func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// Exists reports whether a company row with this id is present.
func (r *CompanyRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	const q = "SELECT EXISTS(SELECT 1 FROM companies WHERE id = ?)"
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ExistsByName reports whether the natural key is already taken.
func (r *CompanyRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	const q = "SELECT EXISTS(SELECT 1 FROM companies WHERE name = ?)"
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// FindByID fetches a company by id, or (nil, nil) when absent.
func (r *CompanyRepo) FindByID(ctx context.Context, id uint64) (*model.Company, error) {
	const q = `SELECT id, name, password_hash, email, created_at, updated_at
	           FROM companies WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// FindByName fetches a company by its unique name, or (nil, nil).
func (r *CompanyRepo) FindByName(ctx context.Context, name string) (*model.Company, error) {
	const q = `SELECT id, name, password_hash, email, created_at, updated_at
	           FROM companies WHERE name = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, name))
}

func (r *CompanyRepo) scanOne(row *sql.Row) (*model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.PasswordHash, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAll returns every company ordered by id.
func (r *CompanyRepo) FindAll(ctx context.Context) ([]*model.Company, error) {
	const q = `SELECT id, name, password_hash, email, created_at, updated_at
	           FROM companies ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Company
	for rows.Next() {
		c := new(model.Company)
		if err := rows.Scan(&c.ID, &c.Name, &c.PasswordHash, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save inserts the company when its id is zero (populating the id from
// the auto-increment) and overwrites the stored row otherwise. A racing
// insert on the unique name surfaces as domain.ErrDuplicateKey.
func (r *CompanyRepo) Save(ctx context.Context, c *model.Company) error {
	if c.ID == 0 {
		const q = "INSERT INTO companies (name, password_hash, email) VALUES (?, ?, ?)"
		res, err := r.db.ExecContext(ctx, q, c.Name, c.PasswordHash, c.Email)
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
	const q = `INSERT INTO companies (id, name, password_hash, email) VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE name = VALUES(name), password_hash = VALUES(password_hash),
	           email = VALUES(email), updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.PasswordHash, c.Email)
	if isDuplicateEntry(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

// Delete removes a company together with its coupons and their
// purchase records. The deletion occurs within a transaction to
// maintain integrity.
func (r *CompanyRepo) Delete(ctx context.Context, id uint64) error {
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

	if _, err = tx.ExecContext(ctx,
		`DELETE p FROM purchases p
		 JOIN coupons c ON c.id = p.coupon_id
		 WHERE c.company_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM coupons WHERE company_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
