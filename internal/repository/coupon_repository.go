package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/model"
)

// couponColumns is the column list shared by every coupon SELECT so the
// scan order stays in one place.
const couponColumns = `id, company_id, title, start_date, end_date, amount,
	type, message, price, image, created_at, updated_at`

// CouponRepo encapsulates all database queries related to coupons and
// the purchases relation.
type CouponRepo struct {
	db *sql.DB
}

// NewCouponRepo constructs a CouponRepo with the provided DB handle.
func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

// Exists reports whether a coupon row with this id is present.
func (r *CouponRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	const q = "SELECT EXISTS(SELECT 1 FROM coupons WHERE id = ?)"
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ExistsByTitle reports whether the title is already taken. Titles are
// unique across all companies.
func (r *CouponRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	const q = "SELECT EXISTS(SELECT 1 FROM coupons WHERE title = ?)"
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, title).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ExistsByIDAndCompany reports whether the coupon exists and belongs to
// the given company.
func (r *CouponRepo) ExistsByIDAndCompany(ctx context.Context, id, companyID uint64) (bool, error) {
	const q = "SELECT EXISTS(SELECT 1 FROM coupons WHERE id = ? AND company_id = ?)"
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, id, companyID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// FindByID fetches a coupon by id, or (nil, nil) when absent.
func (r *CouponRepo) FindByID(ctx context.Context, id uint64) (*model.Coupon, error) {
	const q = "SELECT " + couponColumns + " FROM coupons WHERE id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// FindByIDAndCompany fetches a coupon only when it belongs to the
// company, or (nil, nil).
func (r *CouponRepo) FindByIDAndCompany(ctx context.Context, id, companyID uint64) (*model.Coupon, error) {
	const q = "SELECT " + couponColumns + " FROM coupons WHERE id = ? AND company_id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, companyID))
}

// FindByTitleAndCompany fetches a company's coupon by title, or (nil, nil).
func (r *CouponRepo) FindByTitleAndCompany(ctx context.Context, title string, companyID uint64) (*model.Coupon, error) {
	const q = "SELECT " + couponColumns + " FROM coupons WHERE title = ? AND company_id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, q, title, companyID))
}

func (r *CouponRepo) scanOne(row *sql.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.CompanyID, &c.Title, &c.StartDate, &c.EndDate,
		&c.Amount, &c.Type, &c.Message, &c.Price, &c.Image, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponRepo) queryMany(ctx context.Context, q string, args ...any) ([]*model.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Coupon
	for rows.Next() {
		c := new(model.Coupon)
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Title, &c.StartDate, &c.EndDate,
			&c.Amount, &c.Type, &c.Message, &c.Price, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByCompany returns all of a company's coupons ordered by id.
func (r *CouponRepo) FindByCompany(ctx context.Context, companyID uint64) ([]*model.Coupon, error) {
	const q = "SELECT " + couponColumns + " FROM coupons WHERE company_id = ? ORDER BY id"
	return r.queryMany(ctx, q, companyID)
}

// FindByTypeAndCompany filters a company's coupons by category.
func (r *CouponRepo) FindByTypeAndCompany(ctx context.Context, t model.CouponType, companyID uint64) ([]*model.Coupon, error) {
	const q = "SELECT " + couponColumns + " FROM coupons WHERE company_id = ? AND type = ? ORDER BY id"
	return r.queryMany(ctx, q, companyID, t)
}

// FindByMaxPriceAndCompany filters a company's coupons by a price ceiling.
func (r *CouponRepo) FindByMaxPriceAndCompany(ctx context.Context, price float64, companyID uint64) ([]*model.Coupon, error) {
	const q = "SELECT " + couponColumns + " FROM coupons WHERE company_id = ? AND price <= ? ORDER BY id"
	return r.queryMany(ctx, q, companyID, price)
}

// FindByMaxEndDateAndCompany filters a company's coupons ending no later
// than the given moment.
func (r *CouponRepo) FindByMaxEndDateAndCompany(ctx context.Context, end time.Time, companyID uint64) ([]*model.Coupon, error) {
	const q = "SELECT " + couponColumns + " FROM coupons WHERE company_id = ? AND end_date <= ? ORDER BY id"
	return r.queryMany(ctx, q, companyID, end)
}

// FindAll returns every coupon in the system ordered by id.
func (r *CouponRepo) FindAll(ctx context.Context) ([]*model.Coupon, error) {
	const q = "SELECT " + couponColumns + " FROM coupons ORDER BY id"
	return r.queryMany(ctx, q)
}

// Save inserts the coupon when its id is zero and overwrites the stored
// row otherwise. A racing insert on the unique title surfaces as
// domain.ErrDuplicateKey.
func (r *CouponRepo) Save(ctx context.Context, c *model.Coupon) error {
	if c.ID == 0 {
		const q = `INSERT INTO coupons
		           (company_id, title, start_date, end_date, amount, type, message, price, image)
		           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := r.db.ExecContext(ctx, q, c.CompanyID, c.Title, c.StartDate, c.EndDate,
			c.Amount, c.Type, c.Message, c.Price, c.Image)
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
	const q = `INSERT INTO coupons
	           (id, company_id, title, start_date, end_date, amount, type, message, price, image)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE company_id = VALUES(company_id), title = VALUES(title),
	           start_date = VALUES(start_date), end_date = VALUES(end_date), amount = VALUES(amount),
	           type = VALUES(type), message = VALUES(message), price = VALUES(price),
	           image = VALUES(image), updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.CompanyID, c.Title, c.StartDate, c.EndDate,
		c.Amount, c.Type, c.Message, c.Price, c.Image)
	if isDuplicateEntry(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

// DeleteByIDAndCompany removes a coupon only when the company owns it,
// clearing its purchase records in the same transaction.
func (r *CouponRepo) DeleteByIDAndCompany(ctx context.Context, id, companyID uint64) error {
	return r.deleteWhere(ctx, id, companyID, true)
}

// Delete removes a coupon regardless of owner; the sweeper uses this.
func (r *CouponRepo) Delete(ctx context.Context, id uint64) error {
	return r.deleteWhere(ctx, id, 0, false)
}

func (r *CouponRepo) deleteWhere(ctx context.Context, id, companyID uint64, scoped bool) error {
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

	if _, err = tx.ExecContext(ctx, `DELETE FROM purchases WHERE coupon_id = ?`, id); err != nil {
		return err
	}
	if scoped {
		_, err = tx.ExecContext(ctx, `DELETE FROM coupons WHERE id = ? AND company_id = ?`, id, companyID)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM coupons WHERE id = ?`, id)
	}
	return err
}

// HasPurchase reports whether the customer already bought this coupon.
func (r *CouponRepo) HasPurchase(ctx context.Context, customerID, couponID uint64) (bool, error) {
	const q = "SELECT EXISTS(SELECT 1 FROM purchases WHERE customer_id = ? AND coupon_id = ?)"
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, customerID, couponID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// RecordPurchase inserts the (customer, coupon) pair and decrements the
// stock in one transaction. The unique key on the pair turns a racing
// double buy into domain.ErrAlreadyPurchased, and the guarded UPDATE
// refuses to take the amount below zero, returning domain.ErrOutOfStock
// when another buyer got the last unit first.
func (r *CouponRepo) RecordPurchase(ctx context.Context, customerID, couponID uint64) error {
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

	const ins = "INSERT INTO purchases (customer_id, coupon_id) VALUES (?, ?)"
	if _, err = tx.ExecContext(ctx, ins, customerID, couponID); err != nil {
		if isDuplicateEntry(err) {
			err = domain.ErrAlreadyPurchased
		}
		return err
	}

	const dec = "UPDATE coupons SET amount = amount - 1 WHERE id = ? AND amount > 0"
	res, execErr := tx.ExecContext(ctx, dec, couponID)
	if execErr != nil {
		err = execErr
		return err
	}
	n, affErr := res.RowsAffected()
	if affErr != nil {
		err = affErr
		return err
	}
	if n == 0 {
		err = domain.ErrOutOfStock
		return err
	}
	return nil
}

// FindPurchasedByCustomer returns the coupons a customer has bought.
func (r *CouponRepo) FindPurchasedByCustomer(ctx context.Context, customerID uint64) ([]*model.Coupon, error) {
	const q = `SELECT c.id, c.company_id, c.title, c.start_date, c.end_date, c.amount,
	           c.type, c.message, c.price, c.image, c.created_at, c.updated_at
	           FROM coupons c
	           JOIN purchases p ON p.coupon_id = c.id
	           WHERE p.customer_id = ? ORDER BY c.id`
	return r.queryMany(ctx, q, customerID)
}

// FindPurchasedByType filters a customer's purchases by category.
func (r *CouponRepo) FindPurchasedByType(ctx context.Context, customerID uint64, t model.CouponType) ([]*model.Coupon, error) {
	const q = `SELECT c.id, c.company_id, c.title, c.start_date, c.end_date, c.amount,
	           c.type, c.message, c.price, c.image, c.created_at, c.updated_at
	           FROM coupons c
	           JOIN purchases p ON p.coupon_id = c.id
	           WHERE p.customer_id = ? AND c.type = ? ORDER BY c.id`
	return r.queryMany(ctx, q, customerID, t)
}

// FindPurchasedByMaxPrice filters a customer's purchases by a price ceiling.
func (r *CouponRepo) FindPurchasedByMaxPrice(ctx context.Context, customerID uint64, price float64) ([]*model.Coupon, error) {
	const q = `SELECT c.id, c.company_id, c.title, c.start_date, c.end_date, c.amount,
	           c.type, c.message, c.price, c.image, c.created_at, c.updated_at
	           FROM coupons c
	           JOIN purchases p ON p.coupon_id = c.id
	           WHERE p.customer_id = ? AND c.price <= ? ORDER BY c.id`
	return r.queryMany(ctx, q, customerID, price)
}
