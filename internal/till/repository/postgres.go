package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/till"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const pgUniqueViolation = "23505"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// methodColumn maps a payment method to its totals column. The enum is fixed,
// so this is the only place a method name touches SQL.
func methodColumn(m model.PaymentMethod) (string, error) {
	switch m {
	case model.MethodCash:
		return "total_cash", nil
	case model.MethodTransfer:
		return "total_transfer", nil
	case model.MethodQR:
		return "total_qr", nil
	case model.MethodKey:
		return "total_key", nil
	case model.MethodVoucher:
		return "total_voucher", nil
	case model.MethodDebit:
		return "total_debit", nil
	case model.MethodCredit:
		return "total_credit", nil
	}
	return "", errors.Errorf("unknown payment method %q", m)
}

const tillColumns = `
	id, opened_by, opening_balance, status, opened_at, created_at, updated_at,
	total_cash, total_transfer, total_qr, total_key, total_voucher, total_debit, total_credit
`

func scanTill(row interface {
	Scan(dest ...interface{}) error
}) (*model.Till, error) {
	var t model.Till
	err := row.Scan(
		&t.ID, &t.OpenedBy, &t.OpeningBalance, &t.Status, &t.OpenedAt,
		&t.CreatedAt, &t.UpdatedAt,
		&t.Totals.Cash, &t.Totals.Transfer, &t.Totals.QR, &t.Totals.Key,
		&t.Totals.Voucher, &t.Totals.Debit, &t.Totals.Credit,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) Create(ctx context.Context, t *model.Till) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tills (
			id, opened_by, opening_balance, status, opened_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.OpenedBy, t.OpeningBalance, t.Status, t.OpenedAt, t.CreatedAt, t.UpdatedAt)
	return errors.Wrap(err, "create till")
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Till, error) {
	row := r.DB.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM tills WHERE id = $1`, tillColumns), id)

	t, err := scanTill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find till")
	}
	return t, nil
}

func (r *PGRepository) FindAll(ctx context.Context, limit int) ([]model.Till, error) {
	rows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM tills ORDER BY created_at DESC LIMIT $1`, tillColumns), limit)
	if err != nil {
		return nil, errors.Wrap(err, "list tills")
	}
	defer rows.Close()

	items := []model.Till{}
	for rows.Next() {
		t, err := scanTill(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan till")
		}
		items = append(items, *t)
	}
	return items, errors.Wrap(rows.Err(), "list tills")
}

func (r *PGRepository) AddToMethodTotal(ctx context.Context, tillID string, method model.PaymentMethod, amount float64) (bool, error) {
	col, err := methodColumn(method)
	if err != nil {
		return false, err
	}

	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`
		UPDATE tills
		SET %s = %s + $1, updated_at = NOW()
		WHERE id = $2 AND status = 'open'
	`, col, col), amount, tillID)
	if err != nil {
		return false, errors.Wrap(err, "add to method total")
	}
	return rowsAffected(res)
}

func (r *PGRepository) SetMethodTotal(ctx context.Context, tillID string, method model.PaymentMethod, value float64) (bool, error) {
	col, err := methodColumn(method)
	if err != nil {
		return false, err
	}

	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`
		UPDATE tills
		SET %s = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'open'
	`, col), value, tillID)
	if err != nil {
		return false, errors.Wrap(err, "set method total")
	}
	return rowsAffected(res)
}

func (r *PGRepository) Close(ctx context.Context, tillID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tills SET status = 'closed', updated_at = NOW()
		WHERE id = $1 AND status = 'open'
	`, tillID)
	if err != nil {
		return false, errors.Wrap(err, "close till")
	}
	return rowsAffected(res)
}

func (r *PGRepository) Reopen(ctx context.Context, tillID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tills SET status = 'open', updated_at = NOW()
		WHERE id = $1 AND status = 'closed'
	`, tillID)
	if err != nil {
		return false, errors.Wrap(err, "reopen till")
	}
	return rowsAffected(res)
}

func (r *PGRepository) CreateClosure(ctx context.Context, c *model.TillClosure) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO till_closures (
			id, till_id, counted_total, counted_cash, system_total, difference,
			observations, approved_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.TillID, c.CountedTotal, c.CountedCash, c.SystemTotal, c.Difference,
		c.Observations, c.ApprovedBy, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return till.ErrClosureExists
		}
		return errors.Wrap(err, "create closure")
	}
	return nil
}

func (r *PGRepository) FindClosureByTill(ctx context.Context, tillID string) (*model.TillClosure, error) {
	var c model.TillClosure
	err := r.DB.GetContext(ctx, &c, `
		SELECT id, till_id, counted_total, counted_cash, system_total, difference,
		       observations, approved_by, created_at, updated_at
		FROM till_closures WHERE till_id = $1
	`, tillID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find closure")
	}
	return &c, nil
}

func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n > 0, nil
}
