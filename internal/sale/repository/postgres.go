package repository

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/sale/dto"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const listLimit = 200

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, s *model.Sale) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sales (
			id, till_id, method, total, items, status, note, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.TillID, s.Method, s.Total, s.Items, s.Status, s.Note, s.CreatedAt, s.UpdatedAt)
	return errors.Wrap(err, "create sale")
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Sale, error) {
	var s model.Sale
	err := r.DB.GetContext(ctx, &s, `
		SELECT id, till_id, method, total, items, status, note, created_at, updated_at
		FROM sales WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find sale")
	}
	return &s, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	return errors.Wrap(err, "delete sale")
}

// MarkVoided is the double-void guard: the status predicate makes the flip
// first-writer-wins.
func (r *PGRepository) MarkVoided(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE sales SET status = 'voided', updated_at = NOW()
		WHERE id = $1 AND status = 'completed'
	`, id)
	if err != nil {
		return false, errors.Wrap(err, "mark sale voided")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "mark sale voided rows affected")
	}
	return n > 0, nil
}

func (r *PGRepository) FindAll(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, error) {
	query := `
		SELECT id, till_id, method, total, items, status, note, created_at, updated_at
		FROM sales
	`
	conditions := []string{}
	args := []interface{}{}

	if filters.TillID != "" {
		args = append(args, filters.TillID)
		conditions = append(conditions, "till_id = $1")
	}

	switch filters.Status {
	case dto.StatusFilterAll:
		// no status filter
	case dto.StatusFilterVoided:
		conditions = append(conditions, "status = 'voided'")
	default:
		conditions = append(conditions, "status = 'completed'")
	}

	if len(conditions) > 0 {
		query += " WHERE " + conditions[0]
		for _, c := range conditions[1:] {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC LIMIT " + strconv.Itoa(listLimit)

	items := []model.Sale{}
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	return items, nil
}
