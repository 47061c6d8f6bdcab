package repository

import (
	"context"
	"encoding/json"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Insert(ctx context.Context, entry *model.AuditLog) error {
	meta, err := json.Marshal(entry.Metadata)
	if err != nil {
		return errors.Wrap(err, "marshal audit metadata")
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, actor_id, actor_email, action, entity, entity_id, metadata, ip, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.ActorID, entry.ActorEmail, entry.Action, entry.Entity,
		entry.EntityID, meta, entry.IP, entry.CreatedAt)
	return errors.Wrap(err, "insert audit log")
}

func (r *PGRepository) FindAll(ctx context.Context, limit int) ([]model.AuditLog, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, actor_id, actor_email, action, entity, entity_id, metadata, ip, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list audit logs")
	}
	defer rows.Close()

	items := []model.AuditLog{}
	for rows.Next() {
		var entry model.AuditLog
		var meta []byte
		err := rows.Scan(&entry.ID, &entry.ActorID, &entry.ActorEmail, &entry.Action,
			&entry.Entity, &entry.EntityID, &meta, &entry.IP, &entry.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan audit log")
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &entry.Metadata); err != nil {
				return nil, errors.Wrap(err, "unmarshal audit metadata")
			}
		}
		items = append(items, entry)
	}
	return items, errors.Wrap(rows.Err(), "list audit logs")
}
