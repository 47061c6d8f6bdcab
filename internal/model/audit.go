package model

import "time"

type AuditLog struct {
	ID         string                 `db:"id" json:"id"`
	ActorID    *string                `db:"actor_id" json:"actor_id"`
	ActorEmail string                 `db:"actor_email" json:"actor_email"`
	Action     string                 `db:"action" json:"action"`
	Entity     string                 `db:"entity" json:"entity"`
	EntityID   string                 `db:"entity_id" json:"entity_id"`
	Metadata   map[string]interface{} `db:"-" json:"metadata"`
	IP         string                 `db:"ip" json:"ip"`
	CreatedAt  time.Time              `db:"created_at" json:"created_at"`
}
