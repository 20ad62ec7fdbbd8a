package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/disdik-dki/anjab-api/internal/models"
)

// ActivityRepository appends to and reads the audit trail. The table is
// append-only; there is no update or delete path.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends one audit entry.
func (r *ActivityRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	prepareActivityLog(entry)
	const query = `INSERT INTO activity_logs (id, user_id, action, description, ip_address, user_agent, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.Description,
		entry.IPAddress, entry.UserAgent, entry.CreatedAt); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries joined with actor identity.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	const query = `SELECT l.id, l.user_id, l.action, l.description, l.ip_address, l.user_agent, l.created_at,
		u.username, u.role
	FROM activity_logs l
	LEFT JOIN users u ON l.user_id = u.id
	ORDER BY l.created_at DESC
	LIMIT $1`
	var entries []models.ActivityLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return entries, nil
}

func prepareActivityLog(entry *models.ActivityLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}

func insertActivityLogTx(ctx context.Context, tx *sqlx.Tx, entry *models.ActivityLog) error {
	prepareActivityLog(entry)
	const query = `INSERT INTO activity_logs (id, user_id, action, description, ip_address, user_agent, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.Description,
		entry.IPAddress, entry.UserAgent, entry.CreatedAt); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}
