package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/disdik-dki/anjab-api/internal/models"
)

// ErrPendingExists signals the one-open-proposal-per-record invariant.
var ErrPendingExists = errors.New("pending change request already exists for employee")

const changeRequestColumns = `id, employee_id, requested_by, changes, status, admin_note, is_read, created_at, processed_at`

// ChangeRequestRepository persists edit proposals and their decisions.
type ChangeRequestRepository struct {
	db *sqlx.DB
}

// NewChangeRequestRepository constructs the repository.
func NewChangeRequestRepository(db *sqlx.DB) *ChangeRequestRepository {
	return &ChangeRequestRepository{db: db}
}

// CreatePending inserts a new PENDING request. The insert itself guards
// the one-pending invariant with NOT EXISTS, and the partial unique
// index on (employee_id) WHERE status='PENDING' closes the remaining
// race at the database; both paths surface as ErrPendingExists.
func (r *ChangeRequestRepository) CreatePending(ctx context.Context, request *models.ChangeRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	request.Status = models.ChangeRequestPending
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO change_requests (id, employee_id, requested_by, changes, status, is_read, created_at)
	SELECT $1, $2, $3, $4, 'PENDING', FALSE, $5
	WHERE NOT EXISTS (
		SELECT 1 FROM change_requests WHERE employee_id = $2 AND status = 'PENDING'
	)`
	result, err := r.db.ExecContext(ctx, query,
		request.ID, request.EmployeeID, request.RequestedBy, request.Changes, request.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPendingExists
		}
		return fmt.Errorf("create change request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check change request insert rows: %w", err)
	}
	if rows == 0 {
		return ErrPendingExists
	}
	return nil
}

// GetByID fetches a change request by identifier.
func (r *ChangeRequestRepository) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM change_requests WHERE id = $1", changeRequestColumns)
	var request models.ChangeRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListPending returns all open requests joined with requester and
// target names.
func (r *ChangeRequestRepository) ListPending(ctx context.Context) ([]models.PendingChangeRequest, error) {
	const query = `SELECT r.id, r.employee_id, r.created_at, u.full_name AS requester_name, e.nama_pegawai
	FROM change_requests r
	JOIN users u ON r.requested_by = u.id
	JOIN employees e ON r.employee_id = e.id
	WHERE r.status = 'PENDING'`
	var requests []models.PendingChangeRequest
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list pending change requests: %w", err)
	}
	return requests, nil
}

// DecideParams groups everything a review decision writes in one
// transaction.
type DecideParams struct {
	RequestID  string
	EmployeeID string
	Status     models.ChangeRequestStatus
	AdminNote  *string
	// Clean is the re-sanitized payload applied to the employee on
	// approval; empty means the decision closes without touching the
	// record.
	Clean map[string]interface{}
	Log   *models.ActivityLog
}

// Decide applies the decision atomically: the optional partial employee
// update, the guarded status transition, and the activity log entry all
// commit together or not at all. Returns sql.ErrNoRows when the request
// was already decided by someone else.
func (r *ChangeRequestRepository) Decide(ctx context.Context, params DecideParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decide tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if params.Status == models.ChangeRequestApproved && len(params.Clean) > 0 {
		cols := sortedWhitelistedColumns(params.Clean)
		setParts := make([]string, 0, len(cols)+1)
		args := make([]interface{}, 0, len(cols)+1)
		for _, col := range cols {
			args = append(args, params.Clean[col])
			setParts = append(setParts, fmt.Sprintf("%s = $%d", col, len(args)))
		}
		setParts = append(setParts, "updated_at = NOW()")
		query := fmt.Sprintf("UPDATE employees SET %s WHERE id = $%d", strings.Join(setParts, ", "), len(args)+1)
		args = append(args, params.EmployeeID)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("apply approved changes: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE change_requests SET status = $1, admin_note = $2, processed_at = NOW() WHERE id = $3 AND status = 'PENDING'`,
		params.Status, params.AdminNote, params.RequestID)
	if err != nil {
		return fmt.Errorf("update change request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check change request update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if params.Log != nil {
		if err := insertActivityLogTx(ctx, tx, params.Log); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decide tx: %w", err)
	}
	return nil
}

// HistoryRow is one request joined with its requester for the timeline.
type HistoryRow struct {
	ID            string                     `db:"id"`
	CreatedAt     time.Time                  `db:"created_at"`
	ProcessedAt   *time.Time                 `db:"processed_at"`
	Status        models.ChangeRequestStatus `db:"status"`
	AdminNote     *string                    `db:"admin_note"`
	RequesterName *string                    `db:"requester_name"`
}

// History lists all requests ever filed against a record, newest first.
func (r *ChangeRequestRepository) History(ctx context.Context, employeeID string) ([]HistoryRow, error) {
	const query = `SELECT r.id, r.created_at, r.processed_at, r.status, r.admin_note, u.full_name AS requester_name
	FROM change_requests r
	LEFT JOIN users u ON r.requested_by = u.id
	WHERE r.employee_id = $1
	ORDER BY r.created_at DESC`
	var rows []HistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, employeeID); err != nil {
		return nil, fmt.Errorf("list change request history: %w", err)
	}
	return rows, nil
}

// MarkRead flags the proposer's decided requests as seen.
func (r *ChangeRequestRepository) MarkRead(ctx context.Context, employeeID, userID string) error {
	const query = `UPDATE change_requests SET is_read = TRUE
	WHERE employee_id = $1 AND requested_by = $2 AND status IN ('APPROVED', 'REJECTED')`
	if _, err := r.db.ExecContext(ctx, query, employeeID, userID); err != nil {
		return fmt.Errorf("mark change requests read: %w", err)
	}
	return nil
}

// CountPending returns the number of open requests across all records.
func (r *ChangeRequestRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM change_requests WHERE status = 'PENDING'"); err != nil {
		return 0, fmt.Errorf("count pending change requests: %w", err)
	}
	return count, nil
}

// CountUnread returns the user's decided-but-unseen requests.
func (r *ChangeRequestRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM change_requests WHERE requested_by = $1 AND status IN ('APPROVED', 'REJECTED') AND is_read = FALSE",
		userID); err != nil {
		return 0, fmt.Errorf("count unread change requests: %w", err)
	}
	return count, nil
}
