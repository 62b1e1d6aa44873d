package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Error
)

// SessionRepository defines the interface for table-session database operations.
// The tariff a session was started with is stored as a snapshot alongside the
// session row, so later tariff edits never reprice a running session.
type SessionRepository interface {
	CreateSession(executor SQLExecutor, session *models.TableSession) error
	GetSessionByID(sessionID uuid.UUID) (*models.TableSession, error)
	UpdateSession(executor SQLExecutor, session *models.TableSession) error
	FindActiveSessionForTable(tableID uuid.UUID) (*models.TableSession, error)
	GetSessionsForTable(tableID uuid.UUID, limit int) ([]models.TableSession, error)
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, table_id, tariff_id, member_id, start_time, end_time, status,
	pause_start_time, total_paused_time, free_minutes_used, paid_minutes,
	total_amount, discount_amount, tariff_snapshot, created_at, updated_at`

func (r *sessionRepository) CreateSession(executor SQLExecutor, session *models.TableSession) error {
	query := `INSERT INTO table_sessions (` + sessionColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	snapshot, err := json.Marshal(session.Tariff)
	if err != nil {
		return fmt.Errorf("%w: marshaling tariff snapshot: %v", ErrDatabaseError, err)
	}

	_, err = executor.Exec(query,
		session.ID, session.TableID, session.TariffID, session.MemberID,
		session.StartTime, session.EndTime, string(session.Status),
		session.PauseStartTime, session.TotalPausedTime, session.FreeMinutesUsed,
		session.PaidMinutes, session.TotalAmount, session.DiscountAmount,
		snapshot, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			// The partial unique index on (table_id) WHERE status <> 'ended'
			// backs the one-live-session-per-table invariant.
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: creating session: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *sessionRepository) GetSessionByID(sessionID uuid.UUID) (*models.TableSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM table_sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRow(query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting session by ID %s: %v", ErrDatabaseError, sessionID, err)
	}
	return session, nil
}

func (r *sessionRepository) UpdateSession(executor SQLExecutor, session *models.TableSession) error {
	query := `UPDATE table_sessions
	          SET end_time = $2, status = $3, pause_start_time = $4, total_paused_time = $5,
	              free_minutes_used = $6, paid_minutes = $7, total_amount = $8,
	              discount_amount = $9, updated_at = $10
	          WHERE id = $1`

	session.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		session.ID, session.EndTime, string(session.Status), session.PauseStartTime,
		session.TotalPausedTime, session.FreeMinutesUsed, session.PaidMinutes,
		session.TotalAmount, session.DiscountAmount, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: updating session %s: %v", ErrDatabaseError, session.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking update result: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindActiveSessionForTable returns the single non-ended session for a table,
// or ErrNotFound when the table is free.
func (r *sessionRepository) FindActiveSessionForTable(tableID uuid.UUID) (*models.TableSession, error) {
	query := `SELECT ` + sessionColumns + `
	          FROM table_sessions
	          WHERE table_id = $1 AND status IN ('active', 'paused')`
	session, err := scanSession(r.db.QueryRow(query, tableID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding active session for table %s: %v", ErrDatabaseError, tableID, err)
	}
	return session, nil
}

func (r *sessionRepository) GetSessionsForTable(tableID uuid.UUID, limit int) ([]models.TableSession, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + sessionColumns + `
	          FROM table_sessions
	          WHERE table_id = $1
	          ORDER BY start_time DESC
	          LIMIT $2`
	rows, err := r.db.Query(query, tableID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing sessions for table %s: %v", ErrDatabaseError, tableID, err)
	}
	defer rows.Close()

	sessions := []models.TableSession{}
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: scanning session row: %v", ErrDatabaseError, scanErr)
		}
		sessions = append(sessions, *session)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating session rows: %v", ErrDatabaseError, err)
	}
	return sessions, nil
}

func scanSession(row rowScanner) (*models.TableSession, error) {
	session := &models.TableSession{}
	var status string
	var snapshot []byte

	err := row.Scan(
		&session.ID, &session.TableID, &session.TariffID, &session.MemberID,
		&session.StartTime, &session.EndTime, &status,
		&session.PauseStartTime, &session.TotalPausedTime, &session.FreeMinutesUsed,
		&session.PaidMinutes, &session.TotalAmount, &session.DiscountAmount,
		&snapshot, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.Status = models.SessionStatus(status)
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &session.Tariff); err != nil {
			return nil, fmt.Errorf("unmarshaling tariff snapshot: %w", err)
		}
	}
	return session, nil
}
