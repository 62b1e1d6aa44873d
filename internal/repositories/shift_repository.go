package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Error
	"github.com/shopspring/decimal"
)

// ShiftRepository defines the interface for cash-drawer shift database operations.
type ShiftRepository interface {
	CreateShift(executor SQLExecutor, shift *models.Shift) error
	GetShiftByID(shiftID uuid.UUID) (*models.Shift, error)
	FindOpenShift(drawerScope string) (*models.Shift, error)
	AddMovement(executor SQLExecutor, movement *models.CashMovement) error
	// RecordCashSale credits a finalized session's cash amount to the shift.
	// The dedup row and the running total commit together, and the
	// (session_id) unique constraint makes a retried credit return
	// ErrDuplicateKey instead of double-counting.
	RecordCashSale(shiftID uuid.UUID, sessionID uuid.UUID, amount decimal.Decimal) error
	CloseShift(executor SQLExecutor, shift *models.Shift) error
}

type shiftRepository struct {
	db *sql.DB
}

// NewShiftRepository creates a new instance of ShiftRepository.
func NewShiftRepository(db *sql.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) CreateShift(executor SQLExecutor, shift *models.Shift) error {
	query := `INSERT INTO shifts
	            (id, drawer_scope, opened_by, start_cash, cash_sales_total, status, notes, opened_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	if shift.OpenedAt.IsZero() {
		shift.OpenedAt = time.Now()
	}

	_, err := executor.Exec(query,
		shift.ID, shift.DrawerScope, shift.OpenedBy, shift.StartCash,
		shift.CashSalesTotal, string(shift.Status), shift.Notes, shift.OpenedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			// The partial unique index on (drawer_scope) WHERE status = 'open'
			// backs the one-open-shift-per-drawer invariant.
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: creating shift: %v", ErrDatabaseError, err)
	}
	return nil
}

const shiftColumns = `id, drawer_scope, opened_by, closed_by, start_cash, cash_sales_total,
	end_cash_counted, over_short, status, notes, opened_at, closed_at`

func (r *shiftRepository) GetShiftByID(shiftID uuid.UUID) (*models.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`
	shift, err := scanShift(r.db.QueryRow(query, shiftID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting shift by ID %s: %v", ErrDatabaseError, shiftID, err)
	}
	if err := r.loadMovements(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

func (r *shiftRepository) FindOpenShift(drawerScope string) (*models.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE drawer_scope = $1 AND status = 'open'`
	shift, err := scanShift(r.db.QueryRow(query, drawerScope))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding open shift for drawer %q: %v", ErrDatabaseError, drawerScope, err)
	}
	if err := r.loadMovements(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

func (r *shiftRepository) AddMovement(executor SQLExecutor, movement *models.CashMovement) error {
	query := `INSERT INTO shift_movements (id, shift_id, movement_type, direction, amount, reason, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}

	_, err := executor.Exec(query,
		movement.ID, movement.ShiftID, string(movement.Type), string(movement.Direction),
		movement.Amount, movement.Reason, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: adding movement to shift %s: %v", ErrDatabaseError, movement.ShiftID, err)
	}
	return nil
}

// RecordCashSale inserts the per-session dedup row and bumps the shift's
// running total in one transaction. A failed increment rolls the dedup row
// back with it, so a retry can still credit the sale; only a committed credit
// ever surfaces as ErrDuplicateKey.
func (r *shiftRepository) RecordCashSale(shiftID uuid.UUID, sessionID uuid.UUID, amount decimal.Decimal) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: beginning cash sale transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO shift_cash_sales (id, shift_id, session_id, amount, created_at)
	           VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.Exec(insert, uuid.New(), shiftID, sessionID, amount, time.Now()); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: cash sale for session %s already recorded", ErrDuplicateKey, sessionID)
		}
		return fmt.Errorf("%w: recording cash sale on shift %s: %v", ErrDatabaseError, shiftID, err)
	}

	update := `UPDATE shifts SET cash_sales_total = cash_sales_total + $2 WHERE id = $1 AND status = 'open'`
	result, err := tx.Exec(update, shiftID, amount)
	if err != nil {
		return fmt.Errorf("%w: updating cash sales total on shift %s: %v", ErrDatabaseError, shiftID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking cash sales update: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		// Shift gone or closed since the lookup; the rollback discards the
		// dedup row too.
		return ErrNotFound
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing cash sale on shift %s: %v", ErrDatabaseError, shiftID, err)
	}
	return nil
}

func (r *shiftRepository) CloseShift(executor SQLExecutor, shift *models.Shift) error {
	query := `UPDATE shifts
	          SET status = $2, closed_by = $3, end_cash_counted = $4, over_short = $5, closed_at = $6
	          WHERE id = $1 AND status = 'open'`
	result, err := executor.Exec(query,
		shift.ID, string(shift.Status), shift.ClosedBy,
		shift.EndCashCounted, shift.OverShort, shift.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: closing shift %s: %v", ErrDatabaseError, shift.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking shift close result: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		// Either the shift does not exist or a concurrent close won the
		// WHERE status = 'open' race.
		return ErrNotFound
	}
	return nil
}

func (r *shiftRepository) loadMovements(shift *models.Shift) error {
	query := `SELECT id, shift_id, movement_type, direction, amount, reason, created_at
	          FROM shift_movements
	          WHERE shift_id = $1
	          ORDER BY created_at, id`
	rows, err := r.db.Query(query, shift.ID)
	if err != nil {
		return fmt.Errorf("%w: loading movements for shift %s: %v", ErrDatabaseError, shift.ID, err)
	}
	defer rows.Close()

	shift.Movements = []models.CashMovement{}
	for rows.Next() {
		m := models.CashMovement{}
		var movementType, direction string
		if err := rows.Scan(&m.ID, &m.ShiftID, &movementType, &direction, &m.Amount, &m.Reason, &m.CreatedAt); err != nil {
			return fmt.Errorf("%w: scanning movement row: %v", ErrDatabaseError, err)
		}
		m.Type = models.MovementType(movementType)
		m.Direction = models.MovementDirection(direction)
		shift.Movements = append(shift.Movements, m)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating movement rows: %v", ErrDatabaseError, err)
	}
	return nil
}

func scanShift(row rowScanner) (*models.Shift, error) {
	shift := &models.Shift{}
	var status string
	var endCash, overShort decimal.NullDecimal
	err := row.Scan(
		&shift.ID, &shift.DrawerScope, &shift.OpenedBy, &shift.ClosedBy,
		&shift.StartCash, &shift.CashSalesTotal, &endCash,
		&overShort, &status, &shift.Notes, &shift.OpenedAt, &shift.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	shift.Status = models.ShiftStatus(status)
	if endCash.Valid {
		shift.EndCashCounted = &endCash.Decimal
	}
	if overShort.Valid {
		shift.OverShort = &overShort.Decimal
	}
	return shift, nil
}
