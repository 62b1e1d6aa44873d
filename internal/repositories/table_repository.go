package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/google/uuid"
)

// TableRepository defines the interface for billiard-table database operations.
type TableRepository interface {
	GetTableByID(tableID uuid.UUID) (*models.BilliardTable, error)
	GetTables() ([]models.BilliardTable, error)
	SetTableStatus(executor SQLExecutor, tableID uuid.UUID, status models.TableStatus) error
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) GetTableByID(tableID uuid.UUID) (*models.BilliardTable, error) {
	table := &models.BilliardTable{}
	var status string
	query := `SELECT id, name, description, status, tariff_id, created_at, updated_at
	          FROM billiard_tables
	          WHERE id = $1`
	err := r.db.QueryRow(query, tableID).Scan(
		&table.ID, &table.Name, &table.Description, &status,
		&table.TariffID, &table.CreatedAt, &table.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting table by ID %s: %v", ErrDatabaseError, tableID, err)
	}
	table.Status = models.TableStatus(status)
	return table, nil
}

func (r *tableRepository) GetTables() ([]models.BilliardTable, error) {
	query := `SELECT id, name, description, status, tariff_id, created_at, updated_at
	          FROM billiard_tables
	          ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tables: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	tables := []models.BilliardTable{}
	for rows.Next() {
		table := models.BilliardTable{}
		var status string
		if err := rows.Scan(
			&table.ID, &table.Name, &table.Description, &status,
			&table.TariffID, &table.CreatedAt, &table.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning table row: %v", ErrDatabaseError, err)
		}
		table.Status = models.TableStatus(status)
		tables = append(tables, table)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating table rows: %v", ErrDatabaseError, err)
	}
	return tables, nil
}

func (r *tableRepository) SetTableStatus(executor SQLExecutor, tableID uuid.UUID, status models.TableStatus) error {
	result, err := executor.Exec(
		`UPDATE billiard_tables SET status = $2, updated_at = $3 WHERE id = $1`,
		tableID, string(status), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("%w: setting status for table %s: %v", ErrDatabaseError, tableID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking table status update: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
