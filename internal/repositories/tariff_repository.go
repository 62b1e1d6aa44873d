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

// TariffRepository defines the interface for tariff-related database operations.
type TariffRepository interface {
	CreateTariff(executor SQLExecutor, tariff *models.Tariff) error
	GetTariffByID(tariffID uuid.UUID) (*models.Tariff, error)
	GetTariffs(onlyActive bool) ([]models.Tariff, error)
	DeactivateTariff(executor SQLExecutor, tariffID uuid.UUID) error
}

type tariffRepository struct {
	db *sql.DB
}

// NewTariffRepository creates a new instance of TariffRepository.
func NewTariffRepository(db *sql.DB) TariffRepository {
	return &tariffRepository{db: db}
}

func (r *tariffRepository) CreateTariff(executor SQLExecutor, tariff *models.Tariff) error {
	query := `INSERT INTO tariffs
	            (id, name, description, rate, rate_type, free_minutes, tiered_rates,
	             min_duration, max_duration, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if tariff.ID == uuid.Nil {
		tariff.ID = uuid.New()
	}
	now := time.Now()
	if tariff.CreatedAt.IsZero() {
		tariff.CreatedAt = now
	}
	tariff.UpdatedAt = now

	tiersJSON, err := json.Marshal(tariff.TieredRates)
	if err != nil {
		return fmt.Errorf("%w: marshaling tiered rates: %v", ErrDatabaseError, err)
	}

	_, err = executor.Exec(query,
		tariff.ID, tariff.Name, tariff.Description, tariff.Rate, string(tariff.RateType),
		tariff.FreeMinutes, tiersJSON, tariff.MinDuration, tariff.MaxDuration,
		tariff.IsActive, tariff.CreatedAt, tariff.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: creating tariff: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *tariffRepository) GetTariffByID(tariffID uuid.UUID) (*models.Tariff, error) {
	query := `SELECT id, name, description, rate, rate_type, free_minutes, tiered_rates,
	                 min_duration, max_duration, is_active, created_at, updated_at
	          FROM tariffs
	          WHERE id = $1`
	tariff, err := scanTariff(r.db.QueryRow(query, tariffID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting tariff by ID %s: %v", ErrDatabaseError, tariffID, err)
	}
	return tariff, nil
}

func (r *tariffRepository) GetTariffs(onlyActive bool) ([]models.Tariff, error) {
	query := `SELECT id, name, description, rate, rate_type, free_minutes, tiered_rates,
	                 min_duration, max_duration, is_active, created_at, updated_at
	          FROM tariffs`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tariffs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	tariffs := []models.Tariff{}
	for rows.Next() {
		tariff, scanErr := scanTariff(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: scanning tariff row: %v", ErrDatabaseError, scanErr)
		}
		tariffs = append(tariffs, *tariff)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating tariff rows: %v", ErrDatabaseError, err)
	}
	return tariffs, nil
}

func (r *tariffRepository) DeactivateTariff(executor SQLExecutor, tariffID uuid.UUID) error {
	result, err := executor.Exec(`UPDATE tariffs SET is_active = FALSE, updated_at = $2 WHERE id = $1`, tariffID, time.Now())
	if err != nil {
		return fmt.Errorf("%w: deactivating tariff %s: %v", ErrDatabaseError, tariffID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking deactivate result: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTariff(row rowScanner) (*models.Tariff, error) {
	tariff := &models.Tariff{}
	var rateType string
	var tiersJSON []byte

	err := row.Scan(
		&tariff.ID, &tariff.Name, &tariff.Description, &tariff.Rate, &rateType,
		&tariff.FreeMinutes, &tiersJSON, &tariff.MinDuration, &tariff.MaxDuration,
		&tariff.IsActive, &tariff.CreatedAt, &tariff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tariff.RateType = models.RateType(rateType)
	if len(tiersJSON) > 0 {
		if err := json.Unmarshal(tiersJSON, &tariff.TieredRates); err != nil {
			return nil, fmt.Errorf("unmarshaling tiered rates: %w", err)
		}
	}
	return tariff, nil
}
