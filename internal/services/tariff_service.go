package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Tariffs ---
var (
	ErrTariffValidation = errors.New("tariff validation error")
)

// --- Tariff DTOs ---
type CreateTariffRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description *string           `json:"description"`
	Rate        decimal.Decimal   `json:"rate"`
	RateType    string            `json:"rate_type"`
	FreeMinutes int               `json:"free_minutes"`
	TieredRates []models.TierRate `json:"tiered_rates"`
	MinDuration int               `json:"min_duration"`
	MaxDuration int               `json:"max_duration"`
}

// --- TariffService Interface ---
type TariffService interface {
	CreateTariff(req CreateTariffRequest) (*models.Tariff, error)
	GetTariffByID(tariffID uuid.UUID) (*models.Tariff, error)
	GetTariffs(onlyActive bool) ([]models.Tariff, error)
	DeactivateTariff(tariffID uuid.UUID) error
}

// --- tariffService Implementation ---
type tariffService struct {
	tariffRepo repositories.TariffRepository
	db         *sql.DB
}

// NewTariffService creates a new instance of TariffService.
func NewTariffService(tr repositories.TariffRepository, db *sql.DB) TariffService {
	return &tariffService{tariffRepo: tr, db: db}
}

func (s *tariffService) CreateTariff(req CreateTariffRequest) (*models.Tariff, error) {
	rateType := models.RateTypeHourly
	if strings.TrimSpace(req.RateType) != "" {
		if !models.IsValidRateType(req.RateType) {
			return nil, fmt.Errorf("%w: invalid rate_type %q", ErrTariffValidation, req.RateType)
		}
		rateType = models.RateType(req.RateType)
	}

	tariff := &models.Tariff{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Rate:        req.Rate,
		RateType:    rateType,
		FreeMinutes: req.FreeMinutes,
		TieredRates: req.TieredRates,
		MinDuration: req.MinDuration,
		MaxDuration: req.MaxDuration,
		IsActive:    true,
	}
	if err := validateTariff(tariff); err != nil {
		return nil, err
	}

	if err := s.tariffRepo.CreateTariff(s.db, tariff); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: a tariff named %q already exists", ErrTariffValidation, tariff.Name)
		}
		return nil, fmt.Errorf("failed to create tariff: %w", err)
	}
	return s.tariffRepo.GetTariffByID(tariff.ID)
}

// validateTariff checks every field constraint and reports all violations at
// once rather than stopping at the first.
func validateTariff(tariff *models.Tariff) error {
	var result *multierror.Error

	if tariff.Name == "" {
		result = multierror.Append(result, errors.New("name must not be empty"))
	}
	if tariff.Rate.IsNegative() {
		result = multierror.Append(result, errors.New("rate must not be negative"))
	}
	if tariff.FreeMinutes < 0 {
		result = multierror.Append(result, errors.New("free_minutes must not be negative"))
	}
	if tariff.MinDuration < 0 {
		result = multierror.Append(result, errors.New("min_duration must not be negative"))
	}
	if tariff.MaxDuration < 0 {
		result = multierror.Append(result, errors.New("max_duration must not be negative"))
	}
	if tariff.MinDuration > 0 && tariff.MaxDuration > 0 && tariff.MinDuration > tariff.MaxDuration {
		result = multierror.Append(result, errors.New("min_duration must not exceed max_duration"))
	}

	for i, tier := range tariff.TieredRates {
		if tier.FromMinute < 0 {
			result = multierror.Append(result, fmt.Errorf("tiered_rates[%d].from_minute must not be negative", i))
		}
		if tier.Rate.IsNegative() {
			result = multierror.Append(result, fmt.Errorf("tiered_rates[%d].rate must not be negative", i))
		}
		if i > 0 && tier.FromMinute <= tariff.TieredRates[i-1].FromMinute {
			result = multierror.Append(result, fmt.Errorf("tiered_rates[%d].from_minute must be strictly greater than the previous tier", i))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrTariffValidation, err)
	}
	return nil
}

func (s *tariffService) GetTariffByID(tariffID uuid.UUID) (*models.Tariff, error) {
	tariff, err := s.tariffRepo.GetTariffByID(tariffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTariffNotFound
		}
		return nil, fmt.Errorf("failed to get tariff: %w", err)
	}
	return tariff, nil
}

func (s *tariffService) GetTariffs(onlyActive bool) ([]models.Tariff, error) {
	tariffs, err := s.tariffRepo.GetTariffs(onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list tariffs: %w", err)
	}
	return tariffs, nil
}

func (s *tariffService) DeactivateTariff(tariffID uuid.UUID) error {
	if err := s.tariffRepo.DeactivateTariff(s.db, tariffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTariffNotFound
		}
		return fmt.Errorf("failed to deactivate tariff: %w", err)
	}
	return nil
}
