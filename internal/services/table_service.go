package services

import (
	"errors"
	"fmt"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"

	"github.com/google/uuid"
)

// TableService exposes the floor view: tables, their statuses, and history.
type TableService interface {
	GetTables() ([]models.BilliardTable, error)
	GetTableByID(tableID uuid.UUID) (*models.BilliardTable, error)
	GetTableHistory(tableID uuid.UUID, limit int) ([]models.TableSession, error)
}

type tableService struct {
	tableRepo   repositories.TableRepository
	sessionRepo repositories.SessionRepository
}

// NewTableService creates a new instance of TableService.
func NewTableService(tr repositories.TableRepository, sr repositories.SessionRepository) TableService {
	return &tableService{tableRepo: tr, sessionRepo: sr}
}

func (s *tableService) GetTables() ([]models.BilliardTable, error) {
	tables, err := s.tableRepo.GetTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (s *tableService) GetTableByID(tableID uuid.UUID) (*models.BilliardTable, error) {
	table, err := s.tableRepo.GetTableByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return table, nil
}

// GetTableHistory returns the most recent sessions on a table, newest first.
// Sessions are append-only, so this is the table's audit trail.
func (s *tableService) GetTableHistory(tableID uuid.UUID, limit int) ([]models.TableSession, error) {
	if _, err := s.GetTableByID(tableID); err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.GetSessionsForTable(tableID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for table: %w", err)
	}
	return sessions, nil
}
