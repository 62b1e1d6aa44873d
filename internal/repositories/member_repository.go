package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemberRepository defines the interface for member-related database operations.
// The billing engine never touches members directly; the session service reads
// the member here and applies the reported free-hours consumption afterwards.
type MemberRepository interface {
	GetMemberByID(memberID uuid.UUID) (*models.Member, error)
	DecrementFreeHours(executor SQLExecutor, memberID uuid.UUID, hours decimal.Decimal) error
}

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetMemberByID(memberID uuid.UUID) (*models.Member, error) {
	member := &models.Member{}
	var tier string
	query := `SELECT id, full_name, phone_number, membership_tier, free_hours_balance, created_at, updated_at
	          FROM members
	          WHERE id = $1`
	err := r.db.QueryRow(query, memberID).Scan(
		&member.ID, &member.FullName, &member.PhoneNumber, &tier,
		&member.FreeHoursBalance, &member.CreatedAt, &member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting member by ID %s: %v", ErrDatabaseError, memberID, err)
	}
	member.MembershipTier = models.MembershipTier(tier)
	return member, nil
}

// DecrementFreeHours reduces a member's free-hours balance, flooring at zero
// so a stale read can never drive the balance negative.
func (r *memberRepository) DecrementFreeHours(executor SQLExecutor, memberID uuid.UUID, hours decimal.Decimal) error {
	if hours.IsNegative() {
		return fmt.Errorf("%w: free hours decrement cannot be negative", ErrDatabaseError)
	}
	query := `UPDATE members
	          SET free_hours_balance = GREATEST(free_hours_balance - $2, 0), updated_at = $3
	          WHERE id = $1`
	result, err := executor.Exec(query, memberID, hours, time.Now())
	if err != nil {
		return fmt.Errorf("%w: decrementing free hours for member %s: %v", ErrDatabaseError, memberID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking free hours update: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
