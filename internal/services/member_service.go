package services

import (
	"errors"
	"fmt"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"

	"github.com/google/uuid"
)

// MemberService exposes the member lookups the billing flow and the API need.
type MemberService interface {
	GetMemberByID(memberID uuid.UUID) (*models.Member, error)
}

type memberService struct {
	memberRepo repositories.MemberRepository
}

// NewMemberService creates a new instance of MemberService.
func NewMemberService(mr repositories.MemberRepository) MemberService {
	return &memberService{memberRepo: mr}
}

func (s *memberService) GetMemberByID(memberID uuid.UUID) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}
