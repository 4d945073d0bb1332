package service

import (
	"context"
	"fmt"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/repo"
)

// ProfileService manages customer contact profiles.
type ProfileService struct {
	repo repo.ProfileRepo
}

func NewProfileService(r repo.ProfileRepo) *ProfileService {
	return &ProfileService{repo: r}
}

func (s *ProfileService) Get(ctx context.Context, customerID domain.CustomerID) (domain.UserProfile, error) {
	p, err := s.repo.Get(ctx, customerID)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.ProfileService.Get: %w", err)
	}
	return p, nil
}

// Save creates or replaces the customer's profile.
func (s *ProfileService) Save(ctx context.Context, customerID domain.CustomerID, p domain.UserProfile) (domain.UserProfile, error) {
	if customerID.IsZero() {
		return domain.UserProfile{}, fmt.Errorf("service.ProfileService.Save: %w: customer id is required", domain.ErrValidation)
	}
	stored, err := s.repo.Upsert(ctx, customerID, p)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.ProfileService.Save: %w", err)
	}
	return stored, nil
}
